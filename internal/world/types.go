// Package world holds the in-memory, write-through view of the simulation:
// zones, routes, players, factions, shipments, units, orders, contracts,
// intel, events, and season scores. It is the only legal source of truth
// during a single tick's pipeline stages — stages never re-read storage
// mid-pipeline.
package world

import "time"

// ZoneKind enumerates the node types in the world graph.
type ZoneKind string

const (
	Hub        ZoneKind = "Hub"
	Field      ZoneKind = "Field"
	Factory    ZoneKind = "Factory"
	Junction   ZoneKind = "Junction"
	Front      ZoneKind = "Front"
	Stronghold ZoneKind = "Stronghold"
)

// BurnRate returns the fixed per-tick supply cost for a zone kind.
func (k ZoneKind) BurnRate() int {
	switch k {
	case Front:
		return 10
	case Stronghold:
		return 20
	case Factory:
		return 5
	case Field:
		return 3
	default: // Hub, Junction
		return 0
	}
}

// IncomePerTick returns the per-tick credit income for an owned zone.
func (k ZoneKind) IncomePerTick() int {
	switch k {
	case Field:
		return 5
	case Factory:
		return 10
	case Front:
		return 25
	case Stronghold:
		return 50
	default:
		return 0
	}
}

// Zone is a node in the world graph.
type Zone struct {
	ID                string
	Name              string
	Kind              ZoneKind
	OwnerFactionID    string // "" = neutral
	SupplyLevel       float64
	ComplianceStreak  int
	SUStockpile       int
	Inventory         map[string]int
	ProductionCap     map[string]int
	Garrison          int
	MarketDepthMult   float64
	MedkitStockpile   int
	CommsStockpile    int
	Collapsed         bool
	RowVersion        int64
}

// Route is a directed edge between two zones.
type Route struct {
	ID               string
	FromZone         string
	ToZone           string
	DistanceTicks    int
	CapacityPerTick  int
	BaseRisk         float64 // 0.0-0.3
	ChokepointRating float64 // 1.0-3.0
	RowVersion       int64
}

// Tier is a player's subscription/capability level.
type Tier string

const (
	Freelance Tier = "Freelance"
	Operator  Tier = "Operator"
	Command   Tier = "Command"
)

// DailyQuota returns the tier's actions-per-day ceiling.
func (t Tier) DailyQuota() int {
	switch t {
	case Operator:
		return 250
	case Command:
		return 300
	default:
		return 200
	}
}

// Licenses tracks which shipment kinds a player may use.
type Licenses struct {
	Courier bool // always true once joined
	Freight bool
	Convoy  bool
}

// Player is an account.
type Player struct {
	ID             string
	Name           string
	APIKey         string
	Tier           Tier
	Inventory      map[string]int // includes "credits"
	CurrentZone    string
	FactionID      string // "" = none
	Reputation     int
	ActionsToday   int
	LastActionTick int64
	LastActionAt   time.Time
	Licenses       Licenses
	TutorialStep   int
	RowVersion     int64
}

// Rank is a faction membership level.
type Rank string

const (
	FounderRank Rank = "Founder"
	OfficerRank Rank = "Officer"
	MemberRank  Rank = "Member"
)

// Relation is the diplomatic stance between two factions.
type Relation string

const (
	RelationAllied  Relation = "allied"
	RelationNeutral Relation = "neutral"
	RelationWar     Relation = "war"
)

// Membership is one row of a faction's roster.
type Membership struct {
	PlayerID  string
	Rank      Rank
	JoinedAt  int64
}

// Faction is a player organization.
type Faction struct {
	ID                    string
	Name                  string
	Tag                   string
	FounderID             string
	Treasury              map[string]int
	OfficerDailyWithdraw  int
	DoctrineDigest        string
	UpgradeCounters       map[string]int
	Relations             map[string]Relation
	Members               []Membership
	RowVersion            int64
}

// ShipmentKind determines capacity and base interception visibility.
type ShipmentKind string

const (
	Courier ShipmentKind = "Courier"
	Freight ShipmentKind = "Freight"
	Convoy  ShipmentKind = "Convoy"
)

// Capacity returns the total cargo units a shipment kind may carry.
func (k ShipmentKind) Capacity() int {
	switch k {
	case Freight:
		return 500
	case Convoy:
		return 2000
	default:
		return 100
	}
}

// Visibility returns the interception visibility multiplier for a kind.
func (k ShipmentKind) Visibility() float64 {
	switch k {
	case Freight:
		return 1.0
	case Convoy:
		return 2.0
	default:
		return 0.5
	}
}

// ShipmentStatus is the lifecycle state of a shipment.
type ShipmentStatus string

const (
	InTransit   ShipmentStatus = "InTransit"
	Arrived     ShipmentStatus = "Arrived"
	Intercepted ShipmentStatus = "Intercepted"
	Lost        ShipmentStatus = "Lost"
)

// Shipment is goods in transit along an ordered path of zones.
type Shipment struct {
	ID               string
	OwnerPlayerID    string
	Kind             ShipmentKind
	Path             []string
	PositionIndex    int
	TicksToNextZone  int
	Cargo            map[string]int
	EscortUnitIDs    []string
	Status           ShipmentStatus
	CreatedAtTick    int64
	RowVersion       int64
}

// UnitKind distinguishes combat assets.
type UnitKind string

const (
	Escort UnitKind = "Escort"
	Raider UnitKind = "Raider"
)

// Unit is a combat asset owned by a player.
type Unit struct {
	ID             string
	OwnerPlayerID  string
	Kind           UnitKind
	CurrentZone    string
	Strength       float64
	Speed          float64
	MaintenanceFee int // credits/tick
	AssignmentID   string // shipment id (escort) or route id (raider); "" = unassigned
	ForSalePrice   *int
	CreatedAtTick  int64
	RowVersion     int64
}

// CreatedBefore reports whether u was created strictly before other —
// used by maintenance starvation to pick the oldest unit to delete.
func (u *Unit) CreatedBefore(other *Unit) bool {
	return u.CreatedAtTick < other.CreatedAtTick
}
