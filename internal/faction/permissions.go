// Package faction implements the rank-based permission matrix and treasury
// rules for player organizations.
package faction

import "burnrate/internal/world"

// Capability is one gated faction action.
type Capability string

const (
	EditSettings       Capability = "edit_settings"
	Disband            Capability = "disband"
	TransferLeadership Capability = "transfer_leadership"
	PromoteOfficer     Capability = "promote_officer"
	DemoteOfficer      Capability = "demote_officer"
	PromoteMember      Capability = "promote_member"
	KickMember         Capability = "kick_member"
	WithdrawTreasury   Capability = "withdraw_treasury"
	DepositTreasury    Capability = "deposit_treasury"
	ManageContracts    Capability = "manage_contracts"
	EditDoctrine       Capability = "edit_doctrine"
	ViewSharedIntel    Capability = "view_shared_intel"
)

// Allows reports whether rank may perform capability, per the permission
// table. KickMember is rank-gated generically here; kicking an Officer
// specifically requires Founder, enforced separately in CanKick.
func Allows(rank world.Rank, cap Capability) bool {
	switch cap {
	case EditSettings, Disband, TransferLeadership, PromoteOfficer, DemoteOfficer:
		return rank == world.FounderRank
	case PromoteMember, KickMember, ManageContracts:
		return rank == world.FounderRank || rank == world.OfficerRank
	case WithdrawTreasury, DepositTreasury, ViewSharedIntel:
		return true // all ranks; withdraw amount is separately limited
	case EditDoctrine:
		return rank == world.FounderRank || rank == world.OfficerRank
	default:
		return false
	}
}

// CanKick reports whether actorRank may kick a member holding targetRank.
// Kicking an Officer requires Founder even though Officers can kick
// ordinary Members.
func CanKick(actorRank, targetRank world.Rank) bool {
	if targetRank == world.OfficerRank || targetRank == world.FounderRank {
		return actorRank == world.FounderRank
	}
	return actorRank == world.FounderRank || actorRank == world.OfficerRank
}

// WithdrawLimit returns the credits an actor of rank may withdraw in one
// call; Founder is unlimited (represented as -1, meaning "no cap").
func WithdrawLimit(rank world.Rank, officerDailyLimit int) int {
	switch rank {
	case world.FounderRank:
		return -1
	case world.OfficerRank:
		return officerDailyLimit
	default:
		return 0
	}
}

// TransferLeadershipTo atomically reassigns Founder to newFounderID and
// demotes the previous Founder to Officer, in one step as the spec
// requires (no intermediate state where the faction has zero Founders).
func TransferLeadershipTo(f *world.Faction, newFounderID string) bool {
	cur := f.Membership(f.FounderID)
	next := f.Membership(newFounderID)
	if next == nil {
		return false
	}
	if cur != nil {
		cur.Rank = world.OfficerRank
	}
	next.Rank = world.FounderRank
	f.FounderID = newFounderID
	return true
}
