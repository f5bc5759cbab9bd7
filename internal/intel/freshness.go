// Package intel projects raw IntelReport snapshots through the freshness
// decay model at read time. The decay is pure: the same raw record can be
// projected multiple ways depending on the reader's current tick, and no
// storage mutation happens until the deletion sweep.
package intel

import (
	"fmt"

	"burnrate/internal/world"
)

// Bucket is the freshness category derived from a report's age.
type Bucket string

const (
	Fresh   Bucket = "Fresh"
	Stale   Bucket = "Stale"
	Expired Bucket = "Expired"
	Deleted Bucket = "Deleted"
)

const (
	freshUntil   = 10
	staleUntil   = 50
	expiredUntil = 200
)

// Projected is the read-time view of an intel report at a given tick.
type Projected struct {
	ID             string
	TargetType     world.IntelTargetType
	TargetID       string
	GatheredAtTick int64
	Age            int64
	Bucket         Bucket
	SignalQuality  int
	Data           map[string]interface{}
}

// AgeBucket classifies an age delta into its freshness bucket.
func AgeBucket(age int64) Bucket {
	switch {
	case age < freshUntil:
		return Fresh
	case age < staleUntil:
		return Stale
	case age < expiredUntil:
		return Expired
	default:
		return Deleted
	}
}

// Project renders report as seen from currentTick: Fresh is unmodified,
// Stale ranges numeric fields and redacts some, Expired keeps only id and
// last-seen owner, Deleted signals the report should be treated as gone
// (the deletion sweep performs the actual hard delete).
func Project(report *world.IntelReport, currentTick int64) Projected {
	age := currentTick - report.GatheredAtTick
	bucket := AgeBucket(age)

	p := Projected{
		ID:             report.ID,
		TargetType:     report.TargetType,
		TargetID:       report.TargetID,
		GatheredAtTick: report.GatheredAtTick,
		Age:            age,
		Bucket:         bucket,
	}

	switch bucket {
	case Fresh:
		p.SignalQuality = report.SignalQuality
		p.Data = report.Snapshot
	case Stale:
		p.SignalQuality = int(100 * (1 - float64(age-freshUntil)/40))
		p.Data = rangeify(report.Snapshot)
	case Expired:
		p.SignalQuality = 0
		p.Data = map[string]interface{}{
			"target_id":  report.TargetID,
			"last_owner": report.Snapshot["owner_faction_id"],
		}
	default: // Deleted
		p.SignalQuality = 0
		p.Data = nil
	}
	return p
}

// rangeify rounds numeric fields to coarse display ranges and drops a few
// detail fields, per the Stale bucket's "ranged/redacted" contract.
func rangeify(snapshot map[string]interface{}) map[string]interface{} {
	out := make(map[string]interface{}, len(snapshot))
	redacted := map[string]bool{"garrison": true, "inventory": true}
	for k, v := range snapshot {
		if redacted[k] {
			continue
		}
		if f, ok := asFloat(v); ok {
			out[k] = rangeLabel(f)
			continue
		}
		out[k] = v
	}
	return out
}

func asFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	default:
		return 0, false
	}
}

// rangeLabel buckets a numeric value into a 25-wide band, e.g. 63 -> "50-75".
func rangeLabel(v float64) string {
	low := int(v/25) * 25
	return fmt.Sprintf("%d-%d", low, low+25)
}

// IsVisibleToFaction reports whether a report should be included in a
// faction's shared intel view: the gatherer must be a current member.
func IsVisibleToFaction(report *world.IntelReport, faction *world.Faction) bool {
	if faction == nil {
		return false
	}
	return faction.Membership(report.GathererID) != nil
}

// DueForDeletion reports whether a raw record has aged past the hard-delete
// threshold and should be removed by the decay sweep.
func DueForDeletion(report *world.IntelReport, currentTick int64) bool {
	return currentTick-report.GatheredAtTick >= expiredUntil
}
