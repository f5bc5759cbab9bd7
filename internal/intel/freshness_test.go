package intel

import (
	"testing"

	"burnrate/internal/world"
)

func sampleReport() *world.IntelReport {
	return &world.IntelReport{
		ID:             "intel-1",
		GathererID:     "player-1",
		TargetType:     world.TargetZone,
		TargetID:       "zone-1",
		GatheredAtTick: 100,
		SignalQuality:  100,
		Snapshot: map[string]interface{}{
			"supply":    63.0,
			"garrison":  5.0,
			"owner":     "faction-1",
		},
	}
}

func TestFreshBucketUnmodified(t *testing.T) {
	r := sampleReport()
	p := Project(r, 105) // age 5 < 10
	if p.Bucket != Fresh {
		t.Fatalf("expected Fresh, got %s", p.Bucket)
	}
	if p.SignalQuality != 100 {
		t.Fatalf("expected signal 100, got %d", p.SignalQuality)
	}
	if p.Data["supply"] != 63.0 {
		t.Fatalf("expected unmodified supply, got %v", p.Data["supply"])
	}
}

func TestStaleBucketRangesAndRedacts(t *testing.T) {
	r := sampleReport()
	p := Project(r, 130) // age 30, within [10,50)
	if p.Bucket != Stale {
		t.Fatalf("expected Stale, got %s", p.Bucket)
	}
	if _, present := p.Data["garrison"]; present {
		t.Fatalf("expected garrison redacted in Stale bucket")
	}
	if p.Data["supply"] != "50-75" {
		t.Fatalf("expected ranged supply '50-75', got %v", p.Data["supply"])
	}
}

func TestExpiredBucketMinimal(t *testing.T) {
	r := sampleReport()
	p := Project(r, 300) // age 200: already Deleted, not checked here
	p2 := Project(r, 155) // age 55, Expired (>=50, <200)
	_ = p
	if p2.Bucket != Expired {
		t.Fatalf("expected Expired, got %s", p2.Bucket)
	}
	if p2.SignalQuality != 0 {
		t.Fatalf("expected 0 signal quality, got %d", p2.SignalQuality)
	}
	if _, ok := p2.Data["supply"]; ok {
		t.Fatalf("expected only target id/owner retained in Expired bucket")
	}
}

func TestDeletedBucketAtTwoHundred(t *testing.T) {
	r := sampleReport()
	p := Project(r, 300) // age 200 >= 200
	if p.Bucket != Deleted {
		t.Fatalf("expected Deleted, got %s", p.Bucket)
	}
	if !DueForDeletion(r, 300) {
		t.Fatalf("expected DueForDeletion true at age 200")
	}
}

func TestSignalQualityMonotoneNonIncreasing(t *testing.T) {
	r := sampleReport()
	prev := 1000
	for age := int64(0); age < 200; age += 5 {
		p := Project(r, r.GatheredAtTick+age)
		if p.SignalQuality > prev {
			t.Fatalf("signal quality increased at age %d: %d > %d", age, p.SignalQuality, prev)
		}
		prev = p.SignalQuality
	}
}

func TestFactionVisibilityRequiresCurrentMembership(t *testing.T) {
	r := sampleReport()
	f := &world.Faction{ID: "faction-1", Members: []world.Membership{
		{PlayerID: "player-1", Rank: world.MemberRank},
	}}
	if !IsVisibleToFaction(r, f) {
		t.Fatalf("expected visible while gatherer is a member")
	}
	f.RemoveMember("player-1")
	if IsVisibleToFaction(r, f) {
		t.Fatalf("expected invisible after gatherer leaves faction")
	}
}
