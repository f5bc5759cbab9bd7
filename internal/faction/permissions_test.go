package faction

import (
	"testing"

	"burnrate/internal/world"
)

func TestTransferLeadershipScenario(t *testing.T) {
	// Scenario 5: Faction X, Founder F, Officer O, Member M. F transfers to O.
	f := &world.Faction{
		ID:        "X",
		FounderID: "F",
		Members: []world.Membership{
			{PlayerID: "F", Rank: world.FounderRank},
			{PlayerID: "O", Rank: world.OfficerRank},
			{PlayerID: "M", Rank: world.MemberRank},
		},
	}

	if !TransferLeadershipTo(f, "O") {
		t.Fatalf("expected transfer to succeed")
	}
	if f.FounderID != "O" {
		t.Fatalf("expected FounderID updated to O, got %s", f.FounderID)
	}
	if f.Membership("O").Rank != world.FounderRank {
		t.Fatalf("expected O to be Founder")
	}
	if f.Membership("F").Rank != world.OfficerRank {
		t.Fatalf("expected F demoted to Officer")
	}
	if f.Membership("M").Rank != world.MemberRank {
		t.Fatalf("expected M unchanged")
	}

	// A subsequent kick of O by F fails: F is no longer Founder, and O is
	// now an Officer — kicking an Officer requires Founder.
	if CanKick(world.OfficerRank, world.OfficerRank) {
		t.Fatalf("expected F (now Officer) unable to kick O (Officer)")
	}
}

func TestWithdrawLimits(t *testing.T) {
	if WithdrawLimit(world.FounderRank, 1000) != -1 {
		t.Fatalf("expected Founder unlimited")
	}
	if WithdrawLimit(world.OfficerRank, 1000) != 1000 {
		t.Fatalf("expected Officer capped at daily limit")
	}
	if WithdrawLimit(world.MemberRank, 1000) != 0 {
		t.Fatalf("expected Member unable to withdraw")
	}
}

func TestKickRequiresFounderForOfficer(t *testing.T) {
	if CanKick(world.OfficerRank, world.OfficerRank) {
		t.Fatalf("Officer should not be able to kick another Officer")
	}
	if !CanKick(world.FounderRank, world.OfficerRank) {
		t.Fatalf("Founder should be able to kick an Officer")
	}
	if !CanKick(world.OfficerRank, world.MemberRank) {
		t.Fatalf("Officer should be able to kick a Member")
	}
}
