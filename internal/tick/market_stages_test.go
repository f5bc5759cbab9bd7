package tick

import (
	"testing"

	"burnrate/internal/market"
	"burnrate/internal/world"
)

func TestStageMarketMatchingSettlesCreditsAndInventory(t *testing.T) {
	env := newTestEngine(t)
	defer env.close()

	zone := &world.Zone{ID: "z1", Kind: world.Hub, Inventory: map[string]int{"ore": 100}}
	env.cache.PutZone(zone)

	buyer := &world.Player{ID: "buyer", Inventory: map[string]int{"credits": 1000}}
	seller := &world.Player{ID: "seller", Inventory: map[string]int{"credits": 0}}
	env.cache.PutPlayer(buyer)
	env.cache.PutPlayer(seller)

	sellOrder := &world.MarketOrder{ID: "s1", OwnerPlayerID: "seller", Zone: "z1", Resource: "ore",
		Side: world.Sell, LimitPrice: 10, RemainingQty: 50, OriginalQty: 50, CreatedAtTick: 1}
	buyOrder := &world.MarketOrder{ID: "b1", OwnerPlayerID: "buyer", Zone: "z1", Resource: "ore",
		Side: world.Buy, LimitPrice: 12, RemainingQty: 30, OriginalQty: 30, CreatedAtTick: 2}
	env.cache.PutOrder(sellOrder)
	env.cache.PutOrder(buyOrder)

	ltp := market.NewLastTradePrice()
	if err := env.engine.stageMarketMatching(env.ctx, 5, ltp); err != nil {
		t.Fatalf("stageMarketMatching: %v", err)
	}

	// Trade executes at the resting (maker/seller) price of 10, for 30 units.
	wantCost := 300
	if got := env.cache.Player("buyer").Inventory["credits"]; got != 1000-wantCost {
		t.Fatalf("expected buyer debited %d, got balance %d", wantCost, got)
	}
	if got := env.cache.Player("seller").Inventory["credits"]; got != wantCost {
		t.Fatalf("expected seller credited %d, got balance %d", wantCost, got)
	}
	if got := env.cache.Zone("z1").Inventory["ore"]; got != 70 {
		t.Fatalf("expected zone ore inventory reduced by 30 to 70, got %d", got)
	}
	// Buyer was fully filled and should be removed from the book.
	if env.cache.Order("b1") != nil {
		t.Fatalf("expected filled buy order removed from the book")
	}
	if got := env.cache.Order("s1").RemainingQty; got != 20 {
		t.Fatalf("expected seller remaining 20, got %d", got)
	}
}

func TestStageConditionalArmingUsesCurrentTickLastPrice(t *testing.T) {
	env := newTestEngine(t)
	defer env.close()

	order := &world.MarketOrder{
		ID: "c1", Zone: "z1", Resource: "ore", Side: world.Buy, LimitPrice: 9,
		IsConditional: true, RemainingQty: 10, OriginalQty: 10,
		Trigger: &world.Trigger{Resource: "ore", Comparison: world.TriggerLTE, Threshold: 10},
	}
	env.cache.PutOrder(order)

	ltp := market.NewLastTradePrice()
	if err := env.engine.stageConditionalArming(env.ctx, ltp); err != nil {
		t.Fatalf("stageConditionalArming: %v", err)
	}
	if env.cache.Order("c1").Armed {
		t.Fatalf("expected order to stay disarmed with no trade price recorded yet")
	}
}

func TestStageTWAPProgressionRetiresExhaustedParent(t *testing.T) {
	env := newTestEngine(t)
	defer env.close()

	order := &world.MarketOrder{
		ID: "t1", Zone: "z1", Resource: "ore", Side: world.Sell, LimitPrice: 5,
		IsTWAP: true, RemainingQty: 4, OriginalQty: 10, TWAPSliceQty: 4, TWAPTicksLeft: 1,
	}
	env.cache.PutOrder(order)

	if err := env.engine.stageTWAPProgression(env.ctx, 100); err != nil {
		t.Fatalf("stageTWAPProgression: %v", err)
	}

	if env.cache.Order("t1") != nil {
		t.Fatalf("expected exhausted TWAP parent removed from the book")
	}
	found := false
	for _, o := range env.cache.AllOrders() {
		if o.ID != "t1" && o.Zone == "z1" && o.Resource == "ore" {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected a slice order injected into the book")
	}
}
