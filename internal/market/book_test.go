package market

import (
	"testing"

	"burnrate/internal/world"
)

func TestMatchAtMakerPrice(t *testing.T) {
	// Scenario 3 from the testable-properties catalog: Sell 50@12 resting,
	// Buy 30@14 taker; trade executes at the maker's (seller's) price.
	sell := &world.MarketOrder{ID: "s1", OwnerPlayerID: "X", Zone: "Z", Resource: "ore",
		Side: world.Sell, LimitPrice: 12, RemainingQty: 50, OriginalQty: 50, CreatedAtTick: 10}
	buy := &world.MarketOrder{ID: "b1", OwnerPlayerID: "Y", Zone: "Z", Resource: "ore",
		Side: world.Buy, LimitPrice: 14, RemainingQty: 30, OriginalQty: 30, CreatedAtTick: 10}

	ltp := NewLastTradePrice()
	trades, filled := Match("Z", "ore", []*world.MarketOrder{sell, buy}, ltp)

	if len(trades) != 1 {
		t.Fatalf("expected exactly one trade, got %d", len(trades))
	}
	tr := trades[0]
	if tr.Price != 12 || tr.Qty != 30 {
		t.Fatalf("expected trade 30@12, got %d@%v", tr.Qty, tr.Price)
	}
	if sell.RemainingQty != 20 {
		t.Fatalf("expected seller remaining 20, got %d", sell.RemainingQty)
	}
	if buy.RemainingQty != 0 {
		t.Fatalf("expected buyer fully filled, got remaining %d", buy.RemainingQty)
	}
	if len(filled) != 1 || filled[0] != "b1" {
		t.Fatalf("expected only buy order reported filled, got %v", filled)
	}
	if p, _ := ltp.Get("Z", "ore"); p != 12 {
		t.Fatalf("expected last trade price 12, got %v", p)
	}
}

func TestWashTradeRejected(t *testing.T) {
	sell := &world.MarketOrder{ID: "s1", OwnerPlayerID: "X", Zone: "Z", Resource: "ore",
		Side: world.Sell, LimitPrice: 10, RemainingQty: 10, OriginalQty: 10, CreatedAtTick: 1}
	buy := &world.MarketOrder{ID: "b1", OwnerPlayerID: "X", Zone: "Z", Resource: "ore",
		Side: world.Buy, LimitPrice: 10, RemainingQty: 10, OriginalQty: 10, CreatedAtTick: 2}

	trades, _ := Match("Z", "ore", []*world.MarketOrder{sell, buy}, NewLastTradePrice())
	if len(trades) != 0 {
		t.Fatalf("expected no trades between same owner's orders, got %d", len(trades))
	}
}

func TestConditionalArmsOnCross(t *testing.T) {
	order := &world.MarketOrder{
		ID: "c1", Zone: "Z", Resource: "ore", Side: world.Buy, LimitPrice: 9,
		IsConditional: true,
		Trigger:       &world.Trigger{Resource: "ore", Comparison: world.TriggerLTE, Threshold: 10},
	}
	ltp := NewLastTradePrice()
	if EvaluateTrigger(order, ltp) {
		t.Fatalf("expected no trigger before any trade recorded")
	}
	ltp.set("Z", "ore", 10)
	if !EvaluateTrigger(order, ltp) {
		t.Fatalf("expected trigger to fire once last price <= threshold")
	}
	Arm(order)
	if !order.Armed {
		t.Fatalf("expected order armed")
	}
}

func TestTWAPSliceDecrementsAndExpires(t *testing.T) {
	order := &world.MarketOrder{
		ID: "t1", Zone: "Z", Resource: "ore", Side: world.Sell, LimitPrice: 5,
		IsTWAP: true, RemainingQty: 10, TWAPSliceQty: 4, TWAPTicksLeft: 3,
	}
	slice, more := TWAPSlice(order, 100, "slice-1")
	if slice.RemainingQty != 4 || !more {
		t.Fatalf("expected first slice of 4 with ticks remaining, got %+v more=%v", slice, more)
	}
	TWAPSlice(order, 101, "slice-2")
	_, more = TWAPSlice(order, 102, "slice-3")
	if order.RemainingQty != 0 {
		t.Fatalf("expected 0 units left after three slices of 4,4,2, got %d", order.RemainingQty)
	}
	if more {
		t.Fatalf("expected TWAP exhausted after remaining qty hits 0")
	}
}
