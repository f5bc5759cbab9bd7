package market

import "burnrate/internal/world"

// EvaluateTrigger reports whether a conditional order's predicate is
// crossed given the current last-trade price at its zone.
func EvaluateTrigger(order *world.MarketOrder, ltp *LastTradePrice) bool {
	if order.Trigger == nil {
		return false
	}
	price, ok := ltp.Get(order.Zone, order.Trigger.Resource)
	if !ok {
		return false
	}
	switch order.Trigger.Comparison {
	case world.TriggerLTE:
		return price <= order.Trigger.Threshold
	case world.TriggerGTE:
		return price >= order.Trigger.Threshold
	default:
		return false
	}
}

// Arm converts a conditional order into a standard live order once its
// trigger has crossed. Idempotent: calling it again on an already-armed
// order is a no-op.
func Arm(order *world.MarketOrder) {
	order.Armed = true
}

// TWAPSlice produces the per-tick limit order a TWAP should inject this
// tick, and reports whether the TWAP has any ticks remaining after this
// slice (false means the parent order is now fully expired/consumed).
func TWAPSlice(order *world.MarketOrder, nowTick int64, newID string) (slice *world.MarketOrder, ticksRemaining bool) {
	qty := order.TWAPSliceQty
	if qty > order.RemainingQty {
		qty = order.RemainingQty
	}
	slice = &world.MarketOrder{
		ID:            newID,
		OwnerPlayerID: order.OwnerPlayerID,
		Zone:          order.Zone,
		Resource:      order.Resource,
		Side:          order.Side,
		LimitPrice:    order.LimitPrice,
		RemainingQty:  qty,
		OriginalQty:   qty,
		CreatedAtTick: nowTick,
	}
	order.RemainingQty -= qty
	order.TWAPTicksLeft--
	return slice, order.TWAPTicksLeft > 0 && order.RemainingQty > 0
}
