package tick

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"burnrate/internal/market"
	"burnrate/internal/storage"
	"burnrate/internal/world"
)

// stageTWAPProgression injects one slice for every live TWAP order, adding
// the slice to the book as an ordinary order and retiring the parent once
// its remaining quantity or tick budget is exhausted.
func (e *Engine) stageTWAPProgression(ctx context.Context, t int64) error {
	for _, o := range e.cache.AllOrders() {
		if !o.IsTWAP || o.RemainingQty <= 0 || o.TWAPTicksLeft <= 0 {
			continue
		}
		slice, remaining := market.TWAPSlice(o, t, uuid.NewString())
		if slice.RemainingQty > 0 {
			e.cache.PutOrder(slice)
			if err := e.store.Put(ctx, storage.TableOrders, slice.ID, slice); err != nil {
				return err
			}
		}
		if !remaining {
			e.cache.DeleteOrder(o.ID)
			if err := e.store.Delete(ctx, storage.TableOrders, o.ID); err != nil {
				return err
			}
			continue
		}
		e.cache.PutOrder(o)
		if err := e.store.Put(ctx, storage.TableOrders, o.ID, o); err != nil {
			return err
		}
	}
	return nil
}

// stageConditionalArming arms every conditional order whose trigger has
// crossed against the last trade price recorded so far this tick. Orders
// are armed in book order so a freshly-armed order is eligible for the
// same tick's matching pass.
func (e *Engine) stageConditionalArming(ctx context.Context, ltp *market.LastTradePrice) error {
	for _, o := range e.cache.AllOrders() {
		if !o.IsConditional || o.Armed {
			continue
		}
		if market.EvaluateTrigger(o, ltp) {
			market.Arm(o)
			e.cache.PutOrder(o)
			if err := e.store.Put(ctx, storage.TableOrders, o.ID, o); err != nil {
				return err
			}
		}
	}
	return nil
}

// stageMarketMatching runs price-time priority matching independently for
// every (zone, resource) book, settles trades against buyer/seller credits
// and zone inventory, and removes fully filled orders.
func (e *Engine) stageMarketMatching(ctx context.Context, t int64, ltp *market.LastTradePrice) error {
	books := make(map[string][]*world.MarketOrder)
	for _, o := range e.cache.AllOrders() {
		if o.IsConditional && !o.Armed {
			continue
		}
		if o.RemainingQty <= 0 {
			continue
		}
		k := fmt.Sprintf("%s|%s", o.Zone, o.Resource)
		books[k] = append(books[k], o)
	}

	for _, orders := range books {
		zone, resource := orders[0].Zone, orders[0].Resource
		trades, filledIDs := market.Match(zone, resource, orders, ltp)
		for _, tr := range trades {
			if err := e.settleTrade(ctx, tr); err != nil {
				return err
			}
			if e.log != nil {
				e.log.Emit(ctx, t, "trade_executed", "", "market", map[string]interface{}{
					"zone": tr.Zone, "resource": tr.Resource, "price": tr.Price, "qty": tr.Qty,
				})
			}
		}
		for _, o := range orders {
			if err := e.store.Put(ctx, storage.TableOrders, o.ID, o); err != nil {
				return err
			}
			e.cache.PutOrder(o)
		}
		for _, id := range filledIDs {
			e.cache.DeleteOrder(id)
			if err := e.store.Delete(ctx, storage.TableOrders, id); err != nil {
				return err
			}
		}
	}
	return nil
}

// settleTrade moves credits from buyer to seller and credits the resource
// quantity to the buyer's inventory; the quantity is drawn from the zone's
// shared inventory (floored at zero), since orders are zone-local.
func (e *Engine) settleTrade(ctx context.Context, tr market.Trade) error {
	cost := tr.Price * float64(tr.Qty)

	buyer := e.cache.Player(tr.BuyerID)
	seller := e.cache.Player(tr.SellerID)

	if buyer != nil {
		buyer.Inventory["credits"] -= int(cost)
		buyer.Inventory[tr.Resource] += tr.Qty
		if err := e.store.Put(ctx, storage.TablePlayers, buyer.ID, buyer); err != nil {
			return err
		}
		e.cache.PutPlayer(buyer)
	}
	if seller != nil {
		seller.Inventory["credits"] += int(cost)
		if err := e.store.Put(ctx, storage.TablePlayers, seller.ID, seller); err != nil {
			return err
		}
		e.cache.PutPlayer(seller)
	}

	zone := e.cache.Zone(tr.Zone)
	if zone != nil {
		if zone.Inventory == nil {
			zone.Inventory = map[string]int{}
		}
		zone.Inventory[tr.Resource] -= tr.Qty
		if zone.Inventory[tr.Resource] < 0 {
			zone.Inventory[tr.Resource] = 0
		}
		if err := e.store.Put(ctx, storage.TableZones, zone.ID, zone); err != nil {
			return err
		}
		e.cache.PutZone(zone)
	}
	return nil
}
