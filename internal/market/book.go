// Package market implements the order book: price-time priority matching,
// conditional orders gated by a trigger predicate, and TWAP orders sliced
// into per-tick pieces. Grounded on the order-matching-engine reference's
// maker/taker fill loop, simplified since matching here only ever runs
// inside the single-threaded tick pipeline — there is no concurrent
// ingestion path to race against.
package market

import (
	"sort"

	"burnrate/internal/world"
)

// Trade is the result of one resting order being crossed by a taker.
type Trade struct {
	Zone        string
	Resource    string
	Price       float64
	Qty         int
	BuyOrderID  string
	SellOrderID string
	BuyerID     string
	SellerID    string
}

// LastTradePrice tracks the most recent execution price per (zone, resource),
// consulted by conditional-order arming.
type LastTradePrice struct {
	prices map[string]float64
}

// NewLastTradePrice returns an empty price tracker.
func NewLastTradePrice() *LastTradePrice {
	return &LastTradePrice{prices: make(map[string]float64)}
}

func key(zone, resource string) string { return zone + "|" + resource }

// Get returns the last trade price for (zone, resource) and whether one exists.
func (l *LastTradePrice) Get(zone, resource string) (float64, bool) {
	p, ok := l.prices[key(zone, resource)]
	return p, ok
}

func (l *LastTradePrice) set(zone, resource string, price float64) {
	l.prices[key(zone, resource)] = price
}

// Match runs price-time priority matching over the standing orders for one
// (zone, resource) book, returning the trades executed. orders must already
// be filtered to that (zone, resource) pair and exclude conditional orders
// that are not yet armed (callers pass only live book entries). The slice
// is mutated in place (RemainingQty) reflecting partial fills; fully filled
// orders are returned in filledIDs for the caller to remove from the cache.
func Match(zone, resource string, orders []*world.MarketOrder, ltp *LastTradePrice) (trades []Trade, filledIDs []string) {
	var buys, sells []*world.MarketOrder
	for _, o := range orders {
		if o.RemainingQty <= 0 {
			continue
		}
		if o.Side == world.Buy {
			buys = append(buys, o)
		} else {
			sells = append(sells, o)
		}
	}

	// Price-time priority: best price first, ties broken by earlier
	// creation (the resting/maker side).
	sort.SliceStable(buys, func(i, j int) bool {
		if buys[i].LimitPrice != buys[j].LimitPrice {
			return buys[i].LimitPrice > buys[j].LimitPrice
		}
		return buys[i].CreatedAtTick < buys[j].CreatedAtTick
	})
	sort.SliceStable(sells, func(i, j int) bool {
		if sells[i].LimitPrice != sells[j].LimitPrice {
			return sells[i].LimitPrice < sells[j].LimitPrice
		}
		return sells[i].CreatedAtTick < sells[j].CreatedAtTick
	})

	bi, si := 0, 0
	for bi < len(buys) && si < len(sells) {
		buy, sell := buys[bi], sells[si]

		if buy.LimitPrice < sell.LimitPrice {
			break // no more crossing prices
		}
		if buy.OwnerPlayerID == sell.OwnerPlayerID {
			// Wash trade: reject at match time by skipping the later-arriving
			// side so it cannot trade against itself; advance whichever
			// order arrived later so the other side still matches others.
			if buy.CreatedAtTick <= sell.CreatedAtTick {
				si++
			} else {
				bi++
			}
			continue
		}

		// The resting order — the one that arrived first — sets the trade
		// price (maker price, price-time priority).
		makerPrice := sell.LimitPrice
		if buy.CreatedAtTick < sell.CreatedAtTick {
			makerPrice = buy.LimitPrice
		}

		qty := min(buy.RemainingQty, sell.RemainingQty)
		buy.RemainingQty -= qty
		sell.RemainingQty -= qty

		trades = append(trades, Trade{
			Zone: zone, Resource: resource, Price: makerPrice, Qty: qty,
			BuyOrderID: buy.ID, SellOrderID: sell.ID,
			BuyerID: buy.OwnerPlayerID, SellerID: sell.OwnerPlayerID,
		})
		ltp.set(zone, resource, makerPrice)

		if buy.RemainingQty == 0 {
			filledIDs = append(filledIDs, buy.ID)
			bi++
		}
		if sell.RemainingQty == 0 {
			filledIDs = append(filledIDs, sell.ID)
			si++
		}
	}

	return trades, filledIDs
}

func min(a, b int) int {
	if a < b {
		return a
	}
	return b
}
