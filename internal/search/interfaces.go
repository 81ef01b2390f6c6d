package search

import "context"

// PriceRepository provides read access to price records. Implementations must
// resolve the crop and market in the same fetch (eager join) and return an
// empty slice, not an error, when the crop has no prices.
type PriceRepository interface {
	FindPricesByCrop(ctx context.Context, cropID int64) ([]PriceWithMarket, error)
}

// EventSink persists search events. Inserts are independent of one another;
// no ordering or read-back is required.
type EventSink interface {
	InsertSearchEvent(ctx context.Context, ev Event) error
}
