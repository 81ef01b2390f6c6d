package search

import (
	"sort"

	"github.com/shopspring/decimal"

	"github.com/krisikbazar/market-service/internal/geo"
)

// Rank annotates each price record with the total cost for the requested
// quantity and the distance from the request origin, sorts the quotes
// ascending by (price_per_kg, distance_km), and extracts the cheapest and
// nearest quotes.
//
// Price is the primary sort key: cost dominates the buyer's decision, with
// proximity as tiebreaker. The nearest market is computed independently of
// the sort order so callers can surface "cheapest" and "nearest" as two
// different recommendations.
//
// Money arithmetic is decimal so currency totals carry no binary rounding
// artifacts; distance stays floating point.
func Rank(prices []PriceWithMarket, quantity decimal.Decimal, lat, lon float64) RankedResult {
	result := RankedResult{Results: []Quote{}}
	if len(prices) == 0 {
		return result
	}

	quotes := make([]Quote, 0, len(prices))
	for _, p := range prices {
		d := geo.HaversineKm(lat, lon, p.MarketLatitude, p.MarketLongitude)
		quotes = append(quotes, Quote{
			ID:             p.ID,
			CropName:       p.CropName,
			CropNameNepali: p.CropNameNepali,
			MarketID:       p.MarketID,
			MarketName:     p.MarketName,
			MarketAddress:  p.MarketAddress,
			PricePerKg:     p.PricePerKg,
			TotalPrice:     p.PricePerKg.Mul(quantity),
			DistanceKm:     geo.RoundKm(d),
			Date:           p.Date.Format("2006-01-02"),
		})
	}

	sort.SliceStable(quotes, func(i, j int) bool {
		if c := quotes[i].PricePerKg.Cmp(quotes[j].PricePerKg); c != 0 {
			return c < 0
		}
		return quotes[i].DistanceKm < quotes[j].DistanceKm
	})

	nearest := 0
	for i := 1; i < len(quotes); i++ {
		if quotes[i].DistanceKm < quotes[nearest].DistanceKm {
			nearest = i
		}
	}

	result.Results = quotes
	result.BestPrice = &quotes[0]
	result.NearestMarket = &quotes[nearest]
	return result
}
