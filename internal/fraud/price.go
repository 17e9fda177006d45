// Package fraud implements listing fraud screening: per-signal scorers
// and the aggregate risk engine that combines them into a 0-10 score,
// red flags, and a recommended action.
package fraud

import (
	"math"
	"strconv"
	"strings"

	"github.com/halaleco/amanah/internal/domain"
)

// Base market prices per category. Unrecognized categories fall back
// to the default.
var basePrices = map[string]float64{
	"food":        15,
	"cosmetics":   25,
	"supplements": 35,
	"clothing":    45,
	"electronics": 150,
}

const defaultBasePrice = 20

// AnalyzePricing compares the listed price against the category market
// price and buckets the deviation. Competitor prices are synthesized
// around the market price from the product id, so the analysis is a
// pure function of the request.
func AnalyzePricing(req *domain.FraudRequest) domain.PriceAnalysis {
	price, _ := parsePrice(req.Price)
	market := estimateMarketPrice(req.Category)
	deviation := (market - price) / market * 100

	category := domain.PriceNormal
	switch {
	case deviation > 75:
		category = domain.PriceVeryLow
	case deviation > 25:
		category = domain.PriceLow
	case deviation < -75:
		category = domain.PriceVeryHigh
	case deviation < -25:
		category = domain.PriceHigh
	}

	return domain.PriceAnalysis{
		MarketPrice:       market,
		PriceDeviation:    deviation,
		IsPriceSuspicious: math.Abs(deviation) > 50,
		PriceCategory:     category,
		CompetitorPrices:  competitorPrices(market, req.ProductID),
	}
}

func estimateMarketPrice(category string) float64 {
	if base, ok := basePrices[strings.ToLower(category)]; ok {
		return base
	}
	return defaultBasePrice
}

// competitorPrices fabricates five prices within 20 percent of market,
// seeded from the product id.
func competitorPrices(market float64, productID string) []float64 {
	prices := make([]float64, 5)
	for i := range prices {
		h := hashStrings(productID, strconv.Itoa(i))
		variation := float64(h%400)/1000 - 0.2 // -0.2 .. +0.2
		prices[i] = math.Round(market*(1+variation)*100) / 100
	}
	return prices
}

// parsePrice extracts the numeric portion of a price string that may
// carry currency symbols or other noise.
func parsePrice(s string) (float64, bool) {
	var b strings.Builder
	for _, r := range s {
		if (r >= '0' && r <= '9') || r == '.' {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return 0, false
	}
	v, err := strconv.ParseFloat(b.String(), 64)
	if err != nil {
		return 0, false
	}
	return v, true
}
