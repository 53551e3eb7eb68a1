package service

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"candlekit/internal/domain"
)

const DefaultPortfolioQuote = "USDT"

type PortfolioPosition struct {
	Pair   string  `json:"pair"`
	Amount float64 `json:"amount"`
	Price  float64 `json:"price,omitempty"`
	Value  float64 `json:"value,omitempty"`
	Error  string  `json:"error,omitempty"`
}

// PortfolioValuation prices a spot holdings map at fresh tickers. Positions
// that could not be priced carry an error and are excluded from the total.
type PortfolioValuation struct {
	Quote     string              `json:"quote"`
	Positions []PortfolioPosition `json:"positions"`
	Total     float64             `json:"total"`
	Priced    int                 `json:"priced"`
	Failed    int                 `json:"failed"`
}

// PortfolioValue values each coin:amount holding against the live ticker of
// its pair in the quote currency. Positions are reported in coin order so
// repeated calls with the same holdings line up.
func (s *AnalysisService) PortfolioValue(ctx context.Context, holdings map[string]float64, quote string) (*PortfolioValuation, error) {
	ctx, span := s.tracer.Start(ctx, "analysis-service.portfolio-value")
	defer span.End()

	if len(holdings) == 0 {
		return nil, &domain.ValidationError{Field: "holdings", Reason: "at least one coin:amount entry is required"}
	}
	quote = strings.ToUpper(strings.TrimSpace(quote))
	if quote == "" {
		quote = DefaultPortfolioQuote
	}
	if _, ok := domain.SupportedQuotes[quote]; !ok {
		return nil, &domain.ValidationError{Field: "quote", Reason: fmt.Sprintf("unsupported quote currency %q", quote)}
	}

	coins := make([]string, 0, len(holdings))
	for coin := range holdings {
		coins = append(coins, coin)
	}
	sort.Strings(coins)

	valuation := &PortfolioValuation{
		Quote:     quote,
		Positions: make([]PortfolioPosition, 0, len(coins)),
	}
	for _, coin := range coins {
		amount := holdings[coin]
		pos := PortfolioPosition{
			Pair:   strings.ToUpper(strings.TrimSpace(coin)) + "/" + quote,
			Amount: amount,
		}
		switch {
		case amount <= 0:
			pos.Error = "amount must be positive"
			valuation.Failed++
		default:
			ticker, err := s.data.Ticker(ctx, pos.Pair)
			if err != nil {
				pos.Error = err.Error()
				valuation.Failed++
			} else {
				pos.Price = ticker.Last
				pos.Value = ticker.Last * amount
				valuation.Total += pos.Value
				valuation.Priced++
			}
		}
		valuation.Positions = append(valuation.Positions, pos)
	}
	return valuation, nil
}
