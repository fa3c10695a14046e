package exchange

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/application/rates"
	"github.com/storefront/backend/internal/domain/currency"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/tidwall/gjson"
	"go.uber.org/zap"
)

// Config holds the exchange-rate source settings
type Config struct {
	URL     string
	Timeout time.Duration
}

// HTTPProvider fetches exchange rates from a JSON endpoint shaped like
// {"base":"LKR","rates":{"USD":0.004,...}} where each rate is the
// amount of that currency per one unit of the base. Rates are inverted
// into the table convention of base units per one unit of currency.
type HTTPProvider struct {
	url    string
	client *http.Client
	log    *zap.Logger
}

// NewHTTPProvider creates a provider. A non-positive timeout defaults
// to 10 seconds.
func NewHTTPProvider(cfg Config, log *zap.Logger) *HTTPProvider {
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &HTTPProvider{
		url:    cfg.URL,
		client: &http.Client{Timeout: timeout},
		log:    log,
	}
}

// Fetch downloads and parses the current rate table
func (p *HTTPProvider) Fetch(ctx context.Context) (currency.RateTable, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build rate request: %w", err)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRatesUnavailable, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: unexpected status %d", shared.ErrRatesUnavailable, resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrRatesUnavailable, err)
	}

	parsed := gjson.GetBytes(body, "rates")
	if !parsed.Exists() || !parsed.IsObject() {
		return nil, fmt.Errorf("%w: response has no rates object", shared.ErrRatesUnavailable)
	}

	one := decimal.NewFromInt(1)
	table := currency.RateTable{currency.BaseCode: one}
	parsed.ForEach(func(key, value gjson.Result) bool {
		rate := decimal.NewFromFloat(value.Float())
		if !rate.IsPositive() {
			p.log.Warn("skipping non-positive exchange rate",
				zap.String("currency", key.String()),
				zap.Float64("rate", value.Float()),
			)
			return true
		}
		table[currency.Code(key.String())] = one.DivRound(rate, 8)
		return true
	})

	if len(table) == 1 {
		return nil, fmt.Errorf("%w: rates object is empty", shared.ErrRatesUnavailable)
	}
	return table, nil
}

var _ rates.Provider = (*HTTPProvider)(nil)
