package fx

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/dkhomenko/spendbot/internal/errs"
	"github.com/dkhomenko/spendbot/internal/models"
)

const fetchTimeout = 10 * time.Second

// apiResponse is the provider's wire shape for both the "latest" and the
// dated historical endpoints.
type apiResponse struct {
	Result          string                 `json:"result"`
	ErrorType       string                 `json:"error_type"`
	ConversionRates map[string]json.Number `json:"conversion_rates"`
}

// Client fetches USD-based daily rates from the exchangerate-api
// provider. All failures surface as FetchError, including timeouts.
type Client struct {
	baseURL  string
	apiKey   string
	http     *http.Client
	clockNow func() time.Time
}

func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL:  strings.TrimRight(baseURL, "/"),
		apiKey:   apiKey,
		http:     &http.Client{Timeout: fetchTimeout},
		clockNow: time.Now,
	}
}

// FetchDaily resolves the rate for date (YYYY-MM-DD). Today-or-future
// dates hit the "latest" endpoint; strictly past dates hit the dated
// historical lookup.
func (c *Client) FetchDaily(ctx context.Context, date string) (*models.ExchangeRate, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.endpoint(date), nil)
	if err != nil {
		return nil, errs.NewFetchError(fmt.Sprintf("fx request build failed: %v", err))
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errs.NewFetchError(fmt.Sprintf("fx provider unreachable: %v", err))
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errs.NewFetchError(fmt.Sprintf("fx provider returned status %d", resp.StatusCode))
	}

	var payload apiResponse
	dec := json.NewDecoder(resp.Body)
	dec.UseNumber()
	if err := dec.Decode(&payload); err != nil {
		return nil, errs.NewFetchError(fmt.Sprintf("fx response decode failed: %v", err))
	}

	if payload.Result != "success" {
		return nil, errs.NewFetchError(fmt.Sprintf("fx provider returned unsuccessful response: %s", payload.ErrorType))
	}

	pln := rateFactor(payload.ConversionRates, "PLN")
	uah := rateFactor(payload.ConversionRates, "UAH")
	usd := rateFactor(payload.ConversionRates, "USD")
	if usd.IsZero() {
		usd = decimal.NewFromInt(1)
	}

	// Missing PLN/UAH figures are a fetch error, not a zero rate.
	if pln.IsZero() || uah.IsZero() {
		return nil, errs.NewFetchError("fx provider returned invalid rates")
	}

	return &models.ExchangeRate{
		RateDate:  date,
		PLN:       pln,
		UAH:       uah,
		USD:       usd,
		FetchedAt: c.clockNow().UTC(),
	}, nil
}

func (c *Client) endpoint(date string) string {
	today := c.clockNow().UTC().Format(models.DateLayout)
	if date >= today {
		return fmt.Sprintf("%s/%s/latest/USD", c.baseURL, c.apiKey)
	}
	// a YYYY-MM-DD date maps to /history/USD/YYYY/MM/DD
	y, m, d := date[0:4], date[5:7], date[8:10]
	return fmt.Sprintf("%s/%s/history/USD/%s/%s/%s", c.baseURL, c.apiKey, y, m, d)
}

func rateFactor(rates map[string]json.Number, code string) decimal.Decimal {
	raw, ok := rates[code]
	if !ok {
		return decimal.Zero
	}
	factor, err := decimal.NewFromString(raw.String())
	if err != nil {
		return decimal.Zero
	}
	return factor
}
