// backend/src/services/yahoo_provider.go
package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/shopspring/decimal"
	"github.com/username/walletpulse/backend/src/logger"
	"github.com/username/walletpulse/backend/src/models"
	"golang.org/x/net/publicsuffix"
)

// DefaultYahooBaseURL is the public Yahoo Finance query host.
const DefaultYahooBaseURL = "https://query1.finance.yahoo.com"

const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

var errUnauthorized = errors.New("yahoo quote request unauthorized")

// --- API Response Structs ---

type yahooQuoteResponse struct {
	QuoteResponse struct {
		Result []struct {
			Symbol                     string          `json:"symbol"`
			ShortName                  string          `json:"shortName"`
			Currency                   string          `json:"currency"`
			RegularMarketPrice         decimal.Decimal `json:"regularMarketPrice"`
			RegularMarketChangePercent decimal.Decimal `json:"regularMarketChangePercent"`
		} `json:"result"`
		Error interface{} `json:"error"`
	} `json:"quoteResponse"`
}

// --- Provider Implementation ---

// YahooQuoteProvider fetches quotes from the Yahoo Finance v7 quote endpoint.
// Yahoo requires a cookie-backed session and a crumb token, both obtained lazily.
type YahooQuoteProvider struct {
	httpClient  *http.Client
	baseURL     string
	warmupURLs  []string
	crumb       string
	initialized bool
	mu          sync.Mutex
}

func NewYahooQuoteProvider(baseURL string, timeout time.Duration) *YahooQuoteProvider {
	jar, err := cookiejar.New(&cookiejar.Options{PublicSuffixList: publicsuffix.List})
	if err != nil {
		logger.L.Error("Failed to create cookie jar", "error", err)
	}
	if baseURL == "" {
		baseURL = DefaultYahooBaseURL
	}

	p := &YahooQuoteProvider{
		httpClient: &http.Client{Jar: jar, Timeout: timeout},
		baseURL:    strings.TrimRight(baseURL, "/"),
	}
	// The consent cookies only exist on the real Yahoo hosts.
	if p.baseURL == DefaultYahooBaseURL {
		p.warmupURLs = []string{"https://fc.yahoo.com", "https://finance.yahoo.com"}
	}
	return p
}

func (p *YahooQuoteProvider) ensureSession(ctx context.Context) {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.initialized && p.crumb != "" {
		return
	}

	logger.FromContext(ctx).Info("Initializing Yahoo Finance session and fetching Crumb...")
	for _, u := range p.warmupURLs {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
		if err != nil {
			continue
		}
		req.Header.Set("User-Agent", userAgent)
		if resp, err := p.httpClient.Do(req); err == nil {
			io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/v1/test/getcrumb", nil)
	if err != nil {
		return
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := p.httpClient.Do(req)
	if err != nil {
		logger.FromContext(ctx).Warn("Failed to fetch crumb", "error", err)
		return
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		logger.FromContext(ctx).Warn("Failed to fetch crumb", "status", resp.Status)
		return
	}
	body, _ := io.ReadAll(resp.Body)
	p.crumb = strings.TrimSpace(string(body))
	p.initialized = p.crumb != ""
	logger.FromContext(ctx).Info("Yahoo session initialized", "hasCrumb", p.initialized)
}

func (p *YahooQuoteProvider) resetSession() {
	p.mu.Lock()
	p.initialized = false
	p.crumb = ""
	p.mu.Unlock()
}

func (p *YahooQuoteProvider) currentCrumb() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.crumb
}

// GetQuotes requests all symbols in a single call. Symbols Yahoo does not know are
// simply absent from the result. An expired session is renewed once.
func (p *YahooQuoteProvider) GetQuotes(ctx context.Context, symbols []string) (map[string]models.MarketQuote, error) {
	if len(symbols) == 0 {
		return map[string]models.MarketQuote{}, nil
	}

	p.ensureSession(ctx)
	quotes, err := p.fetch(ctx, symbols)
	if errors.Is(err, errUnauthorized) {
		p.resetSession()
		p.ensureSession(ctx)
		quotes, err = p.fetch(ctx, symbols)
	}
	return quotes, err
}

func (p *YahooQuoteProvider) fetch(ctx context.Context, symbols []string) (map[string]models.MarketQuote, error) {
	params := url.Values{}
	params.Set("symbols", strings.Join(symbols, ","))
	if crumb := p.currentCrumb(); crumb != "" {
		params.Set("crumb", crumb)
	}
	reqURL := fmt.Sprintf("%s/v7/finance/quote?%s", p.baseURL, params.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Accept", "application/json")

	resp, err := p.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("yahoo quote request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden {
		io.Copy(io.Discard, resp.Body)
		return nil, errUnauthorized
	}
	if resp.StatusCode != http.StatusOK {
		io.Copy(io.Discard, resp.Body)
		return nil, fmt.Errorf("yahoo quote request returned %s", resp.Status)
	}

	var data yahooQuoteResponse
	if err := json.NewDecoder(resp.Body).Decode(&data); err != nil {
		return nil, fmt.Errorf("decoding yahoo quote response: %w", err)
	}

	now := time.Now().UTC()
	quotes := make(map[string]models.MarketQuote, len(data.QuoteResponse.Result))
	for _, r := range data.QuoteResponse.Result {
		if r.Symbol == "" || !r.RegularMarketPrice.IsPositive() {
			continue
		}
		quotes[r.Symbol] = models.MarketQuote{
			Symbol:        r.Symbol,
			Name:          r.ShortName,
			Price:         r.RegularMarketPrice,
			Currency:      strings.ToUpper(r.Currency),
			ChangePercent: r.RegularMarketChangePercent,
			FetchedAt:     now,
		}
	}
	logger.FromContext(ctx).Debug("Fetched quotes from Yahoo", "requested", len(symbols), "received", len(quotes))
	return quotes, nil
}
