// Package comtrade fetches bilateral trade flows from the UN COMTRADE
// public API. The public tier throttles aggressively, so every request
// passes through a client-side rate limiter before it reaches the
// network.
package comtrade

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"golang.org/x/time/rate"

	"geopolrisk/internal/config"
	"geopolrisk/internal/dataset"
	"geopolrisk/pkg/contracts/domain"
)

// worldPartnerCode is COMTRADE's aggregate row over all partners. It
// duplicates the per-partner rows and is dropped during parsing.
const worldPartnerCode = 0

// Client is a rate-limited COMTRADE API client.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter
	logger     *slog.Logger
}

// NewClient builds a client from configuration. The limiter spreads
// the configured hourly budget evenly with a burst of one.
func NewClient(cfg config.ComtradeConfig, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	interval := time.Hour / time.Duration(cfg.RatePerHour)
	return &Client{
		baseURL: cfg.BaseURL,
		httpClient: &http.Client{
			Timeout: cfg.RequestTimeout,
		},
		limiter: rate.NewLimiter(rate.Every(interval), 1),
		logger:  logger,
	}
}

// response mirrors the COMTRADE JSON envelope. Quantities arrive in
// kilograms, values in USD.
type response struct {
	Dataset []struct {
		Period       int     `json:"period"`
		ReporterCode int     `json:"rtCode"`
		ReporterISO  string  `json:"rt3ISO"`
		Reporter     string  `json:"rtTitle"`
		PartnerCode  int     `json:"ptCode"`
		PartnerISO   string  `json:"pt3ISO"`
		Partner      string  `json:"ptTitle"`
		CmdCode      string  `json:"cmdCode"`
		NetWeight    float64 `json:"NetWeight"`
		TradeValue   float64 `json:"TradeValue"`
	} `json:"dataset"`
}

// Fetch retrieves the import flows of one reporter for one commodity
// and period. The aggregate World row is dropped; the per-partner rows
// carry no governance indicator yet, AttachWGI fills that in.
func (c *Client) Fetch(ctx context.Context, period, reporterCode, cmdCode int) ([]domain.TradeFlow, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limit wait: %w", err)
	}

	q := url.Values{}
	q.Set("max", "50000")
	q.Set("type", "C")
	q.Set("freq", "A")
	q.Set("px", "HS")
	q.Set("ps", strconv.Itoa(period))
	q.Set("r", strconv.Itoa(reporterCode))
	q.Set("p", "all")
	q.Set("cc", strconv.Itoa(cmdCode))
	q.Set("rg", "1") // imports
	q.Set("fmt", "json")

	reqURL := c.baseURL + "?" + q.Encode()
	c.logger.Debug("fetching COMTRADE data",
		slog.Int("period", period),
		slog.Int("reporter", reporterCode),
		slog.Int("commodity", cmdCode))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("fetch trade data: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("comtrade responded %s", resp.Status)
	}

	var payload response
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("decode trade response: %w", err)
	}

	flows := make([]domain.TradeFlow, 0, len(payload.Dataset))
	for _, row := range payload.Dataset {
		if row.PartnerCode == worldPartnerCode {
			continue
		}
		cmd, err := strconv.Atoi(row.CmdCode)
		if err != nil {
			cmd = cmdCode
		}
		flows = append(flows, domain.TradeFlow{
			Period:       row.Period,
			ReporterCode: row.ReporterCode,
			ReporterISO:  row.ReporterISO,
			ReporterName: row.Reporter,
			PartnerCode:  row.PartnerCode,
			PartnerISO:   row.PartnerISO,
			PartnerName:  row.Partner,
			CmdCode:      cmd,
			Qty:          row.NetWeight,
			CIFValue:     row.TradeValue,
			WGIMissing:   true,
		})
	}
	c.logger.Debug("COMTRADE fetch complete", slog.Int("flows", len(flows)))
	return flows, nil
}

// AttachWGI resolves the governance indicator of each flow's partner
// from the reference data. Partners without an indicator for the
// flow's period keep the neutral fallback.
func AttachWGI(ref *dataset.Ref, flows []domain.TradeFlow) {
	for i := range flows {
		if v, ok := ref.WGI(flows[i].PartnerCode, flows[i].Period); ok {
			flows[i].PartnerWGI = v
			flows[i].WGIMissing = false
		}
	}
}
