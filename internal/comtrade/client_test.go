package comtrade

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"geopolrisk/internal/config"
	"geopolrisk/internal/dataset"
	"geopolrisk/pkg/contracts/domain"
)

const sampleResponse = `{
	"dataset": [
		{
			"period": 2020, "rtCode": 276, "rt3ISO": "DEU", "rtTitle": "Germany",
			"ptCode": 0, "pt3ISO": "WLD", "ptTitle": "World",
			"cmdCode": "810520", "NetWeight": 150, "TradeValue": 1600
		},
		{
			"period": 2020, "rtCode": 276, "rt3ISO": "DEU", "rtTitle": "Germany",
			"ptCode": 180, "pt3ISO": "COD", "ptTitle": "Congo",
			"cmdCode": "810520", "NetWeight": 100, "TradeValue": 1000
		},
		{
			"period": 2020, "rtCode": 276, "rt3ISO": "DEU", "rtTitle": "Germany",
			"ptCode": 36, "pt3ISO": "AUS", "ptTitle": "Australia",
			"cmdCode": "810520", "NetWeight": 50, "TradeValue": 600
		}
	]
}`

func newTestClient(baseURL string) *Client {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewClient(config.ComtradeConfig{
		BaseURL:        baseURL,
		RequestTimeout: 5 * time.Second,
		// A generous budget so tests never block on the limiter.
		RatePerHour: 3600000,
	}, logger)
}

func TestClientFetch(t *testing.T) {
	var query map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		query = map[string]string{
			"ps": r.URL.Query().Get("ps"),
			"r":  r.URL.Query().Get("r"),
			"cc": r.URL.Query().Get("cc"),
			"rg": r.URL.Query().Get("rg"),
		}
		w.Header().Set("Content-Type", "application/json")
		io.WriteString(w, sampleResponse)
	}))
	defer srv.Close()

	flows, err := newTestClient(srv.URL).Fetch(context.Background(), 2020, 276, 810520)
	require.NoError(t, err)

	assert.Equal(t, "2020", query["ps"])
	assert.Equal(t, "276", query["r"])
	assert.Equal(t, "810520", query["cc"])
	assert.Equal(t, "1", query["rg"])

	// The aggregate World row is dropped.
	require.Len(t, flows, 2)
	assert.Equal(t, "Congo", flows[0].PartnerName)
	assert.Equal(t, 180, flows[0].PartnerCode)
	assert.InDelta(t, 100, flows[0].Qty, 1e-9)
	assert.InDelta(t, 1000, flows[0].CIFValue, 1e-9)
	assert.True(t, flows[0].WGIMissing)
	assert.Equal(t, 810520, flows[0].CmdCode)
}

func TestClientFetchServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "rate limited", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newTestClient(srv.URL).Fetch(context.Background(), 2020, 276, 810520)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "429")
}

func TestClientFetchCanceledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := newTestClient("http://127.0.0.1:0").Fetch(ctx, 2020, 276, 810520)
	require.Error(t, err)
}

func TestAttachWGI(t *testing.T) {
	ref := dataset.NewStaticRef(dataset.StaticData{
		WGI: map[int]map[int]float64{180: {2020: 0.2}},
	})
	flows := []domain.TradeFlow{
		{Period: 2020, PartnerCode: 180, WGIMissing: true},
		{Period: 2020, PartnerCode: 36, WGIMissing: true},
	}

	AttachWGI(ref, flows)

	assert.False(t, flows[0].WGIMissing)
	assert.InDelta(t, 0.2, flows[0].PartnerWGI, 1e-9)
	assert.True(t, flows[1].WGIMissing)
	assert.InDelta(t, domain.NeutralWGI, flows[1].WGI(), 1e-9)
}
