package routes

import (
	"context"
	"errors"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legend/api/middleware"
	"legend/api/types"
)

type fakeWallets struct {
	records []types.WalletRecord
	err     error
}

func (f fakeWallets) List(context.Context) ([]types.WalletRecord, error) {
	return f.records, f.err
}

type fakeScans map[string]time.Time

func (f fakeScans) LastScans(context.Context, ...string) (map[string]time.Time, error) {
	return f, nil
}

func setupApp(t *testing.T, wallets WalletLister, scans LastScanReader, rateLimit int) *fiber.App {
	t.Helper()

	middleware.ClearRateLimiters()

	app := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})

	cfg := &types.Config{ReportPath: "/report", RateLimit: rateLimit}
	InitRoutes(app, cfg, wallets, scans, nil)

	return app
}

func get(t *testing.T, app *fiber.App, path string) (*http.Response, string) {
	t.Helper()

	req, _ := http.NewRequest("GET", path, nil)
	resp, err := app.Test(req)
	require.NoError(t, err)

	body, _ := io.ReadAll(resp.Body)
	return resp, string(body)
}

func TestReport_Totals(t *testing.T) {
	wallets := fakeWallets{records: []types.WalletRecord{
		{Address: "A", NativeBalance: decimal.RequireFromString("1.5"), TokenBalance: decimal.NewFromInt(100), Primary: true},
		{Address: "B", NativeBalance: decimal.RequireFromString("2.5"), TokenBalance: decimal.Zero},
	}}
	app := setupApp(t, wallets, fakeScans{types.GroupSecondary: time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)}, 60)

	resp, body := get(t, app, "/report")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, resp.Header.Get("Content-Type"), "text/html")
	assert.Contains(t, body, "Total Solana Balance: 4<")
	assert.Contains(t, body, "Total Legend Balance: 100<")
	assert.Contains(t, body, "Last secondary scan: 2024-05-01 08:00:00 UTC")
	assert.Less(t, strings.Index(body, "<td>A</td>"), strings.Index(body, "<td>B</td>"))
}

func TestReport_EmptyStore(t *testing.T) {
	app := setupApp(t, fakeWallets{}, nil, 60)

	resp, body := get(t, app, "/report")

	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.Contains(t, body, "Total Solana Balance: 0<")
}

func TestReport_StoreError(t *testing.T) {
	app := setupApp(t, fakeWallets{err: errors.New("server selection timeout")}, nil, 60)

	resp, body := get(t, app, "/report")

	assert.Equal(t, fiber.StatusInternalServerError, resp.StatusCode)
	assert.Contains(t, body, "Database error")
}

func TestReport_OnlyReportRoute(t *testing.T) {
	app := setupApp(t, fakeWallets{}, nil, 60)

	resp, _ := get(t, app, "/")
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	req, _ := http.NewRequest("POST", "/report", nil)
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.NotEqual(t, fiber.StatusOK, resp.StatusCode)
}

func TestReport_RateLimiting(t *testing.T) {
	app := setupApp(t, fakeWallets{}, nil, 2)

	successCount := 0
	limited := false
	for i := 0; i < 5; i++ {
		resp, _ := get(t, app, "/report")
		if resp.StatusCode == fiber.StatusOK {
			successCount++
		} else if resp.StatusCode == fiber.StatusTooManyRequests {
			limited = true
			break
		}
	}

	assert.Equal(t, 2, successCount)
	assert.True(t, limited, "third request should be rate limited")
}
