package views

import (
	"bytes"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legend/api/types"
)

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "1,234,567.891", formatAmount(decimal.RequireFromString("1234567.8912")))
	assert.Equal(t, "100", formatAmount(decimal.NewFromInt(100)))
	assert.Equal(t, "0", formatAmount(decimal.Zero))
	assert.Equal(t, "999", formatAmount(decimal.NewFromInt(999)))
	assert.Equal(t, "0.5", formatAmount(decimal.RequireFromString("0.5")))
	assert.Equal(t, "-12,345.6", formatAmount(decimal.RequireFromString("-12345.6")))
}

func TestFormatAmount_KeepsLargeTotalsExact(t *testing.T) {
	total := decimal.RequireFromString("123456789012345678.123")

	assert.Equal(t, "123,456,789,012,345,678.123", formatAmount(total))
}

func TestRenderIndex(t *testing.T) {
	summary := types.Summary{
		TotalNative: decimal.NewFromInt(4),
		TotalToken:  decimal.NewFromInt(1500),
		Wallets: []types.WalletRecord{
			{Address: "7xLk17EQQ5KLDLDe44wCmupJKJjTGd8hs3eSVVhCx932", NativeBalance: decimal.RequireFromString("1.5"), TokenBalance: decimal.NewFromInt(1500)},
			{Address: "<script>", NativeBalance: decimal.RequireFromString("2.5"), TokenBalance: decimal.Zero},
		},
		LastScans: map[string]time.Time{
			types.GroupPrimary: time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
		},
	}

	var buf bytes.Buffer
	require.NoError(t, RenderIndex(&buf, summary))
	body := buf.String()

	assert.Contains(t, body, "Total Solana Balance: 4<")
	assert.Contains(t, body, "Total Legend Balance: 1,500<")
	assert.Contains(t, body, "Last primary scan: 2024-05-01 12:00:00 UTC")
	assert.Contains(t, body, "<td>7xLk17EQQ5KLDLDe44wCmupJKJjTGd8hs3eSVVhCx932</td>")
	assert.Contains(t, body, "<td>1.5</td>")
	assert.Contains(t, body, "&lt;script&gt;")
	assert.Equal(t, 2, bytes.Count(buf.Bytes(), []byte("<tr>"))-1)
}
