package types

import (
	"time"

	"github.com/shopspring/decimal"
)

const (
	GroupPrimary   = "primary"
	GroupSecondary = "secondary"
)

type WalletGroup struct {
	Name      string
	Primary   bool
	Addresses []string
}

type WalletBalance struct {
	Address       string          `json:"address"`
	NativeBalance decimal.Decimal `json:"native_balance"`
	TokenBalance  decimal.Decimal `json:"token_balance"`
	Error         string          `json:"error,omitempty"`
}

// WalletRecord is the latest balance snapshot of one address.
type WalletRecord struct {
	Address       string
	NativeBalance decimal.Decimal
	TokenBalance  decimal.Decimal
	Primary       bool
	UpdatedAt     time.Time
}

type ScanReport struct {
	Group      string
	Scanned    int
	Failed     []string
	StartedAt  time.Time
	FinishedAt time.Time
}

type Summary struct {
	TotalNative decimal.Decimal
	TotalToken  decimal.Decimal
	Wallets     []WalletRecord
	LastScans   map[string]time.Time
}
