package services

import (
	"github.com/shopspring/decimal"

	"legend/api/types"
)

func Summarize(records []types.WalletRecord) types.Summary {
	summary := types.Summary{
		TotalNative: decimal.Zero,
		TotalToken:  decimal.Zero,
		Wallets:     records,
	}

	for _, record := range records {
		summary.TotalNative = summary.TotalNative.Add(record.NativeBalance)
		summary.TotalToken = summary.TotalToken.Add(record.TokenBalance)
	}

	return summary
}
