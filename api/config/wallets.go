package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"

	"legend/api/types"
)

type walletFile struct {
	LegendWallets *[]string `json:"legendWallets"`
	V2Wallets     *[]string `json:"v2Wallets"`
}

// LoadWallets reads the two wallet groups from path. Any problem with the file
// is returned as types.ErrInvalidConfig; there is no partial or default config.
func LoadWallets(path string) (*types.WalletConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s not found. Copy wallets.json.example to %s and configure your wallet addresses",
				types.ErrInvalidConfig, path, path)
		}
		return nil, fmt.Errorf("%w: read %s: %v", types.ErrInvalidConfig, path, err)
	}

	var raw walletFile
	if err := json.Unmarshal(data, &raw); err != nil {
		var typeErr *json.UnmarshalTypeError
		if errors.As(err, &typeErr) {
			return nil, fmt.Errorf("%w: %s: field %q must be an array of strings", types.ErrInvalidConfig, path, typeErr.Field)
		}
		return nil, fmt.Errorf("%w: invalid JSON in %s: %v", types.ErrInvalidConfig, path, err)
	}

	if raw.LegendWallets == nil {
		return nil, fmt.Errorf("%w: %s must contain 'legendWallets' array", types.ErrInvalidConfig, path)
	}
	if raw.V2Wallets == nil {
		return nil, fmt.Errorf("%w: %s must contain 'v2Wallets' array", types.ErrInvalidConfig, path)
	}

	return &types.WalletConfig{
		LegendWallets: *raw.LegendWallets,
		V2Wallets:     *raw.V2Wallets,
	}, nil
}
