package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"legend/api/types"
)

func writeWallets(t *testing.T, content string) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "wallets.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadWallets_PreservesOrder(t *testing.T) {
	path := writeWallets(t, `{
		"legendWallets": ["C", "A", "B"],
		"v2Wallets": ["7xLk17EQQ5KLDLDe44wCmupJKJjTGd8hs3eSVVhCx932", "autistHRRqeEmDp92E81uqZqbpEfSKAdC4EbfD84AzE"]
	}`)

	cfg, err := LoadWallets(path)
	require.NoError(t, err)

	assert.Equal(t, []string{"C", "A", "B"}, cfg.LegendWallets)
	assert.Equal(t, []string{
		"7xLk17EQQ5KLDLDe44wCmupJKJjTGd8hs3eSVVhCx932",
		"autistHRRqeEmDp92E81uqZqbpEfSKAdC4EbfD84AzE",
	}, cfg.V2Wallets)
}

func TestLoadWallets_EmptyGroups(t *testing.T) {
	cfg, err := LoadWallets(writeWallets(t, `{"legendWallets": [], "v2Wallets": []}`))
	require.NoError(t, err)

	assert.Empty(t, cfg.LegendWallets)
	assert.Empty(t, cfg.V2Wallets)
}

func TestLoadWallets_MissingFile(t *testing.T) {
	_, err := LoadWallets(filepath.Join(t.TempDir(), "wallets.json"))

	require.Error(t, err)
	assert.ErrorIs(t, err, types.ErrInvalidConfig)
	assert.Contains(t, err.Error(), "not found")
}

func TestLoadWallets_Malformed(t *testing.T) {
	cases := map[string]string{
		"invalid json":   `{"legendWallets": [`,
		"missing legend": `{"v2Wallets": []}`,
		"missing v2":     `{"legendWallets": []}`,
		"null field":     `{"legendWallets": null, "v2Wallets": []}`,
		"wrong type":     `{"legendWallets": "abc", "v2Wallets": []}`,
		"wrong element":  `{"legendWallets": [1, 2], "v2Wallets": []}`,
		"not an object":  `["abc"]`,
	}

	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			cfg, err := LoadWallets(writeWallets(t, content))

			assert.Nil(t, cfg)
			assert.ErrorIs(t, err, types.ErrInvalidConfig)
		})
	}
}

func TestWalletConfig_Groups(t *testing.T) {
	cfg := &types.WalletConfig{LegendWallets: []string{"A"}, V2Wallets: []string{"B", "C"}}

	primary, ok := cfg.Group(types.GroupPrimary)
	require.True(t, ok)
	assert.True(t, primary.Primary)
	assert.Equal(t, []string{"A"}, primary.Addresses)

	secondary, ok := cfg.Group(types.GroupSecondary)
	require.True(t, ok)
	assert.False(t, secondary.Primary)
	assert.Equal(t, []string{"B", "C"}, secondary.Addresses)

	_, ok = cfg.Group("other")
	assert.False(t, ok)
}
