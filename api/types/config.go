package types

import "time"

type Config struct {
	Port          string
	MongoURI      string
	MongoDatabase string
	RedisURI      string
	RPCEndpoint   string
	TokenMint     string
	WalletsFile   string
	ReportPath    string
	MetricsAddr   string
	LogLevel      string
	ScanInterval  time.Duration
	ScanThrottle  time.Duration
	ScanLockTTL   time.Duration
	RateLimit     int
}

// WalletConfig is the parsed wallets.json. Legend wallets form the primary group.
type WalletConfig struct {
	LegendWallets []string `json:"legendWallets"`
	V2Wallets     []string `json:"v2Wallets"`
}

func (w *WalletConfig) Groups() []WalletGroup {
	return []WalletGroup{
		{Name: GroupPrimary, Primary: true, Addresses: w.LegendWallets},
		{Name: GroupSecondary, Primary: false, Addresses: w.V2Wallets},
	}
}

func (w *WalletConfig) Group(name string) (WalletGroup, bool) {
	for _, g := range w.Groups() {
		if g.Name == name {
			return g, true
		}
	}
	return WalletGroup{}, false
}
