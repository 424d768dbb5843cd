package services

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"sync"
	"time"

	bin "github.com/gagliardetto/binary"
	"github.com/gagliardetto/solana-go"
	"github.com/gagliardetto/solana-go/programs/token"
	"github.com/gagliardetto/solana-go/rpc"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"legend/api/metrics"
	"legend/api/types"
)

const (
	tokenAccountSize   = 165
	tokenOwnerOffset   = 32
	tokenMintOffset    = 0
	rpcRequestTimeout  = 10 * time.Second
	fetchKindNative    = "native"
	fetchKindToken     = "token"
	fetchKindTokenMint = "token_mint"
)

// ChainClient is the subset of *rpc.Client the fetcher uses.
type ChainClient interface {
	GetBalance(ctx context.Context, account solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetBalanceResult, error)
	GetProgramAccountsWithOpts(ctx context.Context, program solana.PublicKey, opts *rpc.GetProgramAccountsOpts) (rpc.GetProgramAccountsResult, error)
	GetTokenSupply(ctx context.Context, mint solana.PublicKey, commitment rpc.CommitmentType) (*rpc.GetTokenSupplyResult, error)
}

type SolanaService struct {
	client  ChainClient
	mint    solana.PublicKey
	metrics *metrics.Metrics
	log     *zap.Logger

	mu       sync.Mutex
	decimals *uint8
}

func NewSolanaService(client ChainClient, tokenMint string, m *metrics.Metrics, log *zap.Logger) (*SolanaService, error) {
	mint, err := solana.PublicKeyFromBase58(tokenMint)
	if err != nil {
		return nil, fmt.Errorf("invalid token mint %s: %w", tokenMint, err)
	}
	if log == nil {
		log = zap.NewNop()
	}

	return &SolanaService{
		client:  client,
		mint:    mint,
		metrics: m,
		log:     log,
	}, nil
}

// FetchBalances queries every address in order, one at a time. A failure is
// recorded on that address's entry and does not stop the remaining ones.
func (s *SolanaService) FetchBalances(ctx context.Context, addresses []string) []types.WalletBalance {
	results := make([]types.WalletBalance, 0, len(addresses))

	for _, address := range addresses {
		balance, err := s.FetchBalance(ctx, address)
		if err != nil {
			s.log.Warn("balance fetch failed", zap.String("address", address), zap.Error(err))
			results = append(results, types.WalletBalance{
				Address:       address,
				NativeBalance: decimal.Zero,
				TokenBalance:  decimal.Zero,
				Error:         err.Error(),
			})
			continue
		}
		results = append(results, balance)
	}

	return results
}

func (s *SolanaService) FetchBalance(ctx context.Context, address string) (types.WalletBalance, error) {
	native, err := s.NativeBalance(ctx, address)
	if err != nil {
		return types.WalletBalance{}, err
	}

	tokens, err := s.TokenBalance(ctx, address)
	if err != nil {
		return types.WalletBalance{}, err
	}

	return types.WalletBalance{
		Address:       strings.TrimSpace(address),
		NativeBalance: native,
		TokenBalance:  tokens,
	}, nil
}

func (s *SolanaService) NativeBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	pubKey, err := parseAddress(address)
	if err != nil {
		return decimal.Zero, err
	}

	ctx, cancel := context.WithTimeout(ctx, rpcRequestTimeout)
	defer cancel()

	out, err := s.client.GetBalance(ctx, pubKey, rpc.CommitmentFinalized)
	s.observe(fetchKindNative, err)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get balance for %s: %w", pubKey, err)
	}

	return lamportsToSol(out.Value), nil
}

// TokenBalance sums the tracked token held across every token account owned by
// address. An address without token accounts holds zero.
func (s *SolanaService) TokenBalance(ctx context.Context, address string) (decimal.Decimal, error) {
	owner, err := parseAddress(address)
	if err != nil {
		return decimal.Zero, err
	}

	decimals, err := s.mintDecimals(ctx)
	if err != nil {
		return decimal.Zero, err
	}

	ctx, cancel := context.WithTimeout(ctx, rpcRequestTimeout)
	defer cancel()

	accounts, err := s.client.GetProgramAccountsWithOpts(ctx, solana.TokenProgramID, &rpc.GetProgramAccountsOpts{
		Commitment: rpc.CommitmentFinalized,
		Encoding:   solana.EncodingBase64,
		Filters: []rpc.RPCFilter{
			{DataSize: tokenAccountSize},
			{Memcmp: &rpc.RPCFilterMemcmp{Offset: tokenOwnerOffset, Bytes: owner.Bytes()}},
			{Memcmp: &rpc.RPCFilterMemcmp{Offset: tokenMintOffset, Bytes: s.mint.Bytes()}},
		},
	})
	s.observe(fetchKindToken, err)
	if err != nil {
		return decimal.Zero, fmt.Errorf("failed to get token accounts for %s: %w", owner, err)
	}

	total := decimal.Zero
	for _, keyed := range accounts {
		if keyed == nil || keyed.Account == nil || keyed.Account.Data == nil {
			continue
		}

		var account token.Account
		if err := bin.NewBinDecoder(keyed.Account.Data.GetBinary()).Decode(&account); err != nil {
			return decimal.Zero, fmt.Errorf("failed to decode token account %s: %w", keyed.Pubkey, err)
		}

		total = total.Add(decimal.NewFromBigInt(new(big.Int).SetUint64(account.Amount), -int32(decimals)))
	}

	return total, nil
}

func (s *SolanaService) mintDecimals(ctx context.Context) (uint8, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.decimals != nil {
		return *s.decimals, nil
	}

	ctx, cancel := context.WithTimeout(ctx, rpcRequestTimeout)
	defer cancel()

	out, err := s.client.GetTokenSupply(ctx, s.mint, rpc.CommitmentFinalized)
	s.observe(fetchKindTokenMint, err)
	if err != nil {
		return 0, fmt.Errorf("failed to get token supply for %s: %w", s.mint, err)
	}
	if out == nil || out.Value == nil {
		return 0, fmt.Errorf("empty token supply response for %s", s.mint)
	}

	decimals := out.Value.Decimals
	s.decimals = &decimals

	return decimals, nil
}

func (s *SolanaService) observe(kind string, err error) {
	if s.metrics != nil {
		s.metrics.ObserveFetch(kind, err)
	}
}

func parseAddress(address string) (solana.PublicKey, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return solana.PublicKey{}, fmt.Errorf("%w: empty wallet address", types.ErrInvalidAddress)
	}

	pubKey, err := solana.PublicKeyFromBase58(address)
	if err != nil {
		return solana.PublicKey{}, fmt.Errorf("%w: %s", types.ErrInvalidAddress, address)
	}

	return pubKey, nil
}

func lamportsToSol(lamports uint64) decimal.Decimal {
	l := decimal.NewFromBigInt(new(big.Int).SetUint64(lamports), 0)
	return l.Div(decimal.NewFromBigInt(new(big.Int).SetUint64(solana.LAMPORTS_PER_SOL), 0))
}
