package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/joho/godotenv"

	"legend/api/config"
	"legend/api/database"
	"legend/api/logger"
	"legend/api/repository"
	"legend/api/services"
	"legend/api/types"
)

// Runs one scan of a wallet group and exits. Honors the scan lock held by a
// running server so the two never scan at the same time.
func main() {
	group := flag.String("group", types.GroupSecondary, "wallet group to scan (primary or secondary)")
	flag.Parse()

	if err := godotenv.Load(".env"); err != nil {
		fmt.Println("Error loading .env file, falling back to environment variables")
	}

	log, err := logger.Init(os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Println("Error initializing logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	if err := run(*group); err != nil {
		log.Sugar().Errorf("scan failed: %v", err)
		logger.Sync()
		os.Exit(1)
	}
}

func run(groupName string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	wallets, err := config.LoadWallets(cfg.WalletsFile)
	if err != nil {
		return err
	}

	group, ok := wallets.Group(groupName)
	if !ok {
		return fmt.Errorf("%w: unknown wallet group %q", types.ErrInvalidConfig, groupName)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer database.Close(context.Background(), db)

	client := rpc.New(cfg.RPCEndpoint)
	defer client.Close()

	solanaService, err := services.NewSolanaService(client, cfg.TokenMint, nil, logger.L().Named("solana"))
	if err != nil {
		return err
	}

	state := services.NewScanState(db.Redis, cfg.ScanLockTTL, logger.L().Named("scan_state"))
	release, err := state.Acquire(ctx)
	if errors.Is(err, types.ErrScanInProgress) {
		logger.Warnf("another scan is running, nothing to do")
		return nil
	}
	if err != nil {
		return err
	}
	defer release()

	scanner := services.NewScanner(solanaService, repository.NewWalletRepository(db), state, cfg.ScanThrottle, nil, logger.L().Named("scanner"))

	report, err := scanner.Run(ctx, group)
	if err != nil {
		return err
	}

	fmt.Printf("Loop finished. %d wallets scanned, %d failed\n", report.Scanned, len(report.Failed))
	for _, address := range report.Failed {
		fmt.Printf("  failed: %s\n", address)
	}

	return nil
}
