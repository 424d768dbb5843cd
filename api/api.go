package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gagliardetto/solana-go/rpc"
	"github.com/gofiber/fiber/v2"
	fiberlogger "github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"legend/api/config"
	"legend/api/database"
	"legend/api/logger"
	"legend/api/metrics"
	"legend/api/repository"
	"legend/api/routes"
	"legend/api/scheduler"
	"legend/api/services"
)

func Main() {
	err := godotenv.Load()
	if err != nil {
		fmt.Println("Error loading .env file, falling back to environment variables")
	}

	log, err := logger.Init(os.Getenv("LOG_LEVEL"))
	if err != nil {
		fmt.Println("Error initializing logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	cfg, err := config.Load()
	if err != nil {
		logger.Fatalf("load config: %v", err)
	}

	wallets, err := config.LoadWallets(cfg.WalletsFile)
	if err != nil {
		logger.Fatalf("load wallets: %v", err)
	}
	logger.Infof("loaded %d legend wallets and %d v2 wallets", len(wallets.LegendWallets), len(wallets.V2Wallets))

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := database.New(ctx, cfg)
	if err != nil {
		logger.Fatalf("database: %v", err)
	}

	repo := repository.NewWalletRepository(db)
	if err := repo.EnsureIndexes(ctx); err != nil {
		database.Close(context.Background(), db)
		logger.Fatalf("database: %v", err)
	}

	m := metrics.New()

	rpcClient := rpc.New(cfg.RPCEndpoint)
	solanaService, err := services.NewSolanaService(rpcClient, cfg.TokenMint, m, log.Named("solana"))
	if err != nil {
		database.Close(context.Background(), db)
		logger.Fatalf("solana: %v", err)
	}

	scanState := services.NewScanState(db.Redis, cfg.ScanLockTTL, log.Named("scan_state"))
	scanner := services.NewScanner(solanaService, repo, scanState, cfg.ScanThrottle, m, log.Named("scanner"))

	sched := scheduler.New(scanner, scanState, cfg.ScanInterval, m, log.Named("scheduler"))
	for _, group := range wallets.Groups() {
		sched.AddGroup(group)
	}
	if err := sched.Start(); err != nil {
		database.Close(context.Background(), db)
		logger.Fatalf("scheduler: %v", err)
	}

	var metricsServer *metrics.Server
	if cfg.MetricsAddr != "" {
		metricsServer = metrics.NewServer(cfg.MetricsAddr, m)
		go func() {
			logger.Infof("serving /metrics on %s", cfg.MetricsAddr)
			if err := metricsServer.Serve(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				logger.Errorf("metrics server: %v", err)
			}
		}()
	}

	app := fiber.New(fiber.Config{
		JSONEncoder:           json.Marshal,
		JSONDecoder:           json.Unmarshal,
		DisableStartupMessage: true,
	})

	app.Use(recover.New())
	app.Use(fiberlogger.New())

	routes.InitRoutes(app, cfg, repo, scanState, log.Named("http"))

	go func() {
		logger.Infof("report page is up on port %s at %s", cfg.Port, cfg.ReportPath)
		if err := app.Listen("0.0.0.0:" + cfg.Port); err != nil {
			logger.Errorf("http server: %v", err)
			stop()
		}
	}()

	<-ctx.Done()
	logger.Infof("shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := app.ShutdownWithContext(shutdownCtx); err != nil {
		log.Warn("http shutdown", zap.Error(err))
	}
	sched.Stop()
	if metricsServer != nil {
		_ = metricsServer.Shutdown(shutdownCtx)
	}
	if err := rpcClient.Close(); err != nil {
		log.Warn("rpc client close", zap.Error(err))
	}
	database.Close(shutdownCtx, db)
}
