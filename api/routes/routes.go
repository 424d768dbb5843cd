package routes

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"legend/api/middleware"
	"legend/api/types"
)

// InitRoutes registers the report page, the only public route.
func InitRoutes(app *fiber.App, cfg *types.Config, wallets WalletLister, scans LastScanReader, log *zap.Logger) {
	app.Get(cfg.ReportPath, middleware.RateLimitMiddleware(cfg.RateLimit), Report(wallets, scans, log))
}
