package routes

import (
	"bytes"
	"context"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"legend/api/services"
	"legend/api/types"
	"legend/api/views"
)

type WalletLister interface {
	List(ctx context.Context) ([]types.WalletRecord, error)
}

type LastScanReader interface {
	LastScans(ctx context.Context, groups ...string) (map[string]time.Time, error)
}

func Report(wallets WalletLister, scans LastScanReader, log *zap.Logger) fiber.Handler {
	if log == nil {
		log = zap.NewNop()
	}

	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), 10*time.Second)
		defer cancel()

		records, err := wallets.List(ctx)
		if err != nil {
			log.Error("failed to list wallets", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
				Success: false,
				Message: "Database error",
			})
		}

		summary := services.Summarize(records)

		if scans != nil {
			lastScans, err := scans.LastScans(ctx, types.GroupPrimary, types.GroupSecondary)
			if err != nil {
				log.Warn("failed to read last scan times", zap.Error(err))
			}
			summary.LastScans = lastScans
		}

		var buf bytes.Buffer
		if err := views.RenderIndex(&buf, summary); err != nil {
			log.Error("failed to render report", zap.Error(err))
			return c.Status(fiber.StatusInternalServerError).JSON(types.ErrorResponse{
				Success: false,
				Message: "Render error",
			})
		}

		c.Type("html", "utf-8")
		return c.Send(buf.Bytes())
	}
}
