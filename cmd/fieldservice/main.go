package main

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/fixmate/field-service/internal/app"
	"github.com/fixmate/field-service/platform/logger"
)

func main() {
	ctx, quit := signal.NotifyContext(
		context.Background(),
		syscall.SIGINT, syscall.SIGTERM,
	)
	defer quit()

	a, err := app.New(ctx)
	if err != nil {
		logger.Error(ctx,
			"failed to create an application",
			logger.ErrorF(err),
		)
		return
	}

	if err := a.Run(ctx); err != nil {
		logger.Error(ctx, "field service server error", logger.ErrorF(err))
	}
}
