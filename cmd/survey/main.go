// Command survey loads the stewards' salmon survey and reports season totals.
package main

import (
	"context"
	"log/slog"
	"os"

	"salmonsurvey/internal/cli"
)

func main() {
	ctx, stop := cli.SignalContext(context.Background())
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		slog.Error("Command failed", "error", err)
		os.Exit(1)
	}
}
