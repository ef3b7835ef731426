package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"defecttracker/internal/cli"
	"defecttracker/internal/observability/logging"
)

func main() {
	slog.SetDefault(logging.NewLogger(logging.Config{
		ServiceName: "defectctl",
		Environment: os.Getenv("ENVIRONMENT"),
		Level:       os.Getenv("LOG_LEVEL"),
		Output:      os.Stderr,
	}))

	if err := cli.RootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
