// Command schedctl inspects schedule exports offline: it parses spreadsheets,
// prints faculty load reports and normalizes constraint files without
// starting the server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	_ "github.com/JonMunkholm/schedulizer/internal/core/fields" // Register spreadsheet layouts
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		fmt.Fprintln(os.Stderr, "schedctl:", userError(err))
		os.Exit(1)
	}
}
