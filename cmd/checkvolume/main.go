package main

import (
	"context"
	"os"
	"os/signal"

	"github.com/cleared-dev/checkvolume/internal/commands"
	"github.com/cleared-dev/checkvolume/internal/ocr/tesseract"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	rootCmd := commands.NewRootCommand(tesseract.New())
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		stop()
		os.Exit(1)
	}
}
