package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"photo_feed/cmd/photofeed/commands"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	code := commands.Execute(ctx)
	cancel()
	os.Exit(code)
}
