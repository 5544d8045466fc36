package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	log "github.com/sirupsen/logrus"

	"newsdigest/internal/commands"

	_ "golang.org/x/crypto/x509roots/fallback" // We need this to make TLS work in scratch containers
)

// Version will be set during build
var Version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	log.SetOutput(os.Stderr)

	app := commands.RootApp(Version)
	if err := app.RunContext(ctx, os.Args); err != nil {
		stop()
		log.WithError(err).Fatal("Fatal error")
	}
}
