// Command revyl is a thin wrapper around the platform-specific Revyl CLI
// binary. It resolves the host platform, downloads and verifies the matching
// release artifact on first use, then hands the process over to it.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"

	"github.com/RevylAI/revyl-cli/internal/binary"
	"github.com/RevylAI/revyl-cli/internal/config"
	"github.com/RevylAI/revyl-cli/internal/logging"
)

func main() {
	os.Exit(run())
}

func run() int {
	sugar, sync := logging.Init(os.Getenv("REVYL_LOG_LEVEL"))
	defer sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	prov, err := binary.NewProvisioner(binary.Config{
		Repo:        cfg.Repo,
		Version:     cfg.Version,
		KeyringPath: cfg.Keyring,
		Logger:      logging.ForProvisioner(sugar),
		Progress:    true,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	code, err := prov.Run(ctx, os.Args[1:])
	if err != nil {
		if ctx.Err() != nil {
			return binary.ExitCodeInterrupt
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "You can manually download the binary from: %s\n", prov.ReleasesPageURL())
		return 1
	}
	return code
}
