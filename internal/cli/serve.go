package cli

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/yaklabco/blocksync/internal/logging"
	"github.com/yaklabco/blocksync/internal/web"
	"github.com/yaklabco/blocksync/pkg/blockdoc"
	gmsplitter "github.com/yaklabco/blocksync/pkg/splitter/goldmark"
)

const shutdownTimeout = 5 * time.Second

type serveFlags struct {
	addr   string
	flavor string
}

func newServeCommand() *cobra.Command {
	flags := &serveFlags{}

	cmd := &cobra.Command{
		Use:   "serve [file]",
		Short: "Serve a document over the live sync protocol",
		Long: `Start the live sync server. Clients connect over WebSocket at /ws,
push document updates, and receive the command lists that keep their
render targets current. Updates are broadcast to every connected client.

When a file argument is given it seeds the initial document state.

Examples:
  blocksync serve                       # Empty document on the default address
  blocksync serve README.md             # Seed from README.md
  blocksync serve --addr 0.0.0.0:8080   # Listen on all interfaces`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServe(cmd, args, flags)
		},
	}

	cmd.Flags().StringVar(&flags.addr, "addr", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&flags.flavor, "flavor", "", "Markdown flavor: commonmark, gfm")

	return cmd
}

func runServe(cmd *cobra.Command, args []string, flags *serveFlags) error {
	logger := logging.Default()

	cfg, _, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	addr := cfg.Server.Addr
	if flags.addr != "" {
		addr = flags.addr
	}
	flavor := cfg.Flavor
	if flags.flavor != "" {
		flavor = flags.flavor
	}

	doc := blockdoc.New(gmsplitter.New(flavor))
	if len(args) == 1 {
		seed, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}
		result := doc.Update(string(seed))
		logger.Info("document seeded",
			logging.FieldPath, args[0],
			logging.FieldRevision, result.Revision,
			logging.FieldBlocks, doc.BlockCount(),
		)
	}

	handler := web.NewServer(doc, logger, cfg.Server.MaxMessageBytes)
	srv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", logging.FieldAddr, addr, logging.FieldFlavor, flavor)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}
