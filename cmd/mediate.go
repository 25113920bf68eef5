package cmd

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/s0up4200/jiralink/mediator"
	"github.com/s0up4200/jiralink/rest"
)

const shutdownTimeout = 10 * time.Second

var listenAddr string

// mediateCmd represents the mediate command
var mediateCmd = &cobra.Command{
	Use:   "mediate",
	Short: "Run a forwarding mediator in front of Jira",
	Long: `Serve the envelope forwarding endpoint. Clients configured with
mediator.enabled send their requests here and the mediator replays them
against jira.url using this process's credentials, including the basic
auth fallback after a 401.`,
	RunE: runMediate,
}

func init() {
	rootCmd.AddCommand(mediateCmd)
	mediateCmd.Flags().StringVar(&listenAddr, "listen", "", "address to listen on (default mediator.listen)")
}

func runMediate(cmd *cobra.Command, args []string) error {
	addr := cfg.Mediator.Listen
	if listenAddr != "" {
		addr = listenAddr
	}

	opts, err := cfg.TransportOptions()
	if err != nil {
		return err
	}
	upstream, err := rest.NewTransport(cfg.Jira.URL, logger, opts...)
	if err != nil {
		return fmt.Errorf("failed to create upstream transport: %w", err)
	}

	auth, fallback, err := cfg.Credentials()
	if err != nil {
		return fmt.Errorf("failed to configure credentials: %w", err)
	}

	srv := &http.Server{
		Addr:              addr,
		Handler:           mediator.NewHandler(upstream, auth, fallback, logger),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info().
			Str("listen", addr).
			Str("upstream", upstream.BaseURL()).
			Msg("Mediator listening")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("mediator stopped: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info().Msg("Shutting down mediator")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
