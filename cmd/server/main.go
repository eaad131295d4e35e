package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	router "github.com/BobbyBlanco400/nexus-cos-sub004/internal/adapters/http"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/app"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/app/orch"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/config"
	"github.com/BobbyBlanco400/nexus-cos-sub004/internal/metrics"
)

func main() {
	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	if err := newRootCmd().Execute(); err != nil {
		log.Fatal().Err(err).Msg("n3x-rtc failed")
	}
}

func newRootCmd() *cobra.Command {
	var cfgFile string
	cmd := &cobra.Command{
		Use:           "n3x-rtc",
		Short:         "Signaling relay: session-scoped fan-out of offer/answer/candidate frames",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			setupLogger(cfg)
			return serve(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVar(&cfgFile, "config", "", "config file (default config/config.$CONFIG_ENV.yaml)")
	cmd.Flags().Int("port", 7788, "listening port")
	cmd.Flags().String("mode", "release", "gin mode: release or debug")
	cmd.Flags().String("log-level", "info", "zerolog level")
	cmd.Flags().String("backpressure", "skip", "slow recipient policy: skip or kick")
	return cmd
}

func setupLogger(cfg *config.Config) {
	if cfg.LogFormat == "json" {
		log.Logger = zerolog.New(os.Stderr).With().Timestamp().Logger()
	}
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil {
		log.Warn().Str("level", cfg.LogLevel).Msg("unknown log level, keeping info")
		return
	}
	zerolog.SetGlobalLevel(level)
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	policy, err := app.PolicyByName(cfg.Backpressure)
	if err != nil {
		return err
	}
	hs, err := app.NewHandshakeValidator(app.HandshakeConfig{
		Secret: cfg.Handshake.Secret,
		Module: cfg.Handshake.Module,
		Phase:  cfg.Handshake.Phase,
		Mode:   cfg.Handshake.Mode,
	})
	if err != nil {
		return err
	}

	relay := &orch.Orchestrator{
		Registry:  app.NewRegistry(),
		Handshake: hs,
		Policy:    policy,
		Metrics:   metrics.New(),
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	ln, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("cannot listen on %s: %w", addr, err)
	}

	g, gctx := errgroup.WithContext(ctx)
	srv := &http.Server{
		Handler:           router.SetupRouter(gctx, cfg, relay),
		ReadHeaderTimeout: 10 * time.Second,
	}

	g.Go(func() error {
		log.Info().Str("addr", ln.Addr().String()).Str("module", cfg.Handshake.Module).Int("phase", cfg.Handshake.Phase).Msg("signal gateway active")
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("Shutting down")
		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer shutdownCancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("Server forced to shutdown")
		}
		return nil
	})

	err = g.Wait()
	log.Info().Msg("Server exited gracefully")
	return err
}
