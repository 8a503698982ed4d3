package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	router "github.com/dkeye/estimate/internal/adapters/http"
	"github.com/dkeye/estimate/internal/app"
	"github.com/dkeye/estimate/internal/app/fanout"
	"github.com/dkeye/estimate/internal/app/orch"
	"github.com/dkeye/estimate/internal/config"
)

const releaseVersion = "0.1.0"

func main() {
	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cobra.CheckErr(newCmd().Execute())
}

func newCmd() *cobra.Command {
	v := config.New()

	cmd := &cobra.Command{
		Use:           "estimate",
		Short:         "Planning poker rooms with live vote sync over WebSocket.",
		Args:          cobra.ExactArgs(0),
		SilenceErrors: true,
		SilenceUsage:  true,
		Version:       releaseVersion,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(v)
			if err != nil {
				return err
			}
			cfg.Version = releaseVersion
			zerolog.SetGlobalLevel(cfg.Level())
			return serve(cmd.Context(), cfg)
		},
	}

	fs := cmd.Flags()
	fs.SetNormalizeFunc(func(_ *pflag.FlagSet, name string) pflag.NormalizedName {
		return pflag.NormalizedName(strings.ReplaceAll(name, "_", "-"))
	})
	config.BindFlags(v, fs)

	cmd.CompletionOptions.HiddenDefaultCmd = true
	cmd.SetHelpCommand(&cobra.Command{Hidden: true})
	cmd.SetVersionTemplate("estimate v{{.Version}}\n")

	return cmd
}

func serve(parent context.Context, cfg *config.Config) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, cancel := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	o := orch.New(fanout.NewHub(), orch.Options{
		Policy:      app.SimplePolicy{},
		Grace:       cfg.ReconnectGrace,
		RevealEvent: cfg.RevealEvent,
	})
	go o.Run(ctx)

	r := router.SetupRouter(ctx, cfg, o)
	addr := net.JoinHostPort(cfg.Bind, strconv.Itoa(cfg.Port))

	srv := &http.Server{
		Addr:              addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Str("version", cfg.Version).Msg("estimate server started")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errc <- err
		}
	}()

	select {
	case <-ctx.Done():
	case err := <-errc:
		cancel()
		<-o.Done()
		return fmt.Errorf("server error: %w", err)
	}

	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	<-o.Done()
	log.Info().Msg("Server exited gracefully")
	return nil
}
