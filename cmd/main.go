package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/samber/do"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/nkjain92/gpt-image-1/pkg/config"
	"github.com/nkjain92/gpt-image-1/pkg/imaging"
	"github.com/nkjain92/gpt-image-1/pkg/inject"
	"github.com/nkjain92/gpt-image-1/pkg/logging"
	"github.com/nkjain92/gpt-image-1/pkg/repository/image"
)

const shutdownTimeout = 15 * time.Second

func NewRootCmd() *cobra.Command {
	var cfg config.Config

	rootCmd := &cobra.Command{
		Use:           "imagegen",
		Short:         "Image generation service backed by gpt-image-1",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			var err error
			if cfg, err = config.Load(); err != nil {
				return fmt.Errorf("config failed: %w", err)
			}
			logging.Setup(cfg.Log)
			return nil
		},
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return serve(cmd.Context(), cfg)
		},
	}

	imagesCmd := &cobra.Command{
		Use:   "images",
		Short: "Print stored images, most recent first",
		RunE: func(cmd *cobra.Command, args []string) error {
			uploads, _ := cmd.Flags().GetBool("uploads")
			return listImages(cmd, cfg, uploads)
		},
	}
	// uploads flag
	imagesCmd.Flags().Bool("uploads", false, "list uploaded images instead of generated ones")

	rootCmd.AddCommand(serveCmd, imagesCmd)
	// serve is the default command
	rootCmd.RunE = serveCmd.RunE

	return rootCmd
}

func serve(ctx context.Context, cfg config.Config) error {
	if err := cfg.RequireAPIKey(); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	injector := inject.Setup(ctx, cfg)
	server, err := do.Invoke[*echo.Echo](injector)
	if err != nil {
		return fmt.Errorf("server init failed: %w", err)
	}

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info().Str("address", cfg.Address).Str("storage", cfg.Storage.Driver).Msg("server started")
		if err := server.Start(cfg.Address); !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info().Msg("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown failed: %w", err)
		}
		return nil
	})
	if err := g.Wait(); err != nil {
		return err
	}
	return injector.Shutdown()
}

func listImages(cmd *cobra.Command, cfg config.Config, uploads bool) error {
	name, prefix := inject.ResultsStore, imaging.ResultsURL
	if uploads {
		name, prefix = inject.UploadsStore, imaging.UploadsURL
	}

	injector := inject.Setup(cmd.Context(), cfg)
	repo, err := do.InvokeNamed[image.ImageRepository](injector, name)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, img := range imaging.NewLister(repo, prefix).List(cmd.Context()) {
		fmt.Fprintf(out, "%s\t%s\t%s\n", img.ModTime.Format(time.RFC3339), img.Filename, img.URL)
	}
	return nil
}

func main() {
	if err := NewRootCmd().ExecuteContext(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("command failed")
	}
}
