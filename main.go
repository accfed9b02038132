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

	"github.com/charmbracelet/lipgloss"
	"github.com/debemdeboas/composer/internal/article"
	"github.com/debemdeboas/composer/internal/composer"
	"github.com/debemdeboas/composer/internal/config"
	"github.com/debemdeboas/composer/internal/db"
	"github.com/debemdeboas/composer/internal/imagestore"
	"github.com/debemdeboas/composer/internal/logger"
	"github.com/debemdeboas/composer/internal/notify"
	"github.com/debemdeboas/composer/internal/render"
	"github.com/debemdeboas/composer/internal/repository"
	"github.com/debemdeboas/composer/internal/routes"
	"github.com/debemdeboas/composer/internal/server"
	"github.com/debemdeboas/composer/internal/session"
	"github.com/debemdeboas/composer/internal/util/compression"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

const sweepInterval = time.Minute

var configPath string

var rootCmd = &cobra.Command{
	Use:   "composer",
	Short: "composer - write and publish articles",
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the composer web server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return serve(cmd.Context())
	},
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		return printConfig()
	},
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, configCmd)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

// loadConfig reads .env and the config file, then builds the process logger
// at the configured level and hands it to every package.
func loadConfig() (zerolog.Logger, error) {
	envErr := godotenv.Load()

	bootstrap := logger.New("info", nil)
	config.SetLogger(logger.Component(bootstrap, "config"))
	if err := config.LoadConfig(configPath); err != nil {
		return bootstrap, err
	}

	l := logger.New(config.AppConfig.Logging.Level, nil)
	if envErr != nil {
		l.Debug().Err(envErr).Msg("No .env file loaded")
	}

	config.SetLogger(logger.Component(l, "config"))
	db.SetLogger(logger.Component(l, "db"))
	repository.SetLogger(logger.Component(l, "repository"))
	imagestore.SetLogger(logger.Component(l, "imagestore"))
	article.SetLogger(logger.Component(l, "article"))
	composer.SetLogger(logger.Component(l, "composer"))
	notify.SetLogger(logger.Component(l, "notify"))
	session.SetLogger(logger.Component(l, "session"))
	render.SetLogger(logger.Component(l, "render"))
	server.SetLogger(logger.Component(l, "server"))
	return l, nil
}

func serve(ctx context.Context) error {
	l, err := loadConfig()
	if err != nil {
		l.Error().Err(err).Str("path", configPath).Msg("Error loading config")
		return err
	}
	cfg := config.AppConfig

	database := db.NewSQLite(cfg.Storage.DatabasePath)
	if err := database.InitDB(); err != nil {
		l.Error().Err(err).Msgf(config.ErrInitializeDatabaseFmt, err)
		return err
	}
	defer database.Close()

	compressor, err := compression.ByName(cfg.Storage.Compression)
	if err != nil {
		return err
	}
	repo := repository.NewDBArticleRepository(database, compressor)

	images, uploadsDir, err := newImageStore(ctx, cfg)
	if err != nil {
		l.Error().Err(err).Str("backend", cfg.Images.Backend).Msg("Error creating image store")
		return err
	}

	svc := article.NewService(repo, images, article.Options{
		MaxTitleLength: cfg.Composer.MaxTitleLength,
		MaxImageWidth:  cfg.Images.MaxWidth,
		JPEGQuality:    cfg.Images.Quality,
		EmptyMarkup:    cfg.Composer.EmptyMarkup,
	})

	hub := notify.NewHub()
	previews := composer.NewMemoryPreviewStore(routes.PreviewPrefix)
	sessions := session.NewMemoryStore(
		composer.Rules{EmptyMarkup: cfg.Composer.EmptyMarkup},
		previews,
		session.OnDelete(hub.Forget),
	)
	go sessions.Run(ctx, sweepInterval, time.Duration(cfg.Composer.DraftIdleMinutes)*time.Minute)

	coordinator := composer.NewCoordinator(svc,
		composer.WithConsentGate(cfg.Composer.RequireTerms),
		composer.WithProfilePath(cfg.Composer.ProfilePath),
	)

	srv, err := server.New(cfg, server.Deps{
		Sessions:    sessions,
		Previews:    previews,
		Hub:         hub,
		Coordinator: coordinator,
		Articles:    repo,
		UploadsDir:  uploadsDir,
	})
	if err != nil {
		return err
	}

	httpServer := &http.Server{
		Addr:              net.JoinHostPort(cfg.Server.Host, cfg.Server.Port),
		Handler:           srv.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			l.Warn().Err(err).Msg("Error shutting down server")
		}
	}()

	l.Info().Str("addr", httpServer.Addr).Msg("Composer listening")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		l.Error().Err(err).Msg("Server stopped")
		return err
	}
	l.Info().Msg("Goodbye")
	return nil
}

// newImageStore builds the configured backend. The returned directory is
// non-empty only for the filesystem backend, whose files the server serves.
func newImageStore(ctx context.Context, cfg *config.Config) (imagestore.ImageStore, string, error) {
	switch cfg.Images.Backend {
	case config.ImageBackendS3:
		store, err := imagestore.NewS3Store(ctx,
			os.Getenv("S3_ACCESS_KEY_ID"),
			os.Getenv("S3_SECRET_ACCESS_KEY"),
			cfg.Images.S3Endpoint,
			cfg.Images.S3Bucket,
			cfg.Images.PublicURL,
		)
		return store, "", err
	default:
		if err := os.MkdirAll(cfg.Images.Dir, 0o755); err != nil {
			return nil, "", fmt.Errorf("create uploads dir: %w", err)
		}
		return imagestore.NewFSStore(cfg.Images.Dir, cfg.Images.PublicURL), cfg.Images.Dir, nil
	}
}

func printConfig() error {
	titleStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("63")).Bold(true)
	okStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("42"))
	errStyle := lipgloss.NewStyle().Foreground(lipgloss.Color("196")).Bold(true)

	fmt.Println(titleStyle.Render("composer configuration (" + configPath + ")"))

	if _, err := loadConfig(); err != nil {
		fmt.Println(errStyle.Render("invalid: " + err.Error()))
		return err
	}

	out, err := yaml.Marshal(config.AppConfig)
	if err != nil {
		return err
	}
	fmt.Print(string(out))
	fmt.Println(okStyle.Render("valid"))
	return nil
}
