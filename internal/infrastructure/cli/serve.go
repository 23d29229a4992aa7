package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/outliyr/x-search-mcp/internal/application"
	"github.com/outliyr/x-search-mcp/internal/domain/search"
	"github.com/outliyr/x-search-mcp/internal/infrastructure/bird"
	"github.com/outliyr/x-search-mcp/internal/infrastructure/config"
	"github.com/outliyr/x-search-mcp/internal/infrastructure/httpserver"
	inframcp "github.com/outliyr/x-search-mcp/internal/infrastructure/mcp"
	"github.com/outliyr/x-search-mcp/internal/infrastructure/oauth"
	"github.com/outliyr/x-search-mcp/internal/infrastructure/xai"
)

var (
	serveTransport string
	serveAddr      string
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the x-search MCP server",
	RunE:  runServe,
}

func init() {
	RootCmd.PersistentFlags().StringVar(&serveTransport, "transport", "http", "Transport to use (http, stdio, ws)")
	RootCmd.PersistentFlags().StringVar(&serveAddr, "addr", "", "Listen address for http/ws (defaults to :$PORT)")
	RootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(".")
	if err != nil {
		return err
	}

	logger := newLogger()
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	svc := buildService(ctx, cfg, logger)
	inframcp.Version = Version
	inframcp.BuildCommit = Commit
	inframcp.BuildDate = Date
	mcpServer := inframcp.NewServer(svc)

	switch strings.ToLower(serveTransport) {
	case "stdio":
		return mcpServer.ServeStdio()
	case "http", "":
		return serveHTTP(ctx, cfg, logger, mcpServer.StreamableHandler())
	case "ws", "websocket":
		return serveHTTP(ctx, cfg, logger, inframcp.NewWSHandler(mcpServer, logger))
	default:
		return fmt.Errorf("unsupported transport: %s", serveTransport)
	}
}

// buildService wires the Bird adapter and, when an API key is present, the
// xAI fallback behind its retry/timeout wrapper.
func buildService(ctx context.Context, cfg *config.Config, logger *slog.Logger) *application.SearchService {
	birdAdapter := bird.New(cfg.BirdBin)

	var fallback search.Searcher
	if cfg.XAIAPIKey != "" {
		client := xai.New(cfg.XAIAPIKey, cfg.XAIModel)
		if err := client.SelectModel(ctx); err != nil {
			logger.Warn("xai model selection failed, fallback disabled", "error", err)
		} else {
			logger.Info("xai fallback enabled", "model", client.Model)
			fallback = xai.NewResilient(client)
		}
	} else {
		logger.Info("XAI_API_KEY not set, running without xai fallback")
	}

	return application.NewSearchService(birdAdapter, birdAdapter, fallback, logger)
}

// ErrNoAuth refuses HTTP exposure without any credential configured, so a
// misconfigured container never serves an open endpoint.
var ErrNoAuth = errors.New("refusing to serve HTTP without auth: set MCP_AUTH_TOKEN or OAUTH_CLIENT_ID/OAUTH_CLIENT_SECRET with PUBLIC_URL")

func serveHTTP(ctx context.Context, cfg *config.Config, logger *slog.Logger, handler http.Handler) error {
	if !cfg.AuthConfigured() {
		return ErrNoAuth
	}

	var (
		auth     httpserver.Authorizer
		provider *oauth.Provider
	)
	if cfg.OAuthEnabled() {
		provider = oauth.NewProvider(oauth.Config{
			ClientID:     cfg.OAuthClientID,
			ClientSecret: cfg.OAuthClientSecret,
			PublicURL:    cfg.PublicURL,
			StaticToken:  cfg.AuthToken,
		}, logger)
		auth = provider
		logger.Info("oauth authorization server enabled", "issuer", cfg.PublicURL)
	} else {
		auth = httpserver.StaticToken(cfg.AuthToken)
		logger.Info("static bearer token auth enabled")
	}

	var metadataURL string
	if cfg.PublicURL != "" {
		metadataURL = cfg.PublicURL + "/.well-known/oauth-protected-resource"
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Addr()
	}

	srv := httpserver.New(httpserver.Options{
		Addr:                addr,
		MCPHandler:          handler,
		Auth:                auth,
		OAuth:               provider,
		Logger:              logger,
		ResourceMetadataURL: metadataURL,
	})
	logger.Info("starting server", "addr", addr, "transport", serveTransport, "version", Version)
	return srv.Start(ctx)
}

func newLogger() *slog.Logger {
	level := slog.LevelInfo
	switch strings.ToLower(os.Getenv("LOG_LEVEL")) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}
