// Command fittrack-mcp serves the FitTrack MCP tools over stdio, backed by a
// remote FitTrack server's REST API.
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"

	"github.com/claude/fittrack/internal/catalog"
	"github.com/claude/fittrack/internal/client"
	"github.com/claude/fittrack/internal/i18n"
	"github.com/claude/fittrack/internal/logging"
	fitmcp "github.com/claude/fittrack/internal/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Version is set at build time via -ldflags.
var Version = "dev"

var _ fitmcp.DataSource = (*client.Client)(nil)

func main() {
	serverURL := flag.String("server", envOr("FITTRACK_SERVER", "http://fittrack"), "FitTrack server base URL")
	apiKey := flag.String("api-key", os.Getenv("FITTRACK_API_KEY"), "API key sent as X-API-Key")
	lang := flag.String("lang", string(i18n.DefaultLanguage), "language for server messages (en, tr)")
	logLevel := flag.String("log-level", "info", "log level")
	flag.Parse()

	level, err := logging.ParseLevel(*logLevel)
	if err != nil {
		level = slog.LevelInfo
	}
	// stdout carries the protocol.
	log := logging.NewWithWriter(os.Stderr, level)

	l, ok := i18n.Parse(*lang)
	if !ok {
		l = i18n.DefaultLanguage
	}

	cat, err := catalog.Default()
	if err != nil {
		log.Error("catalog invalid", "error", err)
		os.Exit(1)
	}

	c := client.New(*serverURL, *apiKey, l)

	user, err := c.Me(context.Background())
	if err != nil {
		log.Warn("could not resolve identity; workout tools will require sign-in", "server", *serverURL, "error", err)
		user = nil
	} else {
		log.Info("connected", "server", *serverURL, "user", user.Login)
	}

	s := fitmcp.New(c, cat, Version, log)
	err = server.ServeStdio(s, server.WithStdioContextFunc(func(ctx context.Context) context.Context {
		if user == nil {
			return ctx
		}
		return fitmcp.WithUser(ctx, user)
	}))
	if err != nil {
		log.Error("stdio server failed", "error", err)
		os.Exit(1)
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
