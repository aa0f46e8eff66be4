package main

import (
	"context"
	"log/slog"
	"os"
	"os/signal"

	"github.com/alecthomas/kong"
	charmlog "github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

type CLI struct {
	Serve    ServeCommand    `cmd:"serve" help:"Start the policy chat server."`
	Chat     ChatCommand     `cmd:"chat" help:"Chat with the policy chat server."`
	Ask      AskCommand      `cmd:"ask" help:"Ask the policy chat server a single question."`
	Context  ContextCommand  `cmd:"context" help:"Get the policy segments nearest to a piece of text."`
	Segments SegmentsCommand `cmd:"segments" help:"Print the segments a document is split into."`
	Health   HealthCommand   `cmd:"health" help:"Check whether the server's knowledge base is ready."`
	Version  VersionCommand  `cmd:"version" help:"Print the version of policy chat."`
}

func main() {
	// The .env file is optional.
	_ = godotenv.Load()

	var cli CLI
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	kctx := kong.Parse(&cli, kong.UsageOnError(), kong.BindTo(ctx, (*context.Context)(nil)))
	if err := kctx.Run(); err != nil {
		log := getLogger("error", "json")
		log.Error("error", slog.Any("error", err))
		os.Exit(1)
	}
}

func getLogger(level, format string) *slog.Logger {
	ll := slog.LevelInfo
	switch level {
	case "debug":
		ll = slog.LevelDebug
	case "info":
		ll = slog.LevelInfo
	case "warn":
		ll = slog.LevelWarn
	case "error":
		ll = slog.LevelError
	}
	if format == "pretty" {
		return slog.New(charmlog.NewWithOptions(os.Stderr, charmlog.Options{
			Level:           charmlog.Level(ll),
			ReportTimestamp: true,
		}))
	}
	return slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: ll,
	}))
}
