package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/mattn/go-colorable"
	"github.com/rbnhln/kckScraper/internal/vcs"
)

var (
	version = vcs.Version()
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, os.Args[1:], colorable.NewColorableStdout(), colorable.NewColorableStderr())
	stop()
	os.Exit(code)
}

// run executes one CLI invocation and returns the exit code. The cache is
// flushed on every path out of here, including interrupts: the signal
// cancels ctx, in-flight fetches return, and close runs.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	app := &application{out: stdout, errOut: stderr}

	root := app.rootCmd()
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)

	err := root.ExecuteContext(ctx)
	// save failures are logged by the store and do not change the exit code
	_ = app.close()

	if err != nil {
		if app.logger != nil {
			app.logger.Error(err.Error())
		} else {
			fmt.Fprintln(stderr, "error:", err)
		}
		return 1
	}
	return 0
}

func newLogger(w io.Writer, level string) *slog.Logger {
	opts := &slog.HandlerOptions{
		Level:     parseLogLevel(level),
		AddSource: true,
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLogLevel(s string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return slog.LevelDebug
	case "info", "":
		return slog.LevelInfo
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
