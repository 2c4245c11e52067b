package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/spf13/pflag"

	"github.com/ironcloak/ironcloak/internal/backend"
	"github.com/ironcloak/ironcloak/internal/config"
	"github.com/ironcloak/ironcloak/internal/i18n"
	"github.com/ironcloak/ironcloak/internal/state"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	var (
		configPath = pflag.StringP("config", "c", "ironcloak.toml", "Path to the TOML configuration file")
		verbose    = pflag.Bool("verbose", false, "Force debug-level logging regardless of config")
	)

	pflag.CommandLine.SortFlags = false
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		return err
	}

	language := cfg.Logging.Language
	if language == "" {
		language = "en"
	}
	catalog := i18n.New(language)

	level := slog.LevelInfo
	if err := parseLevel(cfg.Logging.Level, &level); err != nil {
		return fmt.Errorf("invalid logging level: %w", err)
	}
	if *verbose {
		level = slog.LevelDebug
	}

	logWriter, closeLog, err := openLogWriter(cfg.Logging.LogDir)
	if err != nil {
		return err
	}
	defer closeLog()

	logger := slog.New(slog.NewTextHandler(logWriter, &slog.HandlerOptions{Level: level}))

	logger.Info(catalog.Get("app.starting"))
	if _, err := os.Stat(*configPath); os.IsNotExist(err) {
		logger.Warn(catalog.T("app.config_missing", *configPath))
	}
	logger.Info(catalog.T("app.listening", cfg.ListenAddress()))
	logger.Info(catalog.T("app.config_loaded", catalog.Language()))

	st := state.New(cfg.Proxy.ListenPort, *configPath, catalog.Language())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Signals funnel into the shared quit flag so the backend has a
	// single shutdown mechanism, same as a tray or window would use.
	go func() {
		<-ctx.Done()
		st.RequestQuit()
	}()

	bcfg := backend.Config{
		ListenAddr:       cfg.ListenAddress(),
		DataDir:          cfg.Tor.DataDir,
		RejectIPLiterals: cfg.Proxy.DNSRejectIP,
	}

	if err := backend.Run(ctx, bcfg, st, logger); err != nil {
		logger.Error(catalog.T("app.runtime_error", err))
		return err
	}

	logger.Info(catalog.Get("app.shutdown"))
	return nil
}

func parseLevel(s string, out *slog.Level) error {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "info":
		*out = slog.LevelInfo
	case "debug":
		*out = slog.LevelDebug
	case "warn", "warning":
		*out = slog.LevelWarn
	case "error":
		*out = slog.LevelError
	default:
		return fmt.Errorf("unknown level %q", s)
	}
	return nil
}

// openLogWriter opens a date-stamped log file in a monthly directory
// (logDir/YYYY/MM/ironcloak-YYYY-MM-DD.log) and tees it with stdout.
func openLogWriter(logDir string) (io.Writer, func(), error) {
	now := time.Now()
	dir := filepath.Join(logDir, now.Format("2006"), now.Format("01"))
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	path := filepath.Join(dir, "ironcloak-"+now.Format("2006-01-02")+".log")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return nil, nil, fmt.Errorf("open log file %s: %w", path, err)
	}

	return io.MultiWriter(os.Stdout, f), func() { _ = f.Close() }, nil
}
