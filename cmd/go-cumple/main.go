package main

import (
	"context"
	"database/sql"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"syscall"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/tartampluch/go-cumple/internal/bitacora"
	"github.com/tartampluch/go-cumple/internal/config"
	"github.com/tartampluch/go-cumple/internal/database"
	"github.com/tartampluch/go-cumple/internal/engine"
	"github.com/tartampluch/go-cumple/internal/feed"
	"github.com/tartampluch/go-cumple/internal/i18n"
	"github.com/tartampluch/go-cumple/internal/notify"
	"github.com/tartampluch/go-cumple/internal/server"
	"github.com/tartampluch/go-cumple/internal/source"
)

// main is the application entry point.
// It delegates execution to runMain to ensure that deferred function calls
// (like closing log files) are executed before the process terminates.
// os.Exit() does not run defers, so we must return an integer code first.
func main() {
	os.Exit(runMain())
}

// runMain manages the application lifecycle, argument parsing, and exit codes.
// Returns config.ExitCodeSuccess on success, config.ExitCodeError on failure.
func runMain() int {
	// -------------------------------------------------------------------------
	// 1. CLI Argument Parsing
	// -------------------------------------------------------------------------
	showVersion := flag.Bool(config.FlagVersion, false, config.FlagDescVersion)
	debugMode := flag.Bool(config.FlagDebug, false, config.FlagDescDebug)
	configPath := flag.String(config.FlagConfig, config.DefaultConfigFile, config.FlagDescConfig)
	process := flag.String(config.FlagProcess, config.ProcessEmail, config.FlagDescProcess)
	dryRun := flag.Bool(config.FlagDryRun, false, config.FlagDescDryRun)
	flag.Parse()

	if *showVersion {
		printVersion()
		return config.ExitCodeSuccess
	}

	// -------------------------------------------------------------------------
	// 2. Logging Initialization
	// -------------------------------------------------------------------------
	// We configure structured logging (slog) early to capture startup issues.
	logCloser := setupLogging(*debugMode)
	if logCloser != nil {
		defer func() {
			_ = logCloser.Close() // Best effort close
		}()
	}

	// -------------------------------------------------------------------------
	// 3. Context & Signal Handling
	// -------------------------------------------------------------------------
	// Create a root context that cancels on SIGINT (Ctrl+C) or SIGTERM.
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	logStartupInfo()

	// -------------------------------------------------------------------------
	// 4. Application Logic
	// -------------------------------------------------------------------------
	if err := run(ctx, *configPath, *process, *dryRun); err != nil {
		slog.Error(config.ErrAppFailed,
			config.LogKeyComponent, config.CompMain,
			config.LogKeyError, err,
		)
		return config.ExitCodeError
	}

	slog.Info(config.MsgAppStop, config.LogKeyComponent, config.CompMain)
	return config.ExitCodeSuccess
}

// run loads settings, wires the processing pipeline, and executes it either
// once or on the configured cron schedule.
func run(ctx context.Context, configPath, process string, dryRun bool) error {
	settings, err := config.Load(configPath)
	if err != nil {
		return err
	}
	if err := settings.Validate(process); err != nil {
		return err
	}

	loc, err := settings.Location()
	if err != nil {
		return err
	}

	translator := i18n.New(settings.App.Language)

	// Database handle is shared between the persona source and the bitácora
	// sink; open it only when one of them needs it.
	var db *sql.DB
	if settings.Source.Mode == config.SourceModePostgres || settings.Bitacora.Mode == config.SinkModePostgres {
		if err := database.RunMigrations(settings.Database.URL); err != nil {
			return err
		}
		db, err = database.Open(settings.Database.URL)
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
	}

	src, err := buildSource(settings, db)
	if err != nil {
		return err
	}
	sink, err := buildSink(settings, db)
	if err != nil {
		return err
	}
	notifier, err := buildNotifier(settings, process, translator)
	if err != nil {
		return err
	}

	processor := &engine.Processor{
		Clock:         engine.RealClock{},
		Source:        src,
		Notifier:      notifier,
		Sink:          sink,
		Process:       process,
		Location:      loc,
		FormatMessage: translator.MessageFunc(),
		DryRun:        dryRun,
	}

	var (
		feedSrv     *server.FeedServer
		feedBuilder *feed.Builder
		serverErr   = make(chan error, config.ChannelBufferSize)
	)
	if settings.Feed.Enabled {
		feedSrv = server.NewFeedServer(settings.Feed.Port)
		feedBuilder = &feed.Builder{
			ReminderTrigger: settings.Feed.ReminderTrigger,
			FormatSummary:   translator.SummaryFunc(),
		}
		go func() {
			serverErr <- feedSrv.Start(ctx)
		}()
	}

	runOnce := func(runCtx context.Context) error {
		_, persons, err := processor.Run(runCtx)
		if err != nil {
			return err
		}
		if feedSrv != nil {
			data, _, err := feedBuilder.Build(persons, processor.Clock.Now().In(loc))
			if err != nil {
				return err
			}
			feedSrv.Update(data)
		}
		return nil
	}

	if settings.App.Schedule == "" {
		if err := runOnce(ctx); err != nil {
			return err
		}
		if feedSrv == nil {
			return nil
		}
		// Keep serving the feed until interrupted.
		return <-serverErr
	}

	return runScheduled(ctx, settings.App.Schedule, loc, runOnce, feedSrv, serverErr)
}

// runScheduled executes runOnce immediately and then on every cron tick
// until the context is cancelled.
func runScheduled(ctx context.Context, schedule string, loc *time.Location, runOnce func(context.Context) error, feedSrv *server.FeedServer, serverErr chan error) error {
	if err := runOnce(ctx); err != nil {
		return err
	}

	c := cron.New(cron.WithLocation(loc))
	_, err := c.AddFunc(schedule, func() {
		slog.Info(config.MsgScheduleFire,
			config.LogKeyComponent, config.CompMain,
			config.LogKeySchedule, schedule,
		)
		if err := runOnce(ctx); err != nil {
			slog.Error(config.ErrAppFailed,
				config.LogKeyComponent, config.CompMain,
				config.LogKeyError, err,
			)
		}
	})
	if err != nil {
		return fmt.Errorf("%s: %w", config.ErrScheduleParse, err)
	}

	slog.Info(config.MsgScheduleMode,
		config.LogKeyComponent, config.CompMain,
		config.LogKeySchedule, schedule,
	)
	c.Start()
	defer c.Stop()

	if feedSrv != nil {
		return <-serverErr
	}

	<-ctx.Done()
	slog.Info(config.MsgCtxCancel, config.LogKeyComponent, config.CompMain)
	return nil
}

// buildSource selects the person source from settings.
func buildSource(s *config.Settings, db *sql.DB) (source.Source, error) {
	switch s.Source.Mode {
	case config.SourceModePostgres:
		return source.NewPostgresSource(db), nil
	case config.SourceModeCSV:
		return source.NewCSVSource(s.Source.Path), nil
	case config.SourceModeVCard, config.SourceModeVCardWeb:
		return &source.VCardSource{
			Mode:    s.Source.Mode,
			Path:    s.Source.Path,
			URL:     s.Source.URL,
			User:    s.Source.User,
			Pass:    s.Source.Password,
			Fetcher: source.NewHTTPFetcher(),
		}, nil
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrModeUnsupport, s.Source.Mode)
	}
}

// buildSink selects the bitácora sink from settings.
func buildSink(s *config.Settings, db *sql.DB) (bitacora.Sink, error) {
	switch s.Bitacora.Mode {
	case config.SinkModePostgres:
		return bitacora.NewPostgresSink(db), nil
	case config.SinkModeCSV:
		return bitacora.NewCSVSink(s.Bitacora.Path), nil
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrSinkUnsupport, s.Bitacora.Mode)
	}
}

// buildNotifier selects the outbound channel for this process.
func buildNotifier(s *config.Settings, process string, translator *i18n.Translator) (notify.Notifier, error) {
	switch process {
	case config.ProcessEmail:
		return notify.NewEmailNotifier(s.Email, translator.MailSubjects()), nil
	case config.ProcessWhatsApp:
		return notify.NewWhatsAppNotifier(s.WhatsApp, translator.WhatsAppTemplates()), nil
	default:
		return nil, fmt.Errorf("%s: %q", config.ErrProcessUnknown, process)
	}
}

// printVersion outputs the build information to stdout and exits.
func printVersion() {
	fmt.Printf(config.MsgVersionOutput,
		config.AppName,
		config.Version,
		runtime.GOOS,
		runtime.GOARCH,
	)
}

// logStartupInfo logs environment details useful for debugging.
func logStartupInfo() {
	slog.Info(config.MsgAppStarting,
		config.LogKeyComponent, config.CompMain,
		slog.Group(config.LogKeyBuild,
			slog.String(config.LogKeyApp, config.AppName),
			slog.String(config.LogKeyVersion, config.Version),
			slog.String(config.LogKeyGoVer, runtime.Version()),
		),
		slog.Group(config.LogKeyEnv,
			slog.String(config.LogKeyOS, runtime.GOOS),
			slog.String(config.LogKeyArch, runtime.GOARCH),
			slog.Int(config.LogKeyPID, os.Getpid()),
		),
	)
}

// setupLogging configures the default slog logger.
func setupLogging(debugMode bool) io.Closer {
	var writers []io.Writer
	var logFile *os.File

	// 1. Always write to Stdout.
	writers = append(writers, os.Stdout)

	// 2. Attempt to set up a file writer in the user's cache directory.
	if logPath, err := getLogFilePath(); err == nil {
		// O_TRUNC resets logs on restart to prevent indefinite growth.
		f, err := os.OpenFile(logPath, os.O_TRUNC|os.O_CREATE|os.O_WRONLY, config.FilePermUserRW)
		if err == nil {
			writers = append(writers, f)
			logFile = f
		} else {
			fmt.Fprintf(os.Stderr, config.MsgLogWarning, config.ErrLogFile, logPath, err)
		}
	}

	level := slog.LevelInfo
	if debugMode {
		level = slog.LevelDebug
	}

	opts := &slog.HandlerOptions{
		Level:     level,
		AddSource: debugMode,
	}

	logger := slog.New(slog.NewJSONHandler(io.MultiWriter(writers...), opts))
	slog.SetDefault(logger)

	if logFile == nil {
		return nil
	}
	return logFile
}

// getLogFilePath determines the platform-specific cache directory for logs.
func getLogFilePath() (string, error) {
	cacheDir, err := os.UserCacheDir()
	if err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCacheDir, err)
	}

	appDir := filepath.Join(cacheDir, config.AppID)

	// Ensure the directory exists with restricted permissions (700).
	if err := os.MkdirAll(appDir, config.DirPermUserRWX); err != nil {
		return "", fmt.Errorf("%s: %w", config.ErrCreateDir, err)
	}

	return filepath.Join(appDir, config.LogFileName), nil
}
