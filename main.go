package main

import (
	"codeberg.org/miketth/kanatafocus/pkg/allowlist"
	"codeberg.org/miketth/kanatafocus/pkg/allowlist/sqlite"
	"codeberg.org/miketth/kanatafocus/pkg/config"
	"codeberg.org/miketth/kanatafocus/pkg/hyprland"
	"codeberg.org/miketth/kanatafocus/pkg/kanata"
	"codeberg.org/miketth/kanatafocus/pkg/layerswitch"
	"codeberg.org/miketth/kanatafocus/pkg/sway"
	"context"
	"errors"
	"fmt"
	"github.com/coreos/go-systemd/v22/daemon"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"log"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		log.Fatalf("error: %+v", err)
	}
}

type flags struct {
	configPath string

	port         int
	debug        bool
	trace        bool
	wm           string
	database     string
	allowFile    string
	allowDir     string
	layersFile   string
	layersDir    string
	stripExt     bool
	idleInterval time.Duration
}

func newRootCmd() *cobra.Command {
	return buildRootCmd(&flags{}, run)
}

func buildRootCmd(f *flags, runFn func(context.Context, config.Config) error) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kanatafocus",
		Short:         "Switch kanata layers to follow the focused window",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return runFn(cmd.Context(), cfg)
		},
	}

	pf := cmd.PersistentFlags()
	pf.StringVarP(&f.configPath, "config", "c", "", "path to config.yaml (default $XDG_CONFIG_HOME/kanatafocus/config.yaml)")
	pf.BoolVarP(&f.debug, "debug", "d", false, "enable debug logging")
	pf.BoolVarP(&f.trace, "trace", "t", false, "log every sync cycle (implies --debug)")
	pf.StringVar(&f.database, "database", "", "path to the allow-list database")

	fl := cmd.Flags()
	fl.IntVarP(&f.port, "port", "p", 7070, "port kanata's TCP server is listening on")
	fl.StringVar(&f.wm, "wm", config.WMAuto, "window manager to query: auto, sway or hyprland")
	fl.StringVarP(&f.allowFile, "white-list-file", "w", "", "file listing the layers that may be switched away from")
	fl.StringVar(&f.allowDir, "white-list-dir", "", "directory whose entries name the layers that may be switched away from")
	fl.StringVar(&f.layersFile, "layers-file", "", "file listing the applications that have their own layer")
	fl.StringVar(&f.layersDir, "layers-dir", "", "directory whose entries name the applications that have their own layer")
	fl.BoolVar(&f.stripExt, "strip-ext", false, "drop file extensions from directory entries")
	fl.DurationVar(&f.idleInterval, "idle-interval", layerswitch.DefaultIdleInterval, "poll interval while nothing can change")

	cmd.AddCommand(newAllowListCmd(f))

	return cmd
}

// loadConfig reads the config file and lets explicitly set flags override it.
func loadConfig(cmd *cobra.Command, f *flags) (config.Config, error) {
	path := f.configPath
	required := path != ""
	if path == "" {
		var err error
		path, err = config.DefaultPath()
		if err != nil {
			return config.Config{}, err
		}
	}

	cfg, err := config.Load(path, required)
	if err != nil {
		return cfg, fmt.Errorf("load config: %w", err)
	}

	changed := cmd.Flags().Changed
	if changed("debug") {
		cfg.Debug = f.debug
	}
	if changed("trace") {
		cfg.Trace = f.trace
	}
	if cfg.Trace {
		cfg.Debug = true
	}
	if changed("database") {
		cfg.Database = f.database
	}
	if changed("port") {
		cfg.Port = f.port
	}
	if changed("wm") {
		cfg.WM = f.wm
	}
	if changed("idle-interval") {
		cfg.IdleInterval = f.idleInterval
	}
	if changed("white-list-file") {
		cfg.AllowList = config.Source{File: f.allowFile}
	}
	if changed("white-list-dir") {
		cfg.AllowList = config.Source{Dir: f.allowDir, StripExt: f.stripExt}
	}
	if changed("layers-file") {
		cfg.Layers = config.Source{File: f.layersFile}
	}
	if changed("layers-dir") {
		cfg.Layers = config.Source{Dir: f.layersDir, StripExt: f.stripExt}
	}

	if cfg.Database == "" {
		cfg.Database, err = config.DefaultDatabasePath()
		if err != nil {
			return cfg, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func run(ctx context.Context, cfg config.Config) error {
	log, err := newLogger(cfg.Debug)
	if err != nil {
		return fmt.Errorf("create logger: %w", err)
	}
	defer log.Sync()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	var store *sqlite.Store
	if cfg.NeedsDatabase() {
		store, err = sqlite.NewStore(cfg.Database, log)
		if err != nil {
			return fmt.Errorf("open allow-list database: %w", err)
		}
		defer store.Close()
	}

	events := layerswitch.NewEvents()

	conn, err := kanata.Connect(ctx, cfg.Address(), cfg.ConnectTimeout, events, log)
	if err != nil {
		return fmt.Errorf("connect to kanata: %w", err)
	}
	defer conn.Close()

	focus, closeFocus := newFocusObserver(cfg.WM, log)
	defer closeFocus()

	syncer := layerswitch.NewSyncer(
		events,
		conn,
		focus,
		newProvider(cfg.AllowList, store, sqlite.AllowList),
		newProvider(cfg.Layers, store, sqlite.LayerList),
		nil,
		log,
	)
	syncer.ActiveInterval = cfg.ActiveInterval
	syncer.IdleInterval = cfg.IdleInterval
	syncer.Trace = cfg.Trace
	syncer.OnTransition = func(from, to string) {
		_, _ = daemon.SdNotify(false, "STATUS=Current layer: "+to)
	}

	log.Info("started kanatafocus")

	errChan := make(chan error, 3)
	var wg sync.WaitGroup
	wg.Add(3)

	go func() {
		defer wg.Done()
		err := conn.ReceiveLoop(ctx)
		if err != nil {
			errChan <- fmt.Errorf("read from kanata: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := syncer.Run(ctx)
		if err != nil {
			errChan <- fmt.Errorf("sync layers: %w", err)
		}
	}()

	go func() {
		defer wg.Done()
		err := systemdNotifyLoop(ctx)
		if err != nil {
			errChan <- fmt.Errorf("systemd notify: %w", err)
		}
	}()

	err = <-errChan

	// unblock the kanata reader and stop the others
	stop()
	_ = conn.Close()

	switch {
	case errors.Is(err, context.Canceled):
		log.Info("shutting down")
		wg.Wait()
		return nil
	case err != nil:
		return err
	}

	return nil
}

func newFocusObserver(wm string, log *zap.SugaredLogger) (layerswitch.FocusObserver, func()) {
	if wm == config.WMHyprland || (wm == config.WMAuto && hyprland.Running()) {
		log.Info("following hyprland focus")
		return hyprland.NewHyprctl(log), func() {}
	}

	log.Info("following sway focus")
	observer := sway.NewObserver(log)
	return observer, func() { _ = observer.Close() }
}

func newProvider(src config.Source, store *sqlite.Store, list string) allowlist.Provider {
	switch {
	case src.File != "":
		return allowlist.NewFile(src.File)
	case src.Dir != "":
		return allowlist.NewDir(src.Dir, src.StripExt)
	case src.DB:
		return store.Provider(list)
	}
	return nil
}

func systemdNotifyLoop(ctx context.Context) error {
	// tell systemd that we're ready
	supported, err := daemon.SdNotify(false, daemon.SdNotifyReady)
	if err != nil {
		return fmt.Errorf("notify systemd: %w", err)
	}
	if !supported {
		return nil
	}

	_, _ = daemon.SdNotify(false, "STATUS=Current layer: "+layerswitch.DefaultLayer)

	// notify watchdog
	t, err := daemon.SdWatchdogEnabled(false)
	if err != nil {
		return fmt.Errorf("check watchdog: %w", err)
	}
	// if watchdog is not enabled, we don't need to notify it
	if t == 0 {
		return nil
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case <-time.After(t / 2):
			_, err := daemon.SdNotify(false, daemon.SdNotifyWatchdog)
			if err != nil {
				return fmt.Errorf("notify watchdog: %w", err)
			}
		}
	}
}

func newLogger(debug bool) (*zap.SugaredLogger, error) {
	loggerConfig := zap.NewDevelopmentConfig()

	loggerConfig.OutputPaths = []string{"stdout"}
	loggerConfig.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	if debug {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	} else {
		loggerConfig.Level = zap.NewAtomicLevelAt(zapcore.InfoLevel)
	}

	logger, err := loggerConfig.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}

	return logger.Sugar(), nil
}
