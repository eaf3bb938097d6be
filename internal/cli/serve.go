package cli

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/ayusman/stroked/internal/config"
	"github.com/ayusman/stroked/internal/dispatch"
	"github.com/ayusman/stroked/internal/library"
	"github.com/ayusman/stroked/internal/profile"
	"github.com/ayusman/stroked/internal/runtime"
	"github.com/ayusman/stroked/internal/server"
	"github.com/ayusman/stroked/internal/store"
	"github.com/ayusman/stroked/internal/tray"
)

var noTray bool

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the gesture daemon",
	Long: `Starts the gesture engine, the control API server, the profile
database watcher and, unless disabled, the system tray icon. The platform
input hook delivers pointer events to the engine; without one attached the
daemon still serves the editor API and overlay feed.`,
	RunE: runServe,
}

// noopWindows is used until a platform hook attaches a real inspector. With
// no window information only rule-free profiles match, which is the right
// degraded behavior.
type noopWindows struct{}

func (noopWindows) ActiveWindow() profile.WindowInfo { return profile.WindowInfo{} }

// actionDispatcher is the dispatch-package surface the engine adapter needs.
type actionDispatcher interface {
	Dispatch(ctx context.Context, action, args string, gesture dispatch.GestureInfo) error
}

// dispatchAdapter bridges the engine's dispatcher interface to the dispatch
// package, translating gesture context between the two request shapes.
type dispatchAdapter struct {
	inner actionDispatcher
}

var _ runtime.Dispatcher = dispatchAdapter{}
var _ actionDispatcher = (*dispatch.Dispatcher)(nil)

func (a dispatchAdapter) Dispatch(ctx context.Context, action, args string, info runtime.DispatchInfo) error {
	return a.inner.Dispatch(ctx, action, args, dispatch.GestureInfo{
		ID:       info.GestureID,
		Label:    info.Label,
		Tokens:   info.Tokens,
		Distance: info.Distance,
	})
}

// storeRecorder adapts the SQLite store to the engine's usage recorder.
type storeRecorder struct {
	usage *store.UsageRepository
}

func (r storeRecorder) RecordDispatch(result runtime.Result, at time.Time) {
	err := r.usage.Record(&store.UsageEvent{
		OccurredAt:   at,
		ProfileID:    result.ProfileID,
		GestureID:    result.GestureID,
		GestureLabel: result.GestureLabel,
		Tokens:       result.Tokens,
		Action:       result.Action,
		Distance:     result.Distance,
	})
	if err != nil {
		logrus.WithError(err).Warn("failed to record usage event")
	}
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(cfg.Paths.ProfileDB), 0o755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	profileDB, err := profile.Load(cfg.Paths.ProfileDB)
	if err != nil {
		return err
	}
	profiles := profile.NewHandle(profileDB)

	lib, err := library.Load(cfg.Paths.Library)
	if err != nil {
		return err
	}

	st, err := store.New(cfg.Paths.UsageDB)
	if err != nil {
		return err
	}
	defer st.Close()

	pluginDir := filepath.Join(filepath.Dir(cfg.Paths.ProfileDB), "plugins")
	manager := dispatch.NewManager(pluginDir)
	if err := manager.Discover(); err != nil {
		logrus.WithError(err).Warn("plugin discovery failed")
	} else {
		logrus.WithField("count", len(manager.List())).Info("plugins discovered")
	}
	dispatcher := dispatch.NewDispatcher(manager, dispatch.NewExecutor(5*time.Second))

	overlay := server.NewOverlayHub()

	engine := runtime.New(cfg, profiles, noopWindows{}, dispatchAdapter{inner: dispatcher},
		runtime.WithLibrary(&lib),
		runtime.WithOverlay(overlay),
		runtime.WithUsageRecorder(storeRecorder{usage: st.Usage()}),
	)

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	watcher, err := profile.NewWatcher(cfg.Paths.ProfileDB, profiles)
	if err != nil {
		logrus.WithError(err).Warn("profile db watcher unavailable")
	} else {
		go watcher.Run(ctx)
	}

	srv := server.New(server.Config{
		Engine:      engine,
		Profiles:    profiles,
		ProfilePath: cfg.Paths.ProfileDB,
		LibraryPath: cfg.Paths.Library,
		Store:       st,
		Overlay:     overlay,
	})
	go func() {
		logrus.WithField("addr", cfg.Server.ListenAddr).Info("control server listening")
		if err := srv.ListenAndServe(cfg.Server.ListenAddr); err != nil {
			logrus.WithError(err).Error("control server stopped")
			cancel()
		}
	}()

	if noTray {
		<-ctx.Done()
		return nil
	}

	t := tray.New()
	t.OnToggle(func(enabled bool) {
		engine.SetEnabled(enabled)
		logrus.WithField("enabled", enabled).Info("gesture recognition toggled")
	})
	t.OnSettings(func() {
		openBrowser("http://" + cfg.Server.ListenAddr)
	})
	t.OnReload(func() {
		db, err := profile.Load(cfg.Paths.ProfileDB)
		if err != nil {
			logrus.WithError(err).Warn("manual profile reload failed")
			return
		}
		profiles.Replace(db)
		logrus.Info("profile db reloaded")
	})
	t.OnQuit(cancel)

	// systray must run on the main thread and blocks until quit.
	t.Run()
	return nil
}

// openBrowser opens the settings UI in the default browser.
func openBrowser(url string) {
	var cmd *exec.Cmd
	switch {
	case commandExists("open"):
		cmd = exec.Command("open", url)
	case commandExists("xdg-open"):
		cmd = exec.Command("xdg-open", url)
	default:
		logrus.WithField("url", url).Info("open the settings UI manually")
		return
	}
	if err := cmd.Start(); err != nil {
		logrus.WithError(err).Warn("failed to open browser")
	}
}

func commandExists(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}

func init() {
	serveCmd.Flags().BoolVar(&noTray, "no-tray", false, "run headless without the system tray")
	rootCmd.AddCommand(serveCmd)
}
