package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"go.uber.org/zap"

	"timeclock/internal/core/model"
	"timeclock/internal/core/tracker"
	"timeclock/internal/gateway"
	"timeclock/internal/logger"
	"timeclock/internal/notify"
	"timeclock/internal/platform"
	"timeclock/internal/storage"
	"timeclock/internal/ui/preferences"
	"timeclock/internal/ui/timerwin"
	"timeclock/internal/ui/tray"
)

const appName = "Timeclock"

func main() {
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	sugar, err := logger.New(*debug)
	if err != nil {
		log.Printf("logger: %v", err)
		return
	}
	defer func() {
		_ = sugar.Sync()
	}()

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		sugar.Infow("another instance is already running, exiting")
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		sugar.Warnw("could not load settings, using defaults", "error", err)
	}

	sessionGateway, cleanup, err := buildGateway(settings, sugar)
	if err != nil {
		sugar.Errorw("could not open session gateway", "error", err)
		return
	}
	defer cleanup()

	snapshots, err := storage.NewSnapshotStore(appName, settings.WorkspaceID)
	if err != nil {
		sugar.Warnw("snapshot store unavailable, mode state will not persist", "error", err)
	}

	fyneApp := app.NewWithID("com.timeclock.app")
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		sugar.Errorw("system tray unsupported on this platform")
		return
	}

	desktopNotifier := notify.NewDesktop(fyneApp)
	timeTracker := tracker.New(sessionGateway, snapshotStoreOrNil(snapshots), settings.TrackerConfig(), sugar,
		tracker.WithNotifier(desktopNotifier),
		tracker.WithSound(notify.NewChime(sugar)),
		tracker.WithIdleChecker(platform.NewIdleProvider()),
	)

	bootstrapCtx, cancelBootstrap := context.WithTimeout(context.Background(), 10*time.Second)
	if err := timeTracker.Bootstrap(bootstrapCtx); err != nil {
		sugar.Warnw("bootstrap failed", "error", err)
	}
	cancelBootstrap()

	autostartService := platform.NewService()

	var timerWindow *timerwin.Window
	var trayManager *tray.Manager
	var prefsWindow *preferences.Window

	background := context.Background()
	timerWindow = timerwin.New(fyneApp, timerwin.Callbacks{
		OnStart: func(descriptor model.SessionDescriptor) {
			go reportError(sugar, desktopNotifier, "start", timeTracker.Start(background, descriptor))
		},
		OnPause: func() {
			go reportError(sugar, desktopNotifier, "pause", timeTracker.Pause(background, gateway.BreakRequest{}))
		},
		OnResume: func() {
			go reportError(sugar, desktopNotifier, "resume", timeTracker.Resume(background))
		},
		OnStop: func() {
			go reportError(sugar, desktopNotifier, "stop", timeTracker.Stop(background))
		},
		OnContinueLast: func() {
			go reportError(sugar, desktopNotifier, "continue last", timeTracker.ResumeLast(background))
		},
		OnContinueSegment: func() {
			timeTracker.ContinuePomodoro()
		},
		OnResolve: func(resolution tracker.Resolution) {
			go reportError(sugar, desktopNotifier, "resolve guard", timeTracker.Resolve(background, resolution))
		},
	})

	prefsWindow = preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		previousMode := settings.Mode
		settings = updated
		if err := storage.SaveSettings(appName, settings); err != nil {
			sugar.Warnw("could not save settings", "error", err)
		}
		if err := timeTracker.UpdateConfig(settings.TrackerConfig()); err != nil {
			sugar.Warnw("settings not applied", "error", err)
		}
		if settings.Mode != previousMode {
			if err := timeTracker.SwitchMode(settings.Mode); err != nil {
				sugar.Warnw("mode not switched", "error", err)
			}
		}
		applyAutostart(autostartService, settings.LaunchAtLogin, sugar)
	})

	trayManager = tray.New(desktopApp, tray.Callbacks{
		OnShowTimer:   timerWindow.Show,
		OnPreferences: prefsWindow.Show,
		OnPause: func() {
			go reportError(sugar, desktopNotifier, "pause", timeTracker.Pause(background, gateway.BreakRequest{}))
		},
		OnResume: func() {
			go reportError(sugar, desktopNotifier, "resume", timeTracker.Resume(background))
		},
		OnStop: func() {
			go reportError(sugar, desktopNotifier, "stop", timeTracker.Stop(background))
		},
		OnContinueLast: func() {
			go reportError(sugar, desktopNotifier, "continue last", timeTracker.ResumeLast(background))
		},
		OnSwitchMode: func(mode model.Mode) {
			if err := timeTracker.SwitchMode(mode); err != nil {
				sugar.Warnw("mode not switched", "error", err)
				return
			}
			settings.Mode = mode
			if err := storage.SaveSettings(appName, settings); err != nil {
				sugar.Warnw("could not save settings", "error", err)
			}
		},
		OnQuit: func() {
			timeTracker.Close()
			fyneApp.Quit()
		},
	})

	events := timeTracker.Subscribe(16)
	go func() {
		for event := range events {
			event := event
			fyne.Do(func() {
				handleEvent(event, timeTracker, timerWindow, trayManager, prefsWindow)
			})
		}
	}()

	runCtx, cancelRun := context.WithCancel(context.Background())
	defer cancelRun()
	go timeTracker.Run(runCtx)

	timerWindow.Show()
	fyneApp.Run()
	timeTracker.Close()
}

func handleEvent(event tracker.Event, timeTracker *tracker.Tracker, timerWindow *timerwin.Window, trayManager *tray.Manager, prefsWindow *preferences.Window) {
	hasLast := timeTracker.LastStopped() != nil
	timerWindow.ApplyEvent(event, hasLast)

	switch event.Type {
	case tracker.EventGuardPending:
		timerWindow.Show()
		timerWindow.ShowGuard(event.Guard)
	case tracker.EventCompleted:
		if event.Status == tracker.StatusIdle {
			timerWindow.FlashCompleted(timeTracker.LastStopped())
		}
	case tracker.EventIdleReset:
		trayManager.SetStatus("paused (idle)")
	}

	running := event.Status == tracker.StatusRunning
	paused := event.Status == tracker.StatusPaused
	trayManager.SetSessionState(running, paused, hasLast)
	prefsWindow.SetLocked(running || paused)

	switch event.Status {
	case tracker.StatusRunning:
		trayManager.SetStatus(formatStatus(event))
	case tracker.StatusPaused:
		breakType, since := timeTracker.BreakInfo()
		timerWindow.ShowBreak(breakType, since)
		trayManager.SetStatus("paused")
	default:
		trayManager.SetStatus("idle")
	}
}

func formatStatus(event tracker.Event) string {
	value := event.Display.Value
	if value < 0 {
		value = 0
	}
	totalSeconds := int(value.Seconds())
	return fmt.Sprintf("%s %02d:%02d:%02d", event.Mode,
		totalSeconds/3600, (totalSeconds%3600)/60, totalSeconds%60)
}

// buildGateway picks the REST client when a server is configured and
// falls back to the local SQLite store otherwise.
func buildGateway(settings preferences.Settings, sugar *zap.SugaredLogger) (gateway.Gateway, func(), error) {
	if settings.ServerURL != "" {
		sugar.Infow("using workspace backend", "url", settings.ServerURL, "workspace", settings.WorkspaceID)
		return gateway.NewClient(settings.ServerURL, settings.WorkspaceID, sugar), func() {}, nil
	}

	configDir, err := os.UserConfigDir()
	if err != nil {
		return nil, nil, fmt.Errorf("resolve config dir: %w", err)
	}
	path := filepath.Join(configDir, appName, "sessions.db")
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, nil, fmt.Errorf("create config dir: %w", err)
	}

	store, err := gateway.OpenStore(path, model.ThresholdPolicy{
		Enabled: settings.ThresholdEnabled,
		MaxAge:  settings.ThresholdMaxAge,
	})
	if err != nil {
		return nil, nil, err
	}
	sugar.Infow("using local session store", "path", path)
	return store, func() { _ = store.Close() }, nil
}

func applyAutostart(service platform.Service, enabled bool, sugar *zap.SugaredLogger) {
	execPath, err := os.Executable()
	if err != nil {
		sugar.Warnw("could not resolve executable path", "error", err)
		return
	}
	if enabled {
		err = service.EnableAutostart(appName, execPath)
	} else {
		err = service.DisableAutostart(appName)
	}
	if err != nil {
		sugar.Warnw("could not update autostart", "enabled", enabled, "error", err)
	}
}

// reportError surfaces a failed session operation to the user. The
// tracker has already left its state untouched; the notification is the
// only trace of the failure besides the log. Threshold rejections are
// skipped because the guard dialog handles them.
func reportError(sugar *zap.SugaredLogger, notifier tracker.Notifier, operation string, err error) {
	if err == nil {
		return
	}
	var threshold *gateway.ThresholdError
	if errors.As(err, &threshold) {
		return
	}
	sugar.Warnw("operation failed", "operation", operation, "error", err)
	notifier.Notify(appName, fmt.Sprintf("Could not %s: %v", operation, err))
}

func snapshotStoreOrNil(store *storage.SnapshotFile) tracker.SnapshotStore {
	if store == nil {
		return nil
	}
	return store
}
