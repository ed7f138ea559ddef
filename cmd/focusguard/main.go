package main

import (
	"context"
	"errors"
	"os"
	"time"

	"focusguard/internal/core/model"
	"focusguard/internal/core/session"
	"focusguard/internal/core/signals"
	"focusguard/internal/core/timekeeper"
	"focusguard/internal/logging"
	"focusguard/internal/platform"
	"focusguard/internal/storage"
	"focusguard/internal/tasks"
	"focusguard/internal/ui/overlay"
	"focusguard/internal/ui/preferences"
	"focusguard/internal/ui/tray"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

const appName = "focusguard"

func main() {
	logger := logging.Setup(os.Stderr, "")

	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		if errors.Is(err, platform.ErrAlreadyRunning) {
			if wakeErr := platform.WakeRunningInstance(appName); wakeErr != nil {
				logger.Warn("wake running instance", "error", wakeErr)
			}
		}
		logger.Info("single instance", "error", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	paths, err := storage.ResolvePaths(appName)
	if err != nil {
		logger.Error("resolve paths", "error", err)
		return
	}

	settings, err := storage.LoadSettingsFile(paths.Settings)
	if err != nil {
		logger.Warn("load settings, using defaults", "error", err)
	}

	var kv signals.KV
	boltKV, err := storage.OpenBoltKV(paths.Session)
	if err != nil {
		logger.Warn("open session store, state will not survive restart", "error", err)
		kv = storage.NewMemoryKV()
	} else {
		defer func() {
			_ = boltKV.Close()
		}()
		kv = boltKV
	}

	db, err := tasks.Open(paths.Tasks)
	if err != nil {
		logger.Error("open tasks database", "error", err)
		return
	}
	defer func() {
		_ = db.Close()
	}()
	taskStore := tasks.NewStore(db)
	taskCache := tasks.NewCache(taskStore, logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	fyneApp := app.NewWithID("com.focusguard.app")
	fyneApp.SetIcon(theme.VisibilityIcon())
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		logger.Error("system tray unsupported on this platform")
		return
	}

	trayWindow := fyneApp.NewWindow("FocusGuard")
	trayWindow.SetContent(widget.NewLabel("FocusGuard is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	keeper := timekeeper.New(settings.TimeKeeperConfig(), timekeeper.Config{TickInterval: time.Second})
	defer keeper.Stop()
	signalStore := signals.NewStore(signals.Options{KV: kv, Logger: logger})

	var controller *session.Controller
	promptWindow := overlay.New(fyneApp, overlay.Config{Fullscreen: settings.Fullscreen}, func(action session.ActionID) {
		go func() {
			if err := controller.Choose(ctx, action); err != nil {
				logger.Warn("prompt action", "action", action, "error", err)
			}
		}()
	})
	banner := overlay.NewBanner(fyneApp, func() {
		go func() {
			controller.DismissAlert()
			controller.RecordUserAction(ctx)
		}()
	})
	presenter := overlay.NewPresenter(promptWindow, banner, settings.ShowAlerts)

	controller = session.New(session.Options{
		Timers:    keeper,
		Tasks:     taskCache,
		Signals:   signalStore,
		Presenter: presenter,
		Logger:    logger,
	})

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		settings = updated
		if err := storage.SaveSettingsFile(paths.Settings, settings); err != nil {
			logger.Warn("save settings", "error", err)
		}
		keeper.UpdateConfig(settings.TimeKeeperConfig())
		promptWindow.UpdateConfig(overlay.Config{Fullscreen: settings.Fullscreen})
		presenter.SetShowAlerts(settings.ShowAlerts)
	})

	var trayManager *tray.Manager
	reloadTasks := func() {
		list, err := taskStore.ListTasks(ctx, "")
		if err != nil {
			logger.Warn("list tasks", "error", err)
			return
		}
		for _, task := range list {
			taskCache.Put(task)
		}
		fyne.Do(func() {
			trayManager.SetTasks(list)
		})
	}

	trayManager = tray.New(desktopApp, tray.Callbacks{
		OnPreferences: func() {
			prefsWindow.Show()
		},
		OnStartTask: func(taskID string) {
			go func() {
				if err := controller.StartTask(ctx, taskID); err != nil {
					logger.Warn("start task", "task", taskID, "error", err)
				}
			}()
		},
		OnTogglePause: func() {
			go func() {
				if keeper.Snapshot().Phase == timekeeper.PhaseFocusPaused {
					controller.ResumeFocus(ctx)
					return
				}
				controller.PauseFocus(ctx)
			}()
		},
		OnStop: func() {
			go func() {
				if keeper.Snapshot().Break().Phase != timekeeper.TimerIdle {
					controller.StopBreak(ctx)
					return
				}
				controller.StopFocus(ctx)
			}()
		},
		OnCompleteSubtask: func(taskID, subtaskID string) {
			go func() {
				if err := controller.CompleteSubtask(ctx, taskID, subtaskID); err != nil {
					logger.Warn("complete subtask", "task", taskID, "subtask", subtaskID, "error", err)
				}
			}()
		},
		OnRefresh: func() {
			go func() {
				controller.RecordNavigation(ctx)
				reloadTasks()
			}()
		},
		OnQuit: func() {
			cancel()
			keeper.Stop()
			fyneApp.Quit()
		},
	})

	controllerEvents := keeper.Subscribe(16)
	trayEvents := keeper.Subscribe(16)
	go controller.Run(ctx, controllerEvents)
	go func() {
		for range trayEvents {
			snapshot := keeper.Snapshot()
			task := activeTask(taskCache, snapshot.TaskID)
			fyne.Do(func() {
				trayManager.SetSnapshot(snapshot, task)
			})
		}
	}()
	signalStore.Subscribe(func(state signals.State) {
		fyne.Do(func() {
			trayManager.SetStreak(state.ConsecutiveSessions)
		})
	})
	trayManager.SetStreak(signalStore.State().ConsecutiveSessions)

	monitor := platform.NewActivityMonitor(platform.NewIdleProvider(), 0, 0, platform.ActivityCallbacks{
		OnAway:   func() { controller.RecordAway(ctx) },
		OnReturn: func() { controller.RecordReturn(ctx) },
	}, logger)
	go monitor.Run(ctx)

	go guard.Serve(func() {
		fyne.Do(prefsWindow.Show)
	})

	keeper.Start()
	controller.Sync(ctx)
	go reloadTasks()

	logger.Info("started", "settings", paths.Settings, "tasks", paths.Tasks)
	fyneApp.Run()
	controller.Close()
	logger.Info("stopped")
}

func activeTask(cache *tasks.Cache, taskID string) model.Task {
	if taskID == "" {
		return model.Task{}
	}
	task, _ := cache.GetTask(taskID)
	return task
}

var _ session.TaskSource = (*tasks.Cache)(nil)
