package main

import (
	"fmt"
	"log"
	"os"

	"clickmate/internal/core/activity"
	"clickmate/internal/core/model"
	"clickmate/internal/core/scheduler"
	"clickmate/internal/platform"
	"clickmate/internal/storage"
	"clickmate/internal/ui/preferences"
	"clickmate/internal/ui/tray"

	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/widget"
)

const appName = "ClickMate"

func main() {
	guard, err := platform.AcquireSingleInstance(appName)
	if err != nil {
		log.Printf("single instance: %v", err)
		return
	}
	defer func() {
		_ = guard.Release()
	}()

	fyneApp := app.NewWithID("com.clickmate.app")
	desktopApp, ok := fyneApp.(desktop.App)
	if !ok {
		log.Printf("system tray unsupported on this platform")
		return
	}

	trayWindow := fyneApp.NewWindow("ClickMate")
	trayWindow.SetContent(widget.NewLabel("ClickMate is running in the system tray."))
	trayWindow.SetCloseIntercept(func() {
		trayWindow.Hide()
	})
	trayWindow.Hide()
	desktopApp.SetSystemTrayWindow(trayWindow)

	settings, err := storage.LoadSettings(appName)
	if err != nil {
		log.Printf("load settings: %v", err)
	}

	configStore := model.NewStore(settings.ClickerConfig())
	monitor := activity.NewMonitor(platform.NewInputSource(), platform.NewCursor())
	clicker := scheduler.New(platform.NewClicker(), platform.NewCursor(), platform.NewFrontmostProbe(), scheduler.Config{})
	service := platform.NewService()

	applyAutostart(service, settings.Autostart)

	prefsWindow := preferences.New(fyneApp, settings, func(updated preferences.Settings) {
		settings = updated
		configStore.Set(settings.ClickerConfig())
		if err := storage.SaveSettings(appName, settings); err != nil {
			log.Printf("save settings: %v", err)
		}
		applyAutostart(service, settings.Autostart)
	})

	trayManager := tray.New(desktopApp, tray.Callbacks{
		OnToggleRun: func() {
			if clicker.IsRunning() {
				clicker.Stop()
			} else {
				clicker.Start(configStore, monitor)
			}
		},
		OnPreferences: func() {
			prefsWindow.Show()
		},
		OnQuit: func() {
			clicker.Close()
			fyneApp.Quit()
		},
	})
	trayManager.SetStatus("idle")

	events := clicker.Subscribe(8)
	go func() {
		clicks := 0
		for event := range events {
			switch event.Type {
			case scheduler.EventStarted:
				clicks = 0
				trayManager.SetRunning(true)
				trayManager.SetStatus("clicking")
			case scheduler.EventStopped:
				trayManager.SetRunning(false)
				trayManager.SetStatus("idle")
			case scheduler.EventClick:
				clicks++
				trayManager.SetStatus(fmt.Sprintf("clicking (%d clicks)", clicks))
			case scheduler.EventMonitorDegraded:
				trayManager.SetStatus("clicking (input monitoring unavailable)")
			}
		}
	}()

	prefsWindow.Show()
	fyneApp.Run()
}

func applyAutostart(service platform.Service, enabled bool) {
	execPath, err := os.Executable()
	if err != nil {
		log.Printf("autostart: resolve executable: %v", err)
		return
	}
	if enabled {
		if err := service.EnableAutostart(appName, execPath); err != nil {
			log.Printf("autostart: %v", err)
		}
		return
	}
	if err := service.DisableAutostart(appName); err != nil {
		log.Printf("autostart: %v", err)
	}
}
