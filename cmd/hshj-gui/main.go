package main

import (
	"log"

	fyneapp "fyne.io/fyne/v2/app"
	"github.com/joho/godotenv"

	"jordanella.com/hshj-locator/internal/app"
	"jordanella.com/hshj-locator/internal/config"
	"jordanella.com/hshj-locator/internal/gui"
)

func main() {
	// .env is optional; it only seeds HSHJ_* overrides
	_ = godotenv.Load()

	cfg, err := config.Load("Settings.ini")
	if err != nil {
		log.Printf("Warning: Failed to load config: %v", err)
		cfg = config.NewDefaultConfig()
	}

	locator, err := app.New(cfg, app.Options{Component: "gui", LogToBus: true})
	if err != nil {
		log.Fatalf("Failed to start: %v", err)
	}

	myApp := fyneapp.NewWithID("com.jordanella.hshj-locator")
	myApp.Settings().SetTheme(gui.NewLocatorTheme())

	mainWindow := myApp.NewWindow("魂兽幻境定位")
	mainWindow.Resize(gui.DefaultWindowSize)

	controller := gui.NewController(locator, myApp, mainWindow)
	mainWindow.SetContent(controller.BuildUI())
	mainWindow.SetMaster()
	mainWindow.ShowAndRun()

	controller.Shutdown()
	locator.Close()
}
