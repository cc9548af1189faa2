package main

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"

	"github.com/metget/met-browser/internal/catalog"
	"github.com/metget/met-browser/internal/config"
	"github.com/metget/met-browser/internal/gallery"
	"github.com/metget/met-browser/internal/save"
	"github.com/metget/met-browser/internal/ui"
)

// Version is set during build via -ldflags "-X main.version=X.Y.Z"
var version = "dev"

const (
	AppID   = "com.metget.met-browser"
	AppName = "Met Browser"

	WindowWidth  = 1000
	WindowHeight = 700
)

func main() {
	fmt.Printf("%s v%s starting...\n", AppName, version)

	myApp := app.NewWithID(AppID)
	myApp.Settings().SetTheme(ui.NewGalleryTheme())

	windowTitle := fmt.Sprintf("%s v%s", AppName, version)
	myWindow := myApp.NewWindow(windowTitle)
	myWindow.Resize(fyne.NewSize(WindowWidth, WindowHeight))

	// Initialize services
	settings := config.NewSettings(myApp)
	galleryCfg := settings.GalleryConfig()

	client := catalog.NewClient()
	controller := gallery.NewController(client, gallery.NewCache(), galleryCfg)

	images := ui.NewImageCache(galleryCfg.Fetch)
	if settings.GetPreloadImages() {
		controller.SetPreloader(images.Preload)
	}

	prompter := ui.NewSavePrompter(myWindow, settings)
	saveSvc := save.NewService(prompter)

	// Create and setup UI
	ui.NewRootUI(myWindow, myApp, controller, saveSvc, images)

	// Show and run
	myWindow.ShowAndRun()
}
