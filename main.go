// Package main provides the entry point for the Overlay Annotator application.
package main

import (
	"flag"
	"log"

	fyneapp "fyne.io/fyne/v2/app"

	"overlay-annotator/internal/app"
	"overlay-annotator/internal/config"
	"overlay-annotator/internal/logutil"
	"overlay-annotator/internal/version"
	"overlay-annotator/ui/mainwindow"
	"overlay-annotator/ui/prefs"
)

const (
	appID    = "io.github.overlay-annotator"
	appTitle = "Overlay Annotator"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to read configuration: %v", err)
	}

	imagePath := flag.String("image", cfg.Image, "image to open")
	annotationsPath := flag.String("annotations", cfg.Annotations, "annotation file (default: next to the image)")
	flag.Parse()
	if flag.NArg() > 0 {
		*imagePath = flag.Arg(0)
	}

	closer := logutil.Setup(cfg.EnableFileLogging, cfg.LogFile)
	defer closer.Close()
	log.Printf("Starting %s %s", appTitle, version.String())
	if cfg.EnvFile != "" {
		log.Printf("Configuration read from %s", cfg.EnvFile)
	}

	appPrefs := prefs.Load()
	log.Printf("Preferences: %s", appPrefs.Path())

	style := appPrefs.Style()
	fyneApp := fyneapp.NewWithID(appID)
	fyneApp.Settings().SetTheme(&app.AnnotatorTheme{Overlay: style.Border, Selected: style.SelectedBorder})

	appState := app.NewState()

	win := mainwindow.New(fyneApp, appState, mainwindow.Options{
		Prefs:            appPrefs,
		OCRLanguage:      cfg.OCRLanguage,
		WatchAnnotations: cfg.WatchAnnotations,
	})

	if *imagePath != "" {
		win.LoadImage(*imagePath, *annotationsPath)
	} else if *annotationsPath != "" {
		if err := appState.OpenAnnotations(*annotationsPath); err != nil {
			log.Printf("Failed to open annotations %s: %v", *annotationsPath, err)
		}
	}

	win.ShowAndRun()
}
