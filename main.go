// Package main provides the entry point for the dotblot quantification
// application.
package main

import (
	"log"
	"os"
	"strings"

	"dotblot-quant/internal/app"
	blotimage "dotblot-quant/internal/image"
	"dotblot-quant/ui/mainwindow"
	"dotblot-quant/ui/prefs"

	fyneapp "fyne.io/fyne/v2/app"
)

const (
	appTitle   = "Dotblot Quant"
	appVersion = "0.1.0"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Printf("Starting %s v%s", appTitle, appVersion)

	fyneApp := fyneapp.NewWithID("dotblot-quant")

	session := app.NewSession()
	appPrefs := prefs.Load()

	win := mainwindow.New(fyneApp, session, appPrefs)
	win.SetTitle(appTitle)

	// A command line argument opens a project or an image, by suffix.
	if len(os.Args) > 1 {
		path := os.Args[1]
		if strings.HasSuffix(strings.ToLower(path), ".json") {
			if err := session.LoadProject(path); err != nil {
				log.Printf("Failed to load project %s: %v", path, err)
			}
		} else if blotimage.IsSupportedFormat(path) {
			if err := session.LoadImage(path); err != nil {
				log.Printf("Failed to load image %s: %v", path, err)
			}
		} else {
			log.Printf("Unrecognized argument %s", path)
		}
	}

	win.SetOnClosed(win.SavePreferences)
	win.ShowAndRun()
}
