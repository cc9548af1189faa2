package ui

import (
	"strconv"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"

	"github.com/metget/met-browser/internal/config"
)

// SettingsDialog represents the settings configuration dialog. Changes
// apply to the next search.
type SettingsDialog struct {
	settings *config.Settings
	window   fyne.Window
	dialog   *dialog.ConfirmDialog

	pageSizeEntry   *widget.Entry
	concurrentEntry *widget.Entry
	delayEntry      *widget.Entry
	preloadCheck    *widget.Check
	saveDirEntry    *widget.Entry
}

// NewSettingsDialog creates a new settings dialog
func NewSettingsDialog(settings *config.Settings, window fyne.Window) *SettingsDialog {
	sd := &SettingsDialog{
		settings: settings,
		window:   window,
	}
	sd.createUI()
	return sd
}

// Show displays the settings dialog
func (sd *SettingsDialog) Show() {
	sd.loadCurrentSettings()
	sd.dialog.Show()
}

func (sd *SettingsDialog) createUI() {
	sd.pageSizeEntry = widget.NewEntry()
	sd.pageSizeEntry.SetPlaceHolder("1-200")

	sd.concurrentEntry = widget.NewEntry()
	sd.concurrentEntry.SetPlaceHolder("1-10")

	sd.delayEntry = widget.NewEntry()
	sd.delayEntry.SetPlaceHolder("milliseconds")

	sd.preloadCheck = widget.NewCheck("Preload full images before showing results", nil)

	sd.saveDirEntry = widget.NewEntry()
	sd.saveDirEntry.SetPlaceHolder("Save dialog start directory")

	form := widget.NewForm(
		widget.NewFormItem("Results per search", sd.pageSizeEntry),
		widget.NewFormItem("Concurrent fetches", sd.concurrentEntry),
		widget.NewFormItem("Launch delay (ms)", sd.delayEntry),
		widget.NewFormItem("", sd.preloadCheck),
		widget.NewFormItem("Save directory", sd.saveDirEntry),
	)

	sd.dialog = dialog.NewCustomConfirm("Settings", "Save", "Cancel", form,
		func(confirmed bool) {
			if confirmed {
				sd.applySettings()
			}
		}, sd.window)
}

func (sd *SettingsDialog) loadCurrentSettings() {
	sd.pageSizeEntry.SetText(strconv.Itoa(sd.settings.GetPageSize()))
	sd.concurrentEntry.SetText(strconv.Itoa(sd.settings.GetMaxConcurrentFetches()))
	sd.delayEntry.SetText(strconv.Itoa(sd.settings.GetMinLaunchDelayMS()))
	sd.preloadCheck.SetChecked(sd.settings.GetPreloadImages())
	sd.saveDirEntry.SetText(sd.settings.GetSaveDirectory())
}

func (sd *SettingsDialog) applySettings() {
	if v, err := strconv.Atoi(sd.pageSizeEntry.Text); err == nil {
		sd.settings.SetPageSize(v)
	}
	if v, err := strconv.Atoi(sd.concurrentEntry.Text); err == nil {
		sd.settings.SetMaxConcurrentFetches(v)
	}
	if v, err := strconv.Atoi(sd.delayEntry.Text); err == nil {
		sd.settings.SetMinLaunchDelayMS(v)
	}
	sd.settings.SetPreloadImages(sd.preloadCheck.Checked)
	if dir := sd.saveDirEntry.Text; dir != "" {
		sd.settings.SetSaveDirectory(dir)
	}
}
