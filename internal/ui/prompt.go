package ui

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/storage"

	"github.com/metget/met-browser/internal/config"
)

// SavePrompter adapts Fyne's callback-based file-save dialog to the
// synchronous save.Prompter contract. ChoosePath blocks until the user
// answers, so it must run off the UI thread.
type SavePrompter struct {
	window   fyne.Window
	settings *config.Settings
}

// NewSavePrompter creates a prompter over the main window.
func NewSavePrompter(window fyne.Window, settings *config.Settings) *SavePrompter {
	return &SavePrompter{window: window, settings: settings}
}

// ChoosePath shows the save dialog seeded with the default name and the
// configured save directory. ok is false when the user cancelled.
func (p *SavePrompter) ChoosePath(defaultName string) (string, bool, error) {
	type answer struct {
		path string
		ok   bool
		err  error
	}
	ch := make(chan answer, 1)

	fyne.Do(func() {
		d := dialog.NewFileSave(func(writer fyne.URIWriteCloser, err error) {
			if err != nil {
				ch <- answer{err: err}
				return
			}
			if writer == nil {
				ch <- answer{}
				return
			}
			path := writer.URI().Path()
			// The save service writes the bytes itself; the dialog's
			// writer only pins the chosen location.
			writer.Close()
			ch <- answer{path: path, ok: true}
		}, p.window)
		d.SetFileName(defaultName)
		if dir := p.settings.GetSaveDirectory(); dir != "" {
			if lister, err := storage.ListerForURI(storage.NewFileURI(dir)); err == nil {
				d.SetLocation(lister)
			}
		}
		d.Show()
	})

	a := <-ch
	if a.ok {
		p.rememberDirectory(a.path)
	}
	return a.path, a.ok, a.err
}

func (p *SavePrompter) rememberDirectory(path string) {
	if uri := storage.NewFileURI(path); uri != nil {
		if parent, err := storage.Parent(uri); err == nil {
			p.settings.SetSaveDirectory(parent.Path())
		}
	}
}
