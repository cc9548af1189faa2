package ui

import (
	"fmt"
	"sync"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/metget/met-browser/internal/config"
	"github.com/metget/met-browser/internal/gallery"
	"github.com/metget/met-browser/internal/model"
	"github.com/metget/met-browser/internal/save"
)

// RootUI represents the main UI structure
type RootUI struct {
	window     fyne.Window
	settings   *config.Settings
	controller *gallery.Controller
	saveSvc    *save.Service
	images     *ImageCache

	searchEntry *widget.Entry
	searchBtn   *widget.Button
	resetBtn    *widget.Button
	settingsBtn *widget.Button
	statusLabel *widget.Label
	spinner     *widget.ProgressBarInfinite
	grid        *widget.GridWrap

	detail *detailView

	mu      sync.Mutex
	results []*model.Artwork
}

// NewRootUI creates and initializes the main UI
func NewRootUI(window fyne.Window, app fyne.App, controller *gallery.Controller, saveSvc *save.Service, images *ImageCache) *RootUI {
	ui := &RootUI{
		window:     window,
		settings:   config.NewSettings(app),
		controller: controller,
		saveSvc:    saveSvc,
		images:     images,
	}

	ui.createUI()

	controller.SetUpdateCallback(func(st gallery.State) {
		fyne.Do(func() { ui.applyState(st) })
	})
	images.SetLoadedCallback(func(string) {
		fyne.Do(func() { ui.grid.Refresh() })
	})

	window.SetContent(ui.buildLayout())
	window.Canvas().Focus(ui.searchEntry)
	return ui
}

func (ui *RootUI) createUI() {
	ui.searchEntry = widget.NewEntry()
	ui.searchEntry.SetPlaceHolder("Search the Met collection…")
	ui.searchEntry.OnSubmitted = func(string) { ui.onSearch() }

	ui.searchBtn = widget.NewButtonWithIcon("Search", theme.SearchIcon(), ui.onSearch)
	ui.resetBtn = widget.NewButtonWithIcon("Clear", theme.ContentClearIcon(), ui.onReset)
	ui.settingsBtn = widget.NewButtonWithIcon("", theme.SettingsIcon(), func() {
		NewSettingsDialog(ui.settings, ui.window).Show()
	})

	ui.statusLabel = widget.NewLabel("Type a query to search the collection")
	ui.spinner = widget.NewProgressBarInfinite()
	ui.spinner.Hide()

	ui.grid = widget.NewGridWrap(
		ui.resultCount,
		func() fyne.CanvasObject { return newArtworkCell() },
		ui.updateCell,
	)
	ui.grid.OnSelected = func(id widget.GridWrapItemID) {
		ui.grid.UnselectAll()
		if a := ui.resultAt(id); a != nil {
			ui.controller.SelectItem(a)
		}
	}
}

func (ui *RootUI) buildLayout() fyne.CanvasObject {
	topBar := container.NewBorder(nil, nil, nil,
		container.NewHBox(ui.searchBtn, ui.resetBtn, ui.settingsBtn),
		ui.searchEntry)
	statusBar := container.NewBorder(nil, nil, nil, ui.spinner, ui.statusLabel)
	return container.NewBorder(
		container.NewVBox(topBar, statusBar), nil, nil, nil,
		ui.grid)
}

func (ui *RootUI) onSearch() {
	ui.controller.Search(ui.searchEntry.Text)
}

func (ui *RootUI) onReset() {
	ui.searchEntry.SetText("")
	ui.controller.Reset()
	ui.window.Canvas().Focus(ui.searchEntry)
}

// applyState renders one controller snapshot. Always runs on the UI
// thread.
func (ui *RootUI) applyState(st gallery.State) {
	ui.mu.Lock()
	ui.results = st.Results
	ui.mu.Unlock()

	ui.statusLabel.SetText(statusText(st))
	if st.Searching {
		ui.spinner.Show()
		ui.spinner.Start()
	} else {
		ui.spinner.Stop()
		ui.spinner.Hide()
	}
	ui.grid.Refresh()

	ui.applyDetailState(st)
}

func (ui *RootUI) applyDetailState(st gallery.State) {
	if st.Selected == nil {
		if d := ui.detail; d != nil {
			ui.detail = nil
			d.Hide()
		}
		return
	}
	if ui.detail == nil || ui.detail.objectID != st.Selected.ObjectID {
		ui.detail = newDetailView(ui, st.Selected)
		ui.detail.Show()
	}
	if st.Details != nil {
		ui.detail.update(st.Details)
	}
}

func statusText(st gallery.State) string {
	switch st.Status {
	case model.StatusSearching:
		if st.LoadedCount > 0 {
			return fmt.Sprintf("Searching %q… %d objects loaded", st.Query, st.LoadedCount)
		}
		return fmt.Sprintf("Searching %q…", st.Query)
	case model.StatusResultsReady:
		return fmt.Sprintf("%d artworks for %q", len(st.Results), st.Query)
	case model.StatusEmpty:
		return fmt.Sprintf("No results for %q", st.Query)
	case model.StatusFailed, model.StatusAllFailed:
		return st.ErrorMessage
	default:
		return "Type a query to search the collection"
	}
}

func (ui *RootUI) resultCount() int {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	return len(ui.results)
}

func (ui *RootUI) resultAt(id widget.GridWrapItemID) *model.Artwork {
	ui.mu.Lock()
	defer ui.mu.Unlock()
	if id < 0 || id >= len(ui.results) {
		return nil
	}
	return ui.results[id]
}

// updateCell fires when the grid materializes a visible cell, which makes
// it the visibility trigger for lazy thumbnail loading.
func (ui *RootUI) updateCell(id widget.GridWrapItemID, o fyne.CanvasObject) {
	a := ui.resultAt(id)
	if a == nil {
		return
	}
	cell := o.(*artworkCell)
	res, ok := ui.images.Get(a.ThumbImageURL())
	if !ok {
		ui.images.RequestVisible(a.ThumbImageURL())
	}
	cell.setArtwork(a, res)
}

// artworkCell is one thumbnail tile in the result grid.
type artworkCell struct {
	widget.BaseWidget
	image *canvas.Image
	title *widget.Label
}

func newArtworkCell() *artworkCell {
	c := &artworkCell{
		image: canvas.NewImageFromResource(theme.FileImageIcon()),
		title: widget.NewLabel(""),
	}
	c.image.FillMode = canvas.ImageFillContain
	c.image.SetMinSize(fyne.NewSize(GridCellWidth, GridCellHeight))
	c.title.Truncation = fyne.TextTruncateEllipsis
	c.title.Alignment = fyne.TextAlignCenter
	c.ExtendBaseWidget(c)
	return c
}

func (c *artworkCell) CreateRenderer() fyne.WidgetRenderer {
	return widget.NewSimpleRenderer(container.NewBorder(nil, c.title, nil, nil, c.image))
}

func (c *artworkCell) setArtwork(a *model.Artwork, res fyne.Resource) {
	c.title.SetText(a.GetDisplayTitle())
	if res == nil {
		res = theme.FileImageIcon()
	}
	if c.image.Resource != res {
		c.image.Resource = res
		c.image.Refresh()
	}
}
