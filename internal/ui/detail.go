package ui

import (
	"context"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"

	"github.com/metget/met-browser/internal/model"
	"github.com/metget/met-browser/internal/platform"
	"github.com/metget/met-browser/internal/save"
)

// detailView is the modal dialog showing one artwork's full record. It
// opens immediately with the summary fields the grid already knows and
// re-renders once the controller resolves the full details.
type detailView struct {
	ui       *RootUI
	objectID int
	art      *model.Artwork

	dlg        dialog.Dialog
	image      *canvas.Image
	titleLabel *widget.Label
	infoForm   *widget.Form
	saveBtn    *widget.Button
	revealBtn  *widget.Button
	saveStatus *widget.Label

	savedPath string
}

func newDetailView(ui *RootUI, a *model.Artwork) *detailView {
	d := &detailView{
		ui:       ui,
		objectID: a.ObjectID,
		art:      a,
	}
	d.createUI()
	d.update(a)
	return d
}

func (d *detailView) createUI() {
	d.image = canvas.NewImageFromResource(theme.FileImageIcon())
	d.image.FillMode = canvas.ImageFillContain
	d.image.SetMinSize(fyne.NewSize(DetailImageWidth, DetailImageHeight))

	d.titleLabel = widget.NewLabel("")
	d.titleLabel.TextStyle = fyne.TextStyle{Bold: true}
	d.titleLabel.Wrapping = fyne.TextWrapWord

	d.infoForm = widget.NewForm()

	d.saveBtn = widget.NewButtonWithIcon("Save Image", theme.DownloadIcon(), d.onSave)
	d.revealBtn = widget.NewButtonWithIcon("Show in Folder", theme.FolderOpenIcon(), d.onReveal)
	d.revealBtn.Hide()
	d.saveStatus = widget.NewLabel("")
	d.saveStatus.Wrapping = fyne.TextWrapWord

	content := container.NewBorder(
		nil,
		container.NewVBox(container.NewHBox(d.saveBtn, d.revealBtn), d.saveStatus),
		nil, nil,
		container.NewHSplit(
			d.image,
			container.NewVScroll(container.NewVBox(d.titleLabel, d.infoForm)),
		),
	)

	d.dlg = dialog.NewCustom("Artwork", "Close", content, d.ui.window)
	d.dlg.Resize(fyne.NewSize(DetailMinWidth, DetailMinHeight))
	d.dlg.SetOnClosed(func() {
		d.ui.controller.CloseDetails()
	})
}

// Show displays the dialog and kicks off loading the full image.
func (d *detailView) Show() {
	d.dlg.Show()
	d.loadImage(d.art.BestImageURL())
}

// Hide dismisses the dialog.
func (d *detailView) Hide() {
	d.dlg.Hide()
}

// update re-renders the dialog from a (possibly more complete) record.
func (d *detailView) update(a *model.Artwork) {
	d.art = a
	d.titleLabel.SetText(a.GetDisplayTitle())

	d.infoForm.Items = nil
	appendInfo := func(label, value string) {
		if value == "" {
			return
		}
		item := widget.NewLabel(value)
		item.Wrapping = fyne.TextWrapWord
		d.infoForm.Append(label, item)
	}
	appendInfo("Artist", a.GetDisplayArtist())
	appendInfo("Date", a.ObjectDate)
	appendInfo("Medium", a.Medium)
	appendInfo("Dimensions", a.Dimensions)
	appendInfo("Culture", a.Culture)
	appendInfo("Department", a.Department)
	appendInfo("Credit Line", a.CreditLine)
	appendInfo("Object Type", a.ObjectName)
	appendInfo("Repository", a.Repository)
	d.infoForm.Refresh()

	d.loadImage(a.BestImageURL())
}

// loadImage swaps the dialog image in from the cache, fetching first if
// needed.
func (d *detailView) loadImage(url string) {
	if url == "" {
		return
	}
	if res, ok := d.ui.images.Get(url); ok {
		d.setImage(res)
		return
	}
	go func() {
		d.ui.images.Preload(context.Background(), url)
		if res, ok := d.ui.images.Get(url); ok {
			fyne.Do(func() { d.setImage(res) })
		}
	}()
}

func (d *detailView) setImage(res fyne.Resource) {
	d.image.Resource = res
	d.image.Refresh()
}

func (d *detailView) onSave() {
	a := d.art
	url := a.BestImageURL()
	d.saveBtn.Disable()
	d.saveStatus.SetText("Saving…")

	go func() {
		result := d.ui.saveSvc.Save(context.Background(), save.Request{
			URL:         url,
			DefaultName: platform.DefaultArtworkFilename(a.Title, a.ObjectID, url),
		})
		fyne.Do(func() { d.applySaveResult(result) })
	}()
}

func (d *detailView) applySaveResult(result save.Result) {
	d.saveBtn.Enable()
	switch {
	case result.Canceled:
		d.saveStatus.SetText("")
	case result.Error != "":
		d.saveStatus.SetText(result.Error)
	default:
		d.savedPath = result.FilePath
		d.saveStatus.SetText("Saved to " + result.FilePath)
		d.revealBtn.Show()
	}
}

func (d *detailView) onReveal() {
	if d.savedPath == "" {
		return
	}
	if err := platform.OpenFileInManager(d.savedPath); err != nil {
		d.saveStatus.SetText("Could not open file manager.")
	}
}
