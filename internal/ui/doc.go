package ui

// Package ui contains the Fyne-based desktop user interface: the search
// bar, the thumbnail result grid, the artwork detail dialog, and the
// settings dialog. It drives the gallery controller and renders its state
// snapshots, marshalling updates onto the UI thread with fyne.Do.
