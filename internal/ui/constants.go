package ui

import "time"

// Grid layout constants
const (
	GridCellWidth  = 180
	GridCellHeight = 150
)

// Detail dialog constants
const (
	DetailImageWidth  = 420
	DetailImageHeight = 320
	DetailMinWidth    = 640
	DetailMinHeight   = 480
)

// Network constants for image loading
const (
	ImageFetchTimeout = 30 * time.Second
)
