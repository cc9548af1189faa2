package model

import (
	"fmt"
	"strings"
)

// Artwork represents a single object record from the collection API.
// Records never change after they are fetched; most attributes are
// free-form text and several may be empty.
type Artwork struct {
	ObjectID          int    `json:"objectID"`
	Title             string `json:"title"`
	PrimaryImage      string `json:"primaryImage"`
	PrimaryImageSmall string `json:"primaryImageSmall"`
	ArtistDisplayName string `json:"artistDisplayName"`
	ArtistDisplayBio  string `json:"artistDisplayBio"`
	ObjectDate        string `json:"objectDate"`
	Medium            string `json:"medium"`
	Dimensions        string `json:"dimensions"`
	Culture           string `json:"culture"`
	Department        string `json:"department"`
	CreditLine        string `json:"creditLine"`
	ObjectName        string `json:"objectName"`
	Repository        string `json:"repository"`
}

// HasImage reports whether the record carries at least one image URL.
// Records without any image are excluded from search results.
func (a *Artwork) HasImage() bool {
	return a.PrimaryImage != "" || a.PrimaryImageSmall != ""
}

// BestImageURL returns the full-resolution image URL, falling back to the
// small variant when the primary one is missing.
func (a *Artwork) BestImageURL() string {
	if a.PrimaryImage != "" {
		return a.PrimaryImage
	}
	return a.PrimaryImageSmall
}

// ThumbImageURL returns the small image URL, falling back to the primary
// one. Grid cells prefer the small variant to keep decode cost down.
func (a *Artwork) ThumbImageURL() string {
	if a.PrimaryImageSmall != "" {
		return a.PrimaryImageSmall
	}
	return a.PrimaryImage
}

// GetDisplayTitle returns title, object-type name, or a numbered
// placeholder in order of preference.
func (a *Artwork) GetDisplayTitle() string {
	if strings.TrimSpace(a.Title) != "" {
		return a.Title
	}
	if strings.TrimSpace(a.ObjectName) != "" {
		return a.ObjectName
	}
	return fmt.Sprintf("Object %d", a.ObjectID)
}

// GetDisplayArtist returns the artist name with its bio appended when
// both are present, or "Unknown artist" when neither is.
func (a *Artwork) GetDisplayArtist() string {
	name := strings.TrimSpace(a.ArtistDisplayName)
	if name == "" {
		return "Unknown artist"
	}
	bio := strings.TrimSpace(a.ArtistDisplayBio)
	if bio == "" {
		return name
	}
	return name + " (" + bio + ")"
}
