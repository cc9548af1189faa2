package model

// Package model defines domain data structures used across the app: artwork
// records from the collection API and the search session status enum.
// Structures are immutable once fetched and safe to share between the
// orchestration layer and the UI.
