package platform

// Package platform contains OS and filesystem glue: download filename
// derivation, atomic file writes, directory helpers, and opening a saved
// file in the system file manager.
