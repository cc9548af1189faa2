package platform

import (
	"fmt"
	"net/url"
	"os"
	"os/exec"
	"path"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
)

// Operating system constants
const (
	OSDarwin  = "darwin"
	OSWindows = "windows"
	OSLinux   = "linux"
)

// File permissions
const (
	DefaultDirPermissions  = 0755
	DefaultFilePermissions = 0644
)

// DefaultImageExtension is used when the image URL carries no extension.
const DefaultImageExtension = ".jpg"

// Command constants
const (
	OpenCommand        = "open"
	ExplorerCommand    = "explorer"
	XDGOpenCommand     = "xdg-open"
	MacOSSelectFlag    = "-R"
	WindowsSelectParam = "/select,"
)

var nonAlphanumericRun = regexp.MustCompile(`[^a-z0-9]+`)

// DefaultBaseFilename derives a download filename stem from an artwork
// title: lower-cased, with every run of non-alphanumeric characters
// collapsed to a single hyphen and leading/trailing hyphens trimmed.
// Titles that sanitize to nothing fall back to "met-<objectID>".
func DefaultBaseFilename(title string, objectID int) string {
	name := strings.ToLower(title)
	name = nonAlphanumericRun.ReplaceAllString(name, "-")
	name = strings.Trim(name, "-")
	if name == "" {
		return fmt.Sprintf("met-%d", objectID)
	}
	return name
}

// ImageExtension returns the file extension of the URL's path, or the
// default image extension when the URL has none or does not parse.
func ImageExtension(imageURL string) string {
	u, err := url.Parse(imageURL)
	if err != nil {
		return DefaultImageExtension
	}
	ext := path.Ext(u.Path)
	if ext == "" {
		return DefaultImageExtension
	}
	return ext
}

// DefaultArtworkFilename combines DefaultBaseFilename and ImageExtension
// into the name the save dialog is seeded with.
func DefaultArtworkFilename(title string, objectID int, imageURL string) string {
	return DefaultBaseFilename(title, objectID) + ImageExtension(imageURL)
}

// WriteFileAtomic writes data to a temporary file in the target's
// directory and renames it into place, so a failed write never leaves a
// truncated file at the destination.
func WriteFileAtomic(filePath string, data []byte) error {
	dir := filepath.Dir(filePath)
	tmp, err := os.CreateTemp(dir, filepath.Base(filePath)+".tmp-*")
	if err != nil {
		return fmt.Errorf("creating temp file: %w", err)
	}
	tmpPath := tmp.Name()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpPath)
		return fmt.Errorf("writing temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("closing temp file: %w", err)
	}
	if err := os.Chmod(tmpPath, DefaultFilePermissions); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("setting permissions: %w", err)
	}
	if err := os.Rename(tmpPath, filePath); err != nil {
		os.Remove(tmpPath)
		return fmt.Errorf("moving file into place: %w", err)
	}
	return nil
}

// CreateDirectoryIfNotExists creates directory if it doesn't exist
func CreateDirectoryIfNotExists(dirPath string) error {
	if _, err := os.Stat(dirPath); os.IsNotExist(err) {
		return os.MkdirAll(dirPath, DefaultDirPermissions)
	}
	return nil
}

// GetHomeDownloadsDir returns the standard Downloads directory for the user
func GetHomeDownloadsDir() (string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get user home directory: %w", err)
	}
	return filepath.Join(homeDir, "Downloads"), nil
}

// OpenFileInManager opens the file in the system file manager and
// highlights it where the platform supports selection.
func OpenFileInManager(filePath string) error {
	if _, err := os.Stat(filePath); err != nil {
		return fmt.Errorf("file does not exist: %w", err)
	}
	absPath, err := filepath.Abs(filePath)
	if err != nil {
		return fmt.Errorf("failed to get absolute path: %w", err)
	}

	switch runtime.GOOS {
	case OSDarwin:
		return exec.Command(OpenCommand, MacOSSelectFlag, absPath).Run()
	case OSWindows:
		return exec.Command(ExplorerCommand, WindowsSelectParam, absPath).Run()
	case OSLinux:
		// File selection is not standardized on Linux; open the parent
		// directory instead.
		return exec.Command(XDGOpenCommand, filepath.Dir(absPath)).Run()
	default:
		return fmt.Errorf("unsupported operating system: %s", runtime.GOOS)
	}
}
