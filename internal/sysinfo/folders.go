package sysinfo

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

var (
	ErrNotDirectory = errors.New("path is not a directory")
	ErrOutsideRoots = errors.New("path is outside the allowed roots")
	ErrFolderExists = errors.New("folder already exists")
)

var defaultRoots = []string{"/media", "/mnt", "/volume", "/Volumes", "/backups"}

// Folder is one immediate child directory of a browsed path.
type Folder struct {
	Name       string `json:"name"`
	Path       string `json:"path"`
	Restricted bool   `json:"restricted,omitempty"`
}

// Listing is the browse result for a single directory level.
type Listing struct {
	Folders     []Folder `json:"folders"`
	CurrentPath string   `json:"current_path"`
	ParentPath  string   `json:"parent_path"`
}

// Browser serves the folder picker. Browsing is unrestricted; folder
// creation is confined to the configured roots so a stray request
// cannot scribble over system paths.
type Browser struct {
	roots []string
}

func NewBrowser(roots ...string) *Browser {
	if len(roots) == 0 {
		roots = defaultRoots
	}
	return &Browser{roots: roots}
}

// Browse returns the immediate child directories of base, sorted by
// name. Children that exist but cannot be read are kept in the listing
// and marked restricted rather than hidden.
func (b *Browser) Browse(base string) (Listing, error) {
	info, err := os.Stat(base)
	if err != nil {
		return Listing{}, err
	}
	if !info.IsDir() {
		return Listing{}, fmt.Errorf("%w: %s", ErrNotDirectory, base)
	}

	entries, err := os.ReadDir(base)
	if err != nil {
		return Listing{}, err
	}

	listing := Listing{
		Folders:     []Folder{},
		CurrentPath: base,
		ParentPath:  parentOf(base),
	}
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		child := filepath.Join(base, entry.Name())
		folder := Folder{Name: entry.Name(), Path: child}
		if _, err := os.ReadDir(child); err != nil {
			folder.Restricted = true
		}
		listing.Folders = append(listing.Folders, folder)
	}
	return listing, nil
}

// CreateFolder creates path, parents included, under one of the
// configured roots.
func (b *Browser) CreateFolder(path string) error {
	if !b.underRoot(path) {
		return fmt.Errorf("%w: %s", ErrOutsideRoots, path)
	}
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%w: %s", ErrFolderExists, path)
	}
	return os.MkdirAll(path, 0755)
}

func (b *Browser) underRoot(path string) bool {
	clean := filepath.Clean(path)
	for _, root := range b.roots {
		if clean == root || strings.HasPrefix(clean, root+string(os.PathSeparator)) {
			return true
		}
	}
	return false
}

func parentOf(path string) string {
	if path == "/" {
		return "/"
	}
	return filepath.Dir(path)
}
