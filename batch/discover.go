package batch

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

// ErrDirectoryNotFound is the fatal discovery failure: the input directory
// does not exist.
var ErrDirectoryNotFound = errors.New("batch: directory not found")

var imageExtensions = map[string]struct{}{
	".png":  {},
	".jpg":  {},
	".jpeg": {},
	".bmp":  {},
	".tiff": {},
	".webp": {},
}

// DiscoverImages lists the image files directly inside dir, filtered by
// extension (case-insensitive) and sorted by name so runs are deterministic.
func DiscoverImages(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrDirectoryNotFound, dir)
		}
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if _, ok := imageExtensions[ext]; ok {
			files = append(files, filepath.Join(dir, e.Name()))
		}
	}
	// os.ReadDir already sorts by file name.
	return files, nil
}
