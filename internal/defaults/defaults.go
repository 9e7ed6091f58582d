// Package defaults provides the embedded starter catalog.
// Its files are copied into the catalog directory on first run, or when a
// reset is requested, so a fresh install has something to search and emit.
//
// Override the catalog location with GITRULES_CATALOG_DIR.
package defaults

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
)

const root = "actions"

//go:embed actions/*.yaml
var defaultFiles embed.FS

// CatalogFS returns the starter catalog rooted at its source files.
func CatalogFS() fs.FS {
	sub, err := fs.Sub(defaultFiles, root)
	if err != nil {
		// fs.Sub only fails on an invalid path, and root is a constant.
		panic(err)
	}
	return sub
}

// EnsureCatalogDir creates dir if it doesn't exist and copies any starter
// source that is missing. Existing files are left alone.
func EnsureCatalogDir(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	return copyDefaults(dir, false)
}

// Reset replaces the catalog sources in dir with the starter files.
func Reset(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create catalog directory: %w", err)
	}
	return copyDefaults(dir, true)
}

// copyDefaults copies embedded files into dir.
// If overwrite is true, existing files are replaced.
func copyDefaults(dir string, overwrite bool) error {
	return fs.WalkDir(defaultFiles, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if path == root {
			return nil
		}

		// embed.FS always uses forward slashes.
		destPath := filepath.Join(dir, strings.TrimPrefix(path, root+"/"))

		if d.IsDir() {
			return os.MkdirAll(destPath, 0755)
		}

		if !overwrite {
			if _, err := os.Stat(destPath); err == nil {
				return nil
			}
		}

		data, err := defaultFiles.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read embedded %s: %w", path, err)
		}
		if err := os.WriteFile(destPath, data, 0644); err != nil {
			return fmt.Errorf("failed to write %s: %w", destPath, err)
		}
		return nil
	})
}

// GetDefault returns the content of a starter file by name.
// Example: GetDefault("rules.yaml")
func GetDefault(name string) ([]byte, error) {
	return defaultFiles.ReadFile(root + "/" + name)
}

// ListDefaults returns the names of all starter files.
func ListDefaults() ([]string, error) {
	var files []string
	err := fs.WalkDir(defaultFiles, root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			files = append(files, strings.TrimPrefix(path, root+"/"))
		}
		return nil
	})
	return files, err
}
