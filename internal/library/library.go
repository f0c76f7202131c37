// Package library manages the category folders under the output root:
// listing them for the classifier, creating them on demand, and moving
// sorted images in.
package library

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	log "github.com/sirupsen/logrus"
)

// ErrBadFolderName is returned when a model-supplied folder name is empty
// after sanitizing.
var ErrBadFolderName = errors.New("invalid folder name")

// Library is the set of category folders under one output root.
type Library struct {
	root string
}

// Open ensures the output root exists and returns a Library over it.
func Open(root string) (*Library, error) {
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output root %s: %w", root, err)
	}
	return &Library{root: root}, nil
}

// Root returns the output root path.
func (l *Library) Root() string { return l.root }

// Folders lists the existing category folder names, sorted.
func (l *Library) Folders() ([]string, error) {
	entries, err := os.ReadDir(l.root)
	if err != nil {
		return nil, fmt.Errorf("failed to list output root %s: %w", l.root, err)
	}
	var folders []string
	for _, entry := range entries {
		if entry.IsDir() {
			folders = append(folders, entry.Name())
		}
	}
	sort.Strings(folders)
	return folders, nil
}

// Count returns the number of files directly inside a category folder.
func (l *Library) Count(folder string) (int, error) {
	entries, err := os.ReadDir(filepath.Join(l.root, folder))
	if err != nil {
		return 0, err
	}
	n := 0
	for _, entry := range entries {
		if !entry.IsDir() {
			n++
		}
	}
	return n, nil
}

// SanitizeFolderName reduces a model-supplied folder name to a safe single
// path element. Path separators and leading dots are stripped so a reply can
// never escape the output root.
func SanitizeFolderName(name string) (string, error) {
	name = strings.TrimSpace(name)
	name = strings.ReplaceAll(name, "/", " ")
	name = strings.ReplaceAll(name, "\\", " ")
	name = strings.TrimSpace(name)
	name = strings.TrimLeft(name, ".")
	if name == "" {
		return "", ErrBadFolderName
	}
	return name, nil
}

// EnsureFolder creates the category folder if it does not exist yet and
// returns its sanitized name. Creating an existing folder is a no-op.
func (l *Library) EnsureFolder(name string) (string, error) {
	clean, err := SanitizeFolderName(name)
	if err != nil {
		return "", fmt.Errorf("%w: %q", err, name)
	}
	path := filepath.Join(l.root, clean)
	if _, err := os.Stat(path); err == nil {
		return clean, nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return "", fmt.Errorf("failed to create folder %s: %w", path, err)
	}
	log.Infof("Created new folder: %s", path)
	return clean, nil
}

// MoveInto moves the file at srcPath into the named category folder,
// creating the folder if needed, and returns the destination path.
//
// If a file with the same name already exists there, a numeric suffix is
// appended so the moved file exists exactly once afterward.
func (l *Library) MoveInto(folder, srcPath string) (string, error) {
	clean, err := l.EnsureFolder(folder)
	if err != nil {
		return "", err
	}

	if _, err := os.Stat(srcPath); err != nil {
		return "", fmt.Errorf("source file %s is not readable: %w", srcPath, err)
	}

	dst, err := availableName(filepath.Join(l.root, clean), filepath.Base(srcPath))
	if err != nil {
		return "", err
	}

	if err := moveFile(srcPath, dst); err != nil {
		return "", fmt.Errorf("failed to move %s to %s: %w", srcPath, dst, err)
	}
	log.Infof("Moved %s to %s", filepath.Base(srcPath), clean)
	return dst, nil
}

// availableName picks a destination path in dir that does not exist yet,
// appending -2, -3, ... before the extension on collision.
func availableName(dir, name string) (string, error) {
	ext := filepath.Ext(name)
	stem := strings.TrimSuffix(name, ext)
	candidate := filepath.Join(dir, name)
	for i := 2; ; i++ {
		if _, err := os.Stat(candidate); os.IsNotExist(err) {
			return candidate, nil
		} else if err != nil && !os.IsNotExist(err) {
			return "", fmt.Errorf("failed to probe destination %s: %w", candidate, err)
		}
		if i > 1000 {
			return "", fmt.Errorf("no available destination name for %s in %s", name, dir)
		}
		candidate = filepath.Join(dir, fmt.Sprintf("%s-%d%s", stem, i, ext))
	}
}

// moveFile renames src to dst, falling back to copy+remove when the rename
// crosses devices.
func moveFile(src, dst string) error {
	if err := os.Rename(src, dst); err == nil {
		return nil
	}
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		os.Remove(dst)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(dst)
		return err
	}
	return os.Remove(src)
}
