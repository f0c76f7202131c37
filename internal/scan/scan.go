package scan

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// ErrUnsupportedType marks files whose extension is not on the image allow-list.
var ErrUnsupportedType = errors.New("unsupported file type")

// imageMIMETypes maps the allowed extensions to their content types.
// Anything absent from this map is never sent to the classifier.
var imageMIMETypes = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".gif":  "image/gif",
	".bmp":  "image/bmp",
	".tiff": "image/tiff",
	".webp": "image/webp",
}

// FileMeta holds metadata about an image waiting in the intake folder.
type FileMeta struct {
	Path     string
	Name     string
	MIMEType string
	Size     int64
	ModTime  time.Time
}

// MIMETypeFor returns the content type for an image filename, or
// ErrUnsupportedType if its extension is not on the allow-list.
func MIMETypeFor(name string) (string, error) {
	ext := strings.ToLower(filepath.Ext(name))
	mime, ok := imageMIMETypes[ext]
	if !ok {
		return "", ErrUnsupportedType
	}
	return mime, nil
}

// DiscoverImages lists the image files sitting directly in intakeDir.
//
// The intake folder is flat: subdirectories are not descended into, and
// files with extensions outside the allow-list are silently skipped.
// Results are sorted by name so runs are deterministic.
func DiscoverImages(ctx context.Context, intakeDir string) ([]FileMeta, error) {
	entries, err := os.ReadDir(intakeDir)
	if err != nil {
		return nil, err
	}

	var files []FileMeta
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if entry.IsDir() {
			continue
		}
		mime, err := MIMETypeFor(entry.Name())
		if err != nil {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			// Skip files we can't stat, but continue
			continue
		}
		files = append(files, FileMeta{
			Path:     filepath.Join(intakeDir, entry.Name()),
			Name:     entry.Name(),
			MIMEType: mime,
			Size:     info.Size(),
			ModTime:  info.ModTime(),
		})
	}

	sort.Slice(files, func(i, j int) bool { return files[i].Name < files[j].Name })
	return files, nil
}

// ReadImage reads the entire content of the image at the given path.
func ReadImage(path string) ([]byte, error) {
	return os.ReadFile(path)
}
