// Package fs stores downloaded structure images on disk.
package fs

import (
	"context"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/fwojciec/xconnector"
)

// Ensure ImageStore implements xconnector.ImageStore at compile time.
var _ xconnector.ImageStore = (*ImageStore)(nil)

// DefaultImageExt is used when the image URL carries no extension.
const DefaultImageExt = ".png"

// ImageStore implements xconnector.ImageStore. Images are saved to a
// temporary sibling directory and moved into the output directory on
// Commit. The output directory may be shared with other files: Commit only
// adds or replaces the images it saved.
type ImageStore struct {
	baseDir string
	name    string
}

func NewImageStore(baseDir, name string) *ImageStore {
	return &ImageStore{
		baseDir: baseDir,
		name:    name,
	}
}

func (s *ImageStore) tempDir() string {
	return filepath.Join(s.baseDir, s.name+".tmp")
}

func (s *ImageStore) finalDir() string {
	return filepath.Join(s.baseDir, s.name)
}

// ImageFileName returns the file name of img: its accession plus the
// extension of its URL.
// Example: https://lmdb.ca/structures/LMDB00001/image.png → LMDB00001.png
func ImageFileName(img *xconnector.Image) (string, error) {
	acc := strings.TrimSpace(img.Accession)
	if acc == "" || acc == "." || acc == ".." || strings.ContainsAny(acc, `/\`) {
		return "", xconnector.Errorf(xconnector.EINVALID, "invalid accession %q: path traversal or empty name", img.Accession)
	}

	ext := DefaultImageExt
	if img.URL != "" {
		if e := path.Ext(strings.SplitN(img.URL, "?", 2)[0]); e != "" && !strings.Contains(e, "/") {
			ext = strings.ToLower(e)
		}
	}
	return acc + ext, nil
}

func (s *ImageStore) Save(ctx context.Context, img *xconnector.Image) error {
	name, err := ImageFileName(img)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.tempDir(), 0755); err != nil {
		return err
	}

	return os.WriteFile(filepath.Join(s.tempDir(), name), img.Data, 0644)
}

func (s *ImageStore) Commit() error {
	entries, err := os.ReadDir(s.tempDir())
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}

	if err := os.MkdirAll(s.finalDir(), 0755); err != nil {
		return err
	}

	for _, e := range entries {
		if err := os.Rename(filepath.Join(s.tempDir(), e.Name()), filepath.Join(s.finalDir(), e.Name())); err != nil {
			return err
		}
	}

	return os.RemoveAll(s.tempDir())
}

func (s *ImageStore) Abort() error {
	return os.RemoveAll(s.tempDir())
}
