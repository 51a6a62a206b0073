// Package tempfile hands out uniquely named paths for request-scoped
// artifacts and removes them exactly once.
package tempfile

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"plant-analyzer/internal/logger"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Dir is a staging directory for transient files.
type Dir struct {
	path string
}

func NewDir(path string) *Dir {
	return &Dir{path: path}
}

func (d *Dir) Path() string {
	return d.path
}

// Ensure creates the directory if it does not exist yet.
func (d *Dir) Ensure() error {
	if err := os.MkdirAll(d.path, 0755); err != nil {
		return fmt.Errorf("failed to create directory %s: %w", d.path, err)
	}
	return nil
}

// Reserve returns a handle for a fresh path inside the directory. Nothing
// is created on disk; the caller writes to File.Path.
func (d *Dir) Reserve(prefix, ext string) *File {
	name := fmt.Sprintf("%s%d-%s%s", prefix, time.Now().UnixMilli(), uuid.NewString(), ext)
	return &File{Path: filepath.Join(d.path, name)}
}

// File is a transient file handle. Release is safe to call any number of
// times, from defer and from the happy path alike.
type File struct {
	Path string

	once sync.Once
	err  error
}

// Release deletes the file. A file that is already gone counts as
// released. Failures are logged and returned but never retried.
func (f *File) Release() error {
	f.once.Do(func() {
		err := os.Remove(f.Path)
		switch {
		case err == nil:
			logger.WithFields(logrus.Fields{"path": f.Path}).Debug("Transient file deleted")
		case errors.Is(err, fs.ErrNotExist):
			logger.WithFields(logrus.Fields{"path": f.Path}).Debug("Transient file already absent")
		default:
			f.err = fmt.Errorf("failed to delete %s: %w", f.Path, err)
			logger.WithFields(logrus.Fields{
				"path":  f.Path,
				"error": err.Error(),
			}).Error("Failed to delete transient file")
		}
	})
	return f.err
}
