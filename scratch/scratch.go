// Package scratch owns the temporary on-disk state of one extraction:
// a scoped scratch directory and zip unpacking into it.
package scratch

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

var logger zerolog.Logger = log.With().Str("component", "scratch").Logger()

// Dir is a scratch directory scoped to one extraction. Close removes
// the directory and everything in it; callers defer it on all paths.
type Dir struct {
	path   string
	closed bool
}

func NewDir() (*Dir, error) {
	path, err := os.MkdirTemp("", "hsextract-")
	if err != nil {
		return nil, fmt.Errorf("creating scratch directory: %w", err)
	}
	return &Dir{path: path}, nil
}

func (d *Dir) Path() string {
	return d.path
}

// Join returns a path inside the scratch directory.
func (d *Dir) Join(name string) string {
	return filepath.Join(d.path, name)
}

// List returns the file names currently in the scratch directory.
func (d *Dir) List() ([]string, error) {
	entries, err := os.ReadDir(d.path)
	if err != nil {
		return nil, err
	}
	var names []string
	for _, e := range entries {
		if !e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}

func (d *Dir) Close() error {
	if d.closed {
		return nil
	}
	d.closed = true
	if err := os.RemoveAll(d.path); err != nil {
		logger.Warn().Err(err).Str("path", d.path).Msg("scratch cleanup failed")
		return err
	}
	return nil
}

// Unzip extracts all regular entries of the archive into the scratch
// directory. Entry path components are discarded and entries whose
// extension is not in the allow list are skipped. Returns the names of
// the extracted files.
func (d *Dir) Unzip(zipPath string, allowed map[string]bool) ([]string, error) {
	reader, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, fmt.Errorf("opening zip %s: %w", zipPath, err)
	}
	defer reader.Close()

	var names []string
	for _, entry := range reader.File {
		if entry.FileInfo().IsDir() {
			continue
		}
		name := filepath.Base(entry.Name)
		if strings.HasPrefix(name, ".") {
			continue
		}
		if allowed != nil && !allowed[Extension(name)] {
			logger.Debug().Str("entry", entry.Name).Msg("skipping disallowed zip entry")
			continue
		}

		src, err := entry.Open()
		if err != nil {
			return nil, fmt.Errorf("reading zip entry %s: %w", entry.Name, err)
		}
		dst, err := os.Create(d.Join(name))
		if err != nil {
			src.Close()
			return nil, err
		}
		_, err = io.Copy(dst, src)
		src.Close()
		dst.Close()
		if err != nil {
			return nil, fmt.Errorf("extracting zip entry %s: %w", entry.Name, err)
		}
		names = append(names, name)
	}
	return names, nil
}

// CopyIn copies an outside file into the scratch directory, keeping
// its base name.
func (d *Dir) CopyIn(path string) (string, error) {
	src, err := os.Open(path)
	if err != nil {
		return "", err
	}
	defer src.Close()

	name := filepath.Base(path)
	dst, err := os.Create(d.Join(name))
	if err != nil {
		return "", err
	}
	defer dst.Close()

	if _, err := io.Copy(dst, src); err != nil {
		return "", err
	}
	return d.Join(name), nil
}

// Extension returns the lower-cased extension of name, with the
// compound ".shp.xml" sidecar suffix handled as one unit.
func Extension(name string) string {
	lower := strings.ToLower(name)
	if strings.HasSuffix(lower, ".shp.xml") {
		return ".shp.xml"
	}
	return filepath.Ext(lower)
}
