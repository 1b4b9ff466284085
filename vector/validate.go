// Package vector validates shapefile file sets and extracts their
// metadata through the OGR vector driver.
package vector

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hydroshare/hsextract/config"
	"github.com/hydroshare/hsextract/meta"
	"github.com/hydroshare/hsextract/scratch"
)

var logger zerolog.Logger = log.With().Str("component", "vector").Logger()

const sidecarSuffix = ".shp.xml"

// ValidateAndCollect assembles and validates the shapefile set for an
// uploaded .shp or .zip. Sibling files are collected into the scratch
// directory so the set shares one lifecycle. The returned paths point
// into the scratch directory; the .shp comes first.
func ValidateAndCollect(uploaded string, cfg *config.Config, dir *scratch.Dir) ([]string, error) {
	var names []string
	var err error

	switch scratch.Extension(uploaded) {
	case ".shp":
		names, err = collectSiblings(uploaded, cfg.VectorAllowList(), dir)
	case ".zip":
		names, err = dir.Unzip(uploaded, nil)
	default:
		return nil, meta.Structural(meta.RuleUnknownExtension,
			"file extension %s is not recognized as a shapefile upload", scratch.Extension(uploaded))
	}
	if err != nil {
		return nil, err
	}

	if verr := CheckFileSet(names, cfg.VectorAllowList()); verr != nil {
		return nil, verr
	}

	// Final liveness check: the assembled set must actually open as a
	// vector dataset. Reported distinctly from the structural checks.
	var paths []string
	for _, name := range sortShpFirst(names) {
		paths = append(paths, dir.Join(name))
	}
	if oerr := openCheck(paths[0]); oerr != nil {
		return nil, meta.Structural(meta.RuleDriverLiveness,
			"the shapefile did not open with the vector driver: %v", oerr)
	}

	logger.Debug().Str("shp", paths[0]).Int("files", len(paths)).Msg("validated shapefile set")
	return paths, nil
}

// collectSiblings copies every file sharing the .shp's base name
// (case-insensitive) and an allow-listed extension into the scratch
// directory. A same-basename .shp.xml sidecar is matched by stripping
// its 8 trailing characters since the suffix is compound.
func collectSiblings(shpPath string, allowed map[string]bool, dir *scratch.Dir) ([]string, error) {
	folder := filepath.Dir(shpPath)
	base := strings.ToLower(strings.TrimSuffix(filepath.Base(shpPath), filepath.Ext(shpPath)))

	entries, err := os.ReadDir(folder)
	if err != nil {
		return nil, err
	}

	var names []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}
		name := entry.Name()
		lower := strings.ToLower(name)

		var entryBase string
		if strings.HasSuffix(lower, sidecarSuffix) {
			entryBase = lower[:len(lower)-len(sidecarSuffix)]
		} else {
			entryBase = strings.TrimSuffix(lower, filepath.Ext(lower))
		}
		if entryBase != base {
			continue
		}
		if !allowed[scratch.Extension(name)] {
			continue
		}
		if _, err := dir.CopyIn(filepath.Join(folder, name)); err != nil {
			return nil, err
		}
		names = append(names, name)
	}
	return names, nil
}

// CheckFileSet enforces the structural contract of a shapefile set:
// at least three files, exactly one each of .shp/.shx/.dbf, no two
// files with the same extension, one common base name and only
// allow-listed extensions. The first violation wins.
func CheckFileSet(names []string, allowed map[string]bool) error {
	if len(names) < 3 {
		return meta.Structural(meta.RuleTooFewFiles,
			"a shapefile requires at least 3 files (.shp, .shx, .dbf), got %d", len(names))
	}

	seen := map[string]string{}
	var base string
	for _, name := range names {
		ext := scratch.Extension(name)
		if !allowed[ext] {
			return meta.Structural(meta.RuleUnknownExtension,
				"file extension %s is not a recognized shapefile member", ext)
		}
		if prev, dup := seen[ext]; dup {
			return meta.Structural(meta.RuleDuplicateExtension,
				"files %s and %s share the extension %s", prev, name, ext)
		}
		seen[ext] = name

		lower := strings.ToLower(name)
		var nameBase string
		if ext == sidecarSuffix {
			nameBase = lower[:len(lower)-len(sidecarSuffix)]
		} else {
			nameBase = strings.TrimSuffix(lower, ext)
		}
		if base == "" {
			base = nameBase
		} else if nameBase != base {
			return meta.Structural(meta.RuleBasenameMismatch,
				"file %s does not share the base name %q of the set", name, base)
		}
	}

	for _, mandatory := range []string{".shp", ".shx", ".dbf"} {
		if _, ok := seen[mandatory]; !ok {
			return meta.Structural(meta.RuleMissingMandatory,
				"the shapefile set is missing the mandatory %s file", mandatory)
		}
	}
	return nil
}

func sortShpFirst(names []string) []string {
	out := make([]string, 0, len(names))
	for _, name := range names {
		if scratch.Extension(name) == ".shp" {
			out = append(out, name)
		}
	}
	for _, name := range names {
		if scratch.Extension(name) != ".shp" {
			out = append(out, name)
		}
	}
	return out
}
