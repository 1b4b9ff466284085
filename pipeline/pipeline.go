// Package pipeline wires staging, validation, introspection and
// reconciliation into the per-upload extraction flow. One call runs
// synchronously to completion; concurrent extractions against the same
// aggregation must be serialized by the caller.
package pipeline

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hydroshare/hsextract/cache"
	"github.com/hydroshare/hsextract/config"
	"github.com/hydroshare/hsextract/meta"
	"github.com/hydroshare/hsextract/metrics"
	"github.com/hydroshare/hsextract/netcdf"
	"github.com/hydroshare/hsextract/raster"
	"github.com/hydroshare/hsextract/reconcile"
	"github.com/hydroshare/hsextract/scratch"
	"github.com/hydroshare/hsextract/store"
	"github.com/hydroshare/hsextract/vector"
)

var logger zerolog.Logger = log.With().Str("component", "pipeline").Logger()

// Format selects the introspection path for an upload.
type Format string

const (
	FormatRaster Format = "raster"
	FormatVector Format = "vector"
	FormatNetCDF Format = "netcdf"
)

// DetectFormat guesses the format from the file extension. Zip
// archives are ambiguous and require an explicit format.
func DetectFormat(path string) (Format, error) {
	switch scratch.Extension(path) {
	case ".tif", ".vrt":
		return FormatRaster, nil
	case ".shp":
		return FormatVector, nil
	case ".nc":
		return FormatNetCDF, nil
	default:
		return "", fmt.Errorf("cannot infer format from %s; specify one explicitly", path)
	}
}

// Pipeline holds the collaborators of one deployment. The zero Stager
// and Cache are replaced with a local passthrough and no caching.
type Pipeline struct {
	Cfg    *config.Config
	Stager scratch.Stager
	Cache  cache.Cache
}

func New(cfg *config.Config, stager scratch.Stager, c cache.Cache) *Pipeline {
	if stager == nil {
		stager = scratch.LocalStager{}
	}
	return &Pipeline{Cfg: cfg, Stager: stager, Cache: c}
}

// Extract stages the upload, validates its file set and runs the
// format's introspector. Scratch state is released on every path.
func (p *Pipeline) Extract(format Format, remoteRef string) (*meta.ExtractedBundle, error) {
	start := time.Now()
	bundle, err := p.extract(format, remoteRef)
	metrics.ExtractionDuration.WithLabelValues(string(format)).Observe(time.Since(start).Seconds())
	metrics.ExtractionsTotal.WithLabelValues(string(format), outcome(err)).Inc()
	return bundle, err
}

func (p *Pipeline) extract(format Format, remoteRef string) (*meta.ExtractedBundle, error) {
	localPath, err := p.Stager.StageLocalCopy(remoteRef)
	if err != nil {
		return nil, err
	}
	defer func() {
		if rerr := p.Stager.Release(localPath); rerr != nil {
			logger.Warn().Err(rerr).Str("path", localPath).Msg("release failed")
		}
	}()

	var key string
	if p.Cache != nil {
		if key, err = cache.Key(localPath); err == nil {
			if bundle, ok := p.Cache.Get(key); ok {
				metrics.CacheEvents.WithLabelValues("hit").Inc()
				return bundle, nil
			}
			metrics.CacheEvents.WithLabelValues("miss").Inc()
		}
	}

	dir, err := scratch.NewDir()
	if err != nil {
		return nil, err
	}
	defer dir.Close()

	var bundle *meta.ExtractedBundle
	switch format {
	case FormatRaster:
		files, verr := raster.ValidateAndNormalize(localPath, p.Cfg, dir)
		if verr != nil {
			return nil, verr
		}
		extraction, ierr := raster.Inspect(files[0], p.Cfg.NoDataTolerance)
		if ierr != nil {
			return nil, ierr
		}
		bundle = extraction.Bundle()

	case FormatVector:
		files, verr := vector.ValidateAndCollect(localPath, p.Cfg, dir)
		if verr != nil {
			return nil, verr
		}
		extraction, ierr := vector.Inspect(files[0])
		if ierr != nil {
			return nil, ierr
		}
		bundle = extraction.Bundle()

	case FormatNetCDF:
		extraction, ierr := netcdf.Inspect(localPath)
		if ierr != nil {
			return nil, ierr
		}
		bundle = extraction.Bundle()

	default:
		return nil, fmt.Errorf("unknown format %q", format)
	}

	if p.Cache != nil && key != "" {
		p.Cache.Put(key, bundle)
	}
	return bundle, nil
}

// Sync runs one full extract-and-reconcile cycle against the
// aggregation's store and returns the applied plan with its resulting
// sync state.
func (p *Pipeline) Sync(format Format, remoteRef string, st store.Store) (*reconcile.Plan, error) {
	bundle, err := p.Extract(format, remoteRef)
	if err != nil {
		return nil, err
	}

	snap, err := reconcile.TakeSnapshot(st)
	if err != nil {
		return nil, err
	}
	plan, err := reconcile.Reconcile(snap, bundle)
	if err != nil {
		return nil, err
	}

	countOps(plan)
	if err := reconcile.Apply(plan, st); err != nil {
		return nil, err
	}
	return plan, nil
}

func countOps(plan *reconcile.Plan) {
	for _, op := range plan.Creates {
		metrics.ElementOps.WithLabelValues(string(op.Kind), "create").Inc()
	}
	for _, op := range plan.Updates {
		metrics.ElementOps.WithLabelValues(string(op.Kind), "update").Inc()
	}
	for _, op := range plan.Deletes {
		metrics.ElementOps.WithLabelValues(string(op.Kind), "delete").Inc()
	}
}

func outcome(err error) string {
	var structural *meta.StructuralValidationError
	var unreadable *meta.UnreadableDatasetError
	switch {
	case err == nil:
		return "ok"
	case errors.As(err, &structural):
		return "validation_error"
	case errors.As(err, &unreadable), errors.Is(err, netcdf.ErrNotNetCDF):
		return "unreadable"
	default:
		return "error"
	}
}

// FormatFromFlag parses a user-supplied format name.
func FormatFromFlag(name string) (Format, error) {
	switch strings.ToLower(name) {
	case "raster":
		return FormatRaster, nil
	case "vector", "shapefile":
		return FormatVector, nil
	case "netcdf", "nc":
		return FormatNetCDF, nil
	default:
		return "", fmt.Errorf("unknown format %q", name)
	}
}
