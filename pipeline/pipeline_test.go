package pipeline

import (
	"fmt"
	"testing"

	"github.com/hydroshare/hsextract/meta"
	"github.com/hydroshare/hsextract/netcdf"
)

func TestDetectFormat(t *testing.T) {
	cases := map[string]Format{
		"logan.tif":      FormatRaster,
		"logan.vrt":      FormatRaster,
		"watersheds.shp": FormatVector,
		"SWE_time.nc":    FormatNetCDF,
	}
	for path, want := range cases {
		got, err := DetectFormat(path)
		if err != nil || got != want {
			t.Errorf("DetectFormat(%q) = %v, %v", path, got, err)
		}
	}

	if _, err := DetectFormat("upload.zip"); err == nil {
		t.Error("zip uploads must require an explicit format")
	}
}

func TestFormatFromFlag(t *testing.T) {
	cases := map[string]Format{
		"raster":    FormatRaster,
		"Vector":    FormatVector,
		"shapefile": FormatVector,
		"netcdf":    FormatNetCDF,
		"NC":        FormatNetCDF,
	}
	for name, want := range cases {
		got, err := FormatFromFlag(name)
		if err != nil || got != want {
			t.Errorf("FormatFromFlag(%q) = %v, %v", name, got, err)
		}
	}
	if _, err := FormatFromFlag("hdf5"); err == nil {
		t.Error("unknown format name accepted")
	}
}

func TestOutcomeClassification(t *testing.T) {
	cases := []struct {
		err  error
		want string
	}{
		{nil, "ok"},
		{meta.Structural(meta.RuleTooFewFiles, "too few"), "validation_error"},
		{&meta.UnreadableDatasetError{Path: "x", Reason: "corrupt"}, "unreadable"},
		{fmt.Errorf("wrapped: %w", netcdf.ErrNotNetCDF), "unreadable"},
		{fmt.Errorf("disk on fire"), "error"},
	}
	for _, c := range cases {
		if got := outcome(c.err); got != c.want {
			t.Errorf("outcome(%v) = %q, want %q", c.err, got, c.want)
		}
	}
}
