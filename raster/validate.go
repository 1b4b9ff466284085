// Package raster validates raster uploads and extracts their metadata
// through the GDAL driver.
package raster

// #include <stdio.h>
// #include <stdlib.h>
// #include "gdal.h"
// #include "gdal_utils.h"
// #include "cpl_string.h"
// #cgo pkg-config: gdal
//int translateToVRT(char *srcPath, char *dstPath)
//{
//	GDALDatasetH hSrcDS, hDstDS;
//	GDALTranslateOptions *psOptions;
//	int usageError = 0;
//	char *argv[] = {"-of", "VRT", NULL};
//
//	hSrcDS = GDALOpen(srcPath, GA_ReadOnly);
//	if(hSrcDS == NULL) {
//		return 1;
//	}
//
//	psOptions = GDALTranslateOptionsNew(argv, NULL);
//	hDstDS = GDALTranslate(dstPath, hSrcDS, psOptions, &usageError);
//	GDALTranslateOptionsFree(psOptions);
//	GDALClose(hSrcDS);
//
//	if(hDstDS == NULL) {
//		return 2;
//	}
//	GDALClose(hDstDS);
//	return 0;
//}
import "C"

import (
	"fmt"
	"os"
	"strings"
	"unsafe"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/hydroshare/hsextract/config"
	"github.com/hydroshare/hsextract/meta"
	"github.com/hydroshare/hsextract/scratch"
)

var logger zerolog.Logger = log.With().Str("component", "raster").Logger()

func init() {
	C.GDALAllRegister()
}

// VrtGenerationError means the GDAL translate invocation did not
// produce a .vrt sidecar for an uploaded .tif.
type VrtGenerationError struct {
	TifPath string
	Reason  string
}

func (e *VrtGenerationError) Error() string {
	return fmt.Sprintf("could not generate .vrt for %s: %s", e.TifPath, e.Reason)
}

// ValidateAndNormalize turns an uploaded .tif or .zip into the
// canonical (one .vrt, one or more .tif) file set inside the scratch
// directory and enforces the reference invariant. The .vrt path comes
// first in the returned set.
func ValidateAndNormalize(uploaded string, cfg *config.Config, dir *scratch.Dir) ([]string, error) {
	switch scratch.Extension(uploaded) {
	case ".tif":
		tifPath, err := dir.CopyIn(uploaded)
		if err != nil {
			return nil, err
		}
		if err := generateVRT(tifPath); err != nil {
			return nil, err
		}
	case ".zip":
		if _, err := dir.Unzip(uploaded, cfg.RasterAllowList()); err != nil {
			return nil, err
		}
	default:
		return nil, meta.Structural(meta.RuleUnknownExtension,
			"file extension %s is not recognized as a raster upload", scratch.Extension(uploaded))
	}

	names, err := dir.List()
	if err != nil {
		return nil, err
	}

	var vrts, tifs []string
	for _, name := range names {
		switch scratch.Extension(name) {
		case ".vrt":
			vrts = append(vrts, name)
		case ".tif":
			tifs = append(tifs, name)
		}
	}

	if len(vrts) != 1 {
		return nil, meta.Structural(meta.RuleVrtCount,
			"the raster file set must contain exactly one .vrt file, got %d", len(vrts))
	}
	if len(tifs) == 0 {
		return nil, meta.Structural(meta.RuleTifCount,
			"the raster file set must contain at least one .tif file")
	}

	vrtPath := dir.Join(vrts[0])
	vrtDS, err := ParseVRT(vrtPath)
	if err != nil {
		return nil, &meta.UnreadableDatasetError{Path: vrtPath, Reason: err.Error()}
	}
	if cerr := CheckReferences(vrtDS, tifs); cerr != nil {
		return nil, cerr
	}

	paths := []string{vrtPath}
	for _, tif := range tifs {
		paths = append(paths, dir.Join(tif))
	}
	logger.Debug().Str("vrt", vrtPath).Int("tifs", len(tifs)).Msg("validated raster set")
	return paths, nil
}

// generateVRT synthesizes the .vrt sidecar next to the .tif and
// rewrites its source references to relative form.
func generateVRT(tifPath string) error {
	vrtPath := strings.TrimSuffix(tifPath, ".tif") + ".vrt"

	cSrc := C.CString(tifPath)
	defer C.free(unsafe.Pointer(cSrc))
	cDst := C.CString(vrtPath)
	defer C.free(unsafe.Pointer(cDst))

	if rc := C.translateToVRT(cSrc, cDst); rc != 0 {
		return &VrtGenerationError{TifPath: tifPath, Reason: C.GoString(C.CPLGetLastErrorMsg())}
	}
	if _, err := os.Stat(vrtPath); err != nil {
		return &VrtGenerationError{TifPath: tifPath, Reason: "translate produced no file"}
	}
	return RelativizeSourceNames(vrtPath)
}
