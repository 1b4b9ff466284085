package raster

// #include <stdio.h>
// #include <stdlib.h>
// #include "gdal.h"
// #include "ogr_srs_api.h"
// #include "cpl_string.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"math"
	"unsafe"

	"github.com/hydroshare/hsextract/meta"
	"github.com/hydroshare/hsextract/srs"
)

// Extraction is the metadata read from one raster dataset.
type Extraction struct {
	OriginalCoverage *meta.OriginalCoverage
	WGS84Coverage    *meta.WGS84Coverage
	CellInfo         meta.CellInformation
	Bands            []meta.BandInformation
}

func (e *Extraction) Bundle() *meta.ExtractedBundle {
	bundle := meta.NewBundle()
	if e.OriginalCoverage != nil {
		bundle.Set(meta.KindOriginalCoverage, e.OriginalCoverage.Attrs())
	}
	if e.WGS84Coverage != nil {
		bundle.Set(meta.KindCoverage, e.WGS84Coverage.Attrs())
	}
	bundle.Set(meta.KindCellInfo, e.CellInfo.Attrs())
	for _, band := range e.Bands {
		bundle.Add(meta.KindBand, band.Attrs())
	}
	return bundle
}

// Inspect opens the raster read-only and reads cell geometry, per-band
// statistics and the native plus WGS84 extents. noDataTolerance is the
// absolute tolerance for the false-minimum nodata check.
func Inspect(rasterPath string, noDataTolerance float64) (*Extraction, error) {
	cPath := C.CString(rasterPath)
	defer C.free(unsafe.Pointer(cPath))

	ds := C.GDALOpen(cPath, C.GA_ReadOnly)
	if ds == nil {
		return nil, &meta.UnreadableDatasetError{Path: rasterPath, Reason: C.GoString(C.CPLGetLastErrorMsg())}
	}
	defer C.GDALClose(ds)

	xSize := int(C.GDALGetRasterXSize(ds))
	ySize := int(C.GDALGetRasterYSize(ds))

	geot := make([]float64, 6)
	hasGeot := C.GDALGetGeoTransform(ds, (*C.double)(&geot[0])) == C.CE_None

	out := &Extraction{}
	out.CellInfo = meta.CellInformation{
		Rows:    ySize,
		Columns: xSize,
	}
	if hasGeot {
		out.CellInfo.CellSizeXValue = geot[1]
		out.CellInfo.CellSizeYValue = math.Abs(geot[5])
	}

	if band := C.GDALGetRasterBand(ds, 1); band != nil {
		// Assumes all bands share band 1's pixel type; known limitation.
		out.CellInfo.CellDataType = C.GoString(C.GDALGetDataTypeName(C.GDALGetRasterDataType(band)))
	}

	out.Bands = readBands(ds, noDataTolerance)

	// An empty projection is explicitly representable: SRS fields stay
	// unknown and no bounding box is computed, never zero-filled.
	projWkt := C.GoString(C.GDALGetProjectionRef(ds))
	if projWkt != "" && hasGeot {
		extent := cornersExtent(geot, xSize, ySize)

		reference := meta.UnknownSpatialReference()
		if info, err := srs.Parse(projWkt); err == nil {
			reference = info.Reference()
		}
		extent.Units = reference.Unit

		out.OriginalCoverage = &meta.OriginalCoverage{Extent: extent, Reference: reference}
		if err := extent.Validate(); err != nil {
			return nil, err
		}

		if wgs84, err := srs.ReprojectExtent(extent, projWkt); err == nil {
			out.WGS84Coverage = &meta.WGS84Coverage{Extent: wgs84}
		} else {
			logger.Warn().Str("raster", rasterPath).Err(err).Msg("skipping WGS84 coverage")
		}
	}

	return out, nil
}

// cornersExtent evaluates all 4 corner pixels through the affine
// geotransform and takes the min/max envelope. Geotransforms may carry
// rotation or shear, so the two diagonal corners are not sufficient
// here.
func cornersExtent(geot []float64, xSize, ySize int) meta.SpatialExtent {
	corners := [4][2]float64{
		{0, 0},
		{float64(xSize), 0},
		{0, float64(ySize)},
		{float64(xSize), float64(ySize)},
	}

	var xs, ys [4]float64
	for i, c := range corners {
		var gx, gy C.double
		C.GDALApplyGeoTransform((*C.double)(unsafe.Pointer(&geot[0])), C.double(c[0]), C.double(c[1]), &gx, &gy)
		xs[i] = float64(gx)
		ys[i] = float64(gy)
	}

	extent := meta.SpatialExtent{North: ys[0], South: ys[0], East: xs[0], West: xs[0]}
	for i := 1; i < 4; i++ {
		extent.North = math.Max(extent.North, ys[i])
		extent.South = math.Min(extent.South, ys[i])
		extent.East = math.Max(extent.East, xs[i])
		extent.West = math.Min(extent.West, xs[i])
	}
	return extent
}

// readBands computes full-scan statistics per band. When the computed
// minimum equals the declared nodata sentinel within the absolute
// tolerance, the minimum is a false one: the sentinel leaked into the
// scan as data, so it is masked as nodata and the statistics are
// recomputed once to surface the second-lowest value. Sentinels are
// often stored as rounded approximations of the declared value, hence
// the tolerance instead of bit equality.
func readBands(ds C.GDALDatasetH, noDataTolerance float64) []meta.BandInformation {
	count := int(C.GDALGetRasterCount(ds))
	bands := make([]meta.BandInformation, 0, count)

	for i := 1; i <= count; i++ {
		hBand := C.GDALGetRasterBand(ds, C.int(i))

		info := meta.BandInformation{
			Name:         bandName(i),
			VariableName: "",
			VariableUnit: "Unknown",
		}

		var hasNoData C.int
		noData := float64(C.GDALGetRasterNoDataValue(hBand, &hasNoData))
		if hasNoData != 0 {
			nd := noData
			info.NoDataValue = &nd
		}

		stats := [4]C.double{} // min, max, mean, stddev
		if C.GDALGetRasterStatistics(hBand, C.int(0), C.int(1), &stats[0], &stats[1], &stats[2], &stats[3]) != C.CE_None {
			// No computable statistics, e.g. every pixel is nodata.
			// The limits stay absent rather than zero-filled.
			logger.Warn().Int("band", i).Msg("band has no computable statistics")
			bands = append(bands, info)
			continue
		}
		minVal := float64(stats[0])
		maxVal := float64(stats[1])

		if hasNoData != 0 && math.Abs(minVal-noData) <= noDataTolerance {
			if C.GDALSetRasterNoDataValue(hBand, C.double(minVal)) == C.CE_None &&
				C.GDALComputeRasterStatistics(hBand, C.int(0), &stats[0], &stats[1], &stats[2], &stats[3], nil, nil) == C.CE_None {
				minVal = float64(stats[0])
				maxVal = float64(stats[1])
			} else {
				logger.Warn().Int("band", i).Msg("could not rescan statistics past the nodata sentinel")
			}
		}

		info.MinimumValue = &minVal
		info.MaximumValue = &maxVal
		bands = append(bands, info)
	}
	return bands
}

func bandName(i int) string {
	return fmt.Sprintf("Band_%d", i)
}
