// Package srs wraps the OGR spatial reference API: parsing CRS text,
// exporting WKT/PROJ4 and reprojecting native extents to WGS84.
package srs

// #include <stdio.h>
// #include <stdlib.h>
// #include "gdal.h"
// #include "ogr_srs_api.h"
// #include "cpl_string.h"
// #cgo pkg-config: gdal
//OGRSpatialReferenceH srsFromUserInput(char *input)
//{
//	OGRSpatialReferenceH hSRS;
//
//	hSRS = OSRNewSpatialReference(NULL);
//	if(OSRSetFromUserInput(hSRS, input) != OGRERR_NONE) {
//		OSRDestroySpatialReference(hSRS);
//		return NULL;
//	}
//	return hSRS;
//}
//char *srsExportText(OGRSpatialReferenceH hSRS, int mode)
//{
//	char *pszText;
//	char *result;
//	OGRErr err;
//
//	if(mode == 0) {
//		err = OSRExportToWkt(hSRS, &pszText);
//	} else {
//		err = OSRExportToPrettyWkt(hSRS, &pszText, 0);
//		if(err == OGRERR_NONE) { CPLFree(pszText); }
//		err = OSRExportToProj4(hSRS, &pszText);
//	}
//	if(err != OGRERR_NONE) {
//		return NULL;
//	}
//	result = strdup(pszText);
//	CPLFree(pszText);
//	return result;
//}
import "C"

import (
	"unsafe"

	"github.com/hydroshare/hsextract/meta"
)

func init() {
	C.GDALAllRegister()
}

// Info is the parsed view of one spatial reference.
type Info struct {
	WKT            string
	Proj4          string
	ProjectionName string
	Datum          string
	UnitName       string
	IsProjected    bool
	IsGeographic   bool
}

// Parse accepts WKT, PROJ4 or "EPSG:n" text and reads the attributes
// the metadata model stores. Unparseable input yields ReprojectionError.
func Parse(input string) (*Info, error) {
	if input == "" || input == meta.UnknownLiteral {
		return nil, &meta.ReprojectionError{Reason: "empty spatial reference"}
	}
	cInput := C.CString(input)
	defer C.free(unsafe.Pointer(cInput))

	hSRS := C.srsFromUserInput(cInput)
	if hSRS == nil {
		return nil, &meta.ReprojectionError{Reason: "OSRSetFromUserInput() failed for " + input}
	}
	defer C.OSRDestroySpatialReference(hSRS)

	info := &Info{
		IsProjected:  C.OSRIsProjected(hSRS) != 0,
		IsGeographic: C.OSRIsGeographic(hSRS) != 0,
	}

	if cWkt := C.srsExportText(hSRS, 0); cWkt != nil {
		info.WKT = C.GoString(cWkt)
		C.free(unsafe.Pointer(cWkt))
	}
	if cProj4 := C.srsExportText(hSRS, 1); cProj4 != nil {
		info.Proj4 = C.GoString(cProj4)
		C.free(unsafe.Pointer(cProj4))
	}

	info.ProjectionName = attrValue(hSRS, "PROJCS")
	if info.ProjectionName == "" {
		info.ProjectionName = attrValue(hSRS, "GEOGCS")
	}
	info.Datum = attrValue(hSRS, "DATUM")
	info.UnitName = attrValue(hSRS, "UNIT")

	return info, nil
}

func attrValue(hSRS C.OGRSpatialReferenceH, node string) string {
	cNode := C.CString(node)
	defer C.free(unsafe.Pointer(cNode))
	cVal := C.OSRGetAttrValue(hSRS, cNode, 0)
	if cVal == nil {
		return ""
	}
	return C.GoString(cVal)
}

// Reference converts a parsed Info into the stored SpatialReference.
func (info *Info) Reference() meta.SpatialReference {
	ref := meta.UnknownSpatialReference()
	if info == nil {
		return ref
	}
	if info.ProjectionName != "" {
		ref.ProjectionName = meta.KnownSRS(info.ProjectionName)
	}
	if info.WKT != "" {
		ref.ProjectionString = meta.KnownSRS(info.WKT)
	}
	if info.Datum != "" {
		ref.Datum = meta.KnownSRS(info.Datum)
	}
	if info.UnitName != "" {
		ref.Unit = info.UnitName
	}
	return ref
}

// ReprojectExtent transforms the two diagonal corners (upper-left,
// lower-right) of a native extent to WGS84 and returns their
// axis-aligned envelope in decimal degrees.
//
// Only the two corners are evaluated, so the result under-approximates
// the true extent for skewed or rotated projections. Unifying this
// with the raster 4-corner logic would change persisted coverages.
func ReprojectExtent(extent meta.SpatialExtent, sourceSRS string) (meta.SpatialExtent, error) {
	var out meta.SpatialExtent

	if sourceSRS == "" || sourceSRS == meta.UnknownLiteral {
		return out, &meta.ReprojectionError{Reason: "no source spatial reference"}
	}

	cInput := C.CString(sourceSRS)
	defer C.free(unsafe.Pointer(cInput))
	hSrc := C.srsFromUserInput(cInput)
	if hSrc == nil {
		return out, &meta.ReprojectionError{Reason: "OSRSetFromUserInput() failed for source SRS"}
	}
	defer C.OSRDestroySpatialReference(hSrc)

	hDst := C.OSRNewSpatialReference(nil)
	defer C.OSRDestroySpatialReference(hDst)
	if C.OSRImportFromEPSG(hDst, C.int(4326)) != C.OGRERR_NONE {
		return out, &meta.ReprojectionError{Reason: "OSRImportFromEPSG(4326) failed"}
	}

	C.OSRSetAxisMappingStrategy(hSrc, C.OAMS_TRADITIONAL_GIS_ORDER)
	C.OSRSetAxisMappingStrategy(hDst, C.OAMS_TRADITIONAL_GIS_ORDER)

	trans := C.OCTNewCoordinateTransformation(hSrc, hDst)
	if trans == nil {
		return out, &meta.ReprojectionError{Reason: "OCTNewCoordinateTransformation() failed"}
	}
	defer C.OCTDestroyCoordinateTransformation(trans)

	xs := [2]C.double{C.double(extent.West), C.double(extent.East)}
	ys := [2]C.double{C.double(extent.North), C.double(extent.South)}
	if C.OCTTransform(trans, 2, &xs[0], &ys[0], nil) == 0 {
		return out, &meta.ReprojectionError{Reason: "OCTTransform() failed"}
	}

	out = meta.SpatialExtent{
		North: maxF(float64(ys[0]), float64(ys[1])),
		South: minF(float64(ys[0]), float64(ys[1])),
		East:  maxF(float64(xs[0]), float64(xs[1])),
		West:  minF(float64(xs[0]), float64(xs[1])),
		Units: meta.WGS84Units,
	}
	return out, nil
}

func minF(a, b float64) float64 {
	if a < b {
		return a
	}
	return b
}

func maxF(a, b float64) float64 {
	if a > b {
		return a
	}
	return b
}
