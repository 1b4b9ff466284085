package vector

// #include <stdio.h>
// #include <stdlib.h>
// #include "gdal.h"
// #include "ogr_api.h"
// #include "ogr_srs_api.h"
// #include "cpl_string.h"
// #cgo pkg-config: gdal
import "C"

import (
	"fmt"
	"strconv"
	"unsafe"

	"github.com/hydroshare/hsextract/meta"
	"github.com/hydroshare/hsextract/srs"
)

func init() {
	C.GDALAllRegister()
}

// Extraction is the metadata read from one shapefile.
type Extraction struct {
	OriginalCoverage meta.OriginalCoverage
	WGS84Coverage    *meta.WGS84Coverage
	Fields           []meta.FieldInformation
	Geometry         meta.GeometryInformation
}

// Bundle renders the extraction as element attribute dicts for the
// reconciler.
func (e *Extraction) Bundle() *meta.ExtractedBundle {
	bundle := meta.NewBundle()
	bundle.Set(meta.KindOriginalCoverage, e.OriginalCoverage.Attrs())
	if e.WGS84Coverage != nil {
		bundle.Set(meta.KindCoverage, e.WGS84Coverage.Attrs())
	}
	for _, field := range e.Fields {
		bundle.Add(meta.KindField, field.Attrs())
	}
	bundle.Set(meta.KindGeometry, e.Geometry.Attrs())
	return bundle
}

// Inspect opens the .shp through the OGR driver and reads the layer
// CRS, field schema, feature count, geometry type and extent.
func Inspect(shpPath string) (*Extraction, error) {
	cPath := C.CString(shpPath)
	defer C.free(unsafe.Pointer(cPath))

	ds := C.GDALOpenEx(cPath, C.GDAL_OF_VECTOR|C.GDAL_OF_READONLY, nil, nil, nil)
	if ds == nil {
		return nil, &meta.UnreadableDatasetError{Path: shpPath, Reason: C.GoString(C.CPLGetLastErrorMsg())}
	}
	defer C.GDALClose(ds)

	layer := C.GDALDatasetGetLayer(ds, 0)
	if layer == nil {
		return nil, &meta.UnreadableDatasetError{Path: shpPath, Reason: "dataset has no layer"}
	}

	out := &Extraction{}
	out.Fields = readFieldSchema(layer)
	out.Geometry = readGeometryInfo(layer)

	var env C.OGREnvelope
	C.OGR_L_GetExtent(layer, &env, C.int(1))

	wkt := layerSRSWkt(layer)
	srsInfo, serr := srs.Parse(wkt)

	units := meta.UnknownLiteral
	reference := meta.UnknownSpatialReference()
	if serr == nil {
		reference = srsInfo.Reference()
		units = reference.Unit
	}

	out.OriginalCoverage = meta.OriginalCoverage{
		Extent: meta.SpatialExtent{
			North: float64(env.MaxY),
			South: float64(env.MinY),
			East:  float64(env.MaxX),
			West:  float64(env.MinX),
			Units: units,
		},
		Reference: reference,
	}
	if err := out.OriginalCoverage.Extent.Validate(); err != nil {
		return nil, err
	}

	// Missing or unusable SRS degrades to "no WGS84 coverage", never
	// a zero-filled box.
	if serr == nil {
		wgs84, rerr := srs.ReprojectExtent(out.OriginalCoverage.Extent, wkt)
		if rerr == nil {
			out.WGS84Coverage = &meta.WGS84Coverage{Extent: wgs84}
		} else {
			logger.Warn().Str("shp", shpPath).Err(rerr).Msg("skipping WGS84 coverage")
		}
	}

	return out, nil
}

func readFieldSchema(layer C.OGRLayerH) []meta.FieldInformation {
	defn := C.OGR_L_GetLayerDefn(layer)
	count := int(C.OGR_FD_GetFieldCount(defn))

	fields := make([]meta.FieldInformation, 0, count)
	for i := 0; i < count; i++ {
		fieldDefn := C.OGR_FD_GetFieldDefn(defn, C.int(i))
		fieldType := C.OGR_Fld_GetType(fieldDefn)

		// Width and precision are taken as the driver reports them.
		width := int(C.OGR_Fld_GetWidth(fieldDefn))
		precision := int(C.OGR_Fld_GetPrecision(fieldDefn))

		fields = append(fields, meta.FieldInformation{
			FieldName:      C.GoString(C.OGR_Fld_GetNameRef(fieldDefn)),
			FieldType:      C.GoString(C.OGR_GetFieldTypeName(fieldType)),
			FieldTypeCode:  strconv.Itoa(int(fieldType)),
			FieldWidth:     &width,
			FieldPrecision: &precision,
		})
	}
	return fields
}

// readGeometryInfo reads the geometry type name from the first feature
// only. Mixed-geometry shapefiles report the first feature's type; a
// known limitation kept from the original behaviour.
func readGeometryInfo(layer C.OGRLayerH) meta.GeometryInformation {
	info := meta.GeometryInformation{
		FeatureCount: int(C.OGR_L_GetFeatureCount(layer, C.int(1))),
	}

	C.OGR_L_ResetReading(layer)
	feature := C.OGR_L_GetNextFeature(layer)
	if feature != nil {
		geom := C.OGR_F_GetGeometryRef(feature)
		if geom != nil {
			info.GeometryType = C.GoString(C.OGR_G_GetGeometryName(geom))
		}
		C.OGR_F_Destroy(feature)
	}
	return info
}

func layerSRSWkt(layer C.OGRLayerH) string {
	hSRS := C.OGR_L_GetSpatialRef(layer)
	if hSRS == nil {
		return ""
	}
	var cWkt *C.char
	if C.OSRExportToWkt(hSRS, &cWkt) != C.OGRERR_NONE {
		return ""
	}
	wkt := C.GoString(cWkt)
	C.CPLFree(unsafe.Pointer(cWkt))
	return wkt
}

// openCheck is the validator's liveness probe.
func openCheck(shpPath string) error {
	cPath := C.CString(shpPath)
	defer C.free(unsafe.Pointer(cPath))

	ds := C.GDALOpenEx(cPath, C.GDAL_OF_VECTOR|C.GDAL_OF_READONLY, nil, nil, nil)
	if ds == nil {
		return fmt.Errorf("%s", C.GoString(C.CPLGetLastErrorMsg()))
	}
	C.GDALClose(ds)
	return nil
}
