package raster

import (
	"encoding/xml"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/hydroshare/hsextract/meta"
)

// Minimal VRT document model; only the parts the validator needs to
// read. Patching is done textually so driver-emitted elements survive
// untouched.
type VRTDataset struct {
	XMLName        xml.Name         `xml:"VRTDataset"`
	RasterXSize    int              `xml:"rasterXSize,attr"`
	RasterYSize    int              `xml:"rasterYSize,attr"`
	SRS            string           `xml:"SRS"`
	GeoTransform   string           `xml:"GeoTransform"`
	VRTRasterBands []*VRTRasterBand `xml:"VRTRasterBand"`
}

type VRTRasterBand struct {
	DataType       string          `xml:"dataType,attr"`
	Band           int             `xml:"band,attr"`
	SimpleSources  []*RasterSource `xml:"SimpleSource"`
	ComplexSources []*RasterSource `xml:"ComplexSource"`
}

type RasterSource struct {
	SourceFileName SourceFileName `xml:"SourceFilename"`
}

type SourceFileName struct {
	RelativeToVRT int    `xml:"relativeToVRT,attr"`
	Name          string `xml:",chardata"`
}

// ParseVRT reads and unmarshals a .vrt file.
func ParseVRT(path string) (*VRTDataset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var ds VRTDataset
	if err := xml.Unmarshal(data, &ds); err != nil {
		return nil, fmt.Errorf("parsing VRT %s: %w", path, err)
	}
	return &ds, nil
}

// SourceNames lists every SourceFilename reference in band order.
func (ds *VRTDataset) SourceNames() []string {
	var names []string
	for _, band := range ds.VRTRasterBands {
		for _, src := range band.SimpleSources {
			names = append(names, strings.TrimSpace(src.SourceFileName.Name))
		}
		for _, src := range band.ComplexSources {
			names = append(names, strings.TrimSpace(src.SourceFileName.Name))
		}
	}
	return names
}

var sourceFilenameRe = regexp.MustCompile(`<SourceFilename[^>]*>([^<]*)</SourceFilename>`)

// RelativizeSourceNames rewrites every SourceFilename element of a
// .vrt in place so it references its .tif by base name with
// relativeToVRT set. Required for portability when the pair is stored
// together. Only the SourceFilename elements are touched.
func RelativizeSourceNames(vrtPath string) error {
	data, err := os.ReadFile(vrtPath)
	if err != nil {
		return err
	}

	patched := sourceFilenameRe.ReplaceAllFunc(data, func(elem []byte) []byte {
		m := sourceFilenameRe.FindSubmatch(elem)
		name := filepath.Base(strings.TrimSpace(string(m[1])))
		return []byte(fmt.Sprintf(`<SourceFilename relativeToVRT="1">%s</SourceFilename>`, name))
	})

	return os.WriteFile(vrtPath, patched, 0644)
}

// CheckReferences enforces the "exactly the accompanying tifs"
// invariant between a parsed .vrt and the .tif files present next to
// it. References resolve by exact name or by base name for relative
// references. The three failure modes are reported distinguishably:
// a referenced .tif that is absent, a present .tif that is never
// referenced, and a reference/file pair that look renamed relative to
// each other (both sides unmatched).
func CheckReferences(ds *VRTDataset, tifNames []string) error {
	present := map[string]bool{}
	for _, name := range tifNames {
		present[name] = true
	}

	referenced := map[string]bool{}
	var dangling []string
	for _, ref := range ds.SourceNames() {
		base := filepath.Base(ref)
		if present[base] {
			referenced[base] = true
		} else {
			dangling = append(dangling, base)
		}
	}

	var unreferenced []string
	for _, name := range tifNames {
		if !referenced[name] {
			unreferenced = append(unreferenced, name)
		}
	}

	switch {
	case len(dangling) > 0 && len(unreferenced) > 0:
		return meta.Structural(meta.RuleAmbiguousReference,
			"the .vrt file reference %s does not match the uploaded .tif file %s; the reference or the file appears renamed",
			dangling[0], unreferenced[0])
	case len(dangling) > 0:
		return meta.Structural(meta.RuleMissingReferenced,
			"the .vrt file references %s which is not among the uploaded .tif files", dangling[0])
	case len(unreferenced) > 0:
		return meta.Structural(meta.RuleExtraUnreferenced,
			"the uploaded .tif file %s is not referenced by the .vrt file", unreferenced[0])
	}
	return nil
}
