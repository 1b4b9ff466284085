package netcdf

import (
	"fmt"
	"sort"
	"strings"
)

// Header is the structural view of a NetCDF file used to render the
// ncdump-style header text. The rendering only serves display and the
// staleness string-match, but its line shapes must stay stable.
type Header struct {
	Name        string
	Dims        []HeaderDim
	Vars        []HeaderVar
	GlobalAttrs []HeaderAttr
}

type HeaderDim struct {
	Name string
	// Len < 0 means the length could not be determined from any
	// variable shape.
	Len int64
}

type HeaderVar struct {
	Type  string
	Name  string
	Dims  []string
	Attrs []HeaderAttr
}

type HeaderAttr struct {
	Name  string
	Value interface{}
}

// Render mirrors the textual output of the standard header-dump tool.
func (h *Header) Render() string {
	var b strings.Builder

	fmt.Fprintf(&b, "netcdf %s {\n", h.Name)

	if len(h.Dims) > 0 {
		b.WriteString("dimensions:\n")
		for _, dim := range h.Dims {
			if dim.Len < 0 {
				fmt.Fprintf(&b, "\t%s ;\n", dim.Name)
			} else {
				fmt.Fprintf(&b, "\t%s = %d ;\n", dim.Name, dim.Len)
			}
		}
	}

	if len(h.Vars) > 0 {
		b.WriteString("variables:\n")
		for _, v := range h.Vars {
			if len(v.Dims) > 0 {
				fmt.Fprintf(&b, "\t%s %s(%s) ;\n", v.Type, v.Name, strings.Join(v.Dims, ", "))
			} else {
				fmt.Fprintf(&b, "\t%s %s ;\n", v.Type, v.Name)
			}
			for _, attr := range v.Attrs {
				fmt.Fprintf(&b, "\t\t%s:%s = %s ;\n", v.Name, attr.Name, renderAttrValue(attr.Value))
			}
		}
	}

	if len(h.GlobalAttrs) > 0 {
		b.WriteString("\n// global attributes:\n")
		for _, attr := range h.GlobalAttrs {
			fmt.Fprintf(&b, "\t\t:%s = %s ;\n", attr.Name, renderAttrValue(attr.Value))
		}
	}

	b.WriteString("}\n")
	return b.String()
}

func renderAttrValue(value interface{}) string {
	switch v := value.(type) {
	case string:
		return fmt.Sprintf("%q", v)
	case float32, float64:
		return fmt.Sprintf("%g", v)
	case []string:
		quoted := make([]string, len(v))
		for i, s := range v {
			quoted[i] = fmt.Sprintf("%q", s)
		}
		return strings.Join(quoted, ", ")
	default:
		return fmt.Sprintf("%v", v)
	}
}

// resolveDims derives dimension lengths from variable shapes. A
// one-dimensional variable pins its dimension's length directly; for
// multi-dimensional variables the remaining unknown factor is derived
// once every other factor is known.
func resolveDims(vars []dimShape) []HeaderDim {
	lengths := map[string]int64{}
	order := []string{}
	seen := map[string]bool{}

	for _, v := range vars {
		for _, d := range v.dims {
			if !seen[d] {
				seen[d] = true
				order = append(order, d)
			}
		}
		if len(v.dims) == 1 && v.total > 0 {
			lengths[v.dims[0]] = v.total
		}
	}

	for changed := true; changed; {
		changed = false
		for _, v := range vars {
			if v.total <= 0 {
				continue
			}
			unknown := ""
			known := int64(1)
			for _, d := range v.dims {
				if l, ok := lengths[d]; ok {
					known *= l
				} else if unknown == "" {
					unknown = d
				} else {
					unknown = "" // more than one unknown factor
					break
				}
			}
			if unknown != "" && known > 0 && v.total%known == 0 {
				lengths[unknown] = v.total / known
				changed = true
			}
		}
	}

	sort.Strings(order)
	dims := make([]HeaderDim, 0, len(order))
	for _, name := range order {
		l, ok := lengths[name]
		if !ok {
			l = -1
		}
		dims = append(dims, HeaderDim{Name: name, Len: l})
	}
	return dims
}

type dimShape struct {
	dims  []string
	total int64
}
