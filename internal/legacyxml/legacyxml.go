package legacyxml

import (
	"encoding/xml"
	"strconv"
	"strings"

	"github.com/modelrail/z21go/pkg/model"
)

// Elements decode as strings so a single malformed value degrades to its
// field default instead of failing the whole document.

type document struct {
	ExportMeta *exportMeta `xml:"exportmeta"`
	Locos      *locoList   `xml:"locos"`
}

type exportMeta struct {
	Version string `xml:"version"`
}

type locoList struct {
	Locos []locoElement `xml:"loco"`
}

type locoElement struct {
	Address           string        `xml:"address"`
	Name              string        `xml:"name"`
	MaxSpeed          string        `xml:"max_speed"`
	TractionDirection string        `xml:"traction_direction"`
	Functions         *functionList `xml:"functions"`
}

type functionList struct {
	Elements []functionElement `xml:"function_element"`
}

type functionElement struct {
	Function   *string `xml:"function"`
	Active     string  `xml:"active"`
	ImageName  string  `xml:"image_name"`
	Shortcut   string  `xml:"shortcut"`
	Position   string  `xml:"position"`
	Time       string  `xml:"time"`
	ButtonType string  `xml:"button_type"`
}

// Read parses data into the archive. A document that cannot be parsed is
// stored as one UnknownBlock spanning the whole payload; that is the
// documented fallback for corrupt legacy files, not an error.
func Read(data []byte, archive *model.Archive) {
	var doc document
	if err := xml.Unmarshal(data, &doc); err != nil {
		archive.UnknownBlocks = append(archive.UnknownBlocks, model.UnknownBlock{
			Offset: 0,
			Length: int64(len(data)),
			Data:   data,
		})
		return
	}

	if doc.ExportMeta != nil {
		if v, ok := intText(doc.ExportMeta.Version); ok {
			version := v
			archive.Version = &version
		}
	}

	if doc.Locos == nil {
		return
	}
	for _, elem := range doc.Locos.Locos {
		archive.Locomotives = append(archive.Locomotives, readLocomotive(elem))
	}
}

func readLocomotive(elem locoElement) *model.Locomotive {
	loco := model.NewLocomotive()
	if v, ok := intText(elem.Address); ok {
		loco.Address = v
	}
	if name := strings.TrimSpace(elem.Name); name != "" {
		loco.Name = name
	}
	if v, ok := intText(elem.MaxSpeed); ok {
		loco.Speed = v
	}
	if v, ok := intText(elem.TractionDirection); ok {
		loco.Direction = v == 1
	}

	if elem.Functions == nil {
		return loco
	}
	for _, fe := range elem.Functions.Elements {
		// A function element without a numeric function number is
		// silently skipped.
		if fe.Function == nil {
			continue
		}
		num, ok := intText(*fe.Function)
		if !ok {
			continue
		}

		fn := model.NewFunctionInfo(num)
		if v, ok := intText(fe.Active); ok {
			fn.Active = v == 1
		}
		fn.ImageName = strings.TrimSpace(fe.ImageName)
		fn.Shortcut = strings.TrimSpace(fe.Shortcut)
		if v, ok := intText(fe.Position); ok {
			fn.Position = v
		}
		if t := strings.TrimSpace(fe.Time); t != "" {
			fn.Time = t
		}
		if v, ok := intText(fe.ButtonType); ok {
			fn.ButtonType = model.ButtonType(v)
		}
		if err := loco.SetFunction(fn); err != nil {
			continue
		}
	}
	return loco
}

// intText parses the trimmed element text as an integer.
func intText(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	v, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return v, true
}
