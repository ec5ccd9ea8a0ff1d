package storage

import (
	"encoding/json"
	"io"
	"math"
	"os"

	"github.com/san-kum/aerolattice/internal/vortex"
)

type SectionData struct {
	Surface         string  `json:"surface"`
	Strip           int     `json:"strip"`
	Y               float64 `json:"y"`
	Z               float64 `json:"z"`
	Chord           float64 `json:"chord"`
	Width           float64 `json:"width"`
	Circulation     float64 `json:"circulation"`
	Lift            float64 `json:"lift"`
	Cl              float64 `json:"cl"`
	InducedAlphaDeg float64 `json:"induced_alpha_deg"`
}

type ExportData struct {
	Case         string             `json:"case"`
	Flow         FlowRecord         `json:"flow"`
	Panels       int                `json:"panels"`
	AspectRatio  float64            `json:"aspect_ratio"`
	MAC          float64            `json:"mac"`
	Lift         float64            `json:"lift"`
	InducedDrag  float64            `json:"induced_drag"`
	Coefficients map[string]float64 `json:"coefficients"`
	Sections     []SectionData      `json:"sections"`
	Circulation  []float64          `json:"circulation"`
}

func NewExportData(caseName string, res *vortex.Results) ExportData {
	data := ExportData{
		Case:         caseName,
		Flow:         NewFlowRecord(res.Flow),
		Panels:       len(res.Circulation()),
		AspectRatio:  res.AspectRatio,
		MAC:          res.MAC,
		Lift:         res.Lift,
		InducedDrag:  res.InducedDrag,
		Coefficients: res.Coefficients(),
		Sections:     make([]SectionData, len(res.Sections)),
		Circulation:  res.Circulation(),
	}
	for i, s := range res.Sections {
		data.Sections[i] = sectionData(s)
	}
	return data
}

func sectionData(s vortex.Section) SectionData {
	return SectionData{
		Surface:         s.Surface,
		Strip:           s.Strip,
		Y:               s.Y,
		Z:               s.Z,
		Chord:           s.Chord,
		Width:           s.Width,
		Circulation:     s.Circulation,
		Lift:            s.Lift,
		Cl:              s.Cl,
		InducedAlphaDeg: s.InducedAngle * 180 / math.Pi,
	}
}

func WriteJSON(w io.Writer, caseName string, res *vortex.Results) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(NewExportData(caseName, res))
}

func ExportJSON(path, caseName string, res *vortex.Results) error {
	file, err := os.Create(path)
	if err != nil {
		return err
	}
	defer file.Close()

	return WriteJSON(file, caseName, res)
}

func ExportJSONStdout(caseName string, res *vortex.Results) error {
	return WriteJSON(os.Stdout, caseName, res)
}

// RunExport is a stored run with its data inlined.
type RunExport struct {
	RunMetadata
	Sections []SectionData `json:"sections,omitempty"`
	Polar    []PolarPoint  `json:"polar,omitempty"`
}

// ExportRun writes a stored run as JSON.
func (s *Store) ExportRun(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	out := RunExport{RunMetadata: *meta}

	switch meta.Kind {
	case KindSweep:
		if out.Polar, err = s.LoadPolar(runID); err != nil {
			return err
		}
	default:
		sections, err := s.LoadDistribution(runID)
		if err != nil {
			return err
		}
		out.Sections = make([]SectionData, len(sections))
		for i, sec := range sections {
			out.Sections[i] = sectionData(sec)
		}
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}
