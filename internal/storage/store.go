package storage

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/san-kum/aerolattice/internal/vortex"
)

const (
	metadataFile     = "metadata.json"
	distributionFile = "distribution.csv"
	polarFile        = "polar.csv"
)

const (
	KindSolve = "solve"
	KindSweep = "sweep"
)

type Store struct {
	baseDir string
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir}
}

func (s *Store) Init() error {
	return os.MkdirAll(s.baseDir, 0755)
}

// FlowRecord is the flow condition of a run with angles in degrees.
type FlowRecord struct {
	Airspeed float64    `json:"airspeed"`
	AlphaDeg float64    `json:"alpha_deg"`
	BetaDeg  float64    `json:"beta_deg"`
	Density  float64    `json:"density"`
	SRef     float64    `json:"s_ref"`
	BRef     float64    `json:"b_ref"`
	CRef     float64    `json:"c_ref"`
	Moment   [3]float64 `json:"moment_ref"`
}

func NewFlowRecord(fc vortex.FlowCondition) FlowRecord {
	p := fc.Reference.Point
	return FlowRecord{
		Airspeed: fc.Airspeed,
		AlphaDeg: fc.Alpha * 180 / math.Pi,
		BetaDeg:  fc.Beta * 180 / math.Pi,
		Density:  fc.Density,
		SRef:     fc.Reference.Area,
		BRef:     fc.Reference.Span,
		CRef:     fc.Reference.Chord,
		Moment:   [3]float64{p.X, p.Y, p.Z},
	}
}

type RunMetadata struct {
	ID           string             `json:"id"`
	Case         string             `json:"case"`
	Kind         string             `json:"kind"`
	Timestamp    time.Time          `json:"timestamp"`
	Panels       int                `json:"panels"`
	Flow         FlowRecord         `json:"flow"`
	AspectRatio  float64            `json:"aspect_ratio"`
	MAC          float64            `json:"mac"`
	Coefficients map[string]float64 `json:"coefficients,omitempty"`
	Points       int                `json:"points,omitempty"`
}

// PolarPoint is one row of a saved sweep.
type PolarPoint struct {
	AlphaDeg float64 `json:"alpha_deg"`
	CL       float64 `json:"CL"`
	CDi      float64 `json:"CDi"`
	Cm       float64 `json:"Cm"`
	E        float64 `json:"e"`
}

// Save stores a single solve and returns its run id.
func (s *Store) Save(caseName string, res *vortex.Results) (string, error) {
	meta := newMetadata(caseName, KindSolve, res)
	meta.Coefficients = res.Coefficients()

	runDir, err := s.create(meta)
	if err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, distributionFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WriteDistribution(f, res.Sections); err != nil {
		return "", err
	}
	return meta.ID, nil
}

// SaveSweep stores an angle-of-attack sweep as a polar.
func (s *Store) SaveSweep(caseName string, results []*vortex.Results) (string, error) {
	if len(results) == 0 {
		return "", errors.New("storage: empty sweep")
	}
	meta := newMetadata(caseName, KindSweep, results[0])
	meta.Points = len(results)

	runDir, err := s.create(meta)
	if err != nil {
		return "", err
	}

	f, err := os.Create(filepath.Join(runDir, polarFile))
	if err != nil {
		return "", err
	}
	defer f.Close()

	if err := WritePolar(f, results); err != nil {
		return "", err
	}
	return meta.ID, nil
}

func newMetadata(caseName, kind string, res *vortex.Results) RunMetadata {
	return RunMetadata{
		ID:          uuid.NewString(),
		Case:        caseName,
		Kind:        kind,
		Timestamp:   time.Now(),
		Panels:      len(res.Circulation()),
		Flow:        NewFlowRecord(res.Flow),
		AspectRatio: res.AspectRatio,
		MAC:         res.MAC,
	}
}

func (s *Store) create(meta RunMetadata) (string, error) {
	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	metaFile, err := os.Create(filepath.Join(runDir, metadataFile))
	if err != nil {
		return "", err
	}
	defer metaFile.Close()

	enc := json.NewEncoder(metaFile)
	enc.SetIndent("", "  ")
	if err := enc.Encode(meta); err != nil {
		return "", err
	}
	return runDir, nil
}

// List returns all stored runs, oldest first.
func (s *Store) List() ([]RunMetadata, error) {
	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		if os.IsNotExist(err) {
			return []RunMetadata{}, nil
		}
		return nil, err
	}

	runs := make([]RunMetadata, 0)
	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		meta, err := s.Load(entry.Name())
		if err != nil {
			continue
		}
		runs = append(runs, *meta)
	}

	sort.Slice(runs, func(i, j int) bool { return runs[i].Timestamp.Before(runs[j].Timestamp) })
	return runs, nil
}

func (s *Store) Load(runID string) (*RunMetadata, error) {
	data, err := os.ReadFile(filepath.Join(s.baseDir, runID, metadataFile))
	if err != nil {
		return nil, err
	}

	var meta RunMetadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	return &meta, nil
}

// LoadDistribution reads the spanwise sections of a stored solve.
func (s *Store) LoadDistribution(runID string) ([]vortex.Section, error) {
	records, err := s.readCSV(runID, distributionFile)
	if err != nil {
		return nil, err
	}

	sections := make([]vortex.Section, 0, len(records))
	for _, rec := range records {
		if len(rec) < 10 {
			continue
		}
		v, ok := parseFloats(rec[2:])
		if !ok {
			continue
		}
		strip, err := strconv.Atoi(rec[1])
		if err != nil {
			continue
		}
		sections = append(sections, vortex.Section{
			Surface:      rec[0],
			Strip:        strip,
			Y:            v[0],
			Z:            v[1],
			Chord:        v[2],
			Width:        v[3],
			Circulation:  v[4],
			Lift:         v[5],
			Cl:           v[6],
			InducedAngle: v[7] * math.Pi / 180,
		})
	}
	return sections, nil
}

// LoadPolar reads a stored sweep.
func (s *Store) LoadPolar(runID string) ([]PolarPoint, error) {
	records, err := s.readCSV(runID, polarFile)
	if err != nil {
		return nil, err
	}

	polar := make([]PolarPoint, 0, len(records))
	for _, rec := range records {
		v, ok := parseFloats(rec)
		if !ok || len(v) < 5 {
			continue
		}
		polar = append(polar, PolarPoint{AlphaDeg: v[0], CL: v[1], CDi: v[2], Cm: v[3], E: v[4]})
	}
	return polar, nil
}

func (s *Store) readCSV(runID, name string) ([][]string, error) {
	file, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("run %s: %w", runID, err)
	}
	if len(records) < 2 {
		return [][]string{}, nil
	}
	return records[1:], nil
}

func parseFloats(fields []string) ([]float64, bool) {
	out := make([]float64, len(fields))
	for i, f := range fields {
		v, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return nil, false
		}
		out[i] = v
	}
	return out, true
}

// WriteDistribution writes spanwise sections as CSV, induced angles in degrees.
func WriteDistribution(w io.Writer, sections []vortex.Section) error {
	cw := csv.NewWriter(w)
	header := []string{"surface", "strip", "y", "z", "chord", "width", "circulation", "lift", "cl", "induced_alpha_deg"}
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, sec := range sections {
		row := []string{
			sec.Surface,
			strconv.Itoa(sec.Strip),
			formatFloat(sec.Y),
			formatFloat(sec.Z),
			formatFloat(sec.Chord),
			formatFloat(sec.Width),
			formatFloat(sec.Circulation),
			formatFloat(sec.Lift),
			formatFloat(sec.Cl),
			formatFloat(sec.InducedAngle * 180 / math.Pi),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WritePolar writes one row per result of a sweep.
func WritePolar(w io.Writer, results []*vortex.Results) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"alpha_deg", "CL", "CDi", "Cm", "e"}); err != nil {
		return err
	}
	for _, r := range results {
		row := []string{
			formatFloat(r.Flow.Alpha * 180 / math.Pi),
			formatFloat(r.CL),
			formatFloat(r.CDi),
			formatFloat(r.Cm),
			formatFloat(r.SpanEfficiency),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', 10, 64)
}

// CopyData writes the raw CSV of a run: the distribution of a solve or the
// polar of a sweep.
func (s *Store) CopyData(runID string, w io.Writer) error {
	meta, err := s.Load(runID)
	if err != nil {
		return err
	}
	name := distributionFile
	if meta.Kind == KindSweep {
		name = polarFile
	}

	f, err := os.Open(filepath.Join(s.baseDir, runID, name))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
