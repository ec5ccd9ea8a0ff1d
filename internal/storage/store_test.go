package storage

import (
	"bytes"
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"github.com/google/uuid"

	"github.com/san-kum/aerolattice/internal/vortex"
)

func testResults(alphaDeg float64) *vortex.Results {
	fc := vortex.FlowCondition{
		Airspeed:  50,
		Alpha:     alphaDeg * math.Pi / 180,
		Density:   1.225,
		Reference: vortex.Reference{Area: 10, Span: 10, Chord: 1},
	}
	res := vortex.NewResults(fc, []float64{1.5, 2.0, 2.0, 1.5})
	res.CL = 0.1 * alphaDeg
	res.CDi = 0.001 * alphaDeg
	res.SpanEfficiency = 0.98
	res.AspectRatio = 10
	res.MAC = 1
	res.Sections = []vortex.Section{
		{Surface: "wing", Strip: 0, Y: -2.5, Chord: 1, Width: 5, Circulation: 1.5, Lift: 91.875, Cl: 0.06, InducedAngle: 0.01},
		{Surface: "wing", Strip: 1, Y: 2.5, Chord: 1, Width: 5, Circulation: 1.5, Lift: 91.875, Cl: 0.06, InducedAngle: 0.01},
	}
	return res
}

func TestStoreSaveLoad(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("rectangular", testResults(5))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if _, err := uuid.Parse(runID); err != nil {
		t.Errorf("expected uuid run id, got %q", runID)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Case != "rectangular" || meta.Kind != KindSolve {
		t.Errorf("unexpected metadata %+v", meta)
	}
	if meta.Panels != 4 {
		t.Errorf("expected 4 panels, got %d", meta.Panels)
	}
	if math.Abs(meta.Flow.AlphaDeg-5) > 1e-12 {
		t.Errorf("expected alpha 5 deg, got %f", meta.Flow.AlphaDeg)
	}
	if meta.Coefficients["CL"] != 0.5 {
		t.Errorf("expected CL 0.5, got %f", meta.Coefficients["CL"])
	}

	sections, err := st.LoadDistribution(runID)
	if err != nil {
		t.Fatalf("load distribution failed: %v", err)
	}
	if len(sections) != 2 {
		t.Fatalf("expected 2 sections, got %d", len(sections))
	}
	if sections[1].Strip != 1 || sections[1].Y != 2.5 || sections[1].Lift != 91.875 {
		t.Errorf("unexpected section %+v", sections[1])
	}
	if math.Abs(sections[0].InducedAngle-0.01) > 1e-9 {
		t.Errorf("expected induced angle 0.01 rad, got %f", sections[0].InducedAngle)
	}
}

func TestStoreSweep(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	if _, err := st.SaveSweep("rectangular", nil); err == nil {
		t.Error("expected error for empty sweep")
	}

	sweep := []*vortex.Results{testResults(0), testResults(2), testResults(4)}
	runID, err := st.SaveSweep("rectangular", sweep)
	if err != nil {
		t.Fatalf("save sweep failed: %v", err)
	}

	meta, err := st.Load(runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.Kind != KindSweep || meta.Points != 3 {
		t.Errorf("unexpected metadata %+v", meta)
	}

	polar, err := st.LoadPolar(runID)
	if err != nil {
		t.Fatalf("load polar failed: %v", err)
	}
	if len(polar) != 3 {
		t.Fatalf("expected 3 polar points, got %d", len(polar))
	}
	if math.Abs(polar[2].AlphaDeg-4) > 1e-9 || math.Abs(polar[2].CL-0.4) > 1e-9 {
		t.Errorf("unexpected polar point %+v", polar[2])
	}
}

func TestStoreList(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	runs, err := st.List()
	if err != nil {
		t.Fatalf("list of missing dir failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected 0 runs, got %d", len(runs))
	}

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	first, err := st.Save("a", testResults(1))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if _, err := st.Save("b", testResults(2)); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := os.MkdirAll(filepath.Join(tmpDir, "junk"), 0755); err != nil {
		t.Fatal(err)
	}

	runs, err = st.List()
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 2 {
		t.Fatalf("expected 2 runs, got %d", len(runs))
	}
	if runs[0].ID != first && !runs[0].Timestamp.Equal(runs[1].Timestamp) {
		t.Errorf("expected oldest run first")
	}
}

func TestStoreFileStructure(t *testing.T) {
	tmpDir := t.TempDir()
	st := New(tmpDir)

	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	runID, err := st.Save("test", testResults(3))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	runDir := filepath.Join(tmpDir, runID)
	for _, name := range []string{metadataFile, distributionFile} {
		if _, err := os.Stat(filepath.Join(runDir, name)); os.IsNotExist(err) {
			t.Errorf("%s not created", name)
		}
	}

	if _, err := st.Load("missing"); err == nil {
		t.Error("expected error for missing run")
	}
}

func TestWriteJSON(t *testing.T) {
	var buf bytes.Buffer
	if err := WriteJSON(&buf, "rectangular", testResults(5)); err != nil {
		t.Fatalf("write json failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.Case != "rectangular" || data.Panels != 4 || len(data.Sections) != 2 {
		t.Errorf("unexpected export %+v", data)
	}
	if len(data.Circulation) != 4 || data.Circulation[1] != 2.0 {
		t.Errorf("unexpected circulation %v", data.Circulation)
	}
	if math.Abs(data.Coefficients["L/D"]-100) > 1e-9 {
		t.Errorf("expected L/D 100, got %f", data.Coefficients["L/D"])
	}

	path := filepath.Join(t.TempDir(), "out.json")
	if err := ExportJSON(path, "rectangular", testResults(5)); err != nil {
		t.Fatalf("export failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Errorf("export file missing: %v", err)
	}
}

func TestStoreCopyAndExportRun(t *testing.T) {
	st := New(t.TempDir())
	if err := st.Init(); err != nil {
		t.Fatalf("init failed: %v", err)
	}

	solveID, err := st.Save("rectangular", testResults(5))
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	sweepID, err := st.SaveSweep("rectangular", []*vortex.Results{testResults(0), testResults(4)})
	if err != nil {
		t.Fatalf("save sweep failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.CopyData(solveID, &buf); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("surface,strip,")) {
		t.Errorf("unexpected distribution csv: %q", buf.String())
	}

	buf.Reset()
	if err := st.CopyData(sweepID, &buf); err != nil {
		t.Fatalf("copy failed: %v", err)
	}
	if !bytes.HasPrefix(buf.Bytes(), []byte("alpha_deg,CL,")) {
		t.Errorf("unexpected polar csv: %q", buf.String())
	}

	buf.Reset()
	if err := st.ExportRun(solveID, &buf); err != nil {
		t.Fatalf("export run failed: %v", err)
	}
	var solved RunExport
	if err := json.Unmarshal(buf.Bytes(), &solved); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if solved.ID != solveID || len(solved.Sections) != 2 || len(solved.Polar) != 0 {
		t.Errorf("unexpected solve export %+v", solved)
	}

	buf.Reset()
	if err := st.ExportRun(sweepID, &buf); err != nil {
		t.Fatalf("export run failed: %v", err)
	}
	var swept RunExport
	if err := json.Unmarshal(buf.Bytes(), &swept); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if swept.Kind != KindSweep || len(swept.Polar) != 2 {
		t.Errorf("unexpected sweep export %+v", swept)
	}

	if err := st.CopyData("missing", &buf); err == nil {
		t.Error("expected error for missing run")
	}
}
