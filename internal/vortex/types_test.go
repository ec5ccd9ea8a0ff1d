package vortex

import (
	"errors"
	"math"
	"sync/atomic"
	"testing"
)

func TestVec3_IsFinite(t *testing.T) {
	tests := []struct {
		name  string
		v     Vec3
		valid bool
	}{
		{"zero", Vec3{}, true},
		{"normal", Vec3{1, 2, 3}, true},
		{"with NaN", Vec3{1, math.NaN(), 0}, false},
		{"with +Inf", Vec3{math.Inf(1), 0, 0}, false},
		{"with -Inf", Vec3{0, 0, math.Inf(-1)}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.v.IsFinite(); got != tt.valid {
				t.Errorf("IsFinite() = %v, want %v", got, tt.valid)
			}
		})
	}
}

func TestVec3_Arithmetic(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}

	if got := a.Add(b); got != (Vec3{5, 7, 9}) {
		t.Errorf("Add failed: got %v", got)
	}
	if got := b.Sub(a); got != (Vec3{3, 3, 3}) {
		t.Errorf("Sub failed: got %v", got)
	}
	if got := a.Scale(2); got != (Vec3{2, 4, 6}) {
		t.Errorf("Scale failed: got %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot failed: got %v", got)
	}
	if got := UnitX.Cross(UnitY); got != UnitZ {
		t.Errorf("x cross y = %v, want z", got)
	}
	if got := UnitY.Cross(UnitZ); got != UnitX {
		t.Errorf("y cross z = %v, want x", got)
	}
	if got := a.MirrorY(); got != (Vec3{1, -2, 3}) {
		t.Errorf("MirrorY failed: got %v", got)
	}
	if got := a.Lerp(b, 0.5); got != (Vec3{2.5, 3.5, 4.5}) {
		t.Errorf("Lerp failed: got %v", got)
	}
}

func TestVec3_Normalize(t *testing.T) {
	n := Vec3{3, 0, 4}.Normalize()
	if math.Abs(n.Norm()-1) > 1e-12 {
		t.Errorf("expected unit length, got %v", n.Norm())
	}
	if (Vec3{}).Normalize() != (Vec3{}) {
		t.Error("zero vector should normalize to zero")
	}
}

func TestFlowCondition_Axes(t *testing.T) {
	fc := FlowCondition{Airspeed: 50, Alpha: 5 * math.Pi / 180, Density: 1.225}

	v := fc.Freestream()
	if math.Abs(v.Norm()-50) > 1e-9 {
		t.Errorf("freestream speed = %v, want 50", v.Norm())
	}
	if v.Z <= 0 {
		t.Errorf("positive alpha should tilt freestream up, got %v", v)
	}
	if d := fc.LiftAxis().Dot(fc.DragAxis()); math.Abs(d) > 1e-12 {
		t.Errorf("lift and drag axes not orthogonal: %v", d)
	}
	if d := fc.SideAxis().Dot(fc.DragAxis()); math.Abs(d) > 1e-12 {
		t.Errorf("side and drag axes not orthogonal: %v", d)
	}
	if q := fc.DynamicPressure(); math.Abs(q-0.5*1.225*2500) > 1e-9 {
		t.Errorf("dynamic pressure = %v", q)
	}

	side := FlowCondition{Airspeed: 1, Beta: 0.1}.Freestream()
	if side.Y >= 0 {
		t.Errorf("positive sideslip should blow towards -y, got %v", side)
	}
}

func TestLattice_Ordering(t *testing.T) {
	a := &Surface{Name: "a", Panels: make([]Panel, 3)}
	b := &Surface{Name: "b", Panels: make([]Panel, 2)}

	lat := NewLattice(a, nil, b)
	if lat.Len() != 5 {
		t.Fatalf("expected 5 panels, got %d", lat.Len())
	}
	if lat.Offset(1) != 3 {
		t.Errorf("expected surface b at offset 3, got %d", lat.Offset(1))
	}
	for i, p := range lat.Panels() {
		want := 0
		if i >= 3 {
			want = 1
		}
		if p.Surface != want {
			t.Errorf("panel %d: surface = %d, want %d", i, p.Surface, want)
		}
	}
	if NewLattice().Len() != 0 {
		t.Error("expected empty lattice")
	}
}

func TestResults_CirculationIsCopied(t *testing.T) {
	g := []float64{1, 2, 3}
	r := NewResults(FlowCondition{}, g)
	g[0] = 99

	got := r.Circulation()
	if got[0] != 1 {
		t.Errorf("results share caller slice: %v", got)
	}
	got[1] = 42
	if r.Circulation()[1] != 2 {
		t.Error("accessor leaked internal slice")
	}
}

func TestErrors_Unwrap(t *testing.T) {
	err := &GeometryError{Surface: "wing", Field: "chord", Value: -1, Wrapped: ErrInvalidGeometry}
	if !errors.Is(err, ErrInvalidGeometry) {
		t.Error("GeometryError should unwrap to ErrInvalidGeometry")
	}

	serr := &SolveError{Stage: "pivot", Index: 3, Value: 1e-18, Wrapped: ErrSingularSystem}
	if !errors.Is(serr, ErrSingularSystem) {
		t.Error("SolveError should unwrap to ErrSingularSystem")
	}
}

func TestParallelFor_CoversRange(t *testing.T) {
	for _, workers := range []int{0, 1, 3, 16} {
		hits := make([]int32, 103)
		ParallelFor(len(hits), workers, 4, func(start, end int) {
			for i := start; i < end; i++ {
				atomic.AddInt32(&hits[i], 1)
			}
		})
		for i, h := range hits {
			if h != 1 {
				t.Fatalf("workers=%d: index %d visited %d times", workers, i, h)
			}
		}
	}
}
