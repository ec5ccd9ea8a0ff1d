package optim

import (
	"context"
	"errors"
	"testing"

	"github.com/san-kum/aerolattice/internal/config"
	"github.com/san-kum/aerolattice/internal/experiment"
)

func TestGridSearch_Points(t *testing.T) {
	g := NewGridSearch([]string{"a", "b"}, [][]float64{{1, 2}, {10, 20, 30}})
	pts := g.Points()
	if len(pts) != 6 {
		t.Fatalf("expected 6 points, got %d", len(pts))
	}
	if pts[0]["a"] != 1 || pts[0]["b"] != 10 || pts[5]["a"] != 2 || pts[5]["b"] != 30 {
		t.Errorf("unexpected ordering: %v", pts)
	}
}

func TestGridSearch_TipTwistForLift(t *testing.T) {
	reg := experiment.NewRegistry()
	objective, err := reg.GetObjective("CL")
	if err != nil {
		t.Fatal(err)
	}

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := config.GetPreset("rectangular")
		if err := reg.Apply(cfg, "wing", params); err != nil {
			return nil, err
		}
		return experiment.New(cfg, nil), nil
	}

	g := NewGridSearch([]string{"tip_twist"}, [][]float64{{0, -2, -4}}).WithWorkers(2)
	best, val, points, err := g.Search(context.Background(), build, objective)
	if err != nil {
		t.Fatal(err)
	}
	if len(points) != 3 {
		t.Fatalf("expected 3 points, got %d", len(points))
	}
	if best["tip_twist"] != -4 {
		t.Errorf("best tip twist = %v, want -4 (points %+v)", best["tip_twist"], points)
	}
	if !(val < points[0].Value && points[2].Value == val) {
		t.Errorf("objective %v not the minimum of %+v", val, points)
	}
	if val <= 0 {
		t.Errorf("expected positive lift, got %v", val)
	}
}

func TestGridSearch_SkipsFailures(t *testing.T) {
	reg := experiment.NewRegistry()
	objective, _ := reg.GetObjective("CL")

	build := func(params map[string]float64) (*experiment.Experiment, error) {
		cfg := config.GetPreset("rectangular")
		if err := reg.Apply(cfg, "wing", params); err != nil {
			return nil, err
		}
		return experiment.New(cfg, nil), nil
	}

	g := NewGridSearch([]string{"span_count"}, [][]float64{{0, 4}})
	best, _, points, err := g.Search(context.Background(), build, objective)
	if err != nil {
		t.Fatal(err)
	}
	if best["span_count"] != 4 {
		t.Errorf("expected the valid point to win, got %v", best)
	}
	if points[0].Err == nil {
		t.Error("expected zero span count to fail")
	}

	g = NewGridSearch([]string{"span_count"}, [][]float64{{0, -1}})
	_, _, _, err = g.Search(context.Background(), build, objective)
	if !errors.Is(err, ErrNoFeasiblePoint) {
		t.Errorf("expected ErrNoFeasiblePoint, got %v", err)
	}
}
