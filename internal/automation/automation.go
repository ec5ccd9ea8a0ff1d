package automation

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/aerolattice/internal/config"
	"github.com/san-kum/aerolattice/internal/experiment"
	"github.com/san-kum/aerolattice/internal/vortex"
)

// Scenario is a scripted sequence of cases.
type Scenario struct {
	Name        string         `yaml:"name"`
	Description string         `yaml:"description"`
	Steps       []ScenarioStep `yaml:"steps"`

	dir string
}

// ScenarioStep solves one case. Case names a preset; Config a case file,
// relative to the scenario file. Sweep turns the step into an
// angle-of-attack sweep.
type ScenarioStep struct {
	Case     string             `yaml:"case"`
	Config   string             `yaml:"config"`
	AlphaDeg *float64           `yaml:"alpha_deg"`
	BetaDeg  *float64           `yaml:"beta_deg"`
	Sweep    *SweepRange        `yaml:"sweep"`
	Surface  string             `yaml:"surface"`
	Params   map[string]float64 `yaml:"params"`
	SaveAs   string             `yaml:"save_as"`
}

type SweepRange struct {
	From float64 `yaml:"from"`
	To   float64 `yaml:"to"`
	Step float64 `yaml:"step"`
}

// StepResult holds the solves of one step: one result, or one per angle
// for a sweep.
type StepResult struct {
	Index   int
	Name    string
	Sweep   bool
	Results []*vortex.Results
}

// LoadScenario loads a scenario from a YAML file
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := ParseScenario(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	sc.dir = filepath.Dir(path)
	return sc, nil
}

func ParseScenario(data []byte) (*Scenario, error) {
	var scenario Scenario
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&scenario); err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}
	if len(scenario.Steps) == 0 {
		return nil, errors.New("scenario has no steps")
	}
	for i, step := range scenario.Steps {
		if (step.Case == "") == (step.Config == "") {
			return nil, fmt.Errorf("step %d: exactly one of case and config is required", i+1)
		}
		if step.Sweep != nil && step.Sweep.Step <= 0 {
			return nil, fmt.Errorf("step %d: sweep step must be positive", i+1)
		}
		if step.Sweep != nil && step.Sweep.To < step.Sweep.From {
			return nil, fmt.Errorf("step %d: sweep ends before it starts", i+1)
		}
	}
	return &scenario, nil
}

// Build resolves the case of a step with its overrides applied.
func (s *Scenario) Build(i int, registry *experiment.Registry) (*config.Config, error) {
	step := s.Steps[i]

	var cfg *config.Config
	if step.Config != "" {
		path := step.Config
		if !filepath.IsAbs(path) && s.dir != "" {
			path = filepath.Join(s.dir, path)
		}
		c, err := config.Load(path)
		if err != nil {
			return nil, err
		}
		cfg = c
	} else {
		cfg = config.GetPreset(step.Case)
		if cfg == nil {
			return nil, fmt.Errorf("unknown case: %s", step.Case)
		}
	}

	if step.AlphaDeg != nil {
		cfg.Flow.AlphaDeg = *step.AlphaDeg
	}
	if step.BetaDeg != nil {
		cfg.Flow.BetaDeg = *step.BetaDeg
	}
	if len(step.Params) > 0 {
		surface := step.Surface
		if surface == "" {
			surface = "wing"
		}
		if err := registry.Apply(cfg, surface, step.Params); err != nil {
			return nil, err
		}
	}
	if step.SaveAs != "" {
		cfg.Name = step.SaveAs
	}
	return cfg, nil
}

// RunScenario executes all steps in order and stops at the first failure.
// Results of the steps completed so far are returned with the error.
func RunScenario(ctx context.Context, scenario *Scenario, registry *experiment.Registry, log *logrus.Logger) ([]StepResult, error) {
	results := make([]StepResult, 0, len(scenario.Steps))

	for i, step := range scenario.Steps {
		cfg, err := scenario.Build(i, registry)
		if err != nil {
			return results, fmt.Errorf("step %d: %w", i+1, err)
		}
		if log != nil {
			log.WithFields(logrus.Fields{"step": i + 1, "case": cfg.Name}).Info("running scenario step")
		}

		exp := experiment.New(cfg, log)
		if err := exp.Setup(); err != nil {
			return results, fmt.Errorf("step %d setup: %w", i+1, err)
		}

		out := StepResult{Index: i, Name: cfg.Name, Sweep: step.Sweep != nil}
		if step.Sweep != nil {
			var alphas []float64
			alphas, err = experiment.AlphaRange(step.Sweep.From, step.Sweep.To, step.Sweep.Step)
			if err != nil {
				return results, fmt.Errorf("step %d sweep: %w", i+1, err)
			}
			out.Results, err = exp.Sweep(ctx, alphas)
		} else {
			var res *vortex.Results
			res, err = exp.Run(ctx)
			out.Results = []*vortex.Results{res}
		}
		if err != nil {
			return results, fmt.Errorf("step %d run: %w", i+1, err)
		}

		results = append(results, out)
	}

	return results, nil
}

// ParameterSweep varies one design parameter of a case.
type ParameterSweep struct {
	Case      *config.Config
	Surface   string
	ParamName string
	ParamMin  float64
	ParamMax  float64
	NumSteps  int
}

type SweepResult struct {
	ParamValue float64
	Results    *vortex.Results
}

// RunSweep solves the case once per parameter value, evenly spaced from
// ParamMin to ParamMax.
func RunSweep(ctx context.Context, sweep *ParameterSweep, registry *experiment.Registry, log *logrus.Logger) ([]SweepResult, error) {
	if sweep.NumSteps < 1 {
		return nil, fmt.Errorf("sweep needs at least one step")
	}
	if _, err := registry.GetParameter(sweep.ParamName); err != nil {
		return nil, err
	}

	paramStep := 0.0
	if sweep.NumSteps > 1 {
		paramStep = (sweep.ParamMax - sweep.ParamMin) / float64(sweep.NumSteps-1)
	}

	results := make([]SweepResult, 0, sweep.NumSteps)
	for i := 0; i < sweep.NumSteps; i++ {
		paramVal := sweep.ParamMin + float64(i)*paramStep

		cfg := sweep.Case.Clone()
		if err := registry.Apply(cfg, sweep.Surface, map[string]float64{sweep.ParamName: paramVal}); err != nil {
			return nil, err
		}

		exp := experiment.New(cfg, log)
		if err := exp.Setup(); err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}
		res, err := exp.Run(ctx)
		if err != nil {
			return nil, fmt.Errorf("%s=%g: %w", sweep.ParamName, paramVal, err)
		}

		results = append(results, SweepResult{ParamValue: paramVal, Results: res})
		if log != nil {
			log.WithFields(logrus.Fields{sweep.ParamName: paramVal, "CL": res.CL, "e": res.SpanEfficiency}).Debug("sweep point")
		}
	}

	return results, nil
}
