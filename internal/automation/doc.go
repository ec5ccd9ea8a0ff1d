// Package automation runs scripted batches of cases.
//
// A scenario is a YAML file listing steps. Each step names a built-in case
// or a case file, optionally overrides the flow angles or planform
// parameters, and either solves once or sweeps the angle of attack:
//
//	name: wing study
//	steps:
//	  - case: rectangular
//	    alpha_deg: 4
//	  - config: wing.yaml
//	    sweep: {from: -2, to: 8, step: 1}
//	  - case: tapered_swept
//	    params: {tip_twist: -3}
//	    save_as: washout
package automation
