package generator

import "errors"

// Report summarises a generation run.
type Report struct {
	Targets []*TargetReport
}

// TargetReport records what one target produced.
type TargetReport struct {
	Target   string
	OutDir   string
	Models   int
	Services int
	Written  int
	// Skipped holds schemas that produced no artifact for a known reason
	Skipped []*Diagnostic
	// Failures holds per-identifier errors; the run continued past them
	Failures []error
}

// Err joins every failure of every target, or returns nil.
func (r *Report) Err() error {
	if r == nil {
		return nil
	}
	var errs []error
	for _, t := range r.Targets {
		errs = append(errs, t.Failures...)
	}
	return errors.Join(errs...)
}

// Diagnostics returns every skipped schema across targets.
func (r *Report) Diagnostics() []*Diagnostic {
	if r == nil {
		return nil
	}
	var out []*Diagnostic
	for _, t := range r.Targets {
		out = append(out, t.Skipped...)
	}
	return out
}
