package bridge

import "math"

// CrisisState carries the hysteresis severity and the per-kind edge flags.
type CrisisState struct {
	Severity float64
	Flags    map[string]bool
}

func NewCrisisState() CrisisState {
	return CrisisState{Flags: make(map[string]bool)}
}

// Active reports whether any crisis flag is set.
func (cs *CrisisState) Active() bool {
	for _, v := range cs.Flags {
		if v {
			return true
		}
	}
	return false
}

// Predicate is one crisis condition a bridge evaluates each period.
type Predicate struct {
	Kind   string
	Holds  bool
	Causes []string
}

// Onset is emitted once per false-to-true transition of a predicate.
type Onset struct {
	Kind     string
	Severity float64
	Causes   []string
}

// Detector is the shared crisis algorithm: edge-triggered onset events and
// a severity value with hysteresis. Severity climbs by IncreaseStep while
// any predicate holds, decays by DecreaseStep otherwise, and the edge flags
// only rearm once severity falls below ResetThreshold.
type Detector struct {
	IncreaseStep   float64
	DecreaseStep   float64
	ResetThreshold float64
}

// NewDetector returns a Detector with the standard decay and reset values.
func NewDetector(increaseStep float64) Detector {
	return Detector{IncreaseStep: increaseStep, DecreaseStep: 0.05, ResetThreshold: 0.1}
}

// Run folds one period's predicates into cs and returns the onsets that
// fired. Onset severity is the post-update value.
func (d Detector) Run(cs *CrisisState, preds []Predicate) []Onset {
	if cs.Flags == nil {
		cs.Flags = make(map[string]bool)
	}

	var onsets []Onset
	any := false
	for _, p := range preds {
		if !p.Holds {
			continue
		}
		any = true
		if !cs.Flags[p.Kind] {
			cs.Flags[p.Kind] = true
			onsets = append(onsets, Onset{Kind: p.Kind, Causes: p.Causes})
		}
	}

	if any {
		cs.Severity = math.Min(1.0, cs.Severity+d.IncreaseStep)
	} else {
		cs.Severity = math.Max(0.0, cs.Severity-d.DecreaseStep)
		if cs.Severity < d.ResetThreshold {
			clear(cs.Flags)
		}
	}

	for i := range onsets {
		onsets[i].Severity = cs.Severity
	}
	return onsets
}
