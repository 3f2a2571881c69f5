package bridge

import "Imperium/internal/model"

// SecondsPerDay converts the calendar's day count to in-game seconds.
const SecondsPerDay = 86400.0

// Bridge couples two subsystems. Once per tick the scheduler sweeps every
// entity the bridge tracks: the bridge computes effects from its primary
// side, contributions from the economic side, applies both, refreshes its
// histories and runs crisis detection.
type Bridge interface {
	Name() string
	Entities() []model.EntityID
	ShouldUpdate(id model.EntityID, now float64) bool
	UpdateEntity(id model.EntityID, now float64)
	Health(id model.EntityID) (balance, severity float64, ok bool)
	Marshal() Document
	Unmarshal(doc Document) bool
}

// State is the per-entity coupling state every bridge maintains.
type State struct {
	LastUpdate float64
	Balance    float64
	Crisis     CrisisState
}

// Due reports whether the update interval has elapsed. A zero last time
// means the state has never been updated.
func Due(last, now, intervalDays float64) bool {
	if last == 0 {
		return true
	}
	return now-last >= intervalDays*SecondsPerDay
}

func clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
