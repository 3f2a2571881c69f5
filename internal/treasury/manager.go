package treasury

import (
	"fmt"
	"log"
	"sync"

	"Imperium/internal/model"
	"Imperium/internal/world"
)

// DefaultCeiling caps every treasury. Deposits saturate here instead of
// overflowing 32-bit save fields.
const DefaultCeiling int64 = 2_000_000_000

// Manager is the single write path to realm treasuries.
type Manager struct {
	mu      sync.Mutex
	econ    *world.Table[world.EconomyRecord]
	floor   int64
	ceiling int64
}

// NewManager creates a Manager over the economy table.
func NewManager(econ *world.Table[world.EconomyRecord], floor, ceiling int64) (*Manager, error) {
	if econ == nil {
		return nil, fmt.Errorf("treasury: economy table is required")
	}
	if ceiling <= 0 {
		ceiling = DefaultCeiling
	}
	if floor > ceiling {
		return nil, fmt.Errorf("treasury: floor %d above ceiling %d", floor, ceiling)
	}
	return &Manager{econ: econ, floor: floor, ceiling: ceiling}, nil
}

// SpendMoney withdraws amount from the realm's treasury. It fails when the
// realm is unknown, the amount is negative, or the balance would drop below
// the floor.
func (m *Manager) SpendMoney(id model.EntityID, amount int64) bool {
	if amount < 0 {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.econ.Get(id)
	if rec == nil {
		return false
	}
	if rec.Treasury-amount < m.floor {
		return false
	}
	rec.Treasury -= amount
	return true
}

// AddMoney deposits amount into the realm's treasury, saturating at the
// ceiling. Negative amounts are ignored.
func (m *Manager) AddMoney(id model.EntityID, amount int64) {
	if amount < 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.econ.Get(id)
	if rec == nil {
		return
	}
	if rec.Treasury > m.ceiling-amount {
		log.Printf("[WARN] treasury of realm %d at ceiling, deposit of %d clamped", id, amount)
		rec.Treasury = m.ceiling
		return
	}
	rec.Treasury += amount
}

// Balance returns the realm's treasury balance.
func (m *Manager) Balance(id model.EntityID) (int64, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	rec := m.econ.Get(id)
	if rec == nil {
		return 0, false
	}
	return rec.Treasury, true
}
