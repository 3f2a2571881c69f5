package world

import (
	"sort"
	"strconv"
	"sync"

	"Imperium/internal/model"
)

// Table is a typed component table keyed by entity id.
type Table[T any] struct {
	mu   sync.RWMutex
	recs map[model.EntityID]*T
	init func() *T
}

// NewTable creates an empty table. init produces a record with subsystem
// defaults whenever an entity is added.
func NewTable[T any](init func() *T) *Table[T] {
	return &Table[T]{recs: make(map[model.EntityID]*T), init: init}
}

// Get returns the record for id, or nil if the entity has no component.
func (t *Table[T]) Get(id model.EntityID) *T {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.recs[id]
}

// Add creates the record for id, or returns the existing one.
func (t *Table[T]) Add(id model.EntityID) *T {
	t.mu.Lock()
	defer t.mu.Unlock()
	if r, ok := t.recs[id]; ok {
		return r
	}
	r := t.init()
	t.recs[id] = r
	return r
}

// Remove drops the record for id.
func (t *Table[T]) Remove(id model.EntityID) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.recs, id)
}

// IDs returns all entity ids in ascending order.
func (t *Table[T]) IDs() []model.EntityID {
	t.mu.RLock()
	defer t.mu.RUnlock()
	ids := make([]model.EntityID, 0, len(t.recs))
	for id := range t.recs {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	return ids
}

// Len returns the number of entities in the table.
func (t *Table[T]) Len() int {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return len(t.recs)
}

// Store groups the per-subsystem component tables. Bridges depend only on
// the tables they consume, never on each other.
type Store struct {
	Population *Table[PopulationRecord]
	Economy    *Table[EconomyRecord]
	Trade      *Table[TradeRouteRecord]
	Research   *Table[ResearchRecord]
	Diplomacy  *Table[DiplomacyRecord]

	names map[model.EntityID]string
}

// NewStore creates an empty store with subsystem defaults wired in.
func NewStore() *Store {
	return &Store{
		Population: NewTable(func() *PopulationRecord {
			return &PopulationRecord{
				AverageHappiness: 0.5,
				AverageWealth:    30.0,
				AverageLiteracy:  0.3,
				EmploymentRate:   0.7,
			}
		}),
		Economy: NewTable(func() *EconomyRecord {
			return &EconomyRecord{
				TaxRate:               0.15,
				TradeEfficiency:       1.0,
				TaxEfficiency:         1.0,
				ProductionEfficiency:  1.0,
				InfrastructureQuality: 0.6,
				InflationRate:         0.02,
				EconomicGrowth:        0.03,
				AverageWages:          50.0,
				PriceIndex:            100.0,
				Production:            make(map[string]float64),
				TradeSanctionFactor:   1.0,
				TechTradeBonus:        1.0,
				TechTaxBonus:          1.0,
			}
		}),
		Trade: NewTable(func() *TradeRouteRecord {
			return &TradeRouteRecord{Efficiency: 1.0}
		}),
		Research: NewTable(func() *ResearchRecord {
			return &ResearchRecord{
				Implemented:        make(map[model.TechCategory]int),
				CategoryInvestment: make(map[model.TechCategory]float64),
			}
		}),
		Diplomacy: NewTable(func() *DiplomacyRecord {
			return &DiplomacyRecord{Relations: make(map[model.EntityID]*Relation)}
		}),
		names: make(map[model.EntityID]string),
	}
}

// AddRealm creates all five components for a realm. Names are set once at
// load time and read-only afterwards.
func (s *Store) AddRealm(id model.EntityID, name string) {
	s.Population.Add(id)
	s.Economy.Add(id)
	s.Trade.Add(id)
	s.Research.Add(id)
	s.Diplomacy.Add(id)
	if name != "" {
		s.names[id] = name
	}
}

// Name returns the realm's display name, or its id rendered as a number.
func (s *Store) Name(id model.EntityID) string {
	if n, ok := s.names[id]; ok {
		return n
	}
	return "realm-" + strconv.FormatUint(uint64(id), 10)
}
