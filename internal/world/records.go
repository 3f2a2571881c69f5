package world

import (
	"sync"

	"Imperium/internal/model"
)

// PopulationRecord is the demographic state of a realm.
type PopulationRecord struct {
	TotalPopulation  float64
	AverageHappiness float64 // 0..1
	AverageWealth    float64 // 0..100
	AverageLiteracy  float64 // 0..1
	EmploymentRate   float64 // 0..1
}

// EconomyRecord is the fiscal state of a realm. Treasury mutation goes
// through treasury.Manager, never directly.
type EconomyRecord struct {
	Treasury                 int64
	TaxRate                  float64 // 0..1
	TaxIncome                float64
	TradeIncome              float64
	TradeEfficiency          float64
	TaxEfficiency            float64
	ProductionEfficiency     float64
	InfrastructureQuality    float64 // 0..1
	InfrastructureInvestment float64
	InflationRate            float64
	EconomicGrowth           float64
	AverageWages             float64
	NetIncome                float64
	PriceIndex               float64
	MonthlyExpenses          float64
	Production               map[string]float64

	// Multiplicative factors other subsystems own. Each writer SETS its
	// factor so reapplication never compounds.
	TradeSanctionFactor float64 // diplomacy; 1.0 = unsanctioned
	TechTradeBonus      float64 // technology
	TechTaxBonus        float64 // technology
}

// TradeRoute is one commercial link between two realms.
type TradeRoute struct {
	ID     string
	From   model.EntityID
	To     model.EntityID
	Volume float64
	Active bool
}

// TradeRouteRecord holds a realm's routes. Route mutation goes through
// Update so the read-modify-write cycle runs under the record lock.
type TradeRouteRecord struct {
	mu               sync.Mutex
	routes           []TradeRoute
	MerchantActivity float64
	Efficiency       float64
}

// Update applies fn to the route slice under the record lock.
func (r *TradeRouteRecord) Update(fn func(routes []TradeRoute) []TradeRoute) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.routes = fn(r.routes)
}

// Routes returns a copy of the route slice.
func (r *TradeRouteRecord) Routes() []TradeRoute {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]TradeRoute, len(r.routes))
	copy(out, r.routes)
	return out
}

// ActiveCount returns the number of active routes.
func (r *TradeRouteRecord) ActiveCount() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	n := 0
	for _, rt := range r.routes {
		if rt.Active {
			n++
		}
	}
	return n
}

// SetRoutesBetween toggles every route touching the other realm and returns
// how many routes changed state.
func (r *TradeRouteRecord) SetRoutesBetween(other model.EntityID, active bool) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	changed := 0
	for i := range r.routes {
		rt := &r.routes[i]
		if (rt.From == other || rt.To == other) && rt.Active != active {
			rt.Active = active
			changed++
		}
	}
	return changed
}

// ResearchRecord is the technology state of a realm.
type ResearchRecord struct {
	Implemented        map[model.TechCategory]int
	Universities       int
	Libraries          int
	Workshops          int
	Scholars           int
	MonthlyBudget      float64
	CategoryInvestment map[model.TechCategory]float64
	TradeNetworkBonus  float64
	StabilityBonus     float64
}

// TechLevel is the total number of implemented technologies.
func (r *ResearchRecord) TechLevel() int {
	total := 0
	for _, n := range r.Implemented {
		total += n
	}
	return total
}

// Relation is one realm's view of another.
type Relation struct {
	Opinion     int // -200..200
	TradeVolume float64
}

// DiplomacyRecord holds a realm's standing and bilateral relations.
type DiplomacyRecord struct {
	Prestige  float64
	Relations map[model.EntityID]*Relation
}

// Relation returns the relation with other, creating a neutral one on first
// contact.
func (d *DiplomacyRecord) Relation(other model.EntityID) *Relation {
	if r, ok := d.Relations[other]; ok {
		return r
	}
	r := &Relation{}
	d.Relations[other] = r
	return r
}

// AdjustOpinion shifts the opinion of other, clamped to [-200, 200].
func (d *DiplomacyRecord) AdjustOpinion(other model.EntityID, delta int) {
	r := d.Relation(other)
	r.Opinion += delta
	if r.Opinion > 200 {
		r.Opinion = 200
	}
	if r.Opinion < -200 {
		r.Opinion = -200
	}
}
