package diplomacy

import "Imperium/internal/model"

// Dependency returns the current assessment of realm's dependency on
// partner, if one exists.
func (b *Bridge) Dependency(realm, partner model.EntityID) (EconomicDependency, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	dep, ok := b.dependencies[depKey{realm, partner}]
	if !ok {
		return EconomicDependency{}, false
	}
	return *dep, true
}

// updateDependencies recomputes every realm's dependency on each of its
// trade partners.
func (b *Bridge) updateDependencies() {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.updateDependenciesLocked()
}

func (b *Bridge) updateDependenciesLocked() {
	b.dependencies = make(map[depKey]*EconomicDependency)
	for _, realm := range b.diplo.IDs() {
		rec := b.diplo.Get(realm)
		econ := b.econ.Get(realm)
		if rec == nil || econ == nil || econ.TradeIncome <= 0 {
			continue
		}
		for _, p := range b.routePartnersLocked(realm) {
			rec.Relation(p)
		}
		for partner := range rec.Relations {
			monthlyRevenue := b.tradeValueLocked(realm, partner) * b.cfg.MonthlyRevenueRatio
			tradeDep := monthlyRevenue / econ.TradeIncome
			if tradeDep > 1 {
				tradeDep = 1
			}
			b.dependencies[depKey{realm, partner}] = b.assessDependency(realm, partner, tradeDep)
		}
	}
}

func (b *Bridge) assessDependency(realm, partner model.EntityID, tradeDep float64) *EconomicDependency {
	dep := &EconomicDependency{
		Realm:               realm,
		Partner:             partner,
		TradeDependency:     tradeDep,
		ResourceDependency:  tradeDep * b.cfg.ResourceDependencyRatio,
		FinancialDependency: b.cfg.FinancialDependencyDefault,
	}
	dep.Overall = 0.4*dep.TradeDependency + 0.4*dep.ResourceDependency + 0.2*dep.FinancialDependency
	dep.Vulnerability = dep.Overall * (1.0 + 0.5*dep.ResourceDependency)
	dep.MonthsToCollapse = monthsToCollapse(dep.Overall)
	return dep
}

// monthsToCollapse estimates how long the realm could withstand a total
// cutoff from the partner.
func monthsToCollapse(overall float64) int {
	switch {
	case overall > 0.8:
		return 3
	case overall > 0.6:
		return 6
	case overall > 0.4:
		return 12
	default:
		return 24
	}
}
