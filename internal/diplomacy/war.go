package diplomacy

import (
	"fmt"
	"sort"

	"Imperium/internal/events"
	"Imperium/internal/model"
)

// StartWar opens a war between two realms and disrupts the trade routes
// between them.
func (b *Bridge) StartWar(aggressor, defender model.EntityID) error {
	if aggressor == defender {
		return fmt.Errorf("war: realm %d cannot declare war on itself", aggressor)
	}
	key := warKey{aggressor, defender}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.wars[key]; exists {
		return fmt.Errorf("war between %d and %d already in progress", aggressor, defender)
	}

	disrupted := 0
	if rec := b.trade.Get(aggressor); rec != nil {
		disrupted += rec.SetRoutesBetween(defender, false)
	}
	if rec := b.trade.Get(defender); rec != nil {
		disrupted += rec.SetRoutesBetween(aggressor, false)
	}

	b.wars[key] = &WarEconomicImpact{
		Aggressor:              aggressor,
		Defender:               defender,
		MonthlyWarCost:         b.cfg.WarBaseCost,
		MonthlyTradeDisruption: b.cfg.WarBaseDisruption,
		DisruptedRoutes:        disrupted,
	}
	return nil
}

// EndWar closes a war and restores the disrupted routes.
func (b *Bridge) EndWar(aggressor, defender model.EntityID) bool {
	key := warKey{aggressor, defender}

	b.mu.Lock()
	defer b.mu.Unlock()
	if _, exists := b.wars[key]; !exists {
		return false
	}
	if rec := b.trade.Get(aggressor); rec != nil {
		rec.SetRoutesBetween(defender, true)
	}
	if rec := b.trade.Get(defender); rec != nil {
		rec.SetRoutesBetween(aggressor, true)
	}
	delete(b.wars, key)
	return true
}

// WarImpact returns the accumulated impact of an ongoing war.
func (b *Bridge) WarImpact(aggressor, defender model.EntityID) (WarEconomicImpact, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	w, ok := b.wars[warKey{aggressor, defender}]
	if !ok {
		return WarEconomicImpact{}, false
	}
	return *w, true
}

// processWarEconomics accrues one month of war costs on every open war.
// Costs escalate the longer a war drags on; totals only ever grow.
func (b *Bridge) processWarEconomics() {
	b.mu.Lock()
	keys := make([]warKey, 0, len(b.wars))
	for k := range b.wars {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].aggressor != keys[j].aggressor {
			return keys[i].aggressor < keys[j].aggressor
		}
		return keys[i].defender < keys[j].defender
	})

	var published []events.WarEconomicDamage
	for _, k := range keys {
		w := b.wars[k]
		w.MonthsAtWar++
		w.MonthlyWarCost = b.cfg.WarBaseCost + b.cfg.WarCostGrowth*int64(w.MonthsAtWar)
		w.MonthlyTradeDisruption = b.cfg.WarBaseDisruption + b.cfg.WarDisruptionGrowth*int64(w.MonthsAtWar)

		b.treasury.SpendMoney(w.Aggressor, w.MonthlyWarCost)
		b.treasury.SpendMoney(w.Defender, w.MonthlyWarCost)
		w.TotalCost += w.MonthlyWarCost * 2
		w.TotalTradeLoss += w.MonthlyTradeDisruption

		published = append(published, events.WarEconomicDamage{
			Aggressor:       w.Aggressor,
			Defender:        w.Defender,
			MonthlyCost:     w.MonthlyWarCost,
			TradeDisruption: w.MonthlyTradeDisruption,
			MonthsAtWar:     w.MonthsAtWar,
		})
	}
	b.mu.Unlock()

	for _, ev := range published {
		b.bus.Publish(ev)
	}
}
