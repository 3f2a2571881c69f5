package diplomacy

import (
	"fmt"
	"log"
	"sort"

	"Imperium/internal/events"
	"Imperium/internal/model"
)

// ImposeSanction places a sanction on target. Duration -1 keeps it in force
// until lifted. The economic effect ramps in over three months; the ids are
// sequential so replays produce identical histories.
func (b *Bridge) ImposeSanction(imposer, target model.EntityID, typ model.SanctionType, severity model.SanctionSeverity, reason string, durationMonths int) (string, error) {
	if imposer == target {
		return "", fmt.Errorf("sanction: realm %d cannot sanction itself", imposer)
	}
	if b.econ.Get(target) == nil {
		return "", fmt.Errorf("sanction: unknown target realm %d", target)
	}

	b.mu.Lock()
	b.sanctionSeq++
	s := &Sanction{
		ID:             fmt.Sprintf("sanction-%d", b.sanctionSeq),
		Imposer:        imposer,
		Target:         target,
		Type:           typ,
		Severity:       severity,
		Reason:         reason,
		DurationMonths: durationMonths,
	}
	b.sanctions[s.ID] = s
	params := ParamsFor(severity)

	if rec := b.diplo.Get(target); rec != nil {
		rec.AdjustOpinion(imposer, params.OpinionPenalty)
	}
	b.applySanctionFactorLocked(target)
	b.mu.Unlock()

	b.bus.Publish(events.SanctionImposed{
		SanctionID:    s.ID,
		Imposer:       imposer,
		Target:        target,
		Type:          typ,
		Severity:      severity,
		Reason:        reason,
		MonthlyDamage: params.MonthlyDamage,
	})
	return s.ID, nil
}

// LiftSanction removes a sanction. The target's trade efficiency factor is
// recomputed from the remaining sanctions, so lifting the last one restores
// it to exactly 1.0.
func (b *Bridge) LiftSanction(id string) bool {
	b.mu.Lock()
	s, ok := b.sanctions[id]
	if !ok {
		b.mu.Unlock()
		return false
	}
	delete(b.sanctions, id)
	b.applySanctionFactorLocked(s.Target)
	b.mu.Unlock()

	b.bus.Publish(events.SanctionLifted{
		SanctionID:   s.ID,
		Imposer:      s.Imposer,
		Target:       s.Target,
		TotalDamage:  s.TotalDamage,
		MonthsActive: s.MonthsElapsed,
	})
	return true
}

// ActiveSanctions returns the sanctions currently on a realm, oldest first.
func (b *Bridge) ActiveSanctions(target model.EntityID) []*Sanction {
	b.mu.Lock()
	defer b.mu.Unlock()
	var out []*Sanction
	for _, s := range b.sanctions {
		if s.Target == target {
			cp := *s
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// updateSanctions ages every sanction one month, applies monthly damage and
// lifts the expired ones.
func (b *Bridge) updateSanctions() {
	b.mu.Lock()
	ids := make([]string, 0, len(b.sanctions))
	for id := range b.sanctions {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var expired []string
	targets := make(map[model.EntityID]bool)
	for _, id := range ids {
		s := b.sanctions[id]
		s.MonthsElapsed++
		targets[s.Target] = true

		damage := ParamsFor(s.Severity).MonthlyDamage
		if b.treasury.SpendMoney(s.Target, damage) {
			s.TotalDamage += damage
		} else {
			log.Printf("[WARN] sanction %s: target %d cannot absorb further damage", s.ID, s.Target)
		}

		if s.IsExpired() {
			expired = append(expired, id)
		}
	}
	for target := range targets {
		b.applySanctionFactorLocked(target)
	}
	b.mu.Unlock()

	for _, id := range expired {
		b.LiftSanction(id)
	}
}

// applySanctionFactorLocked SETS the target's sanction factor from the
// currently active sanctions. Setting rather than multiplying keeps monthly
// reapplication drift-free.
func (b *Bridge) applySanctionFactorLocked(target model.EntityID) {
	econ := b.econ.Get(target)
	if econ == nil {
		return
	}
	econ.TradeSanctionFactor = 1.0 - b.sanctionImpactLocked(target)*0.5
}

func (b *Bridge) refreshSanctionFactorsLocked() {
	for _, id := range b.econ.IDs() {
		b.applySanctionFactorLocked(id)
	}
}
