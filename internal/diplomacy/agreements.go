package diplomacy

import (
	"fmt"
	"sort"

	"Imperium/internal/events"
	"Imperium/internal/model"
)

// agreementID is deterministic and order-normalized: the same pair always
// yields the same id regardless of argument order.
func agreementID(a, b model.EntityID, t model.AgreementType) string {
	lo, hi := a, b
	if lo > hi {
		lo, hi = hi, lo
	}
	return fmt.Sprintf("agreement-%d-%d-%s", lo, hi, t)
}

// EstablishAgreement signs a trade agreement between two realms.
func (b *Bridge) EstablishAgreement(x, y model.EntityID, typ model.AgreementType, durationYears int, autoRenew bool) (string, error) {
	if x == y {
		return "", fmt.Errorf("agreement: realm %d cannot sign with itself", x)
	}
	if b.econ.Get(x) == nil || b.econ.Get(y) == nil {
		return "", fmt.Errorf("agreement: unknown realm in pair (%d, %d)", x, y)
	}
	if durationYears <= 0 {
		return "", fmt.Errorf("agreement: duration must be positive, got %d", durationYears)
	}

	id := agreementID(x, y, typ)
	b.mu.Lock()
	if _, exists := b.agreements[id]; exists {
		b.mu.Unlock()
		return "", fmt.Errorf("agreement %s already in force", id)
	}
	ag := &TradeAgreement{
		ID:             id,
		RealmA:         x,
		RealmB:         y,
		Type:           typ,
		TradeBonus:     BonusFor(typ),
		DurationYears:  durationYears,
		YearsRemaining: durationYears,
		AutoRenew:      autoRenew,
	}
	b.agreements[id] = ag
	b.mu.Unlock()

	b.bus.Publish(events.TradeAgreementEstablished{
		AgreementID:           id,
		RealmA:                x,
		RealmB:                y,
		Type:                  typ,
		ExpectedTradeIncrease: ag.TradeBonus,
		DurationYears:         durationYears,
	})
	return id, nil
}

// TerminateAgreement ends an agreement early, reversing its trade effect.
func (b *Bridge) TerminateAgreement(id string) bool {
	b.mu.Lock()
	ag, ok := b.agreements[id]
	if !ok {
		b.mu.Unlock()
		return false
	}
	delete(b.agreements, id)
	b.mu.Unlock()

	b.bus.Publish(events.TradeAgreementExpired{
		AgreementID:         ag.ID,
		RealmA:              ag.RealmA,
		RealmB:              ag.RealmB,
		TotalValueGenerated: ag.TotalValueGenerated,
	})
	return true
}

// agreementBonusLocked returns the strongest multiplier covering the pair.
func (b *Bridge) agreementBonusLocked(x, y model.EntityID) float64 {
	bonus := 1.0
	for _, ag := range b.agreements {
		covers := (ag.RealmA == x && ag.RealmB == y) || (ag.RealmA == y && ag.RealmB == x)
		if covers && ag.TradeBonus > bonus {
			bonus = ag.TradeBonus
		}
	}
	return bonus
}

// updateAgreements pays out the monthly revenue bonus on every agreement.
func (b *Bridge) updateAgreements() {
	b.mu.Lock()
	ids := make([]string, 0, len(b.agreements))
	for id := range b.agreements {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	type payout struct {
		realm  model.EntityID
		amount int64
	}
	var payouts []payout
	for _, id := range ids {
		ag := b.agreements[id]
		ea := b.econ.Get(ag.RealmA)
		eb := b.econ.Get(ag.RealmB)
		if ea == nil || eb == nil {
			continue
		}
		base := (ea.TradeIncome + eb.TradeIncome) / 2
		revenue := base * (ag.TradeBonus - 1.0) * b.cfg.MonthlyRevenueRatio
		if revenue <= 0 {
			continue
		}
		ag.TotalValueGenerated += revenue * 2
		payouts = append(payouts,
			payout{ag.RealmA, int64(revenue)},
			payout{ag.RealmB, int64(revenue)})
	}
	b.mu.Unlock()

	for _, p := range payouts {
		b.treasury.AddMoney(p.realm, p.amount)
	}
}

// ageAgreements decrements every agreement one year; lapsed ones either
// renew in place or terminate with effect reversal.
func (b *Bridge) ageAgreements() {
	b.mu.Lock()
	ids := make([]string, 0, len(b.agreements))
	for id := range b.agreements {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	var lapsed []string
	for _, id := range ids {
		ag := b.agreements[id]
		ag.YearsRemaining--
		if ag.YearsRemaining > 0 {
			continue
		}
		if ag.AutoRenew {
			ag.YearsRemaining = ag.DurationYears
			continue
		}
		lapsed = append(lapsed, id)
	}
	b.mu.Unlock()

	for _, id := range lapsed {
		b.TerminateAgreement(id)
	}
}
