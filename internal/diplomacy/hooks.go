package diplomacy

import (
	"log"

	"Imperium/internal/model"
)

// Hooks called by the diplomacy layer when political events land. Each
// translates a political act into its economic consequences.

// OnAllianceFormed grants allies a generous long-running trade agreement.
func (b *Bridge) OnAllianceFormed(x, y model.EntityID) {
	if _, err := b.EstablishAgreement(x, y, model.AgreementCustomsUnion, 20, true); err != nil {
		log.Printf("[WARN] alliance agreement between %d and %d: %v", x, y, err)
	}
}

// OnAllianceBroken terminates the alliance's trade agreement.
func (b *Bridge) OnAllianceBroken(x, y model.EntityID) {
	b.TerminateAgreement(agreementID(x, y, model.AgreementCustomsUnion))
}

// OnTreatyViolation answers a violation with a moderate six-month sanction.
func (b *Bridge) OnTreatyViolation(violator, victim model.EntityID) {
	_, err := b.ImposeSanction(victim, violator, model.SanctionTradeEmbargo,
		model.SeverityModerate, "treaty violation", 6)
	if err != nil {
		log.Printf("[WARN] treaty violation sanction on %d: %v", violator, err)
	}
}

// OnDiplomaticGift transfers treasury between realms and warms relations.
func (b *Bridge) OnDiplomaticGift(from, to model.EntityID, amount int64) bool {
	if !b.treasury.SpendMoney(from, amount) {
		return false
	}
	b.treasury.AddMoney(to, amount)
	if rec := b.diplo.Get(to); rec != nil {
		opinion := int(amount / 100)
		if opinion > 50 {
			opinion = 50
		}
		rec.AdjustOpinion(from, opinion)
	}
	return true
}
