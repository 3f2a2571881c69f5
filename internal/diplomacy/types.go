package diplomacy

import (
	"math"

	"Imperium/internal/model"
)

// SeverityParams fixes the economic weight of a sanction tier.
type SeverityParams struct {
	TradeReduction float64
	CostMultiplier float64
	OpinionPenalty int
	MonthlyDamage  int64
}

var severityTable = map[model.SanctionSeverity]SeverityParams{
	model.SeverityMild:     {TradeReduction: 0.25, CostMultiplier: 1.2, OpinionPenalty: -20, MonthlyDamage: 50},
	model.SeverityModerate: {TradeReduction: 0.50, CostMultiplier: 1.5, OpinionPenalty: -50, MonthlyDamage: 150},
	model.SeveritySevere:   {TradeReduction: 0.75, CostMultiplier: 2.0, OpinionPenalty: -100, MonthlyDamage: 300},
	model.SeverityTotal:    {TradeReduction: 1.00, CostMultiplier: 3.0, OpinionPenalty: -200, MonthlyDamage: 500},
}

// ParamsFor returns the tier parameters for a severity.
func ParamsFor(s model.SanctionSeverity) SeverityParams {
	if p, ok := severityTable[s]; ok {
		return p
	}
	return severityTable[model.SeverityMild]
}

// Sanction is an active economic sanction.
type Sanction struct {
	ID             string
	Imposer        model.EntityID
	Target         model.EntityID
	Type           model.SanctionType
	Severity       model.SanctionSeverity
	Reason         string
	MonthsElapsed  int
	DurationMonths int // -1 means indefinite
	TotalDamage    int64
}

// RampFactor is the share of the sanction in force. Sanctions ramp up
// linearly over three months.
func (s *Sanction) RampFactor() float64 {
	return math.Min(1.0, float64(s.MonthsElapsed)/3.0)
}

// EffectiveReduction is the trade reduction currently in force.
func (s *Sanction) EffectiveReduction() float64 {
	return ParamsFor(s.Severity).TradeReduction * s.RampFactor()
}

// IsExpired reports whether the sanction has run its duration.
func (s *Sanction) IsExpired() bool {
	return s.DurationMonths >= 0 && s.MonthsElapsed >= s.DurationMonths
}

// TradeAgreement is an active bilateral trade agreement.
type TradeAgreement struct {
	ID                  string
	RealmA              model.EntityID
	RealmB              model.EntityID
	Type                model.AgreementType
	TradeBonus          float64 // multiplier on trade value
	DurationYears       int
	YearsRemaining      int
	AutoRenew           bool
	TotalValueGenerated float64
}

var agreementBonus = map[model.AgreementType]float64{
	model.AgreementPreferential:  1.10,
	model.AgreementFreeTrade:     1.25,
	model.AgreementCustomsUnion:  1.40,
	model.AgreementEconomicUnion: 1.60,
}

// BonusFor returns the trade multiplier for an agreement type.
func BonusFor(t model.AgreementType) float64 {
	if b, ok := agreementBonus[t]; ok {
		return b
	}
	return 1.0
}

// EconomicDependency describes how much one realm depends on a partner.
type EconomicDependency struct {
	Realm               model.EntityID
	Partner             model.EntityID
	TradeDependency     float64
	ResourceDependency  float64
	FinancialDependency float64
	Overall             float64
	Vulnerability       float64
	MonthsToCollapse    int
}

// WarEconomicImpact accumulates the economic damage of an ongoing war.
type WarEconomicImpact struct {
	Aggressor              model.EntityID
	Defender               model.EntityID
	MonthsAtWar            int
	MonthlyWarCost         int64
	MonthlyTradeDisruption int64
	TotalCost              int64
	TotalTradeLoss         int64
	DisruptedRoutes        int
}
