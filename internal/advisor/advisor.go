package advisor

import (
	"fmt"

	"Imperium/internal/model"
)

// Intelligence is the economic picture the advisor consults. The diplomacy
// bridge implements it.
type Intelligence interface {
	TradeValue(x, y model.EntityID) float64
	DependencyLevel(realm, partner model.EntityID) float64
	EconomicLeverage(realm, target model.EntityID) float64
	SanctionImpact(id model.EntityID) float64
	ProjectedWarCost(months int) int64
	WouldWarHurtEconomy(realm, target model.EntityID) bool
}

// Treasury exposes realm balances to the advisor.
type Treasury interface {
	Balance(id model.EntityID) (int64, bool)
}

// Tiers defines the 6-level stance mapping.
var Tiers = []struct {
	MinScore float64
	Tier     model.CounselTier
}{
	{1.5, model.CounselTier{Label: "press the advantage", Aggression: 1.0}},
	{0.8, model.CounselTier{Label: "favorable", Aggression: 0.8}},
	{0.0, model.CounselTier{Label: "viable", Aggression: 0.6}},
	{-0.8, model.CounselTier{Label: "costly", Aggression: 0.4}},
	{-1.5, model.CounselTier{Label: "ruinous", Aggression: 0.2}},
}

// DefaultTier is the lowest stance for scores below -1.5.
var DefaultTier = model.CounselTier{Label: "avoid at all costs", Aggression: 0.0}

// mapTier maps a total score to a CounselTier.
func mapTier(totalScore float64) model.CounselTier {
	for _, t := range Tiers {
		if totalScore >= t.MinScore {
			return t.Tier
		}
	}
	return DefaultTier
}

// Advisor scores prospective wars on their economic merits.
type Advisor struct {
	intel    Intelligence
	treasury Treasury
}

// New creates an Advisor. Both collaborators are required.
func New(intel Intelligence, treasury Treasury) (*Advisor, error) {
	if intel == nil {
		return nil, fmt.Errorf("advisor: intelligence source is required")
	}
	if treasury == nil {
		return nil, fmt.Errorf("advisor: treasury is required")
	}
	return &Advisor{intel: intel, treasury: treasury}, nil
}

// CounselWar computes the full economic counsel for declaring war on
// target.
func (a *Advisor) CounselWar(realm, target model.EntityID) *model.WarCounsel {
	tradeValue := a.intel.TradeValue(realm, target)
	dependency := a.intel.DependencyLevel(realm, target)
	leverage := a.intel.EconomicLeverage(realm, target)
	impact := a.intel.SanctionImpact(realm)
	balance, _ := a.treasury.Balance(realm)

	f1 := scoreTradeValue(tradeValue)
	f2 := scoreDependency(dependency)
	f3 := scoreLeverage(leverage)
	f4 := scoreWarChest(balance, a.intel.ProjectedWarCost(12))
	f5 := scoreSanctionExposure(impact)

	totalScore := f1.Weighted + f2.Weighted + f3.Weighted + f4.Weighted + f5.Weighted

	counsel := &model.WarCounsel{
		Realm:      realm,
		Target:     target,
		Factors:    []model.FactorScore{f1, f2, f3, f4, f5},
		TotalScore: totalScore,
		Tier:       mapTier(totalScore),
	}

	if a.intel.WouldWarHurtEconomy(realm, target) {
		counsel.Blocked = true
		counsel.WarningMsg = fmt.Sprintf(
			"war against realm %d would wreck the economy: trade value %.0f, dependency %.2f",
			target, tradeValue, dependency)
	}

	return counsel
}
