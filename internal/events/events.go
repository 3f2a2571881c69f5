package events

import "Imperium/internal/model"

// Crisis event kinds. Each bridge publishes a subset.
const (
	KindEconomicCrisis        = "economic_crisis"
	KindPopulationUnrest      = "population_unrest"
	KindTradeCrisis           = "trade_crisis"
	KindTradeImbalance        = "trade_imbalance"
	KindResearchFundingCrisis = "research_funding_crisis"
	KindImplementationCrisis  = "implementation_crisis"
	KindBrainDrain            = "brain_drain"
	KindLowResearchROI        = "low_research_roi"
	KindDiplomaticIsolation   = "diplomatic_isolation"
	KindWarExhaustion         = "war_exhaustion"
	KindCriticalDependency    = "critical_dependency"
)

// Crisis is the onset notification from a bridge crisis detector. It fires
// once per false-to-true transition; there is no matching resolved event,
// consumers poll bridge severity instead.
type Crisis struct {
	CrisisKind string
	Realm      model.EntityID
	Severity   float64
	Causes     []string
}

func (c Crisis) Kind() string { return c.CrisisKind }

// SanctionImposed is published when a sanction takes effect.
type SanctionImposed struct {
	SanctionID    string
	Imposer       model.EntityID
	Target        model.EntityID
	Type          model.SanctionType
	Severity      model.SanctionSeverity
	Reason        string
	MonthlyDamage int64
}

func (SanctionImposed) Kind() string { return "sanction_imposed" }

// SanctionLifted is published when a sanction expires or is lifted early.
type SanctionLifted struct {
	SanctionID   string
	Imposer      model.EntityID
	Target       model.EntityID
	TotalDamage  int64
	MonthsActive int
}

func (SanctionLifted) Kind() string { return "sanction_lifted" }

// TradeAgreementEstablished is published when two realms sign an agreement.
type TradeAgreementEstablished struct {
	AgreementID           string
	RealmA                model.EntityID
	RealmB                model.EntityID
	Type                  model.AgreementType
	ExpectedTradeIncrease float64
	DurationYears         int
}

func (TradeAgreementEstablished) Kind() string { return "trade_agreement_established" }

// TradeAgreementExpired is published when an agreement lapses or is
// terminated.
type TradeAgreementExpired struct {
	AgreementID         string
	RealmA              model.EntityID
	RealmB              model.EntityID
	TotalValueGenerated float64
}

func (TradeAgreementExpired) Kind() string { return "trade_agreement_expired" }

// WarEconomicDamage is published each month a war drags on.
type WarEconomicDamage struct {
	Aggressor       model.EntityID
	Defender        model.EntityID
	MonthlyCost     int64
	TradeDisruption int64
	MonthsAtWar     int
}

func (WarEconomicDamage) Kind() string { return "war_economic_damage" }
