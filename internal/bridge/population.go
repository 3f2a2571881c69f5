package bridge

import (
	"fmt"
	"math"
	"sync"

	"Imperium/internal/events"
	"Imperium/internal/model"
	"Imperium/internal/treasury"
	"Imperium/internal/world"
)

// PopulationConfig holds tuning constants for the population coupling.
type PopulationConfig struct {
	UpdateIntervalDays float64 `yaml:"update_interval_days"`
	HistorySize        int     `yaml:"history_size"`

	TaxBaseEffect       float64 `yaml:"tax_base_effect"`
	TaxScaling          float64 `yaml:"tax_scaling"`
	UnemploymentPenalty float64 `yaml:"unemployment_penalty"`
	WageScaling         float64 `yaml:"wage_scaling"`
	InequalityThreshold float64 `yaml:"inequality_threshold"`
	InequalityPenalty   float64 `yaml:"inequality_penalty"`

	LiteracyProductivityBonus  float64 `yaml:"literacy_productivity_bonus"`
	HappinessProductivityScale float64 `yaml:"happiness_productivity_scale"`

	TaxablePopulationRatio     float64 `yaml:"taxable_population_ratio"`
	BaseTaxPerCapita           float64 `yaml:"base_tax_per_capita"`
	ConsumerSpendingMultiplier float64 `yaml:"consumer_spending_multiplier"`
	LuxuryWealthThreshold      float64 `yaml:"luxury_wealth_threshold"`
	LuxuryDemandMultiplier     float64 `yaml:"luxury_demand_multiplier"`

	InfrastructureGoodThreshold float64 `yaml:"infrastructure_good_threshold"`
	InfrastructureCapacityBonus float64 `yaml:"infrastructure_capacity_bonus"`
	WealthTradeMultiplier       float64 `yaml:"wealth_trade_multiplier"`

	OutputCrisisThreshold        float64 `yaml:"output_crisis_threshold"`
	HappinessCrisisThreshold     float64 `yaml:"happiness_crisis_threshold"`
	EmploymentCrisisThreshold    float64 `yaml:"employment_crisis_threshold"`
	TaxEfficiencyCrisisThreshold float64 `yaml:"tax_efficiency_crisis_threshold"`
	CrisisIncreaseStep           float64 `yaml:"crisis_increase_step"`
}

// DefaultPopulationConfig returns the baseline tuning.
func DefaultPopulationConfig() PopulationConfig {
	return PopulationConfig{
		UpdateIntervalDays: 1.0,
		HistorySize:        12,

		TaxBaseEffect:       -0.5,
		TaxScaling:          -0.3,
		UnemploymentPenalty: -0.3,
		WageScaling:         0.2,
		InequalityThreshold: 0.4,
		InequalityPenalty:   0.4,

		LiteracyProductivityBonus:  0.3,
		HappinessProductivityScale: 0.2,

		TaxablePopulationRatio:     0.8,
		BaseTaxPerCapita:           10.0,
		ConsumerSpendingMultiplier: 0.6,
		LuxuryWealthThreshold:      50.0,
		LuxuryDemandMultiplier:     0.1,

		InfrastructureGoodThreshold: 0.7,
		InfrastructureCapacityBonus: 0.5,
		WealthTradeMultiplier:       0.1,

		OutputCrisisThreshold:        0.3,
		HappinessCrisisThreshold:     0.3,
		EmploymentCrisisThreshold:    0.6,
		TaxEfficiencyCrisisThreshold: 0.5,
		CrisisIncreaseStep:           0.1,
	}
}

// PopulationEffects is what the economy currently does to the population.
type PopulationEffects struct {
	TaxRate               float64
	TaxHappinessModifier  float64
	EmploymentRate        float64
	AverageWages          float64
	WealthInequality      float64
	TradeIncomePerCapita  float64
	InfrastructureQuality float64
}

// PopulationContribution is what the population currently gives the economy.
type PopulationContribution struct {
	TotalWorkers            float64
	LiteracyRate            float64
	TaxablePopulation       float64
	TaxCollectionEfficiency float64
	ConsumerSpending        float64
	LuxuryDemand            float64
	InnovationFactor        float64
	ProductivityModifier    float64
}

type popState struct {
	State
	Effects       PopulationEffects
	Contributions PopulationContribution
	Happiness     *History
	Output        *History
}

// PopulationBridge couples demographics with the economy: taxation and
// employment move happiness, while workers, literacy and spending feed tax
// income back into the treasury.
type PopulationBridge struct {
	cfg      PopulationConfig
	pop      *world.Table[world.PopulationRecord]
	econ     *world.Table[world.EconomyRecord]
	treasury *treasury.Manager
	bus      *events.Bus
	detector Detector

	mu     sync.Mutex
	states map[model.EntityID]*popState
}

// NewPopulationBridge creates the bridge. All collaborators are required.
func NewPopulationBridge(cfg PopulationConfig, pop *world.Table[world.PopulationRecord], econ *world.Table[world.EconomyRecord], tm *treasury.Manager, bus *events.Bus) (*PopulationBridge, error) {
	if pop == nil || econ == nil {
		return nil, fmt.Errorf("population bridge: component tables are required")
	}
	if tm == nil {
		return nil, fmt.Errorf("population bridge: treasury manager is required")
	}
	if bus == nil {
		return nil, fmt.Errorf("population bridge: event bus is required")
	}
	return &PopulationBridge{
		cfg:      cfg,
		pop:      pop,
		econ:     econ,
		treasury: tm,
		bus:      bus,
		detector: NewDetector(cfg.CrisisIncreaseStep),
		states:   make(map[model.EntityID]*popState),
	}, nil
}

func (b *PopulationBridge) Name() string { return "economic_population_bridge" }

func (b *PopulationBridge) Entities() []model.EntityID { return b.pop.IDs() }

func (b *PopulationBridge) ShouldUpdate(id model.EntityID, now float64) bool {
	st := b.state(id)
	return Due(st.LastUpdate, now, b.cfg.UpdateIntervalDays)
}

// Health returns the coupling balance and crisis severity for a realm.
func (b *PopulationBridge) Health(id model.EntityID) (float64, float64, bool) {
	b.mu.Lock()
	st, ok := b.states[id]
	b.mu.Unlock()
	if !ok {
		return 0, 0, false
	}
	return st.Balance, st.Crisis.Severity, true
}

func (b *PopulationBridge) state(id model.EntityID) *popState {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[id]
	if !ok {
		st = &popState{
			State:     State{Crisis: NewCrisisState()},
			Happiness: NewHistory(b.cfg.HistorySize),
			Output:    NewHistory(b.cfg.HistorySize),
		}
		b.states[id] = st
	}
	return st
}

// UpdateEntity runs one coupling period for a realm. Calling it again at an
// unchanged now is a no-op.
func (b *PopulationBridge) UpdateEntity(id model.EntityID, now float64) {
	st := b.state(id)
	if !Due(st.LastUpdate, now, b.cfg.UpdateIntervalDays) {
		return
	}
	pop := b.pop.Get(id)
	if pop == nil {
		return
	}
	econ := b.econ.Get(id)

	effects := b.computeEffects(pop, econ)
	contrib := b.computeContributions(pop)

	b.applyEffectsToPopulation(pop, effects)
	output := b.applyContributionsToEconomy(id, econ, contrib)

	st.Happiness.Push(pop.AverageHappiness)
	st.Output.Push(output)

	happinessScore := clamp01(effects.TaxHappinessModifier + 0.5)
	st.Balance = clamp01((happinessScore + contrib.ProductivityModifier) / 2)

	onsets := b.detector.Run(&st.Crisis, b.predicates(st, contrib, effects))
	for _, o := range onsets {
		b.bus.Publish(events.Crisis{
			CrisisKind: o.Kind,
			Realm:      id,
			Severity:   o.Severity,
			Causes:     o.Causes,
		})
	}

	st.Effects = effects
	st.Contributions = contrib
	st.LastUpdate = now
}

func (b *PopulationBridge) computeEffects(pop *world.PopulationRecord, econ *world.EconomyRecord) PopulationEffects {
	effects := PopulationEffects{}
	if econ != nil {
		effects.TaxRate = econ.TaxRate
		effects.AverageWages = econ.AverageWages
		effects.InfrastructureQuality = econ.InfrastructureQuality
		if pop.TotalPopulation > 0 {
			effects.TradeIncomePerCapita = econ.TradeIncome / pop.TotalPopulation
		}
	}
	effects.TaxHappinessModifier = b.taxHappinessEffect(effects.TaxRate, pop.AverageHappiness)
	effects.EmploymentRate = pop.EmploymentRate
	effects.WealthInequality = clamp(1.0-pop.AverageWealth/100.0, 0.1, 0.8)
	return effects
}

func (b *PopulationBridge) computeContributions(pop *world.PopulationRecord) PopulationContribution {
	c := PopulationContribution{
		TotalWorkers:      pop.TotalPopulation * pop.EmploymentRate,
		LiteracyRate:      pop.AverageLiteracy,
		TaxablePopulation: pop.TotalPopulation * b.cfg.TaxablePopulationRatio,
		ConsumerSpending:  pop.TotalPopulation * pop.AverageWealth * b.cfg.ConsumerSpendingMultiplier,
		LuxuryDemand:      pop.TotalPopulation * math.Max(0, pop.AverageWealth-b.cfg.LuxuryWealthThreshold) * b.cfg.LuxuryDemandMultiplier,
		InnovationFactor:  pop.AverageLiteracy * b.cfg.LiteracyProductivityBonus,
	}
	c.TaxCollectionEfficiency = b.taxCollectionEfficiency(pop.AverageLiteracy, pop.AverageHappiness)
	c.ProductivityModifier = math.Max(0, pop.AverageHappiness-0.5) * b.cfg.HappinessProductivityScale
	return c
}

func (b *PopulationBridge) applyEffectsToPopulation(pop *world.PopulationRecord, effects PopulationEffects) {
	// Gradual application: a tenth of the modifier per period.
	pop.AverageHappiness = clamp01(pop.AverageHappiness + effects.TaxHappinessModifier*0.1)

	employment := b.employmentHappinessEffect(effects.EmploymentRate, effects.AverageWages)
	pop.AverageHappiness = clamp01(pop.AverageHappiness + employment*0.05)

	inequality := b.inequalityEffect(effects.WealthInequality, pop.AverageWealth)
	pop.AverageHappiness = clamp01(pop.AverageHappiness + inequality*0.03)

	if effects.InfrastructureQuality > b.cfg.InfrastructureGoodThreshold {
		bonus := (effects.InfrastructureQuality - b.cfg.InfrastructureGoodThreshold) * b.cfg.InfrastructureCapacityBonus
		pop.AverageHappiness = clamp01(pop.AverageHappiness + bonus*0.02)
	}

	if effects.TradeIncomePerCapita > 0 {
		pop.AverageWealth = math.Min(100, pop.AverageWealth+effects.TradeIncomePerCapita*b.cfg.WealthTradeMultiplier)
	}
}

// applyContributionsToEconomy collects taxes and returns the realm's
// economic output for the period.
func (b *PopulationBridge) applyContributionsToEconomy(id model.EntityID, econ *world.EconomyRecord, contrib PopulationContribution) float64 {
	baseTax := contrib.TaxablePopulation * b.cfg.BaseTaxPerCapita
	collected := baseTax * contrib.TaxCollectionEfficiency
	multiplier := 1.0 + contrib.InnovationFactor + contrib.ProductivityModifier
	output := collected * multiplier

	if econ != nil {
		econ.TaxIncome = output
		econ.TaxEfficiency = contrib.TaxCollectionEfficiency
		b.treasury.AddMoney(id, int64(output))
	}
	return output
}

func (b *PopulationBridge) predicates(st *popState, contrib PopulationContribution, effects PopulationEffects) []Predicate {
	economic := Predicate{Kind: events.KindEconomicCrisis}
	if contrib.ProductivityModifier < b.cfg.OutputCrisisThreshold {
		economic.Holds = true
		economic.Causes = append(economic.Causes, "low_economic_output")
	}
	if contrib.TaxCollectionEfficiency < b.cfg.TaxEfficiencyCrisisThreshold {
		economic.Holds = true
		economic.Causes = append(economic.Causes, "poor_tax_collection")
	}
	if effects.EmploymentRate < b.cfg.EmploymentCrisisThreshold {
		economic.Holds = true
		economic.Causes = append(economic.Causes, "high_unemployment")
	}

	unrest := Predicate{Kind: events.KindPopulationUnrest}
	if latest, ok := st.Happiness.Latest(); ok && latest < b.cfg.HappinessCrisisThreshold {
		unrest.Holds = true
		unrest.Causes = append(unrest.Causes, "low_happiness")
	}
	if st.Happiness.Declining(3) {
		unrest.Holds = true
		unrest.Causes = append(unrest.Causes, "declining_happiness")
	}

	return []Predicate{economic, unrest}
}

func (b *PopulationBridge) taxHappinessEffect(taxRate, happiness float64) float64 {
	// Minimum factor prevents a death spiral at zero happiness.
	factor := math.Max(0.1, happiness)
	return (b.cfg.TaxBaseEffect + taxRate*b.cfg.TaxScaling) * factor
}

func (b *PopulationBridge) employmentHappinessEffect(employmentRate, wages float64) float64 {
	penalty := (1.0 - employmentRate) * b.cfg.UnemploymentPenalty
	wageBonus := (wages / 100.0) * b.cfg.WageScaling
	return penalty + wageBonus
}

func (b *PopulationBridge) inequalityEffect(inequality, averageWealth float64) float64 {
	if inequality < b.cfg.InequalityThreshold {
		return 0
	}
	excess := inequality - b.cfg.InequalityThreshold
	// Poorer populations feel inequality more.
	wealthFactor := 1.0 - averageWealth/100.0
	return -excess * b.cfg.InequalityPenalty * wealthFactor
}

func (b *PopulationBridge) taxCollectionEfficiency(literacy, happiness float64) float64 {
	literacyFactor := 0.5 + literacy*0.4
	happinessFactor := 0.7 + happiness*0.3
	return math.Min(1.0, literacyFactor*happinessFactor)
}

// Marshal flattens all per-entity state into a single document.
func (b *PopulationBridge) Marshal() Document {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc := Document{}
	doc.Set(SystemKey, b.Name())
	doc.SetFloat("update_interval_days", b.cfg.UpdateIntervalDays)
	for id, st := range b.states {
		p := fmt.Sprintf("entity.%d.", id)
		doc.SetFloat(p+"last_update_time", st.LastUpdate)
		doc.SetFloat(p+"balance", st.Balance)
		doc.SetFloat(p+"crisis_severity", st.Crisis.Severity)
		doc.SetBool(p+"economic_crisis", st.Crisis.Flags[events.KindEconomicCrisis])
		doc.SetBool(p+"population_unrest", st.Crisis.Flags[events.KindPopulationUnrest])
		doc.SetFloats(p+"happiness_history", st.Happiness.Values())
		doc.SetFloats(p+"output_history", st.Output.Values())
	}
	return doc
}

// Unmarshal restores per-entity state from a document. It fails only on a
// system tag mismatch; missing fields default.
func (b *PopulationBridge) Unmarshal(doc Document) bool {
	if !doc.CheckSystem(b.Name()) {
		return false
	}
	for _, id := range b.pop.IDs() {
		p := fmt.Sprintf("entity.%d.", id)
		if _, ok := doc[p+"last_update_time"]; !ok {
			continue
		}
		st := b.state(id)
		st.LastUpdate = doc.Float(p+"last_update_time", 0)
		st.Balance = doc.Float(p+"balance", 0.5)
		st.Crisis = NewCrisisState()
		st.Crisis.Severity = doc.Float(p+"crisis_severity", 0)
		st.Crisis.Flags[events.KindEconomicCrisis] = doc.Bool(p+"economic_crisis", false)
		st.Crisis.Flags[events.KindPopulationUnrest] = doc.Bool(p+"population_unrest", false)
		st.Happiness = NewHistory(b.cfg.HistorySize)
		for _, v := range doc.Floats(p + "happiness_history") {
			st.Happiness.Push(v)
		}
		st.Output = NewHistory(b.cfg.HistorySize)
		for _, v := range doc.Floats(p + "output_history") {
			st.Output.Push(v)
		}
	}
	return true
}
