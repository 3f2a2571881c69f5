package bridge

import (
	"fmt"
	"log"
	"math"
	"sync"

	"Imperium/internal/events"
	"Imperium/internal/model"
	"Imperium/internal/treasury"
	"Imperium/internal/world"
)

// TechnologyConfig holds tuning constants for the technology coupling.
type TechnologyConfig struct {
	UpdateIntervalDays float64 `yaml:"update_interval_days"`
	HistorySize        int     `yaml:"history_size"`

	AgricultureProductionBonus float64 `yaml:"agriculture_production_bonus"`
	CraftProductionBonus       float64 `yaml:"craft_production_bonus"`
	NavalTradeBonus            float64 `yaml:"naval_trade_bonus"`
	CraftTradeBonus            float64 `yaml:"craft_trade_bonus"`
	AdminTaxBonus              float64 `yaml:"admin_tax_bonus"`

	ResearchBudgetBase         float64 `yaml:"research_budget_base"`
	ResearchBudgetWealthyBonus float64 `yaml:"research_budget_wealthy_bonus"`
	WealthyTreasuryThreshold   float64 `yaml:"wealthy_treasury_threshold"`
	TradeKnowledgePerRoute     float64 `yaml:"trade_knowledge_per_route"`
	ScholarBudgetShare         float64 `yaml:"scholar_budget_share"`

	UniversityMonthlyCost        float64 `yaml:"university_monthly_cost"`
	LibraryMonthlyCost           float64 `yaml:"library_monthly_cost"`
	WorkshopMonthlyCost          float64 `yaml:"workshop_monthly_cost"`
	ScholarSalary                float64 `yaml:"scholar_salary"`
	ImplementationCostMultiplier float64 `yaml:"implementation_cost_multiplier"`

	FundingCrisisThreshold        float64 `yaml:"funding_crisis_threshold"`
	ImplementationCrisisThreshold float64 `yaml:"implementation_crisis_threshold"`
	BrainDrainThreshold           float64 `yaml:"brain_drain_threshold"`
	MinROI                        float64 `yaml:"min_roi"`
	CrisisIncreaseStep            float64 `yaml:"crisis_increase_step"`
}

// DefaultTechnologyConfig returns the baseline tuning.
func DefaultTechnologyConfig() TechnologyConfig {
	return TechnologyConfig{
		UpdateIntervalDays: 1.0,
		HistorySize:        12,

		AgricultureProductionBonus: 0.15,
		CraftProductionBonus:       0.20,
		NavalTradeBonus:            0.10,
		CraftTradeBonus:            0.05,
		AdminTaxBonus:              0.12,

		ResearchBudgetBase:         0.05,
		ResearchBudgetWealthyBonus: 0.03,
		WealthyTreasuryThreshold:   5000.0,
		TradeKnowledgePerRoute:     0.02,
		ScholarBudgetShare:         0.4,

		UniversityMonthlyCost:        50.0,
		LibraryMonthlyCost:           20.0,
		WorkshopMonthlyCost:          30.0,
		ScholarSalary:                10.0,
		ImplementationCostMultiplier: 100.0,

		FundingCrisisThreshold:        0.3,
		ImplementationCrisisThreshold: 0.5,
		BrainDrainThreshold:           0.4,
		MinROI:                        0.15,
		CrisisIncreaseStep:            0.1,
	}
}

// TechnologyEffects is what implemented technology does for the economy.
type TechnologyEffects struct {
	ProductionEfficiency float64
	TradeEfficiency      float64
	TaxEfficiency        float64
	MonthlyResearchCost  float64
	ImplementationCost   float64
}

// ResearchContribution is the economic capacity behind research.
type ResearchContribution struct {
	Budget              float64
	BudgetPercentage    float64
	InfrastructureCount float64
	TradeNetworkBonus   float64
	WealthInnovation    float64
	StabilityModifier   float64
	ScholarFunding      float64
}

type techState struct {
	State
	Effects       TechnologyEffects
	Contributions ResearchContribution
	Level         *History
	Investment    *History
	Impact        *History
	ROI           float64
}

// TechnologyBridge couples research with the economy: implemented tech
// raises production, trade and tax multipliers, while economic conditions
// set the research budget.
type TechnologyBridge struct {
	cfg      TechnologyConfig
	research *world.Table[world.ResearchRecord]
	econ     *world.Table[world.EconomyRecord]
	trade    *world.Table[world.TradeRouteRecord]
	treasury *treasury.Manager
	bus      *events.Bus
	detector Detector

	mu     sync.Mutex
	states map[model.EntityID]*techState
}

// NewTechnologyBridge creates the bridge. The trade table is optional and
// only feeds the knowledge-transfer bonus.
func NewTechnologyBridge(cfg TechnologyConfig, research *world.Table[world.ResearchRecord], econ *world.Table[world.EconomyRecord], trade *world.Table[world.TradeRouteRecord], tm *treasury.Manager, bus *events.Bus) (*TechnologyBridge, error) {
	if research == nil || econ == nil {
		return nil, fmt.Errorf("technology bridge: component tables are required")
	}
	if tm == nil {
		return nil, fmt.Errorf("technology bridge: treasury manager is required")
	}
	if bus == nil {
		return nil, fmt.Errorf("technology bridge: event bus is required")
	}
	if trade == nil {
		log.Printf("[WARN] technology bridge: no trade table, knowledge-transfer bonus disabled")
	}
	return &TechnologyBridge{
		cfg:      cfg,
		research: research,
		econ:     econ,
		trade:    trade,
		treasury: tm,
		bus:      bus,
		detector: NewDetector(cfg.CrisisIncreaseStep),
		states:   make(map[model.EntityID]*techState),
	}, nil
}

func (b *TechnologyBridge) Name() string { return "technology_economic_bridge" }

func (b *TechnologyBridge) Entities() []model.EntityID { return b.research.IDs() }

func (b *TechnologyBridge) ShouldUpdate(id model.EntityID, now float64) bool {
	return Due(b.state(id).LastUpdate, now, b.cfg.UpdateIntervalDays)
}

func (b *TechnologyBridge) Health(id model.EntityID) (float64, float64, bool) {
	b.mu.Lock()
	st, ok := b.states[id]
	b.mu.Unlock()
	if !ok {
		return 0, 0, false
	}
	return st.Balance, st.Crisis.Severity, true
}

// ResearchROI returns the realm's research return on investment, as a
// percentage over the history window.
func (b *TechnologyBridge) ResearchROI(id model.EntityID) (float64, bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[id]
	if !ok {
		return 0, false
	}
	return st.ROI, true
}

func (b *TechnologyBridge) state(id model.EntityID) *techState {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[id]
	if !ok {
		st = &techState{
			State:      State{Crisis: NewCrisisState()},
			Level:      NewHistory(b.cfg.HistorySize),
			Investment: NewHistory(b.cfg.HistorySize),
			Impact:     NewHistory(b.cfg.HistorySize),
		}
		b.states[id] = st
	}
	return st
}

// UpdateEntity runs one coupling period for a realm.
func (b *TechnologyBridge) UpdateEntity(id model.EntityID, now float64) {
	st := b.state(id)
	if !Due(st.LastUpdate, now, b.cfg.UpdateIntervalDays) {
		return
	}
	res := b.research.Get(id)
	if res == nil {
		return
	}
	econ := b.econ.Get(id)

	effects := b.computeEffects(res)
	contrib := b.computeContributions(id, econ)

	b.applyEffectsToEconomy(econ, effects)
	b.applyContributionsToResearch(res, contrib)

	st.Level.Push(float64(res.TechLevel()))
	st.Investment.Push(contrib.Budget)
	st.Impact.Push(effects.ProductionEfficiency)
	st.ROI = b.researchROI(st)

	techScore := math.Min(1.0, float64(res.TechLevel())/20.0)
	econScore := math.Min(1.0, contrib.Budget/500.0)
	st.Balance = clamp01((techScore + econScore) / 2)

	onsets := b.detector.Run(&st.Crisis, b.predicates(st, res, effects, contrib))
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

// ProcessMonthly deducts research upkeep from every realm's treasury.
func (b *TechnologyBridge) ProcessMonthly() {
	for _, id := range b.research.IDs() {
		res := b.research.Get(id)
		if res == nil {
			continue
		}
		cost := b.monthlyResearchCost(res)
		if cost <= 0 {
			continue
		}
		if !b.treasury.SpendMoney(id, int64(cost)) {
			log.Printf("[WARN] realm %d cannot fund research upkeep of %.0f", id, cost)
		}
	}
}

func (b *TechnologyBridge) computeEffects(res *world.ResearchRecord) TechnologyEffects {
	agri := float64(res.Implemented[model.TechAgriculture])
	craft := float64(res.Implemented[model.TechCrafting])
	naval := float64(res.Implemented[model.TechNaval])
	admin := float64(res.Implemented[model.TechAdministration])

	return TechnologyEffects{
		ProductionEfficiency: 1.0 + agri*b.cfg.AgricultureProductionBonus + craft*b.cfg.CraftProductionBonus,
		TradeEfficiency:      1.0 + naval*b.cfg.NavalTradeBonus + craft*b.cfg.CraftTradeBonus,
		TaxEfficiency:        1.0 + admin*b.cfg.AdminTaxBonus,
		MonthlyResearchCost:  b.monthlyResearchCost(res),
		ImplementationCost:   float64(res.TechLevel()) * b.cfg.ImplementationCostMultiplier,
	}
}

func (b *TechnologyBridge) monthlyResearchCost(res *world.ResearchRecord) float64 {
	return float64(res.Universities)*b.cfg.UniversityMonthlyCost +
		float64(res.Libraries)*b.cfg.LibraryMonthlyCost +
		float64(res.Workshops)*b.cfg.WorkshopMonthlyCost +
		float64(res.Scholars)*b.cfg.ScholarSalary
}

func (b *TechnologyBridge) computeContributions(id model.EntityID, econ *world.EconomyRecord) ResearchContribution {
	c := ResearchContribution{StabilityModifier: 1.0}
	if econ == nil {
		return c
	}

	income := econ.TaxIncome + econ.TradeIncome
	c.BudgetPercentage = b.cfg.ResearchBudgetBase
	if float64(econ.Treasury) > b.cfg.WealthyTreasuryThreshold {
		c.BudgetPercentage += b.cfg.ResearchBudgetWealthyBonus
	}
	c.Budget = income * c.BudgetPercentage
	c.ScholarFunding = c.Budget * b.cfg.ScholarBudgetShare
	c.WealthInnovation = math.Min(1.0, float64(econ.Treasury)/10000.0) * 0.5

	if econ.InflationRate > 0.05 {
		c.StabilityModifier -= 0.2
	}
	if econ.EconomicGrowth < 0 {
		c.StabilityModifier -= 0.3
	}
	if c.StabilityModifier < 0.5 {
		c.StabilityModifier = 0.5
	}

	if b.trade != nil {
		if trade := b.trade.Get(id); trade != nil {
			c.TradeNetworkBonus = float64(trade.ActiveCount()) * b.cfg.TradeKnowledgePerRoute
		}
	}
	return c
}

// applyEffectsToEconomy SETS the technology multipliers so reapplication
// never compounds.
func (b *TechnologyBridge) applyEffectsToEconomy(econ *world.EconomyRecord, effects TechnologyEffects) {
	if econ == nil {
		return
	}
	econ.ProductionEfficiency = effects.ProductionEfficiency
	econ.TechTradeBonus = effects.TradeEfficiency
	econ.TechTaxBonus = effects.TaxEfficiency
	econ.MonthlyExpenses = effects.MonthlyResearchCost
}

func (b *TechnologyBridge) applyContributionsToResearch(res *world.ResearchRecord, contrib ResearchContribution) {
	res.MonthlyBudget = contrib.Budget
	res.TradeNetworkBonus = contrib.TradeNetworkBonus
	res.StabilityBonus = (contrib.StabilityModifier - 1.0) * 0.5

	// Redistribute investment proportionally to existing progress, with a
	// floor so empty categories still receive funding.
	totalWeight := 0.0
	for _, cat := range model.TechCategories {
		totalWeight += float64(res.Implemented[cat]) + 1.0
	}
	for _, cat := range model.TechCategories {
		weight := (float64(res.Implemented[cat]) + 1.0) / totalWeight
		res.CategoryInvestment[cat] = contrib.Budget * weight
	}
}

func (b *TechnologyBridge) researchROI(st *techState) float64 {
	invested := st.Investment.Sum()
	if invested <= 0 {
		return 0
	}
	gained := 0.0
	for i := 0; i < st.Impact.Len(); i++ {
		gained += st.Impact.At(i) - 1.0
	}
	return 100.0 * gained / invested
}

func (b *TechnologyBridge) predicates(st *techState, res *world.ResearchRecord, effects TechnologyEffects, contrib ResearchContribution) []Predicate {
	var preds []Predicate

	funding := Predicate{Kind: events.KindResearchFundingCrisis}
	if effects.MonthlyResearchCost > 0 && contrib.Budget/effects.MonthlyResearchCost < b.cfg.FundingCrisisThreshold {
		funding.Holds = true
		funding.Causes = append(funding.Causes, "insufficient_treasury")
	}
	preds = append(preds, funding)

	implementation := Predicate{Kind: events.KindImplementationCrisis}
	if effects.ImplementationCost > 0 && contrib.Budget*12.0/effects.ImplementationCost < b.cfg.ImplementationCrisisThreshold {
		implementation.Holds = true
		implementation.Causes = append(implementation.Causes, "implementation_unaffordable")
	}
	preds = append(preds, implementation)

	brainDrain := Predicate{Kind: events.KindBrainDrain}
	scholarNeed := float64(res.Scholars) * b.cfg.ScholarSalary
	if scholarNeed > 0 && contrib.ScholarFunding/scholarNeed < b.cfg.BrainDrainThreshold {
		brainDrain.Holds = true
		brainDrain.Causes = append(brainDrain.Causes, "scholar_funding_shortfall")
	}
	preds = append(preds, brainDrain)

	lowROI := Predicate{Kind: events.KindLowResearchROI}
	if st.Impact.Len() == st.Impact.Cap() && st.ROI < b.cfg.MinROI*100.0 {
		lowROI.Holds = true
		lowROI.Causes = append(lowROI.Causes, "low_research_roi")
	}
	preds = append(preds, lowROI)

	return preds
}

// Marshal flattens all per-entity state into a single document.
func (b *TechnologyBridge) Marshal() Document {
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
		doc.SetFloat(p+"research_roi", st.ROI)
		doc.SetBool(p+"funding_crisis", st.Crisis.Flags[events.KindResearchFundingCrisis])
		doc.SetBool(p+"implementation_crisis", st.Crisis.Flags[events.KindImplementationCrisis])
		doc.SetBool(p+"brain_drain", st.Crisis.Flags[events.KindBrainDrain])
		doc.SetBool(p+"low_roi", st.Crisis.Flags[events.KindLowResearchROI])
		doc.SetFloats(p+"level_history", st.Level.Values())
		doc.SetFloats(p+"investment_history", st.Investment.Values())
		doc.SetFloats(p+"impact_history", st.Impact.Values())
	}
	return doc
}

// Unmarshal restores per-entity state. Fails only on a system tag mismatch.
func (b *TechnologyBridge) Unmarshal(doc Document) bool {
	if !doc.CheckSystem(b.Name()) {
		return false
	}
	for _, id := range b.research.IDs() {
		p := fmt.Sprintf("entity.%d.", id)
		if _, ok := doc[p+"last_update_time"]; !ok {
			continue
		}
		st := b.state(id)
		st.LastUpdate = doc.Float(p+"last_update_time", 0)
		st.Balance = doc.Float(p+"balance", 0.5)
		st.ROI = doc.Float(p+"research_roi", 0)
		st.Crisis = NewCrisisState()
		st.Crisis.Severity = doc.Float(p+"crisis_severity", 0)
		st.Crisis.Flags[events.KindResearchFundingCrisis] = doc.Bool(p+"funding_crisis", false)
		st.Crisis.Flags[events.KindImplementationCrisis] = doc.Bool(p+"implementation_crisis", false)
		st.Crisis.Flags[events.KindBrainDrain] = doc.Bool(p+"brain_drain", false)
		st.Crisis.Flags[events.KindLowResearchROI] = doc.Bool(p+"low_roi", false)
		st.Level = NewHistory(b.cfg.HistorySize)
		for _, v := range doc.Floats(p + "level_history") {
			st.Level.Push(v)
		}
		st.Investment = NewHistory(b.cfg.HistorySize)
		for _, v := range doc.Floats(p + "investment_history") {
			st.Investment.Push(v)
		}
		st.Impact = NewHistory(b.cfg.HistorySize)
		for _, v := range doc.Floats(p + "impact_history") {
			st.Impact.Push(v)
		}
	}
	return true
}
