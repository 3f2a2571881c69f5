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

// TradeConfig holds tuning constants for the trade coupling.
type TradeConfig struct {
	UpdateIntervalDays float64 `yaml:"update_interval_days"`
	HistorySize        int     `yaml:"history_size"`

	RouteIncomeBase float64 `yaml:"route_income_base"`
	RouteVolumeBase float64 `yaml:"route_volume_base"`
	TreasuryShare   float64 `yaml:"treasury_share"`
	CustomsRate     float64 `yaml:"customs_rate"`
	MerchantTaxRate float64 `yaml:"merchant_tax_rate"`

	LowTreasuryPenalty float64 `yaml:"low_treasury_penalty"`
	TreasuryFloor      float64 `yaml:"treasury_floor"`
	HighTaxPenalty     float64 `yaml:"high_tax_penalty"`
	TaxThreshold       float64 `yaml:"tax_threshold"`
	InfraTradeBonus    float64 `yaml:"infra_trade_bonus"`
	InfraThreshold     float64 `yaml:"infra_threshold"`

	CollapseThreshold    float64 `yaml:"collapse_threshold"`
	InstabilityThreshold float64 `yaml:"instability_threshold"`
	ImbalanceThreshold   float64 `yaml:"imbalance_threshold"`
	CrisisIncreaseStep   float64 `yaml:"crisis_increase_step"`
}

// DefaultTradeConfig returns the baseline tuning.
func DefaultTradeConfig() TradeConfig {
	return TradeConfig{
		UpdateIntervalDays: 1.0,
		HistorySize:        12,

		RouteIncomeBase: 100.0,
		RouteVolumeBase: 50.0,
		TreasuryShare:   0.9,
		CustomsRate:     0.05,
		MerchantTaxRate: 0.02,

		LowTreasuryPenalty: 0.3,
		TreasuryFloor:      1000.0,
		HighTaxPenalty:     0.4,
		TaxThreshold:       0.25,
		InfraTradeBonus:    0.5,
		InfraThreshold:     0.7,

		CollapseThreshold:    0.3,
		InstabilityThreshold: 0.3,
		ImbalanceThreshold:   0.35,
		CrisisIncreaseStep:   0.15,
	}
}

// TradeEffects is what the trade network currently yields.
type TradeEffects struct {
	RouteIncome      float64
	TradeVolume      float64
	CustomsRevenue   float64
	MerchantActivity float64
	Efficiency       float64
}

// TradeContribution is the economic capacity behind the trade network.
type TradeContribution struct {
	AvailableCapital      float64
	TaxBurden             float64
	InfrastructureQuality float64
	EconomicStability     float64
	PopulationWealth      float64
	DemandModifier        float64
}

type tradeState struct {
	State
	Effects       TradeEffects
	Contributions TradeContribution
	Income        *History
	EconHealth    *History
}

// TradeBridge couples the route network with the economy: routes and
// customs feed the treasury, while fiscal conditions throttle trade
// efficiency.
type TradeBridge struct {
	cfg      TradeConfig
	trade    *world.Table[world.TradeRouteRecord]
	econ     *world.Table[world.EconomyRecord]
	treasury *treasury.Manager
	bus      *events.Bus
	detector Detector

	mu     sync.Mutex
	states map[model.EntityID]*tradeState
}

// NewTradeBridge creates the bridge. All collaborators are required.
func NewTradeBridge(cfg TradeConfig, trade *world.Table[world.TradeRouteRecord], econ *world.Table[world.EconomyRecord], tm *treasury.Manager, bus *events.Bus) (*TradeBridge, error) {
	if trade == nil || econ == nil {
		return nil, fmt.Errorf("trade bridge: component tables are required")
	}
	if tm == nil {
		return nil, fmt.Errorf("trade bridge: treasury manager is required")
	}
	if bus == nil {
		return nil, fmt.Errorf("trade bridge: event bus is required")
	}
	return &TradeBridge{
		cfg:      cfg,
		trade:    trade,
		econ:     econ,
		treasury: tm,
		bus:      bus,
		detector: NewDetector(cfg.CrisisIncreaseStep),
		states:   make(map[model.EntityID]*tradeState),
	}, nil
}

func (b *TradeBridge) Name() string { return "trade_economic_bridge" }

func (b *TradeBridge) Entities() []model.EntityID { return b.trade.IDs() }

func (b *TradeBridge) ShouldUpdate(id model.EntityID, now float64) bool {
	return Due(b.state(id).LastUpdate, now, b.cfg.UpdateIntervalDays)
}

func (b *TradeBridge) Health(id model.EntityID) (float64, float64, bool) {
	b.mu.Lock()
	st, ok := b.states[id]
	b.mu.Unlock()
	if !ok {
		return 0, 0, false
	}
	return st.Balance, st.Crisis.Severity, true
}

func (b *TradeBridge) state(id model.EntityID) *tradeState {
	b.mu.Lock()
	defer b.mu.Unlock()
	st, ok := b.states[id]
	if !ok {
		st = &tradeState{
			State:      State{Crisis: NewCrisisState()},
			Income:     NewHistory(b.cfg.HistorySize),
			EconHealth: NewHistory(b.cfg.HistorySize),
		}
		b.states[id] = st
	}
	return st
}

// UpdateEntity runs one coupling period for a realm.
func (b *TradeBridge) UpdateEntity(id model.EntityID, now float64) {
	st := b.state(id)
	if !Due(st.LastUpdate, now, b.cfg.UpdateIntervalDays) {
		return
	}
	trade := b.trade.Get(id)
	if trade == nil {
		return
	}
	econ := b.econ.Get(id)

	contrib := b.computeContributions(econ)
	effects := b.computeEffects(trade, contrib, econ)

	b.applyToEconomy(id, econ, effects)

	st.Income.Push(effects.RouteIncome + effects.CustomsRevenue)
	econHealth := clamp01(contrib.EconomicStability * math.Min(1.0, contrib.AvailableCapital/b.cfg.TreasuryFloor))
	st.EconHealth.Push(econHealth)

	tradeHealth := clamp01(effects.Efficiency / 2.0)
	st.Balance = clamp01(0.5*tradeHealth + 0.5*econHealth)

	onsets := b.detector.Run(&st.Crisis, b.predicates(st, effects, contrib))
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

func (b *TradeBridge) computeContributions(econ *world.EconomyRecord) TradeContribution {
	c := TradeContribution{
		EconomicStability: 1.0,
		DemandModifier:    1.0,
	}
	if econ == nil {
		return c
	}
	c.AvailableCapital = float64(econ.Treasury)
	c.TaxBurden = econ.TaxRate
	c.InfrastructureQuality = econ.InfrastructureQuality
	c.PopulationWealth = econ.AverageWages
	c.EconomicStability = math.Max(0, 1.0-math.Max(0, econ.InflationRate-0.02)*10)
	c.DemandModifier = clamp(c.EconomicStability*c.PopulationWealth/50.0, 0.5, 2.0)
	return c
}

func (b *TradeBridge) computeEffects(trade *world.TradeRouteRecord, contrib TradeContribution, econ *world.EconomyRecord) TradeEffects {
	active := float64(trade.ActiveCount())
	e := TradeEffects{
		RouteIncome:      active * b.cfg.RouteIncomeBase,
		TradeVolume:      active * b.cfg.RouteVolumeBase,
		MerchantActivity: trade.MerchantActivity,
	}
	e.CustomsRevenue = e.TradeVolume*b.cfg.CustomsRate + e.MerchantActivity*b.cfg.MerchantTaxRate

	taxPenalty := 0.0
	if contrib.TaxBurden > b.cfg.TaxThreshold {
		taxPenalty = b.cfg.HighTaxPenalty * (contrib.TaxBurden - b.cfg.TaxThreshold) / (1.0 - b.cfg.TaxThreshold)
	}
	treasuryConstraint := 1.0
	if contrib.AvailableCapital < b.cfg.TreasuryFloor {
		treasuryConstraint = 1.0 - b.cfg.LowTreasuryPenalty
	}
	infraBonus := b.cfg.InfraTradeBonus * math.Max(0, contrib.InfrastructureQuality-b.cfg.InfraThreshold)

	modifier := (1.0 - taxPenalty) * treasuryConstraint * (1.0 + infraBonus) *
		contrib.EconomicStability * contrib.DemandModifier
	if econ != nil {
		modifier *= econ.TechTradeBonus
	}
	e.Efficiency = clamp(modifier, 0.1, 2.0)
	return e
}

func (b *TradeBridge) applyToEconomy(id model.EntityID, econ *world.EconomyRecord, effects TradeEffects) {
	total := (effects.RouteIncome + effects.CustomsRevenue) * effects.Efficiency
	if econ == nil {
		return
	}
	econ.TradeIncome = total
	econ.TradeEfficiency = effects.Efficiency * econ.TradeSanctionFactor
	b.treasury.AddMoney(id, int64(total*b.cfg.TreasuryShare))

	trade := b.trade.Get(id)
	if trade != nil {
		trade.Efficiency = econ.TradeEfficiency
	}
}

func (b *TradeBridge) predicates(st *tradeState, effects TradeEffects, contrib TradeContribution) []Predicate {
	collapse := Predicate{Kind: events.KindTradeCrisis}
	recent := st.Income.RecentAverage(3)
	if st.Income.Len() >= 3 && recent < b.cfg.CollapseThreshold*b.cfg.RouteIncomeBase {
		collapse.Holds = true
		collapse.Causes = append(collapse.Causes, "low_trade_volume")
	}
	if effects.Efficiency < b.cfg.CollapseThreshold {
		collapse.Holds = true
		collapse.Causes = append(collapse.Causes, "trade_efficiency_collapse")
	}

	instability := Predicate{Kind: events.KindTradeImbalance}
	if contrib.EconomicStability < b.cfg.InstabilityThreshold {
		instability.Holds = true
		instability.Causes = append(instability.Causes, "economic_instability")
	}
	if math.Abs(st.Balance-0.5) > b.cfg.ImbalanceThreshold {
		instability.Holds = true
		instability.Causes = append(instability.Causes, "coupling_imbalance")
	}

	return []Predicate{collapse, instability}
}

// Marshal flattens all per-entity state into a single document.
func (b *TradeBridge) Marshal() Document {
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
		doc.SetBool(p+"trade_crisis", st.Crisis.Flags[events.KindTradeCrisis])
		doc.SetBool(p+"trade_imbalance", st.Crisis.Flags[events.KindTradeImbalance])
		doc.SetFloats(p+"income_history", st.Income.Values())
		doc.SetFloats(p+"econ_health_history", st.EconHealth.Values())
	}
	return doc
}

// Unmarshal restores per-entity state. Fails only on a system tag mismatch.
func (b *TradeBridge) Unmarshal(doc Document) bool {
	if !doc.CheckSystem(b.Name()) {
		return false
	}
	for _, id := range b.trade.IDs() {
		p := fmt.Sprintf("entity.%d.", id)
		if _, ok := doc[p+"last_update_time"]; !ok {
			continue
		}
		st := b.state(id)
		st.LastUpdate = doc.Float(p+"last_update_time", 0)
		st.Balance = doc.Float(p+"balance", 0.5)
		st.Crisis = NewCrisisState()
		st.Crisis.Severity = doc.Float(p+"crisis_severity", 0)
		st.Crisis.Flags[events.KindTradeCrisis] = doc.Bool(p+"trade_crisis", false)
		st.Crisis.Flags[events.KindTradeImbalance] = doc.Bool(p+"trade_imbalance", false)
		st.Income = NewHistory(b.cfg.HistorySize)
		for _, v := range doc.Floats(p + "income_history") {
			st.Income.Push(v)
		}
		st.EconHealth = NewHistory(b.cfg.HistorySize)
		for _, v := range doc.Floats(p + "econ_health_history") {
			st.EconHealth.Push(v)
		}
	}
	return true
}
