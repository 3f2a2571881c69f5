package diplomacy

import (
	"fmt"
	"math"
	"sort"
	"sync"

	"Imperium/internal/bridge"
	"Imperium/internal/events"
	"Imperium/internal/model"
	"Imperium/internal/treasury"
	"Imperium/internal/world"
)

// Config holds tuning constants for the diplomatic coupling.
type Config struct {
	UpdateIntervalDays float64 `yaml:"update_interval_days"`
	HistorySize        int     `yaml:"history_size"`

	TradeValueDivisor   float64 `yaml:"trade_value_divisor"`
	MonthlyRevenueRatio float64 `yaml:"monthly_revenue_ratio"`

	FinancialDependencyDefault float64 `yaml:"financial_dependency_default"`
	ResourceDependencyRatio    float64 `yaml:"resource_dependency_ratio"`

	WarBaseCost         int64 `yaml:"war_base_cost"`
	WarCostGrowth       int64 `yaml:"war_cost_growth"`
	WarBaseDisruption   int64 `yaml:"war_base_disruption"`
	WarDisruptionGrowth int64 `yaml:"war_disruption_growth"`

	IsolationThreshold        float64 `yaml:"isolation_threshold"`
	ExhaustionTreasuryRatio   float64 `yaml:"exhaustion_treasury_ratio"`
	DependencyCrisisThreshold float64 `yaml:"dependency_crisis_threshold"`
	WarTradeValueThreshold    float64 `yaml:"war_trade_value_threshold"`
	WarDependencyThreshold    float64 `yaml:"war_dependency_threshold"`
	CrisisIncreaseStep        float64 `yaml:"crisis_increase_step"`
}

// DefaultConfig returns the baseline tuning.
func DefaultConfig() Config {
	return Config{
		UpdateIntervalDays: 1.0,
		HistorySize:        12,

		TradeValueDivisor:   20.0,
		MonthlyRevenueRatio: 0.1,

		FinancialDependencyDefault: 0.1,
		ResourceDependencyRatio:    0.7,

		WarBaseCost:         100,
		WarCostGrowth:       10,
		WarBaseDisruption:   50,
		WarDisruptionGrowth: 5,

		IsolationThreshold:        0.5,
		ExhaustionTreasuryRatio:   0.1,
		DependencyCrisisThreshold: 0.8,
		WarTradeValueThreshold:    200.0,
		WarDependencyThreshold:    0.4,
		CrisisIncreaseStep:        0.1,
	}
}

// DiplomaticEffects is what the diplomatic situation costs the economy.
type DiplomaticEffects struct {
	SanctionImpact  float64
	AgreementBonus  float64
	MonthlyWarCost  int64
	DisruptedRoutes int
}

// EconomicContribution is the economic weight behind diplomacy.
type EconomicContribution struct {
	TradeIncome    float64
	TreasuryHealth float64
}

type diploState struct {
	bridge.State
	Effects       DiplomaticEffects
	Contributions EconomicContribution
	TradeValue    *bridge.History
}

type depKey struct{ realm, partner model.EntityID }

type warKey struct{ aggressor, defender model.EntityID }

// Bridge couples diplomacy with the economy: sanctions, agreements,
// dependency tracking and war cost accrual.
type Bridge struct {
	cfg      Config
	econ     *world.Table[world.EconomyRecord]
	diplo    *world.Table[world.DiplomacyRecord]
	trade    *world.Table[world.TradeRouteRecord]
	treasury *treasury.Manager
	bus      *events.Bus
	detector bridge.Detector

	mu           sync.Mutex
	states       map[model.EntityID]*diploState
	sanctions    map[string]*Sanction
	agreements   map[string]*TradeAgreement
	dependencies map[depKey]*EconomicDependency
	wars         map[warKey]*WarEconomicImpact
	sanctionSeq  uint64
}

// NewBridge creates the diplomatic bridge. All collaborators are required.
func NewBridge(cfg Config, econ *world.Table[world.EconomyRecord], diplo *world.Table[world.DiplomacyRecord], trade *world.Table[world.TradeRouteRecord], tm *treasury.Manager, bus *events.Bus) (*Bridge, error) {
	if econ == nil || diplo == nil || trade == nil {
		return nil, fmt.Errorf("diplomacy bridge: component tables are required")
	}
	if tm == nil {
		return nil, fmt.Errorf("diplomacy bridge: treasury manager is required")
	}
	if bus == nil {
		return nil, fmt.Errorf("diplomacy bridge: event bus is required")
	}
	return &Bridge{
		cfg:          cfg,
		econ:         econ,
		diplo:        diplo,
		trade:        trade,
		treasury:     tm,
		bus:          bus,
		detector:     bridge.NewDetector(cfg.CrisisIncreaseStep),
		states:       make(map[model.EntityID]*diploState),
		sanctions:    make(map[string]*Sanction),
		agreements:   make(map[string]*TradeAgreement),
		dependencies: make(map[depKey]*EconomicDependency),
		wars:         make(map[warKey]*WarEconomicImpact),
	}, nil
}

func (b *Bridge) Name() string { return "diplomacy_economic_bridge" }

func (b *Bridge) Entities() []model.EntityID { return b.diplo.IDs() }

func (b *Bridge) ShouldUpdate(id model.EntityID, now float64) bool {
	return bridge.Due(b.state(id).LastUpdate, now, b.cfg.UpdateIntervalDays)
}

func (b *Bridge) Health(id model.EntityID) (float64, float64, bool) {
	b.mu.Lock()
	st, ok := b.states[id]
	b.mu.Unlock()
	if !ok {
		return 0, 0, false
	}
	return st.Balance, st.Crisis.Severity, true
}

func (b *Bridge) state(id model.EntityID) *diploState {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.stateLocked(id)
}

func (b *Bridge) stateLocked(id model.EntityID) *diploState {
	st, ok := b.states[id]
	if !ok {
		st = &diploState{
			State:      bridge.State{Crisis: bridge.NewCrisisState()},
			TradeValue: bridge.NewHistory(b.cfg.HistorySize),
		}
		b.states[id] = st
	}
	return st
}

// UpdateEntity runs one coupling period for a realm.
func (b *Bridge) UpdateEntity(id model.EntityID, now float64) {
	b.mu.Lock()
	defer b.mu.Unlock()

	st := b.stateLocked(id)
	if !bridge.Due(st.LastUpdate, now, b.cfg.UpdateIntervalDays) {
		return
	}
	rec := b.diplo.Get(id)
	if rec == nil {
		return
	}
	econ := b.econ.Get(id)

	effects := b.computeEffectsLocked(id)
	contrib := EconomicContribution{}
	if econ != nil {
		contrib.TradeIncome = econ.TradeIncome
		contrib.TreasuryHealth = math.Min(1.0, float64(econ.Treasury)/10000.0)
	}

	// Trade routes establish first contact.
	for _, p := range b.routePartnersLocked(id) {
		rec.Relation(p)
	}

	// Opinion drifts toward trade reality.
	partners := make([]model.EntityID, 0, len(rec.Relations))
	for p := range rec.Relations {
		partners = append(partners, p)
	}
	sort.Slice(partners, func(i, j int) bool { return partners[i] < partners[j] })

	totalValue := 0.0
	for _, p := range partners {
		tv := b.tradeValueLocked(id, p)
		rec.Relations[p].TradeVolume = tv
		totalValue += tv
		switch {
		case tv > 100:
			rec.AdjustOpinion(p, 2)
		case tv > 25:
			rec.AdjustOpinion(p, 1)
		case tv < 5 && b.sanctionImpactLocked(p) > 0:
			rec.AdjustOpinion(p, -1)
		}
	}

	st.TradeValue.Push(totalValue)

	atWar := effects.MonthlyWarCost > 0
	diploHealth := 1.0 - effects.SanctionImpact*0.5
	if atWar {
		diploHealth -= 0.2
	}
	if diploHealth < 0 {
		diploHealth = 0
	}
	st.Balance = (diploHealth + contrib.TreasuryHealth) / 2

	onsets := b.detector.Run(&st.Crisis, b.predicatesLocked(id, econ, effects))
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

func (b *Bridge) computeEffectsLocked(id model.EntityID) DiplomaticEffects {
	e := DiplomaticEffects{
		SanctionImpact: b.sanctionImpactLocked(id),
		AgreementBonus: 1.0,
	}

	count := 0
	total := 0.0
	for _, ag := range b.agreements {
		if ag.RealmA == id || ag.RealmB == id {
			total += ag.TradeBonus
			count++
		}
	}
	if count > 0 {
		e.AgreementBonus = total / float64(count)
	}

	for _, w := range b.wars {
		if w.Aggressor == id || w.Defender == id {
			e.MonthlyWarCost += w.MonthlyWarCost
			e.DisruptedRoutes += w.DisruptedRoutes
		}
	}
	return e
}

func (b *Bridge) predicatesLocked(id model.EntityID, econ *world.EconomyRecord, effects DiplomaticEffects) []bridge.Predicate {
	isolation := bridge.Predicate{Kind: events.KindDiplomaticIsolation}
	if effects.SanctionImpact > b.cfg.IsolationThreshold {
		isolation.Holds = true
		isolation.Causes = append(isolation.Causes, "heavy_sanctions")
	}

	exhaustion := bridge.Predicate{Kind: events.KindWarExhaustion}
	if econ != nil && econ.Treasury > 0 && effects.MonthlyWarCost > 0 {
		if float64(effects.MonthlyWarCost) > float64(econ.Treasury)*b.cfg.ExhaustionTreasuryRatio {
			exhaustion.Holds = true
			exhaustion.Causes = append(exhaustion.Causes, "war_costs_exceed_means")
		}
	}

	dependency := bridge.Predicate{Kind: events.KindCriticalDependency}
	for key, dep := range b.dependencies {
		if key.realm == id && dep.Overall > b.cfg.DependencyCrisisThreshold {
			dependency.Holds = true
			dependency.Causes = append(dependency.Causes, "critical_partner_dependency")
			break
		}
	}

	return []bridge.Predicate{isolation, exhaustion, dependency}
}

// ProcessMonthly ages sanctions, pays agreement revenue, refreshes
// dependency assessments and accrues war costs.
func (b *Bridge) ProcessMonthly() {
	b.updateSanctions()
	b.updateAgreements()
	b.updateDependencies()
	b.processWarEconomics()
}

// ProcessYearly ages trade agreements.
func (b *Bridge) ProcessYearly() {
	b.ageAgreements()
}

// TradeValue estimates the bilateral trade value between two realms.
func (b *Bridge) TradeValue(x, y model.EntityID) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.tradeValueLocked(x, y)
}

// routePartnersLocked returns the realms linked to id by a trade route in
// either direction, sorted.
func (b *Bridge) routePartnersLocked(id model.EntityID) []model.EntityID {
	seen := make(map[model.EntityID]bool)
	for _, owner := range b.trade.IDs() {
		rec := b.trade.Get(owner)
		if rec == nil {
			continue
		}
		for _, rt := range rec.Routes() {
			switch {
			case rt.From == id && rt.To != id:
				seen[rt.To] = true
			case rt.To == id && rt.From != id:
				seen[rt.From] = true
			}
		}
	}
	partners := make([]model.EntityID, 0, len(seen))
	for p := range seen {
		partners = append(partners, p)
	}
	sort.Slice(partners, func(i, j int) bool { return partners[i] < partners[j] })
	return partners
}

func (b *Bridge) tradeValueLocked(x, y model.EntityID) float64 {
	ex := b.econ.Get(x)
	ey := b.econ.Get(y)
	if ex == nil || ey == nil {
		return 0
	}
	base := (ex.TradeIncome + ey.TradeIncome) / b.cfg.TradeValueDivisor
	bonus := b.agreementBonusLocked(x, y)
	impact := math.Max(b.sanctionImpactLocked(x), b.sanctionImpactLocked(y))
	return base * bonus * (1.0 - impact)
}

// SanctionImpact is the total effective trade reduction on a realm.
func (b *Bridge) SanctionImpact(id model.EntityID) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.sanctionImpactLocked(id)
}

func (b *Bridge) sanctionImpactLocked(id model.EntityID) float64 {
	total := 0.0
	for _, s := range b.sanctions {
		if s.Target == id {
			total += s.EffectiveReduction()
		}
	}
	return math.Min(1.0, total)
}

// EconomicLeverage is positive when the target depends on the realm more
// than the realm depends on the target.
func (b *Bridge) EconomicLeverage(realm, target model.EntityID) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dependencyLocked(target, realm) - b.dependencyLocked(realm, target)
}

// DependencyLevel is how much realm depends on partner, 0..1.
func (b *Bridge) DependencyLevel(realm, partner model.EntityID) float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.dependencyLocked(realm, partner)
}

func (b *Bridge) dependencyLocked(realm, partner model.EntityID) float64 {
	if dep, ok := b.dependencies[depKey{realm, partner}]; ok {
		return dep.Overall
	}
	return 0
}

// WouldWarHurtEconomy is the hard gate the AI consults before declaring
// war: too much trade at stake or too much dependency on the target.
func (b *Bridge) WouldWarHurtEconomy(realm, target model.EntityID) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.tradeValueLocked(realm, target) > b.cfg.WarTradeValueThreshold {
		return true
	}
	return b.dependencyLocked(realm, target) > b.cfg.WarDependencyThreshold
}

// ProjectedWarCost sums the escalating monthly cost over a horizon.
func (b *Bridge) ProjectedWarCost(months int) int64 {
	var total int64
	for i := 1; i <= months; i++ {
		total += b.cfg.WarBaseCost + b.cfg.WarCostGrowth*int64(i)
	}
	return total
}

// Marshal flattens diplomatic state into a single document.
func (b *Bridge) Marshal() bridge.Document {
	b.mu.Lock()
	defer b.mu.Unlock()

	doc := bridge.Document{}
	doc.Set(bridge.SystemKey, b.Name())
	doc.SetFloat("update_interval_days", b.cfg.UpdateIntervalDays)
	doc.SetInt("sanction_seq", int64(b.sanctionSeq))

	for id, st := range b.states {
		p := fmt.Sprintf("entity.%d.", id)
		doc.SetFloat(p+"last_update_time", st.LastUpdate)
		doc.SetFloat(p+"balance", st.Balance)
		doc.SetFloat(p+"crisis_severity", st.Crisis.Severity)
		doc.SetBool(p+"diplomatic_isolation", st.Crisis.Flags[events.KindDiplomaticIsolation])
		doc.SetBool(p+"war_exhaustion", st.Crisis.Flags[events.KindWarExhaustion])
		doc.SetBool(p+"critical_dependency", st.Crisis.Flags[events.KindCriticalDependency])
		doc.SetFloats(p+"trade_value_history", st.TradeValue.Values())
	}

	ids := make([]string, 0, len(b.sanctions))
	for id := range b.sanctions {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	doc.SetInt("sanction_count", int64(len(ids)))
	for i, sid := range ids {
		s := b.sanctions[sid]
		p := fmt.Sprintf("sanction.%d.", i)
		doc.Set(p+"id", s.ID)
		doc.SetInt(p+"imposer", int64(s.Imposer))
		doc.SetInt(p+"target", int64(s.Target))
		doc.SetInt(p+"type", int64(s.Type))
		doc.SetInt(p+"severity", int64(s.Severity))
		doc.Set(p+"reason", s.Reason)
		doc.SetInt(p+"months_elapsed", int64(s.MonthsElapsed))
		doc.SetInt(p+"duration_months", int64(s.DurationMonths))
		doc.SetInt(p+"total_damage", s.TotalDamage)
	}

	aids := make([]string, 0, len(b.agreements))
	for id := range b.agreements {
		aids = append(aids, id)
	}
	sort.Strings(aids)
	doc.SetInt("agreement_count", int64(len(aids)))
	for i, aid := range aids {
		a := b.agreements[aid]
		p := fmt.Sprintf("agreement.%d.", i)
		doc.Set(p+"id", a.ID)
		doc.SetInt(p+"realm_a", int64(a.RealmA))
		doc.SetInt(p+"realm_b", int64(a.RealmB))
		doc.SetInt(p+"type", int64(a.Type))
		doc.SetFloat(p+"trade_bonus", a.TradeBonus)
		doc.SetInt(p+"duration_years", int64(a.DurationYears))
		doc.SetInt(p+"years_remaining", int64(a.YearsRemaining))
		doc.SetBool(p+"auto_renew", a.AutoRenew)
		doc.SetFloat(p+"total_value", a.TotalValueGenerated)
	}

	wkeys := make([]warKey, 0, len(b.wars))
	for k := range b.wars {
		wkeys = append(wkeys, k)
	}
	sort.Slice(wkeys, func(i, j int) bool {
		if wkeys[i].aggressor != wkeys[j].aggressor {
			return wkeys[i].aggressor < wkeys[j].aggressor
		}
		return wkeys[i].defender < wkeys[j].defender
	})
	doc.SetInt("war_count", int64(len(wkeys)))
	for i, k := range wkeys {
		w := b.wars[k]
		p := fmt.Sprintf("war.%d.", i)
		doc.SetInt(p+"aggressor", int64(w.Aggressor))
		doc.SetInt(p+"defender", int64(w.Defender))
		doc.SetInt(p+"months_at_war", int64(w.MonthsAtWar))
		doc.SetInt(p+"total_cost", w.TotalCost)
		doc.SetInt(p+"total_trade_loss", w.TotalTradeLoss)
		doc.SetInt(p+"disrupted_routes", int64(w.DisruptedRoutes))
	}

	return doc
}

// Unmarshal restores diplomatic state. Fails only on a system tag mismatch.
func (b *Bridge) Unmarshal(doc bridge.Document) bool {
	if !doc.CheckSystem(b.Name()) {
		return false
	}
	b.mu.Lock()
	defer b.mu.Unlock()

	b.sanctionSeq = uint64(doc.Int("sanction_seq", 0))

	for _, id := range b.diplo.IDs() {
		p := fmt.Sprintf("entity.%d.", id)
		if _, ok := doc[p+"last_update_time"]; !ok {
			continue
		}
		st := b.stateLocked(id)
		st.LastUpdate = doc.Float(p+"last_update_time", 0)
		st.Balance = doc.Float(p+"balance", 0.5)
		st.Crisis = bridge.NewCrisisState()
		st.Crisis.Severity = doc.Float(p+"crisis_severity", 0)
		st.Crisis.Flags[events.KindDiplomaticIsolation] = doc.Bool(p+"diplomatic_isolation", false)
		st.Crisis.Flags[events.KindWarExhaustion] = doc.Bool(p+"war_exhaustion", false)
		st.Crisis.Flags[events.KindCriticalDependency] = doc.Bool(p+"critical_dependency", false)
		st.TradeValue = bridge.NewHistory(b.cfg.HistorySize)
		for _, v := range doc.Floats(p + "trade_value_history") {
			st.TradeValue.Push(v)
		}
	}

	b.sanctions = make(map[string]*Sanction)
	for i := int64(0); i < doc.Int("sanction_count", 0); i++ {
		p := fmt.Sprintf("sanction.%d.", i)
		s := &Sanction{
			ID:             doc.Get(p+"id", ""),
			Imposer:        model.EntityID(doc.Int(p+"imposer", 0)),
			Target:         model.EntityID(doc.Int(p+"target", 0)),
			Type:           model.SanctionType(doc.Int(p+"type", 0)),
			Severity:       model.SanctionSeverity(doc.Int(p+"severity", 0)),
			Reason:         doc.Get(p+"reason", ""),
			MonthsElapsed:  int(doc.Int(p+"months_elapsed", 0)),
			DurationMonths: int(doc.Int(p+"duration_months", -1)),
			TotalDamage:    doc.Int(p+"total_damage", 0),
		}
		if s.ID != "" {
			b.sanctions[s.ID] = s
		}
	}

	b.agreements = make(map[string]*TradeAgreement)
	for i := int64(0); i < doc.Int("agreement_count", 0); i++ {
		p := fmt.Sprintf("agreement.%d.", i)
		a := &TradeAgreement{
			ID:                  doc.Get(p+"id", ""),
			RealmA:              model.EntityID(doc.Int(p+"realm_a", 0)),
			RealmB:              model.EntityID(doc.Int(p+"realm_b", 0)),
			Type:                model.AgreementType(doc.Int(p+"type", 0)),
			TradeBonus:          doc.Float(p+"trade_bonus", 1.0),
			DurationYears:       int(doc.Int(p+"duration_years", 0)),
			YearsRemaining:      int(doc.Int(p+"years_remaining", 0)),
			AutoRenew:           doc.Bool(p+"auto_renew", false),
			TotalValueGenerated: doc.Float(p+"total_value", 0),
		}
		if a.ID != "" {
			b.agreements[a.ID] = a
		}
	}

	b.wars = make(map[warKey]*WarEconomicImpact)
	for i := int64(0); i < doc.Int("war_count", 0); i++ {
		p := fmt.Sprintf("war.%d.", i)
		w := &WarEconomicImpact{
			Aggressor:       model.EntityID(doc.Int(p+"aggressor", 0)),
			Defender:        model.EntityID(doc.Int(p+"defender", 0)),
			MonthsAtWar:     int(doc.Int(p+"months_at_war", 0)),
			TotalCost:       doc.Int(p+"total_cost", 0),
			TotalTradeLoss:  doc.Int(p+"total_trade_loss", 0),
			DisruptedRoutes: int(doc.Int(p+"disrupted_routes", 0)),
		}
		w.MonthlyWarCost = b.cfg.WarBaseCost + b.cfg.WarCostGrowth*int64(w.MonthsAtWar)
		w.MonthlyTradeDisruption = b.cfg.WarBaseDisruption + b.cfg.WarDisruptionGrowth*int64(w.MonthsAtWar)
		if w.Aggressor != model.InvalidEntity {
			b.wars[warKey{w.Aggressor, w.Defender}] = w
		}
	}

	b.refreshSanctionFactorsLocked()
	b.updateDependenciesLocked()
	return true
}
