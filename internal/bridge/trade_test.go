package bridge

import (
	"math"
	"testing"

	"Imperium/internal/events"
	"Imperium/internal/model"
	"Imperium/internal/treasury"
	"Imperium/internal/world"
)

func newTradeFixture(t *testing.T) (*TradeBridge, *world.Store, *events.Bus) {
	t.Helper()
	s := world.NewStore()
	s.AddRealm(1, "Aquileia")
	s.AddRealm(2, "Borvania")

	rec := s.Trade.Get(1)
	rec.MerchantActivity = 100
	rec.Update(func(routes []world.TradeRoute) []world.TradeRoute {
		return append(routes,
			world.TradeRoute{ID: "r1", From: 1, To: 2, Volume: 50, Active: true},
			world.TradeRoute{ID: "r2", From: 2, To: 1, Volume: 50, Active: true},
		)
	})
	s.Economy.Get(1).Treasury = 5000

	tm, err := treasury.NewManager(s.Economy, 0, 0)
	if err != nil {
		t.Fatalf("treasury: %v", err)
	}
	bus := events.NewBus()
	b, err := NewTradeBridge(DefaultTradeConfig(), s.Trade, s.Economy, tm, bus)
	if err != nil {
		t.Fatalf("bridge: %v", err)
	}
	return b, s, bus
}

func TestTradeBridge_HealthyNetwork(t *testing.T) {
	b, s, bus := newTradeFixture(t)

	var crises []events.Event
	bus.SubscribeAll(func(e events.Event) { crises = append(crises, e) })

	b.UpdateEntity(1, SecondsPerDay)

	econ := s.Economy.Get(1)
	// 2 routes: income 200, volume 100, customs 100*0.05 + 100*0.02 = 7.
	if math.Abs(econ.TradeIncome-207) > 1e-9 {
		t.Errorf("expected trade income 207, got %.2f", econ.TradeIncome)
	}
	if math.Abs(econ.TradeEfficiency-1.0) > 1e-9 {
		t.Errorf("expected trade efficiency 1.0, got %.4f", econ.TradeEfficiency)
	}
	// Treasury share 0.9 of 207, truncated.
	if econ.Treasury != 5186 {
		t.Errorf("expected treasury 5186, got %d", econ.Treasury)
	}

	balance, _, ok := b.Health(1)
	if !ok || math.Abs(balance-0.75) > 1e-9 {
		t.Errorf("expected balance 0.75, got %.4f (ok=%v)", balance, ok)
	}
	if len(crises) != 0 {
		t.Errorf("healthy network should raise no events, got %d", len(crises))
	}
}

func TestTradeBridge_SanctionFactorComposes(t *testing.T) {
	b, s, _ := newTradeFixture(t)
	econ := s.Economy.Get(1)
	econ.TradeSanctionFactor = 0.625

	b.UpdateEntity(1, SecondsPerDay)
	if math.Abs(econ.TradeEfficiency-0.625) > 1e-9 {
		t.Errorf("expected sanctioned efficiency 0.625, got %.4f", econ.TradeEfficiency)
	}

	// Daily recompute must not erode the factor further.
	b.UpdateEntity(1, 2*SecondsPerDay)
	if math.Abs(econ.TradeEfficiency-0.625) > 1e-9 {
		t.Errorf("reapplication drifted efficiency to %.4f", econ.TradeEfficiency)
	}

	econ.TradeSanctionFactor = 1.0
	b.UpdateEntity(1, 3*SecondsPerDay)
	if math.Abs(econ.TradeEfficiency-1.0) > 1e-9 {
		t.Errorf("lifting the factor should restore efficiency to 1.0, got %.4f", econ.TradeEfficiency)
	}
}

func TestTradeBridge_TechBonusRaisesEfficiency(t *testing.T) {
	b, s, _ := newTradeFixture(t)
	s.Economy.Get(1).TechTradeBonus = 1.15

	b.UpdateEntity(1, SecondsPerDay)
	if got := s.Economy.Get(1).TradeEfficiency; math.Abs(got-1.15) > 1e-9 {
		t.Errorf("expected efficiency 1.15 with naval tech, got %.4f", got)
	}
}

func TestTradeBridge_CollapseRaisesCrisis(t *testing.T) {
	b, s, bus := newTradeFixture(t)

	var crises []events.Crisis
	bus.Subscribe(events.KindTradeCrisis, func(e events.Event) {
		crises = append(crises, e.(events.Crisis))
	})

	// Deactivate every route: zero income and rock-bottom efficiency follow
	// from the low-treasury constraint once money runs out.
	s.Trade.Get(1).SetRoutesBetween(2, false)
	s.Economy.Get(1).InflationRate = 0.15 // stability 0

	b.UpdateEntity(1, SecondsPerDay)
	if len(crises) != 1 {
		t.Fatalf("expected a trade crisis, got %d events", len(crises))
	}
	if crises[0].Realm != model.EntityID(1) {
		t.Errorf("expected realm 1, got %d", crises[0].Realm)
	}
}

func TestTradeBridge_StateRoundTrip(t *testing.T) {
	b, s, _ := newTradeFixture(t)
	b.UpdateEntity(1, SecondsPerDay)
	doc := b.Marshal()

	tm, _ := treasury.NewManager(s.Economy, 0, 0)
	restored, err := NewTradeBridge(DefaultTradeConfig(), s.Trade, s.Economy, tm, events.NewBus())
	if err != nil {
		t.Fatalf("bridge: %v", err)
	}
	if !restored.Unmarshal(doc) {
		t.Fatal("unmarshal of own document should succeed")
	}
	if restored.ShouldUpdate(1, SecondsPerDay) {
		t.Error("restored state should remember the last update time")
	}
}
