package bridge

import (
	"math"
	"testing"

	"Imperium/internal/events"
	"Imperium/internal/model"
	"Imperium/internal/treasury"
	"Imperium/internal/world"
)

func newPopulationFixture(t *testing.T) (*PopulationBridge, *world.Store, *events.Bus) {
	t.Helper()
	s := world.NewStore()
	s.AddRealm(1, "Aquileia")
	s.Population.Get(1).TotalPopulation = 1000

	tm, err := treasury.NewManager(s.Economy, 0, 0)
	if err != nil {
		t.Fatalf("treasury: %v", err)
	}
	bus := events.NewBus()
	b, err := NewPopulationBridge(DefaultPopulationConfig(), s.Population, s.Economy, tm, bus)
	if err != nil {
		t.Fatalf("bridge: %v", err)
	}
	return b, s, bus
}

func TestPopulationBridge_TaxationLowersHappiness(t *testing.T) {
	b, s, _ := newPopulationFixture(t)

	// Defaults: tax 0.15, happiness 0.5 → modifier (-0.5 + 0.15*-0.3)*0.5 = -0.2725.
	if got := b.taxHappinessEffect(0.15, 0.5); math.Abs(got-(-0.2725)) > 1e-9 {
		t.Fatalf("expected tax modifier -0.2725, got %.4f", got)
	}

	b.UpdateEntity(1, SecondsPerDay)

	// Tax -0.02725, employment +0.0005, inequality -0.00252.
	want := 0.47073
	if got := s.Population.Get(1).AverageHappiness; math.Abs(got-want) > 1e-6 {
		t.Errorf("expected happiness %.5f after one period, got %.5f", want, got)
	}
}

func TestPopulationBridge_TaxCollection(t *testing.T) {
	b, s, _ := newPopulationFixture(t)
	b.UpdateEntity(1, SecondsPerDay)

	econ := s.Economy.Get(1)
	// 800 taxable * 10 per head * 0.527 efficiency * 1.09 innovation = 4595.44.
	if math.Abs(econ.TaxIncome-4595.44) > 0.01 {
		t.Errorf("expected tax income 4595.44, got %.2f", econ.TaxIncome)
	}
	if math.Abs(econ.TaxEfficiency-0.527) > 1e-9 {
		t.Errorf("expected tax efficiency 0.527, got %.4f", econ.TaxEfficiency)
	}
	if econ.Treasury != 4595 {
		t.Errorf("expected treasury 4595, got %d", econ.Treasury)
	}
}

func TestPopulationBridge_UpdateIsIdempotentWithinPeriod(t *testing.T) {
	b, s, _ := newPopulationFixture(t)
	now := SecondsPerDay

	b.UpdateEntity(1, now)
	happiness := s.Population.Get(1).AverageHappiness
	balance := s.Economy.Get(1).Treasury

	b.UpdateEntity(1, now)
	if got := s.Population.Get(1).AverageHappiness; got != happiness {
		t.Errorf("second update at the same time changed happiness: %.5f -> %.5f", happiness, got)
	}
	if got := s.Economy.Get(1).Treasury; got != balance {
		t.Errorf("second update at the same time changed treasury: %d -> %d", balance, got)
	}

	if !b.ShouldUpdate(1, now+SecondsPerDay) {
		t.Error("next day should be due again")
	}
}

func TestPopulationBridge_UnrestOnLowHappiness(t *testing.T) {
	b, s, bus := newPopulationFixture(t)
	s.Population.Get(1).AverageHappiness = 0.25

	var unrest []events.Crisis
	bus.Subscribe(events.KindPopulationUnrest, func(e events.Event) {
		unrest = append(unrest, e.(events.Crisis))
	})

	b.UpdateEntity(1, SecondsPerDay)
	if len(unrest) != 1 {
		t.Fatalf("expected 1 unrest event, got %d", len(unrest))
	}
	if unrest[0].Realm != model.EntityID(1) {
		t.Errorf("expected realm 1, got %d", unrest[0].Realm)
	}
	if len(unrest[0].Causes) == 0 || unrest[0].Causes[0] != "low_happiness" {
		t.Errorf("expected low_happiness cause, got %v", unrest[0].Causes)
	}

	// The same ongoing condition must not re-fire the next day.
	b.UpdateEntity(1, 2*SecondsPerDay)
	if len(unrest) != 1 {
		t.Errorf("ongoing unrest should not re-fire, got %d events", len(unrest))
	}
}

func TestPopulationBridge_HealthTracksState(t *testing.T) {
	b, _, _ := newPopulationFixture(t)
	if _, _, ok := b.Health(1); ok {
		t.Error("health before any update should report ok=false")
	}
	b.UpdateEntity(1, SecondsPerDay)
	balance, _, ok := b.Health(1)
	if !ok {
		t.Fatal("health after update should report ok=true")
	}
	// happinessScore (0.2275) and productivity (0) average to 0.11375.
	if math.Abs(balance-0.11375) > 1e-6 {
		t.Errorf("expected balance 0.11375, got %.5f", balance)
	}
}

func TestPopulationBridge_StateRoundTrip(t *testing.T) {
	b, s, _ := newPopulationFixture(t)
	b.UpdateEntity(1, SecondsPerDay)
	doc := b.Marshal()

	tm, _ := treasury.NewManager(s.Economy, 0, 0)
	restored, err := NewPopulationBridge(DefaultPopulationConfig(), s.Population, s.Economy, tm, events.NewBus())
	if err != nil {
		t.Fatalf("bridge: %v", err)
	}
	if !restored.Unmarshal(doc) {
		t.Fatal("unmarshal of own document should succeed")
	}
	if restored.ShouldUpdate(1, SecondsPerDay) {
		t.Error("restored state should remember the last update time")
	}
	wantBalance, _, _ := b.Health(1)
	gotBalance, _, ok := restored.Health(1)
	if !ok || math.Abs(gotBalance-wantBalance) > 1e-9 {
		t.Errorf("expected restored balance %.5f, got %.5f (ok=%v)", wantBalance, gotBalance, ok)
	}
}

func TestPopulationBridge_RejectsForeignDocument(t *testing.T) {
	b, _, _ := newPopulationFixture(t)
	doc := Document{}
	doc.Set(SystemKey, "trade_economic_bridge")
	if b.Unmarshal(doc) {
		t.Error("document tagged for another bridge must be rejected")
	}
}
