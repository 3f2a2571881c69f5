package diplomacy

import (
	"math"
	"testing"

	"Imperium/internal/events"
	"Imperium/internal/model"
	"Imperium/internal/treasury"
	"Imperium/internal/world"
)

func newFixture(t *testing.T) (*Bridge, *world.Store, *events.Bus) {
	t.Helper()
	s := world.NewStore()
	s.AddRealm(1, "Aquileia")
	s.AddRealm(2, "Borvania")
	s.AddRealm(3, "Castellum")

	tm, err := treasury.NewManager(s.Economy, 0, 0)
	if err != nil {
		t.Fatalf("treasury: %v", err)
	}
	bus := events.NewBus()
	b, err := NewBridge(DefaultConfig(), s.Economy, s.Diplomacy, s.Trade, tm, bus)
	if err != nil {
		t.Fatalf("bridge: %v", err)
	}
	return b, s, bus
}

func TestImposeSanction_RampsOverThreeMonths(t *testing.T) {
	b, s, _ := newFixture(t)
	s.Economy.Get(2).Treasury = 10000

	id, err := b.ImposeSanction(1, 2, model.SanctionTradeEmbargo, model.SeveritySevere, "border dispute", -1)
	if err != nil {
		t.Fatalf("impose: %v", err)
	}
	if id != "sanction-1" {
		t.Errorf("expected sequential id sanction-1, got %s", id)
	}

	// No effect before the first month: ramp starts at zero.
	if got := s.Economy.Get(2).TradeSanctionFactor; got != 1.0 {
		t.Errorf("expected factor 1.0 at month zero, got %.4f", got)
	}

	for i := 0; i < 3; i++ {
		b.ProcessMonthly()
	}

	// SEVERE fully ramped: reduction 0.75, factor 1 - 0.75*0.5 = 0.625.
	if got := b.SanctionImpact(2); math.Abs(got-0.75) > 1e-9 {
		t.Errorf("expected impact 0.75, got %.4f", got)
	}
	if got := s.Economy.Get(2).TradeSanctionFactor; math.Abs(got-0.625) > 1e-9 {
		t.Errorf("expected factor 0.625, got %.4f", got)
	}
	// 300 monthly damage for three months.
	if got := s.Economy.Get(2).Treasury; got != 9100 {
		t.Errorf("expected treasury 9100, got %d", got)
	}
}

func TestImposeSanction_OpinionPenalty(t *testing.T) {
	b, s, _ := newFixture(t)
	if _, err := b.ImposeSanction(1, 2, model.SanctionTradeEmbargo, model.SeveritySevere, "", -1); err != nil {
		t.Fatalf("impose: %v", err)
	}
	if got := s.Diplomacy.Get(2).Relation(1).Opinion; got != -100 {
		t.Errorf("expected target opinion -100 of imposer, got %d", got)
	}
}

func TestLiftSanction_RestoresFactorExactly(t *testing.T) {
	b, s, bus := newFixture(t)
	s.Economy.Get(2).Treasury = 10000

	var lifted []events.SanctionLifted
	bus.Subscribe(events.SanctionLifted{}.Kind(), func(e events.Event) {
		lifted = append(lifted, e.(events.SanctionLifted))
	})

	id, _ := b.ImposeSanction(1, 2, model.SanctionTradeEmbargo, model.SeverityTotal, "", -1)
	for i := 0; i < 5; i++ {
		b.ProcessMonthly()
	}
	if got := s.Economy.Get(2).TradeSanctionFactor; got >= 1.0 {
		t.Fatalf("fully ramped TOTAL sanction should depress the factor, got %.4f", got)
	}

	if !b.LiftSanction(id) {
		t.Fatal("lift of an active sanction should succeed")
	}
	if got := s.Economy.Get(2).TradeSanctionFactor; got != 1.0 {
		t.Errorf("expected factor exactly 1.0 after lift, got %v", got)
	}
	if len(lifted) != 1 {
		t.Fatalf("expected 1 lifted event, got %d", len(lifted))
	}
	if lifted[0].MonthsActive != 5 {
		t.Errorf("expected 5 months active, got %d", lifted[0].MonthsActive)
	}
	if lifted[0].TotalDamage != 2500 {
		t.Errorf("expected total damage 2500, got %d", lifted[0].TotalDamage)
	}

	if b.LiftSanction(id) {
		t.Error("lifting twice should fail")
	}
}

func TestSanction_ExpiresAfterDuration(t *testing.T) {
	b, s, _ := newFixture(t)
	s.Economy.Get(2).Treasury = 10000

	if _, err := b.ImposeSanction(1, 2, model.SanctionTradeEmbargo, model.SeverityMild, "", 2); err != nil {
		t.Fatalf("impose: %v", err)
	}
	b.ProcessMonthly()
	if len(b.ActiveSanctions(2)) != 1 {
		t.Fatal("sanction should still be active after one month")
	}
	b.ProcessMonthly()
	if got := b.ActiveSanctions(2); len(got) != 0 {
		t.Fatalf("sanction should expire after its duration, still active: %d", len(got))
	}
	if got := s.Economy.Get(2).TradeSanctionFactor; got != 1.0 {
		t.Errorf("expiry should restore the factor to 1.0, got %v", got)
	}
}

func TestImposeSanction_Validation(t *testing.T) {
	b, _, _ := newFixture(t)
	if _, err := b.ImposeSanction(1, 1, model.SanctionTradeEmbargo, model.SeverityMild, "", -1); err == nil {
		t.Error("self-sanction should fail")
	}
	if _, err := b.ImposeSanction(1, 99, model.SanctionTradeEmbargo, model.SeverityMild, "", -1); err == nil {
		t.Error("sanctioning an unknown realm should fail")
	}
}

func TestMultipleSanctions_ImpactAccumulates(t *testing.T) {
	b, s, _ := newFixture(t)
	s.Economy.Get(2).Treasury = 50000

	b.ImposeSanction(1, 2, model.SanctionFinancial, model.SeverityModerate, "", -1)
	b.ImposeSanction(3, 2, model.SanctionResource, model.SeverityModerate, "", -1)
	for i := 0; i < 3; i++ {
		b.ProcessMonthly()
	}

	// Combined impact saturates at 1.0; factor bottoms out at 0.5.
	if got := b.SanctionImpact(2); got != 1.0 {
		t.Errorf("expected saturated impact 1.0, got %.4f", got)
	}
	if got := s.Economy.Get(2).TradeSanctionFactor; math.Abs(got-0.5) > 1e-9 {
		t.Errorf("expected factor 0.5, got %.4f", got)
	}
}
