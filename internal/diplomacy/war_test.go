package diplomacy

import (
	"testing"

	"Imperium/internal/events"
	"Imperium/internal/world"
)

func addRoutesBetween(s *world.Store) {
	s.Trade.Get(1).Update(func(routes []world.TradeRoute) []world.TradeRoute {
		return append(routes,
			world.TradeRoute{ID: "r1", From: 1, To: 2, Volume: 50, Active: true},
			world.TradeRoute{ID: "r3", From: 1, To: 3, Volume: 30, Active: true},
		)
	})
	s.Trade.Get(2).Update(func(routes []world.TradeRoute) []world.TradeRoute {
		return append(routes,
			world.TradeRoute{ID: "r2", From: 2, To: 1, Volume: 50, Active: true},
		)
	})
}

func TestStartWar_DisruptsRoutes(t *testing.T) {
	b, s, _ := newFixture(t)
	addRoutesBetween(s)

	if err := b.StartWar(1, 2); err != nil {
		t.Fatalf("start war: %v", err)
	}
	if got := s.Trade.Get(1).ActiveCount(); got != 1 {
		t.Errorf("expected only the third-party route active for realm 1, got %d", got)
	}
	if got := s.Trade.Get(2).ActiveCount(); got != 0 {
		t.Errorf("expected no active routes for realm 2, got %d", got)
	}

	impact, ok := b.WarImpact(1, 2)
	if !ok {
		t.Fatal("expected a war impact record")
	}
	if impact.DisruptedRoutes != 2 {
		t.Errorf("expected 2 disrupted routes, got %d", impact.DisruptedRoutes)
	}

	if err := b.StartWar(1, 2); err == nil {
		t.Error("starting the same war twice should fail")
	}
	if err := b.StartWar(1, 1); err == nil {
		t.Error("declaring war on oneself should fail")
	}
}

func TestEndWar_RestoresRoutes(t *testing.T) {
	b, s, _ := newFixture(t)
	addRoutesBetween(s)

	if err := b.StartWar(1, 2); err != nil {
		t.Fatalf("start war: %v", err)
	}
	if !b.EndWar(1, 2) {
		t.Fatal("ending an open war should succeed")
	}
	if got := s.Trade.Get(1).ActiveCount(); got != 2 {
		t.Errorf("expected both routes restored for realm 1, got %d", got)
	}
	if got := s.Trade.Get(2).ActiveCount(); got != 1 {
		t.Errorf("expected route restored for realm 2, got %d", got)
	}
	if _, ok := b.WarImpact(1, 2); ok {
		t.Error("impact record should be gone after the war ends")
	}
	if b.EndWar(1, 2) {
		t.Error("ending twice should fail")
	}
}

func TestWarEconomics_CostsEscalate(t *testing.T) {
	b, s, bus := newFixture(t)
	s.Economy.Get(1).Treasury = 10000
	s.Economy.Get(2).Treasury = 10000

	var damage []events.WarEconomicDamage
	bus.Subscribe(events.WarEconomicDamage{}.Kind(), func(e events.Event) {
		damage = append(damage, e.(events.WarEconomicDamage))
	})

	if err := b.StartWar(1, 2); err != nil {
		t.Fatalf("start war: %v", err)
	}
	b.ProcessMonthly()
	b.ProcessMonthly()

	impact, _ := b.WarImpact(1, 2)
	if impact.MonthsAtWar != 2 {
		t.Errorf("expected 2 months at war, got %d", impact.MonthsAtWar)
	}
	// Month 1 costs 110, month 2 costs 120, paid by both sides.
	if impact.TotalCost != 460 {
		t.Errorf("expected total cost 460, got %d", impact.TotalCost)
	}
	if impact.MonthlyWarCost != 120 {
		t.Errorf("expected monthly cost 120, got %d", impact.MonthlyWarCost)
	}
	// Disruption 55 then 60.
	if impact.TotalTradeLoss != 115 {
		t.Errorf("expected total trade loss 115, got %d", impact.TotalTradeLoss)
	}
	if got := s.Economy.Get(1).Treasury; got != 9770 {
		t.Errorf("expected aggressor treasury 9770, got %d", got)
	}

	if len(damage) != 2 {
		t.Fatalf("expected 2 damage events, got %d", len(damage))
	}
	if damage[1].MonthlyCost <= damage[0].MonthlyCost {
		t.Error("war costs should escalate month over month")
	}
}

func TestWouldWarHurtEconomy(t *testing.T) {
	b, s, _ := newFixture(t)

	if b.WouldWarHurtEconomy(1, 2) {
		t.Error("war between strangers should not hurt the economy")
	}

	// Heavy bilateral trade crosses the trade-value threshold.
	s.Economy.Get(1).TradeIncome = 2500
	s.Economy.Get(2).TradeIncome = 2500
	if !b.WouldWarHurtEconomy(1, 2) {
		t.Error("war over a 250-value trade relationship should be flagged")
	}
}

func TestProjectedWarCost(t *testing.T) {
	b, _, _ := newFixture(t)
	// Sum of 100 + 10*i for i in 1..12.
	if got := b.ProjectedWarCost(12); got != 1980 {
		t.Errorf("expected projected cost 1980, got %d", got)
	}
	if got := b.ProjectedWarCost(0); got != 0 {
		t.Errorf("expected zero cost for zero months, got %d", got)
	}
}
