package diplomacy

import (
	"math"
	"testing"
)

func TestDependency_AssessmentWeights(t *testing.T) {
	b, s, _ := newFixture(t)
	// Realm 1 earns little on its own but trades heavily with realm 2.
	s.Economy.Get(1).TradeIncome = 10
	s.Economy.Get(2).TradeIncome = 990
	s.Diplomacy.Get(1).Relation(2)
	s.Diplomacy.Get(2).Relation(1)

	b.ProcessMonthly()

	dep, ok := b.Dependency(1, 2)
	if !ok {
		t.Fatal("expected a dependency assessment for realm 1 on realm 2")
	}
	// Trade value 50, monthly revenue 5 against income 10: trade dep 0.5.
	if math.Abs(dep.TradeDependency-0.5) > 1e-9 {
		t.Errorf("expected trade dependency 0.5, got %.4f", dep.TradeDependency)
	}
	if math.Abs(dep.ResourceDependency-0.35) > 1e-9 {
		t.Errorf("expected resource dependency 0.35, got %.4f", dep.ResourceDependency)
	}
	// 0.4*0.5 + 0.4*0.35 + 0.2*0.1 = 0.36.
	if math.Abs(dep.Overall-0.36) > 1e-9 {
		t.Errorf("expected overall 0.36, got %.4f", dep.Overall)
	}
	wantVuln := 0.36 * (1.0 + 0.5*0.35)
	if math.Abs(dep.Vulnerability-wantVuln) > 1e-9 {
		t.Errorf("expected vulnerability %.4f, got %.4f", wantVuln, dep.Vulnerability)
	}
	if dep.MonthsToCollapse != 24 {
		t.Errorf("expected 24 months to collapse, got %d", dep.MonthsToCollapse)
	}
}

func TestDependency_Asymmetry(t *testing.T) {
	b, s, _ := newFixture(t)
	s.Economy.Get(1).TradeIncome = 10
	s.Economy.Get(2).TradeIncome = 990
	s.Diplomacy.Get(1).Relation(2)
	s.Diplomacy.Get(2).Relation(1)

	b.ProcessMonthly()

	weak := b.DependencyLevel(1, 2)
	strong := b.DependencyLevel(2, 1)
	if weak <= strong {
		t.Errorf("poorer realm should depend more: %.4f vs %.4f", weak, strong)
	}

	// The richer realm holds the leverage over the poorer one.
	if lev := b.EconomicLeverage(2, 1); lev <= 0.3 {
		t.Errorf("expected strong leverage for realm 2, got %.4f", lev)
	}
	if lev := b.EconomicLeverage(1, 2); lev >= 0 {
		t.Errorf("expected negative leverage for realm 1, got %.4f", lev)
	}
}

func TestMonthsToCollapse_Thresholds(t *testing.T) {
	tests := []struct {
		overall float64
		months  int
	}{
		{0.85, 3},
		{0.7, 6},
		{0.5, 12},
		{0.4, 24},
		{0.1, 24},
	}
	for _, tt := range tests {
		if got := monthsToCollapse(tt.overall); got != tt.months {
			t.Errorf("overall %.2f: expected %d months, got %d", tt.overall, tt.months, got)
		}
	}
}

func TestDependency_SeededFromTradeRoutes(t *testing.T) {
	b, s, _ := newFixture(t)
	addRoutesBetween(s)
	s.Economy.Get(1).TradeIncome = 10
	s.Economy.Get(2).TradeIncome = 990
	s.Economy.Get(3).TradeIncome = 100

	// No realm has made diplomatic contact; the routes alone must do it.
	b.ProcessMonthly()

	if _, ok := b.Dependency(1, 2); !ok {
		t.Fatal("route-connected realms should get a dependency assessment")
	}
	if b.DependencyLevel(1, 2) <= 0 {
		t.Error("dependency on a heavy trade partner should be positive")
	}
	// Realm 3 never opened a route itself; the inbound one still counts.
	if _, ok := b.Dependency(3, 1); !ok {
		t.Error("an inbound route should establish the relation too")
	}
}

func TestDependency_AbsentWithoutRelations(t *testing.T) {
	b, s, _ := newFixture(t)
	s.Economy.Get(1).TradeIncome = 100
	b.ProcessMonthly()
	if _, ok := b.Dependency(1, 2); ok {
		t.Error("no relation should yield no dependency assessment")
	}
}
