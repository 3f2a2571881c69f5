package bridge

import (
	"math"
	"testing"

	"Imperium/internal/events"
	"Imperium/internal/model"
	"Imperium/internal/treasury"
	"Imperium/internal/world"
)

func newTechnologyFixture(t *testing.T) (*TechnologyBridge, *world.Store, *events.Bus) {
	t.Helper()
	s := world.NewStore()
	s.AddRealm(1, "Castellum")

	res := s.Research.Get(1)
	res.Implemented[model.TechAgriculture] = 2
	res.Implemented[model.TechCrafting] = 1
	res.Implemented[model.TechNaval] = 1
	res.Implemented[model.TechAdministration] = 1
	res.Universities = 1
	res.Libraries = 2
	res.Workshops = 1
	res.Scholars = 5

	econ := s.Economy.Get(1)
	econ.Treasury = 6000
	econ.TaxIncome = 4000
	econ.TradeIncome = 1000

	tm, err := treasury.NewManager(s.Economy, 0, 0)
	if err != nil {
		t.Fatalf("treasury: %v", err)
	}
	bus := events.NewBus()
	b, err := NewTechnologyBridge(DefaultTechnologyConfig(), s.Research, s.Economy, s.Trade, tm, bus)
	if err != nil {
		t.Fatalf("bridge: %v", err)
	}
	return b, s, bus
}

func TestTechnologyBridge_MultipliersFromImplementedTech(t *testing.T) {
	b, s, _ := newTechnologyFixture(t)
	b.UpdateEntity(1, SecondsPerDay)

	econ := s.Economy.Get(1)
	// 2 agriculture + 1 crafting: 1 + 0.30 + 0.20.
	if math.Abs(econ.ProductionEfficiency-1.5) > 1e-9 {
		t.Errorf("expected production efficiency 1.5, got %.4f", econ.ProductionEfficiency)
	}
	// 1 naval + 1 crafting: 1 + 0.10 + 0.05.
	if math.Abs(econ.TechTradeBonus-1.15) > 1e-9 {
		t.Errorf("expected tech trade bonus 1.15, got %.4f", econ.TechTradeBonus)
	}
	// 1 administration: 1 + 0.12.
	if math.Abs(econ.TechTaxBonus-1.12) > 1e-9 {
		t.Errorf("expected tech tax bonus 1.12, got %.4f", econ.TechTaxBonus)
	}
	if math.Abs(econ.MonthlyExpenses-170) > 1e-9 {
		t.Errorf("expected monthly expenses 170, got %.2f", econ.MonthlyExpenses)
	}
}

func TestTechnologyBridge_MultipliersDoNotCompound(t *testing.T) {
	b, s, _ := newTechnologyFixture(t)
	b.UpdateEntity(1, SecondsPerDay)
	b.UpdateEntity(1, 2*SecondsPerDay)
	b.UpdateEntity(1, 3*SecondsPerDay)

	econ := s.Economy.Get(1)
	if math.Abs(econ.ProductionEfficiency-1.5) > 1e-9 {
		t.Errorf("production efficiency compounded to %.4f", econ.ProductionEfficiency)
	}
	if math.Abs(econ.TechTradeBonus-1.15) > 1e-9 {
		t.Errorf("trade bonus compounded to %.4f", econ.TechTradeBonus)
	}
}

func TestTechnologyBridge_ResearchBudget(t *testing.T) {
	b, s, _ := newTechnologyFixture(t)
	b.UpdateEntity(1, SecondsPerDay)

	res := s.Research.Get(1)
	// Income 5000, treasury above the wealthy threshold: 8% budget.
	if math.Abs(res.MonthlyBudget-400) > 1e-9 {
		t.Errorf("expected research budget 400, got %.2f", res.MonthlyBudget)
	}

	// Investment splits proportionally with a +1 floor per category:
	// weights agri 3, craft 2, naval 2, admin 2, academic 1, total 10.
	if got := res.CategoryInvestment[model.TechAgriculture]; math.Abs(got-120) > 1e-9 {
		t.Errorf("expected agriculture investment 120, got %.2f", got)
	}
	if got := res.CategoryInvestment[model.TechAcademic]; math.Abs(got-40) > 1e-9 {
		t.Errorf("expected academic investment 40, got %.2f", got)
	}
}

func TestTechnologyBridge_MonthlyUpkeep(t *testing.T) {
	b, s, _ := newTechnologyFixture(t)
	b.ProcessMonthly()
	if got := s.Economy.Get(1).Treasury; got != 5830 {
		t.Errorf("expected treasury 5830 after upkeep, got %d", got)
	}
}

func TestTechnologyBridge_ResearchROI(t *testing.T) {
	b, _, _ := newTechnologyFixture(t)
	if _, ok := b.ResearchROI(1); ok {
		t.Error("ROI before any update should report ok=false")
	}
	b.UpdateEntity(1, SecondsPerDay)
	roi, ok := b.ResearchROI(1)
	if !ok {
		t.Fatal("ROI after update should report ok=true")
	}
	// One period: invested 400, impact gain 0.5 → 100*0.5/400.
	if math.Abs(roi-0.125) > 1e-9 {
		t.Errorf("expected ROI 0.125, got %.4f", roi)
	}
}

func TestTechnologyBridge_FundingCrisis(t *testing.T) {
	b, s, bus := newTechnologyFixture(t)

	var crises []events.Crisis
	bus.Subscribe(events.KindResearchFundingCrisis, func(e events.Event) {
		crises = append(crises, e.(events.Crisis))
	})

	econ := s.Economy.Get(1)
	econ.TaxIncome = 100
	econ.TradeIncome = 0
	econ.Treasury = 100

	// Budget 5 against 170 upkeep is far below the funding threshold.
	b.UpdateEntity(1, SecondsPerDay)
	if len(crises) != 1 {
		t.Fatalf("expected a funding crisis, got %d events", len(crises))
	}
}
