package treasury

import (
	"testing"

	"Imperium/internal/world"
)

func newManager(t *testing.T, floor, ceiling int64) (*Manager, *world.Store) {
	t.Helper()
	s := world.NewStore()
	s.AddRealm(1, "Aquileia")
	m, err := NewManager(s.Economy, floor, ceiling)
	if err != nil {
		t.Fatalf("manager: %v", err)
	}
	return m, s
}

func TestSpendMoney_FloorBlocksOverdraft(t *testing.T) {
	m, s := newManager(t, 100, 0)
	s.Economy.Get(1).Treasury = 150

	if m.SpendMoney(1, 60) {
		t.Error("spend below the floor should fail")
	}
	if got := s.Economy.Get(1).Treasury; got != 150 {
		t.Errorf("failed spend should not touch the balance, got %d", got)
	}
	if !m.SpendMoney(1, 50) {
		t.Error("spend down to the floor should succeed")
	}
	if got := s.Economy.Get(1).Treasury; got != 100 {
		t.Errorf("expected balance 100, got %d", got)
	}
}

func TestSpendMoney_Validation(t *testing.T) {
	m, s := newManager(t, 0, 0)
	s.Economy.Get(1).Treasury = 500

	if m.SpendMoney(1, -10) {
		t.Error("negative spend should fail")
	}
	if m.SpendMoney(99, 10) {
		t.Error("spend for an unknown realm should fail")
	}
}

func TestAddMoney_SaturatesAtCeiling(t *testing.T) {
	m, s := newManager(t, 0, 1000)
	s.Economy.Get(1).Treasury = 900

	m.AddMoney(1, 300)
	if got := s.Economy.Get(1).Treasury; got != 1000 {
		t.Errorf("deposit should clamp at the ceiling, got %d", got)
	}

	m.AddMoney(1, -50)
	if got := s.Economy.Get(1).Treasury; got != 1000 {
		t.Errorf("negative deposit should be ignored, got %d", got)
	}
}

func TestBalance(t *testing.T) {
	m, s := newManager(t, 0, 0)
	s.Economy.Get(1).Treasury = 777

	if got, ok := m.Balance(1); !ok || got != 777 {
		t.Errorf("expected balance 777, got %d (ok=%v)", got, ok)
	}
	if _, ok := m.Balance(99); ok {
		t.Error("balance for an unknown realm should report ok=false")
	}
}

func TestNewManager_Validation(t *testing.T) {
	if _, err := NewManager(nil, 0, 0); err == nil {
		t.Error("nil economy table should fail")
	}
	s := world.NewStore()
	if _, err := NewManager(s.Economy, 500, 100); err == nil {
		t.Error("floor above ceiling should fail")
	}
}
