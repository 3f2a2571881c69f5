package scheduler

import (
	"context"
	"fmt"
	"log"
	"strings"
	"sync"

	"Imperium/internal/bridge"
	"Imperium/internal/events"
	"Imperium/internal/model"
	"Imperium/internal/recorder"
	"Imperium/internal/world"

	"github.com/robfig/cron/v3"
	"golang.org/x/sync/errgroup"
)

// Monthly is implemented by subsystems needing a monthly maintenance pass.
type Monthly interface {
	Name() string
	ProcessMonthly()
}

// Yearly is implemented by subsystems needing a yearly maintenance pass.
type Yearly interface {
	Name() string
	ProcessYearly()
}

// Calendar granularity: a month is 30 in-game days, a year 360.
const (
	DaysPerMonth = 30
	DaysPerYear  = 360
)

// Coordinator owns the in-game calendar. Each daily tick advances the
// calendar one day and sweeps every bridge; within a bridge the entities run
// in parallel, but bridges run one after another so the economic records
// have a single writing subsystem per tick. Monthly and yearly maintenance
// run from the day counter inside the same tick, never concurrently with a
// sweep.
type Coordinator struct {
	Cron     *cron.Cron
	Store    *world.Store
	Bridges  []bridge.Bridge
	Monthly  []Monthly
	Yearly   []Yearly
	Recorder recorder.Recorder
	Bus      *events.Bus
	Ctx      context.Context

	workers      int
	snapshotPath string

	// tickMu serializes ticks and manual maintenance triggers.
	tickMu sync.Mutex

	mu      sync.Mutex
	day     int64
	created map[string]bool
}

// NewCoordinator creates a Coordinator and wires the recording subscriber.
func NewCoordinator(ctx context.Context, store *world.Store, bridges []bridge.Bridge, monthly []Monthly, yearly []Yearly, rec recorder.Recorder, bus *events.Bus, workers int, snapshotPath string) (*Coordinator, error) {
	if store == nil {
		return nil, fmt.Errorf("scheduler: store is required")
	}
	if len(bridges) == 0 {
		return nil, fmt.Errorf("scheduler: at least one bridge is required")
	}
	if rec == nil {
		return nil, fmt.Errorf("scheduler: recorder is required")
	}
	if bus == nil {
		return nil, fmt.Errorf("scheduler: event bus is required")
	}
	if workers < 1 {
		workers = 4
	}

	c := &Coordinator{
		Cron:         cron.New(cron.WithSeconds()),
		Store:        store,
		Bridges:      bridges,
		Monthly:      monthly,
		Yearly:       yearly,
		Recorder:     rec,
		Bus:          bus,
		Ctx:          ctx,
		workers:      workers,
		snapshotPath: snapshotPath,
		created:      make(map[string]bool),
	}
	bus.SubscribeAll(c.recordEvent)
	return c, nil
}

// RegisterAll registers the daily tick. Monthly and yearly maintenance hang
// off the day counter, so the daily cadence is the only wall-clock schedule.
func (c *Coordinator) RegisterAll(dailyCron string) error {
	if _, err := c.Cron.AddFunc(dailyCron, c.dailyTick); err != nil {
		return fmt.Errorf("register daily tick: %w", err)
	}
	return nil
}

// Start starts the cron scheduler.
func (c *Coordinator) Start() {
	c.Cron.Start()
	log.Println("[INFO] scheduler started")
}

// Stop stops the cron scheduler gracefully.
func (c *Coordinator) Stop() {
	c.Cron.Stop()
	log.Println("[INFO] scheduler stopped")
}

// Day returns the current in-game day.
func (c *Coordinator) Day() int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.day
}

// RunDailyNow executes one daily tick immediately (manual trigger / RUN_ON_START).
func (c *Coordinator) RunDailyNow() {
	c.dailyTick()
}

// RunMonthlyNow executes the monthly maintenance immediately.
func (c *Coordinator) RunMonthlyNow() {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()
	c.monthlyTask()
}

func (c *Coordinator) dailyTick() {
	c.tickMu.Lock()
	defer c.tickMu.Unlock()

	c.mu.Lock()
	c.day++
	day := c.day
	c.mu.Unlock()

	now := float64(day) * bridge.SecondsPerDay
	log.Printf("[INFO] day %d tick", day)

	for _, b := range c.Bridges {
		c.sweep(b, now)
	}
	if day%DaysPerMonth == 0 {
		c.monthlyTask()
	}
	if day%DaysPerYear == 0 {
		c.yearlyTask()
	}
	c.recordSnapshots(day)

	if c.snapshotPath != "" {
		if err := c.SaveSnapshot(); err != nil {
			log.Printf("[ERROR] save snapshot: %v", err)
		}
	}
}

// sweep updates one bridge's entities in parallel. Entity updates within a
// bridge touch disjoint records, so the visitation order never changes the
// outcome.
func (c *Coordinator) sweep(b bridge.Bridge, now float64) {
	ids := b.Entities()
	for _, id := range ids {
		c.noteTracking(b.Name(), id)
	}

	g, _ := errgroup.WithContext(c.Ctx)
	g.SetLimit(c.workers)
	for _, id := range ids {
		id := id
		g.Go(func() error {
			if b.ShouldUpdate(id, now) {
				b.UpdateEntity(id, now)
			}
			return nil
		})
	}
	_ = g.Wait()
}

// noteTracking logs state creation once per (bridge, entity).
func (c *Coordinator) noteTracking(bridgeName string, id model.EntityID) {
	key := fmt.Sprintf("%s/%d", bridgeName, id)
	c.mu.Lock()
	seen := c.created[key]
	if !seen {
		c.created[key] = true
	}
	c.mu.Unlock()
	if !seen {
		log.Printf("[INFO] %s now tracking %s", bridgeName, c.Store.Name(id))
	}
}

func (c *Coordinator) monthlyTask() {
	log.Println("[INFO] running monthly maintenance")
	for _, m := range c.Monthly {
		m.ProcessMonthly()
	}
}

func (c *Coordinator) yearlyTask() {
	log.Println("[INFO] running yearly maintenance")
	for _, y := range c.Yearly {
		y.ProcessYearly()
	}
}

func (c *Coordinator) recordSnapshots(day int64) {
	for _, b := range c.Bridges {
		for _, id := range b.Entities() {
			balance, severity, ok := b.Health(id)
			if !ok {
				continue
			}
			var treasury int64
			if econ := c.Store.Economy.Get(id); econ != nil {
				treasury = econ.Treasury
			}
			if err := c.Recorder.RecordSnapshot(&recorder.BridgeSnapshot{
				Day:      day,
				Bridge:   b.Name(),
				Realm:    id,
				Balance:  balance,
				Severity: severity,
				Treasury: treasury,
			}); err != nil {
				log.Printf("[ERROR] record snapshot: %v", err)
			}
		}
	}
}

func (c *Coordinator) recordEvent(e events.Event) {
	day := c.Day()
	var err error
	switch ev := e.(type) {
	case events.Crisis:
		err = c.Recorder.RecordCrisis(&recorder.CrisisEvent{
			Day:      day,
			Realm:    ev.Realm,
			Crisis:   ev.CrisisKind,
			Severity: ev.Severity,
			Causes:   strings.Join(ev.Causes, ","),
		})
	case events.SanctionImposed:
		err = c.Recorder.RecordSanction(&recorder.SanctionEvent{
			Day:           day,
			SanctionID:    ev.SanctionID,
			EventType:     "IMPOSED",
			Imposer:       ev.Imposer,
			Target:        ev.Target,
			Severity:      ev.Severity.String(),
			MonthlyDamage: ev.MonthlyDamage,
		})
	case events.SanctionLifted:
		err = c.Recorder.RecordSanction(&recorder.SanctionEvent{
			Day:          day,
			SanctionID:   ev.SanctionID,
			EventType:    "LIFTED",
			Imposer:      ev.Imposer,
			Target:       ev.Target,
			TotalDamage:  ev.TotalDamage,
			MonthsActive: ev.MonthsActive,
		})
	case events.TradeAgreementEstablished:
		err = c.Recorder.RecordAgreement(&recorder.AgreementEvent{
			Day:         day,
			AgreementID: ev.AgreementID,
			EventType:   "ESTABLISHED",
			RealmA:      ev.RealmA,
			RealmB:      ev.RealmB,
			TradeBonus:  ev.ExpectedTradeIncrease,
		})
	case events.TradeAgreementExpired:
		err = c.Recorder.RecordAgreement(&recorder.AgreementEvent{
			Day:            day,
			AgreementID:    ev.AgreementID,
			EventType:      "EXPIRED",
			RealmA:         ev.RealmA,
			RealmB:         ev.RealmB,
			ValueGenerated: ev.TotalValueGenerated,
		})
	}
	if err != nil {
		log.Printf("[ERROR] record event %s: %v", e.Kind(), err)
	}
}
