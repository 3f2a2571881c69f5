package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"Imperium/internal/advisor"
	"Imperium/internal/bridge"
	"Imperium/internal/config"
	"Imperium/internal/diplomacy"
	"Imperium/internal/events"
	"Imperium/internal/recorder"
	"Imperium/internal/scheduler"
	"Imperium/internal/treasury"
	"Imperium/internal/world"
)

func main() {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	log.Println("[INFO] Imperium starting...")

	// Load config
	cfgPath := "configs/config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		cfgPath = v
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		log.Fatalf("[FATAL] load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("[FATAL] config validation: %v", err)
	}

	// Load the world
	var source world.Source
	if cfg.World.File != "" {
		source = world.NewFileSource(cfg.World.File)
	} else {
		source = world.SampleSource{}
	}
	log.Printf("[INFO] world source: %s", source.Name())
	store, err := source.Load()
	if err != nil {
		log.Fatalf("[FATAL] load world: %v", err)
	}

	// Init treasury
	tm, err := treasury.NewManager(store.Economy, cfg.Treasury.Floor, cfg.Treasury.Ceiling)
	if err != nil {
		log.Fatalf("[FATAL] init treasury: %v", err)
	}

	// Init event bus
	bus := events.NewBus()
	events.AttachLogger(bus)

	// Init bridges
	popBridge, err := bridge.NewPopulationBridge(cfg.Population, store.Population, store.Economy, tm, bus)
	if err != nil {
		log.Fatalf("[FATAL] init population bridge: %v", err)
	}
	tradeBridge, err := bridge.NewTradeBridge(cfg.Trade, store.Trade, store.Economy, tm, bus)
	if err != nil {
		log.Fatalf("[FATAL] init trade bridge: %v", err)
	}
	techBridge, err := bridge.NewTechnologyBridge(cfg.Technology, store.Research, store.Economy, store.Trade, tm, bus)
	if err != nil {
		log.Fatalf("[FATAL] init technology bridge: %v", err)
	}
	diploBridge, err := diplomacy.NewBridge(cfg.Diplomacy, store.Economy, store.Diplomacy, store.Trade, tm, bus)
	if err != nil {
		log.Fatalf("[FATAL] init diplomacy bridge: %v", err)
	}

	// Init war advisor. It re-evaluates every ongoing war as the monthly
	// damage lands.
	adv, err := advisor.New(diploBridge, tm)
	if err != nil {
		log.Fatalf("[FATAL] init advisor: %v", err)
	}
	bus.SubscribeAll(func(e events.Event) {
		d, ok := e.(events.WarEconomicDamage)
		if !ok {
			return
		}
		counsel := adv.CounselWar(d.Aggressor, d.Defender)
		log.Printf("[INFO] war counsel %s vs %s: score %.2f (%s)",
			store.Name(d.Aggressor), store.Name(d.Defender), counsel.TotalScore, counsel.Tier.Label)
	})

	// Init recorder
	var rec recorder.Recorder
	if cfg.Database.SQLitePath != "" {
		sr, err := recorder.NewSQLiteRecorder(cfg.Database.SQLitePath)
		if err != nil {
			log.Printf("[WARN] init sqlite recorder failed, using noop: %v", err)
			rec = recorder.NewNoopRecorder()
		} else {
			rec = sr
			defer sr.Close()
		}
	} else {
		rec = recorder.NewNoopRecorder()
	}

	// Context for graceful shutdown
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Init coordinator
	bridges := []bridge.Bridge{popBridge, tradeBridge, techBridge, diploBridge}
	monthly := []scheduler.Monthly{techBridge, diploBridge}
	yearly := []scheduler.Yearly{diploBridge}
	coord, err := scheduler.NewCoordinator(ctx, store, bridges, monthly, yearly, rec, bus, cfg.Simulation.Workers, cfg.Simulation.SnapshotFile)
	if err != nil {
		log.Fatalf("[FATAL] init coordinator: %v", err)
	}
	if err := coord.LoadSnapshot(); err != nil {
		log.Printf("[WARN] restore snapshot: %v", err)
	}
	if err := coord.RegisterAll(cfg.Simulation.DailyCron); err != nil {
		log.Fatalf("[FATAL] register cron tasks: %v", err)
	}
	coord.Start()
	defer coord.Stop()

	// Optional: run immediately on start
	if os.Getenv("RUN_ON_START") == "true" {
		log.Println("[INFO] RUN_ON_START enabled, executing daily tick now")
		go coord.RunDailyNow()
	}

	log.Println("[INFO] Imperium is running. Press Ctrl+C to stop.")

	// Wait for shutdown signal
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	<-sigCh

	log.Println("[INFO] shutdown signal received, stopping...")
	cancel()
	if err := coord.SaveSnapshot(); err != nil {
		log.Printf("[ERROR] save snapshot on shutdown: %v", err)
	}
	log.Println("[INFO] Imperium stopped")
}
