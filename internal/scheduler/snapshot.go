package scheduler

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"time"

	"Imperium/internal/bridge"
)

type snapshotFile struct {
	Day     int64                      `json:"day"`
	SavedAt time.Time                  `json:"saved_at"`
	Bridges map[string]bridge.Document `json:"bridges"`
}

// SaveSnapshot writes the calendar day and every bridge's state to the
// snapshot file.
func (c *Coordinator) SaveSnapshot() error {
	snap := snapshotFile{
		Day:     c.Day(),
		SavedAt: time.Now().UTC(),
		Bridges: make(map[string]bridge.Document, len(c.Bridges)),
	}
	for _, b := range c.Bridges {
		snap.Bridges[b.Name()] = b.Marshal()
	}

	data, err := json.MarshalIndent(snap, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal snapshot: %w", err)
	}
	if err := os.WriteFile(c.snapshotPath, data, 0644); err != nil {
		return fmt.Errorf("write snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot restores the calendar and bridge states from the snapshot
// file. A missing file is not an error; the simulation starts fresh.
func (c *Coordinator) LoadSnapshot() error {
	data, err := os.ReadFile(c.snapshotPath)
	if err != nil {
		if os.IsNotExist(err) {
			log.Printf("[INFO] no snapshot at %s, starting fresh", c.snapshotPath)
			return nil
		}
		return fmt.Errorf("read snapshot: %w", err)
	}

	var snap snapshotFile
	if err := json.Unmarshal(data, &snap); err != nil {
		return fmt.Errorf("parse snapshot: %w", err)
	}

	c.mu.Lock()
	c.day = snap.Day
	c.mu.Unlock()

	for _, b := range c.Bridges {
		doc, ok := snap.Bridges[b.Name()]
		if !ok {
			log.Printf("[WARN] snapshot has no state for %s", b.Name())
			continue
		}
		if !b.Unmarshal(doc) {
			log.Printf("[WARN] snapshot state for %s rejected, starting that bridge fresh", b.Name())
		}
	}

	log.Printf("[INFO] snapshot restored: day %d, saved %s", snap.Day, snap.SavedAt.Format(time.RFC3339))
	return nil
}
