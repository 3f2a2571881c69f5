package recorder

import "Imperium/internal/model"

// CrisisEvent records one crisis onset.
type CrisisEvent struct {
	Day      int64
	Realm    model.EntityID
	Crisis   string
	Severity float64
	Causes   string // comma-joined
}

// SanctionEvent records an imposition or a lift.
type SanctionEvent struct {
	Day           int64
	SanctionID    string
	EventType     string // "IMPOSED" or "LIFTED"
	Imposer       model.EntityID
	Target        model.EntityID
	Severity      string
	MonthlyDamage int64
	TotalDamage   int64
	MonthsActive  int
}

// AgreementEvent records a signing or an expiry.
type AgreementEvent struct {
	Day            int64
	AgreementID    string
	EventType      string // "ESTABLISHED" or "EXPIRED"
	RealmA         model.EntityID
	RealmB         model.EntityID
	TradeBonus     float64
	ValueGenerated float64
}

// BridgeSnapshot records one bridge's health for one realm after a tick.
type BridgeSnapshot struct {
	Day      int64
	Bridge   string
	Realm    model.EntityID
	Balance  float64
	Severity float64
	Treasury int64
}

// Recorder persists simulation history for analysis.
type Recorder interface {
	RecordCrisis(evt *CrisisEvent) error
	RecordSanction(evt *SanctionEvent) error
	RecordAgreement(evt *AgreementEvent) error
	RecordSnapshot(snap *BridgeSnapshot) error
	Close() error
}
