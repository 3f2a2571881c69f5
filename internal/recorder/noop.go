package recorder

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordCrisis(_ *CrisisEvent) error       { return nil }
func (n *NoopRecorder) RecordSanction(_ *SanctionEvent) error   { return nil }
func (n *NoopRecorder) RecordAgreement(_ *AgreementEvent) error { return nil }
func (n *NoopRecorder) RecordSnapshot(_ *BridgeSnapshot) error  { return nil }
func (n *NoopRecorder) Close() error                            { return nil }
