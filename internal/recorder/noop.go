package recorder

import "github.com/wfuentes35/codigo-fut/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordSignal(_ *model.Position) error { return nil }
func (n *NoopRecorder) RecordClosed(_ *model.Position) error { return nil }
func (n *NoopRecorder) Close() error                         { return nil }
