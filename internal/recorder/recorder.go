package recorder

import "github.com/wfuentes35/codigo-fut/internal/model"

// Recorder persists signal and close events for offline analysis. It is
// strictly a projection of engine state: a recorder failure never affects
// a cycle's decisions.
type Recorder interface {
	RecordSignal(pos *model.Position) error
	RecordClosed(pos *model.Position) error
	Close() error
}
