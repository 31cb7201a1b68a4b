package model

// LevelKey names one of the daily pivot levels.
type LevelKey string

const (
	LevelPP LevelKey = "PP"
	LevelR1 LevelKey = "R1"
	LevelR2 LevelKey = "R2"
	LevelR3 LevelKey = "R3"
	LevelS1 LevelKey = "S1"
	LevelS2 LevelKey = "S2"
	LevelS3 LevelKey = "S3"
)

// PivotLevels is one instrument's labeled level set for a single UTC
// trading day. Levels are immutable for the day; a snapshot carrying the
// wrong date is treated as unavailable.
type PivotLevels struct {
	Date   string               `json:"date"` // UTC day, "2006-01-02"
	Levels map[LevelKey]float64 `json:"levels"`
}

// FreshFor reports whether the snapshot was computed for the given UTC day.
func (p PivotLevels) FreshFor(day string) bool {
	return p.Date == day && len(p.Levels) > 0
}

// Level returns the named level, with ok=false when the key is absent.
func (p PivotLevels) Level(key LevelKey) (float64, bool) {
	v, ok := p.Levels[key]
	return v, ok
}
