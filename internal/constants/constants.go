package constants

import "time"

const (
	// DebounceDelay is how long a pending life delta waits for further
	// presses before committing as a single action.
	DebounceDelay = 1500 * time.Millisecond
	// LongPressThreshold is the press-and-hold duration that upgrades a
	// tap to a long press.
	LongPressThreshold = 500 * time.Millisecond
	// TapStep and LongPressStep are the per-press delta magnitudes.
	TapStep       = 1
	LongPressStep = 10
)

const (
	ExternalAPITimeout = 10 * time.Second
	RequestTimeout     = 30 * time.Second
)

const (
	DBMaxOpenConns    = 10
	DBMaxIdleConns    = 5
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	CardSuggestionLimit = 10
)
