package events

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/goliatone/go-partsbin/pkg/collection"
)

// Lifecycle event names.
const (
	ParseStart    = "parse.start"
	ParseComplete = "parse.complete"
	Error         = "error"
	LogPrefix     = "log"
)

// Level is a log event severity.
type Level string

const (
	LevelDebug Level = "debug"
	LevelInfo  Level = "info"
	LevelWarn  Level = "warn"
	LevelError Level = "error"
)

// ParseLevel maps a string onto a Level. Empty input yields LevelDebug.
func ParseLevel(raw string) (Level, error) {
	switch Level(strings.ToLower(strings.TrimSpace(raw))) {
	case "", LevelDebug:
		return LevelDebug, nil
	case LevelInfo:
		return LevelInfo, nil
	case LevelWarn, "warning":
		return LevelWarn, nil
	case LevelError:
		return LevelError, nil
	default:
		return "", fmt.Errorf("events: unknown log level %q", raw)
	}
}

// EventName returns the log.<level> event name for l.
func (l Level) EventName() string {
	if l == "" {
		l = LevelDebug
	}
	return LogPrefix + "." + string(l)
}

// Slog converts l to the matching slog level.
func (l Level) Slog() slog.Level {
	switch l {
	case LevelInfo:
		return slog.LevelInfo
	case LevelWarn:
		return slog.LevelWarn
	case LevelError:
		return slog.LevelError
	default:
		return slog.LevelDebug
	}
}

// Event is the payload delivered to listeners. Which fields are set depends on
// the event: parse.complete carries Files and Components, error carries Err,
// log.<level> carries Message, Level and Data.
type Event struct {
	Name       string
	RunID      string
	Time       time.Time
	Message    string
	Level      Level
	Data       any
	Err        error
	Files      *collection.Collection
	Components *collection.Collection
}
