package sim

import (
	"fmt"
	"strings"
)

// EventLogEntry is one recorded event of a simulation run.
type EventLogEntry struct {
	Tick     int
	Subject  string  // label e.g. "U12", "P0", "F1", or "--" for global events
	Faction  string  // "f0".."f7" or "--"
	Category string  // config, input, select, move, spawn, combat, death, supply, pylon
	Key      string  // specific event name within the category
	Value    string  // human-readable detail
	NumVal   float64 // optional numeric value for threshold checks
}

// String formats the entry as a fixed-width log line.
//
//	[T=042] U7   f1  combat    fired           U7 → U3 dmg=6.60
func (e EventLogEntry) String() string {
	return fmt.Sprintf("[T=%03d] %-4s %-3s %-9s %-15s %s",
		e.Tick, e.Subject, e.Faction, e.Category, e.Key, e.Value)
}

// EventLog collects structured events during a run. It is unbounded and
// machine-readable; renderers keep their own short ring buffers.
type EventLog struct {
	entries []EventLogEntry
	verbose bool
}

// NewEventLog creates an EventLog. If verbose is true, per-tick fire and link
// entries are also recorded (useful for detailed debugging).
func NewEventLog(verbose bool) *EventLog {
	return &EventLog{verbose: verbose}
}

// Add records a new entry.
func (l *EventLog) Add(tick int, subject, faction, category, key, value string, numVal float64) {
	l.entries = append(l.entries, EventLogEntry{
		Tick:     tick,
		Subject:  subject,
		Faction:  faction,
		Category: category,
		Key:      key,
		Value:    value,
		NumVal:   numVal,
	})
}

// AddVerbose records an entry only when verbose mode is on.
func (l *EventLog) AddVerbose(tick int, subject, faction, category, key, value string, numVal float64) {
	if !l.verbose {
		return
	}
	l.Add(tick, subject, faction, category, key, value, numVal)
}

// Verbose reports whether per-tick entries are recorded.
func (l *EventLog) Verbose() bool { return l.verbose }

// Entries returns all recorded entries.
func (l *EventLog) Entries() []EventLogEntry {
	return l.entries
}

// Filter returns entries matching the given category and/or key.
// Pass empty string to match any value for that field.
func (l *EventLog) Filter(category, key string) []EventLogEntry {
	var out []EventLogEntry
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		out = append(out, e)
	}
	return out
}

// FilterSubject returns entries for a specific subject label.
func (l *EventLog) FilterSubject(label string) []EventLogEntry {
	var out []EventLogEntry
	for _, e := range l.entries {
		if e.Subject == label {
			out = append(out, e)
		}
	}
	return out
}

// FilterTickRange returns entries within [fromTick, toTick] inclusive.
func (l *EventLog) FilterTickRange(fromTick, toTick int) []EventLogEntry {
	var out []EventLogEntry
	for _, e := range l.entries {
		if e.Tick >= fromTick && e.Tick <= toTick {
			out = append(out, e)
		}
	}
	return out
}

// CountCategory returns how many entries match the given category and key.
func (l *EventLog) CountCategory(category, key string) int {
	return len(l.Filter(category, key))
}

// LastOf returns the most recent entry matching category+key, or false if none.
func (l *EventLog) LastOf(category, key string) (EventLogEntry, bool) {
	entries := l.Filter(category, key)
	if len(entries) == 0 {
		return EventLogEntry{}, false
	}
	return entries[len(entries)-1], true
}

// HasEntry returns true if at least one entry matches category, key, and value substring.
func (l *EventLog) HasEntry(category, key, valueSubstr string) bool {
	for _, e := range l.entries {
		if category != "" && e.Category != category {
			continue
		}
		if key != "" && e.Key != key {
			continue
		}
		if valueSubstr != "" && !strings.Contains(e.Value, valueSubstr) {
			continue
		}
		return true
	}
	return false
}

// Format returns the full log as a single string for t.Log output.
func (l *EventLog) Format() string {
	var sb strings.Builder
	for _, e := range l.entries {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

// FormatRange returns a log string filtered to a tick range.
func (l *EventLog) FormatRange(fromTick, toTick int) string {
	var sb strings.Builder
	for _, e := range l.FilterTickRange(fromTick, toTick) {
		sb.WriteString(e.String())
		sb.WriteByte('\n')
	}
	return sb.String()
}

func unitLabel(id UnitID) string { return fmt.Sprintf("U%d", id) }

func pylonLabel(id PylonID) string { return fmt.Sprintf("P%d", id) }

func factionLabel(f FactionID) string { return fmt.Sprintf("f%d", f) }
