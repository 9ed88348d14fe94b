// Package speech provides announcement sinks.
package speech

import (
	"sync"
	"time"

	"github.com/mj1618/desktop-focus/internal/platform"
	"github.com/rs/zerolog"
)

// Entry is one spoken announcement.
type Entry struct {
	Seq  uint64    `yaml:"seq"  json:"seq"`
	At   time.Time `yaml:"at"   json:"at"`
	Text string    `yaml:"text" json:"text"`
}

// History keeps the most recent announcements in a fixed-size ring.
type History struct {
	mu     sync.RWMutex
	buffer []Entry
	head   int
	size   int
	seq    uint64
	now    func() time.Time
}

// NewHistory creates a history holding up to capacity entries.
func NewHistory(capacity int) *History {
	if capacity <= 0 {
		capacity = 1
	}
	return &History{buffer: make([]Entry, capacity), now: time.Now}
}

func (h *History) Announce(text string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.seq++
	h.buffer[h.head] = Entry{Seq: h.seq, At: h.now(), Text: text}
	h.head = (h.head + 1) % len(h.buffer)
	if h.size < len(h.buffer) {
		h.size++
	}
}

// Entries returns the retained announcements, oldest first.
func (h *History) Entries() []Entry {
	h.mu.RLock()
	defer h.mu.RUnlock()
	out := make([]Entry, h.size)
	start := (h.head - h.size + len(h.buffer)) % len(h.buffer)
	for i := 0; i < h.size; i++ {
		out[i] = h.buffer[(start+i)%len(h.buffer)]
	}
	return out
}

// Last returns up to n of the most recent announcements, oldest first.
func (h *History) Last(n int) []Entry {
	all := h.Entries()
	if n <= 0 || n >= len(all) {
		return all
	}
	return all[len(all)-n:]
}

// Texts returns the retained announcement texts, oldest first.
func (h *History) Texts() []string {
	entries := h.Entries()
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Text
	}
	return out
}

// Count returns how many times text was announced among retained entries.
func (h *History) Count(text string) int {
	n := 0
	for _, e := range h.Entries() {
		if e.Text == text {
			n++
		}
	}
	return n
}

// Total returns the number of announcements ever made.
func (h *History) Total() uint64 {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.seq
}

// Log writes announcements to a logger.
type Log struct {
	log zerolog.Logger
}

// NewLog returns a sink logging each announcement at info level.
func NewLog(log zerolog.Logger) *Log {
	return &Log{log: log.With().Str("component", "speech").Logger()}
}

func (l *Log) Announce(text string) {
	l.log.Info().Str("text", text).Msg("announce")
}

// Multi fans an announcement out to several sinks.
type Multi []platform.Announcer

func (m Multi) Announce(text string) {
	for _, a := range m {
		a.Announce(text)
	}
}
