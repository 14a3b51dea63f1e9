// Package bus implements the agents' publish/subscribe log: an append-only
// active list with monotonic IDs, a bounded history ring, and independent
// per-consumer read cursors so multiple readers each see every message.
package bus

import (
	"sync"
	"time"

	"github.com/talgya/rescuegrid/internal/protocol"
)

// DefaultHistory is the history ring capacity when none is configured.
const DefaultHistory = 500

// Bus is safe for concurrent use. All operations are O(active+history) at
// worst and never block.
type Bus struct {
	mu       sync.Mutex
	active   []protocol.Message
	history  []protocol.Message
	capacity int
	nextID   int64
	cursors  map[string]int64
}

// New creates a Bus whose history retains at most historyCap messages.
// Non-positive values fall back to DefaultHistory.
func New(historyCap int) *Bus {
	if historyCap <= 0 {
		historyCap = DefaultHistory
	}
	return &Bus{
		capacity: historyCap,
		nextID:   1,
		cursors:  make(map[string]int64),
	}
}

// Send appends one message and returns its ID. IDs start at 1 and increase
// strictly by one per send, regardless of calling goroutine.
func (b *Bus) Send(sender string, intent protocol.Intent) int64 {
	b.mu.Lock()
	defer b.mu.Unlock()

	msg := protocol.Message{
		ID:        b.nextID,
		Sender:    sender,
		Type:      intent.Kind(),
		Payload:   intent.Payload,
		Priority:  intent.Priority,
		Timestamp: time.Now(),
	}
	b.nextID++

	b.active = append(b.active, msg)
	b.history = append(b.history, msg)
	if len(b.history) > b.capacity {
		b.history = b.history[len(b.history)-b.capacity:]
	}
	return msg.ID
}

// ReadAll returns the active messages with ID greater than this consumer's
// cursor, then advances the cursor to the newest active ID. Distinct
// consumer IDs replay independently.
func (b *Bus) ReadAll(consumerID string) []protocol.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	cursor := b.cursors[consumerID]
	var out []protocol.Message
	for _, m := range b.active {
		if m.ID > cursor {
			out = append(out, m)
		}
	}
	if n := len(b.active); n > 0 {
		b.cursors[consumerID] = b.active[n-1].ID
	}
	return out
}

// Drain atomically empties the active list and returns everything that was
// in it, ignoring consumer cursors. Legacy full-flush mode.
func (b *Bus) Drain() []protocol.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	out := b.active
	b.active = nil
	return out
}

// ReadRecent returns up to count most recent history entries. It does not
// touch any cursor.
func (b *Bus) ReadRecent(count int) []protocol.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	start := len(b.history) - count
	if start < 0 {
		start = 0
	}
	out := make([]protocol.Message, len(b.history)-start)
	copy(out, b.history[start:])
	return out
}

// History returns history entries with ID greater than sinceID.
func (b *Bus) History(sinceID int64) []protocol.Message {
	b.mu.Lock()
	defer b.mu.Unlock()

	var out []protocol.Message
	for _, m := range b.history {
		if m.ID > sinceID {
			out = append(out, m)
		}
	}
	return out
}

// ClearOld truncates the active list to its last keepRecent entries. History
// is untouched; it remains the durable record up to its own capacity.
func (b *Bus) ClearOld(keepRecent int) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if keepRecent < 0 {
		keepRecent = 0
	}
	if len(b.active) > keepRecent {
		kept := make([]protocol.Message, keepRecent)
		copy(kept, b.active[len(b.active)-keepRecent:])
		b.active = kept
	}
}

// Reset clears the active list, history, cursors, and ID counter.
func (b *Bus) Reset() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.active = nil
	b.history = nil
	b.nextID = 1
	b.cursors = make(map[string]int64)
}
