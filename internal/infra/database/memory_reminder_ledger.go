package database

import (
	"context"
	"sync"
	"time"

	"school_schedule_bot/internal/domain/reminder"
)

// MemoryReminderLedger keeps the dedup ledger in process memory. It loses all
// history on restart, so a reminder whose fire window straddles a restart may
// be delivered twice. It exists for environments without a writable database
// and for benchmarking against the Postgres ledger.
type MemoryReminderLedger struct {
	mu   sync.Mutex
	sent map[reminder.Key]time.Time
}

func NewMemoryReminderLedger() *MemoryReminderLedger {
	return &MemoryReminderLedger{
		sent: make(map[reminder.Key]time.Time),
	}
}

func (l *MemoryReminderLedger) AlreadySent(_ context.Context, key reminder.Key) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	_, ok := l.sent[key]
	return ok, nil
}

func (l *MemoryReminderLedger) MarkSent(_ context.Context, key reminder.Key) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.sent[key]; !ok {
		l.sent[key] = time.Now().UTC()
	}
	return nil
}

// Cleanup drops entries whose date key is older than retainDays days.
// Lexicographic comparison works because date keys are YYYY-MM-DD strings.
func (l *MemoryReminderLedger) Cleanup(_ context.Context, retainDays int) error {
	border := time.Now().UTC().AddDate(0, 0, -retainDays).Format("2006-01-02")

	l.mu.Lock()
	defer l.mu.Unlock()
	for key := range l.sent {
		if key.DateKey < border {
			delete(l.sent, key)
		}
	}
	return nil
}

// Len reports the number of recorded reminders. Used by tests.
func (l *MemoryReminderLedger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.sent)
}
