package testkit

import (
	"sync"

	"github.com/lguibr/bollywood"
)

// RecordingDeadLetterListener is a bollywood.DeadLetterListener that buffers
// every record it sees, for tests that assert on what ended up in dead
// letters. Grounded on the original runtime's
// testkit/test_dead_letters_listener.py TestDeadLettersListener.
type RecordingDeadLetterListener struct {
	mu      sync.Mutex
	records []bollywood.DeadLetter
}

// NewRecordingDeadLetterListener returns an empty listener ready to
// register with a Stage via stage.DeadLetters().Listen(listener).
func NewRecordingDeadLetterListener() *RecordingDeadLetterListener {
	return &RecordingDeadLetterListener{}
}

func (l *RecordingDeadLetterListener) DeadLetter(record bollywood.DeadLetter) {
	l.mu.Lock()
	l.records = append(l.records, record)
	l.mu.Unlock()
}

// Records returns a snapshot of everything recorded so far.
func (l *RecordingDeadLetterListener) Records() []bollywood.DeadLetter {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]bollywood.DeadLetter, len(l.records))
	copy(out, l.records)
	return out
}

// Count returns how many dead letters have been recorded so far.
func (l *RecordingDeadLetterListener) Count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.records)
}

// Reset clears the listener's buffer, without unregistering it.
func (l *RecordingDeadLetterListener) Reset() {
	l.mu.Lock()
	l.records = nil
	l.mu.Unlock()
}
