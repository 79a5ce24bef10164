package repository

import "sync"

// State is the coarse lifecycle state of a repository.
type State string

const (
	StateUninitialized State = "uninitialized"
	StateLoading       State = "loading"
	StateReady         State = "ready"
	StateError         State = "error"
)

// Status is a snapshot of the shared loading/error indicator.
type Status struct {
	State   State  `json:"state"`
	Loading bool   `json:"loading"`
	Error   string `json:"error,omitempty"`
}

// statusTracker counts in-flight operations so overlapping calls cannot clear
// each other's loading flag. The error message is the last failure seen and is
// only replaced by a newer failure.
type statusTracker struct {
	mu          sync.Mutex
	initialized bool
	inflight    int
	failed      bool
	lastErr     string
}

func (t *statusTracker) begin() {
	t.mu.Lock()
	t.inflight++
	t.mu.Unlock()
}

func (t *statusTracker) done() {
	if t.inflight > 0 {
		t.inflight--
	}
}

// succeed ends an operation that completed.
func (t *statusTracker) succeed() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done()
	t.failed = false
}

// fail ends an operation that failed and records its message.
func (t *statusTracker) fail(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done()
	t.failed = true
	t.lastErr = msg
}

// abandon ends an operation whose caller went away; the status is unchanged.
func (t *statusTracker) abandon() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done()
}

// finishInit ends the initialization call.
func (t *statusTracker) finishInit(msg string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.done()
	t.initialized = true
	if msg != "" {
		t.failed = true
		t.lastErr = msg
		return
	}
	t.failed = false
}

func (t *statusTracker) isInitialized() bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.initialized
}

func (t *statusTracker) snapshot() Status {
	t.mu.Lock()
	defer t.mu.Unlock()

	s := Status{Loading: t.inflight > 0, Error: t.lastErr}
	switch {
	case t.inflight > 0:
		s.State = StateLoading
	case !t.initialized:
		s.State = StateUninitialized
	case t.failed:
		s.State = StateError
	default:
		s.State = StateReady
	}
	return s
}
