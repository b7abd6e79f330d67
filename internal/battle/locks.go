package battle

import "sync"

// sessionLocks serializes mutations per battle id. Reordering two
// submissions for one session would corrupt the round counter and score;
// sessions for different players stay fully independent.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// acquire locks the mutex for id and returns its unlock func. Lock entries
// are kept for the life of the process; sessions are short-lived and few
// enough that reclaiming them is not worth the bookkeeping.
func (l *sessionLocks) acquire(id string) func() {
	l.mu.Lock()
	if l.locks == nil {
		l.locks = make(map[string]*sync.Mutex)
	}
	m, ok := l.locks[id]
	if !ok {
		m = &sync.Mutex{}
		l.locks[id] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
