package scheduling

import "sync"

// equipmentLocks hands out one mutex per equipment id so the conflict-check
// plus insert sequence in Create runs mutually excluded per equipment. Two
// racing creations for the same equipment serialize here; the loser re-checks
// against the winner's committed row and fails with a ConflictError.
type equipmentLocks struct {
	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func newEquipmentLocks() *equipmentLocks {
	return &equipmentLocks{locks: make(map[int64]*sync.Mutex)}
}

// get returns the mutex for an equipment id, creating it on first use.
func (l *equipmentLocks) get(equipmentID int64) *sync.Mutex {
	l.mu.Lock()
	defer l.mu.Unlock()

	m, ok := l.locks[equipmentID]
	if !ok {
		m = &sync.Mutex{}
		l.locks[equipmentID] = m
	}
	return m
}
