package scheduler

import "sync"

// YearLocker serializes bracket runs per season. Runs for different years
// proceed in parallel.
type YearLocker struct {
	mu    sync.Mutex
	years map[int]*sync.Mutex
}

func NewYearLocker() *YearLocker {
	return &YearLocker{years: make(map[int]*sync.Mutex)}
}

// Lock blocks until year is free and returns the matching unlock.
func (l *YearLocker) Lock(year int) func() {
	l.mu.Lock()
	m, ok := l.years[year]
	if !ok {
		m = &sync.Mutex{}
		l.years[year] = m
	}
	l.mu.Unlock()

	m.Lock()
	return m.Unlock
}
