package model

import (
	"sync"

	"github.com/soocke/proctor-go/domain/session"
)

// SetupModel holds the latest session snapshot for the UI thread. Session
// notifications arrive on arbitrary goroutines (permission prompts, track
// events, uploads); presenters drain the model on their tick.
type SetupModel struct {
	mu     sync.Mutex
	snap   session.Snapshot
	dirty  bool
	notice string
}

func NewSetupModel() *SetupModel { return &SetupModel{} }

// Update stores s and marks the model dirty. Safe from any goroutine.
func (m *SetupModel) Update(s session.Snapshot) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.snap = s
	m.dirty = true
	m.mu.Unlock()
}

// SetNotice records a transient message (a failed acquisition, a rejected
// start) and marks the model dirty.
func (m *SetupModel) SetNotice(msg string) {
	if m == nil {
		return
	}
	m.mu.Lock()
	m.notice = msg
	m.dirty = true
	m.mu.Unlock()
}

// Take returns the latest snapshot and notice, and whether anything changed
// since the previous Take.
func (m *SetupModel) Take() (session.Snapshot, string, bool) {
	if m == nil {
		return session.Snapshot{}, "", false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	changed := m.dirty
	m.dirty = false
	return m.snap, m.notice, changed
}

// Latest returns the latest snapshot without consuming the dirty flag.
func (m *SetupModel) Latest() session.Snapshot {
	if m == nil {
		return session.Snapshot{}
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.snap
}
