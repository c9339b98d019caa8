// Package state keeps the per-user conversation mode and its context bag in memory.
// Nothing here is persisted; a restart puts every user back to idle.
package state

import (
	"sync"

	"github.com/BatmanBruc/rtx-toolkit-bot/types"
)

// Key is any context key. Only ListKey and TextKey implement it.
type Key interface {
	name() string
}

// ListKey names a context slot holding phone numbers.
type ListKey string

// TextKey names a context slot holding a single string.
type TextKey string

func (k ListKey) name() string { return string(k) }
func (k TextKey) name() string { return string(k) }

const (
	BulkNumbers     ListKey = "bulk_numbers"
	WithdrawNumbers ListKey = "withdraw_numbers"
	DetectedNumbers ListKey = "detected_numbers"
)

const (
	SourceFile   TextKey = "source_file"
	DetectedFile TextKey = "detected_file"
	AdminAction  TextKey = "admin_action"
	CheckType    TextKey = "check_type"
)

// Context is a copy of a user's context bag.
type Context struct {
	Lists map[ListKey][]string
	Texts map[TextKey]string
}

type entry struct {
	state types.UserState
	lists map[ListKey][]string
	texts map[TextKey]string
}

func newEntry() *entry {
	return &entry{
		state: types.StateIdle,
		lists: make(map[ListKey][]string),
		texts: make(map[TextKey]string),
	}
}

// Patch is a single context write applied by SetState.
type Patch func(e *entry)

func List(k ListKey, v []string) Patch {
	v = clone(v)
	return func(e *entry) { e.lists[k] = v }
}

func Text(k TextKey, v string) Patch {
	return func(e *entry) { e.texts[k] = v }
}

type Machine struct {
	mu    sync.RWMutex
	users map[int64]*entry
}

func NewMachine() *Machine {
	return &Machine{users: make(map[int64]*entry)}
}

func (m *Machine) get(userID int64) *entry {
	e, ok := m.users[userID]
	if !ok {
		e = newEntry()
		m.users[userID] = e
	}
	return e
}

// SetState overwrites the mode and merges patches into the existing context.
func (m *Machine) SetState(userID int64, st types.UserState, patches ...Patch) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e := m.get(userID)
	e.state = st
	for _, p := range patches {
		p(e)
	}
}

func (m *Machine) State(userID int64) types.UserState {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if e, ok := m.users[userID]; ok {
		return e.state
	}
	return types.StateIdle
}

func (m *Machine) Is(userID int64, st types.UserState) bool {
	return m.State(userID) == st
}

func (m *Machine) List(userID int64, k ListKey) ([]string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.users[userID]
	if !ok {
		return nil, false
	}
	v, ok := e.lists[k]
	return clone(v), ok
}

func (m *Machine) Text(userID int64, k TextKey) (string, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	e, ok := m.users[userID]
	if !ok {
		return "", false
	}
	v, ok := e.texts[k]
	return v, ok
}

func (m *Machine) Snapshot(userID int64) Context {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := Context{
		Lists: make(map[ListKey][]string),
		Texts: make(map[TextKey]string),
	}
	e, ok := m.users[userID]
	if !ok {
		return out
	}
	for k, v := range e.lists {
		out.Lists[k] = clone(v)
	}
	for k, v := range e.texts {
		out.Texts[k] = v
	}
	return out
}

func (m *Machine) SetList(userID int64, k ListKey, v []string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(userID).lists[k] = clone(v)
}

func (m *Machine) SetText(userID int64, k TextKey, v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.get(userID).texts[k] = v
}

// ClearKey drops the given keys and leaves the mode alone.
func (m *Machine) ClearKey(userID int64, keys ...Key) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.users[userID]
	if !ok {
		return
	}
	for _, k := range keys {
		switch k := k.(type) {
		case ListKey:
			delete(e.lists, k)
		case TextKey:
			delete(e.texts, k)
		}
	}
}

// ClearContext empties the context bag. The mode is kept.
func (m *Machine) ClearContext(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.users[userID]
	if !ok {
		return
	}
	e.lists = make(map[ListKey][]string)
	e.texts = make(map[TextKey]string)
}

// ClearState forgets the user entirely: mode and context.
func (m *Machine) ClearState(userID int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.users, userID)
}

func clone(v []string) []string {
	if v == nil {
		return nil
	}
	return append(make([]string, 0, len(v)), v...)
}
