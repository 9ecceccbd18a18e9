package db

import (
	"fmt"
	"sync/atomic"
)

// Provider hands out the database instance repositories should use.
// The indirection lets the services swap connections without touching
// repository code.
type Provider interface {
	Current() Database
}

// StaticProvider wraps a fixed database instance. Tests use it to
// inject fakes.
type StaticProvider struct {
	db Database
}

// NewStaticProvider creates a provider around one database.
func NewStaticProvider(database Database) *StaticProvider {
	return &StaticProvider{db: database}
}

// Current returns the configured database instance.
func (p *StaticProvider) Current() Database {
	if p == nil {
		return nil
	}
	return p.db
}

// Manager holds the live database instance and supports swapping it
// atomically, for reconnects without a restart.
type Manager struct {
	current atomic.Value
}

// NewManager creates a Manager seeded with database.
func NewManager(database Database) *Manager {
	m := &Manager{}
	m.current.Store(database)
	return m
}

// Current returns the active database instance.
func (m *Manager) Current() Database {
	if m == nil {
		return nil
	}
	value := m.current.Load()
	if value == nil {
		return nil
	}
	return value.(Database)
}

// Swap replaces the current database instance and returns the previous one.
func (m *Manager) Swap(next Database) Database {
	prev := m.Current()
	m.current.Store(next)
	return prev
}

// CurrentDatabase resolves the active database from provider, with
// nil checks folded into one call site.
func CurrentDatabase(provider Provider) (Database, error) {
	if provider == nil {
		return nil, fmt.Errorf("database provider is nil")
	}
	database := provider.Current()
	if database == nil {
		return nil, fmt.Errorf("database is nil")
	}
	return database, nil
}
