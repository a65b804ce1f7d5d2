package table

import (
	"context"
	"sort"
	"sync"

	"github.com/google/uuid"
	"github.com/heroiclabs/nakama-common/runtime"
	"github.com/jimmmmothy/Belote-Enterprise/internal/app"
	"github.com/jimmmmothy/Belote-Enterprise/internal/domain"
	"github.com/jimmmmothy/Belote-Enterprise/internal/logging"
	"github.com/jimmmmothy/Belote-Enterprise/internal/ports"
)

// Manager holds running tables by game id. Tables are created on first
// reference and stay until Remove or Close.
type Manager struct {
	mu     sync.RWMutex
	tables map[string]*Table

	logger      runtime.Logger
	history     ports.RoundHistoryPort
	gameOptions func(id string) []app.Option
	onCreate    func(*Table)
}

type ManagerOption func(*Manager)

func WithLogger(logger runtime.Logger) ManagerOption {
	return func(m *Manager) {
		if logger != nil {
			m.logger = logger
		}
	}
}

// WithHistory records every finished round.
func WithHistory(history ports.RoundHistoryPort) ManagerOption {
	return func(m *Manager) {
		m.history = history
	}
}

// WithGameOptions supplies per-game options, for example a seeded rand.
func WithGameOptions(fn func(id string) []app.Option) ManagerOption {
	return func(m *Manager) {
		m.gameOptions = fn
	}
}

// WithOnCreate is called once for every new table, before any command
// reaches it. Transports use it to start draining Events.
func WithOnCreate(fn func(*Table)) ManagerOption {
	return func(m *Manager) {
		m.onCreate = fn
	}
}

func NewManager(opts ...ManagerOption) *Manager {
	m := &Manager{
		tables: make(map[string]*Table),
		logger: logging.Discard(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// GetOrCreate returns the table for id, starting it if needed.
func (m *Manager) GetOrCreate(id string) *Table {
	if id == "" {
		return nil
	}
	m.mu.RLock()
	t, ok := m.tables[id]
	m.mu.RUnlock()
	if ok {
		return t
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[id]; ok {
		return t
	}
	return m.startLocked(id)
}

// Create starts a table under a fresh id.
func (m *Manager) Create() *Table {
	m.mu.Lock()
	defer m.mu.Unlock()
	for {
		id := uuid.NewString()
		if _, exists := m.tables[id]; exists {
			continue
		}
		return m.startLocked(id)
	}
}

func (m *Manager) startLocked(id string) *Table {
	var opts []app.Option
	if m.gameOptions != nil {
		opts = m.gameOptions(id)
	}
	t := New(id, m.logger, m.history, opts...)
	m.tables[id] = t
	if m.onCreate != nil {
		m.onCreate(t)
	}
	go t.Run()
	m.logger.Info("table %s created", id)
	return t
}

func (m *Manager) Get(id string) (*Table, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.tables[id]
	if !ok {
		return nil, app.ErrGameNotFound
	}
	return t, nil
}

// Remove stops a table and forgets it.
func (m *Manager) Remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if t, ok := m.tables[id]; ok {
		t.Stop()
		delete(m.tables, id)
		m.logger.Info("table %s removed", id)
	}
}

func (m *Manager) Close() {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, t := range m.tables {
		t.Stop()
		delete(m.tables, id)
	}
}

func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.tables)
}

// List snapshots every table, sorted by id. Tables that stop mid-call are
// skipped.
func (m *Manager) List(ctx context.Context) []Info {
	m.mu.RLock()
	tables := make([]*Table, 0, len(m.tables))
	for _, t := range m.tables {
		tables = append(tables, t)
	}
	m.mu.RUnlock()

	out := make([]Info, 0, len(tables))
	for _, t := range tables {
		info, err := t.Info(ctx)
		if err != nil {
			continue
		}
		out = append(out, info)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Register seats playerID in gameID, creating the game on first reference.
func (m *Manager) Register(ctx context.Context, gameID, playerID, transportRef string) (RegisterResult, error) {
	t := m.GetOrCreate(gameID)
	if t == nil {
		return RegisterResult{Seat: -1}, app.ErrGameNotFound
	}
	return t.Register(ctx, playerID, transportRef)
}

func (m *Manager) Bid(ctx context.Context, gameID, playerID string, contract domain.Contract) error {
	t, err := m.Get(gameID)
	if err != nil {
		return err
	}
	return t.Bid(ctx, playerID, contract)
}

func (m *Manager) Move(ctx context.Context, gameID string, move domain.Move) error {
	t, err := m.Get(gameID)
	if err != nil {
		return err
	}
	return t.Move(ctx, move)
}

func (m *Manager) Rebind(ctx context.Context, gameID, playerID, transportRef string) error {
	t, err := m.Get(gameID)
	if err != nil {
		return err
	}
	return t.Rebind(ctx, playerID, transportRef)
}

func (m *Manager) NextRound(ctx context.Context, gameID string) error {
	t, err := m.Get(gameID)
	if err != nil {
		return err
	}
	return t.NextRound(ctx)
}
