package iostore

import (
	"cmp"
	"context"
	"fmt"
	"slices"
	"sync"

	"github.com/gizisehat/gizi/pkg/assistant"
	"github.com/gizisehat/gizi/pkg/child"
	"github.com/gizisehat/gizi/pkg/gizi"
	"github.com/gizisehat/gizi/pkg/history"
	"github.com/gizisehat/gizi/pkg/nutrient"
	"github.com/gizisehat/gizi/pkg/schema"
)

// memory keeps rows in maps. Data lives as long as the process.
type memory struct {
	mu           sync.RWMutex
	children     map[string][]schema.Child
	measurements map[string][]schema.Measurement
	intake       map[string][]schema.IntakeEntry
	sessions     map[string]schema.Session
	messages     map[string][]schema.Message
	ids          map[string]struct{}
}

// NewMemory creates an in-memory repository.
func NewMemory() gizi.Repository {
	return &memory{
		children:     make(map[string][]schema.Child),
		measurements: make(map[string][]schema.Measurement),
		intake:       make(map[string][]schema.IntakeEntry),
		sessions:     make(map[string]schema.Session),
		messages:     make(map[string][]schema.Message),
		ids:          make(map[string]struct{}),
	}
}

func (m *memory) Init(context.Context) error {
	return nil
}

func (m *memory) Close() error {
	return nil
}

// claim registers a primary key of an append-only table.
func (m *memory) claim(table, id string) error {
	k := table + "/" + id
	if _, ok := m.ids[k]; ok {
		return DuplicateError(table, id)
	}
	m.ids[k] = struct{}{}
	return nil
}

func (m *memory) SaveChild(ctx context.Context, c child.Child) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	key := fmt.Sprintf("%s@%d", c.ID, c.Version)
	if err := m.claim("children", key); err != nil {
		return err
	}
	m.children[c.ID] = append(m.children[c.ID], childRow(c))
	return nil
}

func (m *memory) Child(ctx context.Context, id string) (child.Child, error) {
	vs, err := m.ChildVersions(ctx, id)
	if err != nil {
		return child.Child{}, err
	}
	return vs[len(vs)-1], nil
}

func (m *memory) ChildVersions(ctx context.Context, id string) ([]child.Child, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.children[id]
	if len(rows) == 0 {
		return nil, gizi.NotFoundError("child", id)
	}
	res := make([]child.Child, len(rows))
	for i, r := range rows {
		res[i] = childOf(r)
	}
	slices.SortFunc(res, func(a, b child.Child) int {
		return cmp.Compare(a.Version, b.Version)
	})
	return res, nil
}

func (m *memory) Children(ctx context.Context) ([]child.Child, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]child.Child, 0, len(m.children))
	for _, rows := range m.children {
		latest := slices.MaxFunc(rows, func(a, b schema.Child) int {
			return cmp.Compare(a.Version, b.Version)
		})
		res = append(res, childOf(latest))
	}
	sortChildren(res)
	return res, nil
}

func (m *memory) AppendMeasurement(ctx context.Context, r history.Record) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.claim("measurements", r.ID); err != nil {
		return err
	}
	m.measurements[r.ChildID] = append(m.measurements[r.ChildID], measurementRow(r))
	return nil
}

func (m *memory) Measurements(ctx context.Context, childID string) ([]history.Record, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.measurements[childID]
	res := make([]history.Record, len(rows))
	for i, r := range rows {
		res[i] = recordOf(r)
	}
	slices.SortStableFunc(res, func(a, b history.Record) int {
		return cmp.Or(a.Timestamp.Compare(b.Timestamp), cmp.Compare(a.Seq, b.Seq))
	})
	return res, nil
}

func (m *memory) AppendIntake(ctx context.Context, e nutrient.IntakeEntry) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.claim("intake_entries", e.ID); err != nil {
		return err
	}
	m.intake[e.ChildID] = append(m.intake[e.ChildID], intakeRow(e))
	return nil
}

func (m *memory) Intake(ctx context.Context, childID string) ([]nutrient.IntakeEntry, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.intake[childID]
	res := make([]nutrient.IntakeEntry, len(rows))
	for i, r := range rows {
		res[i] = intakeOf(r)
	}
	return res, nil
}

func (m *memory) SaveSession(ctx context.Context, s gizi.Session) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.claim("sessions", s.ID); err != nil {
		return err
	}
	m.sessions[s.ID] = sessionRow(s)
	return nil
}

func (m *memory) Session(ctx context.Context, id string) (gizi.Session, error) {
	if err := ctx.Err(); err != nil {
		return gizi.Session{}, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.sessions[id]
	if !ok {
		return gizi.Session{}, gizi.NotFoundError("session", id)
	}
	return sessionOf(r), nil
}

func (m *memory) AppendMessage(ctx context.Context, msg assistant.Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.claim("messages", msg.ID); err != nil {
		return err
	}
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], messageRow(msg))
	return nil
}

func (m *memory) Messages(ctx context.Context, sessionID string) ([]assistant.Message, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	rows := m.messages[sessionID]
	res := make([]assistant.Message, len(rows))
	for i, r := range rows {
		res[i] = messageOf(r)
	}
	slices.SortStableFunc(res, func(a, b assistant.Message) int {
		return cmp.Or(a.Timestamp.Compare(b.Timestamp), cmp.Compare(a.Seq, b.Seq))
	})
	return res, nil
}

func sortChildren(cs []child.Child) {
	slices.SortFunc(cs, func(a, b child.Child) int {
		return cmp.Or(cmp.Compare(a.Name, b.Name), cmp.Compare(a.ID, b.ID))
	})
}
