package service

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/campus-ops/grievance-service/internal/domain"
	"github.com/campus-ops/grievance-service/internal/events"
	"github.com/campus-ops/grievance-service/internal/repository"
)

// mockGrievanceRepo is an in-memory GrievanceRepository with error injection.
type mockGrievanceRepo struct {
	mu        sync.Mutex
	items     map[string]*domain.Grievance
	createErr error
	updateErr error
	getErr    error
	listErr   error
	resetErr  error
}

func newMockGrievanceRepo() *mockGrievanceRepo {
	return &mockGrievanceRepo{items: map[string]*domain.Grievance{}}
}

func (m *mockGrievanceRepo) Create(_ context.Context, g *domain.Grievance) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if g.ID == "" {
		g.ID = uuid.NewString()
	}
	if g.CreatedAt.IsZero() {
		g.CreatedAt = time.Now()
	}
	g.UpdatedAt = g.CreatedAt
	clone := *g
	m.items[g.ID] = &clone
	return nil
}

func (m *mockGrievanceRepo) Update(_ context.Context, g *domain.Grievance) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[g.ID]; !ok {
		return pgx.ErrNoRows
	}
	g.UpdatedAt = time.Now()
	clone := *g
	m.items[g.ID] = &clone
	return nil
}

func (m *mockGrievanceRepo) GetByID(_ context.Context, id string) (*domain.Grievance, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	g, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *g
	return &clone, nil
}

func (m *mockGrievanceRepo) ListAll(_ context.Context) ([]domain.Grievance, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list(func(*domain.Grievance) bool { return true }), nil
}

func (m *mockGrievanceRepo) ListByCategory(_ context.Context, category string) ([]domain.Grievance, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list(func(g *domain.Grievance) bool { return g.Category == category }), nil
}

func (m *mockGrievanceRepo) ListByUser(_ context.Context, userID string) ([]domain.Grievance, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	return m.list(func(g *domain.Grievance) bool { return g.UserID == userID }), nil
}

func (m *mockGrievanceRepo) ListAssignedSummaries(_ context.Context, staffID string) ([]domain.GrievanceSummary, error) {
	if m.listErr != nil {
		return nil, m.listErr
	}
	assigned := m.list(func(g *domain.Grievance) bool {
		return g.AssignedTo != nil && *g.AssignedTo == staffID
	})
	summaries := make([]domain.GrievanceSummary, 0, len(assigned))
	for _, g := range assigned {
		summaries = append(summaries, domain.GrievanceSummary{
			ID:           g.ID,
			Name:         g.Name,
			RegID:        g.RegID,
			Category:     g.Category,
			Message:      g.Message,
			Status:       g.Status,
			DeadlineDate: g.DeadlineDate,
			CreatedAt:    g.CreatedAt,
		})
	}
	return summaries, nil
}

func (m *mockGrievanceRepo) ResetAssignee(_ context.Context, staffID string) (int64, error) {
	if m.resetErr != nil {
		return 0, m.resetErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, g := range m.items {
		if g.AssignedTo != nil && *g.AssignedTo == staffID {
			g.Status = domain.StatusPending
			g.AssignedTo = nil
			g.AssignedRole = nil
			g.AssignedBy = nil
			count++
		}
	}
	return count, nil
}

func (m *mockGrievanceRepo) ResolveStaleVerifications(_ context.Context, before time.Time, resolvedBy string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var count int64
	for _, g := range m.items {
		if g.Status == domain.StatusVerification && g.ResolutionProposedAt != nil && g.ResolutionProposedAt.Before(before) {
			g.Status = domain.StatusResolved
			g.ResolvedBy = &resolvedBy
			count++
		}
	}
	return count, nil
}

func (m *mockGrievanceRepo) list(keep func(*domain.Grievance) bool) []domain.Grievance {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.Grievance
	for _, g := range m.items {
		if keep(g) {
			out = append(out, *g)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

// mockStaffRepo is an in-memory StaffRepository.
type mockStaffRepo struct {
	mu        sync.Mutex
	items     map[string]*domain.StaffRecord
	upsertErr error
	getErr    error
}

func newMockStaffRepo() *mockStaffRepo {
	return &mockStaffRepo{items: map[string]*domain.StaffRecord{}}
}

func (m *mockStaffRepo) put(record domain.StaffRecord) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[record.ID] = &record
}

func (m *mockStaffRepo) Upsert(_ context.Context, record *domain.StaffRecord) error {
	if m.upsertErr != nil {
		return m.upsertErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *record
	m.items[record.ID] = &clone
	return nil
}

func (m *mockStaffRepo) GetByID(_ context.Context, id string) (*domain.StaffRecord, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *record
	return &clone, nil
}

func (m *mockStaffRepo) List(_ context.Context, department *string) ([]domain.StaffRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.StaffRecord
	for _, record := range m.items {
		if department == nil || record.AdminDepartment == *department {
			out = append(out, *record)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (m *mockStaffRepo) ClearRole(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	record, ok := m.items[id]
	if !ok {
		return pgx.ErrNoRows
	}
	record.AdminDepartment = ""
	record.IsDeptAdmin = false
	return nil
}

func (m *mockStaffRepo) DemoteDepartmentHead(_ context.Context, department, exceptID string) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var demoted []string
	for _, record := range m.items {
		if record.IsDeptAdmin && record.AdminDepartment == department && record.ID != exceptID {
			record.IsDeptAdmin = false
			record.AdminDepartment = ""
			demoted = append(demoted, record.ID)
		}
	}
	return demoted, nil
}

// mockUserRepo is an in-memory UserRepository.
type mockUserRepo struct {
	mu     sync.Mutex
	items  map[string]*domain.User
	getErr error
}

func newMockUserRepo() *mockUserRepo {
	return &mockUserRepo{items: map[string]*domain.User{}}
}

func (m *mockUserRepo) put(user domain.User) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.items[user.ID] = &user
}

func (m *mockUserRepo) Create(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	clone := *user
	m.items[user.ID] = &clone
	return nil
}

func (m *mockUserRepo) Update(_ context.Context, user *domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.items[user.ID]; !ok {
		return pgx.ErrNoRows
	}
	clone := *user
	m.items[user.ID] = &clone
	return nil
}

func (m *mockUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	if m.getErr != nil {
		return nil, m.getErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	user, ok := m.items[id]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *user
	return &clone, nil
}

func (m *mockUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, user := range m.items {
		if user.Email == email {
			clone := *user
			return &clone, nil
		}
	}
	return nil, pgx.ErrNoRows
}

// mockMessageRepo is an in-memory MessageRepository.
type mockMessageRepo struct {
	mu    sync.Mutex
	items []domain.GrievanceMessage
}

func newMockMessageRepo() *mockMessageRepo {
	return &mockMessageRepo{}
}

func (m *mockMessageRepo) Create(_ context.Context, msg *domain.GrievanceMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if msg.ID == "" {
		msg.ID = uuid.NewString()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = time.Now()
	}
	m.items = append(m.items, *msg)
	return nil
}

func (m *mockMessageRepo) ListByGrievance(_ context.Context, grievanceID string) ([]domain.GrievanceMessage, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.GrievanceMessage
	for _, msg := range m.items {
		if msg.GrievanceID == grievanceID {
			out = append(out, msg)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, nil
}

// mockHistoryRepo records audit entries in order.
type mockHistoryRepo struct {
	mu    sync.Mutex
	items []domain.GrievanceHistory
}

func newMockHistoryRepo() *mockHistoryRepo {
	return &mockHistoryRepo{}
}

func (m *mockHistoryRepo) Create(_ context.Context, entry *domain.GrievanceHistory) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if entry.ID == "" {
		entry.ID = uuid.NewString()
	}
	if entry.CreatedAt.IsZero() {
		entry.CreatedAt = time.Now()
	}
	m.items = append(m.items, *entry)
	return nil
}

func (m *mockHistoryRepo) ListByGrievance(_ context.Context, grievanceID string) ([]domain.GrievanceHistory, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []domain.GrievanceHistory
	for _, entry := range m.items {
		if entry.GrievanceID == grievanceID {
			out = append(out, entry)
		}
	}
	return out, nil
}

// mockResetRepo is an in-memory PasswordResetRepository keyed by token value.
type mockResetRepo struct {
	mu     sync.Mutex
	tokens map[string]*repository.PasswordResetToken
}

func newMockResetRepo() *mockResetRepo {
	return &mockResetRepo{tokens: map[string]*repository.PasswordResetToken{}}
}

func (m *mockResetRepo) Create(_ context.Context, token *repository.PasswordResetToken) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if token.ID == "" {
		token.ID = uuid.NewString()
	}
	token.CreatedAt = time.Now()
	clone := *token
	m.tokens[token.Token] = &clone
	return nil
}

func (m *mockResetRepo) GetByToken(_ context.Context, value string) (*repository.PasswordResetToken, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	token, ok := m.tokens[value]
	if !ok {
		return nil, pgx.ErrNoRows
	}
	clone := *token
	return &clone, nil
}

func (m *mockResetRepo) MarkUsed(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, token := range m.tokens {
		if token.ID == id {
			now := time.Now()
			token.UsedAt = &now
			return nil
		}
	}
	return pgx.ErrNoRows
}

// recordingDispatcher captures published events for assertions.
type recordingDispatcher struct {
	mu     sync.Mutex
	events []events.Event
}

func (d *recordingDispatcher) Publish(_ context.Context, event events.Event) error {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events = append(d.events, event)
	return nil
}

func (d *recordingDispatcher) Subscribe(events.EventType, events.EventHandler) {}

func (d *recordingDispatcher) byType(t events.EventType) []events.Event {
	d.mu.Lock()
	defer d.mu.Unlock()
	var out []events.Event
	for _, e := range d.events {
		if e.Type == t {
			out = append(out, e)
		}
	}
	return out
}

func strptr(s string) *string { return &s }
