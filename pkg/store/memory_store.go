package store

import (
	"sync"

	"myanalyst/pkg/domain"
)

// MemoryStore keeps all records in-process. It mirrors GormStore ID
// assignment (serial ints) and insertion order, and is used by tests.
type MemoryStore struct {
	mu           sync.RWMutex
	users        map[string]domain.User
	reports      map[int]domain.Report
	reportOrder  []int
	chats        map[int][]domain.Chat
	terms        []domain.Term
	nextReportID int
	nextChatID   int
	nextTermID   int
}

// NewMemoryStore initializes an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:        make(map[string]domain.User),
		reports:      make(map[int]domain.Report),
		chats:        make(map[int][]domain.Chat),
		nextReportID: 1,
		nextChatID:   1,
		nextTermID:   1,
	}
}

// SaveUser registers a user.
func (m *MemoryStore) SaveUser(u domain.User) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.users[u.ID] = u
	return nil
}

// HasUser checks if a user ID exists.
func (m *MemoryStore) HasUser(id string) (bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	_, ok := m.users[id]
	return ok, nil
}

// GetUser returns a user by ID.
func (m *MemoryStore) GetUser(id string) (domain.User, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	u, ok := m.users[id]
	return u, ok, nil
}

// DeleteUser removes a user and cascades deletion of its reports.
func (m *MemoryStore) DeleteUser(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, reportID := range append([]int(nil), m.reportOrder...) {
		if report, ok := m.reports[reportID]; ok && report.UserID == id {
			m.deleteReportLocked(reportID)
		}
	}
	delete(m.users, id)
	return nil
}

// CreateReport inserts a report with the next serial ID.
func (m *MemoryStore) CreateReport(r domain.Report) (domain.Report, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r.ID = m.nextReportID
	m.nextReportID++
	m.reports[r.ID] = r
	m.reportOrder = append(m.reportOrder, r.ID)
	return r, nil
}

// GetReport retrieves a report by ID.
func (m *MemoryStore) GetReport(id int) (domain.Report, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	r, ok := m.reports[id]
	return r, ok, nil
}

// ListReports returns reports in creation order.
func (m *MemoryStore) ListReports() ([]domain.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Report, 0, len(m.reportOrder))
	for _, id := range m.reportOrder {
		if r, ok := m.reports[id]; ok {
			res = append(res, r)
		}
	}
	return res, nil
}

// ListReportsByOwner returns reports filtered by owner.
func (m *MemoryStore) ListReportsByOwner(userID string) ([]domain.Report, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Report, 0)
	for _, id := range m.reportOrder {
		if r, ok := m.reports[id]; ok && r.UserID == userID {
			res = append(res, r)
		}
	}
	return res, nil
}

// DeleteReport removes a report, its chats, and detaches its terms.
func (m *MemoryStore) DeleteReport(id int) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.deleteReportLocked(id)
	return nil
}

func (m *MemoryStore) deleteReportLocked(id int) {
	delete(m.reports, id)
	delete(m.chats, id)
	filtered := m.reportOrder[:0]
	for _, item := range m.reportOrder {
		if item != id {
			filtered = append(filtered, item)
		}
	}
	m.reportOrder = filtered
	for i := range m.terms {
		if m.terms[i].ReportID != nil && *m.terms[i].ReportID == id {
			m.terms[i].ReportID = nil
		}
	}
}

// AppendChat records a chat turn with the next serial ID.
func (m *MemoryStore) AppendChat(c domain.Chat) (domain.Chat, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	c.ID = m.nextChatID
	m.nextChatID++
	m.chats[c.ReportID] = append(m.chats[c.ReportID], c)
	return c, nil
}

// ListChatsByReport returns chats for a report in insertion order.
func (m *MemoryStore) ListChatsByReport(reportID int) ([]domain.Chat, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]domain.Chat(nil), m.chats[reportID]...), nil
}

// SaveTerms stores glossary terms.
func (m *MemoryStore) SaveTerms(terms []domain.Term) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, term := range terms {
		term.ID = m.nextTermID
		m.nextTermID++
		m.terms = append(m.terms, term)
	}
	return nil
}

// ListTermsByReport returns terms attached to a report.
func (m *MemoryStore) ListTermsByReport(reportID int) ([]domain.Term, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	res := make([]domain.Term, 0)
	for _, term := range m.terms {
		if term.ReportID != nil && *term.ReportID == reportID {
			res = append(res, term)
		}
	}
	return res, nil
}
