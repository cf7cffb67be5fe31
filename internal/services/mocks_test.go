package services

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sort"
	"strings"
	"sync"
	"time"

	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/UniPortal-2026/submission-service/internal/mailer"
	"github.com/UniPortal-2026/submission-service/internal/models"
	"github.com/UniPortal-2026/submission-service/internal/repositories"
)

// In-memory repository fakes shared by the service tests.

type mockRepository struct {
	users         *mockUserRepo
	assignments   *mockAssignmentRepo
	notifications *mockNotificationRepo
	departments   *mockDepartmentRepo
}

func newMockRepository() *mockRepository {
	return &mockRepository{
		users:         &mockUserRepo{users: map[uint]*models.User{}},
		assignments:   &mockAssignmentRepo{assignments: map[uint]*models.Assignment{}},
		notifications: &mockNotificationRepo{},
		departments:   &mockDepartmentRepo{departments: map[uint]*models.Department{}},
	}
}

func (m *mockRepository) User() repositories.UserRepository { return m.users }
func (m *mockRepository) Assignment() repositories.AssignmentRepository {
	return m.assignments
}
func (m *mockRepository) Notification() repositories.NotificationRepository {
	return m.notifications
}
func (m *mockRepository) Department() repositories.DepartmentRepository {
	return m.departments
}

func (m *mockRepository) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(m)
}
func (m *mockRepository) Ping(ctx context.Context) error { return nil }
func (m *mockRepository) Close() error                   { return nil }

// ===== USERS =====

type mockUserRepo struct {
	mu     sync.Mutex
	users  map[uint]*models.User
	nextID uint
}

func (r *mockUserRepo) Create(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	user.ID = r.nextID
	r.users[user.ID] = user
	return nil
}

func (r *mockUserRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	user, ok := r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return user, nil
}

func (r *mockUserRepo) GetByEmail(ctx context.Context, tx *gorm.DB, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, user := range r.users {
		if user.Email == email {
			return user, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r *mockUserRepo) Update(ctx context.Context, tx *gorm.DB, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.users[user.ID] = user
	return nil
}

func (r *mockUserRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.users, id)
	return nil
}

func (r *mockUserRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.UserFilters) ([]*models.User, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.User
	for _, user := range r.users {
		if filters.Role != nil && user.Role != *filters.Role {
			continue
		}
		if filters.DepartmentID != nil &&
			(user.DepartmentID == nil || *user.DepartmentID != *filters.DepartmentID) {
			continue
		}
		if filters.Query != "" &&
			!strings.Contains(strings.ToLower(user.FullName), strings.ToLower(filters.Query)) &&
			!strings.Contains(strings.ToLower(user.Email), strings.ToLower(filters.Query)) {
			continue
		}
		out = append(out, user)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockUserRepo) ProfessorsByDepartment(ctx context.Context, tx *gorm.DB, departmentID uint) ([]*models.User, error) {
	role := models.RoleProfessor
	users, _, err := r.List(ctx, tx, repositories.UserFilters{Role: &role, DepartmentID: &departmentID})
	return users, err
}

func (r *mockUserRepo) ExistsByEmail(ctx context.Context, tx *gorm.DB, email string) (bool, error) {
	_, err := r.GetByEmail(ctx, tx, email)
	if err != nil {
		return false, nil
	}
	return true, nil
}

// ===== ASSIGNMENTS =====

type mockAssignmentRepo struct {
	mu          sync.Mutex
	assignments map[uint]*models.Assignment
	nextID      uint

	// forceStale makes every guarded update report a lost race.
	forceStale bool
}

func (r *mockAssignmentRepo) Create(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	assignment.ID = r.nextID
	r.assignments[assignment.ID] = assignment
	return nil
}

func (r *mockAssignmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Assignment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	assignment, ok := r.assignments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return assignment, nil
}

func (r *mockAssignmentRepo) Update(ctx context.Context, tx *gorm.DB, assignment *models.Assignment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[assignment.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.assignments[assignment.ID] = assignment
	return nil
}

func (r *mockAssignmentRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.assignments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.assignments, id)
	return nil
}

func (r *mockAssignmentRepo) List(ctx context.Context, tx *gorm.DB, filters repositories.AssignmentFilters) ([]*models.Assignment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Assignment
	for _, a := range r.assignments {
		if filters.Status != nil && a.Status != *filters.Status {
			continue
		}
		if filters.Category != nil && a.Category != *filters.Category {
			continue
		}
		if filters.OwnerID != nil && a.OwnerID != *filters.OwnerID {
			continue
		}
		if filters.ReviewerID != nil &&
			(a.ReviewerID == nil || *a.ReviewerID != *filters.ReviewerID) {
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, int64(len(out)), nil
}

func (r *mockAssignmentRepo) UpdateStatusGuarded(ctx context.Context, tx *gorm.DB, id uint, fromStatus []models.AssignmentStatus, updates map[string]interface{}) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	assignment, ok := r.assignments[id]
	if !ok || r.forceStale {
		return repositories.ErrStaleStatus
	}

	matched := false
	for _, status := range fromStatus {
		if assignment.Status == status {
			matched = true
			break
		}
	}
	if !matched {
		return repositories.ErrStaleStatus
	}

	for column, value := range updates {
		switch column {
		case "status":
			assignment.Status = value.(models.AssignmentStatus)
		case "reviewer_id":
			reviewerID := value.(uint)
			assignment.ReviewerID = &reviewerID
		case "reviewer_name":
			assignment.ReviewerName = value.(string)
		case "submitted_at":
			submittedAt := value.(time.Time)
			assignment.SubmittedAt = &submittedAt
		case "rejection_remarks":
			assignment.RejectionRemarks = value.(string)
		case "review_history":
			assignment.ReviewHistory = value.(datatypes.JSONSlice[models.ReviewRecord])
		default:
			return fmt.Errorf("unexpected update column %q", column)
		}
	}
	return nil
}

func (r *mockAssignmentRepo) StatusCountsByOwner(ctx context.Context, tx *gorm.DB, ownerID uint) (*repositories.StatusCounts, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	counts := &repositories.StatusCounts{}
	for _, a := range r.assignments {
		if a.OwnerID != ownerID {
			continue
		}
		switch a.Status {
		case models.StatusDraft:
			counts.Draft++
		case models.StatusSubmitted:
			counts.Submitted++
		case models.StatusApproved:
			counts.Approved++
		case models.StatusRejected:
			counts.Rejected++
		}
	}
	return counts, nil
}

func (r *mockAssignmentRepo) ReviewerStats(ctx context.Context, tx *gorm.DB, reviewerID uint) (*repositories.ReviewerStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &repositories.ReviewerStats{}
	for _, a := range r.assignments {
		if a.ReviewerID == nil || *a.ReviewerID != reviewerID {
			continue
		}
		switch a.Status {
		case models.StatusSubmitted:
			stats.Pending++
		case models.StatusApproved:
			stats.Approved++
		case models.StatusRejected:
			stats.Rejected++
		}
	}
	stats.TotalReviewed = stats.Approved + stats.Rejected
	return stats, nil
}

func (r *mockAssignmentRepo) RecentByOwner(ctx context.Context, tx *gorm.DB, ownerID uint, limit int) ([]*models.Assignment, error) {
	out, _, err := r.List(ctx, tx, repositories.AssignmentFilters{OwnerID: &ownerID})
	if err != nil {
		return nil, err
	}
	if len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *mockAssignmentRepo) CountByOwner(ctx context.Context, tx *gorm.DB, ownerID uint) (int64, error) {
	_, total, err := r.List(ctx, tx, repositories.AssignmentFilters{OwnerID: &ownerID})
	return total, err
}

// ===== NOTIFICATIONS =====

type mockNotificationRepo struct {
	mu            sync.Mutex
	notifications []*models.Notification
	nextID        uint
}

func (r *mockNotificationRepo) Create(ctx context.Context, tx *gorm.DB, notification *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	notification.ID = r.nextID
	r.notifications = append(r.notifications, notification)
	return nil
}

func (r *mockNotificationRepo) ListByUser(ctx context.Context, tx *gorm.DB, userID uint, filters repositories.NotificationFilters) ([]*models.Notification, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Notification
	for _, n := range r.notifications {
		if n.UserID != userID {
			continue
		}
		if filters.UnreadOnly && n.Read {
			continue
		}
		out = append(out, n)
	}
	return out, int64(len(out)), nil
}

func (r *mockNotificationRepo) MarkRead(ctx context.Context, tx *gorm.DB, id, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.ID == id && n.UserID == userID {
			n.Read = true
			return nil
		}
	}
	return gorm.ErrRecordNotFound
}

func (r *mockNotificationRepo) MarkAllRead(ctx context.Context, tx *gorm.DB, userID uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, n := range r.notifications {
		if n.UserID == userID {
			n.Read = true
		}
	}
	return nil
}

func (r *mockNotificationRepo) CountUnread(ctx context.Context, tx *gorm.DB, userID uint) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	for _, n := range r.notifications {
		if n.UserID == userID && !n.Read {
			count++
		}
	}
	return count, nil
}

// ===== DEPARTMENTS =====

type mockDepartmentRepo struct {
	mu          sync.Mutex
	departments map[uint]*models.Department
	nextID      uint
}

func (r *mockDepartmentRepo) Create(ctx context.Context, tx *gorm.DB, department *models.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.nextID++
	department.ID = r.nextID
	r.departments[department.ID] = department
	return nil
}

func (r *mockDepartmentRepo) GetByID(ctx context.Context, tx *gorm.DB, id uint) (*models.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	department, ok := r.departments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return department, nil
}

func (r *mockDepartmentRepo) Update(ctx context.Context, tx *gorm.DB, department *models.Department) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.departments[department.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	r.departments[department.ID] = department
	return nil
}

func (r *mockDepartmentRepo) Delete(ctx context.Context, tx *gorm.DB, id uint) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.departments[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(r.departments, id)
	return nil
}

func (r *mockDepartmentRepo) List(ctx context.Context, tx *gorm.DB) ([]*models.Department, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []*models.Department
	for _, d := range r.departments {
		out = append(out, d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *mockDepartmentRepo) ExistsByName(ctx context.Context, tx *gorm.DB, name string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, d := range r.departments {
		if d.Name == name {
			return true, nil
		}
	}
	return false, nil
}

// ===== SUPPORTING FAKES =====

type mockFileStore struct {
	mu      sync.Mutex
	files   map[string][]byte
	removed []string
}

func newMockFileStore() *mockFileStore {
	return &mockFileStore{files: map[string][]byte{}}
}

func (s *mockFileStore) Save(originalName, contentType string, size int64, src io.Reader) (*models.FileMeta, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := io.ReadAll(src)
	if err != nil {
		return nil, err
	}
	storedName := fmt.Sprintf("stored_%d_%s", len(s.files)+1, originalName)
	s.files[storedName] = data
	return &models.FileMeta{
		StoredName:   storedName,
		OriginalName: originalName,
		Path:         storedName,
		Size:         size,
		ContentType:  contentType,
		UploadedAt:   time.Now().UTC(),
	}, nil
}

type nopReadSeekCloser struct{ *bytes.Reader }

func (nopReadSeekCloser) Close() error { return nil }

func (s *mockFileStore) Open(storedName string) (io.ReadSeekCloser, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	data, ok := s.files[storedName]
	if !ok {
		return nil, fmt.Errorf("no such file %q", storedName)
	}
	return nopReadSeekCloser{bytes.NewReader(data)}, nil
}

func (s *mockFileStore) Remove(storedName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.files, storedName)
	s.removed = append(s.removed, storedName)
	return nil
}

type mockMailer struct {
	mu       sync.Mutex
	messages []*mailer.EmailMessage
}

func (m *mockMailer) SendMessages(messages ...*mailer.EmailMessage) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.messages = append(m.messages, messages...)
}

func (m *mockMailer) sent() []*mailer.EmailMessage {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*mailer.EmailMessage, len(m.messages))
	copy(out, m.messages)
	return out
}
