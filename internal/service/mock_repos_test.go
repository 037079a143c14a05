package service

import (
	"context"
	"sync"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SayemTaher/university-management-server/config"
	"github.com/SayemTaher/university-management-server/internal/model"
	"github.com/SayemTaher/university-management-server/internal/repository"
	pkgerrors "github.com/SayemTaher/university-management-server/pkg/errors"
	"github.com/SayemTaher/university-management-server/pkg/querybuilder"
)

// ── Mock AcademicSemesterRepository ──

type mockAcademicSemesterRepo struct {
	mu        sync.Mutex
	semesters map[string]*model.AcademicSemester
	order     []string
	getCalls  int
	listErr   error
}

func newMockAcademicSemesterRepo() *mockAcademicSemesterRepo {
	return &mockAcademicSemesterRepo{semesters: make(map[string]*model.AcademicSemester)}
}

func (m *mockAcademicSemesterRepo) add(s *model.AcademicSemester) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s.Version == 0 {
		s.Version = 1
	}
	cp := *s
	m.semesters[s.ID] = &cp
	m.order = append(m.order, s.ID)
}

func (m *mockAcademicSemesterRepo) Create(_ context.Context, semester *model.AcademicSemester) error {
	m.mu.Lock()
	for _, s := range m.semesters {
		if s.Name == semester.Name && s.Year == semester.Year {
			m.mu.Unlock()
			return gorm.ErrDuplicatedKey
		}
	}
	m.mu.Unlock()
	m.add(semester)
	semester.Version = 1
	return nil
}

func (m *mockAcademicSemesterRepo) GetByID(_ context.Context, id string) (*model.AcademicSemester, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.getCalls++
	if s, ok := m.semesters[id]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockAcademicSemesterRepo) ExistsByNameAndYear(_ context.Context, name model.SemesterName, year int, excludeID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for id, s := range m.semesters {
		if id != excludeID && s.Name == name && s.Year == year {
			return true, nil
		}
	}
	return false, nil
}

func (m *mockAcademicSemesterRepo) List(_ context.Context, _ querybuilder.Params) ([]model.AcademicSemester, querybuilder.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.listErr != nil {
		return nil, querybuilder.Meta{}, m.listErr
	}
	var result []model.AcademicSemester
	for _, id := range m.order {
		result = append(result, *m.semesters[id])
	}
	meta := querybuilder.Meta{Page: 1, Limit: querybuilder.DefaultLimit, Total: int64(len(result)), TotalPage: 1}
	return result, meta, nil
}

func (m *mockAcademicSemesterRepo) Update(_ context.Context, semester *model.AcademicSemester) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.semesters[semester.ID]
	if !ok || stored.Version != semester.Version {
		return pkgerrors.ErrOptimisticLock
	}
	semester.Version++
	cp := *semester
	m.semesters[semester.ID] = &cp
	return nil
}

// ── Mock SemesterRegistrationRepository ──

type mockSemesterRegistrationRepo struct {
	mu            sync.Mutex
	registrations map[string]*model.SemesterRegistration
	order         []string
	semesters     *mockAcademicSemesterRepo
	createErr     error
	updateErr     error
	lastParams    querybuilder.Params
}

func newMockSemesterRegistrationRepo(semesters *mockAcademicSemesterRepo) *mockSemesterRegistrationRepo {
	return &mockSemesterRegistrationRepo{
		registrations: make(map[string]*model.SemesterRegistration),
		semesters:     semesters,
	}
}

func (m *mockSemesterRegistrationRepo) add(r *model.SemesterRegistration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r.Version == 0 {
		r.Version = 1
	}
	cp := *r
	cp.AcademicSemester = nil
	m.registrations[r.ID] = &cp
	m.order = append(m.order, r.ID)
}

// populate 模拟 Preload("AcademicSemester")
func (m *mockSemesterRegistrationRepo) populate(r *model.SemesterRegistration) *model.SemesterRegistration {
	cp := *r
	m.semesters.mu.Lock()
	if s, ok := m.semesters.semesters[r.AcademicSemesterID]; ok {
		sc := *s
		cp.AcademicSemester = &sc
	}
	m.semesters.mu.Unlock()
	return &cp
}

func (m *mockSemesterRegistrationRepo) Create(_ context.Context, registration *model.SemesterRegistration) error {
	if m.createErr != nil {
		return m.createErr
	}
	m.mu.Lock()
	for _, r := range m.registrations {
		if r.AcademicSemesterID == registration.AcademicSemesterID ||
			(r.Status.IsInFlight() && registration.Status.IsInFlight()) {
			m.mu.Unlock()
			return gorm.ErrDuplicatedKey
		}
	}
	m.mu.Unlock()
	m.add(registration)
	registration.Version = 1
	return nil
}

func (m *mockSemesterRegistrationRepo) GetByID(_ context.Context, id string) (*model.SemesterRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if r, ok := m.registrations[id]; ok {
		return m.populate(r), nil
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRegistrationRepo) FindInFlight(_ context.Context) (*model.SemesterRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if r := m.registrations[id]; r.Status.IsInFlight() {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRegistrationRepo) GetByAcademicSemester(_ context.Context, academicSemesterID string) (*model.SemesterRegistration, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, id := range m.order {
		if r := m.registrations[id]; r.AcademicSemesterID == academicSemesterID {
			cp := *r
			return &cp, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (m *mockSemesterRegistrationRepo) List(_ context.Context, params querybuilder.Params) ([]model.SemesterRegistration, querybuilder.Meta, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.lastParams = params
	var result []model.SemesterRegistration
	for _, id := range m.order {
		result = append(result, *m.populate(m.registrations[id]))
	}
	meta := querybuilder.Meta{Page: 1, Limit: querybuilder.DefaultLimit, Total: int64(len(result)), TotalPage: 1}
	return result, meta, nil
}

func (m *mockSemesterRegistrationRepo) Update(_ context.Context, registration *model.SemesterRegistration) error {
	if m.updateErr != nil {
		return m.updateErr
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.registrations[registration.ID]
	if !ok || stored.Version != registration.Version {
		return pkgerrors.ErrOptimisticLock
	}
	registration.Version++
	cp := *registration
	cp.AcademicSemester = nil
	m.registrations[registration.ID] = &cp
	return nil
}

// ── 测试辅助 ──

type testEnv struct {
	svc           *Service
	semesters     *mockAcademicSemesterRepo
	registrations *mockSemesterRegistrationRepo
}

func setupTestService() *testEnv {
	return setupTestServiceWithLocker(nil)
}

// setupTestServiceWithLocker locker 为 nil 时使用进程内锁
func setupTestServiceWithLocker(locker Locker) *testEnv {
	semesterRepo := newMockAcademicSemesterRepo()
	registrationRepo := newMockSemesterRegistrationRepo(semesterRepo)
	repo := &repository.Repository{
		AcademicSemester:     semesterRepo,
		SemesterRegistration: registrationRepo,
	}
	cfg := &config.Config{Cache: config.CacheConfig{SemesterTTL: 0}}
	svc := NewService(cfg, repo, locker, nil, zap.NewNop())
	return &testEnv{svc: svc, semesters: semesterRepo, registrations: registrationRepo}
}

// ── stubLocker ──

// stubLocker 固定返回 err；err 为 nil 时直接获得锁
type stubLocker struct {
	err   error
	calls int
}

func (l *stubLocker) Lock(_ context.Context, _ string) (func(), error) {
	l.calls++
	if l.err != nil {
		return nil, l.err
	}
	return func() {}, nil
}
