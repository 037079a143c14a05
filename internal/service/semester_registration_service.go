package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SayemTaher/university-management-server/internal/dto"
	"github.com/SayemTaher/university-management-server/internal/metrics"
	"github.com/SayemTaher/university-management-server/internal/model"
	"github.com/SayemTaher/university-management-server/internal/repository"
	apperrors "github.com/SayemTaher/university-management-server/pkg/errors"
	"github.com/SayemTaher/university-management-server/pkg/querybuilder"
	pkgredis "github.com/SayemTaher/university-management-server/pkg/redis"
)

const (
	// registrationLockKey 注册创建全局互斥锁
	registrationLockKey = "semester-registration:create"
	// lockWait 获取创建锁的最长等待时间
	lockWait = 5 * time.Second
)

// SemesterRegistrationService 学期注册业务接口
//
// 不变量：
//   - 全表至多一条 UPCOMING / ONGOING 注册
//   - 一个学年学期至多被注册一次
//   - 状态只能 UPCOMING → ONGOING → ENDED 单步前进，ENDED 后不可再修改
type SemesterRegistrationService interface {
	Create(ctx context.Context, req *dto.CreateSemesterRegistrationRequest) (*dto.SemesterRegistrationResponse, error)
	GetByID(ctx context.Context, id string) (*dto.SemesterRegistrationResponse, error)
	List(ctx context.Context, params querybuilder.Params) ([]dto.SemesterRegistrationResponse, querybuilder.Meta, error)
	Update(ctx context.Context, id string, req *dto.UpdateSemesterRegistrationRequest) (*dto.SemesterRegistrationResponse, error)
}

type semesterRegistrationService struct {
	repo    *repository.Repository
	loader  *semesterLoader
	locker  Locker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewSemesterRegistrationService 创建 SemesterRegistrationService 实例
func NewSemesterRegistrationService(
	repo *repository.Repository,
	cache *SemesterCache,
	locker Locker,
	m *metrics.Metrics,
	logger *zap.Logger,
) SemesterRegistrationService {
	return &semesterRegistrationService{
		repo:    repo,
		loader:  newSemesterLoader(repo.AcademicSemester, cache, logger),
		locker:  locker,
		metrics: m,
		logger:  logger,
	}
}

// ════════════════════════════════════════════════════════════
// Create
// ════════════════════════════════════════════════════════════
//
// 校验顺序（首个失败即返回，均在写入之前）：
//  1. 存在 UPCOMING / ONGOING 注册 → Conflict（指明状态）
//  2. 学年学期不存在 → NotFound
//  3. 该学期已被注册 → Conflict
//  4. 写入，status 缺省 UPCOMING

func (s *semesterRegistrationService) Create(ctx context.Context, req *dto.CreateSemesterRegistrationRequest) (*dto.SemesterRegistrationResponse, error) {
	registration := &model.SemesterRegistration{
		ID:                 uuid.NewString(),
		AcademicSemesterID: req.AcademicSemester,
		Status:             model.StatusUpcoming,
		MinCredit:          model.DefaultMinCredit,
		MaxCredit:          model.DefaultMaxCredit,
	}

	if req.Status != "" {
		status, err := model.ParseRegistrationStatus(req.Status)
		if err != nil {
			return nil, apperrors.Validation(err.Error(), apperrors.Source{Path: "status", Message: err.Error()})
		}
		registration.Status = status
	}

	var err error
	if registration.StartDate, err = parseDate("start_date", req.StartDate); err != nil {
		return nil, err
	}
	if registration.EndDate, err = parseDate("end_date", req.EndDate); err != nil {
		return nil, err
	}
	if req.MinCredit != nil {
		registration.MinCredit = *req.MinCredit
	}
	if req.MaxCredit != nil {
		registration.MaxCredit = *req.MaxCredit
	}
	if err := validateRegistration(registration); err != nil {
		return nil, err
	}

	unlock, err := s.acquireCreateLock(ctx)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if err := s.checkInFlight(ctx); err != nil {
		return nil, err
	}

	semester, err := s.loader.load(ctx, registration.AcademicSemesterID)
	if err != nil {
		return nil, err
	}

	if err := s.checkSemesterFree(ctx, semester.ID, ""); err != nil {
		return nil, err
	}

	if err := s.repo.SemesterRegistration.Create(ctx, registration); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			// 唯一索引兜底：并发写入穿透了锁（如多实例未启用 Redis），重新判定冲突原因
			return nil, s.createConflict(ctx, semester.ID, err)
		}
		s.logger.Error("创建学期注册失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	registration.AcademicSemester = semester
	s.metrics.IncRegistrationsCreated()
	s.logger.Info("学期注册已创建",
		zap.String("id", registration.ID),
		zap.String("academic_semester_id", semester.ID),
		zap.String("status", registration.Status.String()),
	)
	return toSemesterRegistrationResponse(registration), nil
}

func (s *semesterRegistrationService) acquireCreateLock(ctx context.Context) (func(), error) {
	lockCtx, cancel := context.WithTimeout(ctx, lockWait)
	defer cancel()

	unlock, err := s.locker.Lock(lockCtx, registrationLockKey)
	switch {
	case err == nil:
		return unlock, nil
	case ctx.Err() != nil:
		return nil, ctx.Err()
	case errors.Is(err, pkgredis.ErrLockNotAcquired), errors.Is(err, context.DeadlineExceeded):
		// 等待超时：锁被其他创建请求持有
		s.logger.Warn("注册创建锁等待超时", zap.Error(err))
		return nil, ErrRegistrationBusy
	default:
		s.logger.Error("获取注册创建锁失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
}

// checkInFlight 全局至多一条进行中注册
func (s *semesterRegistrationService) checkInFlight(ctx context.Context) error {
	inFlight, err := s.repo.SemesterRegistration.FindInFlight(ctx)
	switch {
	case err == nil:
		return inFlightConflict(inFlight.Status.String())
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		s.logger.Error("查询进行中注册失败", zap.Error(err))
		return apperrors.Internal(err)
	}
}

// checkSemesterFree 学期未被其他注册引用；selfID 为当前注册（更新场景）
func (s *semesterRegistrationService) checkSemesterFree(ctx context.Context, semesterID, selfID string) error {
	existing, err := s.repo.SemesterRegistration.GetByAcademicSemester(ctx, semesterID)
	switch {
	case err == nil:
		if existing.ID == selfID {
			return nil
		}
		return ErrSemesterAlreadyRegistered
	case errors.Is(err, gorm.ErrRecordNotFound):
		return nil
	default:
		s.logger.Error("查询学期注册失败", zap.String("academic_semester_id", semesterID), zap.Error(err))
		return apperrors.Internal(err)
	}
}

func (s *semesterRegistrationService) createConflict(ctx context.Context, semesterID string, cause error) error {
	s.logger.Warn("学期注册唯一索引冲突", zap.Error(cause))
	if err := s.checkInFlight(ctx); err != nil {
		return err
	}
	if err := s.checkSemesterFree(ctx, semesterID, ""); err != nil {
		return err
	}
	return apperrors.Wrap(cause, apperrors.KindConflict, ErrSemesterAlreadyRegistered.Message)
}

// ────────────────────── GetByID ──────────────────────

func (s *semesterRegistrationService) GetByID(ctx context.Context, id string) (*dto.SemesterRegistrationResponse, error) {
	registration, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	return toSemesterRegistrationResponse(registration), nil
}

func (s *semesterRegistrationService) get(ctx context.Context, id string) (*model.SemesterRegistration, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrRegistrationNotFound
	}
	registration, err := s.repo.SemesterRegistration.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRegistrationNotFound
		}
		s.logger.Error("查询学期注册失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return registration, nil
}

// ────────────────────── List ──────────────────────

func (s *semesterRegistrationService) List(ctx context.Context, params querybuilder.Params) ([]dto.SemesterRegistrationResponse, querybuilder.Meta, error) {
	registrations, meta, err := s.repo.SemesterRegistration.List(ctx, params)
	if err != nil {
		s.logger.Error("列出学期注册失败", zap.Error(err))
		return nil, querybuilder.Meta{}, apperrors.Internal(err)
	}

	result := make([]dto.SemesterRegistrationResponse, 0, len(registrations))
	for i := range registrations {
		result = append(result, *toSemesterRegistrationResponse(&registrations[i]))
	}
	return result, meta, nil
}

// ════════════════════════════════════════════════════════════
// Update
// ════════════════════════════════════════════════════════════
//
// 校验顺序：
//  1. 注册不存在 → NotFound
//  2. 当前为 ENDED → BadRequest
//  3. 状态跳转非法 → Transition
//  4. 合并字段后重新校验日期 / 学分 / 学期引用，再写入

func (s *semesterRegistrationService) Update(ctx context.Context, id string, req *dto.UpdateSemesterRegistrationRequest) (*dto.SemesterRegistrationResponse, error) {
	registration, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}

	current := registration.Status
	if current.IsTerminal() {
		return nil, ErrRegistrationEnded
	}

	if req.Status != nil {
		target, err := model.ParseRegistrationStatus(*req.Status)
		if err != nil {
			return nil, apperrors.Validation(err.Error(), apperrors.Source{Path: "status", Message: err.Error()})
		}
		if !current.CanTransitionTo(target) {
			return nil, apperrors.Transition(current, target)
		}
		registration.Status = target
	}

	if req.AcademicSemester != nil && *req.AcademicSemester != registration.AcademicSemesterID {
		semester, err := s.loader.load(ctx, *req.AcademicSemester)
		if err != nil {
			return nil, err
		}
		if err := s.checkSemesterFree(ctx, semester.ID, registration.ID); err != nil {
			return nil, err
		}
		registration.AcademicSemesterID = semester.ID
		registration.AcademicSemester = semester
	}

	if req.StartDate != nil {
		if registration.StartDate, err = parseDate("start_date", *req.StartDate); err != nil {
			return nil, err
		}
	}
	if req.EndDate != nil {
		if registration.EndDate, err = parseDate("end_date", *req.EndDate); err != nil {
			return nil, err
		}
	}
	if req.MinCredit != nil {
		registration.MinCredit = *req.MinCredit
	}
	if req.MaxCredit != nil {
		registration.MaxCredit = *req.MaxCredit
	}
	if err := validateRegistration(registration); err != nil {
		return nil, err
	}

	if err := s.repo.SemesterRegistration.Update(ctx, registration); err != nil {
		s.logger.Error("更新学期注册失败", zap.String("id", id), zap.Error(err))
		return nil, storeError(err, ErrSemesterAlreadyRegistered)
	}

	s.metrics.IncTransition(current.String(), registration.Status.String())
	if current != registration.Status {
		s.logger.Info("学期注册状态变更",
			zap.String("id", registration.ID),
			zap.String("from", current.String()),
			zap.String("to", registration.Status.String()),
		)
	}
	return toSemesterRegistrationResponse(registration), nil
}

// ── 校验与转换 ──

// 接受的日期格式
var dateLayouts = []string{"2006-01-02", time.RFC3339}

func parseDate(path, value string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, dateError(path, "Invalid date, expected YYYY-MM-DD or RFC3339")
}

// validateRegistration 跨字段校验：开始日期早于结束日期，最小学分不大于最大学分
func validateRegistration(r *model.SemesterRegistration) error {
	if !r.EndDate.After(r.StartDate) {
		return dateError("end_date", "End date must be after start date")
	}
	if r.MinCredit < 0 {
		return apperrors.Validation("Min credit can not be negative",
			apperrors.Source{Path: "min_credit", Message: "Min credit can not be negative"})
	}
	if r.MinCredit > r.MaxCredit {
		return apperrors.Validation("Min credit can not exceed max credit",
			apperrors.Source{Path: "max_credit", Message: "Min credit can not exceed max credit"})
	}
	return nil
}

func toSemesterRegistrationResponse(r *model.SemesterRegistration) *dto.SemesterRegistrationResponse {
	resp := &dto.SemesterRegistrationResponse{
		ID:                 r.ID,
		AcademicSemesterID: r.AcademicSemesterID,
		Status:             r.Status.String(),
		StartDate:          formatTime(r.StartDate),
		EndDate:            formatTime(r.EndDate),
		MinCredit:          r.MinCredit,
		MaxCredit:          r.MaxCredit,
		CreatedAt:          formatTime(r.CreatedAt),
		UpdatedAt:          formatTime(r.UpdatedAt),
	}
	if r.AcademicSemester != nil {
		resp.AcademicSemester = toAcademicSemesterResponse(r.AcademicSemester)
	}
	return resp
}
