package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SayemTaher/university-management-server/internal/dto"
	"github.com/SayemTaher/university-management-server/internal/metrics"
	"github.com/SayemTaher/university-management-server/internal/model"
	"github.com/SayemTaher/university-management-server/internal/repository"
	apperrors "github.com/SayemTaher/university-management-server/pkg/errors"
	"github.com/SayemTaher/university-management-server/pkg/querybuilder"
)

// AcademicSemesterService 学年学期业务接口
type AcademicSemesterService interface {
	Create(ctx context.Context, req *dto.CreateAcademicSemesterRequest) (*dto.AcademicSemesterResponse, error)
	GetByID(ctx context.Context, id string) (*dto.AcademicSemesterResponse, error)
	List(ctx context.Context, params querybuilder.Params) ([]dto.AcademicSemesterResponse, querybuilder.Meta, error)
	Update(ctx context.Context, id string, req *dto.UpdateAcademicSemesterRequest) (*dto.AcademicSemesterResponse, error)
}

type academicSemesterService struct {
	repo    *repository.Repository
	loader  *semesterLoader
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewAcademicSemesterService 创建 AcademicSemesterService 实例
func NewAcademicSemesterService(repo *repository.Repository, cache *SemesterCache, m *metrics.Metrics, logger *zap.Logger) AcademicSemesterService {
	return &academicSemesterService{
		repo:    repo,
		loader:  newSemesterLoader(repo.AcademicSemester, cache, logger),
		metrics: m,
		logger:  logger,
	}
}

// ────────────────────── Create ──────────────────────

func (s *academicSemesterService) Create(ctx context.Context, req *dto.CreateAcademicSemesterRequest) (*dto.AcademicSemesterResponse, error) {
	semester := &model.AcademicSemester{
		ID:         uuid.NewString(),
		Name:       model.SemesterName(req.Name),
		Year:       req.Year,
		Code:       model.SemesterCode(req.Code),
		StartMonth: req.StartMonth,
		EndMonth:   req.EndMonth,
	}
	if !model.MatchesSemesterCode(semester.Name, semester.Code) {
		return nil, ErrInvalidSemesterCode
	}

	exists, err := s.repo.AcademicSemester.ExistsByNameAndYear(ctx, semester.Name, semester.Year, "")
	if err != nil {
		s.logger.Error("检查学期唯一性失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	if exists {
		return nil, ErrAcademicSemesterExists
	}

	if err := s.repo.AcademicSemester.Create(ctx, semester); err != nil {
		s.logger.Error("创建学年学期失败", zap.Error(err))
		return nil, storeError(err, ErrAcademicSemesterExists)
	}

	s.metrics.IncSemestersCreated()
	s.loader.cache.set(semester)
	s.logger.Info("学年学期已创建",
		zap.String("id", semester.ID),
		zap.String("name", string(semester.Name)),
		zap.Int("year", semester.Year),
	)
	return toAcademicSemesterResponse(semester), nil
}

// ────────────────────── GetByID ──────────────────────

func (s *academicSemesterService) GetByID(ctx context.Context, id string) (*dto.AcademicSemesterResponse, error) {
	semester, err := s.loader.load(ctx, id)
	if err != nil {
		return nil, err
	}
	return toAcademicSemesterResponse(semester), nil
}

// ────────────────────── List ──────────────────────

func (s *academicSemesterService) List(ctx context.Context, params querybuilder.Params) ([]dto.AcademicSemesterResponse, querybuilder.Meta, error) {
	semesters, meta, err := s.repo.AcademicSemester.List(ctx, params)
	if err != nil {
		s.logger.Error("列出学年学期失败", zap.Error(err))
		return nil, querybuilder.Meta{}, apperrors.Internal(err)
	}

	result := make([]dto.AcademicSemesterResponse, 0, len(semesters))
	for i := range semesters {
		result = append(result, *toAcademicSemesterResponse(&semesters[i]))
	}
	return result, meta, nil
}

// ────────────────────── Update ──────────────────────

func (s *academicSemesterService) Update(ctx context.Context, id string, req *dto.UpdateAcademicSemesterRequest) (*dto.AcademicSemesterResponse, error) {
	current, err := s.loader.load(ctx, id)
	if err != nil {
		return nil, err
	}
	semester := *current

	if req.Name != nil {
		semester.Name = model.SemesterName(*req.Name)
	}
	if req.Year != nil {
		semester.Year = *req.Year
	}
	if req.Code != nil {
		semester.Code = model.SemesterCode(*req.Code)
	}
	if req.StartMonth != nil {
		semester.StartMonth = *req.StartMonth
	}
	if req.EndMonth != nil {
		semester.EndMonth = *req.EndMonth
	}

	// 名称与代码按合并后的记录校验
	if !model.MatchesSemesterCode(semester.Name, semester.Code) {
		return nil, ErrInvalidSemesterCode
	}

	if semester.Name != current.Name || semester.Year != current.Year {
		exists, err := s.repo.AcademicSemester.ExistsByNameAndYear(ctx, semester.Name, semester.Year, semester.ID)
		if err != nil {
			s.logger.Error("检查学期唯一性失败", zap.Error(err))
			return nil, apperrors.Internal(err)
		}
		if exists {
			return nil, ErrAcademicSemesterExists
		}
	}

	if err := s.repo.AcademicSemester.Update(ctx, &semester); err != nil {
		s.loader.cache.invalidate(id)
		s.logger.Error("更新学年学期失败", zap.String("id", id), zap.Error(err))
		return nil, storeError(err, ErrAcademicSemesterExists)
	}

	s.loader.cache.set(&semester)
	return toAcademicSemesterResponse(&semester), nil
}

// ── 转换 ──

func toAcademicSemesterResponse(s *model.AcademicSemester) *dto.AcademicSemesterResponse {
	return &dto.AcademicSemesterResponse{
		ID:         s.ID,
		Name:       string(s.Name),
		Year:       s.Year,
		Code:       string(s.Code),
		StartMonth: s.StartMonth,
		EndMonth:   s.EndMonth,
		CreatedAt:  formatTime(s.CreatedAt),
		UpdatedAt:  formatTime(s.UpdatedAt),
	}
}

// formatTime 零值（被 fields 投影排除）输出空串
func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
