package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	gocache "github.com/patrickmn/go-cache"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/SayemTaher/university-management-server/internal/model"
	"github.com/SayemTaher/university-management-server/internal/repository"
	apperrors "github.com/SayemTaher/university-management-server/pkg/errors"
)

// SemesterCache 学年学期只读缓存（按 id），学期不会被删除，更新时主动失效
type SemesterCache struct {
	cache *gocache.Cache
}

// NewSemesterCache ttl <= 0 时禁用缓存
func NewSemesterCache(ttl time.Duration) *SemesterCache {
	if ttl <= 0 {
		return &SemesterCache{}
	}
	return &SemesterCache{cache: gocache.New(ttl, 2*ttl)}
}

func (c *SemesterCache) get(id string) (*model.AcademicSemester, bool) {
	if c == nil || c.cache == nil {
		return nil, false
	}
	v, ok := c.cache.Get(id)
	if !ok {
		return nil, false
	}
	semester, ok := v.(model.AcademicSemester)
	if !ok {
		return nil, false
	}
	return &semester, true
}

func (c *SemesterCache) set(semester *model.AcademicSemester) {
	if c == nil || c.cache == nil || semester == nil {
		return
	}
	c.cache.SetDefault(semester.ID, *semester)
}

func (c *SemesterCache) invalidate(id string) {
	if c == nil || c.cache == nil {
		return
	}
	c.cache.Delete(id)
}

// semesterLoader 带缓存的学期查询，供学期与注册两个 Service 共用
type semesterLoader struct {
	repo   repository.AcademicSemesterRepository
	cache  *SemesterCache
	logger *zap.Logger
}

func newSemesterLoader(repo repository.AcademicSemesterRepository, cache *SemesterCache, logger *zap.Logger) *semesterLoader {
	return &semesterLoader{repo: repo, cache: cache, logger: logger}
}

// load 查询学期；id 非法或不存在时返回 ErrAcademicSemesterNotFound
func (l *semesterLoader) load(ctx context.Context, id string) (*model.AcademicSemester, error) {
	if uuid.Validate(id) != nil {
		return nil, ErrAcademicSemesterNotFound
	}
	if semester, ok := l.cache.get(id); ok {
		return semester, nil
	}

	semester, err := l.repo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrAcademicSemesterNotFound
		}
		l.logger.Error("查询学年学期失败", zap.String("id", id), zap.Error(err))
		return nil, apperrors.Internal(err)
	}

	l.cache.set(semester)
	return semester, nil
}
