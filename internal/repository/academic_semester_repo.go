package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SayemTaher/university-management-server/internal/model"
	pkgerrors "github.com/SayemTaher/university-management-server/pkg/errors"
	"github.com/SayemTaher/university-management-server/pkg/querybuilder"
)

// AcademicSemesterSearchableFields 学期列表 searchTerm 检索的列
var AcademicSemesterSearchableFields = []string{"name", "year"}

// AcademicSemesterRepository 学年学期数据访问接口
type AcademicSemesterRepository interface {
	Create(ctx context.Context, semester *model.AcademicSemester) error
	GetByID(ctx context.Context, id string) (*model.AcademicSemester, error)
	ExistsByNameAndYear(ctx context.Context, name model.SemesterName, year int, excludeID string) (bool, error)
	List(ctx context.Context, params querybuilder.Params) ([]model.AcademicSemester, querybuilder.Meta, error)
	Update(ctx context.Context, semester *model.AcademicSemester) error
}

type academicSemesterRepo struct {
	db   *gorm.DB
	opts []querybuilder.Option
}

// NewAcademicSemesterRepo 创建 AcademicSemesterRepository 实例
func NewAcademicSemesterRepo(db *gorm.DB, opts ...querybuilder.Option) AcademicSemesterRepository {
	return &academicSemesterRepo{
		db:   db,
		opts: append(opts, querybuilder.WithRequiredFields("id")),
	}
}

func (r *academicSemesterRepo) Create(ctx context.Context, semester *model.AcademicSemester) error {
	return r.db.WithContext(ctx).Create(semester).Error
}

func (r *academicSemesterRepo) GetByID(ctx context.Context, id string) (*model.AcademicSemester, error) {
	var semester model.AcademicSemester
	err := r.db.WithContext(ctx).
		Where("id = ?", id).
		First(&semester).Error
	if err != nil {
		return nil, err
	}
	return &semester, nil
}

func (r *academicSemesterRepo) ExistsByNameAndYear(ctx context.Context, name model.SemesterName, year int, excludeID string) (bool, error) {
	var count int64
	db := r.db.WithContext(ctx).
		Model(&model.AcademicSemester{}).
		Where("name = ? AND year = ?", name, year)
	if excludeID != "" {
		db = db.Where("id <> ?", excludeID)
	}
	if err := db.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *academicSemesterRepo) List(ctx context.Context, params querybuilder.Params) ([]model.AcademicSemester, querybuilder.Meta, error) {
	qb := querybuilder.New(r.db.WithContext(ctx).Model(&model.AcademicSemester{}), params, r.opts...).
		Search(AcademicSemesterSearchableFields).
		Filter().
		Sort().
		Paginate().
		Fields()

	var semesters []model.AcademicSemester
	if err := qb.Build().Find(&semesters).Error; err != nil {
		return nil, querybuilder.Meta{}, err
	}

	meta, err := qb.CountTotal(ctx)
	if err != nil {
		return nil, querybuilder.Meta{}, err
	}
	return semesters, meta, nil
}

// Update 基于 version 的乐观锁更新
func (r *academicSemesterRepo) Update(ctx context.Context, semester *model.AcademicSemester) error {
	current := semester.Version
	now := time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&model.AcademicSemester{}).
		Where("id = ? AND version = ?", semester.ID, current).
		Updates(map[string]interface{}{
			"name":        semester.Name,
			"year":        semester.Year,
			"code":        semester.Code,
			"start_month": semester.StartMonth,
			"end_month":   semester.EndMonth,
			"updated_at":  now,
			"version":     current + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}

	semester.Version = current + 1
	semester.UpdatedAt = now
	return nil
}
