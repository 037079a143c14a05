package repository

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/SayemTaher/university-management-server/internal/model"
	pkgerrors "github.com/SayemTaher/university-management-server/pkg/errors"
	"github.com/SayemTaher/university-management-server/pkg/querybuilder"
)

// SemesterRegistrationRepository 学期注册数据访问接口
type SemesterRegistrationRepository interface {
	Create(ctx context.Context, registration *model.SemesterRegistration) error
	GetByID(ctx context.Context, id string) (*model.SemesterRegistration, error)
	// FindInFlight 查询任意一条 UPCOMING / ONGOING 注册，不存在时返回 gorm.ErrRecordNotFound
	FindInFlight(ctx context.Context) (*model.SemesterRegistration, error)
	GetByAcademicSemester(ctx context.Context, academicSemesterID string) (*model.SemesterRegistration, error)
	List(ctx context.Context, params querybuilder.Params) ([]model.SemesterRegistration, querybuilder.Meta, error)
	Update(ctx context.Context, registration *model.SemesterRegistration) error
}

type semesterRegistrationRepo struct {
	db   *gorm.DB
	opts []querybuilder.Option
}

// NewSemesterRegistrationRepo 创建 SemesterRegistrationRepository 实例
func NewSemesterRegistrationRepo(db *gorm.DB, opts ...querybuilder.Option) SemesterRegistrationRepository {
	return &semesterRegistrationRepo{
		db: db,
		opts: append(opts,
			querybuilder.WithAliases(map[string]string{"academic_semester": "academic_semester_id"}),
			// 预加载学期依赖外键列，投影时必须保留
			querybuilder.WithRequiredFields("id", "academic_semester_id"),
		),
	}
}

func (r *semesterRegistrationRepo) Create(ctx context.Context, registration *model.SemesterRegistration) error {
	return r.db.WithContext(ctx).Omit("AcademicSemester").Create(registration).Error
}

func (r *semesterRegistrationRepo) GetByID(ctx context.Context, id string) (*model.SemesterRegistration, error) {
	var registration model.SemesterRegistration
	err := r.db.WithContext(ctx).
		Preload("AcademicSemester").
		Where("id = ?", id).
		First(&registration).Error
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *semesterRegistrationRepo) FindInFlight(ctx context.Context) (*model.SemesterRegistration, error) {
	var registration model.SemesterRegistration
	err := r.db.WithContext(ctx).
		Where("status IN ?", model.InFlightStatuses).
		First(&registration).Error
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *semesterRegistrationRepo) GetByAcademicSemester(ctx context.Context, academicSemesterID string) (*model.SemesterRegistration, error) {
	var registration model.SemesterRegistration
	err := r.db.WithContext(ctx).
		Where("academic_semester_id = ?", academicSemesterID).
		First(&registration).Error
	if err != nil {
		return nil, err
	}
	return &registration, nil
}

func (r *semesterRegistrationRepo) List(ctx context.Context, params querybuilder.Params) ([]model.SemesterRegistration, querybuilder.Meta, error) {
	qb := querybuilder.New(r.db.WithContext(ctx).Model(&model.SemesterRegistration{}), params, r.opts...).
		Search(nil).
		Filter().
		Sort().
		Paginate().
		Fields()

	var registrations []model.SemesterRegistration
	if err := qb.Build().Preload("AcademicSemester").Find(&registrations).Error; err != nil {
		return nil, querybuilder.Meta{}, err
	}

	meta, err := qb.CountTotal(ctx)
	if err != nil {
		return nil, querybuilder.Meta{}, err
	}
	return registrations, meta, nil
}

// Update 基于 version 的乐观锁更新
func (r *semesterRegistrationRepo) Update(ctx context.Context, registration *model.SemesterRegistration) error {
	current := registration.Version
	now := time.Now().UTC()

	result := r.db.WithContext(ctx).
		Model(&model.SemesterRegistration{}).
		Where("id = ? AND version = ?", registration.ID, current).
		Updates(map[string]interface{}{
			"academic_semester_id": registration.AcademicSemesterID,
			"status":               registration.Status,
			"start_date":           registration.StartDate,
			"end_date":             registration.EndDate,
			"min_credit":           registration.MinCredit,
			"max_credit":           registration.MaxCredit,
			"updated_at":           now,
			"version":              current + 1,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return pkgerrors.ErrOptimisticLock
	}

	registration.Version = current + 1
	registration.UpdatedAt = now
	return nil
}
