package service

import (
	"errors"

	"gorm.io/gorm"

	apperrors "github.com/SayemTaher/university-management-server/pkg/errors"
)

// ── 业务错误 ──

var (
	ErrAcademicSemesterNotFound = apperrors.NotFound("This academic semester not found!")
	ErrAcademicSemesterExists   = apperrors.Conflict("Semester is already exists")
	ErrInvalidSemesterCode      = apperrors.Validation("Invalid Semester Code", apperrors.Source{Path: "code", Message: "Invalid Semester Code"})

	ErrRegistrationNotFound      = apperrors.NotFound("This semester is not found!")
	ErrSemesterAlreadyRegistered = apperrors.Conflict("This semester is already registered!")
	ErrRegistrationEnded         = apperrors.BadRequest("This semester is already ENDED")
	ErrRegistrationBusy          = apperrors.Conflict("Another semester registration is in progress, please retry")
)

// inFlightConflict 全局进行中注册冲突，message 指明冲突状态
func inFlightConflict(status string) error {
	return apperrors.Newf(apperrors.KindConflict, "There is already an %s registered semester!", status)
}

// dateError 日期字段校验失败
func dateError(path, message string) error {
	return apperrors.Validation(message, apperrors.Source{Path: path, Message: message})
}

// storeError 将持久层错误映射为类型化错误
// 唯一索引冲突 → duplicate（Conflict），乐观锁冲突 → Conflict，其余 → Internal
func storeError(err error, duplicate *apperrors.AppError) error {
	switch {
	case err == nil:
		return nil
	case errors.Is(err, gorm.ErrDuplicatedKey) && duplicate != nil:
		return apperrors.Wrap(err, duplicate.Kind, duplicate.Message)
	case errors.Is(err, apperrors.ErrOptimisticLock):
		return apperrors.Wrap(err, apperrors.KindConflict, apperrors.ErrOptimisticLock.Error())
	default:
		return apperrors.Internal(err)
	}
}
