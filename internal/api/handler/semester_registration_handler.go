package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SayemTaher/university-management-server/internal/dto"
	"github.com/SayemTaher/university-management-server/internal/service"
	"github.com/SayemTaher/university-management-server/pkg/response"
)

// SemesterRegistrationHandler 学期注册模块 HTTP 处理器
type SemesterRegistrationHandler struct {
	registrationSvc service.SemesterRegistrationService
	errors          *response.Renderer
}

// NewSemesterRegistrationHandler 创建 SemesterRegistrationHandler
func NewSemesterRegistrationHandler(registrationSvc service.SemesterRegistrationService, renderer *response.Renderer) *SemesterRegistrationHandler {
	return &SemesterRegistrationHandler{registrationSvc: registrationSvc, errors: renderer}
}

// CreateSemesterRegistration 创建学期注册
// POST /api/v1/semester-registrations
func (h *SemesterRegistrationHandler) CreateSemesterRegistration(c *gin.Context) {
	var req dto.CreateSemesterRegistrationRequest
	if err := bindJSON(c, &req); err != nil {
		h.errors.Error(c, err)
		return
	}

	registration, err := h.registrationSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.errors.Error(c, err)
		return
	}

	response.Created(c, "Semester Registration is created successfully!", registration)
}

// ListSemesterRegistrations 学期注册列表
// GET /api/v1/semester-registrations
func (h *SemesterRegistrationHandler) ListSemesterRegistrations(c *gin.Context) {
	registrations, meta, err := h.registrationSvc.List(c.Request.Context(), queryParams(c))
	if err != nil {
		h.errors.Error(c, err)
		return
	}

	response.OKPage(c, "Semester Registrations are retrieved successfully!", registrations, toMeta(meta))
}

// GetSemesterRegistration 学期注册详情
// GET /api/v1/semester-registrations/:id
func (h *SemesterRegistrationHandler) GetSemesterRegistration(c *gin.Context) {
	registration, err := h.registrationSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errors.Error(c, err)
		return
	}

	response.OK(c, "Semester Registration is retrieved successfully!", registration)
}

// UpdateSemesterRegistration 更新学期注册（含状态流转）
// PATCH /api/v1/semester-registrations/:id
func (h *SemesterRegistrationHandler) UpdateSemesterRegistration(c *gin.Context) {
	var req dto.UpdateSemesterRegistrationRequest
	if err := bindJSON(c, &req); err != nil {
		h.errors.Error(c, err)
		return
	}

	registration, err := h.registrationSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.errors.Error(c, err)
		return
	}

	response.OK(c, "Semester Registration is updated successfully!", registration)
}
