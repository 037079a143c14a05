package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/SayemTaher/university-management-server/internal/dto"
	"github.com/SayemTaher/university-management-server/internal/service"
	"github.com/SayemTaher/university-management-server/pkg/querybuilder"
	"github.com/SayemTaher/university-management-server/pkg/response"
)

// AcademicSemesterHandler 学年学期模块 HTTP 处理器
type AcademicSemesterHandler struct {
	semesterSvc service.AcademicSemesterService
	errors      *response.Renderer
}

// NewAcademicSemesterHandler 创建 AcademicSemesterHandler
func NewAcademicSemesterHandler(semesterSvc service.AcademicSemesterService, renderer *response.Renderer) *AcademicSemesterHandler {
	return &AcademicSemesterHandler{semesterSvc: semesterSvc, errors: renderer}
}

// CreateAcademicSemester 创建学年学期
// POST /api/v1/academic-semesters
func (h *AcademicSemesterHandler) CreateAcademicSemester(c *gin.Context) {
	var req dto.CreateAcademicSemesterRequest
	if err := bindJSON(c, &req); err != nil {
		h.errors.Error(c, err)
		return
	}

	semester, err := h.semesterSvc.Create(c.Request.Context(), &req)
	if err != nil {
		h.errors.Error(c, err)
		return
	}

	response.Created(c, "Academic semester is created successfully", semester)
}

// ListAcademicSemesters 学年学期列表（searchTerm / 过滤 / 排序 / 分页 / fields）
// GET /api/v1/academic-semesters
func (h *AcademicSemesterHandler) ListAcademicSemesters(c *gin.Context) {
	semesters, meta, err := h.semesterSvc.List(c.Request.Context(), queryParams(c))
	if err != nil {
		h.errors.Error(c, err)
		return
	}

	response.OKPage(c, "Academic semesters are retrieved successfully", semesters, toMeta(meta))
}

// GetAcademicSemester 学年学期详情
// GET /api/v1/academic-semesters/:id
func (h *AcademicSemesterHandler) GetAcademicSemester(c *gin.Context) {
	semester, err := h.semesterSvc.GetByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.errors.Error(c, err)
		return
	}

	response.OK(c, "Academic semester is retrieved successfully", semester)
}

// UpdateAcademicSemester 更新学年学期
// PATCH /api/v1/academic-semesters/:id
func (h *AcademicSemesterHandler) UpdateAcademicSemester(c *gin.Context) {
	var req dto.UpdateAcademicSemesterRequest
	if err := bindJSON(c, &req); err != nil {
		h.errors.Error(c, err)
		return
	}

	semester, err := h.semesterSvc.Update(c.Request.Context(), c.Param("id"), &req)
	if err != nil {
		h.errors.Error(c, err)
		return
	}

	response.OK(c, "Academic semester is updated successfully", semester)
}

func toMeta(m querybuilder.Meta) response.Meta {
	return response.Meta{Page: m.Page, Limit: m.Limit, Total: m.Total, TotalPage: m.TotalPage}
}
