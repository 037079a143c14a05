package handler

import (
	"net/http"
	"net/url"

	"github.com/gin-gonic/gin"

	"github.com/SayemTaher/university-management-server/internal/service"
	"github.com/SayemTaher/university-management-server/pkg/response"
)

const (
	xlsxContentType     = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	calendarContentType = "text/calendar; charset=utf-8"
)

// ExportHandler 导出模块 HTTP 处理器
type ExportHandler struct {
	exportSvc service.ExportService
	errors    *response.Renderer
}

// NewExportHandler 创建 ExportHandler
func NewExportHandler(exportSvc service.ExportService, renderer *response.Renderer) *ExportHandler {
	return &ExportHandler{exportSvc: exportSvc, errors: renderer}
}

// ExportRegistrations 导出学期注册为 Excel（查询参数同列表接口）
// GET /api/v1/semester-registrations/export
func (h *ExportHandler) ExportRegistrations(c *gin.Context) {
	buf, filename, err := h.exportSvc.ExportRegistrations(c.Request.Context(), queryParams(c))
	if err != nil {
		h.errors.Error(c, err)
		return
	}

	// 设置下载响应头
	c.Header("Content-Description", "File Transfer")
	c.Header("Content-Disposition", "attachment; filename*=UTF-8''"+url.QueryEscape(filename))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// RegistrationCalendar 学期注册日历订阅
// GET /api/v1/semester-registrations/calendar.ics
func (h *ExportHandler) RegistrationCalendar(c *gin.Context) {
	buf, err := h.exportSvc.RegistrationCalendar(c.Request.Context(), queryParams(c))
	if err != nil {
		h.errors.Error(c, err)
		return
	}

	c.Header("Content-Disposition", `inline; filename="semester-registrations.ics"`)
	c.Data(http.StatusOK, calendarContentType, buf.Bytes())
}
