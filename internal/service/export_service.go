package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/SayemTaher/university-management-server/internal/model"
	"github.com/SayemTaher/university-management-server/internal/repository"
	apperrors "github.com/SayemTaher/university-management-server/pkg/errors"
	"github.com/SayemTaher/university-management-server/pkg/querybuilder"
)

// ExportMaxRows 单次导出的最大行数，也是未指定 limit 时的默认值
const ExportMaxRows = 1000

// ExportService 导出业务接口
//
// 导出沿用列表接口的查询参数（过滤、排序、分页），
// 内容以 bytes.Buffer 返回，由 Handler 层设置 HTTP 响应头后写入 Response
type ExportService interface {
	// ExportRegistrations 导出学期注册为 Excel
	ExportRegistrations(ctx context.Context, params querybuilder.Params) (*bytes.Buffer, string, error)
	// RegistrationCalendar 导出学期注册为 iCalendar 日历（每条注册一个全天事件）
	RegistrationCalendar(ctx context.Context, params querybuilder.Params) (*bytes.Buffer, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService 创建 ExportService 实例
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

func (s *exportService) list(ctx context.Context, params querybuilder.Params) ([]model.SemesterRegistration, error) {
	p := querybuilder.ClampLimit(params, ExportMaxRows, ExportMaxRows)
	// 导出需要完整列
	delete(p, querybuilder.KeyFields)

	registrations, _, err := s.repo.SemesterRegistration.List(ctx, p)
	if err != nil {
		s.logger.Error("查询导出数据失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return registrations, nil
}

// ════════════════════════════════════════════════════════════
// ExportRegistrations
// ════════════════════════════════════════════════════════════
//
// 表头：| 学期 | 年份 | 代码 | 状态 | 开始日期 | 结束日期 | 最小学分 | 最大学分 |

var registrationHeaders = []string{
	"Semester", "Year", "Code", "Status", "Start Date", "End Date", "Min Credit", "Max Credit",
}

func (s *exportService) ExportRegistrations(ctx context.Context, params querybuilder.Params) (*bytes.Buffer, string, error) {
	registrations, err := s.list(ctx, params)
	if err != nil {
		return nil, "", err
	}

	f := excelize.NewFile()
	defer f.Close()

	sheetName := "Registrations"
	idx, err := f.NewSheet(sheetName)
	if err != nil {
		return nil, "", apperrors.Internal(err)
	}
	f.SetActiveSheet(idx)
	// 删除默认 Sheet1
	f.DeleteSheet("Sheet1")

	f.SetColWidth(sheetName, "A", "A", 12)
	f.SetColWidth(sheetName, "B", "D", 10)
	f.SetColWidth(sheetName, "E", "F", 14)
	f.SetColWidth(sheetName, "G", "H", 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#4472C4"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})

	for i, h := range registrationHeaders {
		f.SetCellValue(sheetName, cell(colName(i), 1), h)
	}
	f.SetCellStyle(sheetName, "A1", cell(colName(len(registrationHeaders)-1), 1), headerStyle)

	row := 2
	for _, r := range registrations {
		var name, code string
		var year int
		if r.AcademicSemester != nil {
			name = string(r.AcademicSemester.Name)
			code = string(r.AcademicSemester.Code)
			year = r.AcademicSemester.Year
		}
		values := []interface{}{
			name, year, code, r.Status.String(),
			r.StartDate.Format("2006-01-02"), r.EndDate.Format("2006-01-02"),
			r.MinCredit, r.MaxCredit,
		}
		for i, v := range values {
			f.SetCellValue(sheetName, cell(colName(i), row), v)
		}
		row++
	}

	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("写入 Excel 失败", zap.Error(err))
		return nil, "", apperrors.Internal(err)
	}

	filename := fmt.Sprintf("semester_registrations_%s.xlsx", time.Now().UTC().Format("20060102"))
	return buf, filename, nil
}

// ════════════════════════════════════════════════════════════
// RegistrationCalendar
// ════════════════════════════════════════════════════════════

func (s *exportService) RegistrationCalendar(ctx context.Context, params querybuilder.Params) (*bytes.Buffer, error) {
	registrations, err := s.list(ctx, params)
	if err != nil {
		return nil, err
	}

	cal := ics.NewCalendar()
	cal.SetMethod(ics.MethodPublish)
	cal.SetProductId("-//university-management//semester-registrations//EN")
	cal.SetXWRCalName("Semester Registrations")

	now := time.Now().UTC()
	for _, r := range registrations {
		event := cal.AddEvent(r.ID + "@semester-registrations")
		event.SetDtStampTime(now)
		if !r.UpdatedAt.IsZero() {
			event.SetModifiedAt(r.UpdatedAt)
		}
		event.SetAllDayStartAt(r.StartDate)
		// DTEND 为开区间
		event.SetAllDayEndAt(r.EndDate.AddDate(0, 0, 1))
		event.SetSummary(registrationTitle(&r))
		event.SetDescription(fmt.Sprintf("Status: %s, credits %d-%d", r.Status, r.MinCredit, r.MaxCredit))
		event.AddProperty(ics.ComponentPropertyCategories, r.Status.String())
	}

	buf := new(bytes.Buffer)
	if err := cal.SerializeTo(buf); err != nil {
		s.logger.Error("生成日历失败", zap.Error(err))
		return nil, apperrors.Internal(err)
	}
	return buf, nil
}

// registrationTitle 形如 "Autumn 2025 registration"
func registrationTitle(r *model.SemesterRegistration) string {
	if r.AcademicSemester == nil {
		return "Semester registration"
	}
	return fmt.Sprintf("%s %d registration", r.AcademicSemester.Name, r.AcademicSemester.Year)
}

// ── 辅助函数 ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
