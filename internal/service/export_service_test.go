package service

import (
	"context"
	"strings"
	"testing"

	ics "github.com/arran4/golang-ical"
	"github.com/xuri/excelize/v2"

	"github.com/SayemTaher/university-management-server/internal/model"
	"github.com/SayemTaher/university-management-server/pkg/querybuilder"
)

func TestExportService_ExportRegistrations(t *testing.T) {
	env := setupTestService()
	s1 := seedSemester(env, model.SemesterAutumn, 2025)
	s2 := seedSemester(env, model.SemesterSummer, 2026)
	seedRegistration(env, s1, model.StatusEnded)
	seedRegistration(env, s2, model.StatusOngoing)

	buf, filename, err := env.svc.Export.ExportRegistrations(context.Background(), querybuilder.Params{"fields": "status"})
	if err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if !strings.HasSuffix(filename, ".xlsx") {
		t.Errorf("期望 .xlsx 文件名，实际=%s", filename)
	}

	// 未指定 limit 时使用导出上限；fields 投影被忽略
	if got := env.registrations.lastParams[querybuilder.KeyLimit]; got != ExportMaxRows {
		t.Errorf("期望 limit=%d，实际=%v", ExportMaxRows, got)
	}
	if _, ok := env.registrations.lastParams[querybuilder.KeyFields]; ok {
		t.Error("导出不应带 fields 投影")
	}

	f, err := excelize.OpenReader(buf)
	if err != nil {
		t.Fatalf("读取导出文件失败: %v", err)
	}
	defer f.Close()

	rows, err := f.GetRows("Registrations")
	if err != nil {
		t.Fatalf("读取 Sheet 失败: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("期望 1 行表头 + 2 行数据，实际=%d", len(rows))
	}
	if rows[0][0] != "Semester" || rows[1][0] != "Autumn" || rows[1][3] != "ENDED" || rows[2][3] != "ONGOING" {
		t.Errorf("导出内容不符: %v", rows)
	}
}

func TestExportService_ExportRegistrations_KeepsCallerParams(t *testing.T) {
	env := setupTestService()
	params := querybuilder.Params{"limit": "5"}

	if _, _, err := env.svc.Export.ExportRegistrations(context.Background(), params); err != nil {
		t.Fatalf("导出应成功: %v", err)
	}
	if got := env.registrations.lastParams[querybuilder.KeyLimit]; got != 5 {
		t.Errorf("调用方指定的 limit 应保留，实际=%v", got)
	}
	if len(params) != 1 || params["limit"] != "5" {
		t.Error("调用方参数不应被修改")
	}
}

func TestExportService_LimitCappedAtMaxRows(t *testing.T) {
	for _, limit := range []any{"100000000", 5000, []string{"2000", "1"}} {
		env := setupTestService()
		params := querybuilder.Params{"limit": limit}

		if _, err := env.svc.Export.RegistrationCalendar(context.Background(), params); err != nil {
			t.Fatalf("导出应成功: %v", err)
		}
		if got := env.registrations.lastParams[querybuilder.KeyLimit]; got != ExportMaxRows {
			t.Errorf("limit=%v: 期望截断为 %d，实际=%v", limit, ExportMaxRows, got)
		}
	}
}

func TestExportService_RegistrationCalendar(t *testing.T) {
	env := setupTestService()
	s1 := seedSemester(env, model.SemesterFall, 2026)
	r := seedRegistration(env, s1, model.StatusUpcoming)

	buf, err := env.svc.Export.RegistrationCalendar(context.Background(), nil)
	if err != nil {
		t.Fatalf("生成日历应成功: %v", err)
	}

	cal, err := ics.ParseCalendar(buf)
	if err != nil {
		t.Fatalf("解析日历失败: %v", err)
	}
	events := cal.Events()
	if len(events) != 1 {
		t.Fatalf("期望 1 个事件，实际=%d", len(events))
	}
	if events[0].Id() != r.ID+"@semester-registrations" {
		t.Errorf("事件 UID 不符: %s", events[0].Id())
	}
	if got := events[0].GetProperty(ics.ComponentPropertySummary).Value; got != "Fall 2026 registration" {
		t.Errorf("期望 SUMMARY=Fall 2026 registration，实际=%s", got)
	}
	if got := events[0].GetProperty(ics.ComponentPropertyDtEnd).Value; got != "20260501" {
		t.Errorf("期望 DTEND=20260501（开区间），实际=%s", got)
	}
}
