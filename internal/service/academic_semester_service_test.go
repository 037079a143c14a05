package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/SayemTaher/university-management-server/internal/dto"
	"github.com/SayemTaher/university-management-server/internal/model"
	"github.com/SayemTaher/university-management-server/internal/repository"
	apperrors "github.com/SayemTaher/university-management-server/pkg/errors"
)

func createSemesterRequest(name, code string, year int) *dto.CreateAcademicSemesterRequest {
	return &dto.CreateAcademicSemesterRequest{
		Name:       name,
		Year:       year,
		Code:       code,
		StartMonth: "January",
		EndMonth:   "April",
	}
}

// ── Create 测试 ──

func TestAcademicSemesterService_Create_Success(t *testing.T) {
	env := setupTestService()

	result, err := env.svc.AcademicSemester.Create(context.Background(), createSemesterRequest("Autumn", "01", 2026))
	if err != nil {
		t.Fatalf("Create 应成功: %v", err)
	}
	if result.Name != "Autumn" || result.Code != "01" || result.Year != 2026 {
		t.Errorf("创建结果不符: %+v", result)
	}
	if uuid.Validate(result.ID) != nil {
		t.Errorf("期望 id 为 uuid，实际=%s", result.ID)
	}
}

func TestAcademicSemesterService_Create_CodeMismatch(t *testing.T) {
	env := setupTestService()

	for _, tc := range [][2]string{{"Autumn", "02"}, {"Summer", "03"}, {"Fall", "01"}} {
		_, err := env.svc.AcademicSemester.Create(context.Background(), createSemesterRequest(tc[0], tc[1], 2026))
		assertKind(t, err, apperrors.KindValidation, "Invalid Semester Code")
	}
	if len(env.semesters.semesters) != 0 {
		t.Error("校验失败时不应写入")
	}
}

func TestAcademicSemesterService_Create_Duplicate(t *testing.T) {
	env := setupTestService()
	ctx := context.Background()

	if _, err := env.svc.AcademicSemester.Create(ctx, createSemesterRequest("Fall", "03", 2026)); err != nil {
		t.Fatalf("首次创建应成功: %v", err)
	}
	_, err := env.svc.AcademicSemester.Create(ctx, createSemesterRequest("Fall", "03", 2026))
	assertKind(t, err, apperrors.KindConflict, "Semester is already exists")

	// 同名不同年允许
	if _, err := env.svc.AcademicSemester.Create(ctx, createSemesterRequest("Fall", "03", 2027)); err != nil {
		t.Errorf("不同年份应允许创建: %v", err)
	}
}

// ── GetByID 测试 ──

func TestAcademicSemesterService_GetByID(t *testing.T) {
	env := setupTestService()
	s := seedSemester(env, model.SemesterSummer, 2026)

	result, err := env.svc.AcademicSemester.GetByID(context.Background(), s.ID)
	if err != nil {
		t.Fatalf("GetByID 应成功: %v", err)
	}
	if result.Name != "Summer" {
		t.Errorf("期望Name=Summer，实际=%s", result.Name)
	}

	for _, id := range []string{uuid.NewString(), "abc"} {
		_, err = env.svc.AcademicSemester.GetByID(context.Background(), id)
		assertKind(t, err, apperrors.KindNotFound, "This academic semester not found!")
	}
}

func TestAcademicSemesterService_GetByID_Cached(t *testing.T) {
	semesterRepo := newMockAcademicSemesterRepo()
	repo := &repository.Repository{
		AcademicSemester:     semesterRepo,
		SemesterRegistration: newMockSemesterRegistrationRepo(semesterRepo),
	}
	svc := NewAcademicSemesterService(repo, NewSemesterCache(time.Minute), nil, zap.NewNop())

	s := &model.AcademicSemester{ID: uuid.NewString(), Name: model.SemesterAutumn, Year: 2026, Code: model.SemesterCodeAutumn}
	semesterRepo.add(s)

	for i := 0; i < 3; i++ {
		if _, err := svc.GetByID(context.Background(), s.ID); err != nil {
			t.Fatalf("GetByID 应成功: %v", err)
		}
	}
	if semesterRepo.getCalls != 1 {
		t.Errorf("期望仅查询 1 次 Repository，实际=%d", semesterRepo.getCalls)
	}

	// 更新后缓存应反映新值
	year := 2030
	if _, err := svc.Update(context.Background(), s.ID, &dto.UpdateAcademicSemesterRequest{Year: &year}); err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	result, _ := svc.GetByID(context.Background(), s.ID)
	if result.Year != 2030 {
		t.Errorf("期望Year=2030，实际=%d", result.Year)
	}
}

// ── Update 测试 ──

func TestAcademicSemesterService_Update(t *testing.T) {
	env := setupTestService()
	s := seedSemester(env, model.SemesterAutumn, 2026)
	seedSemester(env, model.SemesterFall, 2026)
	ctx := context.Background()

	// 仅改名称：与现有代码不匹配
	_, err := env.svc.AcademicSemester.Update(ctx, s.ID, &dto.UpdateAcademicSemesterRequest{Name: strPtr("Summer")})
	assertKind(t, err, apperrors.KindValidation, "Invalid Semester Code")

	// 名称与代码一起修改，但与已有 (Fall, 2026) 重复
	_, err = env.svc.AcademicSemester.Update(ctx, s.ID, &dto.UpdateAcademicSemesterRequest{Name: strPtr("Fall"), Code: strPtr("03")})
	assertKind(t, err, apperrors.KindConflict, "Semester is already exists")

	result, err := env.svc.AcademicSemester.Update(ctx, s.ID, &dto.UpdateAcademicSemesterRequest{
		Name: strPtr("Summer"), Code: strPtr("02"), EndMonth: strPtr("June"),
	})
	if err != nil {
		t.Fatalf("Update 应成功: %v", err)
	}
	if result.Name != "Summer" || result.Code != "02" || result.EndMonth != "June" || result.StartMonth != "January" {
		t.Errorf("更新结果不符: %+v", result)
	}
}

func TestAcademicSemesterService_Update_NotFound(t *testing.T) {
	env := setupTestService()

	_, err := env.svc.AcademicSemester.Update(context.Background(), uuid.NewString(), &dto.UpdateAcademicSemesterRequest{})
	assertKind(t, err, apperrors.KindNotFound, "This academic semester not found!")
}

// ── List 测试 ──

func TestAcademicSemesterService_List(t *testing.T) {
	env := setupTestService()
	seedSemester(env, model.SemesterAutumn, 2025)
	seedSemester(env, model.SemesterSummer, 2025)

	result, meta, err := env.svc.AcademicSemester.List(context.Background(), nil)
	if err != nil {
		t.Fatalf("List 应成功: %v", err)
	}
	if len(result) != 2 || meta.Total != 2 {
		t.Errorf("期望 2 条，实际=%d", len(result))
	}

	env.semesters.listErr = errors.New("boom")
	_, _, err = env.svc.AcademicSemester.List(context.Background(), nil)
	assertKind(t, err, apperrors.KindInternal, "")
}
