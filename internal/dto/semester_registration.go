package dto

// ── 学期注册模块 DTO ──

// CreateSemesterRegistrationRequest 创建学期注册请求
// 日期支持 "2026-09-01" 与 RFC3339 两种格式
type CreateSemesterRegistrationRequest struct {
	AcademicSemester string `json:"academic_semester" binding:"required,uuid"`
	Status           string `json:"status"            binding:"omitempty,registration_status"` // 缺省 UPCOMING
	StartDate        string `json:"start_date"        binding:"required"`
	EndDate          string `json:"end_date"          binding:"required"`
	MinCredit        *int   `json:"min_credit"        binding:"omitempty,min=0"` // 缺省 3
	MaxCredit        *int   `json:"max_credit"        binding:"omitempty,min=0"` // 缺省 15
}

// UpdateSemesterRegistrationRequest 更新学期注册请求（字段均可选）
type UpdateSemesterRegistrationRequest struct {
	AcademicSemester *string `json:"academic_semester" binding:"omitempty,uuid"`
	Status           *string `json:"status"            binding:"omitempty,registration_status"`
	StartDate        *string `json:"start_date"`
	EndDate          *string `json:"end_date"`
	MinCredit        *int    `json:"min_credit"        binding:"omitempty,min=0"`
	MaxCredit        *int    `json:"max_credit"        binding:"omitempty,min=0"`
}

// SemesterRegistrationResponse 学期注册信息响应
type SemesterRegistrationResponse struct {
	ID                 string                    `json:"id"`
	AcademicSemesterID string                    `json:"academic_semester_id,omitempty"`
	AcademicSemester   *AcademicSemesterResponse `json:"academic_semester,omitempty"`
	Status             string                    `json:"status,omitempty"`
	StartDate          string                    `json:"start_date,omitempty"`
	EndDate            string                    `json:"end_date,omitempty"`
	MinCredit          int                       `json:"min_credit"`
	MaxCredit          int                       `json:"max_credit"`
	CreatedAt          string                    `json:"created_at,omitempty"`
	UpdatedAt          string                    `json:"updated_at,omitempty"`
}
