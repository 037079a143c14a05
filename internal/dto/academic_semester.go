package dto

// ── 学年学期模块 DTO ──

// CreateAcademicSemesterRequest 创建学年学期请求
type CreateAcademicSemesterRequest struct {
	Name       string `json:"name"        binding:"required,semester_name"`
	Year       int    `json:"year"        binding:"required,min=1900,max=9999"`
	Code       string `json:"code"        binding:"required,semester_code"`
	StartMonth string `json:"start_month" binding:"required,month"`
	EndMonth   string `json:"end_month"   binding:"required,month"`
}

// UpdateAcademicSemesterRequest 更新学年学期请求（字段均可选）
type UpdateAcademicSemesterRequest struct {
	Name       *string `json:"name"        binding:"omitempty,semester_name"`
	Year       *int    `json:"year"        binding:"omitempty,min=1900,max=9999"`
	Code       *string `json:"code"        binding:"omitempty,semester_code"`
	StartMonth *string `json:"start_month" binding:"omitempty,month"`
	EndMonth   *string `json:"end_month"   binding:"omitempty,month"`
}

// AcademicSemesterResponse 学年学期信息响应
type AcademicSemesterResponse struct {
	ID         string `json:"id"`
	Name       string `json:"name,omitempty"`
	Year       int    `json:"year,omitempty"`
	Code       string `json:"code,omitempty"`
	StartMonth string `json:"start_month,omitempty"`
	EndMonth   string `json:"end_month,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	UpdatedAt  string `json:"updated_at,omitempty"`
}
