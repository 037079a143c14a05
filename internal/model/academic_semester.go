package model

// SemesterName 学期名称
type SemesterName string

const (
	SemesterAutumn SemesterName = "Autumn"
	SemesterSummer SemesterName = "Summer"
	SemesterFall   SemesterName = "Fall"
)

// SemesterCode 学期代码，与名称一一对应
type SemesterCode string

const (
	SemesterCodeAutumn SemesterCode = "01"
	SemesterCodeSummer SemesterCode = "02"
	SemesterCodeFall   SemesterCode = "03"
)

// semesterCodeByName 名称 → 代码 对照表
var semesterCodeByName = map[SemesterName]SemesterCode{
	SemesterAutumn: SemesterCodeAutumn,
	SemesterSummer: SemesterCodeSummer,
	SemesterFall:   SemesterCodeFall,
}

// SemesterNames 全部合法学期名称
var SemesterNames = []SemesterName{SemesterAutumn, SemesterSummer, SemesterFall}

// SemesterCodes 全部合法学期代码
var SemesterCodes = []SemesterCode{SemesterCodeAutumn, SemesterCodeSummer, SemesterCodeFall}

// Months 合法月份取值
var Months = []string{
	"January", "February", "March", "April", "May", "June",
	"July", "August", "September", "October", "November", "December",
}

// Code 返回学期名称对应的代码
func (n SemesterName) Code() (SemesterCode, bool) {
	c, ok := semesterCodeByName[n]
	return c, ok
}

// IsValid 是否为已知学期名称
func (n SemesterName) IsValid() bool {
	_, ok := semesterCodeByName[n]
	return ok
}

// IsValid 是否为已知学期代码
func (c SemesterCode) IsValid() bool {
	for _, code := range SemesterCodes {
		if code == c {
			return true
		}
	}
	return false
}

// MatchesSemesterCode 名称与代码是否为对照表中的一对
func MatchesSemesterCode(name SemesterName, code SemesterCode) bool {
	expected, ok := name.Code()
	return ok && expected == code
}

// IsMonth 是否为合法月份
func IsMonth(s string) bool {
	for _, m := range Months {
		if m == s {
			return true
		}
	}
	return false
}

// AcademicSemester 学年学期表 — 对应 academic_semesters
// (name, year) 唯一，由数据库唯一索引保证
type AcademicSemester struct {
	ID         string       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	Name       SemesterName `gorm:"type:varchar(20);not null"                      json:"name"`
	Year       int          `gorm:"not null"                                       json:"year"`
	Code       SemesterCode `gorm:"type:varchar(2);not null"                       json:"code"`
	StartMonth string       `gorm:"type:varchar(10);not null"                      json:"start_month"`
	EndMonth   string       `gorm:"type:varchar(10);not null"                      json:"end_month"`
	VersionedModel
}

// TableName 指定表名
func (AcademicSemester) TableName() string { return "academic_semesters" }
