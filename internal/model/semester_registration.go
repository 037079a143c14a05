package model

import (
	"fmt"
	"time"
)

// RegistrationStatus 学期注册状态
//
// 状态流转（只能单步前进）：
//
//	UPCOMING -> ONGOING -> ENDED
//
// ENDED 为终态，不允许任何出边。
type RegistrationStatus string

const (
	StatusUpcoming RegistrationStatus = "UPCOMING"
	StatusOngoing  RegistrationStatus = "ONGOING"
	StatusEnded    RegistrationStatus = "ENDED"
)

// InFlightStatuses 进行中（未结束）的状态；全表同一时刻至多一条
var InFlightStatuses = []RegistrationStatus{StatusUpcoming, StatusOngoing}

// RegistrationStatuses 全部状态，按流转顺序排列
var RegistrationStatuses = []RegistrationStatus{StatusUpcoming, StatusOngoing, StatusEnded}

func (s RegistrationStatus) String() string { return string(s) }

// rank 状态在全序 UPCOMING < ONGOING < ENDED 中的位置；未知状态返回 -1
func (s RegistrationStatus) rank() int {
	for i, st := range RegistrationStatuses {
		if st == s {
			return i
		}
	}
	return -1
}

// IsValid 是否为已知状态
func (s RegistrationStatus) IsValid() bool { return s.rank() >= 0 }

// IsTerminal 是否为终态
func (s RegistrationStatus) IsTerminal() bool { return s == StatusEnded }

// IsInFlight 是否为 UPCOMING / ONGOING
func (s RegistrationStatus) IsInFlight() bool {
	return s == StatusUpcoming || s == StatusOngoing
}

// CanTransitionTo 状态跳转是否合法：同状态允许，否则只能前进一步
func (s RegistrationStatus) CanTransitionTo(target RegistrationStatus) bool {
	from, to := s.rank(), target.rank()
	if from < 0 || to < 0 {
		return false
	}
	if from == to {
		return true
	}
	return !s.IsTerminal() && to == from+1
}

// ParseRegistrationStatus 解析状态字符串
func ParseRegistrationStatus(v string) (RegistrationStatus, error) {
	s := RegistrationStatus(v)
	if !s.IsValid() {
		return "", fmt.Errorf("invalid registration status %q", v)
	}
	return s, nil
}

// SemesterRegistration 学期注册表 — 对应 semester_registrations
// academic_semester_id 唯一（一个学期至多一次注册）
type SemesterRegistration struct {
	ID                 string             `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"id"`
	AcademicSemesterID string             `gorm:"type:uuid;not null"                             json:"academic_semester_id"`
	AcademicSemester   *AcademicSemester  `gorm:"foreignKey:AcademicSemesterID;references:ID"    json:"academic_semester,omitempty"`
	Status             RegistrationStatus `gorm:"type:varchar(10);not null;default:'UPCOMING'"   json:"status"`
	StartDate          time.Time          `gorm:"not null"                                       json:"start_date"`
	EndDate            time.Time          `gorm:"not null"                                       json:"end_date"`
	MinCredit          int                `gorm:"not null;default:3"                             json:"min_credit"`
	MaxCredit          int                `gorm:"not null;default:15"                            json:"max_credit"`
	VersionedModel
}

// TableName 指定表名
func (SemesterRegistration) TableName() string { return "semester_registrations" }

// 默认学分范围
const (
	DefaultMinCredit = 3
	DefaultMaxCredit = 15
)
