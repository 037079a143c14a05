package model

import "testing"

func TestMatchesSemesterCode(t *testing.T) {
	tests := []struct {
		name SemesterName
		code SemesterCode
		want bool
	}{
		{SemesterAutumn, SemesterCodeAutumn, true},
		{SemesterSummer, SemesterCodeSummer, true},
		{SemesterFall, SemesterCodeFall, true},
		{SemesterAutumn, SemesterCodeFall, false},
		{SemesterFall, SemesterCodeSummer, false},
		{"Winter", "04", false},
		{"Winter", SemesterCodeAutumn, false},
	}

	for _, tt := range tests {
		if got := MatchesSemesterCode(tt.name, tt.code); got != tt.want {
			t.Errorf("MatchesSemesterCode(%q, %q) = %v，期望 %v", tt.name, tt.code, got, tt.want)
		}
	}
}

func TestSemesterName_IsValid(t *testing.T) {
	for _, n := range SemesterNames {
		if !n.IsValid() {
			t.Errorf("%q 应为合法学期名称", n)
		}
	}
	if SemesterName("autumn").IsValid() {
		t.Error("学期名称区分大小写")
	}
	if SemesterCode("4").IsValid() {
		t.Error("未知代码不应合法")
	}
}

func TestIsMonth(t *testing.T) {
	if len(Months) != 12 {
		t.Fatalf("期望 12 个月份，实际=%d", len(Months))
	}
	for _, m := range Months {
		if !IsMonth(m) {
			t.Errorf("%q 应为合法月份", m)
		}
	}
	for _, bad := range []string{"", "january", "Jan", "Smarch"} {
		if IsMonth(bad) {
			t.Errorf("%q 不应为合法月份", bad)
		}
	}
}
