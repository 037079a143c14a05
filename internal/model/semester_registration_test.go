package model

import "testing"

func TestRegistrationStatus_TransitionTable(t *testing.T) {
	allowed := map[[2]RegistrationStatus]bool{
		{StatusUpcoming, StatusUpcoming}: true,
		{StatusUpcoming, StatusOngoing}:  true,
		{StatusOngoing, StatusOngoing}:   true,
		{StatusOngoing, StatusEnded}:     true,
		{StatusEnded, StatusEnded}:       true,
	}

	for _, from := range RegistrationStatuses {
		for _, to := range RegistrationStatuses {
			want := allowed[[2]RegistrationStatus{from, to}]
			if got := from.CanTransitionTo(to); got != want {
				t.Errorf("%s → %s: 期望 %v，实际 %v", from, to, want, got)
			}
		}
	}
}

func TestRegistrationStatus_UnknownNeverTransitions(t *testing.T) {
	unknown := RegistrationStatus("PAUSED")
	for _, s := range RegistrationStatuses {
		if s.CanTransitionTo(unknown) || unknown.CanTransitionTo(s) {
			t.Errorf("未知状态不应参与跳转: %s ↔ %s", s, unknown)
		}
	}
}

func TestRegistrationStatus_Flags(t *testing.T) {
	if !StatusEnded.IsTerminal() || StatusOngoing.IsTerminal() {
		t.Error("只有 ENDED 是终态")
	}
	if !StatusUpcoming.IsInFlight() || !StatusOngoing.IsInFlight() || StatusEnded.IsInFlight() {
		t.Error("UPCOMING / ONGOING 才算进行中")
	}
}

func TestParseRegistrationStatus(t *testing.T) {
	if s, err := ParseRegistrationStatus("ONGOING"); err != nil || s != StatusOngoing {
		t.Errorf("期望 ONGOING，实际 %q, %v", s, err)
	}
	if _, err := ParseRegistrationStatus("ongoing"); err == nil {
		t.Error("状态区分大小写，小写应报错")
	}
}
