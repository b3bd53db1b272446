package models

import "testing"

func TestNormalizeBreakType(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want BreakType
	}{
		{name: "Current coffee passes through", raw: "coffee", want: BreakCoffee},
		{name: "Current wc passes through", raw: "wc", want: BreakWC},
		{name: "Current lunch passes through", raw: "lunch", want: BreakLunch},
		{name: "Legacy coffee_break", raw: "coffee_break", want: BreakCoffee},
		{name: "Legacy toilet", raw: "toilet", want: BreakWC},
		{name: "Legacy restroom", raw: "restroom", want: BreakWC},
		{name: "Legacy bathroom", raw: "bathroom", want: BreakWC},
		{name: "Legacy lunch_break", raw: "lunch_break", want: BreakLunch},
		{name: "Legacy meal", raw: "meal", want: BreakLunch},
		{name: "Unknown value lands in micro pool", raw: "smoke", want: BreakCoffee},
		{name: "Empty value lands in micro pool", raw: "", want: BreakCoffee},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := NormalizeBreakType(tt.raw)
			if got != tt.want {
				t.Errorf("NormalizeBreakType(%q) = %v, want %v", tt.raw, got, tt.want)
			}
		})
	}
}

func TestBreakTypeIsMicro(t *testing.T) {
	if !BreakCoffee.IsMicro() || !BreakWC.IsMicro() {
		t.Error("coffee and wc must draw from the micro pool")
	}
	if BreakLunch.IsMicro() {
		t.Error("lunch must not draw from the micro pool")
	}
}

func TestBreakStatusIsTerminal(t *testing.T) {
	for _, s := range []BreakStatus{BreakPending, BreakApproved, BreakActive} {
		if s.IsTerminal() {
			t.Errorf("%s must not be terminal", s)
		}
	}
	for _, s := range []BreakStatus{BreakDenied, BreakCompleted} {
		if !s.IsTerminal() {
			t.Errorf("%s must be terminal", s)
		}
	}
}
