package helper

import "testing"

func TestSecondsToMinutes(t *testing.T) {
	tests := []struct {
		seconds float64
		want    string
	}{
		{91.534, "01:31.534"},
		{60.0, "01:00.000"},
		{0, "-"},
		{-1, "-"},
	}
	for _, tt := range tests {
		if got := SecondsToMinutes(tt.seconds); got != tt.want {
			t.Errorf("SecondsToMinutes(%f) = %s, want %s", tt.seconds, got, tt.want)
		}
	}
}

func TestSignedDiff(t *testing.T) {
	tests := []struct {
		delta float64
		unit  string
		want  string
	}{
		{-0.5, "s", "-0.500s"},
		{4.5, "", "+4.500"},
		{0, "s", "-"},
	}
	for _, tt := range tests {
		if got := SignedDiff(tt.delta, tt.unit); got != tt.want {
			t.Errorf("SignedDiff(%f, %q) = %s, want %s", tt.delta, tt.unit, got, tt.want)
		}
	}
}

func TestToSpeed(t *testing.T) {
	if got := ToSpeed(324.5); got != "324.5 km/h" {
		t.Errorf("ToSpeed = %s", got)
	}
	if got := ToSpeed(0); got != "-" {
		t.Errorf("ToSpeed(0) = %s", got)
	}
}

func TestGetDriverCodeName(t *testing.T) {
	tests := []struct {
		name string
		want string
	}{
		{"Fernando Alonso", "FAL"},
		{"Carlos Sainz", "CSA"},
		{"Zhou", "ZHO"},
		{"Bo", "BBO"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := GetDriverCodeName(tt.name); got != tt.want {
			t.Errorf("GetDriverCodeName(%q) = %s, want %s", tt.name, got, tt.want)
		}
	}
}
