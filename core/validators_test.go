package core

import "testing"

func TestCleanString(t *testing.T) {
	tests := []struct {
		name  string
		s     string
		lower bool
		want  string
	}{
		{name: "blank", s: " \t\n", want: ""},
		{name: "subject", s: "  Maths ", want: "Maths"},
		{name: "lowered", s: " Grade 5 A", lower: true, want: "grade 5 a"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := CleanString(tt.s, tt.lower); got != tt.want {
				t.Errorf("CleanString() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestCleanID(t *testing.T) {
	if got := CleanID(" 9B2A1A4E-0A43-4C43-9D0E-7D1F7C0B9A01\n"); got != "9b2a1a4e-0a43-4c43-9d0e-7d1f7c0b9a01" {
		t.Errorf("CleanID() = %q", got)
	}
}
