package ticket

import "testing"

func TestParsePriority(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in     string
		want   Priority
		wantOK bool
	}{
		{"low", PriorityLow, true},
		{"medium", PriorityMedium, true},
		{"high", PriorityHigh, true},
		{"HIGH", PriorityHigh, true},
		{"MeDiUm", PriorityMedium, true},
		{"  low  ", PriorityLow, true},
		{"urgent", "", false},
		{"", "", false},
		{"lowish", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			t.Parallel()

			got, ok := ParsePriority(tt.in)
			if ok != tt.wantOK {
				t.Fatalf("ParsePriority(%q) ok = %v, want %v", tt.in, ok, tt.wantOK)
			}
			if got != tt.want {
				t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestUpdate_IsZero(t *testing.T) {
	t.Parallel()

	if !(Update{}).IsZero() {
		t.Error("empty Update should be zero")
	}

	st := StatusAnalyzing
	if (Update{Status: &st}).IsZero() {
		t.Error("Update with status should not be zero")
	}

	skills := []string{}
	if (Update{RelatedSkills: &skills}).IsZero() {
		t.Error("Update with empty-but-set skills should not be zero")
	}
}
