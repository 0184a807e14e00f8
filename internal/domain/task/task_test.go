package task

import "testing"

func TestParseStatus(t *testing.T) {
	tests := []struct {
		name   string
		raw    string
		want   Status
		wantOK bool
	}{
		{name: "pending", raw: "pending", want: StatusPending, wantOK: true},
		{name: "in-progress", raw: "in-progress", want: StatusInProgress, wantOK: true},
		{name: "completed", raw: "completed", want: StatusCompleted, wantOK: true},
		{name: "underscore alias", raw: "in_progress", want: StatusInProgress, wantOK: true},
		{name: "mixed case", raw: "Completed", want: StatusCompleted, wantOK: true},
		{name: "unknown", raw: "done", wantOK: false},
		{name: "empty", raw: "", wantOK: false},
		{name: "whitespace", raw: " pending", wantOK: false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, ok := ParseStatus(tc.raw)

			if ok != tc.wantOK {
				t.Fatalf("ParseStatus(%q) ok = %v, want %v", tc.raw, ok, tc.wantOK)
			}

			if ok && got != tc.want {
				t.Fatalf("ParseStatus(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestStatusIsValid(t *testing.T) {
	if !StatusPending.IsValid() || !StatusInProgress.IsValid() || !StatusCompleted.IsValid() {
		t.Fatalf("canonical statuses must be valid")
	}

	if Status("in_progress").IsValid() {
		t.Fatalf("raw alias must not be a valid stored status")
	}
}
