package application

import "testing"

func TestValidateInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		input      any
		wantFields []string
	}{
		{
			name:  "valid schedule",
			input: ScheduleInput{Title: "Йога", Date: "2024-03-05", StartTime: "09:00", EndTime: "10:00"},
		},
		{
			name:       "missing title and date",
			input:      ScheduleInput{},
			wantFields: []string{"title", "date"},
		},
		{
			name:       "impossible calendar day",
			input:      ScheduleInput{Title: "Йога", Date: "2024-02-30"},
			wantFields: []string{"date"},
		},
		{
			name:       "timestamp is not a plain date",
			input:      EventInput{Title: "Ретрит", Date: "2024-03-05T10:00:00Z"},
			wantFields: []string{"date"},
		},
		{
			name:       "clock out of range",
			input:      EventInput{Title: "Ретрит", Date: "2024-03-05", StartTime: "24:00", EndTime: "9:00"},
			wantFields: []string{"start_time", "end_time"},
		},
		{
			name:       "negative capacity",
			input:      ScheduleInput{Title: "Йога", Date: "2024-03-05", MaxParticipants: -1},
			wantFields: []string{"max_participants"},
		},
		{
			name:  "teacher request with phone only",
			input: TeacherRequestInput{FullName: "Мария", Phone: "+7 900 000-00-00"},
		},
		{
			name:       "teacher request with malformed email",
			input:      TeacherRequestInput{FullName: "Мария", Email: "maria"},
			wantFields: []string{"email"},
		},
	}

	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			vErr := validateInput(tc.input)
			if len(tc.wantFields) == 0 {
				if vErr.HasErrors() {
					t.Fatalf("expected no errors, got %#v", vErr.FieldErrors)
				}
				return
			}
			if len(vErr.FieldErrors) != len(tc.wantFields) {
				t.Fatalf("expected fields %v, got %#v", tc.wantFields, vErr.FieldErrors)
			}
			for _, field := range tc.wantFields {
				if vErr.FieldErrors[field] == "" {
					t.Fatalf("expected error for %s, got %#v", field, vErr.FieldErrors)
				}
			}
		})
	}
}

func TestValidateTimeRange(t *testing.T) {
	t.Parallel()

	cases := []struct {
		start, end string
		wantError  bool
	}{
		{"09:00", "10:00", false},
		{"10:00", "10:00", true},
		{"18:30", "09:15", true},
		{"", "09:00", false},
		{"bad", "09:00", false},
	}
	for _, tc := range cases {
		got := validateTimeRange(tc.start, tc.end).HasErrors()
		if got != tc.wantError {
			t.Fatalf("validateTimeRange(%q, %q) error = %v, want %v", tc.start, tc.end, got, tc.wantError)
		}
	}
}
