package service

import "testing"

func TestSanitizeText(t *testing.T) {
	t.Parallel()

	testCases := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "plain text untouched",
			in:   "Leaving from the Y parking lot, flexible on time",
			want: "Leaving from the Y parking lot, flexible on time",
		},
		{
			name: "email address removed",
			in:   "reach me at sam.doe+rides@example.com for details",
			want: "reach me at [removed] for details",
		},
		{
			name: "http url removed",
			in:   "my schedule is at https://example.com/sched?week=2",
			want: "my schedule is at [removed]",
		},
		{
			name: "www url removed",
			in:   "see www.example.org please",
			want: "see [removed] please",
		},
		{
			name: "phone number removed",
			in:   "text me 530-555-0134 anytime",
			want: "text me [removed] anytime",
		},
		{
			name: "formatted phone removed",
			in:   "call 530 555 0134!",
			want: "call [removed]!",
		},
		{
			name: "international phone removed",
			in:   "whatsapp +1 530 555 0134",
			want: "whatsapp [removed]",
		},
		{
			name: "whitespace collapsed and trimmed",
			in:   "  two   seats \n left  ",
			want: "two seats left",
		},
		{
			name: "short digit runs survive",
			in:   "leaving at 7:30, back by 5",
			want: "leaving at 7:30, back by 5",
		},
		{
			name: "empty input",
			in:   "",
			want: "",
		},
	}

	for _, tc := range testCases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := SanitizeText(tc.in); got != tc.want {
				t.Errorf("SanitizeText(%q) = %q, want %q", tc.in, got, tc.want)
			}
		})
	}
}
