package services

import "testing"

func TestComputeInitials(t *testing.T) {
	cases := []struct {
		first string
		last  string
		want  string
	}{
		{"alice", "smith", "AS"},
		{"éva", "ødegaard", "ÉØ"},
		{"武", "田", "武田"},
		{"", "smith", "?S"},
		{"alice", "", "A?"},
	}
	for _, tc := range cases {
		if got := computeInitials(tc.first, tc.last); got != tc.want {
			t.Fatalf("initials(%q, %q): want=%s got=%s", tc.first, tc.last, got, tc.want)
		}
	}
}
