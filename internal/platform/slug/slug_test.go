package slug_test

import (
	"strings"
	"testing"

	"algotimer/internal/platform/slug"
)

func TestMake(t *testing.T) {
	t.Parallel()
	cases := []struct {
		in   string
		want string
	}{
		{in: "Two Sum", want: "two-sum"},
		{in: "  ", want: "untitled"},
		{in: "https://leetcode.com/problems/two-sum/", want: "leetcode-com-problems-two-sum"},
		{in: "www.example.org/LRU Cache (medium)", want: "example-org-lru-cache-medium"},
		{in: "!!!", want: "untitled"},
	}
	for _, tc := range cases {
		if got := slug.Make(tc.in); got != tc.want {
			t.Fatalf("Make(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestMakeTruncates(t *testing.T) {
	t.Parallel()
	got := slug.Make(strings.Repeat("ab ", 50))
	if len(got) > 60 {
		t.Fatalf("expected at most 60 chars, got %d (%s)", len(got), got)
	}
	if strings.HasSuffix(got, "-") {
		t.Fatalf("slug must not end with a dash: %s", got)
	}
}
