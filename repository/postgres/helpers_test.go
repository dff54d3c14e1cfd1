package postgres

import "testing"

func TestEscapeLike(t *testing.T) {
	cases := []struct {
		in, want string
	}{
		{"asha", "asha"},
		{"", ""},
		{"100%", `100\%`},
		{"a_b", `a\_b`},
		{`c:\temp`, `c:\\temp`},
		{"%_%", `\%\_\%`},
	}
	for _, tc := range cases {
		if got := escapeLike(tc.in); got != tc.want {
			t.Fatalf("escapeLike(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestTagsRoundTrip(t *testing.T) {
	if marshalTags(nil) != nil || marshalTags([]string{}) != nil {
		t.Fatalf("empty tags must marshal to NULL")
	}
	data := marshalTags([]string{"hot", "nri"})
	tags := unmarshalTags(data)
	if len(tags) != 2 || tags[0] != "hot" || tags[1] != "nri" {
		t.Fatalf("unexpected round trip: %v", tags)
	}
	if unmarshalTags(nil) != nil {
		t.Fatalf("NULL column must unmarshal to nil")
	}
}
