package metrics

import "testing"

func TestCanonicalPath(t *testing.T) {
	cases := map[string]string{
		"/":                      "/",
		"":                       "/",
		"/healthz":               "/healthz",
		"/sightings/42":          "/sightings/:id",
		"/profiles/7/picture":    "/profiles/:id/picture",
		"/notifications/19/read": "/notifications/:id/read",
		"/leaderboard/top":       "/leaderboard/top",
	}
	for raw, want := range cases {
		if got := canonicalPath(raw); got != want {
			t.Errorf("canonicalPath(%q) = %q, want %q", raw, got, want)
		}
	}
}
