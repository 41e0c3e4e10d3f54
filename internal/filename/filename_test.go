package filename

import (
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSanitize(t *testing.T) {
	for in, want := range map[string]string{
		"firefox":                 "firefox",
		"  Mozilla Firefox  ":     "Mozilla_Firefox",
		"/usr/bin/foot":           "usr_bin_foot",
		"___leading":              "leading",
		" / /x":                   "x",
		"org.gnome.Nautilus":      "org.gnome.Nautilus",
		"trailing_":               "trailing_",
		"":                        "",
		"_\tword":                 "word",
		"Spotify Premium / Album": "Spotify_Premium___Album",
	} {
		require.Equal(t, want, Sanitize(in), "input %q", in)
	}
}

func TestSanitizeIdempotent(t *testing.T) {
	for _, s := range []string{
		"", " ", "_", "a b", "/a/b/", " _ _ x", "_\t_\tb", " _x", "x ",
		"résumé.pdf - Okular", "__init__", "a\nb",
	} {
		once := Sanitize(s)
		require.Equal(t, once, Sanitize(once), "input %q", s)
	}
}

func FuzzSanitizeIdempotent(f *testing.F) {
	f.Add("Mozilla Firefox")
	f.Add("_ /x")
	f.Add("_\t_\tb")
	f.Fuzz(func(t *testing.T, s string) {
		once := Sanitize(s)
		if twice := Sanitize(once); twice != once {
			t.Fatalf("Sanitize not idempotent for %q: %q -> %q", s, once, twice)
		}
		if strings.ContainsAny(once, "/ ") {
			t.Fatalf("Sanitize(%q) = %q still has separators", s, once)
		}
	})
}

var namePattern = regexp.MustCompile(`^[^/ ]+-\d{8}-\d{6}\.png$`)

func TestBuild(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 7, 8, 9, 0, time.UTC)

	require.Equal(t, "firefox-20240305-070809.png", Build("firefox", ts))
	require.Equal(t, "Mozilla_Firefox-20240305-070809.png", Build(" Mozilla Firefox ", ts))
	require.Equal(t, "screenshot-20240305-070809.png", Build("", ts))
	require.Equal(t, "screenshot-20240305-070809.png", Build(" / ", ts))

	for _, label := range []string{"a", "a b/c", "___", "Terminal", "x y z"} {
		name := Build(label, ts)
		require.Regexp(t, namePattern, name)
		require.True(t, strings.HasSuffix(name, Extension))
	}
}

func TestBuildSameSecondCollides(t *testing.T) {
	ts := time.Date(2024, time.March, 5, 7, 8, 9, 0, time.UTC)
	require.Equal(t, Build("foot", ts), Build("foot", ts.Add(500*time.Millisecond)))
}
