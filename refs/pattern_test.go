package refs

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPatternMatch(t *testing.T) {
	tcs := []struct {
		name       string
		kind       PatternKind
		text       string
		ignoreCase bool
		input      string
		want       bool
	}{
		{"exact-hit", KindExact, "main", false, "main", true},
		{"exact-miss", KindExact, "main", false, "Main", false},
		{"exact-icase", KindExact, "Main", true, "main", true},
		{"glob-hit", KindGlob, "release-*", false, "release-1.2", true},
		{"glob-miss", KindGlob, "release-*", false, "hotfix-1.2", false},
		{"glob-icase", KindGlob, "RELEASE-*", true, "release-1.2", true},
		{"substring-hit", KindSubstring, "ease", false, "release", true},
		{"substring-all", KindSubstring, "", false, "anything", true},
		{"regex-hit", KindRegexp, "^rel.*[0-9]$", false, "release-2", true},
		{"regex-icase", KindRegexp, "^REL", true, "release-2", true},
	}

	for _, tc := range tcs {
		t.Run(tc.name, func(t *testing.T) {
			p, err := NewPattern(tc.kind, tc.text, tc.ignoreCase)
			require.Nil(t, err)
			require.Equal(t, tc.want, p.Match(tc.input))
		})
	}
}

func TestPatternCompileErrors(t *testing.T) {
	_, err := NewPattern(KindRegexp, "*invalid", false)
	require.NotNil(t, err)

	_, err = NewPattern(KindGlob, "bad[glob", false)
	require.NotNil(t, err)
}

func TestPatternIsExact(t *testing.T) {
	require.True(t, Exact("main").IsExact())
	require.False(t, Substring("main").IsExact())

	icase, err := NewPattern(KindExact, "main", true)
	require.Nil(t, err)
	require.False(t, icase.IsExact())
}
