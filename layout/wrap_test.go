package layout

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contents(lines []TextLine) []string {
	out := make([]string, len(lines))
	for i, ln := range lines {
		out[i] = ln.Content
	}
	return out
}

func TestWrapText(t *testing.T) {
	// 10pt × 0.2 → 每个字符 2mm
	font := Font{Size: 10, Weight: WeightNormal}

	cases := []struct {
		name    string
		content string
		width   float64
		want    []string
	}{
		{"fits", "alpha beta", 40, []string{"alpha beta"}},
		{"breaks at spaces", "alpha beta gamma", 22, []string{"alpha beta", "gamma"}},
		{"collapses whitespace", "alpha    beta\tgamma", 100, []string{"alpha beta gamma"}},
		{"explicit newline", "alpha\nbeta", 100, []string{"alpha", "beta"}},
		{"blank paragraph", "alpha\n\nbeta", 100, []string{"alpha", "", "beta"}},
		{"carriage returns", "alpha\r\nbeta", 100, []string{"alpha", "beta"}},
		{"splits long word", "abcdefghij", 8, []string{"abcd", "efgh", "ij"}},
		{"split tail keeps accumulating", "abcdefghij k", 8, []string{"abcd", "efgh", "ij k"}},
		{"no limit", "alpha beta gamma delta", 0, []string{"alpha beta gamma delta"}},
		{"empty", "", 100, []string{""}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			lines, err := WrapText(ts, tc.content, tc.width, font)
			require.NoError(t, err)
			assert.Equal(t, tc.want, contents(lines))
			if tc.width > 0 {
				for _, ln := range lines {
					assert.LessOrEqual(t, ln.Width, tc.width)
				}
			}
		})
	}
}

func TestWrapTextMeasuresWithFont(t *testing.T) {
	content := "one two three four five six"
	regular, err := WrapText(ts, content, 60, Font{Size: 10, Weight: WeightNormal})
	require.NoError(t, err)
	bigger, err := WrapText(ts, content, 60, Font{Size: 20, Weight: WeightBold})
	require.NoError(t, err)
	assert.Greater(t, len(bigger), len(regular))
}

func TestWrapTextErrors(t *testing.T) {
	_, err := WrapText(nil, "x", 10, Font{Size: 10})
	assert.ErrorIs(t, err, ErrNoTypesetter)

	_, err = WrapText(stubTypesetter{err: assert.AnError}, "x", 10, Font{Size: 10})
	assert.ErrorIs(t, err, assert.AnError)
}
