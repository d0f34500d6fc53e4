package backend

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	canvasrenderer "github.com/ByLCY/vitae/renderer/canvas"
	fpdfrenderer "github.com/ByLCY/vitae/renderer/fpdf"
)

func TestNew(t *testing.T) {
	b, err := New("")
	require.NoError(t, err)
	assert.IsType(t, &fpdfrenderer.Renderer{}, b)

	b, err = New(" Canvas ")
	require.NoError(t, err)
	assert.IsType(t, &canvasrenderer.Renderer{}, b)

	_, err = New("latex")
	assert.ErrorContains(t, err, "latex")
}

func TestSetReusesBackends(t *testing.T) {
	s := NewSet()
	a, err := s.Get(FPDF)
	require.NoError(t, err)
	b, err := s.Get("")
	require.NoError(t, err)
	assert.Same(t, a, b)

	_, err = s.Get("nope")
	assert.Error(t, err)
	assert.Equal(t, []string{Canvas, FPDF}, Names())
}

func TestCheck(t *testing.T) {
	for _, name := range []string{"", "fpdf", " Canvas "} {
		assert.NoError(t, Check(name), name)
	}
	err := Check("latex")
	assert.ErrorContains(t, err, "latex")
	assert.ErrorContains(t, err, "canvas, fpdf")
}
