package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/zooyer/dxf2elmt/convert"
)

const sample = `
spline_step: 40
px_per_mm: 4
dynamic_text: true
serve:
  addr: 127.0.0.1:9000
  request_logging: false
  max_files: 4
`

func TestParse(t *testing.T) {
	file, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	opts := convert.DefaultOptions()
	file.Apply(&opts, nil)
	assert.Equal(t, 40, opts.SplineStep)
	assert.Equal(t, 4.0, opts.PixelsPerMM)
	assert.True(t, opts.DynamicText)
	assert.False(t, opts.Info)

	assert.Equal(t, "127.0.0.1:9000", file.ServeAddr())
	assert.False(t, file.RequestLogging())
	assert.Equal(t, 4, file.MaxFiles())
}

func TestApply_FlagsWin(t *testing.T) {
	file, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	opts := convert.DefaultOptions()
	opts.SplineStep = 7
	file.Apply(&opts, func(name string) bool { return name == FlagSplineStep })
	assert.Equal(t, 7, opts.SplineStep)
	assert.Equal(t, 4.0, opts.PixelsPerMM)
}

func TestParse_Empty(t *testing.T) {
	file, err := Parse(strings.NewReader(""))
	require.NoError(t, err)

	opts := convert.DefaultOptions()
	file.Apply(&opts, nil)
	assert.Equal(t, convert.DefaultOptions(), opts)
	assert.Equal(t, DefaultAddr, file.ServeAddr())
	assert.True(t, file.RequestLogging())
	assert.Equal(t, DefaultMaxFiles, file.MaxFiles())
}

func TestParse_UnknownField(t *testing.T) {
	_, err := Parse(strings.NewReader("spline_steps: 3\n"))
	assert.ErrorIs(t, err, convert.ErrInvalidConfiguration)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dxf2elmt.yaml")
	require.NoError(t, os.WriteFile(path, []byte("px_per_mm: 1.5\n"), 0644))

	file, err := Load(path)
	require.NoError(t, err)
	require.NotNil(t, file.PixelsPerMM)
	assert.Equal(t, 1.5, *file.PixelsPerMM)

	_, err = Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestNilFile(t *testing.T) {
	var file *File
	opts := convert.DefaultOptions()
	file.Apply(&opts, nil)
	assert.Equal(t, convert.DefaultOptions(), opts)
	assert.Equal(t, DefaultAddr, file.ServeAddr())
}
