package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/graphwire"
	"github.com/rawbytedev/graphwire/pkg/frame"
)

func TestDefault(t *testing.T) {
	cfg, err := Parse(nil)
	require.NoError(t, err)
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Parse(nil) mismatch (-want +got):\n%s", diff)
	}
	opts, err := cfg.Options()
	require.NoError(t, err)
	require.Equal(t, graphwire.Options{}, opts)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphwire.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
simple: true
field_mode: index
max_elements: 1000
frame:
  enabled: true
  compression: zstd
  max_size: 4096
`), 0o600))

	cfg, err := LoadFile(path)
	require.NoError(t, err)
	want := &Config{
		Simple:      true,
		FieldMode:   "index",
		MaxElements: 1000,
		Frame:       FrameConfig{Enabled: true, Compression: "zstd", MaxSize: 4096},
	}
	if diff := cmp.Diff(want, cfg); diff != "" {
		t.Errorf("LoadFile mismatch (-want +got):\n%s", diff)
	}

	opts, err := cfg.Options()
	require.NoError(t, err)
	require.True(t, opts.Simple)
	require.Equal(t, graphwire.FieldsByIndex, opts.FieldMode)
	require.Equal(t, 1000, opts.MaxElements)

	fo, err := cfg.FrameOptions()
	require.NoError(t, err)
	require.Equal(t, frame.Options{Compression: frame.CompressionZstd, MaxSize: 4096}, fo)
}

func TestRejects(t *testing.T) {
	for name, doc := range map[string]string{
		"unknown key":      "simpel: true\n",
		"field mode":       "field_mode: position\n",
		"compression":      "frame:\n  compression: gzip\n",
		"negative limit":   "max_elements: -1\n",
		"wrong value type": "simple: maybe\n",
	} {
		t.Run(name, func(t *testing.T) {
			_, err := Parse([]byte(doc))
			require.Error(t, err)
		})
	}
}

func TestLoadMissingFile(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.ErrorIs(t, err, os.ErrNotExist)
}
