package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"

	"github.com/rawbytedev/graphwire"
)

func runCLI(t *testing.T, stdin []byte, args ...string) ([]byte, string, error) {
	t.Helper()
	var stdout, stderr bytes.Buffer
	err := run(args, bytes.NewReader(stdin), &stdout, &stderr)
	return stdout.Bytes(), stderr.String(), err
}

func jsonOf(t *testing.T, data []byte) any {
	t.Helper()
	var v any
	require.NoError(t, json.Unmarshal(data, &v))
	return v
}

func TestEncodeDecodeJSON(t *testing.T) {
	input := []byte(`{"name":"x","tags":["a","b"],"count":42,"ratio":0.5,"ok":true,"none":null}`)
	encoded, _, err := runCLI(t, input, "encode")
	require.NoError(t, err)

	var got any
	require.NoError(t, graphwire.Unmarshal(encoded, &got, graphwire.Options{}))

	decoded, _, err := runCLI(t, encoded, "decode")
	require.NoError(t, err)
	if diff := cmp.Diff(jsonOf(t, input), jsonOf(t, decoded)); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestEncodeSortsKeys(t *testing.T) {
	encoded, _, err := runCLI(t, []byte(`{"b":1,"a":2}`), "encode")
	require.NoError(t, err)
	require.Equal(t, `m2{ua2ub1}`, string(encoded))
}

func TestFramedCompressedRoundTrip(t *testing.T) {
	input := []byte(`[` + strings.Repeat(`"repeated text",`, 50) + `"end"]`)
	encoded, _, err := runCLI(t, input, "encode", "--frame", "--compression", "zstd")
	require.NoError(t, err)
	require.Equal(t, "GW", string(encoded[:2]))

	decoded, _, err := runCLI(t, encoded, "decode", "--frame")
	require.NoError(t, err)
	if diff := cmp.Diff(jsonOf(t, input), jsonOf(t, decoded)); diff != "" {
		t.Errorf("framed round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestCBORRoundTrip(t *testing.T) {
	cborIn, err := cborEnc.Marshal(map[string]any{"k": []any{uint64(1), "two", []byte{3}}})
	require.NoError(t, err)
	encoded, _, err := runCLI(t, cborIn, "encode", "--from", "cbor")
	require.NoError(t, err)
	cborOut, _, err := runCLI(t, encoded, "decode", "--to", "cbor")
	require.NoError(t, err)

	var want, got any
	require.NoError(t, cborDec.Unmarshal(cborIn, &want))
	require.NoError(t, cborDec.Unmarshal(cborOut, &got))
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("cbor round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestDiag(t *testing.T) {
	out, _, err := runCLI(t, []byte(`a3{m{}r1;m{}}`), "diag")
	require.NoError(t, err)
	require.Equal(t, "[{}, r1, {}]\n", string(out))
}

func TestDecodeCycleToJSONFails(t *testing.T) {
	self := []any{nil}
	self[0] = self
	data, err := graphwire.Marshal(self, graphwire.Options{})
	require.NoError(t, err)
	_, _, err = runCLI(t, data, "decode")
	require.ErrorContains(t, err, "cycle")
}

func TestConfigAndDebug(t *testing.T) {
	path := filepath.Join(t.TempDir(), "graphwire.yaml")
	require.NoError(t, os.WriteFile(path, []byte("frame:\n  enabled: true\n  compression: lz4\n"), 0o600))

	encoded, stderr, err := runCLI(t, []byte(`[1,2,3]`), "encode", "--config", path, "--debug")
	require.NoError(t, err)
	require.Equal(t, "GW", string(encoded[:2]))
	require.Contains(t, stderr, "level=DEBUG")

	decoded, _, err := runCLI(t, encoded, "decode", "--config", path)
	require.NoError(t, err)
	require.Equal(t, []any{1.0, 2.0, 3.0}, jsonOf(t, decoded))
}

func TestErrors(t *testing.T) {
	_, _, err := runCLI(t, nil)
	require.Error(t, err)
	_, _, err = runCLI(t, []byte("x"), "explode")
	require.ErrorContains(t, err, "unknown command")
	_, _, err = runCLI(t, nil, "encode")
	require.ErrorContains(t, err, "empty input")
	_, _, err = runCLI(t, []byte("r5;"), "decode")
	require.ErrorIs(t, err, graphwire.ErrUnresolvedReference)
	_, _, err = runCLI(t, []byte("a99999999999999{"), "decode")
	require.ErrorIs(t, err, graphwire.ErrMalformedStream)
	_, _, err = runCLI(t, []byte("1"), "encode", "--compression", "gzip")
	require.Error(t, err)
}

func TestVersion(t *testing.T) {
	out, _, err := runCLI(t, nil, "version")
	require.NoError(t, err)
	require.Equal(t, "graphwire dev\n", string(out))
}
