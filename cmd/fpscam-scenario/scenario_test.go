package main

import (
	"bytes"
	"flag"
	"os"
	"path/filepath"
	"testing"

	"github.com/Carmen-Shannon/oxy-fpscam/engine/scenario"
	"github.com/Carmen-Shannon/oxy-fpscam/engine/tracking"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func script(t *testing.T, dir, name, src string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(src), 0o644))
	return path
}

func TestParseSettings(t *testing.T) {
	s, err := parseSettings(flag.NewFlagSet("scenario", flag.ContinueOnError), []string{"-fps", "120", "one.lua"})
	require.NoError(t, err)
	assert.Equal(t, 120.0, s.FrameRate)
	assert.Equal(t, "warn", s.LogLevel)
	assert.Equal(t, []string{"one.lua"}, s.Scripts)
}

func TestRun_PassAndRecord(t *testing.T) {
	dir := t.TempDir()
	path := script(t, dir, "idle.lua", `return Scenario.new("idle"):hold(1):expect("over_shoulder")`)
	record := filepath.Join(dir, "traces")

	var out, errOut bytes.Buffer
	err := run(settings{FrameRate: 90, LogLevel: "warn", LogFormat: "text", Record: record, Scripts: []string{path}}, &out, &errOut)
	require.NoError(t, err)
	assert.Contains(t, out.String(), "PASS idle")

	trace, err := tracking.OpenTrace(filepath.Join(record, "idle.jsonl"))
	require.NoError(t, err)
	defer trace.Close()
	assert.Equal(t, "idle", trace.Header().Source)
	_, err = trace.Sample(0)
	assert.NoError(t, err)
}

func TestRun_Failures(t *testing.T) {
	dir := t.TempDir()
	failing := script(t, dir, "wrong.lua", `return Scenario.new("wrong"):expect("first_person")`)
	broken := script(t, dir, "broken.lua", `return 42`)

	var out bytes.Buffer
	err := run(settings{FrameRate: 90, LogLevel: "warn", LogFormat: "text", Scripts: []string{failing}}, &out, &out)
	assert.ErrorIs(t, err, errFailed)
	assert.Contains(t, out.String(), "FAIL wrong")

	err = run(settings{FrameRate: 90, LogLevel: "warn", LogFormat: "text", Scripts: []string{broken}}, &out, &out)
	assert.ErrorIs(t, err, scenario.ErrInvalidScenario)

	assert.Error(t, run(settings{}, &out, &out))
}
