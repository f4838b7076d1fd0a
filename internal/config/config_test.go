package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoundTrip(t *testing.T) {
	cfg := Default()
	cfg.Validation.Lenient = true
	cfg.Validation.Tolerance = "12.50"
	cfg.Output.Separator = ";"

	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, cfg))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)
}

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.False(t, cfg.Validation.Lenient)
	assert.True(t, cfg.Validation.FeeAware)
	assert.Equal(t, "30.00", cfg.Validation.Tolerance)
	assert.Equal(t, ",", cfg.Output.Separator)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoad_PartialKeepsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("validation:\n  lenient: true\n"), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Validation.Lenient)
	assert.True(t, cfg.Validation.FeeAware)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadNotFound(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nonexistent.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestLoad_BadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, os.WriteFile(path, []byte("validation: [\n"), 0o644))
	_, err := Load(path)
	assert.ErrorContains(t, err, "parsing config")
}

func TestResolve(t *testing.T) {
	chdir(t, t.TempDir())

	cfg, err := Resolve("")
	require.NoError(t, err)
	assert.Equal(t, Default(), cfg)

	require.NoError(t, os.WriteFile(FileName, []byte("server:\n  addr: \":9000\"\n"), 0o644))
	cfg, err = Resolve("")
	require.NoError(t, err)
	assert.Equal(t, ":9000", cfg.Server.Addr)

	_, err = Resolve("missing.yaml")
	assert.ErrorIs(t, err, os.ErrNotExist)
}

func TestYAMLFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), FileName)
	require.NoError(t, Save(path, Default()))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	contents := string(data)

	assert.Contains(t, contents, "fee_aware: true")
	assert.Contains(t, contents, `tolerance: "30.00"`)
	assert.Contains(t, contents, "format: console")
}

func TestApplyEnv(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvLenient, "true")
	t.Setenv(EnvFeeAware, "false")
	t.Setenv(EnvTolerance, "5")
	t.Setenv(EnvSeparator, "tab")
	t.Setenv(EnvLogLevel, "debug")
	t.Setenv(EnvLogFormat, "json")
	t.Setenv(EnvAddr, ":9999")

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(""))

	assert.True(t, cfg.Validation.Lenient)
	assert.False(t, cfg.Validation.FeeAware)
	assert.Equal(t, "5", cfg.Validation.Tolerance)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":9999", cfg.Server.Addr)

	sep, err := cfg.Separator()
	require.NoError(t, err)
	assert.Equal(t, '\t', sep)
}

func TestApplyEnv_InvalidBool(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvLenient, "sometimes")
	err := Default().ApplyEnv("")
	assert.ErrorContains(t, err, "invalid STMTPARSE_LENIENT")
}

func TestApplyEnv_File(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv(EnvAddr, ":7000")
	// Only unset variables are filled from the file.
	os.Unsetenv(EnvLogFormat)
	t.Cleanup(func() { os.Unsetenv(EnvLogFormat) })

	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("STMTPARSE_LOG_FORMAT=json\nSTMTPARSE_ADDR=:6000\n"), 0o644))

	cfg := Default()
	require.NoError(t, cfg.ApplyEnv(path))
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, ":7000", cfg.Server.Addr)
}

func TestApplyEnv_MissingFile(t *testing.T) {
	err := Default().ApplyEnv(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "loading env file")
}

func TestValidationOptions(t *testing.T) {
	cfg := Default()
	cfg.Validation.Lenient = true
	cfg.Validation.Tolerance = "12.5"

	opts, err := cfg.ValidationOptions()
	require.NoError(t, err)
	assert.True(t, opts.Lenient)
	assert.True(t, opts.FeeAware)
	assert.Equal(t, "12.50", opts.Tolerance.StringFixed(2))

	cfg.Validation.Tolerance = ""
	opts, err = cfg.ValidationOptions()
	require.NoError(t, err)
	assert.Equal(t, "30.00", opts.Tolerance.StringFixed(2))

	cfg.Validation.Tolerance = "lots"
	_, err = cfg.ValidationOptions()
	assert.ErrorContains(t, err, "parsing tolerance")

	cfg.Validation.Tolerance = "-1"
	_, err = cfg.ValidationOptions()
	assert.ErrorContains(t, err, "must not be negative")
}

func TestApplyEnv_MalformedDotEnv(t *testing.T) {
	chdir(t, t.TempDir())
	require.NoError(t, os.WriteFile(".env", []byte("STMTPARSE-ADDR=:6000\n"), 0o644))

	err := Default().ApplyEnv("")
	assert.ErrorContains(t, err, "loading .env")
}

func TestApplyEnv_NoDotEnv(t *testing.T) {
	chdir(t, t.TempDir())
	assert.NoError(t, Default().ApplyEnv(""))
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(old) })
}
