package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("APP_ADDR", "")
	t.Setenv("ATTENDANCE_TIMEZONE", "")

	cfg := Load()
	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "Asia/Kolkata", cfg.Attendance.Timezone)
	assert.Equal(t, "08:45", cfg.Attendance.EarliestEmployee)
	assert.Equal(t, "08:30", cfg.Attendance.EarliestDefault)
	assert.Equal(t, "13:00", cfg.Attendance.HalfDay)
}

func TestLoadFileOverlaysAttendance(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "hrdesk.yaml")
	require.NoError(t, os.WriteFile(path, []byte("attendance:\n  late: \"09:45\"\n  timezone: UTC\n"), 0o600))
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadFile()
	require.NoError(t, err)
	assert.Equal(t, "09:45", cfg.Attendance.Late)
	assert.Equal(t, "UTC", cfg.Attendance.Timezone)
	assert.Equal(t, "09:00", cfg.Attendance.OnTime, "unset keys keep defaults")
}

func TestLoadFileMissing(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "missing.yaml"))
	_, err := LoadFile()
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	cfg := Load()
	cfg.DatabaseURL = ""
	require.Error(t, cfg.Validate())

	cfg.DatabaseURL = "postgres://localhost/hrdesk"
	require.NoError(t, cfg.Validate())

	cfg.Environment = "production"
	cfg.JWTSecret = ""
	require.Error(t, cfg.Validate())

	cfg.JWTSecret = "s3cret"
	cfg.DataEncryptionKey = "0123456789abcdef0123456789abcdef"
	cfg.RunSeed = false
	require.NoError(t, cfg.Validate())

	cfg.Attendance.Timezone = "Mars/Olympus"
	require.Error(t, cfg.Validate())
}
