package config

import (
	"os"
	"testing"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "chart")
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("DB_NAME", "starchart")
}

func TestLoadDefaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 28, cfg.IndividualLineCount)
	assert.Equal(t, []int{1, 5, 11, 16, 21, 25}, cfg.CmpHighlightedRows)
	assert.Equal(t, []int{5, 10, 15, 20, 24}, cfg.CmpThickBorderedRows)
	assert.Equal(t, 16, cfg.GroupCutoffRow)
	assert.Equal(t, 5*time.Second, cfg.WeiboTimeout)
	assert.Equal(t, "file", cfg.StorageBackend)
	assert.Equal(t, "host=localhost user=chart password=secret dbname=starchart port=5432 sslmode=disable", cfg.DSN())
}

func TestLoadRequiresDB(t *testing.T) {
	setRequired(t)
	require.NoError(t, os.Unsetenv("DB_HOST"))
	_, err := Load()
	assert.Error(t, err)
}

func TestValidateStorageBackend(t *testing.T) {
	setRequired(t)
	t.Setenv("STORAGE_BACKEND", "s3")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("S3_URL", "https://s3.example.com")
	t.Setenv("S3_BUCKET", "charts")
	t.Setenv("S3_KEY", "k")
	t.Setenv("S3_SECRET", "s")
	_, err = Load()
	assert.NoError(t, err)

	t.Setenv("STORAGE_BACKEND", "ftp")
	_, err = Load()
	assert.Error(t, err)
}

func TestValidateNotify(t *testing.T) {
	setRequired(t)
	t.Setenv("NOTIFY_URL", "http://bot.local:5700/send_group_msg")
	_, err := Load()
	assert.Error(t, err)

	t.Setenv("NOTIFY_GROUP_ID", "540141579")
	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, int64(540141579), cfg.NotifyGroupID)
}

func TestReportAndStorageLoadStandalone(t *testing.T) {
	// cmd/rerender lädt nur diese beiden Teile, ohne DB-Variablen.
	t.Setenv("GROUP_CUTOFF_ROW", "20")
	var cfg struct {
		Storage
		Report
	}
	require.NoError(t, envconfig.Process("", &cfg))
	assert.Equal(t, "file", cfg.StorageBackend)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, "莫寒", cfg.FocusMember)
	assert.Equal(t, []int{1, 5, 11, 16, 21, 25}, cfg.CmpHighlightedRows)
	assert.Equal(t, 20, cfg.GroupCutoffRow)
	assert.NoError(t, cfg.Storage.Validate())

	setRequired(t)
	full, err := Load()
	require.NoError(t, err)
	assert.Equal(t, cfg.Storage, full.Storage)
	assert.Equal(t, cfg.Report, full.Report)
}
