package config

import (
	"testing"

	"github.com/hay-kot/criterio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig(t *testing.T) *Config {
	t.Helper()
	cfg := DefaultConfig()
	return &cfg
}

func TestValidateDeep_ValidConfig(t *testing.T) {
	cfg := validConfig(t)
	assert.NoError(t, cfg.ValidateDeep(""))
}

func TestValidateDeep_BadBaseURL(t *testing.T) {
	cfg := validConfig(t)
	cfg.API.BaseURL = "localhost:8080"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	require.Len(t, fieldErrs, 1)
	assert.Equal(t, "api.base_url", fieldErrs[0].Field)
}

func TestValidateDeep_S3(t *testing.T) {
	cfg := validConfig(t)
	cfg.DevServer.Storage = StorageS3
	cfg.DevServer.S3.Endpoint = "minio:9000"
	cfg.DevServer.S3.AccessKeyID = "key"

	err := cfg.ValidateDeep("")

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Len(t, fieldErrs, 3)

	fields := make([]string, len(fieldErrs))
	for i, fe := range fieldErrs {
		fields[i] = fe.Field
	}
	assert.Contains(t, fields, "devserver.s3.bucket")
	assert.Contains(t, fields, "devserver.s3.endpoint")
	assert.Contains(t, fields, "devserver.s3")
}

func TestValidateDeep_ConfigPathIsDirectory(t *testing.T) {
	cfg := validConfig(t)

	err := cfg.ValidateDeep(t.TempDir())

	var fieldErrs criterio.FieldErrors
	require.ErrorAs(t, err, &fieldErrs)
	assert.Equal(t, "config_file", fieldErrs[0].Field)
}

func TestValidateDeep_StructuralErrorFirst(t *testing.T) {
	cfg := validConfig(t)
	cfg.Gallery.PageSize = 0

	err := cfg.ValidateDeep("")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "page_size")
}

func TestWarnings(t *testing.T) {
	cfg := validConfig(t)
	warnings := cfg.Warnings()
	require.Len(t, warnings, 1)
	assert.Equal(t, "allowed_origins", warnings[0].Item)

	cfg.DevServer.AllowedOrigins = []string{"http://localhost:3000"}
	cfg.Gallery.PageSize = 500
	cfg.DevServer.Storage = StorageS3
	assert.Len(t, cfg.Warnings(), 2)
}
