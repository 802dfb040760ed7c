package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseFile_JSON(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	dir := t.TempDir()
	pathFlag := writeTempJSON(t, dir, "flag.json", map[string]any{
		"endpoint_addr_grpc":              "www.example:9000",
		"endpoint_addr_http":              "www.example:8080",
		"database_dsn":                    "docs.db",
		"secret_key":                      "my_secret_key",
		"access_token_validity_duration":  "1m",
		"refresh_token_validity_duration": "3m",
		"s3_root_user":                    "user",
		"s3_root_password":                "password",
		"s3_bucket":                       "bucket",
		"s3_region":                       "region",
		"s3_base_endpoint":                "base_endpoint",
		"base_verification_url":           "https://docs.example.cl/verificar-documento",
		"signature_time_zone":             "UTC",
		"redis_addr":                      "redis:6379",
		"lookup_cache_ttl":                int64(90 * time.Second),
		"log_backend":                     "zap",
	})

	t.Run("loads from json", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", pathFlag}

		cfg := &Config{}
		parseFile(cfg)

		want := &Config{
			EndpointAddrGRPC:             "www.example:9000",
			EndpointAddrHTTP:             "www.example:8080",
			DatabaseDSN:                  "docs.db",
			SecretKey:                    "my_secret_key",
			AccessTokenValidityDuration:  1 * time.Minute,
			RefreshTokenValidityDuration: 3 * time.Minute,
			S3RootUser:                   "user",
			S3RootPassword:               "password",
			S3Bucket:                     "bucket",
			S3Region:                     "region",
			S3BaseEndpoint:               "base_endpoint",
			BaseVerificationURL:          "https://docs.example.cl/verificar-documento",
			SignatureTimeZone:            "UTC",
			RedisAddr:                    "redis:6379",
			LookupCacheTTL:               90 * time.Second,
			LogBackend:                   "zap",
		}
		assert.Empty(t, cmp.Diff(want, cfg))
	})

	t.Run("no config flag leaves values", func(t *testing.T) {
		os.Args = []string{"testbin"}

		cfg := &Config{}
		cfg.LoadDefaults()
		want := *cfg
		parseFile(cfg)

		assert.Empty(t, cmp.Diff(&want, cfg))
	})

	t.Run("empty values keep defaults", func(t *testing.T) {
		partial := writeTempJSON(t, dir, "partial.json", map[string]any{
			"secret_key": "rotated",
		})
		os.Args = []string{"testbin", "-c", partial}

		cfg := &Config{}
		cfg.LoadDefaults()
		parseFile(cfg)

		assert.Equal(t, "rotated", cfg.SecretKey)
		assert.Equal(t, ":50051", cfg.EndpointAddrGRPC)
		assert.Equal(t, 1*time.Minute, cfg.AccessTokenValidityDuration)
		assert.Equal(t, 5*time.Minute, cfg.LookupCacheTTL)
	})

	t.Run("invalid JSON panics", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		os.Args = []string{"testbin", "-config", bad}

		cfg := &Config{}
		require.Panics(t, func() { parseFile(cfg) })
	})

	t.Run("missing file panics", func(t *testing.T) {
		os.Args = []string{"testbin", "-config", filepath.Join(dir, "nope.json")}
		require.Panics(t, func() { parseFile(&Config{}) })
	})
}

func Test_parseFile_YAML(t *testing.T) {
	origArgs := os.Args
	t.Cleanup(func() { os.Args = origArgs })

	path := filepath.Join(t.TempDir(), "server.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
endpoint_addr_http: ":9999"
base_verification_url: https://docs.example.cl/verificar-documento
lookup_cache_ttl: 2m
access_token_validity_duration: 600000000000
s3_bucket: firmas
`), 0o600))

	os.Args = []string{"testbin", "-c", path}

	cfg := &Config{}
	cfg.LoadDefaults()
	parseFile(cfg)

	assert.Equal(t, ":9999", cfg.EndpointAddrHTTP)
	assert.Equal(t, "https://docs.example.cl/verificar-documento", cfg.BaseVerificationURL)
	assert.Equal(t, 2*time.Minute, cfg.LookupCacheTTL)
	assert.Equal(t, 10*time.Minute, cfg.AccessTokenValidityDuration)
	assert.Equal(t, "firmas", cfg.S3Bucket)
	assert.Equal(t, "slog", cfg.LogBackend)
}

func Test_decodeFile_BadYAML(t *testing.T) {
	_, err := decodeFile("x.yml", []byte("lookup_cache_ttl: [1, 2"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "parse yaml config")
}
