package shared

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig(t *testing.T) {
	t.Run("DefaultConfig", func(t *testing.T) {
		config := DefaultConfig()

		if config.API.BaseURL != "http://localhost:8080/api" {
			t.Errorf("expected api base URL http://localhost:8080/api, got %s", config.API.BaseURL)
		}

		if config.Session.Path != "./watchlog.db" {
			t.Errorf("expected session path ./watchlog.db, got %s", config.Session.Path)
		}

		if config.Server.Port != 8080 {
			t.Errorf("expected server port 8080, got %d", config.Server.Port)
		}

		if config.Upload.Enabled() {
			t.Error("uploads should be disabled without cloud name and preset")
		}
	})

	t.Run("CreateConfigFile", func(t *testing.T) {
		tmpDir := t.TempDir()
		configPath := filepath.Join(tmpDir, "config.toml")

		if err := CreateConfigFile(configPath); err != nil {
			t.Fatalf("failed to create config file: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load created config: %v", err)
		}

		if config.Session.Path != DefaultConfig().Session.Path {
			t.Errorf("created config session path doesn't match default")
		}

		if err := CreateConfigFile(configPath); err == nil {
			t.Error("creating config file again should fail")
		}
	})

	t.Run("LoadConfig", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")

		testConfig := `[api]
base_url = "https://media.example.com/api"

[upload]
cloud_name = "demo"
upload_preset = "unsigned"

[log]
level = "debug"
`
		if err := os.WriteFile(configPath, []byte(testConfig), 0644); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		config, err := LoadConfig(configPath)
		if err != nil {
			t.Fatalf("failed to load config: %v", err)
		}

		if config.API.BaseURL != "https://media.example.com/api" {
			t.Errorf("unexpected base URL %s", config.API.BaseURL)
		}
		if !config.Upload.Enabled() {
			t.Error("expected uploads to be enabled")
		}
		if config.Upload.Endpoint != "https://api.cloudinary.com/v1_1" {
			t.Errorf("expected default upload endpoint to survive, got %s", config.Upload.Endpoint)
		}
		if config.Log.Level != "debug" {
			t.Errorf("expected log level debug, got %s", config.Log.Level)
		}
	})

	t.Run("LoadConfig Invalid TOML", func(t *testing.T) {
		configPath := filepath.Join(t.TempDir(), "config.toml")
		os.WriteFile(configPath, []byte("[api\nbase_url ="), 0644)

		if _, err := LoadConfig(configPath); err == nil {
			t.Error("expected parse error")
		}
	})

	t.Run("ResolveConfig", func(t *testing.T) {
		tmpDir := t.TempDir()
		envPath := filepath.Join(tmpDir, ".env")
		os.WriteFile(envPath, []byte("CLOUDINARY_CLOUD_NAME=from-dotenv\n"), 0644)

		t.Setenv(EnvAPIURL, "http://env.example/api")
		t.Setenv(EnvCloudName, "")
		os.Unsetenv(EnvCloudName)

		config, err := ResolveConfig(filepath.Join(tmpDir, "missing.toml"), envPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		t.Cleanup(func() { os.Unsetenv(EnvCloudName) })

		if config.API.BaseURL != "http://env.example/api" {
			t.Errorf("expected env override, got %s", config.API.BaseURL)
		}
		if config.Upload.CloudName != "from-dotenv" {
			t.Errorf("expected cloud name from .env, got %q", config.Upload.CloudName)
		}
	})

	t.Run("ResolveConfig Missing Env File", func(t *testing.T) {
		tmpDir := t.TempDir()
		if _, err := ResolveConfig(filepath.Join(tmpDir, "none.toml"), filepath.Join(tmpDir, ".env")); err != nil {
			t.Errorf("missing .env should be ignored, got %v", err)
		}
	})
}
