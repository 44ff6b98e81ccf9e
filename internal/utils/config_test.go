package utils

import (
	"os"
	"path/filepath"
	"testing"
)

func TestReturnNonDefault(t *testing.T) {
	tests := []struct {
		name       string
		a          string
		b          string
		defaultVal string
		want       string
		wantErr    bool
	}{
		{name: "Both defaults", a: "default", b: "default", defaultVal: "default", want: "default"},
		{name: "A non-default", a: "non-default", b: "default", defaultVal: "default", want: "non-default"},
		{name: "B non-default", a: "default", b: "non-default", defaultVal: "default", want: "non-default"},
		{name: "Both non-default", a: "non-default-a", b: "non-default-b", defaultVal: "default", want: "default", wantErr: true},
		{name: "Both non-default same value", a: "non-default", b: "non-default", defaultVal: "default", want: "default", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ReturnNonDefault(tt.a, tt.b, tt.defaultVal)
			if (err != nil) != tt.wantErr {
				t.Errorf("ReturnNonDefault() error = %v, wantErr %v", err, tt.wantErr)
				return
			}
			if !tt.wantErr && got != tt.want {
				t.Errorf("ReturnNonDefault() = %v, want %v", got, tt.want)
			}
		})
	}
}

type testConfig struct {
	Model string `json:"model"`
	Limit int    `json:"limit"`
}

func TestLoadConfigFromFile(t *testing.T) {
	dflt := &testConfig{Model: "default-model", Limit: 15}

	t.Run("missing file returns default and creates nothing", func(t *testing.T) {
		dir := t.TempDir()
		got, err := LoadConfigFromFile(dir, "config.json", dflt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if got != *dflt {
			t.Fatalf("expected: %+v, got: %+v", *dflt, got)
		}
		if _, err := os.Stat(filepath.Join(dir, "config.json")); !os.IsNotExist(err) {
			t.Fatal("expected config file not to be created")
		}
	})

	t.Run("zero fields are filled from default", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"model": "custom"}`), 0o644); err != nil {
			t.Fatal(err)
		}
		got, err := LoadConfigFromFile(dir, "config.json", dflt)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := testConfig{Model: "custom", Limit: 15}
		if got != want {
			t.Fatalf("expected: %+v, got: %+v", want, got)
		}
	})

	t.Run("malformed file is an error", func(t *testing.T) {
		dir := t.TempDir()
		if err := os.WriteFile(filepath.Join(dir, "config.json"), []byte(`{"model": `), 0o644); err != nil {
			t.Fatal(err)
		}
		if _, err := LoadConfigFromFile(dir, "config.json", dflt); err == nil {
			t.Fatal("expected error")
		}
	})
}

func TestGetConfigDir_EnvOverride(t *testing.T) {
	t.Setenv("SEARCHCHAT_CONFIG_DIR", "/tmp/somewhere")
	got, err := GetConfigDir()
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "/tmp/somewhere" {
		t.Fatalf("expected override, got: %v", got)
	}
}
