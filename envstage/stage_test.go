package envstage

import (
	"os"
	"path/filepath"
	"testing"
)

func TestNew(t *testing.T) {
	r, err := New(UAT, "envs")
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}
	if r.Stage() != UAT {
		t.Errorf("stage = %s, want uat", r.Stage())
	}
	if got := r.SecretKeyVariable(); got != "UAT_SECRET_KEY" {
		t.Errorf("SecretKeyVariable = %s, want UAT_SECRET_KEY", got)
	}
	if got := r.SecretFilePath(); got != filepath.Join("envs", ".env.uat") {
		t.Errorf("SecretFilePath = %s", got)
	}

	if _, err := New("staging", "envs"); err == nil {
		t.Error("expected error for unknown stage")
	}
}

func TestLoadDefaultsToDev(t *testing.T) {
	t.Setenv(StageVariable, "")

	r, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.Stage() != Dev {
		t.Errorf("stage = %s, want dev", r.Stage())
	}
	if got := r.SecretKeyVariable(); got != "DEV_SECRET_KEY" {
		t.Errorf("SecretKeyVariable = %s, want DEV_SECRET_KEY", got)
	}
}

func TestLoadFromProcessEnvironment(t *testing.T) {
	t.Setenv(StageVariable, "PROD")

	r, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.Stage() != Prod {
		t.Errorf("stage = %s, want prod", r.Stage())
	}

	t.Setenv(StageVariable, "nonsense")
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected error for unknown stage value")
	}
}

func TestLoadFromDotEnvFile(t *testing.T) {
	// godotenv does not override variables already present in the process
	// environment, so the stage variable must be absent for the file to win
	t.Setenv(StageVariable, "placeholder")
	os.Unsetenv(StageVariable)

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, ".env"), []byte("ENV=uat\n"), 0600); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	r, err := Load(dir)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	if r.Stage() != UAT {
		t.Errorf("stage = %s, want uat", r.Stage())
	}
}
