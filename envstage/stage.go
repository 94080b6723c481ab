// Package envstage resolves the current environment stage and the
// stage-qualified names the crypto layer needs: the secret-key variable
// (e.g. DEV_SECRET_KEY) and the stage's secret-file path.
package envstage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// Stage is a deployment environment.
type Stage string

const (
	Dev  Stage = "dev"
	UAT  Stage = "uat"
	Prod Stage = "prod"
)

// StageVariable is the process environment variable naming the active stage.
const StageVariable = "ENV"

const secretKeySuffix = "_SECRET_KEY"

func (s Stage) valid() bool {
	switch s {
	case Dev, UAT, Prod:
		return true
	}
	return false
}

// Resolver yields the per-stage secret-key variable name and secret-file
// path for a stage rooted at envDir.
type Resolver struct {
	stage  Stage
	envDir string
}

// New returns a resolver for an explicit stage.
func New(stage Stage, envDir string) (*Resolver, error) {
	if !stage.valid() {
		return nil, fmt.Errorf("unknown stage %q (expected dev, uat or prod)", stage)
	}
	if envDir == "" {
		envDir = "envs"
	}
	return &Resolver{stage: stage, envDir: envDir}, nil
}

// Load reads envDir/.env if present, then resolves the stage from the ENV
// variable, defaulting to dev. A missing .env file is not an error; an
// unknown stage value is.
func Load(envDir string) (*Resolver, error) {
	if envDir == "" {
		envDir = "envs"
	}

	baseEnv := filepath.Join(envDir, ".env")
	if _, err := os.Stat(baseEnv); err == nil {
		if err := godotenv.Load(baseEnv); err != nil {
			return nil, fmt.Errorf("failed to load %s: %w", baseEnv, err)
		}
	}

	stage := Stage(strings.ToLower(os.Getenv(StageVariable)))
	if stage == "" {
		stage = Dev
	}

	return New(stage, envDir)
}

// Stage returns the resolved stage.
func (r *Resolver) Stage() Stage { return r.stage }

// SecretKeyVariable returns the stage-qualified secret-key variable name,
// e.g. DEV_SECRET_KEY.
func (r *Resolver) SecretKeyVariable() string {
	return strings.ToUpper(string(r.stage)) + secretKeySuffix
}

// SecretFilePath returns the stage's secret-file path, e.g. envs/.env.dev.
func (r *Resolver) SecretFilePath() string {
	return filepath.Join(r.envDir, ".env."+string(r.stage))
}
