package envcrypt

import (
	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/audit"
	icrypto "github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/crypto"
	"github.com/sinugotshifhiwa4/pw-automation-framework-codebase/internal/misc"
)

// Options configures a Service.
//
// Derivation cost parameters default to the production values (256 MiB
// memory, 4 iterations, 3 lanes) and should only be lowered for tests:
// identical parameters are required to decrypt what was encrypted, so
// changing them invalidates existing envelopes.
type Options struct {
	// SecretFilePath and SecretKeyVariable locate the shared secret. They
	// are only consulted when no stage resolver is given to New.
	SecretFilePath    string `json:"secret_file_path" yaml:"secret_file_path"`
	SecretKeyVariable string `json:"secret_key_variable" yaml:"secret_key_variable"`

	// Argon2id cost overrides; zero means the default.
	DerivationTime    uint32 `json:"derivation_time,omitempty" yaml:"derivation_time,omitempty"`
	DerivationMemory  uint32 `json:"derivation_memory,omitempty" yaml:"derivation_memory,omitempty"` // KiB
	DerivationThreads uint8  `json:"derivation_threads,omitempty" yaml:"derivation_threads,omitempty"`

	// EnableMemoryLock attempts to mlock process memory at construction so
	// key material cannot be swapped to disk. Best effort.
	EnableMemoryLock bool `json:"enable_memory_lock" yaml:"enable_memory_lock"`

	// Audit selects the audit sink. Nil disables auditing.
	Audit *audit.Config `json:"audit,omitempty" yaml:"audit,omitempty"`
}

func (o Options) derivationParams() icrypto.Params {
	p := icrypto.DefaultParams()
	if o.DerivationTime != 0 {
		p.Time = o.DerivationTime
	}
	if o.DerivationMemory != 0 {
		p.Memory = o.DerivationMemory
	}
	if o.DerivationThreads != 0 {
		p.Threads = o.DerivationThreads
	}
	// Output length is fixed: 64 bytes, split into the two 256-bit keys.
	p.KeyLen = misc.ArgonKeyLen
	return p
}
