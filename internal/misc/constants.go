package misc

const (
	// ArgonTime Key derivation parameters
	ArgonTime    uint32 = 4
	ArgonMemory  uint32 = 256 * 1024
	ArgonThreads uint8  = 3
	ArgonKeyLen  uint32 = 64

	SaltSize = 32
	IVSize   = 12
	MACSize  = 32

	// MinSecretLength is the minimum accepted length of a secret key in characters
	MinSecretLength = 16

	// GeneratedKeySize is the decoded byte length of generated secret keys
	GeneratedKeySize = 32
)
