package envcrypt

import "fmt"

// Kind classifies the failures this subsystem can produce so callers can
// branch on the class of error without string-matching messages.
type Kind uint8

const (
	// KindValidation covers malformed envelopes, invalid base64, unsupported
	// versions, weak secrets and empty plaintext. Always raised before any
	// cryptographic work begins.
	KindValidation Kind = iota + 1

	// KindAuthentication covers MAC mismatches and AEAD tag failures. The
	// message is deliberately generic so callers cannot distinguish a wrong
	// key from tampered data.
	KindAuthentication

	// KindConfiguration covers a missing or empty secret-key variable in the
	// secret store.
	KindConfiguration

	// KindIO covers failures propagated from the file-access layer.
	KindIO
)

func (k Kind) String() string {
	switch k {
	case KindValidation:
		return "validation error"
	case KindAuthentication:
		return "authentication error"
	case KindConfiguration:
		return "configuration error"
	case KindIO:
		return "io error"
	default:
		return "unknown error"
	}
}

// Error is the tagged error type for all failures in this package. Match a
// class with errors.Is against one of the exported sentinels, or unwrap the
// concrete value with errors.As.
type Error struct {
	Kind Kind
	msg  string
	err  error
}

// Sentinels for errors.Is matching. They carry no message of their own.
var (
	ErrValidation     = &Error{Kind: KindValidation}
	ErrAuthentication = &Error{Kind: KindAuthentication}
	ErrConfiguration  = &Error{Kind: KindConfiguration}
	ErrIO             = &Error{Kind: KindIO}
)

func (e *Error) Error() string {
	switch {
	case e.msg == "" && e.err == nil:
		return e.Kind.String()
	case e.err == nil:
		return e.msg
	case e.msg == "":
		return fmt.Sprintf("%s: %v", e.Kind, e.err)
	default:
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}
}

func (e *Error) Unwrap() error { return e.err }

// Is makes every Error match the bare sentinel of its kind.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	return ok && t.Kind == e.Kind && t.msg == "" && t.err == nil
}

func validationErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindValidation, msg: fmt.Sprintf(format, args...)}
}

// authenticationError returns the one fixed authentication failure. The
// message never varies: distinguishing "wrong key" from "tampered data"
// would hand an attacker a decryption oracle.
func authenticationError() *Error {
	return &Error{Kind: KindAuthentication, msg: "authentication failed"}
}

func configurationErrorf(format string, args ...interface{}) *Error {
	return &Error{Kind: KindConfiguration, msg: fmt.Sprintf(format, args...)}
}

func ioError(msg string, err error) *Error {
	return &Error{Kind: KindIO, msg: msg, err: err}
}
