package auth

import "errors"

var (
	// ErrNilKey indicates a nil private or public key.
	ErrNilKey = errors.New("auth: key is nil")

	// ErrNilSignature indicates a nil signature.
	ErrNilSignature = errors.New("auth: signature is nil")

	// ErrBadSignature indicates the signature does not verify against the request.
	ErrBadSignature = errors.New("auth: signature verification failed")

	// ErrCallerMismatch indicates the claimed caller does not own the signing key.
	ErrCallerMismatch = errors.New("auth: caller does not match signing key")
)
