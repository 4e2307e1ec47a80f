package address

import "errors"

var (
	// ErrInvalidLength indicates the decoded address is not 20 bytes.
	ErrInvalidLength = errors.New("address: invalid length (must be 20 bytes)")

	// ErrInvalidHex indicates the address text is not valid hexadecimal.
	ErrInvalidHex = errors.New("address: invalid hex encoding")

	// ErrBadChecksum indicates a mixed-case address fails EIP-55 checksum validation.
	ErrBadChecksum = errors.New("address: checksum mismatch")

	// ErrNilPublicKey indicates a nil public key was supplied for derivation.
	ErrNilPublicKey = errors.New("address: public key is nil")
)
