// Package address implements the 20-byte account identities used for owners,
// investors, treasuries and token instances.
package address

import (
	"encoding/hex"
	"fmt"
	"strings"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"
	"golang.org/x/crypto/sha3"
)

// Size is the length of an address in bytes.
const Size = 20

// Address identifies an account.
type Address [Size]byte

// Zero is the unset address (0x000...0).
var Zero Address

// IsZero reports whether a is the zero address.
func (a Address) IsZero() bool {
	return a == Zero
}

// Bytes returns a copy of the raw address bytes.
func (a Address) Bytes() []byte {
	b := make([]byte, Size)
	copy(b, a[:])
	return b
}

// Hex returns the lowercase 0x-prefixed hex form.
func (a Address) Hex() string {
	return "0x" + hex.EncodeToString(a[:])
}

// String returns the EIP-55 checksummed form.
func (a Address) String() string {
	lower := hex.EncodeToString(a[:])
	hash := Keccak256([]byte(lower))

	out := make([]byte, 2+len(lower))
	out[0], out[1] = '0', 'x'
	for i := 0; i < len(lower); i++ {
		c := lower[i]
		if c >= 'a' && c <= 'f' {
			// Nibble i of the hash decides the case of character i.
			nibble := hash[i/2]
			if i%2 == 0 {
				nibble >>= 4
			}
			if nibble&0x0f >= 8 {
				c -= 'a' - 'A'
			}
		}
		out[2+i] = c
	}
	return string(out)
}

// MarshalText implements encoding.TextMarshaler.
func (a Address) MarshalText() ([]byte, error) {
	return []byte(a.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (a *Address) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// Parse decodes a 0x-prefixed (or bare) 40-character hex address.
// All-lowercase and all-uppercase inputs are accepted as-is; mixed-case
// inputs must carry a valid EIP-55 checksum.
func Parse(s string) (Address, error) {
	s = strings.TrimSpace(s)
	body := strings.TrimPrefix(strings.TrimPrefix(s, "0x"), "0X")
	if len(body) != 2*Size {
		return Zero, fmt.Errorf("%w: got %d hex characters", ErrInvalidLength, len(body))
	}

	raw, err := hex.DecodeString(body)
	if err != nil {
		return Zero, fmt.Errorf("%w: %w", ErrInvalidHex, err)
	}

	var a Address
	copy(a[:], raw)

	if body != strings.ToLower(body) && body != strings.ToUpper(body) {
		if a.String()[2:] != body {
			return Zero, fmt.Errorf("%w: %s", ErrBadChecksum, s)
		}
	}
	return a, nil
}

// MustParse is like Parse but panics on error. Intended for constants and tests.
func MustParse(s string) Address {
	a, err := Parse(s)
	if err != nil {
		panic(err)
	}
	return a
}

// FromBytes builds an address from exactly 20 bytes.
func FromBytes(b []byte) (Address, error) {
	if len(b) != Size {
		return Zero, fmt.Errorf("%w: got %d bytes", ErrInvalidLength, len(b))
	}
	var a Address
	copy(a[:], b)
	return a, nil
}

// FromPublicKey derives the account address of a secp256k1 public key:
// the last 20 bytes of Keccak-256 over the 64-byte uncompressed X||Y.
func FromPublicKey(pub *ec.PublicKey) (Address, error) {
	if pub == nil || pub.X == nil || pub.Y == nil {
		return Zero, ErrNilPublicKey
	}
	xy := make([]byte, 64)
	pub.X.FillBytes(xy[:32])
	pub.Y.FillBytes(xy[32:])

	hash := Keccak256(xy)
	var a Address
	copy(a[:], hash[len(hash)-Size:])
	return a, nil
}

// Keccak256 returns the legacy Keccak-256 digest of the concatenated inputs.
func Keccak256(data ...[]byte) []byte {
	h := sha3.NewLegacyKeccak256()
	for _, d := range data {
		h.Write(d)
	}
	return h.Sum(nil)
}
