// Package auth turns signed operation requests into authenticated caller
// identities. A request is bound to its operation name so a signature for
// one operation cannot be replayed as another.
package auth

import (
	"fmt"

	ec "github.com/bsv-blockchain/go-sdk/primitives/ec"

	"github.com/aeternalism/issuance/address"
)

// domain separates request digests from any other Keccak-256 use.
const domain = "issuance-request:"

// Request is a signed call to a ledger operation.
type Request struct {
	Caller    address.Address // claimed caller
	Operation string          // e.g. "invest", "setupEvent"
	Payload   []byte          // canonical operation arguments
	PubKey    *ec.PublicKey
	Signature *ec.Signature
}

// Digest returns the 32-byte message hash signed for (operation, payload).
func Digest(operation string, payload []byte) []byte {
	return address.Keccak256([]byte(domain), []byte(operation), []byte{0x00}, payload)
}

// Sign builds a Request for operation/payload signed by priv.
func Sign(priv *ec.PrivateKey, operation string, payload []byte) (*Request, error) {
	if priv == nil {
		return nil, ErrNilKey
	}
	pub := priv.PubKey()
	caller, err := address.FromPublicKey(pub)
	if err != nil {
		return nil, fmt.Errorf("auth: derive caller: %w", err)
	}

	sig, err := priv.Sign(Digest(operation, payload))
	if err != nil {
		return nil, fmt.Errorf("auth: sign: %w", err)
	}

	return &Request{
		Caller:    caller,
		Operation: operation,
		Payload:   payload,
		PubKey:    pub,
		Signature: sig,
	}, nil
}

// Verify checks the request signature and that the claimed caller is the
// address of the signing key. It returns the authenticated caller.
func Verify(req *Request) (address.Address, error) {
	if req == nil || req.PubKey == nil {
		return address.Zero, ErrNilKey
	}
	if req.Signature == nil {
		return address.Zero, ErrNilSignature
	}
	if !req.Signature.Verify(Digest(req.Operation, req.Payload), req.PubKey) {
		return address.Zero, ErrBadSignature
	}

	derived, err := address.FromPublicKey(req.PubKey)
	if err != nil {
		return address.Zero, fmt.Errorf("auth: derive caller: %w", err)
	}
	if derived != req.Caller {
		return address.Zero, fmt.Errorf("%w: claimed %s, key %s", ErrCallerMismatch, req.Caller, derived)
	}
	return derived, nil
}
