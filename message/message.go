package message

import (
	"errors"
	"fmt"

	"github.com/sig-0/go-abse"
)

var (
	ErrMalformedMsg     = errors.New("malformed message")
	ErrInvalidMsg       = errors.New("invalid message")
	ErrInvalidSignature = errors.New("invalid signature")
)

// MsgCandidate carries a generated candidate score vector for some view (sequence, round)
// so that it can be broadcast to and aggregated by other participants
type MsgCandidate struct {
	Sender    []byte
	Signature []byte
	Scores    abse.ScoreVector
	Sequence  uint64
	Round     uint64
}

// Validate checks that no required field is missing
func (m *MsgCandidate) Validate() error {
	if m == nil {
		return fmt.Errorf("%w: nil message", ErrInvalidMsg)
	}

	if len(m.Sender) == 0 {
		return fmt.Errorf("%w: missing sender", ErrInvalidMsg)
	}

	if len(m.Signature) == 0 {
		return fmt.Errorf("%w: missing signature", ErrInvalidMsg)
	}

	if len(m.Scores) == 0 {
		return fmt.Errorf("%w: empty scores", ErrInvalidMsg)
	}

	return nil
}

// SignMsg sets the signature of msg over the keccak hash of its payload
func SignMsg(msg *MsgCandidate, keccak abse.Keccak, signer abse.Signer) *MsgCandidate {
	msg.Sender = signer.Address()
	msg.Signature = signer.Sign(keccak.Hash(msg.Payload()))

	return msg
}

// VerifyMsg checks that the signature of msg was produced by its sender
func VerifyMsg(msg *MsgCandidate, keccak abse.Keccak, verifier abse.SignatureVerifier) error {
	if err := verifier.Verify(msg.Sender, keccak.Hash(msg.Payload()), msg.Signature); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidSignature, err)
	}

	return nil
}
