package test

import (
	"bytes"
	"crypto/ecdsa"
	"errors"
	"fmt"

	"github.com/ethereum/go-ethereum/crypto"

	"github.com/sig-0/go-abse"
)

var (
	ErrSignerMismatch = errors.New("recovered signer does not match")

	DefaultKeccak abse.Keccak = abse.KeccakFn(func(data []byte) []byte {
		return crypto.Keccak256(data)
	})

	ECRecover abse.SignatureVerifier = SignatureVerifierFn(func(signer, digest, sig []byte) error {
		pubKey, err := crypto.SigToPub(digest, sig)
		if err != nil {
			return fmt.Errorf("failed to extract pub key: %w", err)
		}

		if !bytes.Equal(signer, crypto.PubkeyToAddress(*pubKey).Bytes()) {
			return ErrSignerMismatch
		}

		return nil
	})
)

type SignatureVerifierFn func(signer, digest, sig []byte) error

func (f SignatureVerifierFn) Verify(signer, digest, sig []byte) error {
	return f(signer, digest, sig)
}

type ECDSAKey struct {
	*ecdsa.PrivateKey
}

func NewECDSAKey() ECDSAKey {
	key, err := crypto.GenerateKey()
	if err != nil {
		panic(fmt.Errorf("failed to generate ecdsa key: %w", err).Error())
	}

	return ECDSAKey{key}
}

func (k ECDSAKey) Sign(digest []byte) []byte {
	sig, err := crypto.Sign(digest, k.PrivateKey)
	if err != nil {
		panic(fmt.Errorf("failed to sign: %w", err).Error())
	}

	return sig
}

func (k ECDSAKey) Address() []byte {
	pubKeyECDSA, ok := k.Public().(*ecdsa.PublicKey)
	if !ok {
		panic("failed to cast pub key to *ecdsa.PublicKey")
	}

	return crypto.PubkeyToAddress(*pubKeyECDSA).Bytes()
}
