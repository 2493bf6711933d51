package abse

// ScoreVector holds one reputation value per participant, indexed by participant id
type ScoreVector = []float64

/** External functionalities required to broadcast and verify candidate score vectors	**/

type (
	// Signer is used to generate a sender-unique signature of a keccak hash
	Signer interface {
		// Address returns the public address of this signer
		Address() []byte

		// Sign computes the signature of given digest
		Sign(digest []byte) []byte
	}

	// SignatureVerifier checks that a signature over some digest was produced by signer
	SignatureVerifier interface {
		// Verify returns an error if the signature of the digest is not valid
		Verify(signer, digest, signature []byte) error
	}

	// Keccak is used to obtain the Keccak encoding of arbitrary data
	Keccak interface {
		// Hash returns the Keccak encoding of given input
		Hash(data []byte) []byte
	}

	// Transport is used to gossip an encoded candidate score vector to the network
	Transport interface {
		// Multicast gossips the encoded candidate to the network
		Multicast(data []byte)
	}
)

type (
	KeccakFn    func(data []byte) []byte
	TransportFn func(data []byte)
)

func (f KeccakFn) Hash(data []byte) []byte {
	return f(data)
}

func (f TransportFn) Multicast(data []byte) {
	f(data)
}
