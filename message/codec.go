package message

import (
	"fmt"
	"math"

	"google.golang.org/protobuf/encoding/protowire"
)

// wire layout, compatible with
//
//	message MsgCandidate {
//	  uint64          sequence  = 1;
//	  uint64          round     = 2;
//	  bytes           sender    = 3;
//	  repeated double scores    = 4;
//	  bytes           signature = 5;
//	}
const (
	fieldSequence  protowire.Number = 1
	fieldRound     protowire.Number = 2
	fieldSender    protowire.Number = 3
	fieldScores    protowire.Number = 4
	fieldSignature protowire.Number = 5
)

// Payload returns the byte content of this message (signature excluded)
func (m *MsgCandidate) Payload() []byte {
	var b []byte

	if m.Sequence != 0 {
		b = protowire.AppendTag(b, fieldSequence, protowire.VarintType)
		b = protowire.AppendVarint(b, m.Sequence)
	}

	if m.Round != 0 {
		b = protowire.AppendTag(b, fieldRound, protowire.VarintType)
		b = protowire.AppendVarint(b, m.Round)
	}

	if len(m.Sender) > 0 {
		b = protowire.AppendTag(b, fieldSender, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Sender)
	}

	if len(m.Scores) > 0 {
		packed := make([]byte, 0, 8*len(m.Scores))
		for _, s := range m.Scores {
			packed = protowire.AppendFixed64(packed, math.Float64bits(s))
		}

		b = protowire.AppendTag(b, fieldScores, protowire.BytesType)
		b = protowire.AppendBytes(b, packed)
	}

	return b
}

// Bytes returns the byte content of this message (signature included)
func (m *MsgCandidate) Bytes() []byte {
	b := m.Payload()

	if len(m.Signature) > 0 {
		b = protowire.AppendTag(b, fieldSignature, protowire.BytesType)
		b = protowire.AppendBytes(b, m.Signature)
	}

	return b
}

// Unmarshal decodes a message previously encoded with Bytes. Unknown fields are skipped.
func Unmarshal(data []byte) (*MsgCandidate, error) {
	msg := &MsgCandidate{}

	for len(data) > 0 {
		num, typ, n := protowire.ConsumeTag(data)
		if n < 0 {
			return nil, fmt.Errorf("%w: %w", ErrMalformedMsg, protowire.ParseError(n))
		}

		data = data[n:]

		n, err := msg.consumeField(num, typ, data)
		if err != nil {
			return nil, err
		}

		data = data[n:]
	}

	return msg, nil
}

func (m *MsgCandidate) consumeField(num protowire.Number, typ protowire.Type, data []byte) (int, error) {
	var n int

	switch {
	case num == fieldSequence && typ == protowire.VarintType:
		m.Sequence, n = protowire.ConsumeVarint(data)
	case num == fieldRound && typ == protowire.VarintType:
		m.Round, n = protowire.ConsumeVarint(data)
	case num == fieldSender && typ == protowire.BytesType:
		var v []byte
		v, n = protowire.ConsumeBytes(data)
		m.Sender = append([]byte(nil), v...)
	case num == fieldSignature && typ == protowire.BytesType:
		var v []byte
		v, n = protowire.ConsumeBytes(data)
		m.Signature = append([]byte(nil), v...)
	case num == fieldScores && typ == protowire.BytesType:
		var packed []byte
		packed, n = protowire.ConsumeBytes(data)

		if n >= 0 {
			if err := m.consumePackedScores(packed); err != nil {
				return 0, err
			}
		}
	case num == fieldScores && typ == protowire.Fixed64Type:
		var v uint64
		v, n = protowire.ConsumeFixed64(data)
		m.Scores = append(m.Scores, math.Float64frombits(v))
	default:
		n = protowire.ConsumeFieldValue(num, typ, data)
	}

	if n < 0 {
		return 0, fmt.Errorf("%w: field %d: %w", ErrMalformedMsg, num, protowire.ParseError(n))
	}

	return n, nil
}

func (m *MsgCandidate) consumePackedScores(packed []byte) error {
	for len(packed) > 0 {
		v, n := protowire.ConsumeFixed64(packed)
		if n < 0 {
			return fmt.Errorf("%w: scores: %w", ErrMalformedMsg, protowire.ParseError(n))
		}

		m.Scores = append(m.Scores, math.Float64frombits(v))
		packed = packed[n:]
	}

	return nil
}
