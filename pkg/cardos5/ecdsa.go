package cardos5

import (
	"fmt"

	"github.com/cardkit/cardos5/pkg/bits"
	"github.com/cardkit/cardos5/pkg/tlv"
)

// The card returns an EC signature as two fixed-width big-endian unsigned
// coordinates glued together. PKCS#11 consumers expect the ASN.1 form:
// a SEQUENCE of two INTEGERs, each minimally encoded and zero-padded when
// its top bit is set so it cannot read as negative.

// encodeECSignature re-encodes a raw card signature into the ASN.1 form.
// V5.0 cards emit two scratch bytes after each coordinate, V5.3 cards none;
// the coordinate width is derived from the total length accordingly. The
// result must fit within bufSize bytes.
func encodeECSignature(card CardType, sig []byte, bufSize int) ([]byte, error) {
	siglen := len(sig)
	if siglen < 4 || siglen > bufSize || siglen%2 != 0 {
		return nil, fmt.Errorf("%w: invalid siglen=%d, bufsize=%d",
			ErrInvalidArguments, siglen, bufSize)
	}

	var rawLen int
	switch card {
	case CardV5_0:
		rawLen = (siglen - 4) / 2
	case CardV5_3:
		rawLen = siglen / 2
	default:
		return nil, fmt.Errorf("%w: invalid card type %d", ErrInvalidArguments, card)
	}

	// The coordinate length plus its pad byte must fit the single-byte
	// INTEGER length field.
	if rawLen >= 0x7F {
		return nil, fmt.Errorf("%w: coordinate length %d", ErrBufferTooSmall, rawLen)
	}

	x := encodeCoordinate(sig[:rawLen])

	yOff := rawLen
	if card == CardV5_0 {
		yOff += 2
	}
	y := encodeCoordinate(sig[yOff : yOff+rawLen])

	point := make([]byte, 0, len(x)+len(y))
	point = append(point, x...)
	point = append(point, y...)

	out := tlv.NewWriter(make([]byte, bufSize))
	if err := out.PutTag(0x30, point); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}

// encodeCoordinate wraps one big-endian unsigned coordinate in an ASN.1
// INTEGER, prepending a zero byte when the leading bit would flip the sign.
func encodeCoordinate(raw []byte) []byte {
	if len(raw) > 0 && bits.IsSet(raw[0], 8) {
		enc := make([]byte, len(raw)+3)
		enc[0] = 0x02
		enc[1] = byte(len(raw) + 1)
		// enc[2] stays 0x00: the sign pad byte.
		copy(enc[3:], raw)
		return enc
	}

	enc := make([]byte, len(raw)+2)
	enc[0] = 0x02
	enc[1] = byte(len(raw))
	copy(enc[2:], raw)
	return enc
}
