// Package iso7816 implements APDU (Application Protocol Data Unit) framing
// and response analysis according to ISO/IEC 7816-3 and 7816-4.
//
// A command consists of a 4-byte header (CLA, INS, P1, P2) and an optional
// body (Lc + data, Le). The four ISO 7816-3 encoding cases are selected
// automatically:
//
//	Case 1: header only
//	Case 2: header + Le
//	Case 3: header + Lc + data
//	Case 4: header + Lc + data + Le
//
// Lc and Le switch from short (1 byte) to extended (3/2 bytes) encoding when
// the data exceeds 255 bytes or the expected response exceeds 256 bytes.
// CLA and INS are carried as raw bytes: proprietary card commands use class
// and instruction values outside the interindustry ranges.
package iso7816

import (
	"bytes"
	"fmt"
)

// APDU limits according to ISO 7816-3.
const (
	// MaxShortLc is the maximum data length encodable in short form.
	MaxShortLc = 255

	// MaxShortLe is the maximum expected response length in short form;
	// 0x00 encodes 256.
	MaxShortLe = 256

	// MaxExtendedLc is the limit for Lc in extended form.
	MaxExtendedLc = 65535

	// MaxExtendedLe is the maximum Ne in extended form; 0x0000 encodes 65536.
	MaxExtendedLe = 65536

	// MaxBufferSize is a safe buffer limit for extended APDUs:
	// header(4) + extended Lc(3) + data + extended Le(2) + margin(1).
	MaxBufferSize = 4 + 3 + MaxExtendedLc + 2 + 1
)

// Standard instruction bytes used in this module.
const (
	InsGetResponse byte = 0xC0
)

// CommandAPDU represents a command sent to the card.
type CommandAPDU struct {
	Cla, Ins, P1, P2 byte
	Data             []byte
	Ne               int // expected response length, 0 means none
}

// NewCommandAPDU creates a basic command.
func NewCommandAPDU(cla, ins, p1, p2 byte, data []byte, ne int) *CommandAPDU {
	return &CommandAPDU{
		Cla:  cla,
		Ins:  ins,
		P1:   p1,
		P2:   p2,
		Data: data,
		Ne:   ne,
	}
}

// Bytes encodes the command into its C-APDU byte representation, selecting
// short or extended length fields as required by Data and Ne.
func (c *CommandAPDU) Bytes() ([]byte, error) {
	nc := len(c.Data)
	if nc > MaxExtendedLc || c.Ne > MaxExtendedLe || c.Ne < 0 {
		return nil, fmt.Errorf("unencodable lengths: Nc=%d, Ne=%d", nc, c.Ne)
	}

	buf := new(bytes.Buffer)
	buf.WriteByte(c.Cla)
	buf.WriteByte(c.Ins)
	buf.WriteByte(c.P1)
	buf.WriteByte(c.P2)

	ne := c.Ne
	isExtended := nc > MaxShortLc || ne > MaxShortLe

	if nc > 0 {
		if !isExtended {
			buf.WriteByte(byte(nc))
		} else {
			// Extended: 00 flag + 2-byte Lc.
			buf.WriteByte(0x00)
			buf.WriteByte(byte(nc >> 8))
			buf.WriteByte(byte(nc))
		}
		buf.Write(c.Data)
	}

	if ne > 0 {
		if !isExtended {
			if ne == MaxShortLe {
				buf.WriteByte(0x00) // 0x00 encodes 256
			} else {
				buf.WriteByte(byte(ne))
			}
		} else {
			// Case 2 extended needs the 00 flag in front of Le.
			if nc == 0 {
				buf.WriteByte(0x00)
			}
			if ne == MaxExtendedLe {
				buf.WriteByte(0x00)
				buf.WriteByte(0x00)
			} else {
				buf.WriteByte(byte(ne >> 8))
				buf.WriteByte(byte(ne))
			}
		}
	}

	return buf.Bytes(), nil
}

// String returns a readable representation of the command meta-data.
func (c *CommandAPDU) String() string {
	return fmt.Sprintf("CLA: %02X INS: %02X | P1: %02X, P2: %02X | Lc: %d | Le: %d",
		c.Cla, c.Ins, c.P1, c.P2, len(c.Data), c.Ne)
}

// ResponseAPDU represents the reply from the card (R-APDU).
type ResponseAPDU struct {
	Data   []byte
	Status StatusWord
}

// ParseResponseAPDU parses raw bytes received from the card.
// The input must contain at least the 2-byte status word.
func ParseResponseAPDU(raw []byte) (*ResponseAPDU, error) {
	if len(raw) < 2 {
		return nil, fmt.Errorf("response too short: length %d", len(raw))
	}

	indexSW1 := len(raw) - 2

	return &ResponseAPDU{
		Data:   raw[:indexSW1],
		Status: NewStatusWord(raw[indexSW1], raw[indexSW1+1]),
	}, nil
}

// String returns a readable representation of the response.
func (r *ResponseAPDU) String() string {
	return fmt.Sprintf("Data (%d bytes) | Status: %s", len(r.Data), r.Status.Verbose())
}
