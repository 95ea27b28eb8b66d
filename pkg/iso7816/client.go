package iso7816

import (
	"fmt"
)

// The Client is a high-level driver over the physical connection. It handles
// the ISO 7816-3 transport behaviors that T=0 protocols expose to the
// application layer:
//
//  1. '61 XX' (response available): the card holds XX more bytes; the client
//     issues GET RESPONSE automatically.
//  2. '6C XX' (wrong length): the card suggests Le=XX; the client re-sends
//     the original command with the corrected Le.
//
// Send returns a Trace: the list of atomic transactions performed to fulfill
// the logical request.

// Transmitter abstracts the physical card connection.
type Transmitter interface {
	Transmit(cmd []byte) ([]byte, error)
}

// Client manages the high-level communication with the card.
type Client struct {
	Card Transmitter
}

// NewClient creates a new Client instance.
func NewClient(card Transmitter) *Client {
	return &Client{Card: card}
}

// Send transmits a command and handles the 61XX/6CXX protocol logic.
func (c *Client) Send(cmd *CommandAPDU) (Trace, error) {
	rawCmd, err := cmd.Bytes()
	if err != nil {
		return nil, fmt.Errorf("encoding error: %w", err)
	}

	rawResp, err := c.Card.Transmit(rawCmd)
	if err != nil {
		return nil, fmt.Errorf("transmission error: %w", err)
	}

	resp, err := ParseResponseAPDU(rawResp)
	if err != nil {
		return nil, err
	}

	trace := Trace{{Command: cmd, Response: resp}}

	sw1 := resp.Status.SW1()
	sw2 := resp.Status.SW2()

	// 61XX: retrieve the pending bytes on the same logical channel.
	if sw1 == 0x61 {
		getResp := NewCommandAPDU(cmd.Cla&0x03, InsGetResponse, 0x00, 0x00, nil, int(sw2))

		subTrace, err := c.Send(getResp)
		if err != nil {
			return trace, err
		}
		return append(trace, subTrace...), nil
	}

	// 6CXX: re-issue with the Le the card asked for.
	if sw1 == 0x6C {
		newCmd := *cmd
		newCmd.Ne = int(sw2)

		subTrace, err := c.Send(&newCmd)
		if err != nil {
			return trace, err
		}
		return append(trace, subTrace...), nil
	}

	return trace, nil
}
