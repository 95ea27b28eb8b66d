package tlv

import (
	"fmt"
	"strings"

	"github.com/moov-io/bertlv"
)

// Describe renders a BER-TLV buffer as an indented tree for debugging.
// Constructed records recurse into their children; primitive values are
// shown as hex with a printable-ASCII hint. If the buffer does not decode
// as TLV it is dumped as a flat hex string.
func Describe(data []byte) string {
	packets, err := bertlv.Decode(data)
	if err != nil {
		return fmt.Sprintf("(not TLV) %X", data)
	}

	var sb strings.Builder
	describePackets(&sb, packets, 0)
	return sb.String()
}

func describePackets(sb *strings.Builder, packets []bertlv.TLV, depth int) {
	indent := strings.Repeat("  ", depth)

	for _, p := range packets {
		if len(p.TLVs) > 0 {
			fmt.Fprintf(sb, "%s%s:\n", indent, strings.ToUpper(p.Tag))
			describePackets(sb, p.TLVs, depth+1)
			continue
		}

		fmt.Fprintf(sb, "%s%s: %X", indent, strings.ToUpper(p.Tag), p.Value)
		if ascii := safeASCII(p.Value); ascii != "" {
			fmt.Fprintf(sb, " (%q)", ascii)
		}
		sb.WriteString("\n")
	}
}

// safeASCII returns the value as printable ASCII, or "" if fewer than half
// of its bytes are printable.
func safeASCII(data []byte) string {
	if len(data) == 0 {
		return ""
	}

	printable := 0
	mapped := strings.Map(func(r rune) rune {
		if r >= 32 && r <= 126 {
			printable++
			return r
		}
		return '.'
	}, string(data))

	if printable*2 < len(data) {
		return ""
	}
	return mapped
}
