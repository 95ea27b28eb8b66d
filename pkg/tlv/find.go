package tlv

// Find scans the top level of a BER-TLV buffer for a record with the given
// tag and returns its value field verbatim. The second return value reports
// whether the tag was found. Records past a malformed tag or length field
// are unreachable, so a truncated buffer simply yields a miss.
//
// Only single-byte tags are searched; multi-byte tags present in the buffer
// are skipped over correctly but cannot be the target.
func Find(data []byte, tag byte) ([]byte, bool) {
	for len(data) >= 2 {
		t := data[0]
		data = data[1:]

		// Multi-byte tag: consume subsequent tag bytes.
		if t&0x1F == 0x1F {
			for len(data) > 0 && data[0]&0x80 != 0 {
				data = data[1:]
			}
			if len(data) == 0 {
				return nil, false
			}
			data = data[1:] // final tag byte
			t = 0x00        // cannot match a single-byte target
			if len(data) == 0 {
				return nil, false
			}
		}

		n, rest, ok := readLength(data)
		if !ok || n > len(rest) {
			return nil, false
		}

		if t == tag {
			return rest[:n], true
		}
		data = rest[n:]
	}

	return nil, false
}

// readLength decodes a BER length field, returning the content length and
// the bytes following the length field.
func readLength(data []byte) (int, []byte, bool) {
	if len(data) == 0 {
		return 0, nil, false
	}

	switch b := data[0]; {
	case b < 0x80:
		return int(b), data[1:], true
	case b == 0x81:
		if len(data) < 2 {
			return 0, nil, false
		}
		return int(data[1]), data[2:], true
	case b == 0x82:
		if len(data) < 3 {
			return 0, nil, false
		}
		return int(data[1])<<8 | int(data[2]), data[3:], true
	default:
		// Longer forms never occur in card responses we handle.
		return 0, nil, false
	}
}
