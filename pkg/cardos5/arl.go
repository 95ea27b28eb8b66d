package cardos5

import (
	"fmt"

	"github.com/cardkit/cardos5/pkg/bits"
	"github.com/cardkit/cardos5/pkg/tlv"
)

// writeCondition appends the security condition records for one ARL entry.
// Always and Never are zero-length tags; UserAuth is a template holding the
// PIN reference and a fixed "user authentication" usage qualifier.
func writeCondition(w *tlv.Writer, cond AccessCondition) error {
	switch cond.Method {
	case Always:
		return w.PutTag0(arlAlwaysTag)
	case Never:
		return w.PutTag0(arlNeverTag)
	case UserAuth:
		if cond.KeyRef < 0 || cond.KeyRef > 0xFF || cond.KeyRef&BacktrackPIN != 0 {
			return fmt.Errorf("%w: bad key reference %#x", ErrInvalidArguments, cond.KeyRef)
		}

		var crtBuf [16]byte
		crt := tlv.NewWriter(crtBuf[:])
		if err := crt.PutTag1(crtTagPinRef, byte(cond.KeyRef)); err != nil {
			return err
		}
		if err := crt.PutTag1(crtTagKUQ, kuqUserAuth); err != nil {
			return err
		}
		return w.PutTag(arlUserAuthTag, crt.Bytes())
	default:
		return fmt.Errorf("%w: unknown access method %d", ErrInvalidArguments, cond.Method)
	}
}

// buildARL emits one record per table row in canonical order: the row's
// access mode byte followed by the condition the caller recorded for the
// row's operation. Rows without a caller entry, and card-enforced rows,
// default to Never. Records are appended whole; a full buffer fails the
// build rather than dropping entries.
func buildARL(f *File, table AccessModeTable, w *tlv.Writer) error {
	for _, row := range table {
		cond := AccessCondition{Method: Never}
		if row.op != OpNone {
			if c, ok := f.ACL(row.op); ok {
				cond = c
			}
		}

		if err := w.PutTag1(arlAccessModeByteTag, row.amByte); err != nil {
			return err
		}
		if err := writeCondition(w, cond); err != nil {
			return err
		}
	}
	return nil
}

// ParseARL decodes a file's security attribute blob into its ACL entries,
// using the access mode table of the file's kind. The blob must be consumed
// exactly; trailing bytes are an error.
func ParseARL(f *File, arl []byte) error {
	switch f.Type {
	case FileTypeDF:
		// The MF is created with an ARL of { 81 00 90 00 }, meaning
		// "allow everything". The card reports it back as a 9-byte blob
		// ending in that sequence; expand it to Always for every mapped
		// operation.
		if len(arl) == 9 && arl[5] == arlDummyTag && arl[6] == arlDummyLen &&
			arl[7] == arlAlwaysTag && arl[8] == arlAlwaysLen {
			for _, row := range dfAccessModes {
				if row.op != OpNone {
					f.SetACL(row.op, AccessCondition{Method: Always})
				}
			}
			return nil
		}
		return parseARL(f, dfAccessModes, arl)
	case FileTypeWorkingEF:
		return parseARL(f, efAccessModes, arl)
	default:
		return fmt.Errorf("%w: invalid file type %d", ErrInvalidArguments, f.Type)
	}
}

func parseARL(f *File, table AccessModeTable, arl []byte) error {
	for len(arl) >= 5 {
		// Command records tag raw card commands (PHASE CONTROL,
		// ACCUMULATE OBJECT DATA, privileged PUT DATA). They carry no ACL
		// entry; skip the command header, its condition, and any embedded
		// authentication template. The template length comes from the
		// stream and is checked against the remaining input before the
		// cursor moves.
		if arl[0] == arlCommandTag {
			if len(arl) < 8 {
				return fmt.Errorf("%w: truncated command record", ErrWrongLength)
			}
			if arl[6] == arlUserAuthTag {
				skip := int(arl[7])
				if len(arl) < skip+8 {
					return fmt.Errorf("%w: command record skip beyond input", ErrWrongLength)
				}
				arl = arl[skip:]
			}
			arl = arl[8:]
			continue
		}

		if arl[0] != arlAccessModeByteTag || arl[1] != arlAccessModeByteLen {
			return fmt.Errorf("%w: unexpected tag %02X", ErrNoCardSupport, arl[0])
		}

		row, ok := table.lookup(arl[2])
		if !ok {
			return fmt.Errorf("%w: unknown access mode byte %02X", ErrNoCardSupport, arl[2])
		}

		var cond AccessCondition
		switch arl[3] {
		case arlAlwaysTag:
			if arl[4] != arlAlwaysLen {
				return fmt.Errorf("%w: malformed ALWAYS condition", ErrNoCardSupport)
			}
			cond = AccessCondition{Method: Always}
			arl = arl[5:]
		case arlNeverTag:
			if arl[4] != arlNeverLen {
				return fmt.Errorf("%w: malformed NEVER condition", ErrNoCardSupport)
			}
			cond = AccessCondition{Method: Never}
			arl = arl[5:]
		case arlUserAuthTag:
			if len(arl) < 11 {
				return fmt.Errorf("%w: truncated authentication template", ErrWrongLength)
			}
			if arl[4] != arlUserAuthLen ||
				arl[5] != crtTagPinRef || arl[6] != crtLenPinRef {
				return fmt.Errorf("%w: malformed PIN reference", ErrNoCardSupport)
			}
			if arl[8] != crtTagKUQ || arl[9] != crtLenKUQ || arl[10] != kuqUserAuth {
				return fmt.Errorf("%w: malformed key usage qualifier", ErrNoCardSupport)
			}
			cond = AccessCondition{Method: UserAuth, KeyRef: int(bits.Clear(arl[7], 8))}
			arl = arl[11:]
		default:
			return fmt.Errorf("%w: unknown condition tag %02X", ErrNoCardSupport, arl[3])
		}

		if row.op != OpNone {
			f.SetACL(row.op, cond)
		}
	}

	if len(arl) != 0 {
		return fmt.Errorf("%w: %d trailing bytes", ErrWrongLength, len(arl))
	}

	return nil
}
