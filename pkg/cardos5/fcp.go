package cardos5

import (
	"fmt"

	"github.com/cardkit/cardos5/pkg/tlv"
)

// Scratch buffer capacities for FCP assembly. A full DF ARL (eleven rows
// plus four command records) stays within 128 bytes; the enclosing FCP
// body adds the descriptor, size, name and file id records on top.
const (
	dfARLBufSize = 128
	efARLBufSize = 96
	fcpBufSize   = 192
)

// BuildFCP assembles the File Control Parameter blob describing f, the data
// field of a CREATE FILE command: the kind-specific body wrapped together
// with the 2-byte file id in the FCP template tag. File id and size must
// fit 16 bits; they are never truncated.
func BuildFCP(f *File) ([]byte, error) {
	fcp := tlv.NewWriter(make([]byte, fcpBufSize))

	var err error
	switch f.Type {
	case FileTypeDF:
		err = buildDFFCP(f, fcp)
	case FileTypeWorkingEF:
		err = buildEFFCP(f, fcp)
	default:
		return nil, fmt.Errorf("%w: unsupported file type %d", ErrInvalidArguments, f.Type)
	}
	if err != nil {
		return nil, fmt.Errorf("could not construct fcp: %w", err)
	}

	if f.ID < 0 || f.ID > 0xFFFF {
		return nil, fmt.Errorf("%w: invalid file id %#x", ErrInvalidArguments, f.ID)
	}
	fileID := []byte{byte(f.ID >> 8), byte(f.ID)}
	if err := fcp.PutTag(fcpTagFileID, fileID); err != nil {
		return nil, err
	}

	out := tlv.NewWriter(make([]byte, fcpBufSize+4))
	if err := out.PutTag(fcpTagStart, fcp.Bytes()); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

func buildDFFCP(f *File, fcp *tlv.Writer) error {
	if f.Size < 0 || f.Size > 0xFFFF {
		return fmt.Errorf("%w: df size too large: %d", ErrInvalidArguments, f.Size)
	}
	dfSize := []byte{byte(f.Size >> 8), byte(f.Size)}

	if err := fcp.PutTag1(fcpTagDescriptor, fcpTypeDF); err != nil {
		return err
	}
	if err := fcp.PutTag(fcpTagDFSize, dfSize); err != nil {
		return err
	}
	if len(f.Name) != 0 {
		if err := fcp.PutTag(fcpTagDFName, f.Name); err != nil {
			return err
		}
	}

	arl := tlv.NewWriter(make([]byte, dfARLBufSize))

	// Privileged PUT DATA of EC domain parameters is opened up only when
	// the caller grants update on the DF, under that same condition.
	if cond, ok := f.ACL(OpUpdate); ok {
		cmd := []byte{0x00, insPutData, putDataECDP1, putDataECDP2}
		if err := arl.PutTag(arlCommandTag, cmd); err != nil {
			return err
		}
		if err := writeCondition(arl, cond); err != nil {
			return err
		}
	}

	if err := buildARL(f, dfAccessModes, arl); err != nil {
		return err
	}

	// Lifecycle toggling through PHASE CONTROL is always allowed for
	// this DF.
	cmd := []byte{claProprietary, insPhaseControl, phaseControlP1Toggle, phaseControlP2Toggle}
	if err := arl.PutTag(arlCommandTag, cmd); err != nil {
		return err
	}
	if err := arl.PutTag0(arlAlwaysTag); err != nil {
		return err
	}

	// Always allow ACCUMULATE OBJECT DATA for new objects.
	cmd = []byte{claProprietary, insAccumulateObjectData, accumulateP1New, 0x00}
	if err := arl.PutTag(arlCommandTag, cmd); err != nil {
		return err
	}
	if err := arl.PutTag0(arlAlwaysTag); err != nil {
		return err
	}

	// And for appending to existing objects.
	cmd[2] = accumulateP1Append
	if err := arl.PutTag(arlCommandTag, cmd); err != nil {
		return err
	}
	if err := arl.PutTag0(arlAlwaysTag); err != nil {
		return err
	}

	return fcp.PutTag(fcpTagARL, arl.Bytes())
}

func buildEFFCP(f *File, fcp *tlv.Writer) error {
	if f.Structure != EFStructureTransparent {
		return fmt.Errorf("%w: unsupported ef structure %d", ErrInvalidArguments, f.Structure)
	}
	if f.Size < 0 || f.Size > 0xFFFF {
		return fmt.Errorf("%w: ef size too large: %d", ErrInvalidArguments, f.Size)
	}
	efSize := []byte{byte(f.Size >> 8), byte(f.Size)}

	if err := fcp.PutTag1(fcpTagDescriptor, fcpTypeBinaryEF); err != nil {
		return err
	}
	if err := fcp.PutTag(fcpTagEFSize, efSize); err != nil {
		return err
	}
	// Empty short file id: the card assigns one.
	if err := fcp.PutTag0(fcpTagEFSFID); err != nil {
		return err
	}

	arl := tlv.NewWriter(make([]byte, efARLBufSize))
	if err := buildARL(f, efAccessModes, arl); err != nil {
		return err
	}

	return fcp.PutTag(fcpTagARL, arl.Bytes())
}
