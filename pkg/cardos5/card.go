package cardos5

import (
	"bytes"
	"fmt"

	"github.com/cardkit/cardos5/pkg/iso7816"
	"github.com/cardkit/cardos5/pkg/tlv"
)

// Known ATRs per card generation.
var atrTable = []struct {
	atr  []byte
	card CardType
}{
	{tlv.Hex("3B D2 18 00 81 31 FE 58 C9 01 14"), CardV5_0},
	{tlv.Hex("3B D2 18 00 81 31 FE 58 C9 03 16"), CardV5_3},
}

// MatchATR returns the card generation for an ATR, or CardUnknown.
func MatchATR(atr []byte) CardType {
	for _, e := range atrTable {
		if bytes.Equal(atr, e.atr) {
			return e.card
		}
	}
	return CardUnknown
}

// Card drives a CardOS 5 card through an iso7816 client. All methods are
// synchronous; the only state is the card generation.
type Card struct {
	Type   CardType
	client *iso7816.Client
}

// NewCard wraps a transmitter. The card type must be one of the known
// generations, normally obtained via MatchATR.
func NewCard(t iso7816.Transmitter, typ CardType) (*Card, error) {
	if typ != CardV5_0 && typ != CardV5_3 {
		return nil, fmt.Errorf("%w: invalid card type %d", ErrInvalidArguments, typ)
	}
	return &Card{Type: typ, client: iso7816.NewClient(t)}, nil
}

func (c *Card) send(cmd *iso7816.CommandAPDU) ([]byte, error) {
	trace, err := c.client.Send(cmd)
	if err != nil {
		return nil, fmt.Errorf("tx/rx error: %w", err)
	}
	if err := trace.Last().Response.Status.Err(); err != nil {
		return nil, err
	}
	return trace.Data(), nil
}

// Select selects a file by its absolute path and returns the parsed file
// metadata, including the ACL decoded from the security attribute in the
// response. The path must start with the MF id 3F00.
func (c *Card) Select(path []byte) (*File, error) {
	if len(path) < 2 || path[0] != 0x3F || path[1] != 0x00 {
		return nil, fmt.Errorf("%w: invalid path % X", ErrInvalidArguments, path)
	}

	var p1 byte
	data := path
	if len(path) == 2 {
		// Only 3F00 supplied; select the MF by file id.
		p1 = selectP1FileID
	} else {
		// The rest of the path is relative to the MF.
		p1 = selectP1FullPath
		data = path[2:]
	}

	cmd := iso7816.NewCommandAPDU(0x00, insSelect, p1, selectP2FCI, data, iso7816.MaxShortLe)
	resp, err := c.send(cmd)
	if err != nil {
		return nil, err
	}

	fci, ok := tlv.Find(resp, fciTag)
	if !ok {
		return nil, fmt.Errorf("%w: no FCI in select response", ErrNoCardSupport)
	}

	file, err := parseFCI(fci)
	if err != nil {
		return nil, err
	}
	file.FCI = resp

	return file, nil
}

// parseFCI extracts the file metadata this driver cares about from the
// content of an FCI template.
func parseFCI(fci []byte) (*File, error) {
	f := &File{Type: FileTypeWorkingEF, Structure: EFStructureTransparent}

	if desc, ok := tlv.Find(fci, fcpTagDescriptor); ok && len(desc) > 0 && desc[0] == fcpTypeDF {
		f.Type = FileTypeDF
	}

	if id, ok := tlv.Find(fci, fcpTagFileID); ok && len(id) == 2 {
		f.ID = int(id[0])<<8 | int(id[1])
	}

	sizeTag := byte(fcpTagEFSize)
	if f.Type == FileTypeDF {
		sizeTag = fcpTagDFSize
	}
	if size, ok := tlv.Find(fci, sizeTag); ok && len(size) == 2 {
		f.Size = int(size[0])<<8 | int(size[1])
	}

	if name, ok := tlv.Find(fci, fcpTagDFName); ok {
		f.Name = name
	}

	if sec, ok := tlv.Find(fci, fcpTagARL); ok && len(sec) != 0 {
		f.SecAttr = sec
		if err := ParseARL(f, sec); err != nil {
			return nil, fmt.Errorf("could not parse arl: %w", err)
		}
	}

	return f, nil
}

// CreateFile creates a file described by f under the currently selected DF.
func (c *Card) CreateFile(f *File) error {
	fcp, err := BuildFCP(f)
	if err != nil {
		return err
	}

	cmd := iso7816.NewCommandAPDU(0x00, insCreateFile, 0x00, 0x00, fcp, 0)
	_, err = c.send(cmd)
	return err
}

// SecOperation selects what a security environment is set up for.
type SecOperation int

const (
	SecOperationSign SecOperation = iota + 1
	SecOperationDecipher
)

// Algorithm is the key algorithm a security environment operates with.
type Algorithm int

const (
	AlgorithmRSA Algorithm = iota + 1
	AlgorithmEC
)

// SignSession is the evidence that a security environment has been set up.
// It is returned by SetSecurityEnv and consumed by ComputeSignature, so a
// signature can never be computed against an unknown algorithm state.
type SignSession struct {
	algorithm Algorithm
}

// SetSecurityEnv issues MANAGE SECURITY ENVIRONMENT for the given operation
// and key reference and returns the session for subsequent computations.
func (c *Card) SetSecurityEnv(op SecOperation, keyRef byte, alg Algorithm) (*SignSession, error) {
	var p2 byte
	switch op {
	case SecOperationSign:
		p2 = mseP2Sign
	case SecOperationDecipher:
		p2 = mseP2Decipher
	default:
		return nil, fmt.Errorf("%w: invalid security operation %d", ErrInvalidArguments, op)
	}

	crt := tlv.NewWriter(make([]byte, 16))
	if err := crt.PutTag1(crtTagKeyRef, keyRef); err != nil {
		return nil, err
	}
	if err := crt.PutTag1(crtTagKUQ, kuqDecrypt); err != nil {
		return nil, err
	}

	cmd := iso7816.NewCommandAPDU(0x00, insManageSecurityEnv, mseP1Set, p2, crt.Bytes(), 0)
	if _, err := c.send(cmd); err != nil {
		return nil, err
	}

	return &SignSession{algorithm: alg}, nil
}

// ComputeSignature signs data within the given session and returns at most
// outLen bytes. RSA output is returned as delivered by the card; EC output
// is re-encoded into the ASN.1 integer-pair form.
func (c *Card) ComputeSignature(sess *SignSession, data []byte, outLen int) ([]byte, error) {
	if sess == nil {
		return nil, fmt.Errorf("%w: no security environment set", ErrInvalidArguments)
	}
	if outLen < len(data) {
		return nil, fmt.Errorf("%w: invalid outlen %d", ErrBufferTooSmall, outLen)
	}

	cmd := iso7816.NewCommandAPDU(0x00, insPerformSecurityOp, psoP1Sign, psoP2Sign, data, outLen)
	resp, err := c.send(cmd)
	if err != nil {
		return nil, err
	}

	switch sess.algorithm {
	case AlgorithmRSA:
		return resp, nil
	case AlgorithmEC:
		return encodeECSignature(c.Type, resp, outLen)
	default:
		return nil, fmt.Errorf("%w: unknown algorithm %d", ErrInvalidArguments, sess.algorithm)
	}
}

// VerifyPIN presents a PIN for verification. The reference goes on the wire
// with the backtrack bit set, so the card keeps its retry counter; a caller
// reference already carrying the bit is rejected.
func (c *Card) VerifyPIN(ref byte, pin []byte) error {
	if ref&BacktrackPIN != 0 {
		return fmt.Errorf("%w: pin with backtrack bit set", ErrInvalidArguments)
	}

	cmd := iso7816.NewCommandAPDU(0x00, insVerify, 0x00, ref|BacktrackPIN, pin, 0)
	_, err := c.send(cmd)
	return err
}

// accumulateHashSize is the running hash the card returns after each
// ACCUMULATE OBJECT DATA chunk.
const accumulateHashSize = 32

// AccumulateObjectData transfers one chunk of an object in the two-phase
// accumulation protocol and returns the card's running hash. The first
// chunk allocates a new object; later chunks append.
func (c *Card) AccumulateObjectData(data []byte, appendToExisting bool) ([]byte, error) {
	p1 := byte(accumulateP1Append)
	if !appendToExisting {
		// New object: allocate and write.
		p1 = accumulateP1New
	}

	cmd := iso7816.NewCommandAPDU(claProprietary, insAccumulateObjectData, p1, 0x00, data, 64)
	resp, err := c.send(cmd)
	if err != nil {
		return nil, err
	}

	if len(resp) != accumulateHashSize+2 {
		return nil, fmt.Errorf("%w: unexpected accumulate reply (%d bytes)", ErrWrongLength, len(resp))
	}
	return resp[2:], nil
}

// GenerateKey asks the card to generate a key pair described by data.
func (c *Card) GenerateKey(data []byte) error {
	cmd := iso7816.NewCommandAPDU(0x00, insGenerateKey, generateKeyP1Generate, 0x00, data, 0)
	_, err := c.send(cmd)
	return err
}

// ExtractKey reads back the public part of a generated key.
func (c *Card) ExtractKey(data []byte) ([]byte, error) {
	cmd := iso7816.NewCommandAPDU(0x00, insGenerateKey, generateKeyP1Extract, 0x00, data, 768)
	return c.send(cmd)
}

// PutDataECD installs EC domain parameters.
func (c *Card) PutDataECD(data []byte) error {
	cmd := iso7816.NewCommandAPDU(0x00, insPutData, putDataECDP1, putDataECDP2, data, 0)
	_, err := c.send(cmd)
	return err
}

// InitCard stores the extended data field length in card EEPROM. It only
// takes effect after the next reset.
func (c *Card) InitCard() error {
	cmd := iso7816.NewCommandAPDU(claProprietary, insSetDataFieldLength, 0x03, 0x00, nil, 0)
	_, err := c.send(cmd)
	return err
}
