// Package cardos5 implements the Atos CardOS 5 file system protocol: the
// vendor's BER-TLV Access Rule List (ARL) codec, the File Control Parameter
// (FCP) blobs consumed by CREATE FILE, the re-encoding of the card's raw
// elliptic curve signatures, and the thin command layer driving a card
// through an iso7816.Client.
//
// CardOS expresses per-file access control as an ARL: a sequence of records,
// each pairing an Access Mode Byte (identifying the governed operation) with
// a security condition ("always", "never", or "authenticate against PIN
// reference X"). The mapping between mode bytes and operations differs
// between DFs (directories) and working EFs (data files); this package keeps
// one table per file kind and a single codec parameterized by them.
package cardos5

// Card generations, distinguished by ATR. The generation matters to the
// signature re-encoder: V5.0 emits scratch bytes after each coordinate.
type CardType int

const (
	CardUnknown CardType = iota
	CardV5_0
	CardV5_3
)

func (t CardType) String() string {
	switch t {
	case CardV5_0:
		return "CardOS V5.0"
	case CardV5_3:
		return "CardOS V5.3"
	default:
		return "unknown card"
	}
}

// ARL record grammar.
const (
	arlAccessModeByteTag = 0x80
	arlAccessModeByteLen = 0x01
	arlCommandTag        = 0x81 // command header description: CLA INS P1 P2
	arlDummyTag          = 0x81
	arlDummyLen          = 0x00
	arlAlwaysTag         = 0x90
	arlAlwaysLen         = 0x00
	arlNeverTag          = 0x97
	arlNeverLen          = 0x00
	arlUserAuthTag       = 0xA4
	arlUserAuthLen       = 0x06
)

// Control reference template sub-tags used inside security conditions and
// MANAGE SECURITY ENVIRONMENT payloads.
const (
	crtTagPinRef = 0x83
	crtLenPinRef = 0x01
	crtTagKeyRef = 0x83
	crtTagKUQ    = 0x95
	crtLenKUQ    = 0x01

	kuqUserAuth = 0x08
	kuqDecrypt  = 0x40
)

// BacktrackPIN is the reserved high bit of a PIN/key reference. The card
// uses it for retry-counter backtracking; it is set on the wire by the PIN
// verification path and must never appear in codec-facing key references.
const BacktrackPIN = 0x80

// FCP template tags and file descriptor bytes.
const (
	fcpTagStart      = 0x62
	fcpTagEFSize     = 0x80
	fcpTagDFSize     = 0x81
	fcpTagDescriptor = 0x82
	fcpTagFileID     = 0x83
	fcpTagDFName     = 0x84
	fcpTagEFSFID     = 0x88
	fcpTagARL        = 0xAB

	fcpTypeDF       = 0x38
	fcpTypeBinaryEF = 0x01

	fciTag = 0x6F
)

// Access mode bytes for working EFs.
const (
	amEFDelete     = 0x40
	amEFTerminate  = 0x20
	amEFActivate   = 0x10
	amEFDeactivate = 0x08
	amEFWrite      = 0x04
	amEFUpdate     = 0x02
	amEFRead       = 0x01
	amEFIncrease   = 0x81
	amEFDecrease   = 0x82
)

// Access mode bytes for DFs.
const (
	amDFDeleteSelf       = 0x40
	amDFTerminate        = 0x20
	amDFActivate         = 0x10
	amDFDeactivate       = 0x08
	amDFCreateDF         = 0x04
	amDFCreateEF         = 0x02
	amDFDeleteChild      = 0x01
	amDFPutDataOCI       = 0x81
	amDFPutDataOCIUpdate = 0x82
	amDFLoadExecutable   = 0x84
	amDFPutDataFCI       = 0x88
)

// Command bytes.
const (
	insSelect          = 0xA4
	selectP1FileID     = 0x00
	selectP1FullPath   = 0x08
	selectP2FCI        = 0x00
	selectP2NoResponse = 0x0C

	insCreateFile = 0xE0

	insVerify = 0x20

	insManageSecurityEnv = 0x22
	mseP1Set             = 0x41
	mseP2Decipher        = 0xB8
	mseP2Sign            = 0xB6

	insPerformSecurityOp = 0x2A
	psoP1Sign            = 0x9E
	psoP2Sign            = 0x9A

	insPutData   = 0xDA
	putDataECDP1 = 0x01
	putDataECDP2 = 0x6E

	claProprietary = 0x80

	insPhaseControl      = 0x10
	phaseControlP1Toggle = 0x00
	phaseControlP2Toggle = 0x00

	insAccumulateObjectData = 0x5A
	accumulateP1New         = 0x01
	accumulateP1Append      = 0x00

	insGenerateKey        = 0x46
	generateKeyP1Generate = 0x80
	generateKeyP1Extract  = 0x84

	insSetDataFieldLength = 0x93
)
