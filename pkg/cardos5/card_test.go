package cardos5

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/cardkit/cardos5/pkg/tlv"
)

// scriptedCard replays canned responses and records the commands it saw.
type scriptedCard struct {
	responses [][]byte
	sent      [][]byte
}

func (s *scriptedCard) Transmit(cmd []byte) ([]byte, error) {
	s.sent = append(s.sent, cmd)
	if len(s.responses) == 0 {
		return nil, errors.New("no scripted response left")
	}
	resp := s.responses[0]
	s.responses = s.responses[1:]
	return resp, nil
}

func respOK(parts ...string) []byte {
	return append(tlv.Hex(parts...), 0x90, 0x00)
}

func TestMatchATR(t *testing.T) {
	tests := []struct {
		name string
		atr  []byte
		want CardType
	}{
		{"v5.0", tlv.Hex("3B D2 18 00 81 31 FE 58 C9 01 14"), CardV5_0},
		{"v5.3", tlv.Hex("3B D2 18 00 81 31 FE 58 C9 03 16"), CardV5_3},
		{"foreign", tlv.Hex("3B 00"), CardUnknown},
		{"empty", nil, CardUnknown},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := MatchATR(tt.atr); got != tt.want {
				t.Errorf("MatchATR() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestNewCard_RejectsUnknownType(t *testing.T) {
	if _, err := NewCard(&scriptedCard{}, CardUnknown); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("NewCard() error = %v, want %v", err, ErrInvalidArguments)
	}
}

func TestCard_Select_MF(t *testing.T) {
	// FCI of the MF: file id, DF size, DF descriptor and the 9-byte
	// "allow everything" security attribute.
	card := &scriptedCard{responses: [][]byte{
		respOK("6F 16", "83 02 3F 00", "81 02 02 00", "82 01 38", "AB 09 00 00 00 00 00 81 00 90 00"),
	}}
	c, _ := NewCard(card, CardV5_3)

	f, err := c.Select(tlv.Hex("3F 00"))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	// Selecting the MF goes by file id, with the FCI requested back.
	want := tlv.Hex("00 A4 00 00 02 3F 00 00")
	if diff := cmp.Diff(want, card.sent[0]); diff != "" {
		t.Errorf("command mismatch (-want +got):\n%s", diff)
	}

	if f.Type != FileTypeDF {
		t.Errorf("Type = %v, want DF", f.Type)
	}
	if f.ID != 0x3F00 {
		t.Errorf("ID = %#x, want 0x3F00", f.ID)
	}
	if f.Size != 0x0200 {
		t.Errorf("Size = %#x, want 0x0200", f.Size)
	}
	if cond, okACL := f.ACL(OpCreate); !okACL || cond.Method != Always {
		t.Errorf("CREATE condition = %+v, %v; want Always", cond, okACL)
	}
	if diff := cmp.Diff(tlv.Hex("00 00 00 00 00 81 00 90 00"), f.SecAttr); diff != "" {
		t.Errorf("SecAttr mismatch (-want +got):\n%s", diff)
	}
}

func TestCard_Select_ByPath(t *testing.T) {
	card := &scriptedCard{responses: [][]byte{
		respOK("6F 0B", "83 02 50 15", "80 02 00 80", "82 01 01"),
	}}
	c, _ := NewCard(card, CardV5_3)

	f, err := c.Select(tlv.Hex("3F 00 50 15"))
	if err != nil {
		t.Fatalf("Select failed: %v", err)
	}

	// The MF id is stripped; the rest goes as a path from the MF.
	want := tlv.Hex("00 A4 08 00 02 50 15 00")
	if diff := cmp.Diff(want, card.sent[0]); diff != "" {
		t.Errorf("command mismatch (-want +got):\n%s", diff)
	}

	if f.Type != FileTypeWorkingEF || f.ID != 0x5015 || f.Size != 0x80 {
		t.Errorf("unexpected file: %+v", f)
	}
}

func TestCard_Select_BadPath(t *testing.T) {
	c, _ := NewCard(&scriptedCard{}, CardV5_3)

	for _, path := range [][]byte{nil, {0x3F}, tlv.Hex("50 15")} {
		if _, err := c.Select(path); !errors.Is(err, ErrInvalidArguments) {
			t.Errorf("Select(% X) error = %v, want %v", path, err, ErrInvalidArguments)
		}
	}
}

func TestCard_Select_StatusError(t *testing.T) {
	card := &scriptedCard{responses: [][]byte{{0x6A, 0x82}}}
	c, _ := NewCard(card, CardV5_3)

	if _, err := c.Select(tlv.Hex("3F 00")); err == nil {
		t.Error("Select succeeded on file-not-found status")
	}
}

func TestCard_CreateFile(t *testing.T) {
	card := &scriptedCard{responses: [][]byte{{0x90, 0x00}}}
	c, _ := NewCard(card, CardV5_3)

	f := &File{Type: FileTypeWorkingEF, ID: 0x0001, Size: 16}
	f.SetACL(OpRead, AccessCondition{Method: Always})

	if err := c.CreateFile(f); err != nil {
		t.Fatalf("CreateFile failed: %v", err)
	}

	sent := card.sent[0]
	header := tlv.Hex("00 E0 00 00")
	if diff := cmp.Diff(header, sent[:4]); diff != "" {
		t.Errorf("header mismatch (-want +got):\n%s", diff)
	}

	fcp, err := BuildFCP(f)
	if err != nil {
		t.Fatalf("BuildFCP failed: %v", err)
	}
	if diff := cmp.Diff(fcp, sent[5:]); diff != "" {
		t.Errorf("FCP payload mismatch (-want +got):\n%s", diff)
	}
	if int(sent[4]) != len(fcp) {
		t.Errorf("Lc = %d, want %d", sent[4], len(fcp))
	}
}

func TestCard_VerifyPIN(t *testing.T) {
	card := &scriptedCard{responses: [][]byte{{0x90, 0x00}}}
	c, _ := NewCard(card, CardV5_3)

	if err := c.VerifyPIN(0x01, []byte("1234")); err != nil {
		t.Fatalf("VerifyPIN failed: %v", err)
	}

	// The backtrack bit is ORed into the reference on the wire.
	want := tlv.Hex("00 20 00 81 04 31 32 33 34")
	if diff := cmp.Diff(want, card.sent[0]); diff != "" {
		t.Errorf("command mismatch (-want +got):\n%s", diff)
	}
}

func TestCard_VerifyPIN_RejectsBacktrackRef(t *testing.T) {
	card := &scriptedCard{}
	c, _ := NewCard(card, CardV5_3)

	if err := c.VerifyPIN(0x81, []byte("1234")); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("VerifyPIN() error = %v, want %v", err, ErrInvalidArguments)
	}
	if len(card.sent) != 0 {
		t.Error("VerifyPIN transmitted despite invalid reference")
	}
}

func TestCard_SignFlow_EC(t *testing.T) {
	x := coordinate(0x01, 32)
	y := coordinate(0x02, 32)
	rawSig := append(append([]byte{}, x...), y...)

	card := &scriptedCard{responses: [][]byte{
		{0x90, 0x00}, // MANAGE SECURITY ENVIRONMENT
		append(append([]byte{}, rawSig...), 0x90, 0x00),
	}}
	c, _ := NewCard(card, CardV5_3)

	sess, err := c.SetSecurityEnv(SecOperationSign, 0x10, AlgorithmEC)
	if err != nil {
		t.Fatalf("SetSecurityEnv failed: %v", err)
	}

	wantMSE := tlv.Hex("00 22 41 B6 06 83 01 10 95 01 40")
	if diff := cmp.Diff(wantMSE, card.sent[0]); diff != "" {
		t.Errorf("MSE command mismatch (-want +got):\n%s", diff)
	}

	hash := make([]byte, 32)
	sig, err := c.ComputeSignature(sess, hash, 256)
	if err != nil {
		t.Fatalf("ComputeSignature failed: %v", err)
	}

	// 00 2A 9E 9A Lc hash Le
	pso := card.sent[1]
	if diff := cmp.Diff(tlv.Hex("00 2A 9E 9A 20"), pso[:5]); diff != "" {
		t.Errorf("PSO header mismatch (-want +got):\n%s", diff)
	}

	var want []byte
	want = append(want, 0x30, 0x44, 0x02, 0x20)
	want = append(want, x...)
	want = append(want, 0x02, 0x20)
	want = append(want, y...)
	if diff := cmp.Diff(want, sig); diff != "" {
		t.Errorf("signature mismatch (-want +got):\n%s", diff)
	}
}

func TestCard_SignFlow_RSA_Passthrough(t *testing.T) {
	raw := make([]byte, 128)
	for i := range raw {
		raw[i] = byte(i)
	}

	card := &scriptedCard{responses: [][]byte{
		{0x90, 0x00},
		append(append([]byte{}, raw...), 0x90, 0x00),
	}}
	c, _ := NewCard(card, CardV5_3)

	sess, err := c.SetSecurityEnv(SecOperationSign, 0x11, AlgorithmRSA)
	if err != nil {
		t.Fatalf("SetSecurityEnv failed: %v", err)
	}

	sig, err := c.ComputeSignature(sess, make([]byte, 32), 128)
	if err != nil {
		t.Fatalf("ComputeSignature failed: %v", err)
	}
	if diff := cmp.Diff(raw, sig); diff != "" {
		t.Errorf("RSA signature not passed through (-want +got):\n%s", diff)
	}
}

func TestCard_ComputeSignature_Errors(t *testing.T) {
	c, _ := NewCard(&scriptedCard{}, CardV5_3)

	if _, err := c.ComputeSignature(nil, make([]byte, 32), 256); !errors.Is(err, ErrInvalidArguments) {
		t.Errorf("nil session: error = %v, want %v", err, ErrInvalidArguments)
	}

	sess := &SignSession{algorithm: AlgorithmEC}
	if _, err := c.ComputeSignature(sess, make([]byte, 32), 16); !errors.Is(err, ErrBufferTooSmall) {
		t.Errorf("small outlen: error = %v, want %v", err, ErrBufferTooSmall)
	}
}

func TestCard_AccumulateObjectData(t *testing.T) {
	hash := make([]byte, accumulateHashSize)
	for i := range hash {
		hash[i] = byte(0xA0 + i)
	}
	resp := append([]byte{0x00, 0x20}, hash...)

	card := &scriptedCard{responses: [][]byte{
		append(append([]byte{}, resp...), 0x90, 0x00),
	}}
	c, _ := NewCard(card, CardV5_3)

	got, err := c.AccumulateObjectData([]byte{0x01, 0x02, 0x03}, false)
	if err != nil {
		t.Fatalf("AccumulateObjectData failed: %v", err)
	}

	// First chunk allocates a new object: P1 is 01.
	wantCmd := tlv.Hex("80 5A 01 00 03 01 02 03 40")
	if diff := cmp.Diff(wantCmd, card.sent[0]); diff != "" {
		t.Errorf("command mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(hash, got); diff != "" {
		t.Errorf("hash mismatch (-want +got):\n%s", diff)
	}
}

func TestCard_AccumulateObjectData_ShortReply(t *testing.T) {
	card := &scriptedCard{responses: [][]byte{respOK("00 20 AA BB")}}
	c, _ := NewCard(card, CardV5_3)

	if _, err := c.AccumulateObjectData([]byte{0x01}, true); !errors.Is(err, ErrWrongLength) {
		t.Errorf("AccumulateObjectData() error = %v, want %v", err, ErrWrongLength)
	}
}

func TestCard_GenerateKey(t *testing.T) {
	card := &scriptedCard{responses: [][]byte{{0x90, 0x00}}}
	c, _ := NewCard(card, CardV5_3)

	if err := c.GenerateKey(tlv.Hex("83 01 10")); err != nil {
		t.Fatalf("GenerateKey failed: %v", err)
	}

	want := tlv.Hex("00 46 80 00 03 83 01 10")
	if diff := cmp.Diff(want, card.sent[0]); diff != "" {
		t.Errorf("command mismatch (-want +got):\n%s", diff)
	}
}

func TestCard_ExtractKey(t *testing.T) {
	pub := make([]byte, 64)
	card := &scriptedCard{responses: [][]byte{
		append(append([]byte{}, pub...), 0x90, 0x00),
	}}
	c, _ := NewCard(card, CardV5_3)

	got, err := c.ExtractKey(tlv.Hex("83 01 10"))
	if err != nil {
		t.Fatalf("ExtractKey failed: %v", err)
	}

	// Ne over 256 forces the extended encoding for both Lc and Le.
	want := tlv.Hex("00 46 84 00 00 00 03 83 01 10 03 00")
	if diff := cmp.Diff(want, card.sent[0]); diff != "" {
		t.Errorf("command mismatch (-want +got):\n%s", diff)
	}
	if diff := cmp.Diff(pub, got); diff != "" {
		t.Errorf("key data mismatch (-want +got):\n%s", diff)
	}
}

func TestCard_PutDataECD(t *testing.T) {
	card := &scriptedCard{responses: [][]byte{{0x90, 0x00}}}
	c, _ := NewCard(card, CardV5_3)

	if err := c.PutDataECD(tlv.Hex("AA BB")); err != nil {
		t.Fatalf("PutDataECD failed: %v", err)
	}

	want := tlv.Hex("00 DA 01 6E 02 AA BB")
	if diff := cmp.Diff(want, card.sent[0]); diff != "" {
		t.Errorf("command mismatch (-want +got):\n%s", diff)
	}
}

func TestCard_InitCard(t *testing.T) {
	card := &scriptedCard{responses: [][]byte{{0x90, 0x00}}}
	c, _ := NewCard(card, CardV5_3)

	if err := c.InitCard(); err != nil {
		t.Fatalf("InitCard failed: %v", err)
	}

	want := tlv.Hex("80 93 03 00")
	if diff := cmp.Diff(want, card.sent[0]); diff != "" {
		t.Errorf("command mismatch (-want +got):\n%s", diff)
	}
}
