package iso7816

import (
	"fmt"

	"github.com/cardkit/cardos5/pkg/bits"
)

// Most status words are static two-byte values, but ISO 7816-4 defines
// ranges where SW2 carries context:
//
//	'61XX' process completed, XX response bytes available (GET RESPONSE)
//	'6CXX' wrong length, XX is the correct Le
//	'63CX' warning, low nibble of SW2 is a counter (e.g. PIN retries left)

// StatusWord represents the two-byte status (SW1-SW2) returned by the card.
type StatusWord uint16

// NewStatusWord creates a StatusWord from its two bytes.
func NewStatusWord(sw1, sw2 byte) StatusWord {
	return StatusWord(uint16(sw1)<<8 | uint16(sw2))
}

// SW1 returns the high byte of the status word.
func (sw StatusWord) SW1() byte {
	return byte(sw >> 8)
}

// SW2 returns the low byte of the status word.
func (sw StatusWord) SW2() byte {
	return byte(sw)
}

// IsSuccess returns true on 9000 or when response data is available (61XX).
func (sw StatusWord) IsSuccess() bool {
	return sw == SWNoError || sw.SW1() == 0x61
}

// IsWarning returns true for the 62XX and 63XX ranges.
func (sw StatusWord) IsWarning() bool {
	sw1 := sw.SW1()
	return sw1 == 0x62 || sw1 == 0x63
}

// IsError returns true for the 64XX to 6FXX ranges.
func (sw StatusWord) IsError() bool {
	sw1 := sw.SW1()
	return sw1 >= 0x64 && sw1 <= 0x6F
}

// IsCounter checks if SW2 encodes a retry counter (63CX).
func (sw StatusWord) IsCounter() bool {
	return sw.SW1() == 0x63 && bits.GetRange(sw.SW2(), 8, 5) == 0x0C
}

// Counter returns the counter value of a 63CX status word.
func (sw StatusWord) Counter() int {
	return int(bits.GetRange(sw.SW2(), 4, 1))
}

// Err converts the status word into an error, or nil if it reports success.
func (sw StatusWord) Err() error {
	if sw.IsSuccess() {
		return nil
	}
	return fmt.Errorf("card error: %s", sw.Verbose())
}

// Verbose returns a human-readable description, preferring the dynamic
// ISO ranges over the static code table.
func (sw StatusWord) Verbose() string {
	sw1 := sw.SW1()
	sw2 := sw.SW2()

	switch {
	case sw1 == 0x61:
		return fmt.Sprintf("Process completed, %d bytes available", sw2)
	case sw1 == 0x6C:
		return fmt.Sprintf("Wrong length, correct Le is %d", sw2)
	case sw.IsCounter():
		return fmt.Sprintf("Warning: counter = %d", sw.Counter())
	}

	if desc, ok := statusDescriptions[sw]; ok {
		return fmt.Sprintf("[%04X] %s", uint16(sw), desc)
	}
	return fmt.Sprintf("[%04X] %s", uint16(sw), sw.categoryDescription())
}

// categoryDescription is the fallback description based on SW1 alone.
func (sw StatusWord) categoryDescription() string {
	switch sw.SW1() {
	case 0x62:
		return "Warning: NV memory unchanged"
	case 0x63:
		return "Warning: NV memory changed"
	case 0x64:
		return "Execution error: NV memory unchanged"
	case 0x65:
		return "Execution error: NV memory changed"
	case 0x66:
		return "Execution error: security issue"
	case 0x68:
		return "Checking error: function not supported"
	case 0x69:
		return "Checking error: command not allowed"
	case 0x6A:
		return "Checking error: wrong parameters"
	default:
		return "Unknown status"
	}
}

// Status word codes from ISO/IEC 7816-4 met by the CardOS driver.
const (
	SWNoError StatusWord = 0x9000

	SWWarnFileDeactivated StatusWord = 0x6283
	SWWarnCounter0        StatusWord = 0x63C0

	SWErrMemoryFailure        StatusWord = 0x6581
	SWErrSecurityIssue        StatusWord = 0x6600
	SWErrWrongLength          StatusWord = 0x6700
	SWErrSecurityStatus       StatusWord = 0x6982
	SWErrAuthMethodBlocked    StatusWord = 0x6983
	SWErrConditionsNotMet     StatusWord = 0x6985
	SWErrIncorrectParamsData  StatusWord = 0x6A80
	SWErrFuncNotSupported     StatusWord = 0x6A81
	SWErrFileNotFound         StatusWord = 0x6A82
	SWErrRecordNotFound       StatusWord = 0x6A83
	SWErrNotEnoughMemory      StatusWord = 0x6A84
	SWErrIncorrectParamsP1P2  StatusWord = 0x6A86
	SWErrRefDataNotFound      StatusWord = 0x6A88
	SWErrFileAlreadyExists    StatusWord = 0x6A89
	SWErrWrongP1P2            StatusWord = 0x6B00
	SWErrInsInvalid           StatusWord = 0x6D00
	SWErrClaNotSupported      StatusWord = 0x6E00
	SWErrUnknown              StatusWord = 0x6F00
)

var statusDescriptions = map[StatusWord]string{
	SWNoError:                "OK",
	SWWarnFileDeactivated:    "Selected file deactivated",
	SWWarnCounter0:           "Verification failed, counter at 0",
	SWErrMemoryFailure:       "Memory failure",
	SWErrSecurityIssue:       "Security-related issue",
	SWErrWrongLength:         "Wrong length",
	SWErrSecurityStatus:      "Security status not satisfied",
	SWErrAuthMethodBlocked:   "Authentication method blocked",
	SWErrConditionsNotMet:    "Conditions of use not satisfied",
	SWErrIncorrectParamsData: "Incorrect parameters in data field",
	SWErrFuncNotSupported:    "Function not supported",
	SWErrFileNotFound:        "File or application not found",
	SWErrRecordNotFound:      "Record not found",
	SWErrNotEnoughMemory:     "Not enough memory space in the file",
	SWErrIncorrectParamsP1P2: "Incorrect parameters P1-P2",
	SWErrRefDataNotFound:     "Referenced data not found",
	SWErrFileAlreadyExists:   "File already exists",
	SWErrWrongP1P2:           "Wrong parameters P1-P2",
	SWErrInsInvalid:          "Instruction code not supported",
	SWErrClaNotSupported:     "Class not supported",
	SWErrUnknown:             "No precise diagnosis",
}
