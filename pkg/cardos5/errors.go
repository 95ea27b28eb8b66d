package cardos5

import (
	"errors"

	"github.com/cardkit/cardos5/pkg/tlv"
)

// Error kinds surfaced by the codec and driver. All failures wrap one of
// these sentinels, so callers classify with errors.Is. Operations either
// complete fully or report an error with nothing produced; nothing is
// retried here, retry policy belongs to the transport.
var (
	// ErrBufferTooSmall reports that a blob would exceed a buffer's
	// capacity or the BER length ceiling. Aliased to the tlv writer's
	// error so capacity failures match at every layer.
	ErrBufferTooSmall = tlv.ErrBufferTooSmall

	// ErrInvalidArguments reports caller errors: out-of-range file ids or
	// sizes, malformed key references, unsupported file or storage kinds.
	ErrInvalidArguments = errors.New("cardos5: invalid arguments")

	// ErrNoCardSupport reports card data this codec cannot interpret: an
	// unknown access mode byte or a condition outside the ARL grammar.
	ErrNoCardSupport = errors.New("cardos5: no card support")

	// ErrWrongLength reports truncated or trailing bytes in card data.
	ErrWrongLength = errors.New("cardos5: wrong length")
)
