package iso7816

// A Transaction is the atomic unit of ISO 7816-3 communication: one command
// APDU followed by one response APDU. A Trace is the chronological sequence
// of transactions behind a single logical operation; transport mechanisms
// like '61 XX' and '6C XX' can turn one logical request into several
// physical exchanges, and IsSuccess evaluates the final outcome.

// Transaction represents a completed command-response pair.
type Transaction struct {
	Command  *CommandAPDU
	Response *ResponseAPDU
}

// IsSuccess checks if the transaction ended with a successful status.
// It returns false if the response is missing.
func (t *Transaction) IsSuccess() bool {
	if t.Response == nil {
		return false
	}
	return t.Response.Status.IsSuccess()
}

// Trace is a sequence of transactions forming one logical exchange.
type Trace []Transaction

// Last returns the final transaction of the trace, or nil if empty.
func (t Trace) Last() *Transaction {
	if len(t) == 0 {
		return nil
	}
	return &t[len(t)-1]
}

// IsSuccess checks if the final transaction in the trace was successful,
// regardless of intermediate warnings along the way.
func (t Trace) IsSuccess() bool {
	last := t.Last()
	if last == nil {
		return false
	}
	return last.IsSuccess()
}

// Data returns the response payload of the final transaction.
func (t Trace) Data() []byte {
	last := t.Last()
	if last == nil || last.Response == nil {
		return nil
	}
	return last.Response.Data
}
