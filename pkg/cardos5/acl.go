package cardos5

// AccessOperation identifies a semantic file operation governed by an
// access condition.
type AccessOperation int

const (
	// OpNone marks access mode table rows the card enforces on its own;
	// they never appear in an ACL entry.
	OpNone AccessOperation = iota
	OpRead
	OpUpdate
	OpWrite
	OpDelete
	OpCreate
	OpActivate
	OpDeactivate
)

func (op AccessOperation) String() string {
	switch op {
	case OpRead:
		return "READ"
	case OpUpdate:
		return "UPDATE"
	case OpWrite:
		return "WRITE"
	case OpDelete:
		return "DELETE"
	case OpCreate:
		return "CREATE"
	case OpActivate:
		return "ACTIVATE"
	case OpDeactivate:
		return "DEACTIVATE"
	default:
		return "NONE"
	}
}

// AccessMethod is the kind of security condition attached to an operation.
type AccessMethod int

const (
	// Always allows the operation unconditionally.
	Always AccessMethod = iota
	// Never forbids the operation.
	Never
	// UserAuth requires prior verification of the referenced PIN.
	UserAuth
)

// AccessCondition is the decoded security condition for one operation.
// KeyRef is only meaningful for UserAuth and must fit one byte without the
// backtrack bit.
type AccessCondition struct {
	Method AccessMethod
	KeyRef int
}

// ACLEntry pairs an operation with its access condition.
type ACLEntry struct {
	Op   AccessOperation
	Cond AccessCondition
}

// accessMode is one row of an access mode table: the wire code and the
// operation it governs, OpNone when the row is card-enforced only.
type accessMode struct {
	amByte byte
	op     AccessOperation
}

// AccessModeTable is the ordered per-file-kind mapping between access mode
// bytes and operations. The order is the canonical ARL record order;
// amByte values are unique within a table.
type AccessModeTable []accessMode

func (t AccessModeTable) lookup(amByte byte) (accessMode, bool) {
	for _, row := range t {
		if row.amByte == amByte {
			return row, true
		}
	}
	return accessMode{}, false
}

// efAccessModes governs working EFs.
var efAccessModes = AccessModeTable{
	{amEFDelete, OpDelete},
	{amEFTerminate, OpNone},
	{amEFActivate, OpActivate},
	{amEFDeactivate, OpDeactivate},
	{amEFWrite, OpWrite},
	{amEFUpdate, OpUpdate},
	{amEFRead, OpRead},
	{amEFIncrease, OpNone},
	{amEFDecrease, OpNone},
}

// dfAccessModes governs DFs. Several rows fan out from the same operation:
// a CREATE condition applies to DF creation, EF creation and object
// installation alike.
var dfAccessModes = AccessModeTable{
	{amDFDeleteSelf, OpDelete},
	{amDFTerminate, OpNone},
	{amDFActivate, OpActivate},
	{amDFDeactivate, OpDeactivate},
	{amDFCreateDF, OpCreate},
	{amDFCreateEF, OpCreate},
	{amDFDeleteChild, OpNone},
	{amDFPutDataOCI, OpCreate},
	{amDFPutDataOCIUpdate, OpUpdate},
	{amDFLoadExecutable, OpNone},
	{amDFPutDataFCI, OpCreate},
}
