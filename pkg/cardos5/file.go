package cardos5

// FileType is the kind of card file.
type FileType int

const (
	FileTypeUnknown FileType = iota
	FileTypeDF
	FileTypeWorkingEF
)

func (t FileType) String() string {
	switch t {
	case FileTypeDF:
		return "DF"
	case FileTypeWorkingEF:
		return "EF"
	default:
		return "unknown"
	}
}

// EFStructure is the storage structure of a working EF. Only transparent
// (flat binary) files are supported by this driver.
type EFStructure int

const (
	EFStructureTransparent EFStructure = iota
	EFStructureLinearFixed
	EFStructureCyclic
)

// File describes a card file: the input to CreateFile and the output of
// Select. A File is caller-owned, carries no card state and may be
// discarded after use.
type File struct {
	Type      FileType
	ID        int
	Size      int
	Name      []byte      // DF name, optional
	Structure EFStructure // EFs only

	// FCI and SecAttr hold the raw metadata returned by Select: the full
	// file control information and the security attribute blob (the ARL)
	// extracted from it.
	FCI     []byte
	SecAttr []byte

	acl []ACLEntry
}

// ACL returns the access condition recorded for op.
func (f *File) ACL(op AccessOperation) (AccessCondition, bool) {
	for _, e := range f.acl {
		if e.Op == op {
			return e.Cond, true
		}
	}
	return AccessCondition{}, false
}

// SetACL records the access condition for op, replacing any previous entry
// so each operation carries at most one condition.
func (f *File) SetACL(op AccessOperation, cond AccessCondition) {
	for i := range f.acl {
		if f.acl[i].Op == op {
			f.acl[i].Cond = cond
			return
		}
	}
	f.acl = append(f.acl, ACLEntry{Op: op, Cond: cond})
}

// ACLEntries returns a copy of the recorded entries in insertion order.
func (f *File) ACLEntries() []ACLEntry {
	out := make([]ACLEntry, len(f.acl))
	copy(out, f.acl)
	return out
}
