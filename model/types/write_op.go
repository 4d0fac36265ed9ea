package types

import "fmt"

type WriteOpKind uint8

const (
	WriteOpCreation WriteOpKind = iota + 1
	WriteOpModification
	WriteOpDeletion
)

func (k WriteOpKind) String() string {
	switch k {
	case WriteOpCreation:
		return "creation"
	case WriteOpModification:
		return "modification"
	case WriteOpDeletion:
		return "deletion"
	default:
		return fmt.Sprintf("unknown(%d)", uint8(k))
	}
}

// WriteOp is the final operation for one state key.  Value is nil for
// deletions.
type WriteOp struct {
	Kind  WriteOpKind
	Value []byte
}

func Creation(value []byte) WriteOp {
	return WriteOp{Kind: WriteOpCreation, Value: value}
}

func Modification(value []byte) WriteOp {
	return WriteOp{Kind: WriteOpModification, Value: value}
}

func Deletion() WriteOp {
	return WriteOp{Kind: WriteOpDeletion}
}

// NewWriteOp classifies a write relative to the base state.  ok is false for
// writes which leave the base unchanged (a value created and deleted again).
func NewWriteOp(existsInBase bool, value []byte) (op WriteOp, ok bool) {
	switch {
	case value == nil && !existsInBase:
		return WriteOp{}, false
	case value == nil:
		return Deletion(), true
	case existsInBase:
		return Modification(value), true
	default:
		return Creation(value), true
	}
}

func (op WriteOp) clone() WriteOp {
	if op.Value != nil {
		op.Value = append([]byte{}, op.Value...)
	}
	return op
}

func (op WriteOp) IsDeletion() bool {
	return op.Kind == WriteOpDeletion
}

func (op WriteOp) String() string {
	if op.IsDeletion() {
		return op.Kind.String()
	}
	return fmt.Sprintf("%s(%d bytes)", op.Kind, len(op.Value))
}
