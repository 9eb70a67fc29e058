// Copyright 2026 The ZPR Authors
// SPDX-License-Identifier: Apache-2.0

package policy

import (
	"fmt"
	"io"

	"github.com/zpr-foundation/zprproto/lib/codec"
	"github.com/zpr-foundation/zprproto/lib/wire"
)

// AttrOp is the comparison an attribute condition applies.
type AttrOp uint8

const (
	// OpHas matches when the key is present, regardless of value.
	OpHas AttrOp = iota
	// OpEq matches when the key's value equals the condition value.
	OpEq
)

func (op AttrOp) String() string {
	switch op {
	case OpHas:
		return "has"
	case OpEq:
		return "eq"
	default:
		return fmt.Sprintf("[unknown attr op %d]", uint8(op))
	}
}

// AttrExpr is one compiled attribute condition: a ZPL key, a
// comparison, and the value set.
type AttrExpr struct {
	Key    string   `cbor:"key"`
	Op     AttrOp   `cbor:"op"`
	Values []string `cbor:"value"`
}

// Conditions compiles attributes into condition expressions. An
// attribute with no value, an empty value, or multi-valued kind
// compiles to a presence check; otherwise to an equality check.
func Conditions(attrs []Attribute) []AttrExpr {
	exprs := make([]AttrExpr, len(attrs))
	for i, attr := range attrs {
		values := attr.ZPLValues()
		op := OpEq
		if len(values) == 0 || values[0] == "" || attr.IsMultiValued() {
			op = OpHas
		}
		exprs[i] = AttrExpr{Key: attr.ZPLKey(), Op: op, Values: values}
	}
	return exprs
}

// EncodeConditions compiles attrs and writes the condition list as
// deterministic CBOR into w. Attributes with unresolved domains are
// rejected.
func EncodeConditions(w io.Writer, attrs []Attribute) (int64, error) {
	for _, attr := range attrs {
		if attr.IsUnspecifiedDomain() {
			return 0, fmt.Errorf("%w: attribute %q has no domain", ErrInvalidDomain, attr.Name())
		}
	}
	counting := wire.NewCountingWriter(w)
	if err := codec.NewEncoder(counting).Encode(Conditions(attrs)); err != nil {
		return counting.Count(), &wire.Error{Op: "encode conditions", Err: err}
	}
	return counting.Count(), nil
}

// DecodeConditions is the left inverse of EncodeConditions.
func DecodeConditions(r io.Reader) ([]AttrExpr, error) {
	var exprs []AttrExpr
	if err := codec.NewDecoder(r).Decode(&exprs); err != nil {
		return nil, fmt.Errorf("decode conditions: %w", err)
	}
	return exprs, nil
}
