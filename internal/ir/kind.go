package ir

import (
	"encoding/json"
	"fmt"
)

// SignatureKind is the shape of an operation. It fully determines the
// variant payload, whether a parameter bundle and a reply channel exist, and
// the body of the client method.
type SignatureKind int

const (
	NoParamsNoReturn SignatureKind = iota
	NoParamsReturn
	ParamsNoReturn
	ParamsReturn
)

var kindNames = [...]string{
	NoParamsNoReturn: "no_params_no_return",
	NoParamsReturn:   "no_params_return",
	ParamsNoReturn:   "params_no_return",
	ParamsReturn:     "params_return",
}

// Classify derives the SignatureKind of op. Every combination is valid.
func Classify(op OperationSpec) SignatureKind {
	switch {
	case !op.HasParams() && !op.HasReturn():
		return NoParamsNoReturn
	case !op.HasParams():
		return NoParamsReturn
	case !op.HasReturn():
		return ParamsNoReturn
	default:
		return ParamsReturn
	}
}

// HasBundle reports whether operations of this kind get a parameter bundle.
func (k SignatureKind) HasBundle() bool {
	return k == ParamsNoReturn || k == ParamsReturn
}

// HasReply reports whether operations of this kind carry a reply channel.
func (k SignatureKind) HasReply() bool {
	return k == NoParamsReturn || k == ParamsReturn
}

func (k SignatureKind) String() string {
	if k < 0 || int(k) >= len(kindNames) {
		return fmt.Sprintf("SignatureKind(%d)", int(k))
	}
	return kindNames[k]
}

// MarshalJSON encodes the kind by name.
func (k SignatureKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// UnmarshalJSON decodes a kind name.
func (k *SignatureKind) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	for i, name := range kindNames {
		if name == s {
			*k = SignatureKind(i)
			return nil
		}
	}
	return fmt.Errorf("unknown signature kind %q", s)
}
