package enum

import "github.com/yanun0323/errors"

// OperationKind describes the direction of a completed trade.
type OperationKind uint8

const (
	_operation_kind_beg OperationKind = iota
	OperationBuy
	OperationSell
	_operation_kind_end
)

func (k OperationKind) IsAvailable() bool {
	return k > _operation_kind_beg && k < _operation_kind_end
}

func (k OperationKind) String() string {
	switch k {
	case OperationBuy:
		return "BUY"
	case OperationSell:
		return "SELL"
	default:
		return "UNKNOWN"
	}
}

// MarshalJSON encodes the kind as its wire name.
func (k OperationKind) MarshalJSON() ([]byte, error) {
	return []byte(`"` + k.String() + `"`), nil
}

// UnmarshalJSON decodes a wire name back into a kind.
func (k *OperationKind) UnmarshalJSON(data []byte) error {
	switch string(data) {
	case `"BUY"`:
		*k = OperationBuy
	case `"SELL"`:
		*k = OperationSell
	default:
		return errors.Errorf("unknown operation kind: %s", string(data))
	}
	return nil
}
