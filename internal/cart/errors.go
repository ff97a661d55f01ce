package cart

import (
	"errors"
	"fmt"
)

const (
	OpAdd    = "add"
	OpRemove = "remove"
	OpUpdate = "update"
)

// User-facing messages, one per failure class.
const (
	MsgStockExceeded = "Quantidade solicitada fora de estoque"
	MsgAddFailed     = "Erro na adição do produto"
	MsgRemoveFailed  = "Erro na remoção do produto"
	MsgUpdateFailed  = "Erro na alteração de quantidade do produto"
)

type Kind int

const (
	KindInsufficientStock Kind = iota + 1
	KindNotFound
	KindInvalidQuantity
	KindCollaborator
)

func (k Kind) String() string {
	switch k {
	case KindInsufficientStock:
		return "insufficient_stock"
	case KindNotFound:
		return "not_found"
	case KindInvalidQuantity:
		return "invalid_quantity"
	case KindCollaborator:
		return "collaborator_failure"
	default:
		return "unknown"
	}
}

var (
	ErrInsufficientStock = errors.New("insufficient stock")
	ErrNotFound          = errors.New("product not in cart")
	ErrInvalidQuantity   = errors.New("invalid quantity")
	ErrCollaborator      = errors.New("collaborator failure")
)

func (k Kind) sentinel() error {
	switch k {
	case KindInsufficientStock:
		return ErrInsufficientStock
	case KindNotFound:
		return ErrNotFound
	case KindInvalidQuantity:
		return ErrInvalidQuantity
	default:
		return ErrCollaborator
	}
}

// Error is returned by every failed cart operation. The cart is unchanged
// whenever one is returned.
type Error struct {
	Op        string
	Kind      Kind
	ProductID int
	Err       error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("cart %s product %d: %s", e.Op, e.ProductID, e.Kind.sentinel())
	}
	return fmt.Sprintf("cart %s product %d: %s: %v", e.Op, e.ProductID, e.Kind.sentinel(), e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// Message is the notification shown to the shopper for this failure.
func (e *Error) Message() string {
	return message(e.Op, e.Kind)
}

func message(op string, k Kind) string {
	if k == KindInsufficientStock {
		return MsgStockExceeded
	}
	switch op {
	case OpAdd:
		return MsgAddFailed
	case OpRemove:
		return MsgRemoveFailed
	default:
		return MsgUpdateFailed
	}
}

// KindOf reports the failure kind of err, or 0 when err is not a cart error.
func KindOf(err error) Kind {
	var ce *Error
	if errors.As(err, &ce) {
		return ce.Kind
	}
	return 0
}
