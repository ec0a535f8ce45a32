package cart

import (
	"fmt"

	"github.com/MadridBabajev/ShoppingCart/internal/apperr"
)

// Action enumerates what can be done to a cart line through the single
// dispatch endpoint.
type Action int

const (
	ActionIncrement Action = iota + 1
	ActionDecrement
	ActionSetAmount
)

func (a Action) String() string {
	switch a {
	case ActionIncrement:
		return "increment"
	case ActionDecrement:
		return "decrement"
	case ActionSetAmount:
		return "set_amount"
	default:
		return fmt.Sprintf("action(%d)", int(a))
	}
}

func ParseAction(s string) (Action, error) {
	switch s {
	case "increment":
		return ActionIncrement, nil
	case "decrement":
		return ActionDecrement, nil
	case "set_amount":
		return ActionSetAmount, nil
	default:
		return 0, fmt.Errorf("unknown cart action %q: %w", s, apperr.ErrInvalidArgument)
	}
}
