package session

import "context"

// Action is what a key press does in a mounted labeling session.
type Action int

// Key actions.
const (
	ActionNone Action = iota
	ActionToggle
	ActionPrev
	ActionNext
	ActionSave
)

// Binding is the action bound to a key. Position is the 1-based boolean
// label position for ActionToggle.
type Binding struct {
	Action   Action
	Position int
}

// BindingForKey maps a key name to its binding. Digits 1 to 9 toggle the
// boolean labels at those positions and 0 toggles the tenth.
func BindingForKey(key string) Binding {
	switch key {
	case "a":
		return Binding{Action: ActionPrev}
	case "d":
		return Binding{Action: ActionNext}
	case " ", "space":
		return Binding{Action: ActionSave}
	case "0":
		return Binding{Action: ActionToggle, Position: 10}
	}

	if len(key) == 1 && key[0] >= '1' && key[0] <= '9' {
		return Binding{Action: ActionToggle, Position: int(key[0] - '0')}
	}

	return Binding{}
}

// HandleKey runs the operation bound to key. Unbound keys return the current
// state unchanged.
func (c *Controller) HandleKey(ctx context.Context, key string) (State, error) {
	b := BindingForKey(key)

	switch b.Action {
	case ActionToggle:
		return c.SelectBooleanLabel(b.Position), nil
	case ActionPrev:
		return c.Prev(ctx)
	case ActionNext:
		return c.Next(ctx)
	case ActionSave:
		return c.SaveAndContinue(ctx)
	default:
		return c.State(), nil
	}
}
