package sim

import "fmt"

// InputKind enumerates the discrete commands a player can submit.
type InputKind uint8

const (
	InputBeginSelect InputKind = iota
	InputUpdateSelect
	InputCommitSelect
	InputIssueMove
)

func (k InputKind) String() string {
	switch k {
	case InputBeginSelect:
		return "begin-select"
	case InputUpdateSelect:
		return "update-select"
	case InputCommitSelect:
		return "commit-select"
	case InputIssueMove:
		return "issue-move"
	default:
		return fmt.Sprintf("input(%d)", uint8(k))
	}
}

// SelectShape picks how a drag gesture is interpreted.
type SelectShape uint8

const (
	ShapeRect   SelectShape = iota // axis-aligned box spanned by start and end
	ShapeCircle                    // circle centred on start through end
)

// InputEvent is one queued player command. Events are applied at the start
// of the next tick, in submission order.
type InputEvent struct {
	Kind   InputKind
	Player FactionID
	Point  Vec2
	Shape  SelectShape // BeginSelect only

	// Units optionally pins a move order to explicit ids instead of the
	// player's current selection. Stale or foreign ids are dropped.
	Units []UnitID
}

// BeginSelect starts a drag gesture at p.
func BeginSelect(player FactionID, p Vec2, shape SelectShape) InputEvent {
	return InputEvent{Kind: InputBeginSelect, Player: player, Point: p, Shape: shape}
}

// UpdateSelect moves the free corner of the active gesture.
func UpdateSelect(player FactionID, p Vec2) InputEvent {
	return InputEvent{Kind: InputUpdateSelect, Player: player, Point: p}
}

// CommitSelect ends the gesture at p and replaces the player's selection.
func CommitSelect(player FactionID, p Vec2) InputEvent {
	return InputEvent{Kind: InputCommitSelect, Player: player, Point: p}
}

// IssueMove orders the player's selected units to p.
func IssueMove(player FactionID, p Vec2) InputEvent {
	return InputEvent{Kind: InputIssueMove, Player: player, Point: p}
}

// IssueMoveUnits orders the listed units to p.
func IssueMoveUnits(player FactionID, p Vec2, ids []UnitID) InputEvent {
	return InputEvent{Kind: InputIssueMove, Player: player, Point: p, Units: append([]UnitID(nil), ids...)}
}
