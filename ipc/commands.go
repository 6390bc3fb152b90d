package ipc

// Command type constants — must stay in sync with the game client's action
// channel. Submission is one opaque, uniquely-identified action per write;
// this side never owns any deeper wire detail.
const (
	TypeSubmitAction = "submit_action"
)

// SubmitActionCommand queues one legal action by its engine-assigned ID.
// Fire-and-forget: the result shows up in the next snapshot.
type SubmitActionCommand struct {
	ActionID int `json:"action_id"`
}
