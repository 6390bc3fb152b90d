package ipc

// Message type constants — must stay in sync with the game client's bridge
// plugin.
const (
	TypeHello    = "hello"
	TypeAck      = "ack"
	TypeSnapshot = "snapshot"
)

// HelloMessage opens a session. Board dimensions are optional — when the
// client omits them, perception degrades to unknown zones but keeps
// working.
type HelloMessage struct {
	Player      string `json:"player"`
	Deck        string `json:"deck,omitempty"`
	BoardWidth  int    `json:"board_width,omitempty"`
	BoardHeight int    `json:"board_height,omitempty"`
}

type AckMessage struct {
	Status string `json:"status"`
}
