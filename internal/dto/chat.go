package dto

import "time"

// Update is one inbound chat event delivered by the transport: either a
// text message or an inline-keyboard callback, never both.
type Update struct {
	UserID    string    `json:"userId"`
	Text      string    `json:"text,omitempty"`
	Callback  string    `json:"callback,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

type Button struct {
	Label string `json:"label"`
	Data  string `json:"data"`
}

// Reply is the transport-agnostic outbound message. Edit asks the
// transport to replace the message the callback originated from instead
// of sending a new one.
type Reply struct {
	Text     string     `json:"text"`
	Keyboard [][]Button `json:"keyboard,omitempty"`
	Edit     bool       `json:"edit,omitempty"`
}
