package console

import (
	"github.com/aleister1102/scanconsole/internal/lifecycle"
)

// ConsoleState is the full view pushed to the page.
type ConsoleState struct {
	Input      lifecycle.InputView `json:"input"`
	Lifecycle  lifecycle.Snapshot  `json:"lifecycle"`
	ResultHTML string              `json:"result_html,omitempty"`
}

// InputRequest updates one or both input fields. Absent fields are left alone.
type InputRequest struct {
	URL    *string `json:"url,omitempty"`
	Prompt *string `json:"prompt,omitempty"`
}

// wsMessage is the envelope for every WebSocket frame.
type wsMessage struct {
	Type  string       `json:"type"`
	State ConsoleState `json:"state"`
}

type errorResponse struct {
	Error string `json:"error"`
}
