package websocket

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrConnectionTimeout means the server sent nothing within ConnectionTimeout after the upgrade.
	ErrConnectionTimeout = errors.New("websocket: timed out waiting for connected status")
	// ErrStreamEnded means the connection ended without a close frame.
	ErrStreamEnded = errors.New("websocket: stream ended without close frame")
	// ErrNotConnected is returned by operations on a closed handle.
	ErrNotConnected = errors.New("websocket: not connected")
)

// HandshakeError carries the first server message when it was not the
// connected status.
type HandshakeError struct {
	Message ServerMessage
}

func (e *HandshakeError) Error() string {
	if e.Message.Kind == KindUnknown {
		return fmt.Sprintf("websocket handshake failed: unparsed message %q", e.Message.Raw)
	}
	if e.Message.Status != nil {
		return fmt.Sprintf("websocket handshake failed: status %q", e.Message.Status.Status)
	}
	return fmt.Sprintf("websocket handshake failed: unexpected %s message", e.Message.Kind)
}

// ClosedError reports a close frame sent by the server.
type ClosedError struct {
	Code   int
	Reason string
}

func (e *ClosedError) Error() string {
	return fmt.Sprintf("websocket closed by server (code %d): %s", e.Code, e.Reason)
}
