package transport

import (
	"context"

	"github.com/gorilla/websocket"

	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/metrics"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/protocol"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/room"
	"github.com/RoseWrightdev/Video-Conferencing/backend/go/internal/v1/types"
)

// dispatcher is the slice of *room.Room a session drives. Narrowed so tests
// can exercise RunSession against a fake room.
type dispatcher interface {
	Accept(conn room.ChannelHandle, ip string) *room.Session
	Dispatch(ctx context.Context, s *room.Session, parsed *protocol.ParsedMessage, ip string)
	HandleDisconnect(s *room.Session)
}

// RunSession drives one accepted connection end to end: send hello, accept
// the session, then loop reading frames until the connection errors or a
// protocol violation closes it. It returns once the session is fully torn
// down; callers run it on its own goroutine per connection.
func RunSession(ctx context.Context, r dispatcher, conn wsConnection, ip string) {
	handle := NewConnection(conn)

	if err := handle.Send(protocol.NewHello()); err != nil {
		_ = handle.Close(1011, "Internal error")
		return
	}

	validator := protocol.NewValidator()
	s := r.Accept(handle, ip)

	for {
		messageType, data, err := conn.ReadMessage()
		if err != nil {
			break
		}

		if messageType != websocket.TextMessage {
			_ = handle.Send(protocol.NewError("", types.ErrUnauthorized, "Binary frames not supported", true))
			_ = handle.Close(1008, "Binary frames not supported")
			break
		}

		parsed, errMsg := validator.Parse(data)
		if errMsg != "" {
			code := 1008
			errCode := types.ErrUnauthorized
			if isOversize(data) {
				code = 1009
				errCode = types.ErrPayloadTooLarge
			}
			metrics.WebsocketEvents.WithLabelValues("unknown", "rejected").Inc()
			_ = handle.Send(protocol.NewError("", errCode, errMsg, true))
			_ = handle.Close(code, errMsg)
			break
		}

		metrics.WebsocketEvents.WithLabelValues(string(parsed.Type), "ok").Inc()
		r.Dispatch(ctx, s, parsed, ip)
	}

	r.HandleDisconnect(s)
}

func isOversize(data []byte) bool {
	return len(data) > protocol.MaxMessageBytes
}
