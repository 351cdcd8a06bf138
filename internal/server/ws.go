package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-kit/kit/log/level"
	"github.com/gorilla/websocket"

	"DeltaV/internal/rocket"
)

const (
	wsMaxMessageBytes = 64 << 10
	wsIdleTimeout     = 2 * time.Minute
	wsWriteTimeout    = 10 * time.Second
)

var upgrader = websocket.Upgrader{
	HandshakeTimeout: 10 * time.Second,
	CheckOrigin:      func(r *http.Request) bool { return true },
}

type inboundMessage struct {
	ID      string          `json:"id,omitempty"`
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload"`
}

type outboundMessage struct {
	ID      string `json:"id,omitempty"`
	Type    string `json:"type"`
	Payload any    `json:"payload"`
}

// serveWS answers calculation frames one at a time. Replies use the same
// frame kind as the request: JSON for text frames, protobuf for binary.
func (a *App) serveWS(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		level.Warn(a.logger).Log("msg", "websocket upgrade failed", "err", err)
		return
	}
	defer conn.Close()
	conn.SetReadLimit(wsMaxMessageBytes)

	remote := r.RemoteAddr
	level.Debug(a.logger).Log("msg", "websocket connected", "remote", remote)

	for {
		_ = conn.SetReadDeadline(time.Now().Add(wsIdleTimeout))
		msgType, data, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				level.Info(a.logger).Log("msg", "websocket read", "remote", remote, "err", err)
			}
			return
		}

		var inbound inboundMessage
		var decodeErr error
		switch msgType {
		case websocket.BinaryMessage:
			inbound, decodeErr = decodeProtoEnvelope(data)
		case websocket.TextMessage:
			decodeErr = json.Unmarshal(data, &inbound)
		default:
			continue
		}

		var reply outboundMessage
		if decodeErr != nil {
			reply = wsError("", fmt.Errorf("malformed message: %v: %w", decodeErr, rocket.ErrInvalidInput))
		} else {
			reply = a.dispatch(inbound)
		}

		_ = conn.SetWriteDeadline(time.Now().Add(wsWriteTimeout))
		if err := writeReply(conn, msgType, reply); err != nil {
			level.Warn(a.logger).Log("msg", "websocket write", "remote", remote, "err", err)
			return
		}
	}
}

func (a *App) dispatch(in inboundMessage) outboundMessage {
	switch in.Type {
	case "ping":
		return outboundMessage{ID: in.ID, Type: "pong", Payload: messageDTO{Message: "pong"}}

	case "calculate":
		var payload calculateRequestDTO
		if err := decodePayload(in.Payload, &payload); err != nil {
			return wsError(in.ID, err)
		}
		res, err := a.calc.Compute(payload.toRequest())
		if err != nil {
			return wsError(in.ID, err)
		}
		return outboundMessage{ID: in.ID, Type: "result", Payload: resultToDTO(res)}

	case "sweep":
		var payload sweepRequestDTO
		if err := decodePayload(in.Payload, &payload); err != nil {
			return wsError(in.ID, err)
		}
		steps, err := payload.steps()
		if err != nil {
			return wsError(in.ID, err)
		}
		points, err := a.calc.Sweep(payload.toRequest(), steps)
		if err != nil {
			return wsError(in.ID, err)
		}
		return outboundMessage{ID: in.ID, Type: "sweep", Payload: sweepToDTO(points)}

	default:
		return wsError(in.ID, fmt.Errorf("unknown message type %q: %w", in.Type, rocket.ErrInvalidInput))
	}
}

func decodePayload(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		return fmt.Errorf("missing payload: %w", rocket.ErrInvalidInput)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		if errors.Is(err, errNonNumeric) {
			return fmt.Errorf("height, diameter and fuel fill percentage must be numbers: %w", rocket.ErrInvalidInput)
		}
		return fmt.Errorf("malformed payload: %v: %w", err, rocket.ErrInvalidInput)
	}
	return nil
}

func wsError(id string, err error) outboundMessage {
	return outboundMessage{ID: id, Type: "error", Payload: errorDTO{Error: err.Error()}}
}

func writeReply(conn *websocket.Conn, msgType int, reply outboundMessage) error {
	if msgType == websocket.BinaryMessage {
		data, err := encodeProtoEnvelope(reply)
		if err != nil {
			return err
		}
		return conn.WriteMessage(websocket.BinaryMessage, data)
	}
	return conn.WriteJSON(reply)
}
