package core

import (
	"encoding/json"
	"errors"
	"fmt"
)

var (
	ErrMalformedFrame = errors.New("malformed frame")
	ErrUnknownType    = errors.New("unknown message type")
)

type MessageType string

const (
	MessageHandshake MessageType = "handshake"
	MessageOffer     MessageType = "offer"
	MessageAnswer    MessageType = "answer"
	MessageCandidate MessageType = "candidate"
)

func (t MessageType) Valid() bool {
	switch t {
	case MessageHandshake, MessageOffer, MessageAnswer, MessageCandidate:
		return true
	}
	return false
}

// Message is the decoded view of an inbound frame. Payload is kept raw and
// never interpreted; relayed frames are forwarded as the original bytes.
type Message struct {
	Type      MessageType     `json:"type"`
	SessionID string          `json:"sessionId,omitempty"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// DecodeMessage parses a frame. Only the exact keys "type", "sessionId" and
// "payload" are read; other keys, including case variants of those, are
// ignored.
func DecodeMessage(data Frame) (Message, error) {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return Message{}, fmt.Errorf("%w: %v", ErrMalformedFrame, err)
	}
	var msg Message
	if raw, ok := fields["type"]; ok {
		if err := json.Unmarshal(raw, &msg.Type); err != nil {
			return Message{}, fmt.Errorf("%w: type: %v", ErrMalformedFrame, err)
		}
	}
	if raw, ok := fields["sessionId"]; ok {
		if err := json.Unmarshal(raw, &msg.SessionID); err != nil {
			return Message{}, fmt.Errorf("%w: sessionId: %v", ErrMalformedFrame, err)
		}
	}
	if raw, ok := fields["payload"]; ok {
		msg.Payload = raw
	}
	if !msg.Type.Valid() {
		return Message{}, fmt.Errorf("%w: %q", ErrUnknownType, msg.Type)
	}
	return msg, nil
}
