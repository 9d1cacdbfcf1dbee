package telnyx

import "encoding/json"

// InboundMessage is the subset of a Telnyx message webhook this service
// cares about. Telnyx posts webhooks for every message event (inbound,
// outbound, delivery receipts); callers should check Received before
// acting.
type InboundMessage struct {
	EventType string
	Direction string
	From      string
	To        string
	Text      string
}

// Received reports whether this event is an inbound message.received,
// as opposed to an outbound confirmation or delivery receipt.
func (m *InboundMessage) Received() bool {
	if m.Direction == "outbound" {
		return false
	}
	return m.EventType == "" || m.EventType == "message.received"
}

type messageEnvelope struct {
	Data struct {
		EventType string `json:"event_type"`
		Payload   struct {
			Direction string `json:"direction"`
			From      struct {
				PhoneNumber string `json:"phone_number"`
			} `json:"from"`
			To []struct {
				PhoneNumber string `json:"phone_number"`
			} `json:"to"`
			Text string `json:"text"`
		} `json:"payload"`
	} `json:"data"`
}

// ParseInboundMessage decodes a Telnyx message webhook body.
func ParseInboundMessage(body []byte) (*InboundMessage, error) {
	var env messageEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return nil, err
	}

	msg := &InboundMessage{
		EventType: env.Data.EventType,
		Direction: env.Data.Payload.Direction,
		From:      env.Data.Payload.From.PhoneNumber,
		Text:      env.Data.Payload.Text,
	}
	if len(env.Data.Payload.To) > 0 {
		msg.To = env.Data.Payload.To[0].PhoneNumber
	}
	return msg, nil
}
