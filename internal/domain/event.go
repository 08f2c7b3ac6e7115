package domain

import (
	"encoding/json"
	"math"
)

// EventTypeNodeSelected is the only message type the embedded map may send.
const EventTypeNodeSelected = "NODE_SELECTED"

// InboundEvent is a decoded message from the embedded map content.
// It is either NodeSelected or Unknown.
type InboundEvent interface {
	inboundEvent()
}

// NodeSelected carries the coordinates the user clicked.
type NodeSelected struct {
	Lat float64
	Lon float64
}

// Unknown is any message that did not match a known shape. It is ignored.
type Unknown struct {
	Type string
}

func (NodeSelected) inboundEvent() {}
func (Unknown) inboundEvent()      {}

type rawEvent struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

type rawNodeSelected struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// DecodeInboundEvent validates an untyped message. Anything other than
// {type: "NODE_SELECTED", data: {lat: number, lon: number}} with finite
// coordinates decodes to Unknown.
func DecodeInboundEvent(raw []byte) InboundEvent {
	var env rawEvent
	if err := json.Unmarshal(raw, &env); err != nil {
		return Unknown{}
	}
	if env.Type != EventTypeNodeSelected || len(env.Data) == 0 {
		return Unknown{Type: env.Type}
	}

	var data rawNodeSelected
	if err := json.Unmarshal(env.Data, &data); err != nil {
		return Unknown{Type: env.Type}
	}
	if data.Lat == nil || data.Lon == nil {
		return Unknown{Type: env.Type}
	}
	if !Finite(*data.Lat) || !Finite(*data.Lon) || math.Abs(*data.Lat) > 90 || math.Abs(*data.Lon) > 180 {
		return Unknown{Type: env.Type}
	}

	return NodeSelected{Lat: *data.Lat, Lon: *data.Lon}
}
