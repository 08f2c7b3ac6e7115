package dto

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// NodeID accepts a JSON string or number. The backend hands out numeric ids
// while view code often echoes them back as strings.
type NodeID string

func (n *NodeID) UnmarshalJSON(b []byte) error {
	b = bytes.TrimSpace(b)
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*n = NodeID(s)
		return nil
	}

	var num json.Number
	if err := json.Unmarshal(b, &num); err != nil {
		return fmt.Errorf("node id must be a string or number")
	}
	*n = NodeID(num.String())
	return nil
}

// ModeRequest carries a mode name; domain.ParseMode resolves case and aliases.
type ModeRequest struct {
	Mode string `json:"mode" validate:"required,max=32"`
}

type NodeRequest struct {
	NodeID NodeID `json:"node_id" validate:"required"`
}

type SearchRequest struct {
	Term string `json:"term" validate:"max=128"`
}

type TimePeriodRequest struct {
	Hour      *int `json:"hour" validate:"required,min=0,max=23"`
	DayOfWeek *int `json:"day_of_week" validate:"required,min=0,max=6"`
}

type MapStyleRequest struct {
	MapType string `json:"map_type" validate:"required,max=64"`
}
