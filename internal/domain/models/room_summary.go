package models

// RoomSummary is the derived directory view of one non-empty room.
// It is recomputed from membership state on demand and never stored.
type RoomSummary struct {
	RoomID      string   `json:"roomId"`
	MemberCount int      `json:"memberCount"`
	MemberNames []string `json:"memberNames"`
}
