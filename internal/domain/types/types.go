// Package types contains read shapes shared by the service and the API.
package types

// Entry is one row of the display order.
type Entry struct {
	Position int     `json:"position"`
	ItemID   string  `json:"item_id"`
	Name     string  `json:"name"`
	Glyph    string  `json:"emoji"`
	Score    float64 `json:"score"`
}

// ItemView is a catalog item with its ranking state. Unranked items show
// the default score.
type ItemView struct {
	ItemID string  `json:"item_id"`
	Name   string  `json:"name"`
	Glyph  string  `json:"emoji"`
	Ranked bool    `json:"ranked"`
	Score  float64 `json:"score"`
}

// Ranking is the current display order plus the adjustment register.
type Ranking struct {
	Entries []Entry `json:"entries"`
	Active  string  `json:"active,omitempty"`
	Frozen  bool    `json:"frozen"`
}

// GraphStats summarizes the projected graph for the rendering layer.
type GraphStats struct {
	Entities  int `json:"entities"`
	Relations int `json:"relations"`
	Ranked    int `json:"ranked"`
	Total     int `json:"total"`
}
