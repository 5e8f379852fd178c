// Package types contains the read shapes shared by the service and the HTTP
// layer.
package types

// Notification kinds.
const (
	KindEligibility = "eligibility"
	KindAdvance     = "advance"
)

// Notification is pushed to feed subscribers whenever an entry changes.
type Notification struct {
	Kind     string `json:"kind"`
	EntryID  int    `json:"entry_id"`
	Eligible bool   `json:"eligible,omitempty"`
	From     int    `json:"from,omitempty"`
	To       int    `json:"to,omitempty"`

	// Badge is whether any entry may advance after this change.
	Badge bool `json:"badge"`
}

// Badge is the red-dot state of the collection button.
type Badge struct {
	On       bool `json:"on"`
	Eligible int  `json:"eligible"`
}

// LevelUpRequest asks for one level on one item. An empty EventID is
// filled in by the server.
type LevelUpRequest struct {
	EventID string `json:"event_id"`
	ItemID  string `json:"item_id" validate:"required"`
}

// Ack answers an accepted or duplicate level-up request.
type Ack struct {
	Status    string `json:"status"`
	EventID   string `json:"event_id"`
	Duplicate bool   `json:"duplicate"`
}

// Item is the inventory row the HTTP layer returns.
type Item struct {
	ID     string `json:"id"`
	Name   string `json:"name,omitempty"`
	Kind   string `json:"kind"`
	Rarity string `json:"rarity"`
	Level  int    `json:"level"`
}
