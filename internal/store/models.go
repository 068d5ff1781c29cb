package store

import "time"

// SavedView is a named bookmark of a serialized dashboard view.
type SavedView struct {
	ID        int64
	Name      string
	Params    string // encoded view state, as it appears in ?params=
	Project   string
	Mode      string
	CreatedAt time.Time
	UpdatedAt time.Time
}
