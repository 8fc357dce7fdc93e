package models

// Candidate is a cleaner eligible for a booking slot, with the context a
// dispatcher needs for a manual pick. It is never persisted.
type Candidate struct {
	Cleaner  *User   `json:"cleaner"`
	Slot     JobSlot `json:"slot"`
	Load     int64   `json:"load"`
	Conflict bool    `json:"conflict"`
}
