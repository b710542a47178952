package domain

// RoomKey names a broadcast channel. A room groups one broadcaster's
// media with zero or more viewers.
type RoomKey string

type Room struct {
	Key RoomKey
}
