package roomerrors

import "errors"

// Session-membership sentinel errors. Shared by the rooms and ws
// packages to avoid circular imports.
var (
	ErrRoomFull  = errors.New("room is full")
	ErrNotInRoom = errors.New("not in a room")
)
