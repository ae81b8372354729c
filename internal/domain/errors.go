package domain

import "errors"

// Common errors
var (
	ErrNotFound       = errors.New("record not found")
	ErrFilesDisabled  = errors.New("file uploads are disabled")
	ErrTypeNotAllowed = errors.New("file type is not allowed")
	ErrRoomNotFound   = errors.New("room not found")
	ErrRoomArchived   = errors.New("room is archived")
)
