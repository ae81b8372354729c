package domain

import "context"

// EventFilesNew is published after every successful upload.
const EventFilesNew = "files:new"

// FileEvent is the payload delivered to subscribers of EventFilesNew.
type FileEvent struct {
	Name string `json:"name"`
	File *File  `json:"file"`
	Room *Room  `json:"room"`
	User *User  `json:"user"`
}

// FileEventPublisher delivers file events to interested subscribers, e.g. the
// real-time notification layer. Publishing happens strictly after the
// caller-visible result of the operation that produced the event.
type FileEventPublisher interface {
	Publish(ctx context.Context, event FileEvent) error
}
