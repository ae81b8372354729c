package domain

import (
	"context"
	"time"
)

// UploadMessageScheme prefixes the text of upload-announcement messages so
// renderers can detect and special-case them.
const UploadMessageScheme = "upload://"

// Message is a chat message. The upload flow posts one announcing each upload
// when the client asks for it.
type Message struct {
	ID      string    `bson:"_id,omitempty" json:"id"`
	RoomID  string    `bson:"room" json:"room"`
	OwnerID string    `bson:"owner" json:"owner"`
	Text    string    `bson:"text" json:"text"`
	Posted  time.Time `bson:"posted" json:"posted"`
}

// MessageRepository writes chat messages.
type MessageRepository interface {
	Create(ctx context.Context, message *Message) error
}
