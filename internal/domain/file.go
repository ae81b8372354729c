package domain

import (
	"context"
	"io"
	"strings"
	"time"
)

// List pagination bounds. Requests above MaxListTake are clamped, never rejected.
const (
	DefaultListTake = 500
	MaxListTake     = 5000
)

// File is the stored metadata for one uploaded file. The binary itself lives
// with the storage provider; URL is resolved from the active provider and is
// not persisted.
type File struct {
	ID       string    `bson:"_id,omitempty" json:"id"`
	OwnerID  string    `bson:"owner" json:"owner"`
	RoomID   string    `bson:"room" json:"room"`
	Name     string    `bson:"name" json:"name"`
	Type     string    `bson:"type" json:"type"`
	Size     int64     `bson:"size" json:"size"`
	Uploaded time.Time `bson:"uploaded" json:"uploaded"`
	URL      string    `bson:"-" json:"url"`

	// Owner carries the resolved owner projection when the caller asked for
	// the "owner" expansion. Nil otherwise.
	Owner *UserSummary `bson:"-" json:"ownerDetails,omitempty"`
}

// UploadRequest describes one incoming upload.
type UploadRequest struct {
	OwnerID string
	RoomID  string
	Name    string
	Type    string
	Size    int64
	Content io.Reader
	// Post requests a companion chat message announcing the upload.
	Post bool
}

// ListFilesOptions filters and pages a file listing. All fields are optional.
type ListFilesOptions struct {
	Room    string
	From    time.Time // exclusive lower bound on Uploaded
	To      time.Time // inclusive upper bound on Uploaded
	Expand  string    // comma-separated relation names, "owner" is recognized
	Skip    int64
	Reverse bool // newest first when true
	Take    int64
}

// DefaultListFilesOptions returns options with the listing defaults applied.
func DefaultListFilesOptions() ListFilesOptions {
	return ListFilesOptions{
		Reverse: true,
		Take:    DefaultListTake,
	}
}

// Normalize applies the take default and hard cap and clamps a negative skip.
func (o *ListFilesOptions) Normalize() {
	if o.Take <= 0 {
		o.Take = DefaultListTake
	}
	if o.Take > MaxListTake {
		o.Take = MaxListTake
	}
	if o.Skip < 0 {
		o.Skip = 0
	}
}

// ExpandsOwner reports whether the owner relation was requested.
func (o ListFilesOptions) ExpandsOwner() bool {
	for _, name := range strings.Split(o.Expand, ",") {
		if strings.TrimSpace(name) == "owner" {
			return true
		}
	}
	return false
}

// FileRepository is the metadata store for uploaded files.
type FileRepository interface {
	Create(ctx context.Context, file *File) error
	GetByID(ctx context.Context, id string) (*File, error)
	// Delete removes a record; deleting a missing record is not an error.
	Delete(ctx context.Context, id string) error
	Find(ctx context.Context, opts ListFilesOptions) ([]*File, error)
}

// FileService orchestrates uploads and listings for the HTTP layer.
type FileService interface {
	// Create validates the request, persists metadata, stores the binary and
	// notifies collaborators. On success it returns the record together with
	// the room and the resolved owner.
	Create(ctx context.Context, req UploadRequest) (*File, *Room, *User, error)
	List(ctx context.Context, opts ListFilesOptions) ([]*File, error)
	Get(ctx context.Context, id string) (*File, error)
	Open(ctx context.Context, file *File) (io.ReadCloser, error)
	ResolveURL(file *File) string
}
