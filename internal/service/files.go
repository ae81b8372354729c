package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"

	"github.com/palaver-chat/palaver/internal/config"
	"github.com/palaver-chat/palaver/internal/domain"
)

// CreatedCallback is invoked with the caller-visible result of a successful
// upload, before any subscriber-facing side effect runs.
type CreatedCallback func(ctx context.Context, file *domain.File, room *domain.Room, user *domain.User)

// FileServiceImpl implements domain.FileService
type FileServiceImpl struct {
	cfg       config.FilesConfig
	files     domain.FileRepository
	rooms     domain.RoomRepository
	users     domain.UserRepository
	messages  domain.MessageRepository
	provider  domain.StorageProvider // nil when no candidate is enabled
	events    domain.FileEventPublisher
	onCreated CreatedCallback // optional
}

// NewFileService creates a new file service. The provider is the one
// selected at startup and may be nil, in which case uploads are rejected and
// URL resolution is a no-op. onCreated may be nil.
func NewFileService(
	cfg config.FilesConfig,
	files domain.FileRepository,
	rooms domain.RoomRepository,
	users domain.UserRepository,
	messages domain.MessageRepository,
	provider domain.StorageProvider,
	events domain.FileEventPublisher,
	onCreated CreatedCallback,
) *FileServiceImpl {
	return &FileServiceImpl{
		cfg:       cfg,
		files:     files,
		rooms:     rooms,
		users:     users,
		messages:  messages,
		provider:  provider,
		events:    events,
		onCreated: onCreated,
	}
}

// Create validates and performs one upload: persist metadata, hand the binary
// to the storage provider, then notify collaborators. If the provider fails
// after the record was written, the record is deleted again so a
// half-completed upload never shows up in listings.
func (s *FileServiceImpl) Create(ctx context.Context, req domain.UploadRequest) (*domain.File, *domain.Room, *domain.User, error) {
	if !s.cfg.Enabled || s.provider == nil {
		return nil, nil, nil, domain.ErrFilesDisabled
	}

	if s.cfg.RestrictTypes && len(s.cfg.AllowedTypes) > 0 && !s.typeAllowed(req.Type) {
		return nil, nil, nil, fmt.Errorf("%w: %s", domain.ErrTypeNotAllowed, req.Type)
	}

	room, err := s.rooms.GetByID(ctx, req.RoomID)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, nil, nil, domain.ErrRoomNotFound
		}
		return nil, nil, nil, fmt.Errorf("failed to look up room: %w", err)
	}
	if room.Archived {
		return nil, nil, nil, domain.ErrRoomArchived
	}

	file := &domain.File{
		OwnerID: req.OwnerID,
		RoomID:  req.RoomID,
		Name:    req.Name,
		Type:    req.Type,
		Size:    req.Size,
	}
	if err := s.files.Create(ctx, file); err != nil {
		return nil, nil, nil, fmt.Errorf("failed to persist file record: %w", err)
	}

	url, err := s.provider.Save(ctx, req.Content, file)
	if err != nil {
		// Compensate so the record never becomes visible without a backing
		// binary. The delete is best-effort: its own failure is logged and
		// the provider error still wins.
		if delErr := s.files.Delete(ctx, file.ID); delErr != nil {
			log.Printf("failed to delete file record %s after storage failure: %v", file.ID, delErr)
		}
		return nil, nil, nil, fmt.Errorf("failed to store file: %w", err)
	}
	file.URL = url

	user, err := s.users.GetByID(ctx, req.OwnerID)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("failed to look up owner: %w", err)
	}

	// Caller-visible success first, subscribers after.
	if s.onCreated != nil {
		s.onCreated(ctx, file, room, user)
	}

	if err := s.events.Publish(ctx, domain.FileEvent{
		Name: domain.EventFilesNew,
		File: file,
		Room: room,
		User: user,
	}); err != nil {
		log.Printf("failed to publish %s event for file %s: %v", domain.EventFilesNew, file.ID, err)
	}

	if req.Post {
		message := &domain.Message{
			RoomID:  room.ID,
			OwnerID: user.ID,
			Text:    domain.UploadMessageScheme + file.URL,
		}
		// Fire and forget: the upload already succeeded.
		if err := s.messages.Create(ctx, message); err != nil {
			log.Printf("failed to post upload message for file %s: %v", file.ID, err)
		}
	}

	return file, room, user, nil
}

// List returns file records matching the options, newest first by default.
func (s *FileServiceImpl) List(ctx context.Context, opts domain.ListFilesOptions) ([]*domain.File, error) {
	opts.Normalize()

	files, err := s.files.Find(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to query files: %w", err)
	}

	for _, file := range files {
		file.URL = s.ResolveURL(file)
	}

	if opts.ExpandsOwner() {
		if err := s.expandOwners(ctx, files); err != nil {
			return nil, err
		}
	}

	return files, nil
}

// Get retrieves one file record with its URL resolved.
func (s *FileServiceImpl) Get(ctx context.Context, id string) (*domain.File, error) {
	file, err := s.files.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("failed to look up file: %w", err)
	}
	file.URL = s.ResolveURL(file)

	return file, nil
}

// Open streams the stored binary when the active provider supports it.
func (s *FileServiceImpl) Open(ctx context.Context, file *domain.File) (io.ReadCloser, error) {
	reader, ok := s.provider.(domain.StorageReader)
	if !ok {
		return nil, domain.ErrNotFound
	}
	return reader.Open(ctx, file)
}

// ResolveURL delegates to the active provider. With no provider active this
// is a no-op accessor returning "".
func (s *FileServiceImpl) ResolveURL(file *domain.File) string {
	if s.provider == nil {
		return ""
	}
	return s.provider.ResolveURL(file)
}

func (s *FileServiceImpl) typeAllowed(mimeType string) bool {
	for _, allowed := range s.cfg.AllowedTypes {
		if allowed == mimeType {
			return true
		}
	}
	return false
}

// expandOwners attaches the owner projection to each record in one batched
// user lookup.
func (s *FileServiceImpl) expandOwners(ctx context.Context, files []*domain.File) error {
	ids := make([]string, 0, len(files))
	seen := make(map[string]bool, len(files))
	for _, file := range files {
		if !seen[file.OwnerID] {
			seen[file.OwnerID] = true
			ids = append(ids, file.OwnerID)
		}
	}

	users, err := s.users.GetByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to expand owners: %w", err)
	}

	for _, file := range files {
		if user, ok := users[file.OwnerID]; ok {
			file.Owner = user.Summary()
		}
	}

	return nil
}
