package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"testing"
	"time"

	"github.com/palaver-chat/palaver/internal/config"
	"github.com/palaver-chat/palaver/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// In-memory collaborators for service tests.

type fakeFileRepo struct {
	files     map[string]*domain.File
	order     []string
	createErr error
	deleteErr error
	findErr   error
	lastFind  domain.ListFilesOptions
	creates   int
}

func newFakeFileRepo() *fakeFileRepo {
	return &fakeFileRepo{files: make(map[string]*domain.File)}
}

func (r *fakeFileRepo) Create(ctx context.Context, file *domain.File) error {
	if r.createErr != nil {
		return r.createErr
	}
	r.creates++
	file.ID = fmt.Sprintf("f-%d", r.creates)
	file.Uploaded = time.Now().UTC()
	r.files[file.ID] = file
	r.order = append(r.order, file.ID)
	return nil
}

func (r *fakeFileRepo) GetByID(ctx context.Context, id string) (*domain.File, error) {
	file, ok := r.files[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return file, nil
}

func (r *fakeFileRepo) Delete(ctx context.Context, id string) error {
	if r.deleteErr != nil {
		return r.deleteErr
	}
	delete(r.files, id)
	return nil
}

func (r *fakeFileRepo) Find(ctx context.Context, opts domain.ListFilesOptions) ([]*domain.File, error) {
	r.lastFind = opts
	if r.findErr != nil {
		return nil, r.findErr
	}
	var out []*domain.File
	for _, id := range r.order {
		if file, ok := r.files[id]; ok {
			out = append(out, file)
		}
	}
	return out, nil
}

type fakeRoomRepo struct {
	rooms map[string]*domain.Room
	err   error
}

func (r *fakeRoomRepo) GetByID(ctx context.Context, id string) (*domain.Room, error) {
	if r.err != nil {
		return nil, r.err
	}
	room, ok := r.rooms[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return room, nil
}

type fakeUserRepo struct {
	users    map[string]*domain.User
	err      error
	batchErr error
}

func (r *fakeUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	if r.err != nil {
		return nil, r.err
	}
	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return user, nil
}

func (r *fakeUserRepo) GetByIDs(ctx context.Context, ids []string) (map[string]*domain.User, error) {
	if r.batchErr != nil {
		return nil, r.batchErr
	}
	out := make(map[string]*domain.User)
	for _, id := range ids {
		if user, ok := r.users[id]; ok {
			out[id] = user
		}
	}
	return out, nil
}

type fakeMessageRepo struct {
	messages []*domain.Message
	err      error
}

func (r *fakeMessageRepo) Create(ctx context.Context, message *domain.Message) error {
	if r.err != nil {
		return r.err
	}
	r.messages = append(r.messages, message)
	return nil
}

type fakeProvider struct {
	enabled bool
	saveErr error
	saves   int
}

func (p *fakeProvider) Enabled() bool { return p.enabled }

func (p *fakeProvider) Save(ctx context.Context, content io.Reader, file *domain.File) (string, error) {
	if p.saveErr != nil {
		return "", p.saveErr
	}
	p.saves++
	if content != nil {
		io.Copy(io.Discard, content)
	}
	return p.ResolveURL(file), nil
}

func (p *fakeProvider) ResolveURL(file *domain.File) string {
	return "store://" + file.ID + "/" + file.Name
}

type recordingPublisher struct {
	events []domain.FileEvent
	err    error
}

func (p *recordingPublisher) Publish(ctx context.Context, event domain.FileEvent) error {
	if p.err != nil {
		return p.err
	}
	p.events = append(p.events, event)
	return nil
}

type fixture struct {
	files    *fakeFileRepo
	rooms    *fakeRoomRepo
	users    *fakeUserRepo
	messages *fakeMessageRepo
	provider *fakeProvider
	events   *recordingPublisher
}

func newFixture() *fixture {
	return &fixture{
		files: newFakeFileRepo(),
		rooms: &fakeRoomRepo{rooms: map[string]*domain.Room{
			"r1": {ID: "r1", Slug: "general", Name: "General"},
			"r2": {ID: "r2", Slug: "attic", Name: "Attic", Archived: true},
		}},
		users: &fakeUserRepo{users: map[string]*domain.User{
			"u1": {ID: "u1", Username: "ada", DisplayName: "Ada Lovelace", Email: "ada@example.com", Avatar: "ada.png"},
		}},
		messages: &fakeMessageRepo{},
		provider: &fakeProvider{enabled: true},
		events:   &recordingPublisher{},
	}
}

func (f *fixture) service(cfg config.FilesConfig, onCreated CreatedCallback) *FileServiceImpl {
	return NewFileService(cfg, f.files, f.rooms, f.users, f.messages, f.provider, f.events, onCreated)
}

func enabledConfig() config.FilesConfig {
	return config.FilesConfig{Enabled: true}
}

func uploadRequest() domain.UploadRequest {
	return domain.UploadRequest{
		OwnerID: "u1",
		RoomID:  "r1",
		Name:    "a.png",
		Type:    "image/png",
		Size:    1024,
		Content: bytes.NewReader(bytes.Repeat([]byte{0x1}, 1024)),
	}
}

func TestCreateFeatureDisabled(t *testing.T) {
	f := newFixture()
	svc := f.service(config.FilesConfig{Enabled: false}, nil)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())

	require.ErrorIs(t, err, domain.ErrFilesDisabled)
	assert.Zero(t, f.files.creates)
	assert.Zero(t, f.provider.saves)
}

func TestCreateNoProviderActsAsDisabled(t *testing.T) {
	f := newFixture()
	svc := NewFileService(enabledConfig(), f.files, f.rooms, f.users, f.messages, nil, f.events, nil)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())

	require.ErrorIs(t, err, domain.ErrFilesDisabled)
	assert.Zero(t, f.files.creates)
}

func TestCreateTypeNotAllowed(t *testing.T) {
	f := newFixture()
	svc := f.service(config.FilesConfig{
		Enabled:       true,
		RestrictTypes: true,
		AllowedTypes:  []string{"image/jpeg", "image/gif"},
	}, nil)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())

	require.ErrorIs(t, err, domain.ErrTypeNotAllowed)
	assert.Contains(t, err.Error(), "image/png")
	assert.Zero(t, f.files.creates)
	assert.Zero(t, f.provider.saves)
}

func TestCreateTypeAllowListed(t *testing.T) {
	f := newFixture()
	svc := f.service(config.FilesConfig{
		Enabled:       true,
		RestrictTypes: true,
		AllowedTypes:  []string{"image/png"},
	}, nil)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())

	require.NoError(t, err)
}

func TestCreateEmptyAllowListPermitsAll(t *testing.T) {
	f := newFixture()
	svc := f.service(config.FilesConfig{Enabled: true, RestrictTypes: true}, nil)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())

	require.NoError(t, err)
}

func TestCreateRoomNotFound(t *testing.T) {
	f := newFixture()
	svc := f.service(enabledConfig(), nil)

	req := uploadRequest()
	req.RoomID = "missing"
	_, _, _, err := svc.Create(context.Background(), req)

	require.ErrorIs(t, err, domain.ErrRoomNotFound)
	assert.Zero(t, f.files.creates)
}

func TestCreateRoomLookupFailure(t *testing.T) {
	f := newFixture()
	f.rooms.err = errors.New("connection reset")
	svc := f.service(enabledConfig(), nil)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())

	require.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrRoomNotFound)
	assert.Contains(t, err.Error(), "connection reset")
	assert.Zero(t, f.files.creates)
}

func TestCreateRoomArchived(t *testing.T) {
	f := newFixture()
	svc := f.service(enabledConfig(), nil)

	req := uploadRequest()
	req.RoomID = "r2"
	_, _, _, err := svc.Create(context.Background(), req)

	require.ErrorIs(t, err, domain.ErrRoomArchived)
	assert.Zero(t, f.files.creates)
	assert.Zero(t, f.provider.saves)
}

func TestCreatePersistenceFailure(t *testing.T) {
	f := newFixture()
	f.files.createErr = errors.New("write concern failed")
	svc := f.service(enabledConfig(), nil)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "write concern failed")
	// No provider call once persistence fails
	assert.Zero(t, f.provider.saves)
}

func TestCreateStorageFailureCompensates(t *testing.T) {
	f := newFixture()
	f.provider.saveErr = errors.New("bucket unavailable")
	svc := f.service(enabledConfig(), nil)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")

	// The rolled-back record must not show up in listings
	files, findErr := svc.List(context.Background(), domain.DefaultListFilesOptions())
	require.NoError(t, findErr)
	assert.Empty(t, files)
	assert.Empty(t, f.events.events)
}

func TestCreateStorageFailureDeleteFailureStillReturnsStorageError(t *testing.T) {
	f := newFixture()
	f.provider.saveErr = errors.New("bucket unavailable")
	f.files.deleteErr = errors.New("delete refused")
	svc := f.service(enabledConfig(), nil)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "bucket unavailable")
	assert.NotContains(t, err.Error(), "delete refused")
}

func TestCreateUserLookupFailure(t *testing.T) {
	f := newFixture()
	f.users.err = errors.New("users store down")
	svc := f.service(enabledConfig(), nil)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "users store down")
	assert.Empty(t, f.events.events)
}

func TestCreateSuccess(t *testing.T) {
	f := newFixture()
	svc := f.service(enabledConfig(), nil)

	file, room, user, err := svc.Create(context.Background(), uploadRequest())

	require.NoError(t, err)
	assert.Equal(t, int64(1024), file.Size)
	assert.Equal(t, "a.png", file.Name)
	assert.Equal(t, "image/png", file.Type)
	assert.NotEmpty(t, file.ID)
	assert.Equal(t, "store://"+file.ID+"/a.png", file.URL)
	assert.Equal(t, "r1", room.ID)
	assert.Equal(t, "u1", user.ID)

	require.Len(t, f.events.events, 1)
	event := f.events.events[0]
	assert.Equal(t, domain.EventFilesNew, event.Name)
	assert.Equal(t, file.ID, event.File.ID)
	assert.Equal(t, "r1", event.Room.ID)
	assert.Equal(t, "u1", event.User.ID)

	// post flag unset, so no announcement message
	assert.Empty(t, f.messages.messages)
}

func TestCreateCallbackRunsBeforeEventPublish(t *testing.T) {
	f := newFixture()

	var sequence []string
	callback := func(ctx context.Context, file *domain.File, room *domain.Room, user *domain.User) {
		sequence = append(sequence, "callback")
		assert.Empty(t, f.events.events, "event must not be published before the callback")
	}
	svc := f.service(enabledConfig(), callback)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())

	require.NoError(t, err)
	require.Equal(t, []string{"callback"}, sequence)
	assert.Len(t, f.events.events, 1)
}

func TestCreateWithPostCreatesMessage(t *testing.T) {
	f := newFixture()
	svc := f.service(enabledConfig(), nil)

	req := uploadRequest()
	req.Post = true
	file, _, _, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	require.Len(t, f.messages.messages, 1)
	message := f.messages.messages[0]
	assert.Equal(t, "r1", message.RoomID)
	assert.Equal(t, "u1", message.OwnerID)
	assert.Equal(t, "upload://"+file.URL, message.Text)
}

func TestCreateMessageFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.messages.err = errors.New("messages store down")
	svc := f.service(enabledConfig(), nil)

	req := uploadRequest()
	req.Post = true
	_, _, _, err := svc.Create(context.Background(), req)

	require.NoError(t, err)
	assert.Len(t, f.events.events, 1)
}

func TestCreateEventPublishFailureIsSwallowed(t *testing.T) {
	f := newFixture()
	f.events.err = errors.New("redis down")
	svc := f.service(enabledConfig(), nil)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())

	require.NoError(t, err)
}

func TestListCapsTake(t *testing.T) {
	f := newFixture()
	svc := f.service(enabledConfig(), nil)

	opts := domain.DefaultListFilesOptions()
	opts.Take = 10000
	_, err := svc.List(context.Background(), opts)

	require.NoError(t, err)
	assert.Equal(t, int64(domain.MaxListTake), f.files.lastFind.Take)
}

func TestListDefaultsTake(t *testing.T) {
	f := newFixture()
	svc := f.service(enabledConfig(), nil)

	_, err := svc.List(context.Background(), domain.ListFilesOptions{})

	require.NoError(t, err)
	assert.Equal(t, int64(domain.DefaultListTake), f.files.lastFind.Take)
}

func TestListQueryFailure(t *testing.T) {
	f := newFixture()
	f.files.findErr = errors.New("cursor timeout")
	svc := f.service(enabledConfig(), nil)

	_, err := svc.List(context.Background(), domain.DefaultListFilesOptions())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "cursor timeout")
}

func TestListExpandsOwner(t *testing.T) {
	f := newFixture()
	svc := f.service(enabledConfig(), nil)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())
	require.NoError(t, err)

	opts := domain.DefaultListFilesOptions()
	opts.Expand = "owner"
	files, err := svc.List(context.Background(), opts)

	require.NoError(t, err)
	require.Len(t, files, 1)
	require.NotNil(t, files[0].Owner)
	assert.Equal(t, "ada", files[0].Owner.Username)
	assert.Equal(t, "Ada Lovelace", files[0].Owner.DisplayName)
	assert.Equal(t, "ada@example.com", files[0].Owner.Email)
	assert.Equal(t, "ada.png", files[0].Owner.Avatar)
}

func TestListWithoutExpandLeavesOwnerNil(t *testing.T) {
	f := newFixture()
	svc := f.service(enabledConfig(), nil)

	_, _, _, err := svc.Create(context.Background(), uploadRequest())
	require.NoError(t, err)

	files, err := svc.List(context.Background(), domain.DefaultListFilesOptions())

	require.NoError(t, err)
	require.Len(t, files, 1)
	assert.Nil(t, files[0].Owner)
}

func TestResolveURLDegradedMode(t *testing.T) {
	f := newFixture()
	svc := NewFileService(enabledConfig(), f.files, f.rooms, f.users, f.messages, nil, f.events, nil)

	url := svc.ResolveURL(&domain.File{ID: "f-1", Name: "a.png"})

	assert.Equal(t, "", url)
}
