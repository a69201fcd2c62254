package services

import (
	"context"
	"testing"

	"github.com/StiliyanIliev27/Memora/internal/apperr"
	"github.com/StiliyanIliev27/Memora/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryFixture struct {
	memories *fakeMemoryStore
	conns    *fakeConnectionStore
	files    *fakeFileStore
	storage  *fakeStorage
	service  *MemoryService

	alice *models.User
	bob   *models.User
	conn  *models.Connection
}

func newMemoryFixture(t *testing.T) *memoryFixture {
	t.Helper()
	ctx := context.Background()

	users := &fakeUserStore{}
	files := &fakeFileStore{}
	memories := &fakeMemoryStore{files: files}
	conns := &fakeConnectionStore{users: users, memories: memories}
	memories.conns = conns
	storage := newFakeStorage()

	alice := &models.User{ID: "alice-id", Email: "alice@example.com", Name: "Alice"}
	bob := &models.User{ID: "bob-id", Email: "bob@example.com", Name: "Bob"}
	require.NoError(t, users.Create(ctx, alice))
	require.NoError(t, users.Create(ctx, bob))

	conn := &models.Connection{
		ID:             "conn-1",
		User1ID:        alice.ID,
		User2ID:        bob.ID,
		ConnectionType: models.ConnectionFriend,
		Status:         models.ConnectionAccepted,
	}
	require.NoError(t, conns.Create(ctx, conn))

	return &memoryFixture{
		memories: memories,
		conns:    conns,
		files:    files,
		storage:  storage,
		service:  NewMemoryService(memories, conns, storage),
		alice:    alice,
		bob:      bob,
		conn:     conn,
	}
}

func validInput(connectionID *string) CreateMemoryInput {
	return CreateMemoryInput{
		ConnectionID: connectionID,
		Title:        "Sunset at the pier",
		LocationName: "Santa Monica Pier",
		Latitude:     34.0086,
		Longitude:    -118.4986,
		MemoryType:   models.MemoryPhoto,
	}
}

func TestMemoryCreateRoundTrip(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)

	created, err := f.service.Create(ctx, f.alice.ID, validInput(&f.conn.ID))
	require.NoError(t, err)

	// Coordinates survive storage exactly.
	stored, err := f.memories.GetByID(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, 34.0086, stored.Latitude)
	assert.Equal(t, -118.4986, stored.Longitude)
	assert.Equal(t, f.alice.ID, stored.CreatedBy)
	require.NotNil(t, stored.ConnectionID)
	assert.Equal(t, f.conn.ID, *stored.ConnectionID)
}

func TestMemoryCreateValidation(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)

	tests := []struct {
		name   string
		mutate func(*CreateMemoryInput)
	}{
		{"empty title", func(in *CreateMemoryInput) { in.Title = "  " }},
		{"empty location", func(in *CreateMemoryInput) { in.LocationName = "" }},
		{"unknown type", func(in *CreateMemoryInput) { in.MemoryType = "sketch" }},
		{"latitude too low", func(in *CreateMemoryInput) { in.Latitude = -90.5 }},
		{"latitude too high", func(in *CreateMemoryInput) { in.Latitude = 91 }},
		{"longitude too low", func(in *CreateMemoryInput) { in.Longitude = -180.1 }},
		{"longitude too high", func(in *CreateMemoryInput) { in.Longitude = 181 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := validInput(nil)
			tt.mutate(&in)
			_, err := f.service.Create(ctx, f.alice.ID, in)
			assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
		})
	}
}

func TestMemoryCreateConnectionChecks(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)

	// Non-members cannot pin into someone else's connection.
	_, err := f.service.Create(ctx, "carol-id", validInput(&f.conn.ID))
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	// A pending connection is not a sharing scope yet.
	pending := &models.Connection{
		ID:      "conn-pending",
		User1ID: f.alice.ID,
		User2ID: "carol-id",
		Status:  models.ConnectionPending,
	}
	require.NoError(t, f.conns.Create(ctx, pending))
	_, err = f.service.Create(ctx, f.alice.ID, validInput(&pending.ID))
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestMemoryVisibility(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)

	shared, err := f.service.Create(ctx, f.alice.ID, validInput(&f.conn.ID))
	require.NoError(t, err)
	personal, err := f.service.Create(ctx, f.alice.ID, validInput(nil))
	require.NoError(t, err)

	// Both members see the shared memory.
	_, err = f.service.GetByID(ctx, shared.ID, f.bob.ID)
	assert.NoError(t, err)

	// Personal memories are visible to the creator only.
	_, err = f.service.GetByID(ctx, personal.ID, f.bob.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	aliceList, err := f.service.GetUserMemories(ctx, f.alice.ID)
	require.NoError(t, err)
	assert.Len(t, aliceList, 2)

	bobList, err := f.service.GetUserMemories(ctx, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, bobList, 1)
	assert.Equal(t, shared.ID, bobList[0].ID)

	// No session, no memories.
	empty, err := f.service.GetUserMemories(ctx, "")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestMemoryListByConnection(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)

	shared, err := f.service.Create(ctx, f.alice.ID, validInput(&f.conn.ID))
	require.NoError(t, err)
	_, err = f.service.Create(ctx, f.alice.ID, validInput(nil))
	require.NoError(t, err)

	list, err := f.service.GetMemoriesByConnection(ctx, f.conn.ID, f.bob.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, shared.ID, list[0].ID)

	_, err = f.service.GetMemoriesByConnection(ctx, f.conn.ID, "carol-id")
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))
}

func TestMemoryUpdateCreatorOnly(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)

	m, err := f.service.Create(ctx, f.alice.ID, validInput(&f.conn.ID))
	require.NoError(t, err)

	newTitle := "Renamed"
	_, err = f.service.Update(ctx, m.ID, f.bob.ID, &newTitle, nil)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	updated, err := f.service.Update(ctx, m.ID, f.alice.ID, &newTitle, nil)
	require.NoError(t, err)
	assert.Equal(t, "Renamed", updated.Title)

	blank := "   "
	_, err = f.service.Update(ctx, m.ID, f.alice.ID, &blank, nil)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
}

func TestMemoryDeleteCleansStorage(t *testing.T) {
	ctx := context.Background()
	f := newMemoryFixture(t)

	m, err := f.service.Create(ctx, f.alice.ID, validInput(&f.conn.ID))
	require.NoError(t, err)

	require.NoError(t, f.files.Create(ctx, &models.MemoryFile{
		ID:       "file-1",
		MemoryID: m.ID,
		FileURL:  "https://cdn.test/alice-id/" + m.ID + "/a.jpg",
		FileName: "a.jpg",
		FileType: models.MemoryPhoto,
		FileSize: 100,
	}))

	_, err = f.service.Delete(ctx, m.ID, f.bob.ID)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	_, err = f.service.Delete(ctx, m.ID, f.alice.ID)
	require.NoError(t, err)

	_, err = f.memories.GetByID(ctx, m.ID)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Contains(t, f.storage.removed, "https://cdn.test/alice-id/"+m.ID+"/a.jpg")
}
