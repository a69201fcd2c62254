package services

import (
	"context"
	"io"
	"strings"
	"time"

	"github.com/StiliyanIliev27/Memora/internal/apperr"
	"github.com/StiliyanIliev27/Memora/internal/models"
)

// Slice-backed in-memory stores keep insertion order so list
// assertions stay deterministic.

type fakeUserStore struct {
	users []*models.User
}

func (s *fakeUserStore) Create(_ context.Context, user *models.User) error {
	cp := *user
	s.users = append(s.users, &cp)
	return nil
}

func (s *fakeUserStore) GetByID(_ context.Context, id string) (*models.User, error) {
	for _, u := range s.users {
		if u.ID == id {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("user not found")
}

func (s *fakeUserStore) GetByEmail(_ context.Context, email string) (*models.User, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("user not found")
}

func (s *fakeUserStore) EmailExists(_ context.Context, email string) (bool, error) {
	for _, u := range s.users {
		if strings.EqualFold(u.Email, email) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeUserStore) UpdateProfile(_ context.Context, user *models.User) error {
	for i, u := range s.users {
		if u.ID == user.ID {
			cp := *user
			s.users[i] = &cp
			return nil
		}
	}
	return apperr.NotFoundf("user not found")
}

func (s *fakeUserStore) UpdatePushToken(_ context.Context, userID string, pushToken *string) error {
	for _, u := range s.users {
		if u.ID == userID {
			u.PushToken = pushToken
			return nil
		}
	}
	return apperr.NotFoundf("user not found")
}

type fakeConnectionStore struct {
	conns []*models.Connection
	users *fakeUserStore

	// memories, when set, get their connection reference cleared on
	// Delete, mirroring the transactional orphaning the repository does.
	memories *fakeMemoryStore
}

func (s *fakeConnectionStore) Create(_ context.Context, conn *models.Connection) error {
	cp := *conn
	s.conns = append(s.conns, &cp)
	return nil
}

func (s *fakeConnectionStore) GetByID(_ context.Context, id string) (*models.Connection, error) {
	for _, c := range s.conns {
		if c.ID == id {
			cp := *c
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("connection not found")
}

func (s *fakeConnectionStore) ListByUser(ctx context.Context, userID string) ([]*models.ConnectionWithUsers, error) {
	out := []*models.ConnectionWithUsers{}
	for _, c := range s.conns {
		if !c.HasMember(userID) {
			continue
		}
		cwu := &models.ConnectionWithUsers{Connection: *c}
		if s.users != nil {
			if u1, err := s.users.GetByID(ctx, c.User1ID); err == nil {
				cwu.User1 = *u1
			}
			if u2, err := s.users.GetByID(ctx, c.User2ID); err == nil {
				cwu.User2 = *u2
			}
		}
		out = append(out, cwu)
	}
	return out, nil
}

func (s *fakeConnectionStore) ExistsBetween(_ context.Context, userA, userB string) (bool, error) {
	for _, c := range s.conns {
		if (c.User1ID == userA && c.User2ID == userB) || (c.User1ID == userB && c.User2ID == userA) {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeConnectionStore) UpdateStatus(_ context.Context, id string, status models.ConnectionStatus) error {
	for _, c := range s.conns {
		if c.ID == id {
			c.Status = status
			c.UpdatedAt = time.Now()
			return nil
		}
	}
	return apperr.NotFoundf("connection not found")
}

func (s *fakeConnectionStore) Delete(_ context.Context, id string) error {
	for i, c := range s.conns {
		if c.ID == id {
			s.conns = append(s.conns[:i], s.conns[i+1:]...)
			if s.memories != nil {
				for _, m := range s.memories.memories {
					if m.ConnectionID != nil && *m.ConnectionID == id {
						m.ConnectionID = nil
					}
				}
			}
			return nil
		}
	}
	return apperr.NotFoundf("connection not found")
}

type fakeMemoryStore struct {
	memories []*models.Memory
	conns    *fakeConnectionStore
	files    *fakeFileStore
}

func (s *fakeMemoryStore) Create(_ context.Context, m *models.Memory) error {
	cp := *m
	s.memories = append(s.memories, &cp)
	return nil
}

func (s *fakeMemoryStore) GetByID(_ context.Context, id string) (*models.Memory, error) {
	for _, m := range s.memories {
		if m.ID == id {
			cp := *m
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("memory not found")
}

func (s *fakeMemoryStore) join(ctx context.Context, m *models.Memory) *models.MemoryWithConnection {
	mwc := &models.MemoryWithConnection{Memory: *m}
	if m.ConnectionID != nil && s.conns != nil {
		if c, err := s.conns.GetByID(ctx, *m.ConnectionID); err == nil {
			cwu := &models.ConnectionWithUsers{Connection: *c}
			if s.conns.users != nil {
				if u1, err := s.conns.users.GetByID(ctx, c.User1ID); err == nil {
					cwu.User1 = *u1
				}
				if u2, err := s.conns.users.GetByID(ctx, c.User2ID); err == nil {
					cwu.User2 = *u2
				}
			}
			mwc.Connection = cwu
		}
	}
	return mwc
}

func (s *fakeMemoryStore) ListForUser(ctx context.Context, userID string) ([]*models.MemoryWithConnection, error) {
	out := []*models.MemoryWithConnection{}
	for _, m := range s.memories {
		visible := m.ConnectionID == nil && m.CreatedBy == userID
		if m.ConnectionID != nil && s.conns != nil {
			if c, err := s.conns.GetByID(ctx, *m.ConnectionID); err == nil && c.HasMember(userID) {
				visible = true
			}
		}
		if visible {
			out = append(out, s.join(ctx, m))
		}
	}
	return out, nil
}

func (s *fakeMemoryStore) ListByConnection(ctx context.Context, connectionID string) ([]*models.MemoryWithConnection, error) {
	out := []*models.MemoryWithConnection{}
	for _, m := range s.memories {
		if m.ConnectionID != nil && *m.ConnectionID == connectionID {
			out = append(out, s.join(ctx, m))
		}
	}
	return out, nil
}

func (s *fakeMemoryStore) Update(_ context.Context, m *models.Memory) error {
	for i, existing := range s.memories {
		if existing.ID == m.ID {
			cp := *m
			s.memories[i] = &cp
			return nil
		}
	}
	return apperr.NotFoundf("memory not found")
}

func (s *fakeMemoryStore) Delete(_ context.Context, id string) ([]string, error) {
	for i, m := range s.memories {
		if m.ID == id {
			s.memories = append(s.memories[:i], s.memories[i+1:]...)
			urls := []string{}
			if s.files != nil {
				kept := s.files.files[:0]
				for _, f := range s.files.files {
					if f.MemoryID == id {
						urls = append(urls, f.FileURL)
					} else {
						kept = append(kept, f)
					}
				}
				s.files.files = kept
			}
			return urls, nil
		}
	}
	return nil, apperr.NotFoundf("memory not found")
}

type fakeFileStore struct {
	files []*models.MemoryFile
}

func (s *fakeFileStore) Create(_ context.Context, f *models.MemoryFile) error {
	cp := *f
	s.files = append(s.files, &cp)
	return nil
}

func (s *fakeFileStore) GetByID(_ context.Context, id string) (*models.MemoryFile, error) {
	for _, f := range s.files {
		if f.ID == id {
			cp := *f
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("file not found")
}

func (s *fakeFileStore) ListByMemory(_ context.Context, memoryID string) ([]*models.MemoryFile, error) {
	out := []*models.MemoryFile{}
	for _, f := range s.files {
		if f.MemoryID == memoryID {
			cp := *f
			out = append(out, &cp)
		}
	}
	return out, nil
}

func (s *fakeFileStore) CountByMemoryAndType(_ context.Context, memoryID string, fileType models.MemoryType) (int, error) {
	n := 0
	for _, f := range s.files {
		if f.MemoryID == memoryID && f.FileType == fileType {
			n++
		}
	}
	return n, nil
}

func (s *fakeFileStore) Delete(_ context.Context, id string) error {
	for i, f := range s.files {
		if f.ID == id {
			s.files = append(s.files[:i], s.files[i+1:]...)
			return nil
		}
	}
	return apperr.NotFoundf("file not found")
}

type fakeRequestStore struct {
	requests []*models.DeletionRequest
}

func (s *fakeRequestStore) Create(_ context.Context, req *models.DeletionRequest) error {
	cp := *req
	s.requests = append(s.requests, &cp)
	return nil
}

func (s *fakeRequestStore) GetByID(_ context.Context, id string) (*models.DeletionRequest, error) {
	for _, r := range s.requests {
		if r.ID == id {
			cp := *r
			return &cp, nil
		}
	}
	return nil, apperr.NotFoundf("deletion request not found")
}

// ListByConnection returns every request; tests scope a single
// connection per store.
func (s *fakeRequestStore) ListByConnection(_ context.Context, _ string) ([]*models.DeletionRequest, error) {
	out := []*models.DeletionRequest{}
	for _, r := range s.requests {
		cp := *r
		out = append(out, &cp)
	}
	return out, nil
}

func (s *fakeRequestStore) HasPendingForTarget(_ context.Context, requesterID string, memoryID, fileID *string) (bool, error) {
	for _, r := range s.requests {
		if r.RequesterID != requesterID || r.Status != models.RequestPending {
			continue
		}
		if memoryID != nil && r.MemoryID != nil && *r.MemoryID == *memoryID {
			return true, nil
		}
		if fileID != nil && r.FileID != nil && *r.FileID == *fileID {
			return true, nil
		}
	}
	return false, nil
}

func (s *fakeRequestStore) Respond(_ context.Context, id string, status models.RequestStatus, responderID string, respondedAt time.Time) error {
	for _, r := range s.requests {
		if r.ID == id && r.Status == models.RequestPending {
			r.Status = status
			r.ResponderID = &responderID
			r.RespondedAt = &respondedAt
			return nil
		}
	}
	return apperr.NotFoundf("pending deletion request not found")
}

type fakeStorage struct {
	objects map[string][]byte
	removed []string
}

func newFakeStorage() *fakeStorage {
	return &fakeStorage{objects: map[string][]byte{}}
}

func (s *fakeStorage) Upload(_ context.Context, key, _ string, body io.Reader) (string, error) {
	data, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	url := "https://cdn.test/" + key
	s.objects[url] = data
	return url, nil
}

func (s *fakeStorage) Remove(_ context.Context, fileURL string) error {
	delete(s.objects, fileURL)
	s.removed = append(s.removed, fileURL)
	return nil
}
