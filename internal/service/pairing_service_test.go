package service

import (
	"context"
	"regexp"
	"testing"
	"time"
	"writequest_app/internal/config"
	"writequest_app/internal/model"
	"writequest_app/internal/util"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeCodeStore struct {
	puts     map[string]*PairingPayload
	putTTL   time.Duration
	takeCall int
}

func newFakeCodeStore() *fakeCodeStore {
	return &fakeCodeStore{puts: make(map[string]*PairingPayload)}
}

func (f *fakeCodeStore) Put(ctx context.Context, code string, payload *PairingPayload, ttl time.Duration) error {
	f.puts[code] = payload
	f.putTTL = ttl
	return nil
}

func (f *fakeCodeStore) Take(ctx context.Context, code string) (*PairingPayload, error) {
	f.takeCall++
	payload, ok := f.puts[code]
	if !ok {
		return nil, util.ErrPairingCodeExpired
	}
	delete(f.puts, code)
	return payload, nil
}

type fakeSessionRepo struct {
	active   int64
	sessions map[string]*model.PairingSession
	logs     []*model.EditorSaveLog
}

func newFakeSessionRepo() *fakeSessionRepo {
	return &fakeSessionRepo{sessions: make(map[string]*model.PairingSession)}
}

func (f *fakeSessionRepo) Create(session *model.PairingSession) error {
	if session.ID == "" {
		session.ID = model.GenerateUUID()
	}
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeSessionRepo) FindByID(id string) (*model.PairingSession, error) {
	s, ok := f.sessions[id]
	if !ok {
		return nil, util.ErrSessionNotFound
	}
	return s, nil
}

func (f *fakeSessionRepo) Revoke(id string, now time.Time) error {
	if s, ok := f.sessions[id]; ok && s.RevokedAt == nil {
		s.RevokedAt = &now
	}
	return nil
}

func (f *fakeSessionRepo) TouchSave(id string, now time.Time) error { return nil }

func (f *fakeSessionRepo) DeleteExpired(now time.Time) (int64, error) { return 0, nil }

func (f *fakeSessionRepo) LogSave(log *model.EditorSaveLog) error {
	f.logs = append(f.logs, log)
	return nil
}

func (f *fakeSessionRepo) CountActiveByUser(userID string, now time.Time) (int64, error) {
	return f.active, nil
}

type fakeProjectSource struct {
	projects []model.WritingProject
}

func (f *fakeProjectSource) GetWritingProjects(ctx context.Context, userID string) ([]model.WritingProject, error) {
	return f.projects, nil
}

func (f *fakeProjectSource) UpsertWritingProject(ctx context.Context, project *model.WritingProject) error {
	return nil
}

func (f *fakeProjectSource) DeleteWritingProject(ctx context.Context, id string) error {
	return nil
}

func TestNormalizeCode(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    string
		wantErr bool
	}{
		{"lowercase", "abcd23", "ABCD23", false},
		{"spaces and dash", " AB-CD 23 ", "ABCD23", false},
		{"already clean", "XYZ789", "XYZ789", false},
		{"too short", "ABC23", "", true},
		{"too long", "ABCD234", "", true},
		{"symbols", "ABC!23", "", true},
		{"empty", "", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := NormalizeCode(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, util.ErrPairingCodeInvalid)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestGeneratedCodeAvoidsAmbiguousCharacters(t *testing.T) {
	allowed := regexp.MustCompile(`^[ABCDEFGHJKLMNPQRSTUVWXYZ23456789]{6}$`)
	for i := 0; i < 50; i++ {
		code, err := generateCode()
		require.NoError(t, err)
		assert.Regexp(t, allowed, code)
	}
}

func TestIssueCodeStoresPayloadWithTTL(t *testing.T) {
	codes := newFakeCodeStore()
	svc := NewPairingService(nil, codes, nil, &config.Config{})

	code, expiresAt, err := svc.IssueCode(context.Background(), "user-1", "project-1")
	require.NoError(t, err)

	payload, ok := codes.puts[code]
	require.True(t, ok, "issued code must be in the store")
	assert.Equal(t, "user-1", payload.UserID)
	assert.Equal(t, "project-1", payload.ProjectID)
	assert.Equal(t, 10*time.Minute, codes.putTTL, "default code TTL")
	assert.WithinDuration(t, time.Now().Add(10*time.Minute), expiresAt, 5*time.Second)
}

func TestClaimRejectsMalformedCodeLocally(t *testing.T) {
	codes := newFakeCodeStore()
	svc := NewPairingService(nil, codes, nil, &config.Config{})

	_, err := svc.Claim(context.Background(), "AB12")
	assert.ErrorIs(t, err, util.ErrPairingCodeInvalid)
	assert.Equal(t, 0, codes.takeCall, "format failures must not touch the code store")
}

func TestClaimUnknownCode(t *testing.T) {
	codes := newFakeCodeStore()
	svc := NewPairingService(nil, codes, nil, &config.Config{})

	_, err := svc.Claim(context.Background(), "ABCD23")
	assert.ErrorIs(t, err, util.ErrPairingCodeExpired)
	assert.Equal(t, 1, codes.takeCall)
}

func TestClaimIssuesEditorToken(t *testing.T) {
	codes := newFakeCodeStore()
	repo := newFakeSessionRepo()
	source := &fakeProjectSource{projects: []model.WritingProject{
		{ID: "project-1", UserID: "user-1", Title: "Dragon Tale", Genre: model.GenreStory},
	}}
	cfg := &config.Config{JWT: config.JWTConfig{Secret: "test-secret"}}
	svc := NewPairingService(repo, codes, source, cfg)
	defer svc.Close()

	code, _, err := svc.IssueCode(context.Background(), "user-1", "project-1")
	require.NoError(t, err)

	result, err := svc.Claim(context.Background(), code)
	require.NoError(t, err)

	claims, err := util.ParseEditorToken(result.Token, "test-secret")
	require.NoError(t, err)
	assert.Equal(t, result.SessionID, claims.SessionID)
	assert.Equal(t, "user-1", claims.UserID)
	assert.Equal(t, "project-1", claims.ProjectID)

	stored, err := repo.FindByID(result.SessionID)
	require.NoError(t, err)
	assert.True(t, stored.Active(time.Now()))

	project, err := svc.Project(result.SessionID)
	require.NoError(t, err)
	assert.Equal(t, "Dragon Tale", project.Title)
}

func TestClaimEnforcesActiveSessionLimit(t *testing.T) {
	codes := newFakeCodeStore()
	repo := newFakeSessionRepo()
	repo.active = 3
	svc := NewPairingService(repo, codes, &fakeProjectSource{}, &config.Config{})

	code, _, err := svc.IssueCode(context.Background(), "user-1", "project-1")
	require.NoError(t, err)

	_, err = svc.Claim(context.Background(), code)
	assert.ErrorIs(t, err, util.ErrSessionLimit)
	assert.Empty(t, repo.sessions, "a rejected claim must not leave a session row behind")
}
