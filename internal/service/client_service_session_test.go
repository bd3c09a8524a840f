package service

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/logger"
	"github.com/KeenanHusselmann/basket-buddy-sub000/internal/mock"
	"github.com/KeenanHusselmann/basket-buddy-sub000/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// stubBackup counts pre-pull backups and can fail them.
type stubBackup struct {
	mu      sync.Mutex
	backups int
	err     error
}

func (b *stubBackup) BackupBeforePull(context.Context) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.backups++
	return b.err
}

func (b *stubBackup) Restore(context.Context) error            { return nil }
func (b *stubBackup) Export(context.Context) (string, error)   { return "", nil }
func (b *stubBackup) ImportBlob(context.Context, []byte) error { return nil }

func (b *stubBackup) count() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.backups
}

type sessionFixture struct {
	session   ClientSessionService
	remote    *mock.MockRemoteStore
	tree      *StateTree
	tracker   *DirtyTracker
	scheduler *stubScheduler
	backup    *stubBackup
	kv        *memoryKV
}

func newSessionFixture(t *testing.T, ctrl *gomock.Controller) *sessionFixture {
	t.Helper()

	remote := mock.NewMockRemoteStore(ctrl)
	kv := newMemoryKV()
	tracker := NewDirtyTracker()
	tree := NewStateTree(kv, tracker, newFakeClock(), logger.Nop())
	scheduler := &stubScheduler{}
	backup := &stubBackup{}

	return &sessionFixture{
		session:   NewClientSessionService(remote, tree, tracker, scheduler, backup, logger.Nop()),
		remote:    remote,
		tree:      tree,
		tracker:   tracker,
		scheduler: scheduler,
		backup:    backup,
		kv:        kv,
	}
}

func (f *sessionFixture) expectLogin(session models.Session) {
	f.remote.EXPECT().Login(gomock.Any(), "ann@example.com", "hunter2").Return(session, nil)
}

// oweLocalWrite preloads the store as a previous run would have left it
// with unconfirmed local changes.
func (f *sessionFixture) oweLocalWrite(t *testing.T, blob string) {
	t.Helper()
	ctx := context.Background()
	require.NoError(t, f.kv.Set(ctx, KeyStateBlob, []byte(blob)))
	require.NoError(t, f.kv.Set(ctx, KeyPendingWrite, []byte("1")))
}

// ── Sign-in paths ────────────────────────────────────────────────────────────

func TestClientSessionService_Login_RemoteFailureKeepsEngineUntouched(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSessionFixture(t, ctrl)

	f.remote.EXPECT().
		Login(gomock.Any(), "ann@example.com", "hunter2").
		Return(models.Session{}, fmt.Errorf("status 401: %w", ErrPermissionDenied))

	err := f.session.Login(context.Background(), "ann@example.com", "hunter2")

	require.ErrorIs(t, err, ErrPermissionDenied)
	assert.ErrorContains(t, err, "login")

	_, active := f.session.Current()
	assert.False(t, active)
	assert.Zero(t, f.scheduler.resets, "a rejected sign-in must not reset the running engine")
}

func TestClientSessionService_Login_FreshIdentityPullsRemoteState(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSessionFixture(t, ctrl)

	f.expectLogin(models.Session{IdentityID: "ann", Token: "jwt"})
	f.remote.EXPECT().Snapshot(gomock.Any()).Return(models.Ledger{
		models.CollectionItems: {models.Document{"id": "remote-1"}},
	}, nil)

	require.NoError(t, f.session.Login(context.Background(), "ann@example.com", "hunter2"))

	current, active := f.session.Current()
	assert.True(t, active)
	assert.Equal(t, "ann", current.IdentityID)

	assert.Equal(t, 1, f.backup.count(), "the pull must be preceded by a backup")
	assert.Len(t, f.tree.Snapshot()[models.CollectionItems], 1)
	assert.False(t, f.tracker.HasWork(), "adopted records are not local changes")
	assert.Equal(t, 1, f.scheduler.loadSignals)
	assert.Zero(t, f.scheduler.forced())

	pending, err := f.tree.PendingRemoteWrite(context.Background())
	require.NoError(t, err)
	assert.False(t, pending)
}

func TestClientSessionService_Login_OwedWriteSkipsPullAndUploads(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSessionFixture(t, ctrl)

	f.oweLocalWrite(t, `{"items":[{"id":"local-1"}]}`)
	f.expectLogin(models.Session{IdentityID: "ann"})
	// No snapshot expectation: pulling would overwrite the owed write.

	require.NoError(t, f.session.Login(context.Background(), "ann@example.com", "hunter2"))

	assert.Len(t, f.tree.Snapshot()[models.CollectionItems], 1)
	assert.Equal(t, 1, f.scheduler.loadSignals)
	assert.Equal(t, 1, f.scheduler.forced(), "the owed write is uploaded right after sign-in")
	assert.Zero(t, f.backup.count())
}

func TestClientSessionService_Login_FailedAutoUploadStillSignsIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSessionFixture(t, ctrl)
	f.scheduler.forceErr = fmt.Errorf("%w: cooldown until noon", ErrQuotaExhausted)

	f.oweLocalWrite(t, `{"items":[{"id":"local-1"}]}`)
	f.expectLogin(models.Session{IdentityID: "ann"})

	err := f.session.Login(context.Background(), "ann@example.com", "hunter2")

	require.NoError(t, err, "the upload can be retried later; the sign-in itself succeeded")
	assert.Equal(t, 1, f.scheduler.forced())

	pending, err := f.tree.PendingRemoteWrite(context.Background())
	require.NoError(t, err)
	assert.True(t, pending, "the owed write stays owed")
}

// ── Load failures ────────────────────────────────────────────────────────────

func TestClientSessionService_Login_SnapshotFailureIsLoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSessionFixture(t, ctrl)

	require.NoError(t, f.kv.Set(context.Background(), KeyStateBlob, []byte(`{"items":[{"id":"local-1"}]}`)))
	f.expectLogin(models.Session{IdentityID: "ann"})
	f.remote.EXPECT().Snapshot(gomock.Any()).Return(nil, fmt.Errorf("status 502: %w", ErrNetworkFailure))

	err := f.session.Login(context.Background(), "ann@example.com", "hunter2")

	require.ErrorIs(t, err, ErrLoadFailure, "a failed fetch must never pass for an empty account")
	assert.Zero(t, f.scheduler.loadSignals, "automatic commits stay blocked")
	assert.Zero(t, f.backup.count())
	assert.Len(t, f.tree.Snapshot()[models.CollectionItems], 1, "local state is still served for reading")
}

func TestClientSessionService_Login_BackupFailureAbortsPull(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSessionFixture(t, ctrl)
	f.backup.err = errors.New("store sealed")

	f.expectLogin(models.Session{IdentityID: "ann"})
	f.remote.EXPECT().Snapshot(gomock.Any()).Return(models.Ledger{
		models.CollectionItems: {models.Document{"id": "remote-1"}},
	}, nil)

	err := f.session.Login(context.Background(), "ann@example.com", "hunter2")

	require.ErrorIs(t, err, ErrLoadFailure)
	assert.Empty(t, f.tree.Snapshot()[models.CollectionItems], "without the safety snapshot nothing may be overwritten")
	assert.Zero(t, f.scheduler.loadSignals)
}

func TestClientSessionService_Login_FlagReadFailureIsLoadFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSessionFixture(t, ctrl)

	f.expectLogin(models.Session{IdentityID: "ann"})
	f.kv.getErr = errors.New("store sealed")

	err := f.session.Login(context.Background(), "ann@example.com", "hunter2")

	require.ErrorIs(t, err, ErrLoadFailure)
	assert.Zero(t, f.scheduler.loadSignals)
}

// ── Register ─────────────────────────────────────────────────────────────────

func TestClientSessionService_Register_RunsTheSameInitialLoad(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSessionFixture(t, ctrl)

	f.remote.EXPECT().
		Register(gomock.Any(), "new@example.com", "hunter2").
		Return(models.Session{IdentityID: "new"}, nil)
	f.remote.EXPECT().Snapshot(gomock.Any()).Return(models.Ledger{}, nil)

	require.NoError(t, f.session.Register(context.Background(), "new@example.com", "hunter2"))

	current, active := f.session.Current()
	assert.True(t, active)
	assert.Equal(t, "new", current.IdentityID)
	assert.Equal(t, 1, f.scheduler.loadSignals)
}

func TestClientSessionService_Register_RemoteFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSessionFixture(t, ctrl)

	f.remote.EXPECT().
		Register(gomock.Any(), "taken@example.com", "hunter2").
		Return(models.Session{}, fmt.Errorf("status 409: %w", ErrPermissionDenied))

	err := f.session.Register(context.Background(), "taken@example.com", "hunter2")

	require.Error(t, err)
	assert.ErrorContains(t, err, "register")

	_, active := f.session.Current()
	assert.False(t, active)
}

// ── Identity switching ───────────────────────────────────────────────────────

func TestClientSessionService_CurrentBeforeSignIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSessionFixture(t, ctrl)

	_, active := f.session.Current()
	assert.False(t, active)
}

func TestClientSessionService_SwitchingIdentityResetsEngine(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSessionFixture(t, ctrl)
	ctx := context.Background()

	f.remote.EXPECT().
		Login(gomock.Any(), "ann@example.com", "hunter2").
		Return(models.Session{IdentityID: "ann"}, nil)
	f.remote.EXPECT().Snapshot(gomock.Any()).Return(models.Ledger{
		models.CollectionItems: {models.Document{"id": "anns-item"}},
	}, nil)
	require.NoError(t, f.session.Login(ctx, "ann@example.com", "hunter2"))

	// Tracking left behind by the first identity's unconfirmed commit.
	f.tracker.MarkDirty(models.CollectionItems, "draft")
	f.tracker.MarkDeleted(models.CollectionTags, "t1")
	require.True(t, f.tracker.HasWork())

	f.remote.EXPECT().
		Login(gomock.Any(), "bob@example.com", "hunter2").
		Return(models.Session{IdentityID: "bob"}, nil)
	f.remote.EXPECT().Snapshot(gomock.Any()).Return(models.Ledger{
		models.CollectionItems: {models.Document{"id": "bobs-item"}},
	}, nil)
	require.NoError(t, f.session.Login(ctx, "bob@example.com", "hunter2"))

	assert.Equal(t, 2, f.scheduler.resets)
	assert.False(t, f.tracker.HasWork(), "the previous identity's drafts must not upload under the new one")

	current, _ := f.session.Current()
	assert.Equal(t, "bob", current.IdentityID)

	items := f.tree.Snapshot()[models.CollectionItems]
	require.Len(t, items, 1)
	assert.Equal(t, "bobs-item", items[0]["id"])
}

// ── Profile ──────────────────────────────────────────────────────────────────

func TestClientSessionService_Profile_BeforeSignIn(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSessionFixture(t, ctrl)

	_, err := f.session.Profile(context.Background())

	require.ErrorIs(t, err, ErrNotSignedIn)
}

func TestClientSessionService_Profile_DelegatesToRemote(t *testing.T) {
	ctrl := gomock.NewController(t)
	defer ctrl.Finish()
	f := newSessionFixture(t, ctrl)
	ctx := context.Background()

	f.expectLogin(models.Session{IdentityID: "ann"})
	f.remote.EXPECT().Snapshot(gomock.Any()).Return(models.Ledger{}, nil)
	require.NoError(t, f.session.Login(ctx, "ann@example.com", "hunter2"))

	stamp := time.Date(2026, 5, 2, 9, 30, 0, 0, time.UTC)
	f.remote.EXPECT().Profile(gomock.Any()).Return(models.Profile{LastSyncAt: &stamp}, nil)

	profile, err := f.session.Profile(ctx)

	require.NoError(t, err)
	require.NotNil(t, profile.LastSyncAt)
	assert.True(t, profile.LastSyncAt.Equal(stamp))
}
