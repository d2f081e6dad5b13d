package domain

import (
	"context"
	"testing"
	"time"

	"branch-content-review/internal/entities"
	"branch-content-review/internal/repository"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type repoMock struct{ mock.Mock }

var _ repository.Repository = (*repoMock)(nil)

func (m *repoMock) OnStart(_ context.Context) error { return nil }
func (m *repoMock) OnStop(_ context.Context) error  { return nil }

func (m *repoMock) GetUser(ctx context.Context, userID string) (*entities.User, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.User), args.Error(1)
}

func (m *repoMock) GetActiveBranch(ctx context.Context, userID, orgID string) (*entities.Branch, error) {
	args := m.Called(ctx, userID, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Branch), args.Error(1)
}

func (m *repoMock) CreateBranch(ctx context.Context, userID, orgID string) (*entities.Branch, error) {
	args := m.Called(ctx, userID, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Branch), args.Error(1)
}

func (m *repoMock) GetBranchByPR(ctx context.Context, prID, orgID string) (*entities.Branch, error) {
	args := m.Called(ctx, prID, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Branch), args.Error(1)
}

func (m *repoMock) DeactivateBranch(ctx context.Context, branchID, userID string) error {
	return m.Called(ctx, branchID, userID).Error(0)
}

func (m *repoMock) DestroyBranch(ctx context.Context, branchID, userID string) error {
	return m.Called(ctx, branchID, userID).Error(0)
}

func (m *repoMock) CreateContent(ctx context.Context, branchID string, kind entities.EntityKind, content entities.VersionContent, editSessionID *string) (*entities.Version, error) {
	args := m.Called(ctx, branchID, kind, content, editSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Version), args.Error(1)
}

func (m *repoMock) UpdateContent(ctx context.Context, branchID string, kind entities.EntityKind, entityID string, content entities.VersionContent, editSessionID *string) (*entities.Version, error) {
	args := m.Called(ctx, branchID, kind, entityID, content, editSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Version), args.Error(1)
}

func (m *repoMock) DeleteContent(ctx context.Context, branchID string, kind entities.EntityKind, entityID string, editSessionID *string) ([]entities.Version, error) {
	args := m.Called(ctx, branchID, kind, entityID, editSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Version), args.Error(1)
}

func (m *repoMock) OpenEdits(ctx context.Context, branchID string) ([]entities.EditTracker, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.EditTracker), args.Error(1)
}

func (m *repoMock) BranchEdits(ctx context.Context, branchID string) ([]entities.EditTracker, error) {
	args := m.Called(ctx, branchID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.EditTracker), args.Error(1)
}

func (m *repoMock) GetVersion(ctx context.Context, versionID string) (*entities.Version, error) {
	args := m.Called(ctx, versionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Version), args.Error(1)
}

func (m *repoMock) LatestMergedVersion(ctx context.Context, entityID string) (*entities.Version, error) {
	args := m.Called(ctx, entityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Version), args.Error(1)
}

func (m *repoMock) SessionDiffs(ctx context.Context, editSessionID string) ([]entities.EditSessionDiff, error) {
	args := m.Called(ctx, editSessionID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.EditSessionDiff), args.Error(1)
}

func (m *repoMock) CreateCommit(ctx context.Context, prID, userID, message string) (*entities.Commit, error) {
	args := m.Called(ctx, prID, userID, message)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.Commit), args.Error(1)
}

func (m *repoMock) CreatePullRequest(ctx context.Context, pr entities.PullRequest, reviewerIDs []string) (*entities.PullRequest, error) {
	args := m.Called(ctx, pr, reviewerIDs)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PullRequest), args.Error(1)
}

func (m *repoMock) GetPullRequest(ctx context.Context, prID, orgID string) (*entities.PullRequest, error) {
	args := m.Called(ctx, prID, orgID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PullRequest), args.Error(1)
}

func (m *repoMock) GetReviewers(ctx context.Context, prID string) ([]entities.Reviewer, error) {
	args := m.Called(ctx, prID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.Reviewer), args.Error(1)
}

func (m *repoMock) ApprovePullRequest(ctx context.Context, prID, reviewerID string) error {
	return m.Called(ctx, prID, reviewerID).Error(0)
}

func (m *repoMock) MergePullRequest(ctx context.Context, prID, userID string) (*entities.PullRequest, error) {
	args := m.Called(ctx, prID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PullRequest), args.Error(1)
}

func (m *repoMock) ClosePullRequest(ctx context.Context, prID, userID string) (*entities.PullRequest, error) {
	args := m.Called(ctx, prID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PullRequest), args.Error(1)
}

func (m *repoMock) ReopenPullRequest(ctx context.Context, prID, userID string) (*entities.PullRequest, error) {
	args := m.Called(ctx, prID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PullRequest), args.Error(1)
}

func (m *repoMock) UpdatePullRequest(ctx context.Context, prID, userID, title, description string) (*entities.PullRequest, error) {
	args := m.Called(ctx, prID, userID, title, description)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.PullRequest), args.Error(1)
}

func (m *repoMock) ListActivity(ctx context.Context, prID string) ([]entities.ActivityLog, error) {
	args := m.Called(ctx, prID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.ActivityLog), args.Error(1)
}

func (m *repoMock) TryAcquireSession(ctx context.Context, prID, userID string) (entities.AcquireOutcome, error) {
	args := m.Called(ctx, prID, userID)
	if args.Get(0) == nil {
		return entities.AcquireOutcome{}, args.Error(1)
	}
	return args.Get(0).(entities.AcquireOutcome), args.Error(1)
}

func (m *repoMock) ReleaseSession(ctx context.Context, branchID, userID string) error {
	return m.Called(ctx, branchID, userID).Error(0)
}

func (m *repoMock) StartEditSession(ctx context.Context, prID, userID, token string) (*entities.EditSession, error) {
	args := m.Called(ctx, prID, userID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EditSession), args.Error(1)
}

func (m *repoMock) FinishEditSession(ctx context.Context, token string) (*entities.EditSession, error) {
	args := m.Called(ctx, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EditSession), args.Error(1)
}

func (m *repoMock) GetEditSession(ctx context.Context, prID, token string) (*entities.EditSession, error) {
	args := m.Called(ctx, prID, token)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.EditSession), args.Error(1)
}

func (m *repoMock) CreateFixRequest(ctx context.Context, fr entities.FixRequest) (*entities.FixRequest, error) {
	args := m.Called(ctx, fr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FixRequest), args.Error(1)
}

func (m *repoMock) SetFixRequestStatus(ctx context.Context, fixRequestID string, status entities.FixRequestStatus) (*entities.FixRequest, error) {
	args := m.Called(ctx, fixRequestID, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*entities.FixRequest), args.Error(1)
}

func (m *repoMock) ListFixRequests(ctx context.Context, prID string) ([]entities.FixRequest, error) {
	args := m.Called(ctx, prID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]entities.FixRequest), args.Error(1)
}

var (
	editorID = entities.Identity{UserID: "u1", OrganizationID: "org1", Role: entities.RoleEditor}
	viewerID = entities.Identity{UserID: "u2", OrganizationID: "org1", Role: entities.RoleViewer}
)

func newTestUsecase(repo *repoMock) *Usecase {
	return New(zap.NewNop().Sugar(), context.Background(), repo, time.Second)
}

func TestUsecase_CreateContentValidation(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	_, err := uc.CreateContent(context.Background(), editorID, entities.KindDocument, entities.VersionContent{Slug: "faq"}, nil, nil)
	require.ErrorIs(t, err, entities.ErrInvalidArgument)
	repo.AssertNotCalled(t, "CreateContent", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUsecase_CreateContentViewerForbidden(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	_, err := uc.CreateContent(context.Background(), viewerID, entities.KindDocument,
		entities.VersionContent{Title: "FAQ", Slug: "faq"}, nil, nil)
	require.ErrorIs(t, err, entities.ErrNotAuthorized)
}

func TestUsecase_CreateContentNormalizesBody(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	repo.On("GetActiveBranch", mock.Anything, "u1", "org1").
		Return(&entities.Branch{ID: "b1", UserID: "u1", OrganizationID: "org1", IsActive: true}, nil)
	repo.On("CreateContent", mock.Anything, "b1", entities.KindDocument,
		mock.MatchedBy(func(c entities.VersionContent) bool {
			return c.Body == "line one\nline two"
		}), (*string)(nil)).
		Return(&entities.Version{ID: "v1", EntityID: "e1"}, nil)

	v, err := uc.CreateContent(context.Background(), editorID, entities.KindDocument,
		entities.VersionContent{Title: "FAQ", Slug: "faq", Body: "line one \r\nline two\t"}, nil, nil)
	require.NoError(t, err)
	require.Equal(t, "v1", v.ID)
	repo.AssertExpectations(t)
}

func TestUsecase_FetchOrCreateActiveBranchCreatesWhenMissing(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	repo.On("GetActiveBranch", mock.Anything, "u1", "org1").
		Return(nil, entities.ErrBranchNotFound)
	repo.On("CreateBranch", mock.Anything, "u1", "org1").
		Return(&entities.Branch{ID: "b-new", UserID: "u1", OrganizationID: "org1", IsActive: true}, nil)

	branchID, err := uc.FetchOrCreateActiveBranch(context.Background(), editorID, nil)
	require.NoError(t, err)
	require.Equal(t, "b-new", branchID)
	repo.AssertExpectations(t)
}

func TestUsecase_CreateCommitValidation(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	_, err := uc.CreateCommit(context.Background(), editorID, "pr1", "")
	require.ErrorIs(t, err, entities.ErrInvalidArgument)
	repo.AssertNotCalled(t, "CreateCommit", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestUsecase_CreateCommitDelegates(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	repo.On("GetPullRequest", mock.Anything, "pr1", "org1").
		Return(&entities.PullRequest{ID: "pr1", Status: entities.StatusOpened}, nil)
	repo.On("CreateCommit", mock.Anything, "pr1", "u1", "add faq").
		Return(&entities.Commit{ID: "c1", PullRequestID: "pr1", Message: "add faq"}, nil)

	c, err := uc.CreateCommit(context.Background(), editorID, "pr1", "add faq")
	require.NoError(t, err)
	require.Equal(t, "c1", c.ID)
	repo.AssertExpectations(t)
}

func TestUsecase_AcquireSessionHeldNamesHolder(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	repo.On("GetPullRequest", mock.Anything, "pr1", "org1").
		Return(&entities.PullRequest{ID: "pr1", Status: entities.StatusOpened}, nil)
	repo.On("TryAcquireSession", mock.Anything, "pr1", "u1").
		Return(entities.AcquireOutcome{Acquired: false, HeldBy: "other-user"}, nil)

	_, err := uc.AcquireSession(context.Background(), editorID, "pr1")
	require.ErrorIs(t, err, entities.ErrDuplicateExecution)
	require.Contains(t, err.Error(), "other-user")
}

func TestUsecase_AcquireSessionViewerForbidden(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	_, err := uc.AcquireSession(context.Background(), viewerID, "pr1")
	require.ErrorIs(t, err, entities.ErrNotAuthorized)
	repo.AssertNotCalled(t, "TryAcquireSession", mock.Anything, mock.Anything, mock.Anything)
}

func TestUsecase_AcquireSessionDelegates(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	repo.On("GetPullRequest", mock.Anything, "pr1", "org1").
		Return(&entities.PullRequest{ID: "pr1", Status: entities.StatusOpened}, nil)
	repo.On("TryAcquireSession", mock.Anything, "pr1", "u1").
		Return(entities.AcquireOutcome{Acquired: true, Session: &entities.BranchSession{ID: "s1", BranchID: "b1", UserID: "u1"}}, nil)

	s, err := uc.AcquireSession(context.Background(), editorID, "pr1")
	require.NoError(t, err)
	require.Equal(t, "s1", s.ID)
}

func TestUsecase_BranchDiffClassification(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	repo.On("GetActiveBranch", mock.Anything, "u1", "org1").
		Return(&entities.Branch{ID: "b1", UserID: "u1", OrganizationID: "org1", IsActive: true}, nil)
	repo.On("BranchEdits", mock.Anything, "b1").Return([]entities.EditTracker{
		{ID: "t1", BranchID: "b1", Kind: entities.KindDocument, EntityID: "e-created", OriginalVersionID: "v1", CurrentVersionID: "v1"},
		{ID: "t2", BranchID: "b1", Kind: entities.KindDocument, EntityID: "e-updated", OriginalVersionID: "m1", CurrentVersionID: "v2"},
		{ID: "t3", BranchID: "b1", Kind: entities.KindCategory, EntityID: "e-deleted", OriginalVersionID: "m2", CurrentVersionID: "v3"},
	}, nil)

	repo.On("GetVersion", mock.Anything, "v1").
		Return(&entities.Version{ID: "v1", EntityID: "e-created", Kind: entities.KindDocument, Title: "New", Slug: "new", Status: entities.StatusDraft}, nil)
	repo.On("LatestMergedVersion", mock.Anything, "e-created").
		Return(nil, entities.ErrVersionNotFound)

	repo.On("GetVersion", mock.Anything, "v2").
		Return(&entities.Version{ID: "v2", EntityID: "e-updated", Kind: entities.KindDocument, Title: "Edited", Slug: "doc", Status: entities.StatusDraft}, nil)
	repo.On("LatestMergedVersion", mock.Anything, "e-updated").
		Return(&entities.Version{ID: "m1", EntityID: "e-updated", Kind: entities.KindDocument, Title: "Original", Slug: "doc", Status: entities.StatusMerged}, nil)

	repo.On("GetVersion", mock.Anything, "v3").
		Return(&entities.Version{ID: "v3", EntityID: "e-deleted", Kind: entities.KindCategory, Title: "Gone", Slug: "gone", Status: entities.StatusDraft, IsDeleted: true}, nil)
	repo.On("LatestMergedVersion", mock.Anything, "e-deleted").
		Return(&entities.Version{ID: "m2", EntityID: "e-deleted", Kind: entities.KindCategory, Title: "Gone", Slug: "gone", Status: entities.StatusMerged}, nil)

	diff, err := uc.BranchDiff(context.Background(), editorID, nil)
	require.NoError(t, err)

	require.Len(t, diff.Documents, 2)
	require.Len(t, diff.Categories, 1)

	require.Equal(t, entities.DiffCreated, diff.Documents[0].ChangeType)
	require.Nil(t, diff.Documents[0].Before)

	require.Equal(t, entities.DiffUpdated, diff.Documents[1].ChangeType)
	require.NotNil(t, diff.Documents[1].Before)
	require.Contains(t, diff.Documents[1].FieldDiffs, "title")

	require.Equal(t, entities.DiffDeleted, diff.Categories[0].ChangeType)
	require.Nil(t, diff.Categories[0].After)
}

func TestUsecase_BranchDiffSupersededRowsCollapse(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	repo.On("GetActiveBranch", mock.Anything, "u1", "org1").
		Return(&entities.Branch{ID: "b1", UserID: "u1", OrganizationID: "org1", IsActive: true}, nil)
	repo.On("BranchEdits", mock.Anything, "b1").Return([]entities.EditTracker{
		{ID: "t1", BranchID: "b1", Kind: entities.KindDocument, EntityID: "e1", OriginalVersionID: "v1", CurrentVersionID: "v1"},
		{ID: "t2", BranchID: "b1", Kind: entities.KindDocument, EntityID: "e1", OriginalVersionID: "v1", CurrentVersionID: "v2"},
	}, nil)
	repo.On("GetVersion", mock.Anything, "v2").
		Return(&entities.Version{ID: "v2", EntityID: "e1", Kind: entities.KindDocument, Title: "Second", Slug: "doc", Status: entities.StatusDraft}, nil)
	repo.On("LatestMergedVersion", mock.Anything, "e1").
		Return(nil, entities.ErrVersionNotFound)

	diff, err := uc.BranchDiff(context.Background(), editorID, nil)
	require.NoError(t, err)

	require.Len(t, diff.Documents, 1)
	require.Equal(t, "Second", diff.Documents[0].Title)
	repo.AssertNotCalled(t, "GetVersion", mock.Anything, "v1")
}

func TestUsecase_BranchDiffKeepsCommittedEdits(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	commitID := "c1"
	repo.On("GetActiveBranch", mock.Anything, "u1", "org1").
		Return(&entities.Branch{ID: "b1", UserID: "u1", OrganizationID: "org1", IsActive: true}, nil)
	repo.On("BranchEdits", mock.Anything, "b1").Return([]entities.EditTracker{
		{ID: "t1", BranchID: "b1", Kind: entities.KindDocument, EntityID: "e1",
			OriginalVersionID: "v1", CurrentVersionID: "v1", CommitID: &commitID},
	}, nil)
	repo.On("GetVersion", mock.Anything, "v1").
		Return(&entities.Version{ID: "v1", EntityID: "e1", Kind: entities.KindDocument, Title: "FAQ", Slug: "faq", Status: entities.StatusPushed}, nil)
	repo.On("LatestMergedVersion", mock.Anything, "e1").
		Return(nil, entities.ErrVersionNotFound)

	diff, err := uc.BranchDiff(context.Background(), editorID, nil)
	require.NoError(t, err)

	// Committing promotes the draft to pushed but the diff still reports it
	// as created against the empty baseline.
	require.Len(t, diff.Documents, 1)
	require.Equal(t, entities.DiffCreated, diff.Documents[0].ChangeType)
	require.Nil(t, diff.Documents[0].Before)
	require.Equal(t, entities.StatusPushed, diff.Documents[0].Status)
}

func TestUsecase_MergeViewerForbidden(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	_, err := uc.MergePullRequest(context.Background(), viewerID, "pr1")
	require.ErrorIs(t, err, entities.ErrNotAuthorized)
	repo.AssertNotCalled(t, "MergePullRequest", mock.Anything, mock.Anything, mock.Anything)
}

func TestUsecase_StartEditSessionGeneratesToken(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	repo.On("GetPullRequest", mock.Anything, "pr1", "org1").
		Return(&entities.PullRequest{ID: "pr1", Status: entities.StatusOpened}, nil)
	repo.On("StartEditSession", mock.Anything, "pr1", "u1", mock.MatchedBy(func(token string) bool {
		return token != ""
	})).Return(&entities.EditSession{ID: "s1", PullRequestID: "pr1", Token: "tok"}, nil)

	s, err := uc.StartEditSession(context.Background(), editorID, "pr1")
	require.NoError(t, err)
	require.Equal(t, "s1", s.ID)
	repo.AssertExpectations(t)
}

func TestUsecase_CreateFixRequestValidation(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	_, err := uc.CreateFixRequest(context.Background(), editorID, entities.FixRequest{PullRequestID: "pr1"})
	require.ErrorIs(t, err, entities.ErrInvalidArgument)
}

func TestUsecase_ApplyFixRequestDelegates(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	repo.On("SetFixRequestStatus", mock.Anything, "fr1", entities.FixApplied).
		Return(&entities.FixRequest{ID: "fr1", Status: entities.FixApplied}, nil)

	fr, err := uc.ApplyFixRequest(context.Background(), editorID, "fr1")
	require.NoError(t, err)
	require.Equal(t, entities.FixApplied, fr.Status)
}

func TestUsecase_ReleaseSessionValidation(t *testing.T) {
	repo := &repoMock{}
	uc := newTestUsecase(repo)

	err := uc.ReleaseSession(context.Background(), editorID, "")
	require.ErrorIs(t, err, entities.ErrInvalidArgument)
}
