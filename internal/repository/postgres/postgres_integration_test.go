package postgres

import (
	"context"
	"database/sql"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"branch-content-review/config"
	"branch-content-review/internal/entities"

	_ "github.com/lib/pq"
	"github.com/ory/dockertest/v3"
	"github.com/ory/dockertest/v3/docker"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const (
	orgID   = "00000000-0000-0000-0000-000000000001"
	aliceID = "00000000-0000-0000-0000-0000000000a1"
	bobID   = "00000000-0000-0000-0000-0000000000b1"
)

func TestReviewFlowIntegration(t *testing.T) {
	ctx := context.Background()

	repo := setupRepo(t)

	branch, err := repo.CreateBranch(ctx, aliceID, orgID)
	require.NoError(t, err)
	require.True(t, branch.IsActive)

	active, err := repo.GetActiveBranch(ctx, aliceID, orgID)
	require.NoError(t, err)
	require.Equal(t, branch.ID, active.ID)

	v, err := repo.CreateContent(ctx, branch.ID, entities.KindDocument, entities.VersionContent{
		Title: "FAQ", Slug: "faq", Body: "# FAQ\n\nanswers",
	}, nil)
	require.NoError(t, err)
	require.Equal(t, entities.StatusDraft, v.Status)

	edits, err := repo.OpenEdits(ctx, branch.ID)
	require.NoError(t, err)
	require.Len(t, edits, 1)
	require.Equal(t, edits[0].OriginalVersionID, edits[0].CurrentVersionID)

	pr, err := repo.CreatePullRequest(ctx, entities.PullRequest{
		OrganizationID: orgID, BranchID: branch.ID, AuthorID: aliceID, Title: "Add FAQ",
	}, []string{bobID})
	require.NoError(t, err)
	require.Equal(t, entities.StatusOpened, pr.Status)

	pushed, err := repo.GetVersion(ctx, v.ID)
	require.NoError(t, err)
	require.Equal(t, entities.StatusPushed, pushed.Status)

	// Commit needs the branch session.
	_, err = repo.CreateCommit(ctx, pr.ID, aliceID, "add faq")
	require.ErrorIs(t, err, entities.ErrNotAuthorized)

	out, err := repo.TryAcquireSession(ctx, pr.ID, aliceID)
	require.NoError(t, err)
	require.True(t, out.Acquired)
	require.Equal(t, branch.ID, out.Session.BranchID)

	out2, err := repo.TryAcquireSession(ctx, pr.ID, bobID)
	require.NoError(t, err)
	require.False(t, out2.Acquired)
	require.Equal(t, aliceID, out2.HeldBy)

	commit, err := repo.CreateCommit(ctx, pr.ID, aliceID, "add faq")
	require.NoError(t, err)
	require.Equal(t, branch.ID, commit.BranchID)

	edits, err = repo.OpenEdits(ctx, branch.ID)
	require.NoError(t, err)
	require.Empty(t, edits)

	// The claimed edit stays visible to the diff views until it merges.
	live, err := repo.BranchEdits(ctx, branch.ID)
	require.NoError(t, err)
	require.Len(t, live, 1)
	require.NotNil(t, live[0].CommitID)
	require.Equal(t, v.ID, live[0].CurrentVersionID)

	_, err = repo.CreateCommit(ctx, pr.ID, aliceID, "nothing left")
	require.ErrorIs(t, err, entities.ErrNoOpenEdits)

	require.NoError(t, repo.ApprovePullRequest(ctx, pr.ID, bobID))
	err = repo.ApprovePullRequest(ctx, pr.ID, aliceID)
	require.ErrorIs(t, err, entities.ErrNotAuthorized)

	reviewers, err := repo.GetReviewers(ctx, pr.ID)
	require.NoError(t, err)
	require.Len(t, reviewers, 1)
	require.Equal(t, entities.ReviewerApproved, reviewers[0].ActionStatus)

	merged, err := repo.MergePullRequest(ctx, pr.ID, aliceID)
	require.NoError(t, err)
	require.Equal(t, entities.StatusPRMerged, merged.Status)

	baseline, err := repo.LatestMergedVersion(ctx, v.EntityID)
	require.NoError(t, err)
	require.Equal(t, v.ID, baseline.ID)
	require.Nil(t, baseline.BranchID)

	live, err = repo.BranchEdits(ctx, branch.ID)
	require.NoError(t, err)
	require.Empty(t, live)

	_, err = repo.MergePullRequest(ctx, pr.ID, aliceID)
	require.ErrorIs(t, err, entities.ErrConflict)

	logs, err := repo.ListActivity(ctx, pr.ID)
	require.NoError(t, err)
	actions := make([]string, 0, len(logs))
	for _, l := range logs {
		actions = append(actions, l.Action)
	}
	require.Equal(t, []string{
		entities.ActivityOpened,
		entities.ActivityCommitted,
		entities.ActivityApproved,
		entities.ActivityMerged,
	}, actions)

	require.NoError(t, repo.ReleaseSession(ctx, branch.ID, aliceID))
	// Releasing again is a no-op.
	require.NoError(t, repo.ReleaseSession(ctx, branch.ID, aliceID))
}

func TestCategoryTreeDeleteIntegration(t *testing.T) {
	ctx := context.Background()

	repo := setupRepo(t)

	branch, err := repo.CreateBranch(ctx, aliceID, orgID)
	require.NoError(t, err)

	root, err := repo.CreateContent(ctx, branch.ID, entities.KindCategory, entities.VersionContent{
		Title: "Guides", Slug: "guides",
	}, nil)
	require.NoError(t, err)

	sub, err := repo.CreateContent(ctx, branch.ID, entities.KindCategory, entities.VersionContent{
		Title: "Install", Slug: "install", ParentID: &root.EntityID,
	}, nil)
	require.NoError(t, err)

	_, err = repo.CreateContent(ctx, branch.ID, entities.KindDocument, entities.VersionContent{
		Title: "Intro", Slug: "intro", ParentID: &root.EntityID,
	}, nil)
	require.NoError(t, err)

	_, err = repo.CreateContent(ctx, branch.ID, entities.KindDocument, entities.VersionContent{
		Title: "Linux", Slug: "linux", ParentID: &sub.EntityID,
	}, nil)
	require.NoError(t, err)

	tombstones, err := repo.DeleteContent(ctx, branch.ID, entities.KindCategory, root.EntityID, nil)
	require.NoError(t, err)
	require.Len(t, tombstones, 4)
	for _, ts := range tombstones {
		require.True(t, ts.IsDeleted)
		require.NotNil(t, ts.DeletedAt)
	}

	// The superseded same-branch drafts are hard-deleted; every entity's
	// current version is now its tombstone.
	edits, err := repo.OpenEdits(ctx, branch.ID)
	require.NoError(t, err)
	latest := map[string]entities.EditTracker{}
	for _, e := range edits {
		latest[e.EntityID] = e
	}
	require.Len(t, latest, 4)
	for _, e := range latest {
		cur, err := repo.GetVersion(ctx, e.CurrentVersionID)
		require.NoError(t, err)
		require.True(t, cur.IsDeleted)
		_, err = repo.GetVersion(ctx, e.OriginalVersionID)
		require.ErrorIs(t, err, entities.ErrVersionNotFound)
	}
}

func TestCompetingMergeConflictIntegration(t *testing.T) {
	ctx := context.Background()

	repo := setupRepo(t)

	mergeAs := func(userID, branchID, title string, reviewer string) *entities.PullRequest {
		t.Helper()
		pr, err := repo.CreatePullRequest(ctx, entities.PullRequest{
			OrganizationID: orgID, BranchID: branchID, AuthorID: userID, Title: title,
		}, []string{reviewer})
		require.NoError(t, err)
		out, err := repo.TryAcquireSession(ctx, pr.ID, userID)
		require.NoError(t, err)
		require.True(t, out.Acquired)
		_, err = repo.CreateCommit(ctx, pr.ID, userID, title)
		require.NoError(t, err)
		merged, err := repo.MergePullRequest(ctx, pr.ID, userID)
		require.NoError(t, err)
		require.NoError(t, repo.ReleaseSession(ctx, branchID, userID))
		require.Equal(t, entities.StatusPRMerged, merged.Status)
		return merged
	}

	// Alice publishes the baseline.
	branchA, err := repo.CreateBranch(ctx, aliceID, orgID)
	require.NoError(t, err)
	doc, err := repo.CreateContent(ctx, branchA.ID, entities.KindDocument, entities.VersionContent{
		Title: "Guide", Slug: "guide", Body: "v1",
	}, nil)
	require.NoError(t, err)
	mergeAs(aliceID, branchA.ID, "Publish guide", bobID)

	// Bob starts an edit from that baseline.
	branchB, err := repo.CreateBranch(ctx, bobID, orgID)
	require.NoError(t, err)
	_, err = repo.UpdateContent(ctx, branchB.ID, entities.KindDocument, doc.EntityID, entities.VersionContent{
		Title: "Guide", Slug: "guide", Body: "v2 by bob",
	}, nil)
	require.NoError(t, err)

	// A second pass chains the edit off bob's own draft, so only the first
	// row of the chain still points at the merged base.
	_, err = repo.UpdateContent(ctx, branchB.ID, entities.KindDocument, doc.EntityID, entities.VersionContent{
		Title: "Guide", Slug: "guide", Body: "v2 by bob, reworded",
	}, nil)
	require.NoError(t, err)

	// Alice merges a competing edit first.
	branchA2, err := repo.CreateBranch(ctx, aliceID, orgID)
	require.NoError(t, err)
	_, err = repo.UpdateContent(ctx, branchA2.ID, entities.KindDocument, doc.EntityID, entities.VersionContent{
		Title: "Guide", Slug: "guide", Body: "v2 by alice",
	}, nil)
	require.NoError(t, err)
	mergeAs(aliceID, branchA2.ID, "Alice rewrite", bobID)

	// Bob's base is stale now; his merge flags the PR and touches no versions.
	prB, err := repo.CreatePullRequest(ctx, entities.PullRequest{
		OrganizationID: orgID, BranchID: branchB.ID, AuthorID: bobID, Title: "Bob rewrite",
	}, []string{aliceID})
	require.NoError(t, err)
	outB, err := repo.TryAcquireSession(ctx, prB.ID, bobID)
	require.NoError(t, err)
	require.True(t, outB.Acquired)
	_, err = repo.CreateCommit(ctx, prB.ID, bobID, "bob rewrite")
	require.NoError(t, err)

	_, err = repo.MergePullRequest(ctx, prB.ID, bobID)
	require.ErrorIs(t, err, entities.ErrMergeNotClean)

	flagged, err := repo.GetPullRequest(ctx, prB.ID, orgID)
	require.NoError(t, err)
	require.Equal(t, entities.StatusPRConflict, flagged.Status)

	baseline, err := repo.LatestMergedVersion(ctx, doc.EntityID)
	require.NoError(t, err)
	require.Equal(t, "v2 by alice", baseline.Body)

	// Still stale, so reopen refuses too.
	_, err = repo.ReopenPullRequest(ctx, prB.ID, bobID)
	require.ErrorIs(t, err, entities.ErrMergeNotClean)

	closed, err := repo.ClosePullRequest(ctx, prB.ID, bobID)
	require.NoError(t, err)
	require.Equal(t, entities.StatusClosed, closed.Status)
}

func TestEditSessionOverlayIntegration(t *testing.T) {
	ctx := context.Background()

	repo := setupRepo(t)

	branch, err := repo.CreateBranch(ctx, aliceID, orgID)
	require.NoError(t, err)
	doc, err := repo.CreateContent(ctx, branch.ID, entities.KindDocument, entities.VersionContent{
		Title: "Draft", Slug: "draft", Body: "first",
	}, nil)
	require.NoError(t, err)

	pr, err := repo.CreatePullRequest(ctx, entities.PullRequest{
		OrganizationID: orgID, BranchID: branch.ID, AuthorID: aliceID, Title: "Review me",
	}, []string{bobID})
	require.NoError(t, err)

	session, err := repo.StartEditSession(ctx, pr.ID, bobID, "token-1")
	require.NoError(t, err)

	fetched, err := repo.GetEditSession(ctx, pr.ID, "token-1")
	require.NoError(t, err)
	require.Equal(t, session.ID, fetched.ID)

	_, err = repo.UpdateContent(ctx, branch.ID, entities.KindDocument, doc.EntityID, entities.VersionContent{
		Title: "Draft", Slug: "draft", Body: "reviewer fix",
	}, &session.ID)
	require.NoError(t, err)

	overlay, err := repo.SessionDiffs(ctx, session.ID)
	require.NoError(t, err)
	require.Len(t, overlay, 1)
	require.Equal(t, entities.DiffUpdated, overlay[0].DiffType)
	require.Equal(t, doc.EntityID, overlay[0].EntityID)

	// The session edit folds into the branch ledger as well.
	edits, err := repo.OpenEdits(ctx, branch.ID)
	require.NoError(t, err)
	require.Len(t, edits, 2)

	finished, err := repo.FinishEditSession(ctx, "token-1")
	require.NoError(t, err)
	require.NotNil(t, finished.FinishedAt)

	_, err = repo.GetEditSession(ctx, pr.ID, "token-1")
	require.ErrorIs(t, err, entities.ErrEditSessionNotFound)

	_, err = repo.FinishEditSession(ctx, "token-1")
	require.ErrorIs(t, err, entities.ErrEditSessionNotFound)
}

func TestFixRequestIntegration(t *testing.T) {
	ctx := context.Background()

	repo := setupRepo(t)

	branch, err := repo.CreateBranch(ctx, aliceID, orgID)
	require.NoError(t, err)
	doc, err := repo.CreateContent(ctx, branch.ID, entities.KindDocument, entities.VersionContent{
		Title: "Doc", Slug: "doc", Body: "text",
	}, nil)
	require.NoError(t, err)

	pr, err := repo.CreatePullRequest(ctx, entities.PullRequest{
		OrganizationID: orgID, BranchID: branch.ID, AuthorID: aliceID, Title: "Doc PR",
	}, []string{bobID})
	require.NoError(t, err)

	fr, err := repo.CreateFixRequest(ctx, entities.FixRequest{
		PullRequestID: pr.ID, UserID: bobID, Kind: entities.KindDocument,
		TargetVersionID: doc.ID, Comment: "please reword",
	})
	require.NoError(t, err)
	require.Equal(t, entities.FixPending, fr.Status)

	reviewers, err := repo.GetReviewers(ctx, pr.ID)
	require.NoError(t, err)
	require.Equal(t, entities.ReviewerFixRequested, reviewers[0].ActionStatus)

	// Only assigned reviewers may file.
	_, err = repo.CreateFixRequest(ctx, entities.FixRequest{
		PullRequestID: pr.ID, UserID: aliceID, Kind: entities.KindDocument,
		TargetVersionID: doc.ID, Comment: "self review",
	})
	require.ErrorIs(t, err, entities.ErrNotAuthorized)

	applied, err := repo.SetFixRequestStatus(ctx, fr.ID, entities.FixApplied)
	require.NoError(t, err)
	require.Equal(t, entities.FixApplied, applied.Status)

	// Applied is terminal.
	_, err = repo.SetFixRequestStatus(ctx, fr.ID, entities.FixArchived)
	require.ErrorIs(t, err, entities.ErrFixRequestNotFound)

	list, err := repo.ListFixRequests(ctx, pr.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
}

func setupRepo(t *testing.T) *Postgres {
	t.Helper()
	ctx := context.Background()

	cfg, cleanup := setupPostgres(t)
	t.Cleanup(cleanup)

	repo := New(ctx, testLogger(t), cfg)
	require.NoError(t, repo.OnStart(ctx))
	t.Cleanup(func() { _ = repo.OnStop(ctx) })

	seed(t, repo)
	return repo
}

func seed(t *testing.T, repo *Postgres) {
	t.Helper()
	ctx := context.Background()

	_, err := repo.db.Exec(ctx, `INSERT INTO organizations(id, name) VALUES ($1, 'acme')`, orgID)
	require.NoError(t, err)
	_, err = repo.db.Exec(ctx,
		`INSERT INTO users(id, name, email, role, organization_id) VALUES
			($1, 'Alice', 'alice@acme.test', 'editor', $3),
			($2, 'Bob', 'bob@acme.test', 'editor', $3)`,
		aliceID, bobID, orgID)
	require.NoError(t, err)
}

func setupPostgres(t *testing.T) (*config.Config, func()) {
	t.Helper()

	pool, err := dockertest.NewPool("")
	require.NoError(t, err)

	resource, err := pool.RunWithOptions(&dockertest.RunOptions{
		Repository: "postgres",
		Tag:        "16-alpine",
		Env: []string{
			"POSTGRES_PASSWORD=postgres",
			"POSTGRES_USER=postgres",
			"POSTGRES_DB=branch_content_review_db",
		},
	}, func(hc *docker.HostConfig) {
		hc.AutoRemove = true
	})
	require.NoError(t, err)

	hostPort := resource.GetPort("5432/tcp")

	port, err := strconv.Atoi(hostPort)
	require.NoError(t, err)
	migrationsDir, err := filepath.Abs(filepath.Join("..", "..", "..", "db", "migrations"))
	require.NoError(t, err)
	require.DirExists(t, migrationsDir)

	cfg := &config.Config{
		Server: config.ServerConfig{Host: "0.0.0.0", Port: 8080, ShutdownTimeout: 5 * time.Second},
		HTTP:   config.HTTPConfig{RequestTimeout: 5 * time.Second},
		Postgres: config.PostgresConfig{
			Host:           "localhost",
			Port:           port,
			User:           "postgres",
			Password:       "postgres",
			DBName:         "branch_content_review_db",
			SSLMode:        "disable",
			MigrationsDir:  migrationsDir,
			QueryTimeout:   10 * time.Second,
			MigrateTimeout: 20 * time.Second,
			MaxConns:       4,
			MinConns:       1,
		},
	}

	require.NoError(t, pool.Retry(func() error {
		db, err := sql.Open("postgres", "host=localhost port="+hostPort+" user=postgres password=postgres dbname=branch_content_review_db sslmode=disable")
		if err != nil {
			return err
		}
		defer func() { _ = db.Close() }()
		return db.Ping()
	}))

	cleanup := func() {
		_ = pool.Purge(resource)
	}

	return cfg, cleanup
}

func testLogger(t *testing.T) *zap.SugaredLogger {
	t.Helper()

	l, _ := zap.NewDevelopment()
	t.Cleanup(func() { _ = l.Sync() })
	return l.Sugar()
}
