// Package domain contains application services orchestrating the branch,
// diff, commit and review logic.
package domain

import (
	"context"
	"time"

	"branch-content-review/internal/entities"
	"branch-content-review/internal/repository"

	"go.uber.org/zap"
)

// Notifier delivers review events to external channels. Delivery itself is a
// boundary concern; implementations only receive the event.
type Notifier interface {
	NotifyReview(ctx context.Context, prID, reviewerID string, status entities.ReviewerActionStatus)
	NotifyFixRequest(ctx context.Context, fr entities.FixRequest)
}

// Normalizer produces diff-ready text from raw content.
type Normalizer interface {
	Normalize(text string) string
}

// Usecase struct implements all usecase interfaces.
type Usecase struct {
	ctx        context.Context
	log        *zap.SugaredLogger
	repo       repository.Repository
	timeout    time.Duration
	notifier   Notifier
	normalizer Normalizer
}

// New constructs a new usecase layer with its dependencies.
func New(
	log *zap.SugaredLogger,
	ctx context.Context,
	repo repository.Repository,
	timeout time.Duration,
) *Usecase {
	return &Usecase{
		ctx:        ctx,
		log:        log,
		repo:       repo,
		timeout:    timeout,
		notifier:   logNotifier{log: log.Named("notifier")},
		normalizer: lineNormalizer{},
	}
}

// WithNotifier swaps the review-event notifier.
func (u *Usecase) WithNotifier(n Notifier) *Usecase {
	u.notifier = n
	return u
}

func withTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if d <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, d)
}

// logNotifier records review events without delivering anywhere.
type logNotifier struct {
	log *zap.SugaredLogger
}

func (n logNotifier) NotifyReview(_ context.Context, prID, reviewerID string, status entities.ReviewerActionStatus) {
	n.log.Infow("review event", "pr_id", prID, "reviewer_id", reviewerID, "status", status)
}

func (n logNotifier) NotifyFixRequest(_ context.Context, fr entities.FixRequest) {
	n.log.Infow("fix request event", "pr_id", fr.PullRequestID, "fix_request_id", fr.ID)
}
