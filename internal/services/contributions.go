package services

import (
	"context"
	"fmt"
	"log/slog"

	"dizimo/internal/amqp"
	"dizimo/internal/auth"
	"dizimo/internal/core"
	"dizimo/internal/storage"
)

// EventPublisher publishes contribution lifecycle events. The AMQP client
// implements it; a nil publisher disables events.
type EventPublisher interface {
	PublishContributionEvent(ctx context.Context, event *amqp.ContributionEvent) error
}

// ContributionService handles contribution recording and maintenance.
type ContributionService struct {
	repo      *storage.SQLiteRepository
	publisher EventPublisher
}

func NewContributionService(repo *storage.SQLiteRepository, publisher EventPublisher) *ContributionService {
	return &ContributionService{repo: repo, publisher: publisher}
}

// Register validates and stores a new contribution. The identity of the
// authenticated user is stamped onto the record at call time, read from the
// request context.
func (s *ContributionService) Register(ctx context.Context, c core.Contribution) (core.Contribution, error) {
	c.RecordedBy = auth.CurrentUser(ctx)

	if err := c.Validate(); err != nil {
		return core.Contribution{}, fmt.Errorf("register contribution: %w", err)
	}

	owner, err := s.repo.GetContributor(ctx, c.ContributorID)
	if err != nil {
		return core.Contribution{}, fmt.Errorf("register contribution: %w", err)
	}
	if owner == nil {
		return core.Contribution{}, fmt.Errorf("register contribution: contributor %d not found", c.ContributorID)
	}

	created, err := s.repo.CreateContribution(ctx, c)
	if err != nil {
		return core.Contribution{}, fmt.Errorf("register contribution: %w", err)
	}
	created.ContributorName = owner.Name
	created.ContributorPhone = owner.Phone

	s.publish(ctx, amqp.NewContributionEvent(
		amqp.ActionRegistered, created.ID, created.ContributorID, created.RecordedBy))

	return created, nil
}

func (s *ContributionService) Get(ctx context.Context, id int64) (*core.Contribution, error) {
	return s.repo.GetContribution(ctx, id)
}

func (s *ContributionService) List(ctx context.Context, f storage.ContributionFilter) ([]core.Contribution, bool, error) {
	return s.repo.ListContributions(ctx, f)
}

// Update applies a partial update after validating the provided fields.
func (s *ContributionService) Update(ctx context.Context, id int64, upd storage.ContributionUpdate) error {
	if upd.Category != nil && !upd.Category.Valid() {
		return fmt.Errorf("update contribution: %w", core.ErrInvalidCategory)
	}
	if upd.AmountCents != nil && *upd.AmountCents <= 0 {
		return fmt.Errorf("update contribution: %w", core.ErrInvalidAmount)
	}
	if upd.Date != nil && upd.Date.IsZero() {
		return fmt.Errorf("update contribution: %w", core.ErrInvalidDate)
	}
	if upd.Payment != nil && !upd.Payment.Valid() {
		return fmt.Errorf("update contribution: %w", core.ErrInvalidPayment)
	}

	if err := s.repo.UpdateContribution(ctx, id, upd); err != nil {
		return err
	}

	if rec, err := s.repo.GetContribution(ctx, id); err == nil && rec != nil {
		s.publish(ctx, amqp.NewContributionEvent(
			amqp.ActionUpdated, rec.ID, rec.ContributorID, auth.CurrentUser(ctx)))
	}
	return nil
}

// Delete removes a contribution and publishes the deletion event.
func (s *ContributionService) Delete(ctx context.Context, id int64) error {
	rec, err := s.repo.GetContribution(ctx, id)
	if err != nil {
		return err
	}
	if rec == nil {
		return fmt.Errorf("delete contribution: id %d not found", id)
	}

	if err := s.repo.DeleteContribution(ctx, id); err != nil {
		return err
	}

	s.publish(ctx, amqp.NewContributionEvent(
		amqp.ActionDeleted, rec.ID, rec.ContributorID, auth.CurrentUser(ctx)))
	return nil
}

// publish sends an event best-effort: the record is already stored, so a
// broker failure is logged and swallowed.
func (s *ContributionService) publish(ctx context.Context, event *amqp.ContributionEvent) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishContributionEvent(ctx, event); err != nil {
		slog.ErrorContext(ctx, "Failed to publish contribution event",
			"error", err,
			"action", event.Action,
			"contribution_id", event.ContributionID)
	}
}
