// Package services orchestrates the storage gateway, the event publisher and
// the report composer behind the HTTP handlers.
package services

import (
	"context"
	"fmt"

	"dizimo/internal/core"
	"dizimo/internal/storage"
)

// ContributorService handles contributor registration and maintenance.
type ContributorService struct {
	repo *storage.SQLiteRepository
}

func NewContributorService(repo *storage.SQLiteRepository) *ContributorService {
	return &ContributorService{repo: repo}
}

// Register validates and stores a new contributor. An empty status defaults
// to active.
func (s *ContributorService) Register(ctx context.Context, c core.Contributor) (core.Contributor, error) {
	if c.Status == "" {
		c.Status = core.StatusActive
	}
	if err := c.Validate(); err != nil {
		return core.Contributor{}, fmt.Errorf("register contributor: %w", err)
	}
	created, err := s.repo.CreateContributor(ctx, c)
	if err != nil {
		return core.Contributor{}, fmt.Errorf("register contributor: %w", err)
	}
	return created, nil
}

func (s *ContributorService) Get(ctx context.Context, id int64) (*core.Contributor, error) {
	return s.repo.GetContributor(ctx, id)
}

func (s *ContributorService) List(ctx context.Context, f storage.ContributorFilter) ([]core.Contributor, bool, error) {
	return s.repo.ListContributors(ctx, f)
}

func (s *ContributorService) Count(ctx context.Context) (int, error) {
	return s.repo.CountContributors(ctx)
}

// Update applies a partial update after validating the provided fields.
func (s *ContributorService) Update(ctx context.Context, id int64, upd storage.ContributorUpdate) error {
	if err := validateContributorUpdate(upd); err != nil {
		return fmt.Errorf("update contributor: %w", err)
	}
	return s.repo.UpdateContributor(ctx, id, upd)
}

// Delete removes a contributor. Deletion is restricted while contributions
// reference the contributor; the storage error says so.
func (s *ContributorService) Delete(ctx context.Context, id int64) error {
	return s.repo.DeleteContributor(ctx, id)
}

func validateContributorUpdate(upd storage.ContributorUpdate) error {
	// Reuse the domain rules by validating a throwaway contributor built
	// from the provided fields only.
	probe := core.Contributor{Name: "probe", Status: core.StatusActive}
	if upd.Name != nil {
		probe.Name = *upd.Name
	}
	if upd.Phone != nil {
		probe.Phone = *upd.Phone
	}
	if upd.Email != nil {
		probe.Email = *upd.Email
	}
	if upd.Status != nil {
		probe.Status = *upd.Status
	}
	return probe.Validate()
}
