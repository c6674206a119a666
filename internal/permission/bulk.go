package permission

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/PropDesk/PropDesk-Console/internal/models"
)

// BulkResult summarises a bulk assignment.
type BulkResult struct {
	// Created are the screens that got a new permission.
	Created []models.ID
	// Unchanged are the screens that already were assigned.
	Unchanged []models.ID
	// Removed are the screens whose permission was deleted (Reconcile only).
	Removed []models.ID
	// Failed maps screens to the error of their create or delete call.
	Failed map[models.ID]error
}

// BulkAssign grants userID access to every screen in screenIDs. It is
// additive: screens already assigned are skipped and "already exists"
// answers are tolerated. Edges of screens missing from screenIDs are kept,
// unless the repository was created with WithPruneOnBulkAssign.
func (r *Repository) BulkAssign(ctx context.Context, userID models.ID, screenIDs []models.ID) (*BulkResult, error) {
	return r.assign(ctx, userID, screenIDs, r.prune)
}

// Reconcile makes the permissions of userID equal screenIDs: missing edges
// are created and edges of screens outside the set are deleted.
func (r *Repository) Reconcile(ctx context.Context, userID models.ID, screenIDs []models.ID) (*BulkResult, error) {
	return r.assign(ctx, userID, screenIDs, true)
}

func (r *Repository) assign(ctx context.Context, userID models.ID, screenIDs []models.ID, prune bool) (*BulkResult, error) {
	if userID.IsZero() {
		return nil, ErrEmptyUserID
	}

	current, err := r.LoadPermissionsForUser(ctx, userID)
	if err != nil {
		return nil, err
	}

	assigned := make(map[models.ID]models.Permission, len(current))
	for _, p := range current {
		assigned[p.ScreenID] = p
	}

	wanted := make(map[models.ID]struct{}, len(screenIDs))
	res := &BulkResult{Failed: map[models.ID]error{}}

	for _, screenID := range screenIDs {
		if _, dup := wanted[screenID]; dup || screenID.IsZero() {
			continue
		}

		wanted[screenID] = struct{}{}

		if _, ok := assigned[screenID]; ok {
			res.Unchanged = append(res.Unchanged, screenID)
			continue
		}

		if _, err := r.catalog.CreatePermission(ctx, userID, screenID); err != nil {
			if isTolerated(err) {
				res.Unchanged = append(res.Unchanged, screenID)
				continue
			}

			res.Failed[screenID] = err

			continue
		}

		res.Created = append(res.Created, screenID)
	}

	if prune {
		for screenID, p := range assigned {
			if _, ok := wanted[screenID]; ok {
				continue
			}

			if err := r.catalog.DeletePermission(ctx, p.ID); err != nil {
				res.Failed[screenID] = err
				continue
			}

			res.Removed = append(res.Removed, screenID)
		}
	}

	sortIDs(res.Created)
	sortIDs(res.Unchanged)
	sortIDs(res.Removed)

	r.log.Info().
		Str("user_id", userID.String()).
		Int("created", len(res.Created)).
		Int("unchanged", len(res.Unchanged)).
		Int("removed", len(res.Removed)).
		Int("failed", len(res.Failed)).
		Bool("prune", prune).
		Msg("bulk permission assignment")

	// reload so the snapshot holds the backend ids of the new edges
	if _, err := r.LoadPermissionsForUser(ctx, userID); err != nil {
		return res, err
	}

	return res, res.err()
}

func (b *BulkResult) err() error {
	if len(b.Failed) == 0 {
		return nil
	}

	ids := make([]models.ID, 0, len(b.Failed))
	for id := range b.Failed {
		ids = append(ids, id)
	}

	sortIDs(ids)

	errs := make([]error, 0, len(ids))
	for _, id := range ids {
		errs = append(errs, fmt.Errorf("screen %s: %w", id, b.Failed[id]))
	}

	return errors.Join(errs...)
}

func sortIDs(ids []models.ID) {
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
}
