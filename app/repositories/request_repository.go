package repositories

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/supplydesk/app/models"
	"github.com/shashiranjanraj/supplydesk/pkg/cache"
	"github.com/shashiranjanraj/supplydesk/pkg/logger"
	"github.com/shashiranjanraj/supplydesk/pkg/metrics"
)

const (
	listCacheKey = "requests:all"
	listCacheTTL = 5 * time.Minute

	// reinsertBatch keeps the renumbering insert under the bind-variable
	// limits of every supported engine.
	reinsertBatch = 200
)

// RequestRepository owns the requests table. Ids are assigned here, not by
// the engine, and stay dense (1..n) across deletes.
type RequestRepository struct {
	db    *gorm.DB
	cache cache.Store
}

// NewRequestRepository wraps db. store may be nil to disable list caching.
func NewRequestRepository(db *gorm.DB, store cache.Store) *RequestRepository {
	return &RequestRepository{db: db, cache: store}
}

// Create validates name and email, then appends a Pending request with
// id = MAX(id)+1. Validation failures happen before any write.
func (r *RequestRepository) Create(ctx context.Context, name, email string, desc models.Description) (req models.Request, err error) {
	defer observe("create", time.Now(), &err)

	if err = models.ValidateName(name); err != nil {
		return models.Request{}, err
	}
	if err = models.ValidateEmail(email); err != nil {
		return models.Request{}, err
	}

	req = models.Request{
		Name:        name,
		Email:       email,
		Description: desc,
		Status:      models.StatusPending,
	}

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var maxID uint
		if err := tx.Model(&models.Request{}).Select("COALESCE(MAX(id), 0)").Row().Scan(&maxID); err != nil {
			return err
		}
		req.ID = maxID + 1
		return tx.Create(&req).Error
	})
	if err != nil {
		err = &models.StorageError{Op: "create", Err: err}
		logger.WithCtx(ctx).Error("request create failed", "email", email, "error", err)
		return models.Request{}, err
	}

	r.invalidate(ctx)
	logger.WithCtx(ctx).Info("request created", "id", req.ID, "email", req.Email)
	return req, nil
}

// All returns every request in ascending id order. Descriptions that are
// neither JSON nor well-formed text still decode (as plain text).
func (r *RequestRepository) All(ctx context.Context) (reqs []models.Request, err error) {
	defer observe("list", time.Now(), &err)

	if r.cache != nil && r.cache.Get(ctx, listCacheKey, &reqs) {
		return reqs, nil
	}

	if err = r.db.WithContext(ctx).Order("id asc").Find(&reqs).Error; err != nil {
		err = &models.StorageError{Op: "list", Err: err}
		logger.WithCtx(ctx).Error("request list failed", "error", err)
		return nil, err
	}
	if reqs == nil {
		reqs = []models.Request{}
	}

	if r.cache != nil {
		if cerr := r.cache.Set(ctx, listCacheKey, reqs, listCacheTTL); cerr != nil {
			logger.WithCtx(ctx).Warn("request list cache write failed", "error", cerr)
		}
	}
	return reqs, nil
}

// Find returns the request with id or a *models.NotFoundError.
func (r *RequestRepository) Find(ctx context.Context, id uint) (req models.Request, err error) {
	defer observe("find", time.Now(), &err)

	err = r.db.WithContext(ctx).Where("id = ?", id).Take(&req).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		err = &models.NotFoundError{ID: id}
		return models.Request{}, err
	case err != nil:
		err = &models.StorageError{Op: "find", Err: err}
		return models.Request{}, err
	}
	return req, nil
}

// UpdateStatus sets the status of request id. Any status may follow any
// other; only unknown values are rejected.
func (r *RequestRepository) UpdateStatus(ctx context.Context, id uint, status models.Status) (req models.Request, err error) {
	defer observe("update_status", time.Now(), &err)

	if !status.Valid() {
		err = &models.InvalidStatusError{Value: string(status)}
		return models.Request{}, err
	}
	// normalise casing ("approved" → "Approved")
	status, _ = models.ParseStatus(string(status))

	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("id = ?", id).Take(&req).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return &models.NotFoundError{ID: id}
			}
			return err
		}
		req.Status = status
		return tx.Model(&req).Update("status", status).Error
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			err = &models.StorageError{Op: "update_status", Err: err}
			logger.WithCtx(ctx).Error("request status update failed", "id", id, "error", err)
		}
		return models.Request{}, err
	}

	r.invalidate(ctx)
	logger.WithCtx(ctx).Info("request status updated", "id", id, "status", req.Status)
	return req, nil
}

// Delete removes request id and renumbers the survivors, all inside one
// transaction:
//
//  1. delete the row (NotFound if nothing matched)
//  2. snapshot the remaining rows in ascending id order
//  3. clear the table
//  4. reinsert the snapshot with ids 1..k in the same order
//
// Any failure rolls the whole sequence back, so callers either see the
// pre-delete table or the fully renumbered one.
func (r *RequestRepository) Delete(ctx context.Context, id uint) (err error) {
	defer observe("delete", time.Now(), &err)

	var renumbered int
	err = r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Where("id = ?", id).Delete(&models.Request{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return &models.NotFoundError{ID: id}
		}

		var rest []models.Request
		if err := tx.Order("id asc").Find(&rest).Error; err != nil {
			return err
		}
		if len(rest) == 0 {
			return nil
		}

		if err := tx.Where("1 = 1").Delete(&models.Request{}).Error; err != nil {
			return err
		}

		for i := range rest {
			next := uint(i + 1)
			if rest[i].ID != next {
				renumbered++
			}
			rest[i].ID = next
		}
		return tx.CreateInBatches(&rest, reinsertBatch).Error
	})
	if err != nil {
		if !errors.Is(err, models.ErrNotFound) {
			err = &models.StorageError{Op: "delete", Err: err}
			logger.WithCtx(ctx).Error("request delete failed", "id", id, "error", err)
		}
		return err
	}

	metrics.StoreRenumberedRows.Add(float64(renumbered))
	r.invalidate(ctx)
	logger.WithCtx(ctx).Info("request deleted", "id", id, "renumbered", renumbered)
	return nil
}

// invalidate drops the cached list after a committed mutation.
func (r *RequestRepository) invalidate(ctx context.Context) {
	if r.cache == nil {
		return
	}
	if err := r.cache.Del(ctx, listCacheKey); err != nil {
		logger.WithCtx(ctx).Warn("request list cache invalidation failed", "error", err)
	}
}

func observe(op string, start time.Time, err *error) {
	metrics.ObserveStore(op, start, *err)
}
