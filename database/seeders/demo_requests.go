package seeders

import (
	"context"

	"gorm.io/gorm"

	"github.com/shashiranjanraj/supplydesk/app/models"
	"github.com/shashiranjanraj/supplydesk/app/repositories"
)

func init() {
	Register("demo_requests", SeedDemoRequests)
}

type demoRequest struct {
	name, email string
	desc        models.Description
	status      models.Status
}

var demoRequests = []demoRequest{
	{"Alice", "alice@gmail.com", models.ItemQuantity("A4 PAPER", 5), models.StatusPending},
	{"Bob", "bob@ceat.com", models.StructuredDescription("STAPLER", "STAPLER PIN SMALL"), models.StatusApproved},
}

// SeedDemoRequests inserts two sample requests through the repository so
// they get store-assigned ids. It does nothing when the table has rows.
func SeedDemoRequests(db *gorm.DB) error {
	ctx := context.Background()
	repo := repositories.NewRequestRepository(db, nil)

	existing, err := repo.All(ctx)
	if err != nil {
		return err
	}
	if len(existing) > 0 {
		return nil
	}

	for _, d := range demoRequests {
		req, err := repo.Create(ctx, d.name, d.email, d.desc)
		if err != nil {
			return err
		}
		if d.status != models.StatusPending {
			if _, err := repo.UpdateStatus(ctx, req.ID, d.status); err != nil {
				return err
			}
		}
	}
	return nil
}
