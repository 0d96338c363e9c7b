package migrations

import (
	"github.com/shashiranjanraj/supplydesk/app/models"
	"github.com/shashiranjanraj/supplydesk/pkg/migration"
	"gorm.io/gorm"
)

func init() {
	migration.Register("20260101000000_create_requests_table", &CreateRequestsTable{})
}

// -------- 0001: requests --------

type CreateRequestsTable struct{}

func (m *CreateRequestsTable) Up(db *gorm.DB) error {
	return db.AutoMigrate(&models.Request{})
}

func (m *CreateRequestsTable) Down(db *gorm.DB) error {
	return db.Migrator().DropTable(models.Request{}.TableName())
}
