package models

import "time"

// Request is one employee's ask for office supplies.
//
// ID is assigned by the repository, never by the database engine: ids are
// kept dense (1..n) across deletes, see RequestRepository.Delete.
type Request struct {
	ID          uint        `gorm:"primaryKey;autoIncrement:false" json:"id"`
	Name        string      `gorm:"size:255;not null"              json:"name"`
	Email       string      `gorm:"size:255;not null;index"        json:"email"`
	Description Description `gorm:"type:text;not null"             json:"description"`
	Status      Status      `gorm:"size:20;not null"               json:"status"`
	CreatedAt   time.Time   `json:"created_at"`
	UpdatedAt   time.Time   `json:"updated_at"`
}

func (Request) TableName() string { return "requests" }
