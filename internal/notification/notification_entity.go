package notification

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	KindTeamJoin = "TEAM_JOIN"
	KindExit     = "EXIT"
)

// Notification is an in-app inbox entry. Rows are written by the lifecycle
// consumers, never by request handlers.
type Notification struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CompanyID   uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_recipient"`
	RecipientID uuid.UUID `gorm:"type:uuid;not null;index:idx_notifications_recipient"`

	Kind  string `gorm:"type:varchar(30);not null"`
	Title string `gorm:"type:varchar(200);not null"`
	Body  string `gorm:"type:text"`

	ReadAt    *time.Time
	CreatedAt time.Time
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`
}
