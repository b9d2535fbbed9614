package user

import (
	"time"

	"github.com/google/uuid"
)

// User represents the users table. Only the fields the auction engine and its
// lookups need; richer profile management lives outside this service.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Email        string    `gorm:"type:varchar(255);uniqueIndex;not null"`
	Username     string    `gorm:"type:varchar(64);uniqueIndex;not null"`
	PasswordHash string    `gorm:"type:varchar(255);not null"`
	DisplayName  string    `gorm:"type:varchar(128);not null"`
	CreatedAt    time.Time `gorm:"not null;default:now()"`
}

func (User) TableName() string {
	return "users"
}
