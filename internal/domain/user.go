package domain

import "time"

type Role string

const (
	RoleAdmin Role = "admin"
	RoleUser  Role = "user"
)

type User struct {
	ID           int64     `gorm:"primaryKey;autoIncrement" json:"id"`
	Username     string    `gorm:"type:varchar(50);not null;uniqueIndex:ux_users_username" json:"username"`
	Email        string    `gorm:"type:varchar(255);not null;uniqueIndex:ux_users_email" json:"email"`
	PasswordHash string    `gorm:"type:text;not null" json:"-"`
	Role         Role      `gorm:"type:varchar(16);not null" json:"role"`
	IsActive     bool      `gorm:"not null" json:"is_active"`
	CreatedAt    time.Time `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time `gorm:"not null" json:"updated_at"`
}

func (User) TableName() string { return "users" }

// ProfilePatch carries the account fields a user may change. Nil means unchanged.
type ProfilePatch struct {
	Username *string
	Email    *string
}

// Identity is the resolved caller of a request.
type Identity struct {
	UserID   int64
	Username string
	Role     Role
	Active   bool
}

func (i Identity) IsAdmin() bool { return i.Role == RoleAdmin }

// SerialCounter holds the last issued sequence per prefix and year.
type SerialCounter struct {
	Prefix string `gorm:"type:varchar(16);primaryKey"`
	Year   int    `gorm:"primaryKey;autoIncrement:false"`
	Value  int64  `gorm:"not null"`
}

func (SerialCounter) TableName() string { return "serial_counters" }
