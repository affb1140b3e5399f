package account

import "time"

type Account struct {
	ID                int64      `gorm:"primaryKey"`
	Email             string     `gorm:"column:email;uniqueIndex;not null"`
	FirstName         string     `gorm:"column:first_name;not null"`
	LastName          string     `gorm:"column:last_name;not null"`
	Designation       string     `gorm:"column:designation;not null"`
	PasswordHash      string     `gorm:"column:password_hash;not null"`
	PhoneNumber       string     `gorm:"column:phone_number;not null"`
	Address           *string    `gorm:"column:address"`
	IsActive          bool       `gorm:"column:is_active;not null"`
	IsSuperUser       bool       `gorm:"column:is_super_user;not null"`
	ScheduledDeletion *time.Time `gorm:"column:scheduled_deletion;index"`
	CreatedAt         time.Time  `gorm:"column:created_at;autoCreateTime"`
	UpdatedAt         time.Time  `gorm:"column:updated_at;autoUpdateTime"`
}

func (Account) TableName() string {
	return "accounts"
}

type SessionEntry struct {
	ID           int64      `gorm:"primaryKey"`
	AccountEmail string     `gorm:"column:account_email;index;not null"`
	LoggedInAt   time.Time  `gorm:"column:logged_in_at;not null"`
	LoggedOutAt  *time.Time `gorm:"column:logged_out_at"`
	Token        string     `gorm:"column:token;not null"`
	CreatedAt    time.Time  `gorm:"column:created_at;autoCreateTime"`
}

func (SessionEntry) TableName() string {
	return "session_entries"
}
