package domain

import "time"

// User is a person account: donors, admins and superadmins.
type User struct {
	ID           uint      `gorm:"column:id;primaryKey" json:"id"`
	Username     string    `gorm:"column:username;size:80;not null;uniqueIndex" json:"username"`
	Email        string    `gorm:"column:email;size:120;not null;uniqueIndex" json:"email"`
	PasswordHash string    `gorm:"column:password_hash;size:60;not null" json:"-"`
	Role         string    `gorm:"column:role;size:20;not null" json:"role"`
	CreatedAt    time.Time `json:"createdAt"`
	UpdatedAt    time.Time `json:"updatedAt"`
}

func (User) TableName() string {
	return "Users"
}
