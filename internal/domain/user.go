package domain

import "time"

// User Model
type User struct {
	ID        uint      `gorm:"primaryKey"`                   // Primary key
	Firstname string    `gorm:"size:80;not null"`             // First name
	Lastname  string    `gorm:"size:80;not null"`             // Last name
	Username  string    `gorm:"size:80;uniqueIndex;not null"` // Unique username
	Email     string    `gorm:"size:120;uniqueIndex;not null"`
	Password  string    `gorm:"size:255;not null"` // Hashed password, never plaintext
	IsAdmin   bool      `gorm:"not null;default:false"`
	IsActive  bool      `gorm:"not null;default:true"`
	CreatedAt time.Time // Set on insert
	Wallet    *Wallet   `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT;"` // One-to-one, removed explicitly on delete
}

// UserView is the public representation of a user
type UserView struct {
	ID        uint        `json:"id"`
	Firstname string      `json:"firstname"`
	Lastname  string      `json:"lastname"`
	Username  string      `json:"username"`
	Email     string      `json:"email"`
	IsAdmin   bool        `json:"is_admin"`
	IsActive  bool        `json:"is_active"`
	CreatedAt time.Time   `json:"created_at"`
	Wallet    *WalletView `json:"wallet"`
}

// View converts the user and its loaded wallet to the public representation
func (u *User) View() UserView {
	v := UserView{
		ID:        u.ID,
		Firstname: u.Firstname,
		Lastname:  u.Lastname,
		Username:  u.Username,
		Email:     u.Email,
		IsAdmin:   u.IsAdmin,
		IsActive:  u.IsActive,
		CreatedAt: u.CreatedAt.UTC(),
	}
	if u.Wallet != nil {
		w := u.Wallet.View()
		v.Wallet = &w
	}
	return v
}
