package models

import (
	"time"
)

type User struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Username and Email are NULL when omitted at registration; NULLs never
	// collide under the unique indexes.
	Username     *string `gorm:"uniqueIndex" json:"username"`
	Password     string  `json:"-"`
	Name         string  `json:"name"`
	Surname      string  `json:"surname"`
	Email        *string `gorm:"uniqueIndex" json:"email"`
	Verified     bool    `gorm:"not null;default:false" json:"verified"`
	Address      *string `json:"address"`
	Telephone    *string `json:"telephone"`
	HomeAddress  *string `json:"homeAddress"`
	ProfilePhoto *string `json:"profilePhoto"`
}

// Profile is the public view of a user returned by the profile endpoint.
type Profile struct {
	Username     *string `json:"username"`
	Name         string  `json:"name"`
	Surname      string  `json:"surname"`
	Email        *string `json:"email"`
	Address      *string `json:"address"`
	Telephone    *string `json:"telephone"`
	HomeAddress  *string `json:"homeAddress"`
	ProfilePhoto *string `json:"profilePhoto"`
}

func (u *User) Profile() Profile {
	return Profile{
		Username:     u.Username,
		Name:         u.Name,
		Surname:      u.Surname,
		Email:        u.Email,
		Address:      u.Address,
		Telephone:    u.Telephone,
		HomeAddress:  u.HomeAddress,
		ProfilePhoto: u.ProfilePhoto,
	}
}
