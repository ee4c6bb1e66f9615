package main

import (
	"errors"

	"github.com/gilbertoneto04/betmanagerpro/common"
	"github.com/gilbertoneto04/betmanagerpro/schema"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Verification struct {
	PublicId string `json:"sub"`
}

type User struct {
	gorm.Model   `json:"-"`
	PublicId     string          `gorm:"unique" json:"uid"`
	Login        string          `gorm:"unique" json:"login"`
	Name         string          `json:"name"`
	Email        string          `gorm:"unique" json:"email"`
	Password     string          `gorm:"-" json:"password,omitempty"`
	PasswordHash string          `json:"-"`
	PasswordSalt string          `json:"-"`
	RoleID       schema.UserRole `json:"roleId"`
	Role         Role            `json:"-"`
}

func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.PublicId == "" {
		u.PublicId = uuid.NewString()
	}
	return nil
}

func (u *User) calculatePasswordHash() error {
	if u.Password == "" {
		return errors.New("password must be set")
	}
	u.PasswordSalt = common.GenerateRandomString(10)
	u.PasswordHash = common.HashSHA256([]byte(u.Password + u.PasswordSalt))
	return nil
}

func (u *User) checkPassword(password string) bool {
	if u.PasswordHash == "" {
		return false
	}
	hash := common.HashSHA256([]byte(password + u.PasswordSalt))
	return hash == u.PasswordHash
}

type Role struct {
	gorm.Model
	Name string
}

func createDefaultRoles(db *gorm.DB) {
	db.Create(&Role{
		Model: gorm.Model{
			ID: 1,
		},
		Name: "Admin",
	})
	db.Create(&Role{
		Model: gorm.Model{
			ID: 2,
		},
		Name: "User",
	})
	db.Create(&Role{
		Model: gorm.Model{
			ID: 3,
		},
		Name: "Agencia",
	})
	db.Create(&Role{
		Model: gorm.Model{
			ID: 4,
		},
		Name: "KFB",
	})
}
