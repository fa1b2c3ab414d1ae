package models

import (
	"errors"
	"fmt"
	"time"

	"github.com/monocle-dev/roster/internal/serializer"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	RoleMember = "member"
	RoleAdmin  = "admin"
)

type User struct {
	ID             uint   `gorm:"primaryKey"`
	Surname        string `gorm:"size:255"`
	Name           string `gorm:"size:255"`
	Age            *int
	Position       string    `gorm:"size:255"`
	Speciality     string    `gorm:"size:255"`
	Address        string    `gorm:"size:255"`
	Email          string    `gorm:"size:255;uniqueIndex;not null"`
	HashedPassword string    `gorm:"size:255"`
	Role           string    `gorm:"size:16;not null;default:member"`
	ModifiedDate   time.Time `gorm:"autoUpdateTime"`
}

// SetPassword replaces the stored hash. The entity still has to be saved.
func (u *User) SetPassword(password string) error {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	u.HashedPassword = string(hash)
	return nil
}

// CheckPassword is false when no password was ever set.
func (u *User) CheckPassword(password string) bool {
	if u.HashedPassword == "" {
		return false
	}
	return bcrypt.CompareHashAndPassword([]byte(u.HashedPassword), []byte(password)) == nil
}

func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

func (u *User) FullName() string {
	switch {
	case u.Surname == "":
		return u.Name
	case u.Name == "":
		return u.Surname
	}
	return u.Surname + " " + u.Name
}

func (u *User) Key() string {
	return fmt.Sprintf("users:%d", u.ID)
}

func (u *User) Columns() map[string]any {
	return map[string]any{
		"id":              u.ID,
		"surname":         u.Surname,
		"name":            u.Name,
		"age":             u.Age,
		"position":        u.Position,
		"speciality":      u.Speciality,
		"address":         u.Address,
		"email":           u.Email,
		"hashed_password": u.HashedPassword,
		"role":            u.Role,
		"modified_date":   u.ModifiedDate,
	}
}

// Relations are back-references: a user never holds its jobs or departments,
// they are queried when a serializer asks for them.
func (u *User) Relations() map[string]serializer.Relation {
	return map[string]serializer.Relation{
		"jobs": serializer.Many(func(tx *gorm.DB) ([]serializer.Entity, error) {
			var jobs []Job
			if err := PreloadJob(tx).Where("team_leader = ?", u.ID).Order("id").Find(&jobs).Error; err != nil {
				return nil, err
			}
			out := make([]serializer.Entity, len(jobs))
			for i := range jobs {
				out[i] = &jobs[i]
			}
			return out, nil
		}),
		"departments": serializer.Many(func(tx *gorm.DB) ([]serializer.Entity, error) {
			var departments []Department
			if err := PreloadDepartment(tx).Where("chief = ?", u.ID).Order("id").Find(&departments).Error; err != nil {
				return nil, err
			}
			out := make([]serializer.Entity, len(departments))
			for i := range departments {
				out[i] = &departments[i]
			}
			return out, nil
		}),
	}
}

// UserRules keeps a serialized user from re-expanding itself through its jobs
// and departments.
var UserRules = []string{"-hashed_password", "-jobs.user", "-departments.user"}

func loadUser(tx *gorm.DB, id uint) (serializer.Entity, error) {
	var user User
	if err := tx.First(&user, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &user, nil
}
