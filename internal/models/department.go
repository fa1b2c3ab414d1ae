package models

import (
	"fmt"

	"github.com/monocle-dev/roster/internal/serializer"
	"gorm.io/gorm"
)

type Department struct {
	ID      uint   `gorm:"primaryKey"`
	Title   string `gorm:"size:255"`
	ChiefID uint   `gorm:"column:chief;not null;index"`
	Email   string `gorm:"size:255;uniqueIndex;not null"`

	// Relationships
	Chief   *User              `gorm:"foreignKey:ChiefID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Members []DepartmentMember `gorm:"foreignKey:DepartmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// DepartmentMember is one entry of the ordered member list of a department.
type DepartmentMember struct {
	DepartmentID uint `gorm:"primaryKey"`
	UserID       uint `gorm:"primaryKey;index"`
	Position     int  `gorm:"not null"`

	Department *Department `gorm:"foreignKey:DepartmentID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User       *User       `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

func PreloadDepartment(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Members", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

func (d *Department) MemberIDs() IDList {
	ids := make(IDList, len(d.Members))
	for i, m := range d.Members {
		ids[i] = m.UserID
	}
	return ids
}

func (d *Department) SetMembers(ids IDList) {
	ids = ids.Dedup()
	d.Members = make([]DepartmentMember, len(ids))
	for i, id := range ids {
		d.Members[i] = DepartmentMember{DepartmentID: d.ID, UserID: id, Position: i}
	}
}

func (d *Department) Key() string {
	return fmt.Sprintf("departments:%d", d.ID)
}

func (d *Department) Columns() map[string]any {
	return map[string]any{
		"id":      d.ID,
		"title":   d.Title,
		"chief":   d.ChiefID,
		"members": d.MemberIDs(),
		"email":   d.Email,
	}
}

func (d *Department) Relations() map[string]serializer.Relation {
	return map[string]serializer.Relation{
		"user": serializer.One(func(tx *gorm.DB) (serializer.Entity, error) {
			if d.Chief != nil {
				return d.Chief, nil
			}
			return loadUser(tx, d.ChiefID)
		}),
	}
}

var DepartmentRules = []string{"-user.jobs", "-user.departments", "-user.hashed_password"}
