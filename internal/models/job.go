package models

import (
	"fmt"
	"time"

	"github.com/monocle-dev/roster/internal/serializer"
	"gorm.io/gorm"
)

type Job struct {
	ID           uint `gorm:"primaryKey"`
	TeamLeaderID uint `gorm:"column:team_leader;not null;index"`
	Job          string
	WorkSize     int
	StartDate    *time.Time
	EndDate      *time.Time
	IsFinished   bool      `gorm:"not null;default:false"`
	ModifiedDate time.Time `gorm:"autoUpdateTime"`

	// Relationships
	TeamLeader    *User             `gorm:"foreignKey:TeamLeaderID;constraint:OnUpdate:CASCADE,OnDelete:RESTRICT"`
	Collaborators []JobCollaborator `gorm:"foreignKey:JobID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// JobCollaborator is one entry of the ordered collaborator list of a job.
type JobCollaborator struct {
	JobID    uint `gorm:"primaryKey"`
	UserID   uint `gorm:"primaryKey;index"`
	Position int  `gorm:"not null"`

	Job  *Job  `gorm:"foreignKey:JobID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	User *User `gorm:"foreignKey:UserID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// PreloadJob loads the collaborator list in order.
func PreloadJob(tx *gorm.DB) *gorm.DB {
	return tx.Preload("Collaborators", func(db *gorm.DB) *gorm.DB {
		return db.Order("position")
	})
}

func (j *Job) CollaboratorIDs() IDList {
	ids := make(IDList, len(j.Collaborators))
	for i, c := range j.Collaborators {
		ids[i] = c.UserID
	}
	return ids
}

func (j *Job) SetCollaborators(ids IDList) {
	ids = ids.Dedup()
	j.Collaborators = make([]JobCollaborator, len(ids))
	for i, id := range ids {
		j.Collaborators[i] = JobCollaborator{JobID: j.ID, UserID: id, Position: i}
	}
}

func (j *Job) Key() string {
	return fmt.Sprintf("jobs:%d", j.ID)
}

func (j *Job) Columns() map[string]any {
	return map[string]any{
		"id":            j.ID,
		"team_leader":   j.TeamLeaderID,
		"job":           j.Job,
		"work_size":     j.WorkSize,
		"collaborators": j.CollaboratorIDs(),
		"start_date":    j.StartDate,
		"end_date":      j.EndDate,
		"is_finished":   j.IsFinished,
		"modified_date": j.ModifiedDate,
	}
}

func (j *Job) Relations() map[string]serializer.Relation {
	return map[string]serializer.Relation{
		"user": serializer.One(func(tx *gorm.DB) (serializer.Entity, error) {
			if j.TeamLeader != nil {
				return j.TeamLeader, nil
			}
			return loadUser(tx, j.TeamLeaderID)
		}),
	}
}

// JobRules cut the team leader's own jobs and departments out of a job.
var JobRules = []string{"-user.jobs", "-user.departments", "-user.hashed_password"}
