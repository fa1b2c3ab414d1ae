package store

import (
	"context"

	"github.com/monocle-dev/roster/internal/authz"
	"github.com/monocle-dev/roster/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// JobInput is both the create payload and the partial update payload. An
// absent field is left alone; a null clears the dates and the collaborators
// and is rejected everywhere else.
type JobInput struct {
	ID            Optional[uint]          `json:"id" binding:"omitempty,min=1"`
	TeamLeader    Optional[uint]          `json:"team_leader" binding:"omitempty,min=1"`
	Job           Optional[string]        `json:"job"`
	WorkSize      Optional[int]           `json:"work_size" binding:"omitempty,min=0"`
	Collaborators Optional[models.IDList] `json:"collaborators"`
	StartDate     Optional[DateTime]      `json:"start_date"`
	EndDate       Optional[DateTime]      `json:"end_date"`
	IsFinished    Optional[bool]          `json:"is_finished"`
}

func (in JobInput) check() error {
	return notNull(in.ID.Null, in.TeamLeader.Null, in.Job.Null, in.WorkSize.Null, in.IsFinished.Null)
}

func loadJob(tx *gorm.DB, id uint) (*models.Job, error) {
	var job models.Job

	if err := first(models.PreloadJob(tx).Preload("TeamLeader"), &job, id); err != nil {
		return nil, err
	}

	return &job, nil
}

func (s *Store) ListJobs(ctx context.Context) ([]models.Job, error) {
	var jobs []models.Job

	err := models.PreloadJob(s.Conn(ctx)).Preload("TeamLeader").Order("id").Find(&jobs).Error

	return jobs, err
}

func (s *Store) GetJob(ctx context.Context, id uint) (*models.Job, error) {
	return loadJob(s.Conn(ctx), id)
}

// JobForEdit loads a job for an edit form. Jobs the actor may not manage are
// reported as missing.
func (s *Store) JobForEdit(ctx context.Context, actor *models.User, id uint) (*models.Job, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	job, err := loadJob(s.Conn(ctx), id)

	if err != nil {
		return nil, err
	}

	if !authz.CanManageJob(actor, job) {
		return nil, ErrNotFound
	}

	return job, nil
}

func (s *Store) CreateJob(ctx context.Context, actor *models.User, in JobInput) (*models.Job, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	if err := in.check(); err != nil {
		return nil, err
	}

	if !in.TeamLeader.Present() || !in.Job.Present() || !in.WorkSize.Present() {
		return nil, fail(ErrInvalid, "Bad request")
	}

	var created *models.Job

	err := s.session(ctx, func(tx *gorm.DB) error {
		job := models.Job{
			TeamLeaderID: in.TeamLeader.Value,
			Job:          in.Job.Value,
			WorkSize:     in.WorkSize.Value,
			IsFinished:   in.IsFinished.Value,
		}

		if in.ID.Set {
			if err := takeID(tx, &models.Job{}, in.ID.Value); err != nil {
				return err
			}

			job.ID = in.ID.Value
		}

		if err := checkUsers(tx, "team leader", models.IDList{job.TeamLeaderID}); err != nil {
			return err
		}

		collaborators := in.Collaborators.Value

		if err := checkUsers(tx, "collaborator", collaborators); err != nil {
			return err
		}

		now := s.now()
		job.StartDate = datePtr(in.StartDate, now)
		job.EndDate = datePtr(in.EndDate, now)
		job.ModifiedDate = now

		if err := tx.Omit(clause.Associations).Create(&job).Error; err != nil {
			return err
		}

		if in.ID.Set {
			if err := resetIDSequence(tx, "jobs").Error; err != nil {
				return err
			}
		}

		if err := replaceCollaborators(tx, &job, collaborators); err != nil {
			return err
		}

		var err error
		created, err = loadJob(tx, job.ID)

		return err
	})

	return created, err
}

func (s *Store) UpdateJob(ctx context.Context, actor *models.User, id uint, in JobInput) (*models.Job, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	if err := in.check(); err != nil {
		return nil, err
	}

	var updated *models.Job

	err := s.session(ctx, func(tx *gorm.DB) error {
		job, err := loadJob(tx, id)

		if err != nil {
			return err
		}

		if !authz.CanManageJob(actor, job) {
			return ErrNotFound
		}

		updates := map[string]any{}

		if in.TeamLeader.Set {
			if err := checkUsers(tx, "team leader", models.IDList{in.TeamLeader.Value}); err != nil {
				return err
			}

			updates["team_leader"] = in.TeamLeader.Value
		}

		if in.Job.Set {
			updates["job"] = in.Job.Value
		}

		if in.WorkSize.Set {
			updates["work_size"] = in.WorkSize.Value
		}

		if in.StartDate.Set {
			updates["start_date"] = dateColumn(in.StartDate)
		}

		if in.EndDate.Set {
			updates["end_date"] = dateColumn(in.EndDate)
		}

		if in.IsFinished.Set {
			updates["is_finished"] = in.IsFinished.Value
		}

		if in.Collaborators.Set {
			if err := checkUsers(tx, "collaborator", in.Collaborators.Value); err != nil {
				return err
			}

			if err := replaceCollaborators(tx, job, in.Collaborators.Value); err != nil {
				return err
			}
		}

		if len(updates) > 0 || in.Collaborators.Set {
			updates["modified_date"] = s.now()

			if err := tx.Model(&models.Job{}).Where("id = ?", job.ID).Updates(updates).Error; err != nil {
				return err
			}
		}

		updated, err = loadJob(tx, job.ID)

		return err
	})

	return updated, err
}

func (s *Store) DeleteJob(ctx context.Context, actor *models.User, id uint) error {
	if actor == nil {
		return ErrUnauthenticated
	}

	return s.session(ctx, func(tx *gorm.DB) error {
		job, err := loadJob(tx, id)

		if err != nil {
			return err
		}

		if !authz.CanManageJob(actor, job) {
			return ErrNotFound
		}

		if err := tx.Where("job_id = ?", job.ID).Delete(&models.JobCollaborator{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Job{}, job.ID).Error
	})
}

func replaceCollaborators(tx *gorm.DB, job *models.Job, ids models.IDList) error {
	if err := tx.Where("job_id = ?", job.ID).Delete(&models.JobCollaborator{}).Error; err != nil {
		return err
	}

	job.SetCollaborators(ids)

	if len(job.Collaborators) == 0 {
		return nil
	}

	return tx.Omit(clause.Associations).Create(&job.Collaborators).Error
}
