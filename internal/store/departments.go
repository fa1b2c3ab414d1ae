package store

import (
	"context"

	"github.com/monocle-dev/roster/internal/authz"
	"github.com/monocle-dev/roster/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// DepartmentInput follows the JobInput rules: a null member list clears it,
// a null anywhere else is rejected.
type DepartmentInput struct {
	ID      Optional[uint]          `json:"id" binding:"omitempty,min=1"`
	Title   Optional[string]        `json:"title"`
	Chief   Optional[uint]          `json:"chief" binding:"omitempty,min=1"`
	Members Optional[models.IDList] `json:"members"`
	Email   Optional[string]        `json:"email" binding:"omitempty,email"`
}

func (in DepartmentInput) check() error {
	return notNull(in.ID.Null, in.Title.Null, in.Chief.Null, in.Email.Null)
}

func loadDepartment(tx *gorm.DB, id uint) (*models.Department, error) {
	var department models.Department

	if err := first(models.PreloadDepartment(tx).Preload("Chief"), &department, id); err != nil {
		return nil, err
	}

	return &department, nil
}

func (s *Store) ListDepartments(ctx context.Context) ([]models.Department, error) {
	var departments []models.Department

	err := models.PreloadDepartment(s.Conn(ctx)).Preload("Chief").Order("id").Find(&departments).Error

	return departments, err
}

func (s *Store) GetDepartment(ctx context.Context, id uint) (*models.Department, error) {
	return loadDepartment(s.Conn(ctx), id)
}

func (s *Store) DepartmentForEdit(ctx context.Context, actor *models.User, id uint) (*models.Department, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	department, err := loadDepartment(s.Conn(ctx), id)

	if err != nil {
		return nil, err
	}

	if !authz.CanManageDepartment(actor, department) {
		return nil, ErrNotFound
	}

	return department, nil
}

func emailTaken(tx *gorm.DB, model any, email string, except uint) (bool, error) {
	return exists(tx, model, "email = ? AND id <> ?", email, except)
}

func (s *Store) CreateDepartment(ctx context.Context, actor *models.User, in DepartmentInput) (*models.Department, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	if err := in.check(); err != nil {
		return nil, err
	}

	if !in.Title.Present() || !in.Chief.Present() || !in.Email.Present() {
		return nil, fail(ErrInvalid, "Bad request")
	}

	var created *models.Department

	err := s.session(ctx, func(tx *gorm.DB) error {
		department := models.Department{
			Title:   in.Title.Value,
			ChiefID: in.Chief.Value,
			Email:   normalizeEmail(in.Email.Value),
		}

		if in.ID.Set {
			if err := takeID(tx, &models.Department{}, in.ID.Value); err != nil {
				return err
			}

			department.ID = in.ID.Value
		}

		taken, err := emailTaken(tx, &models.Department{}, department.Email, 0)

		if err != nil {
			return err
		}

		if taken {
			return fail(ErrConflict, "Email already exists")
		}

		if err := checkUsers(tx, "chief", models.IDList{department.ChiefID}); err != nil {
			return err
		}

		members := in.Members.Value

		if err := checkUsers(tx, "member", members); err != nil {
			return err
		}

		if err := tx.Omit(clause.Associations).Create(&department).Error; err != nil {
			return err
		}

		if in.ID.Set {
			if err := resetIDSequence(tx, "departments").Error; err != nil {
				return err
			}
		}

		if err := replaceMembers(tx, &department, members); err != nil {
			return err
		}

		created, err = loadDepartment(tx, department.ID)

		return err
	})

	return created, err
}

func (s *Store) UpdateDepartment(ctx context.Context, actor *models.User, id uint, in DepartmentInput) (*models.Department, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	if err := in.check(); err != nil {
		return nil, err
	}

	var updated *models.Department

	err := s.session(ctx, func(tx *gorm.DB) error {
		department, err := loadDepartment(tx, id)

		if err != nil {
			return err
		}

		if !authz.CanManageDepartment(actor, department) {
			return ErrNotFound
		}

		updates := map[string]any{}

		if in.Title.Set {
			updates["title"] = in.Title.Value
		}

		if in.Chief.Set {
			if err := checkUsers(tx, "chief", models.IDList{in.Chief.Value}); err != nil {
				return err
			}

			updates["chief"] = in.Chief.Value
		}

		if in.Email.Set {
			email := normalizeEmail(in.Email.Value)
			taken, err := emailTaken(tx, &models.Department{}, email, department.ID)

			if err != nil {
				return err
			}

			if taken {
				return fail(ErrConflict, "Email already exists")
			}

			updates["email"] = email
		}

		if in.Members.Set {
			if err := checkUsers(tx, "member", in.Members.Value); err != nil {
				return err
			}

			if err := replaceMembers(tx, department, in.Members.Value); err != nil {
				return err
			}
		}

		if len(updates) > 0 {
			if err := tx.Model(&models.Department{}).Where("id = ?", department.ID).Updates(updates).Error; err != nil {
				return err
			}
		}

		updated, err = loadDepartment(tx, department.ID)

		return err
	})

	return updated, err
}

func (s *Store) DeleteDepartment(ctx context.Context, actor *models.User, id uint) error {
	if actor == nil {
		return ErrUnauthenticated
	}

	return s.session(ctx, func(tx *gorm.DB) error {
		department, err := loadDepartment(tx, id)

		if err != nil {
			return err
		}

		if !authz.CanManageDepartment(actor, department) {
			return ErrNotFound
		}

		if err := tx.Where("department_id = ?", department.ID).Delete(&models.DepartmentMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.Department{}, department.ID).Error
	})
}

func replaceMembers(tx *gorm.DB, department *models.Department, ids models.IDList) error {
	if err := tx.Where("department_id = ?", department.ID).Delete(&models.DepartmentMember{}).Error; err != nil {
		return err
	}

	department.SetMembers(ids)

	if len(department.Members) == 0 {
		return nil
	}

	return tx.Omit(clause.Associations).Create(&department.Members).Error
}
