package store

import (
	"context"
	"errors"

	"github.com/monocle-dev/roster/internal/authz"
	"github.com/monocle-dev/roster/internal/models"
	"gorm.io/gorm"
)

// UserInput is the registration and profile payload. A null age clears it
// and a null position, speciality or address empties the text; the other
// fields cannot be null.
type UserInput struct {
	ID         Optional[uint]   `json:"id" binding:"omitempty,min=1"`
	Surname    Optional[string] `json:"surname"`
	Name       Optional[string] `json:"name"`
	Age        Optional[int]    `json:"age" binding:"omitempty,min=0,max=200"`
	Position   Optional[string] `json:"position"`
	Speciality Optional[string] `json:"speciality"`
	Address    Optional[string] `json:"address"`
	Email      Optional[string] `json:"email" binding:"omitempty,email"`
	Password   Optional[string] `json:"password" binding:"omitempty,min=8"`
	Role       Optional[string] `json:"role" binding:"omitempty,oneof=member admin"`
}

func (in UserInput) check() error {
	return notNull(in.ID.Null, in.Surname.Null, in.Name.Null, in.Email.Null, in.Password.Null, in.Role.Null)
}

func (s *Store) ListUsers(ctx context.Context) ([]models.User, error) {
	var users []models.User

	err := s.Conn(ctx).Order("id").Find(&users).Error

	return users, err
}

func (s *Store) GetUser(ctx context.Context, id uint) (*models.User, error) {
	var user models.User

	if err := first(s.Conn(ctx), &user, id); err != nil {
		return nil, err
	}

	return &user, nil
}

func (s *Store) UserForEdit(ctx context.Context, actor *models.User, id uint) (*models.User, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	user, err := s.GetUser(ctx, id)

	if err != nil {
		return nil, err
	}

	if !authz.CanManageUser(actor, user) {
		return nil, ErrNotFound
	}

	return user, nil
}

// CreateUser registers a user. actor may be nil for self registration; only
// an administrator can pick the role. The very first user becomes the
// administrator.
func (s *Store) CreateUser(ctx context.Context, actor *models.User, in UserInput) (*models.User, error) {
	if err := in.check(); err != nil {
		return nil, err
	}

	if !in.Surname.Present() || !in.Name.Present() || !in.Email.Present() || !in.Password.Present() {
		return nil, fail(ErrInvalid, "Bad request")
	}

	if in.Role.Set && !authz.CanAssignRole(actor) {
		return nil, fail(ErrInvalid, "Only administrators can assign roles")
	}

	var created models.User

	err := s.session(ctx, func(tx *gorm.DB) error {
		user := models.User{
			Surname: in.Surname.Value,
			Name:    in.Name.Value,
			Email:   normalizeEmail(in.Email.Value),
			Role:    models.RoleMember,
		}
		applyProfile(&user, in)

		if in.ID.Set {
			if err := takeID(tx, &models.User{}, in.ID.Value); err != nil {
				return err
			}

			user.ID = in.ID.Value
		}

		taken, err := emailTaken(tx, &models.User{}, user.Email, 0)

		if err != nil {
			return err
		}

		if taken {
			return fail(ErrConflict, "Email already exists")
		}

		anyone, err := exists(tx, &models.User{}, "1 = 1")

		if err != nil {
			return err
		}

		if !anyone {
			user.Role = models.RoleAdmin
		}

		if in.Role.Set {
			user.Role = in.Role.Value
		}

		if err := user.SetPassword(in.Password.Value); err != nil {
			return err
		}

		user.ModifiedDate = s.now()

		if err := tx.Create(&user).Error; err != nil {
			return err
		}

		if in.ID.Set {
			if err := resetIDSequence(tx, "users").Error; err != nil {
				return err
			}
		}

		created = user
		return nil
	})

	if err != nil {
		return nil, err
	}

	return &created, nil
}

func applyProfile(user *models.User, in UserInput) {
	if in.Age.Set {
		user.Age = in.Age.Ptr()
	}

	if in.Position.Set {
		user.Position = in.Position.Value
	}

	if in.Speciality.Set {
		user.Speciality = in.Speciality.Value
	}

	if in.Address.Set {
		user.Address = in.Address.Value
	}
}

func (s *Store) UpdateUser(ctx context.Context, actor *models.User, id uint, in UserInput) (*models.User, error) {
	if actor == nil {
		return nil, ErrUnauthenticated
	}

	if err := in.check(); err != nil {
		return nil, err
	}

	var updated models.User

	err := s.session(ctx, func(tx *gorm.DB) error {
		var user models.User

		if err := first(tx, &user, id); err != nil {
			return err
		}

		if !authz.CanManageUser(actor, &user) {
			return ErrNotFound
		}

		if in.Role.Set && !authz.CanAssignRole(actor) {
			return fail(ErrInvalid, "Only administrators can assign roles")
		}

		if in.Surname.Set {
			user.Surname = in.Surname.Value
		}

		if in.Name.Set {
			user.Name = in.Name.Value
		}

		applyProfile(&user, in)

		if in.Email.Set {
			email := normalizeEmail(in.Email.Value)
			taken, err := emailTaken(tx, &models.User{}, email, user.ID)

			if err != nil {
				return err
			}

			if taken {
				return fail(ErrConflict, "Email already exists")
			}

			user.Email = email
		}

		if in.Password.Set {
			if err := user.SetPassword(in.Password.Value); err != nil {
				return err
			}
		}

		if in.Role.Set {
			user.Role = in.Role.Value
		}

		user.ModifiedDate = s.now()

		if err := tx.Save(&user).Error; err != nil {
			return err
		}

		updated = user
		return nil
	})

	if err != nil {
		return nil, err
	}

	return &updated, nil
}

// DeleteUser refuses to remove a user who still leads a job or chiefs a
// department. Collaborator and member entries of the user go with it.
func (s *Store) DeleteUser(ctx context.Context, actor *models.User, id uint) error {
	if actor == nil {
		return ErrUnauthenticated
	}

	return s.session(ctx, func(tx *gorm.DB) error {
		var user models.User

		if err := first(tx, &user, id); err != nil {
			return err
		}

		if !authz.CanManageUser(actor, &user) {
			return ErrNotFound
		}

		leads, err := exists(tx, &models.Job{}, "team_leader = ?", user.ID)

		if err != nil {
			return err
		}

		if leads {
			return fail(ErrReferenced, "User still leads jobs")
		}

		chiefs, err := exists(tx, &models.Department{}, "chief = ?", user.ID)

		if err != nil {
			return err
		}

		if chiefs {
			return fail(ErrReferenced, "User still heads departments")
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.JobCollaborator{}).Error; err != nil {
			return err
		}

		if err := tx.Where("user_id = ?", user.ID).Delete(&models.DepartmentMember{}).Error; err != nil {
			return err
		}

		return tx.Delete(&models.User{}, user.ID).Error
	})
}

// Authenticate looks a user up by email and checks the password. Unknown
// emails and wrong passwords are indistinguishable to the caller.
func (s *Store) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	var user models.User

	err := s.Conn(ctx).Where("email = ?", normalizeEmail(email)).First(&user).Error

	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrBadCredentials
	}

	if err != nil {
		return nil, err
	}

	if !user.CheckPassword(password) {
		return nil, ErrBadCredentials
	}

	return &user, nil
}

// SetRole changes the role of the user with the given email. There is no
// acting user; the command line tool is trusted.
func (s *Store) SetRole(ctx context.Context, email, role string) (*models.User, error) {
	if role != models.RoleMember && role != models.RoleAdmin {
		return nil, fail(ErrInvalid, "Unknown role %q", role)
	}

	var user models.User

	err := s.session(ctx, func(tx *gorm.DB) error {
		err := tx.Where("email = ?", normalizeEmail(email)).First(&user).Error

		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrNotFound
		}

		if err != nil {
			return err
		}

		user.Role = role
		user.ModifiedDate = s.now()

		return tx.Model(&user).Updates(map[string]any{"role": user.Role, "modified_date": user.ModifiedDate}).Error
	})

	if err != nil {
		return nil, err
	}

	return &user, nil
}
