// Package authz decides who may change which roster entity.
//
// Jobs belong to their team leader, departments to their chief and user
// profiles to the user. Administrators may act on everything. Callers must
// check against the owner of the entity they actually loaded, on every
// read-for-edit and every write.
package authz

import "github.com/monocle-dev/roster/internal/models"

// CanManage reports whether actor may edit or delete an entity owned by
// ownerID. A nil actor is anonymous and never allowed.
func CanManage(actor *models.User, ownerID uint) bool {
	if actor == nil || actor.ID == 0 {
		return false
	}
	return actor.ID == ownerID || actor.IsAdmin()
}

func CanManageJob(actor *models.User, job *models.Job) bool {
	return job != nil && CanManage(actor, job.TeamLeaderID)
}

func CanManageDepartment(actor *models.User, department *models.Department) bool {
	return department != nil && CanManage(actor, department.ChiefID)
}

// CanManageUser allows a user to manage their own profile.
func CanManageUser(actor *models.User, user *models.User) bool {
	return user != nil && CanManage(actor, user.ID)
}

// CanAssignRole is reserved to administrators.
func CanAssignRole(actor *models.User) bool {
	return actor.IsAdmin()
}
