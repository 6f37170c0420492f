package inmemdb

import (
	"context"
	"strings"

	"github.com/belleza/salon/core"
	"github.com/belleza/salon/core/user"
)

type userRepository struct {
	db *table[user.User]
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) *userRepository {
	return &userRepository{db: db.user}
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers ...user.User) error {
	repo.db.RLock()
	defer repo.db.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}
	for _, usr := range repo.db.rows {
		if excluded[usr.ID] {
			continue
		}
		if username != "" && usr.Username == username {
			return user.ErrUsernameExists
		}
		if email != "" && usr.Email == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo *userRepository) CreateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	usr.ID = newID()
	repo.db.rows[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, ordering []core.DBOrdering) ([]user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	users := repo.db.all(func(usr user.User) bool {
		if filter == nil {
			return true
		}
		if filter.Search != "" && !contains(usr.Name, filter.Search) &&
			!contains(usr.Username, filter.Search) && !contains(usr.Email, filter.Search) {
			return false
		}
		if len(filter.Roles) > 0 && !hasAnyRolePrefix(usr, filter.Roles) {
			return false
		}
		if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
			return false
		}
		return true
	})
	sortRows(users, ordering, core.DBOrdering{Field: "created_at", Ascending: true}, userField)
	return users, nil
}

func hasAnyRolePrefix(usr user.User, roles []string) bool {
	for _, prefix := range roles {
		for _, role := range usr.Roles {
			if strings.HasPrefix(role, prefix) {
				return true
			}
		}
	}
	return false
}

func userField(usr user.User, field string) interface{} {
	switch field {
	case "name":
		return usr.Name
	case "username":
		return usr.Username
	case "email":
		return usr.Email
	case "is_active":
		return usr.IsActive
	case "updated_at":
		return usr.UpdatedAt
	case "last_login":
		return usr.LastLogin
	default:
		return usr.CreatedAt
	}
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter) (user.User, error) {
	repo.db.RLock()
	defer repo.db.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.rows[filter.ID]; ok {
			return *usr, nil
		}
		return user.User{}, user.ErrNotFound
	}

	var match func(usr *user.User) bool
	switch {
	case filter.Username != "":
		match = func(usr *user.User) bool { return usr.Username == filter.Username }
	case filter.Email != "":
		match = func(usr *user.User) bool { return usr.Email == filter.Email }
	case filter.UsernameOrEmail != "":
		match = func(usr *user.User) bool {
			return usr.Username == filter.UsernameOrEmail || usr.Email == filter.UsernameOrEmail
		}
	default:
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range repo.db.rows {
		if match(usr) {
			return *usr, nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User) (user.User, error) {
	repo.db.Lock()
	defer repo.db.Unlock()

	if _, ok := repo.db.rows[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	repo.db.rows[usr.ID] = &usr
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids ...string) (int, error) {
	return repo.db.deleteByID(ids...), nil
}
