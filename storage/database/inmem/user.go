package inmemdb

import (
	"context"
	"sort"
	"strings"

	"github.com/google/uuid"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/user"
)

var userColumns = map[string]cmpFunc[user.User]{
	"name":       func(a, b user.User) int { return cmpString(a.Name, b.Name) },
	"username":   func(a, b user.User) int { return cmpString(a.Username, b.Username) },
	"email":      func(a, b user.User) int { return cmpString(a.Email, b.Email) },
	"created_at": func(a, b user.User) int { return cmpTime(a.CreatedAt, b.CreatedAt) },
	"last_login": func(a, b user.User) int { return cmpTime(a.LastLogin, b.LastLogin) },
}

type userRepository struct {
	db *DB
}

var _ user.Repository = (*userRepository)(nil)

func NewUserRepository(db *DB) user.Repository {
	return &userRepository{db: db}
}

func copyUser(usr user.User) user.User {
	usr.Roles = append([]string(nil), usr.Roles...)
	usr.PasswordHash = append([]byte(nil), usr.PasswordHash...)
	return usr
}

func (repo *userRepository) CheckUsernameUniqueness(_ context.Context, username, email string, excludedUsers []user.User, _ ...core.DBExecutor) error {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	excluded := make(map[string]bool, len(excludedUsers))
	for _, u := range excludedUsers {
		excluded[u.ID] = true
	}
	for _, usr := range repo.db.users {
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

func (repo *userRepository) CreateUser(_ context.Context, usr user.User, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	usr.ID = uuid.New().String()
	stored := copyUser(usr)
	repo.db.users[usr.ID] = &stored
	return usr, nil
}

func (repo *userRepository) QueryUsers(_ context.Context, filter *user.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, _ ...core.DBExecutor) ([]user.User, int, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	users := make([]user.User, 0, len(repo.db.users))
	for _, usr := range repo.db.users {
		if filter != nil && !userMatches(*usr, filter) {
			continue
		}
		users = append(users, copyUser(*usr))
	}
	// map iteration is random
	sort.Slice(users, func(i, j int) bool { return users[i].ID < users[j].ID })
	sortRecords(users, ordering, userColumns)
	return paginate(users, page), len(users), nil
}

func userMatches(usr user.User, filter *user.QueryFilter) bool {
	if !matches(filter.Search, usr.Name, usr.Username, usr.Email) {
		return false
	}
	if len(filter.Roles) > 0 {
		found := false
		for _, role := range filter.Roles {
			if usr.RoleStartsWith(strings.ToLower(role)) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if filter.IsActive != nil && usr.IsActive != *filter.IsActive {
		return false
	}
	if !filter.CreatedFrom.IsZero() && usr.CreatedAt.Before(filter.CreatedFrom) {
		return false
	}
	if !filter.CreatedTo.IsZero() && usr.CreatedAt.After(filter.CreatedTo) {
		return false
	}
	return true
}

func (repo *userRepository) GetUser(_ context.Context, filter user.GetFilter, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mu.RLock()
	defer repo.db.mu.RUnlock()

	if filter.ID != "" {
		if usr, ok := repo.db.users[filter.ID]; ok {
			return copyUser(*usr), nil
		}
		return user.User{}, user.ErrNotFound
	}

	var uname, email string
	switch {
	case filter.Username != "":
		uname = filter.Username
	case filter.Email != "":
		email = filter.Email
	case len(filter.UsernameOrEmail) > 0:
		uname = filter.UsernameOrEmail[0]
		email = uname
		if len(filter.UsernameOrEmail) == 2 && filter.UsernameOrEmail[1] != "" {
			email = filter.UsernameOrEmail[1]
		}
	default:
		return user.User{}, user.ErrNotFound
	}
	for _, usr := range repo.db.users {
		if (uname != "" && usr.Username == uname) || (email != "" && usr.Email == email) {
			return copyUser(*usr), nil
		}
	}
	return user.User{}, user.ErrNotFound
}

func (repo *userRepository) UpdateUser(_ context.Context, usr user.User, _ ...core.DBExecutor) (user.User, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	if _, ok := repo.db.users[usr.ID]; !ok {
		return user.User{}, user.ErrNotFound
	}
	stored := copyUser(usr)
	repo.db.users[usr.ID] = &stored
	return usr, nil
}

func (repo *userRepository) DeleteUsersByID(_ context.Context, ids []string, _ ...core.DBExecutor) (int, error) {
	repo.db.mu.Lock()
	defer repo.db.mu.Unlock()

	var cnt int
	for _, id := range ids {
		if _, ok := repo.db.users[id]; ok {
			delete(repo.db.users, id)
			cnt++
		}
	}
	return cnt, nil
}
