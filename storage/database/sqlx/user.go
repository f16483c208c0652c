package sqlxrepos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"github.com/pkg/errors"
	"github.com/volatiletech/null/v8"

	"github.com/JoanAquinoVasquez/SISCON-sub000/core"
	"github.com/JoanAquinoVasquez/SISCON-sub000/core/user"
)

const userColumns = `id, name, username, email, is_active, roles, password_hash, created_at, updated_at, last_login`

type userRow struct {
	ID           string         `db:"id"`
	Name         string         `db:"name"`
	Username     null.String    `db:"username"`
	Email        null.String    `db:"email"`
	IsActive     bool           `db:"is_active"`
	Roles        pq.StringArray `db:"roles"`
	PasswordHash []byte         `db:"password_hash"`
	CreatedAt    time.Time      `db:"created_at"`
	UpdatedAt    time.Time      `db:"updated_at"`
	LastLogin    null.Time      `db:"last_login"`
}

func toUserRow(usr user.User) userRow {
	roles := usr.Roles
	if roles == nil {
		roles = []string{}
	}
	return userRow{
		ID:           usr.ID,
		Name:         usr.Name,
		Username:     nullString(usr.Username),
		Email:        nullString(usr.Email),
		IsActive:     usr.IsActive,
		Roles:        roles,
		PasswordHash: usr.PasswordHash,
		CreatedAt:    usr.CreatedAt.UTC(),
		UpdatedAt:    usr.UpdatedAt.UTC(),
		LastLogin:    null.NewTime(usr.LastLogin.UTC(), !usr.LastLogin.IsZero()),
	}
}

func (r userRow) model() user.User {
	return user.User{
		ID:           r.ID,
		Name:         r.Name,
		Username:     r.Username.String,
		Email:        r.Email.String,
		IsActive:     r.IsActive,
		Roles:        r.Roles,
		PasswordHash: r.PasswordHash,
		CreatedAt:    r.CreatedAt,
		UpdatedAt:    r.UpdatedAt,
		LastLogin:    r.LastLogin.Time,
	}
}

type userRepository struct {
	repository
}

var _ user.Repository = (*userRepository)(nil) // interface compliance check

func NewUserRepository(exec core.DBExecutor) *userRepository {
	return &userRepository{repository{exec: exec}}
}

func (repo userRepository) CheckUsernameUniqueness(ctx context.Context, username, email string, excludedUsers []user.User, exec ...core.DBExecutor) error {
	w := &where{}
	w.add("username = ? OR email = ?", username, email)
	if len(excludedUsers) > 0 {
		ids := make([]string, 0, len(excludedUsers))
		for _, u := range excludedUsers {
			ids = append(ids, u.ID)
		}
		w.add("id NOT IN (?)", ids)
	}
	q, args, err := sqlx.In(`SELECT username, email FROM "user"`+w.String(), w.args...)
	if err != nil {
		return errors.Wrap(err, "building uniqueness query")
	}

	var rows []userRow
	if err = sqlx.SelectContext(ctx, repo.getExec(exec), &rows, sqlx.Rebind(sqlx.DOLLAR, q), args...); err != nil {
		return errors.Wrap(err, "checking user uniqueness")
	}
	for _, r := range rows {
		if username != "" && r.Username.String == username {
			return user.ErrUsernameExists
		}
		if email != "" && r.Email.String == email {
			return user.ErrEmailExists
		}
	}
	return nil
}

func (repo userRepository) CreateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	usr.ID = uuid.New().String()
	q := `INSERT INTO "user" (` + userColumns + `) VALUES (:id, :name, :username, :email, :is_active, :roles, :password_hash, :created_at, :updated_at, :last_login)`
	if _, err := sqlx.NamedExecContext(ctx, repo.getExec(exec), q, toUserRow(usr)); err != nil {
		return user.User{}, errors.Wrap(err, "inserting user")
	}
	return usr, nil
}

func (repo userRepository) QueryUsers(ctx context.Context, filter *user.QueryFilter, page core.PageRequest, ordering []core.DBOrdering, exec ...core.DBExecutor) ([]user.User, int, error) {
	w := &where{}
	if filter != nil {
		// users with Name, Username or Email matching the search keyword
		w.search(filter.Search, "name", "username", "email")
		// users with any role that starts with any of the provided roles
		if len(filter.Roles) > 0 {
			patterns := make([]string, 0, len(filter.Roles))
			for _, role := range filter.Roles {
				patterns = append(patterns, role+"%")
			}
			w.add("EXISTS (SELECT 1 FROM UNNEST(roles) user_role WHERE user_role ILIKE ANY (?))", pq.StringArray(patterns))
		}
		if filter.IsActive != nil {
			w.add("is_active = ?", *filter.IsActive)
		}
		if !filter.CreatedFrom.IsZero() {
			w.add("created_at >= ?", filter.CreatedFrom.UTC())
		}
		if !filter.CreatedTo.IsZero() {
			w.add("created_at <= ?", filter.CreatedTo.UTC())
		}
	}

	var rows []userRow
	total, err := queryPage(ctx, repo.getExec(exec), &rows, userColumns, `"user"`, w, ordering, page)
	if err != nil {
		return nil, 0, errors.Wrap(err, "querying users")
	}
	users := make([]user.User, 0, len(rows))
	for _, r := range rows {
		users = append(users, r.model())
	}
	return users, total, nil
}

func (repo userRepository) GetUser(ctx context.Context, filter user.GetFilter, exec ...core.DBExecutor) (user.User, error) {
	w := &where{}
	switch {
	case filter.ID != "":
		if _, err := uuid.Parse(filter.ID); err != nil {
			return user.User{}, user.ErrNotFound
		}
		w.add("id = ?", filter.ID)
	case filter.Username != "":
		w.add("username = ?", filter.Username)
	case filter.Email != "":
		w.add("email = ?", filter.Email)
	case len(filter.UsernameOrEmail) > 0:
		var email string
		uname := filter.UsernameOrEmail[0]
		if len(filter.UsernameOrEmail) == 2 {
			email = filter.UsernameOrEmail[1]
		}
		if email == "" {
			email = uname
		} else if uname == "" {
			uname = email
		}
		w.add("username = ? OR email = ?", uname, email)
	default:
		return user.User{}, user.ErrNotFound
	}

	var r userRow
	q := sqlx.Rebind(sqlx.DOLLAR, `SELECT `+userColumns+` FROM "user"`+w.String()+` LIMIT 1`)
	if err := sqlx.GetContext(ctx, repo.getExec(exec), &r, q, w.args...); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "finding user")
	}
	return r.model(), nil
}

func (repo userRepository) UpdateUser(ctx context.Context, usr user.User, exec ...core.DBExecutor) (user.User, error) {
	q := `UPDATE "user" SET name = :name, username = :username, email = :email, is_active = :is_active,
		roles = :roles, password_hash = :password_hash, updated_at = :updated_at, last_login = :last_login
		WHERE id = :id`
	if err := updateNamed(ctx, repo.getExec(exec), q, toUserRow(usr), user.ErrNotFound); err != nil {
		return user.User{}, trapNoRowsErr(err, user.ErrNotFound, "updating user")
	}
	return usr, nil
}

func (repo userRepository) DeleteUsersByID(ctx context.Context, ids []string, exec ...core.DBExecutor) (int, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	q, args, err := sqlx.In(`DELETE FROM "user" WHERE id IN (?)`, ids)
	if err != nil {
		return 0, errors.Wrap(err, "building delete query")
	}
	res, err := repo.getExec(exec).ExecContext(ctx, sqlx.Rebind(sqlx.DOLLAR, q), args...)
	if err != nil {
		return 0, errors.Wrap(err, "deleting users")
	}
	n, err := res.RowsAffected()
	return int(n), errors.Wrap(err, "deleting users")
}
