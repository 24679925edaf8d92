package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"condo-portal/internal/models"
)

var ErrUserNotFound = errors.New("user not found")

const userColumns = `u.id, u.username, u.password_hash, u.name, u.email, u.phone, u.block,
        u.unit_id, un.name AS unit_name, u.role, u.approved, u.first_access,
        u.reset_token, u.reset_expires, u.unread_count, u.created_at`

const userFrom = ` FROM users u LEFT JOIN units un ON u.unit_id = un.id`

// UserRepository defines interactions for portal accounts, including the
// per-user unread counter.
type UserRepository interface {
	GetUser(ctx context.Context, id int) (models.User, error)
	GetUserByUsername(ctx context.Context, username string) (models.User, error)
	GetUserByEmail(ctx context.Context, email string) (models.User, error)
	CreateUser(ctx context.Context, user models.User) (models.User, error)
	DeleteUser(ctx context.Context, id int) error
	ListUsersByRoles(ctx context.Context, roles ...string) ([]models.User, error)
	CountByRole(ctx context.Context, role string) (int, error)
	ListPendingManagers(ctx context.Context) ([]models.User, error)
	ApproveUser(ctx context.Context, id int) error
	SetResetToken(ctx context.Context, id int, token string, expires time.Time) error
	SetPassword(ctx context.Context, email, passwordHash string, clearToken bool) error
	GetUserForReset(ctx context.Context, email, token string) (models.User, error)
	GetFirstAccessUser(ctx context.Context, email string) (models.User, error)

	ListManagers(ctx context.Context) ([]models.User, error)
	ListReachableByUnits(ctx context.Context, unitIDs []int) ([]models.User, error)

	IncrementUnread(ctx context.Context, userIDs []int) (int, error)
	ResetUnread(ctx context.Context, userID int) error
	UnreadCount(ctx context.Context, userID int) (int, error)
}

// UserRepo is a sqlx-backed repository.
type UserRepo struct {
	db *sqlx.DB
}

// NewUserRepo constructs UserRepo.
func NewUserRepo(db *sqlx.DB) *UserRepo {
	return &UserRepo{db: db}
}

// GetUser retrieves a user by id.
func (r *UserRepo) GetUser(ctx context.Context, id int) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+userFrom+` WHERE u.id=$1`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetUserByUsername retrieves a user by login name.
func (r *UserRepo) GetUserByUsername(ctx context.Context, username string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+userFrom+` WHERE u.username=$1`, username)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetUserByEmail retrieves a user by email.
func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user, `SELECT `+userColumns+userFrom+` WHERE u.email=$1`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// CreateUser stores a new account and returns it with its id assigned.
func (r *UserRepo) CreateUser(ctx context.Context, user models.User) (models.User, error) {
	err := r.db.QueryRowxContext(ctx, `INSERT INTO users
        (username, password_hash, name, email, phone, block, unit_id, role, approved, first_access, reset_token, reset_expires)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)
        RETURNING id, created_at`,
		user.Username, user.PasswordHash, user.Name, user.Email, user.Phone, user.Block,
		user.UnitID, user.Role, user.Approved, user.FirstAccess, user.ResetToken, user.ResetExpires).
		Scan(&user.ID, &user.CreatedAt)
	return user, err
}

// DeleteUser removes an account.
func (r *UserRepo) DeleteUser(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM users WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

// ListUsersByRoles returns every account holding one of the given roles.
func (r *UserRepo) ListUsersByRoles(ctx context.Context, roles ...string) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+userFrom+` WHERE u.role = ANY($1) ORDER BY u.id`, pq.Array(roles))
	return users, err
}

// CountByRole counts accounts holding a role.
func (r *UserRepo) CountByRole(ctx context.Context, role string) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM users WHERE role=$1`, role)
	return count, err
}

// ListPendingManagers returns manager accounts awaiting approval.
func (r *UserRepo) ListPendingManagers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+userFrom+` WHERE u.role=$1 AND u.approved = FALSE ORDER BY u.id`, models.RoleManager)
	return users, err
}

// ApproveUser flips the approval flag.
func (r *UserRepo) ApproveUser(ctx context.Context, id int) error {
	res, err := r.db.ExecContext(ctx, `UPDATE users SET approved = TRUE WHERE id=$1`, id)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrUserNotFound
	}
	return nil
}

// SetResetToken stores a password-reset token and re-arms first access so
// the reset flow is allowed through.
func (r *UserRepo) SetResetToken(ctx context.Context, id int, token string, expires time.Time) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET reset_token=$1, reset_expires=$2, first_access = TRUE WHERE id=$3`,
		token, expires, id)
	return err
}

// SetPassword updates the credential hash and clears first access. When
// clearToken is set the reset token is consumed as well.
func (r *UserRepo) SetPassword(ctx context.Context, email, passwordHash string, clearToken bool) error {
	if clearToken {
		_, err := r.db.ExecContext(ctx,
			`UPDATE users SET password_hash=$1, reset_token=NULL, reset_expires=NULL, first_access = FALSE WHERE email=$2`,
			passwordHash, email)
		return err
	}
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET password_hash=$1, first_access = FALSE WHERE email=$2`,
		passwordHash, email)
	return err
}

// GetUserForReset retrieves a user by email holding a live reset token.
func (r *UserRepo) GetUserForReset(ctx context.Context, email, token string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+userFrom+` WHERE u.email=$1 AND u.reset_token=$2 AND u.reset_expires > NOW()`,
		email, token)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// GetFirstAccessUser retrieves a user by email that has never set a password.
func (r *UserRepo) GetFirstAccessUser(ctx context.Context, email string) (models.User, error) {
	var user models.User
	err := r.db.GetContext(ctx, &user,
		`SELECT `+userColumns+userFrom+` WHERE u.email=$1 AND u.first_access = TRUE`, email)
	if errors.Is(err, sql.ErrNoRows) {
		return models.User{}, ErrUserNotFound
	}
	return user, err
}

// ListManagers returns every manager account regardless of approval state.
func (r *UserRepo) ListManagers(ctx context.Context) ([]models.User, error) {
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+userFrom+` WHERE u.role=$1 ORDER BY u.id`, models.RoleManager)
	return users, err
}

// ListReachableByUnits returns managers and messengers plus every resident
// assigned to one of the given units.
func (r *UserRepo) ListReachableByUnits(ctx context.Context, unitIDs []int) ([]models.User, error) {
	ids := make(pq.Int64Array, 0, len(unitIDs))
	for _, id := range unitIDs {
		ids = append(ids, int64(id))
	}
	var users []models.User
	err := r.db.SelectContext(ctx, &users,
		`SELECT `+userColumns+userFrom+`
         WHERE u.role = ANY($1)
            OR (u.role = $2 AND u.unit_id = ANY($3))
         ORDER BY u.id`,
		pq.Array([]string{models.RoleManager, models.RoleMessenger}), models.RoleResident, ids)
	return users, err
}

// IncrementUnread adds one to the unread counter of every listed user and
// reports how many rows changed. An empty set is a no-op.
func (r *UserRepo) IncrementUnread(ctx context.Context, userIDs []int) (int, error) {
	if len(userIDs) == 0 {
		return 0, nil
	}
	ids := make(pq.Int64Array, 0, len(userIDs))
	for _, id := range userIDs {
		ids = append(ids, int64(id))
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE users SET unread_count = unread_count + 1 WHERE id = ANY($1)`, ids)
	if err != nil {
		return 0, err
	}
	count, err := res.RowsAffected()
	return int(count), err
}

// ResetUnread zeroes a single user's unread counter.
func (r *UserRepo) ResetUnread(ctx context.Context, userID int) error {
	_, err := r.db.ExecContext(ctx, `UPDATE users SET unread_count = 0 WHERE id=$1`, userID)
	return err
}

// UnreadCount reads the stored, unclamped counter value.
func (r *UserRepo) UnreadCount(ctx context.Context, userID int) (int, error) {
	var count int
	err := r.db.GetContext(ctx, &count, `SELECT unread_count FROM users WHERE id=$1`, userID)
	if errors.Is(err, sql.ErrNoRows) {
		return 0, ErrUserNotFound
	}
	return count, err
}
