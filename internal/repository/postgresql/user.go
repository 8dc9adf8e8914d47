package postgresql

import (
	"context"
	"errors"
	"fmt"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/user"
	"github.com/cmlabs-hris/conveyance-backend-go/internal/pkg/database"
	"github.com/jackc/pgx/v5"
)

type userRepositoryImpl struct {
	db *database.DB
}

func NewUserRepository(db *database.DB) user.UserRepository {
	return &userRepositoryImpl{db: db}
}

const userColumns = `id, employee_id, email, full_name, password_hash, role, created_at, updated_at`

func (r *userRepositoryImpl) getBy(ctx context.Context, column, value string) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := fmt.Sprintf(`SELECT %s FROM users WHERE %s = $1`, userColumns, column)

	var u user.User
	var role string
	err := q.QueryRow(ctx, query, value).Scan(
		&u.ID,
		&u.EmployeeID,
		&u.Email,
		&u.FullName,
		&u.PasswordHash,
		&role,
		&u.CreatedAt,
		&u.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrUserNotFound
		}
		return user.User{}, fmt.Errorf("failed to get user by %s: %w", column, err)
	}
	u.Role = user.Role(role)

	return u, nil
}

// GetByEmail implements user.UserRepository.
func (r *userRepositoryImpl) GetByEmail(ctx context.Context, email string) (user.User, error) {
	return r.getBy(ctx, "LOWER(email)", email)
}

// GetByID implements user.UserRepository.
func (r *userRepositoryImpl) GetByID(ctx context.Context, id string) (user.User, error) {
	return r.getBy(ctx, "id", id)
}

// Create implements user.UserRepository.
func (r *userRepositoryImpl) Create(ctx context.Context, newUser user.User) (user.User, error) {
	q := GetQuerier(ctx, r.db)

	query := `
		INSERT INTO users (employee_id, email, full_name, password_hash, role)
		VALUES ($1, LOWER($2), $3, $4, $5)
		RETURNING ` + userColumns

	var created user.User
	var role string
	err := q.QueryRow(ctx, query,
		newUser.EmployeeID,
		newUser.Email,
		newUser.FullName,
		newUser.PasswordHash,
		string(newUser.Role),
	).Scan(
		&created.ID,
		&created.EmployeeID,
		&created.Email,
		&created.FullName,
		&created.PasswordHash,
		&role,
		&created.CreatedAt,
		&created.UpdatedAt,
	)
	if err != nil {
		if isUniqueViolation(err, "") {
			return user.User{}, user.ErrUserAlreadyExists
		}
		return user.User{}, fmt.Errorf("failed to create user: %w", err)
	}
	created.Role = user.Role(role)

	return created, nil
}
