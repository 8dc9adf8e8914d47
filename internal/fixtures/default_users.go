package fixtures

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/cmlabs-hris/conveyance-backend-go/internal/domain/user"
	"golang.org/x/crypto/bcrypt"
)

// SeededUserIDs maps each default employee ID to the user ID stored for it.
type SeededUserIDs map[string]string

// ==========================================
// DEFAULT USERS
// ==========================================

// GetDefaultUsers returns one account per role so a fresh database can be used right away.
func GetDefaultUsers(passwordHash string) []user.User {
	return []user.User{
		{EmployeeID: "ADM-001", Email: "admin@conveyance.local", FullName: "Default Admin", PasswordHash: passwordHash, Role: user.RoleAdmin},
		{EmployeeID: "LEAD-001", Email: "lead@conveyance.local", FullName: "Default Team Lead", PasswordHash: passwordHash, Role: user.RoleTeamLead},
		{EmployeeID: "EMP-001", Email: "employee@conveyance.local", FullName: "Default Employee", PasswordHash: passwordHash, Role: user.RoleEmployee},
	}
}

// SeedDefaultUsers creates the default accounts, skipping any that already exist.
func SeedDefaultUsers(ctx context.Context, repo user.UserRepository, password string) (SeededUserIDs, error) {
	if len(password) < 8 {
		return nil, fmt.Errorf("seed password must be at least 8 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash seed password: %w", err)
	}

	seeded := make(SeededUserIDs)
	for _, u := range GetDefaultUsers(string(hash)) {
		created, err := repo.Create(ctx, u)
		if errors.Is(err, user.ErrUserAlreadyExists) {
			existing, getErr := repo.GetByEmail(ctx, u.Email)
			if getErr != nil {
				return nil, fmt.Errorf("failed to load existing user %s: %w", u.Email, getErr)
			}
			slog.Info("Default user already present", "employee_id", u.EmployeeID)
			seeded[u.EmployeeID] = existing.ID
			continue
		}
		if err != nil {
			return nil, fmt.Errorf("failed to seed user %s: %w", u.Email, err)
		}
		slog.Info("Seeded default user", "employee_id", created.EmployeeID, "role", created.Role)
		seeded[u.EmployeeID] = created.ID
	}

	return seeded, nil
}
