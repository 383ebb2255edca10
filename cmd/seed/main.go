package main

import (
	"context"
	"errors"
	"fmt"
	"log"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-user-context/config"
	"github.com/oksasatya/go-ddd-user-context/internal/application"
	"github.com/oksasatya/go-ddd-user-context/internal/container"
	"github.com/oksasatya/go-ddd-user-context/internal/domain/entity"
	vo "github.com/oksasatya/go-ddd-user-context/internal/domain/valueobject"
	"github.com/oksasatya/go-ddd-user-context/internal/infrastructure/postgres"
	"github.com/oksasatya/go-ddd-user-context/pkg/helpers"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	ctx := context.Background()

	pool, err := postgres.NewPool(ctx, cfg.PostgresDSN(), cfg.DBMaxConns, cfg.DBMinConns, cfg.DBMaxConnLife)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer pool.Close()

	container.SetConfig(cfg)
	container.SetLogger(helpers.NewLogger(cfg.AppName+"-seed", cfg.Env, cfg.LogLevel))
	container.SetPGPool(pool)
	users := container.BuildServices().Users

	// Ensure base roles exist
	admin, err := users.EnsureRole(ctx, "admin", "Administrator", "Full access to user management",
		[]string{"users:read", "users:write", "roles:assign"}, true)
	if err != nil {
		log.Fatalf("failed to ensure admin role: %v", err)
	}
	member, err := users.EnsureRole(ctx, "user", "User", "Default role for registered users", []string{"self:read", "self:write"}, true)
	if err != nil {
		log.Fatalf("failed to ensure user role: %v", err)
	}
	fmt.Printf("roles ensured: admin=%s user=%s\n", admin.ID, member.ID)

	u, err := seedAdmin(ctx, users, cfg.SeedAdminEmail, cfg.SeedAdminPassword)
	if err != nil {
		log.Fatalf("failed to seed admin: %v", err)
	}
	fmt.Printf("seeded user: id=%s email=%s status=%s\n", u.ID(), u.Email(), u.Status())

	if _, err := users.AssignRole(ctx, application.AssignRoleInput{UserID: u.ID().String(), Role: "admin"}); err != nil {
		log.Fatalf("failed to assign admin role: %v", err)
	}
	fmt.Println("assigned admin role to seeded user (if not already)")
}

// seedAdmin registers the admin when missing and brings it to an active,
// verified state. Running it again is harmless.
func seedAdmin(ctx context.Context, users *application.UserService, email, password string) (*entity.User, error) {
	u, err := users.GetByEmail(ctx, email)
	if errors.Is(err, application.ErrUserNotFound) {
		u, err = users.Register(ctx, application.RegisterInput{Email: email, Password: password})
	}
	if err != nil {
		return nil, err
	}
	id := u.ID().String()
	if u.Status() != vo.StatusActive {
		if u, err = users.Activate(ctx, id); err != nil {
			return nil, err
		}
	}
	if !u.EmailVerified() {
		if u, err = users.VerifyEmail(ctx, id); err != nil {
			return nil, err
		}
	}
	return u, nil
}
