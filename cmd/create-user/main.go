package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/schooldb-api/internal/models"
	"github.com/noah-isme/schooldb-api/internal/repository"
	"github.com/noah-isme/schooldb-api/internal/service"
	"github.com/noah-isme/schooldb-api/pkg/config"
	"github.com/noah-isme/schooldb-api/pkg/database"
	"github.com/noah-isme/schooldb-api/pkg/logger"
)

func main() {
	username := flag.String("username", "", "login name (admission number for STUDENT accounts)")
	fullName := flag.String("name", "", "display name")
	role := flag.String("role", string(models.RoleAdmin), "ADMIN, TEACHER, LIBRARIAN or STUDENT")
	password := flag.String("password", os.Getenv("CREATE_USER_PASSWORD"), "password, at least 8 characters (or CREATE_USER_PASSWORD)")
	migrate := flag.Bool("migrate", false, "apply the schema before creating the user")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	db, err := database.NewPostgres(context.Background(), cfg.Database, logr)
	if err != nil {
		logr.Fatal("database unavailable", zap.Error(err))
	}
	defer db.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if *migrate {
		if err := database.Migrate(ctx, db, logr); err != nil {
			logr.Fatal("migration failed", zap.Error(err))
		}
	}

	users := service.NewUserService(repository.NewUserRepository(db), repository.NewStudentRepository(db), service.NewValidator(), logr)
	user, err := users.Create(ctx, service.CreateUserRequest{
		Username: *username,
		FullName: *fullName,
		Role:     *role,
		Password: *password,
	}, "")
	if err != nil {
		fmt.Fprintf(os.Stderr, "create user: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("created %s account %q (%s)\n", user.Role, user.Username, user.ID)
}
