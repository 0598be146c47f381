package main

import (
	"context"
	"errors"
	"log"

	"userhub/internal/auth"
	"userhub/internal/cache"
	"userhub/internal/config"
	"userhub/internal/db"
	"userhub/internal/handler"
	"userhub/internal/model"
	"userhub/internal/repository"
	"userhub/internal/service"

	apperrors "userhub/internal/errors"
)

func main() {
	log.Println("Starting seed script...")

	// Load configuration
	cfg := config.Load()

	// Connect to database
	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	// Run migrations to ensure schema is up to date
	if err := gormDB.AutoMigrate(&model.User{}, &model.Token{}); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	userRepo := repository.NewUserRepository(gormDB)
	tokenRepo := repository.NewTokenRepository(gormDB)
	hasher := auth.NewPasswordHasher()
	validator := service.NewUserValidator()
	userService := service.NewUserService(userRepo, tokenRepo, cacheClient, hasher, validator)

	ctx := context.Background()
	created, skipped := 0, 0
	for _, in := range handler.DemoUsers() {
		_, err := userService.Create(ctx, in)
		if err != nil {
			if errors.Is(err, apperrors.ErrEmailTaken) {
				log.Printf("Skipping existing user: %s", in.Email)
				skipped++
				continue
			}
			log.Fatalf("Failed to seed user %s: %v", in.Email, err)
		}
		created++
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - New users created: %d", created)
	log.Printf("  - Existing users skipped: %d", skipped)
}
