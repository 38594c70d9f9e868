package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"syscall"

	"github.com/saralgov/licence-backend/internal/config"
	"github.com/saralgov/licence-backend/internal/database"
	"github.com/saralgov/licence-backend/internal/logger"
	"github.com/saralgov/licence-backend/internal/model"
	"github.com/saralgov/licence-backend/internal/repository"
	"github.com/saralgov/licence-backend/internal/service"
	"golang.org/x/term"
)

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)

	ctx := context.Background()

	// ─── Connect to PostgreSQL ─────────────────────────────────────────
	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// ─── Initialize Service ────────────────────────────────────────────
	adminRepo := repository.NewAdminRepository(pool)
	authService := service.NewAuthService(cfg, nil)
	adminService := service.NewAdminService(adminRepo, authService)

	// ─── CLI Input ─────────────────────────────────────────────────────
	reader := bufio.NewReader(os.Stdin)

	fmt.Println("=== Create New Admin User ===")

	// Name
	fmt.Print("Enter Name: ")
	name, _ := reader.ReadString('\n')
	name = strings.TrimSpace(name)
	if name == "" {
		fmt.Println("Error: Name is required")
		return
	}

	// Email
	fmt.Print("Enter Email: ")
	email, _ := reader.ReadString('\n')
	email = strings.TrimSpace(email)
	if email == "" {
		fmt.Println("Error: Email is required")
		return
	}

	// Password
	fmt.Print("Enter Password: ")
	bytePassword, err := term.ReadPassword(int(syscall.Stdin))
	if err != nil {
		fmt.Println("\nError reading password")
		return
	}
	password := string(bytePassword)
	fmt.Println() // Newline after password input
	if len(password) < 8 {
		fmt.Println("Error: Password must be at least 8 characters")
		return
	}

	// Permissions
	fmt.Printf("Enter permissions, comma-separated (empty for all: %s): ",
		strings.Join(model.AllPermissions(), ","))
	permsStr, _ := reader.ReadString('\n')
	permsStr = strings.TrimSpace(permsStr)

	permissions := model.AllPermissions()
	if permsStr != "" {
		permissions = permissions[:0]
		known := make(map[string]bool)
		for _, p := range model.AllPermissions() {
			known[p] = true
		}
		for _, p := range strings.Split(permsStr, ",") {
			p = strings.TrimSpace(p)
			if !known[p] {
				fmt.Printf("Error: unknown permission %q\n", p)
				return
			}
			permissions = append(permissions, p)
		}
	}

	// ─── Logic ─────────────────────────────────────────────────────────
	admin, err := adminService.Create(ctx, email, name, password, permissions)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to create admin")
	}

	fmt.Printf("\nSuccess! Admin '%s' (%s) created with ID: %s\n", admin.Name, admin.Email, admin.ID)
}
