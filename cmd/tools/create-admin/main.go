// cmd/tools/create-admin/main.go
// Bootstraps an administrator account directly in the database, for
// fresh deployments where no admin exists to promote anyone else.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"membership-backend/internal/common/auth"
	"membership-backend/internal/common/config"
	"membership-backend/internal/common/database"
)

func main() {
	email := flag.String("email", "", "Admin email address")
	password := flag.String("password", "", "Admin password (min 8 characters)")
	flag.Parse()

	normalized := strings.ToLower(strings.TrimSpace(*email))
	if normalized == "" || !strings.Contains(normalized, "@") {
		fmt.Println("Error: a valid -email is required.")
		flag.Usage()
		os.Exit(1)
	}
	if len(*password) < 8 {
		fmt.Println("Error: -password must be at least 8 characters.")
		flag.Usage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Error: config load failed: %v\n", err)
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pg, err := database.NewPostgres(cfg.Database.Postgres)
	if err != nil {
		fmt.Printf("Error: postgres connection failed: %v\n", err)
		os.Exit(1)
	}
	defer pg.Close()

	if err := database.Migrate(ctx, pg); err != nil {
		fmt.Printf("Error: schema migration failed: %v\n", err)
		os.Exit(1)
	}

	hash, err := auth.HashPassword(*password)
	if err != nil {
		fmt.Printf("Error: password hashing failed: %v\n", err)
		os.Exit(1)
	}

	// Re-running with the same email resets the password and restores
	// the admin flags rather than failing.
	_, err = pg.DB.ExecContext(ctx, `
		INSERT INTO users (id, email, password_hash, is_admin, is_verified)
		VALUES ($1, $2, $3, TRUE, TRUE)
		ON CONFLICT (email) DO UPDATE
		SET password_hash = EXCLUDED.password_hash,
		    is_admin = TRUE,
		    is_verified = TRUE,
		    updated_at = NOW()`,
		uuid.NewString(), normalized, hash)
	if err != nil {
		fmt.Printf("Error: admin upsert failed: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Admin account ready: %s\n", normalized)
}
