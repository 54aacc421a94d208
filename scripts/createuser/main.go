// Command createuser inserts or updates the planner account. The API has no
// signup endpoint, so the first account is provisioned from the shell:
//
//	go run ./scripts/createuser -email teacher@example.com -name "Derya Oz" -password secret
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/derslik/derslik-api/pkg/config"
	"github.com/derslik/derslik-api/pkg/database"
)

func main() {
	email := flag.String("email", "", "account email")
	name := flag.String("name", "", "full name")
	password := flag.String("password", "", "password")
	flag.Parse()

	if *email == "" || *name == "" || *password == "" {
		flag.Usage()
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	db, err := database.NewPostgres(cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to postgres: %v", err)
	}
	defer db.Close()

	hash, err := bcrypt.GenerateFromPassword([]byte(*password), bcrypt.DefaultCost)
	if err != nil {
		log.Fatalf("failed to hash password: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	const query = `INSERT INTO users (id, email, password_hash, full_name, active, created_at, updated_at)
VALUES ($1, $2, $3, $4, TRUE, $5, $5)
ON CONFLICT (email) DO UPDATE SET password_hash = EXCLUDED.password_hash,
    full_name = EXCLUDED.full_name,
    active = TRUE,
    updated_at = EXCLUDED.updated_at`

	if _, err := db.ExecContext(ctx, query, uuid.NewString(), *email, string(hash), *name, time.Now().UTC()); err != nil {
		log.Fatalf("failed to upsert user: %v", err)
	}

	fmt.Printf("account %s is ready\n", *email)
}
