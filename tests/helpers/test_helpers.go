package helpers

import (
	"context"
	"fmt"
	"os"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// SetupTestDB connects to the database named by DATABASE_URL (or
// TEST_DATABASE_URL) and creates a throwaway schema so tests never
// touch real data. The returned cleanup drops the schema.
func SetupTestDB(t *testing.T) (*pgxpool.Pool, func()) {
	t.Helper()

	dbURL := os.Getenv("TEST_DATABASE_URL")
	if dbURL == "" {
		dbURL = os.Getenv("DATABASE_URL")
	}
	if dbURL == "" {
		t.Skip("TEST_DATABASE_URL or DATABASE_URL not set")
	}

	ctx := context.Background()
	schema := fmt.Sprintf("test_%d", time.Now().UnixNano())

	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		t.Fatalf("parse config: %v", err)
	}
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		_, err := conn.Exec(ctx, fmt.Sprintf("SET search_path TO %s", schema))
		return err
	}

	pool, err := pgxpool.NewWithConfig(ctx, config)
	if err != nil {
		t.Fatalf("connect: %v", err)
	}

	if _, err := pool.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema)); err != nil {
		pool.Close()
		t.Fatalf("create schema: %v", err)
	}
	if err := createTestTables(ctx, pool); err != nil {
		pool.Close()
		t.Fatalf("create tables: %v", err)
	}

	return pool, func() {
		_, _ = pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA %s CASCADE", schema))
		pool.Close()
	}
}

func createTestTables(ctx context.Context, pool *pgxpool.Pool) error {
	queries := []string{
		`CREATE TABLE users (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), email text UNIQUE NOT NULL, full_name text NOT NULL DEFAULT '', role text NOT NULL DEFAULT 'member', created_at timestamptz DEFAULT now(), updated_at timestamptz DEFAULT now())`,
		`CREATE TABLE projects (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), name text NOT NULL, description text, status text NOT NULL DEFAULT 'Planned', start_date date, end_date date, budget numeric(14,2) NOT NULL DEFAULT 0, project_manager_id uuid, created_at timestamptz DEFAULT now(), updated_at timestamptz DEFAULT now())`,
		`CREATE TABLE project_members (project_id uuid NOT NULL, user_id uuid NOT NULL, added_at timestamptz DEFAULT now(), PRIMARY KEY (project_id, user_id))`,
		`CREATE TABLE tasks (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), project_id uuid NOT NULL, title text NOT NULL, description text, assigned_to uuid, status text NOT NULL DEFAULT 'New', priority text NOT NULL DEFAULT 'Medium', due_date date, estimated_hours numeric(6,2), created_by uuid, created_at timestamptz DEFAULT now(), updated_at timestamptz DEFAULT now())`,
		`CREATE TABLE timesheets (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), task_id uuid NOT NULL, user_id uuid NOT NULL, hours_worked numeric(6,2) NOT NULL, work_date date NOT NULL DEFAULT CURRENT_DATE, description text, is_billable boolean NOT NULL DEFAULT true, created_at timestamptz DEFAULT now())`,
		`CREATE TABLE customer_invoices (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), invoice_number text UNIQUE NOT NULL, project_id uuid, customer_name text NOT NULL, total_amount numeric(14,2) NOT NULL, status text NOT NULL DEFAULT 'Draft', invoice_date date NOT NULL DEFAULT CURRENT_DATE, due_date date, created_by uuid, created_at timestamptz DEFAULT now())`,
		`CREATE TABLE vendor_bills (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), bill_number text UNIQUE NOT NULL, project_id uuid, vendor_name text NOT NULL, total_amount numeric(14,2) NOT NULL, status text NOT NULL DEFAULT 'Draft', bill_date date NOT NULL DEFAULT CURRENT_DATE, due_date date, created_by uuid, created_at timestamptz DEFAULT now())`,
		`CREATE TABLE expenses (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), project_id uuid, user_id uuid NOT NULL, amount numeric(14,2) NOT NULL, category text, description text NOT NULL, status text NOT NULL DEFAULT 'Pending', approved_by uuid, expense_date date NOT NULL DEFAULT CURRENT_DATE, created_at timestamptz DEFAULT now())`,
		`CREATE TABLE user_stats (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), user_id uuid UNIQUE NOT NULL, total_points int NOT NULL DEFAULT 0, level int NOT NULL DEFAULT 1, streak_days int NOT NULL DEFAULT 0, last_activity_date date, tasks_completed int NOT NULL DEFAULT 0, hours_logged numeric(10,2) NOT NULL DEFAULT 0, created_at timestamptz DEFAULT now(), updated_at timestamptz DEFAULT now())`,
		`CREATE TABLE achievements (id uuid PRIMARY KEY DEFAULT gen_random_uuid(), user_id uuid NOT NULL, badge_type text NOT NULL, badge_name text NOT NULL, badge_description text, points int NOT NULL DEFAULT 0, earned_at timestamptz DEFAULT now(), UNIQUE (user_id, badge_type))`,
	}
	for _, query := range queries {
		if _, err := pool.Exec(ctx, query); err != nil {
			return err
		}
	}
	return nil
}

// CreateTestUser inserts a user row and returns its id
func CreateTestUser(t *testing.T, pool *pgxpool.Pool, email string) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := pool.QueryRow(context.Background(),
		`INSERT INTO users (email, full_name) VALUES ($1, 'Test User') RETURNING id`, email).Scan(&id)
	if err != nil {
		t.Fatalf("create user: %v", err)
	}
	return id
}

// CreateTestProject inserts a project row and returns its id
func CreateTestProject(t *testing.T, pool *pgxpool.Pool, name string, budget float64) uuid.UUID {
	t.Helper()

	var id uuid.UUID
	err := pool.QueryRow(context.Background(),
		`INSERT INTO projects (name, budget) VALUES ($1, $2) RETURNING id`, name, budget).Scan(&id)
	if err != nil {
		t.Fatalf("create project: %v", err)
	}
	return id
}

// GenerateTestJWT signs a token for the given user the way the auth
// middleware expects. Sets JWT_SECRET if the environment has none.
func GenerateTestJWT(userID string) (string, error) {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		secret = "test-secret-key-for-testing-only"
		os.Setenv("JWT_SECRET", secret)
	}

	claims := jwt.MapClaims{
		"sub": userID,
		"iat": time.Now().Unix(),
		"exp": time.Now().Add(24 * time.Hour).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	tokenString, err := token.SignedString([]byte(secret))
	if err != nil {
		return "", fmt.Errorf("failed to sign token: %w", err)
	}

	return tokenString, nil
}
