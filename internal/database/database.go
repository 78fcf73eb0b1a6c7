package database

import (
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"strings"
	"time"

	_ "github.com/lib/pq"
)

func Connect() (*sql.DB, error) {
	host := getEnv("DB_HOST", "localhost")
	port := getEnv("DB_PORT", "5432")
	user := getEnv("DB_USER", "a1score_user")
	password := getEnv("DB_PASSWORD", "a1score_password")
	dbname := getEnv("DB_NAME", "a1score")
	sslmode := getEnv("DB_SSLMODE", "disable")

	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		host, port, user, password, dbname, sslmode,
	)

	db, err := sql.Open("postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	db.SetMaxOpenConns(25)
	db.SetMaxIdleConns(5)

	return db, nil
}

func Migrate(db *sql.DB) error {
	query := `
	CREATE TABLE IF NOT EXISTS users (
		id BIGSERIAL PRIMARY KEY,
		email VARCHAR(255) UNIQUE NOT NULL,
		name VARCHAR(255) NOT NULL,
		username VARCHAR(50) UNIQUE,
		role VARCHAR(20) NOT NULL DEFAULT 'student',
		password VARCHAR(255) NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE INDEX IF NOT EXISTS idx_users_email ON users(email);

	CREATE TABLE IF NOT EXISTS point_transactions (
		id            BIGSERIAL PRIMARY KEY,
		user_id       BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		activity_type VARCHAR(50) NOT NULL,
		points        INT NOT NULL CHECK (points > 0),
		subject       VARCHAR(100),
		reason        VARCHAR(255) NOT NULL,
		earned_at     TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS streaks (
		user_id           BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		current_streak    INT NOT NULL DEFAULT 0,
		longest_streak    INT NOT NULL DEFAULT 0,
		weekly_pattern    BOOLEAN[] NOT NULL DEFAULT '{false,false,false,false,false,false,false}',
		last_active_date  DATE,
		repairs_available INT NOT NULL DEFAULT 0 CHECK (repairs_available >= 0),
		updated_at        TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS subject_levels (
		id                BIGSERIAL PRIMARY KEY,
		user_id           BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		subject           VARCHAR(100) NOT NULL,
		level_name        VARCHAR(20) NOT NULL DEFAULT 'beginner',
		concepts_mastered INT NOT NULL DEFAULT 0 CHECK (concepts_mastered >= 0),
		achieved_at       TIMESTAMP WITH TIME ZONE,
		updated_at        TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(user_id, subject)
	);

	CREATE TABLE IF NOT EXISTS achievements (
		id               BIGSERIAL PRIMARY KEY,
		user_id          BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		achievement_type VARCHAR(100) NOT NULL,
		earned_at        TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE(user_id, achievement_type)
	);

	CREATE TABLE IF NOT EXISTS leaderboard_prefs (
		user_id        BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		is_visible     BOOLEAN NOT NULL DEFAULT TRUE,
		anonymous_mode BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at     TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS user_stats (
		user_id               BIGINT PRIMARY KEY REFERENCES users(id) ON DELETE CASCADE,
		questions_asked_total INT NOT NULL DEFAULT 0,
		tests_completed_total INT NOT NULL DEFAULT 0,
		tutor_sessions_total  INT NOT NULL DEFAULT 0,
		updated_at            TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);

	CREATE TABLE IF NOT EXISTS tutor_sessions (
		id             BIGSERIAL PRIMARY KEY,
		user_id        BIGINT NOT NULL REFERENCES users(id) ON DELETE CASCADE,
		subject        VARCHAR(100) NOT NULL,
		exchange_count INT NOT NULL DEFAULT 0,
		counted        BOOLEAN NOT NULL DEFAULT FALSE,
		started_at     TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		ended_at       TIMESTAMP WITH TIME ZONE
	);

	CREATE TABLE IF NOT EXISTS tutor_messages (
		id         BIGSERIAL PRIMARY KEY,
		session_id BIGINT NOT NULL REFERENCES tutor_sessions(id) ON DELETE CASCADE,
		sender     VARCHAR(10) NOT NULL,
		content    TEXT NOT NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`

	_, err := db.Exec(query)
	if err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	// Idempotent column additions for databases created before these columns existed
	alterStatements := []string{
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS role VARCHAR(20) NOT NULL DEFAULT 'student'`,
		`ALTER TABLE users ADD COLUMN IF NOT EXISTS username VARCHAR(50) UNIQUE`,
		`ALTER TABLE streaks ADD COLUMN IF NOT EXISTS repairs_available INT NOT NULL DEFAULT 0`,
		`ALTER TABLE tutor_sessions ADD COLUMN IF NOT EXISTS counted BOOLEAN NOT NULL DEFAULT FALSE`,
	}
	for _, stmt := range alterStatements {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("alter table failed: %w", err)
		}
	}

	// Backfill usernames for existing users that don't have one
	var usersWithoutUsername int
	if err := db.QueryRow(`SELECT COUNT(*) FROM users WHERE username IS NULL`).Scan(&usersWithoutUsername); err == nil && usersWithoutUsername > 0 {
		rows, err := db.Query(`SELECT id, name FROM users WHERE username IS NULL`)
		if err == nil {
			defer rows.Close()
			for rows.Next() {
				var id int64
				var name string
				if rows.Scan(&id, &name) == nil {
					base := generateUsernameBase(name)
					for attempt := 0; attempt < 10; attempt++ {
						candidate := fmt.Sprintf("%s%04d", base, randomInt(10000))
						_, err := db.Exec(
							`UPDATE users SET username = $1 WHERE id = $2 AND username IS NULL`,
							candidate, id,
						)
						if err == nil {
							break
						}
					}
				}
			}
		}
	}

	db.Exec(`DO $$ BEGIN ALTER TABLE users ALTER COLUMN username SET NOT NULL; EXCEPTION WHEN others THEN NULL; END $$`)

	indexes := []string{
		`CREATE INDEX IF NOT EXISTS idx_users_username ON users(username)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_user ON point_transactions(user_id, earned_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_type ON point_transactions(user_id, activity_type)`,
		`CREATE INDEX IF NOT EXISTS idx_levels_user ON subject_levels(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_achievements_user ON achievements(user_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tutor_sessions_user ON tutor_sessions(user_id, started_at DESC)`,
		`CREATE INDEX IF NOT EXISTS idx_tutor_messages_session ON tutor_messages(session_id, created_at)`,
	}
	for _, stmt := range indexes {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("create index failed: %w", err)
		}
	}

	return nil
}

func getEnv(key, fallback string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return fallback
}

// generateUsernameBase creates a lowercase alphanumeric base from a user's name.
func generateUsernameBase(name string) string {
	var result []byte
	for _, c := range strings.ToLower(name) {
		if (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9') {
			result = append(result, byte(c))
		}
	}
	if len(result) == 0 {
		return "user"
	}
	if len(result) > 12 {
		result = result[:12]
	}
	return string(result)
}

// rng is a seeded random source for username generation.
var rng = rand.New(rand.NewSource(time.Now().UnixNano()))

// randomInt returns a random integer in [0, max).
func randomInt(max int) int {
	return rng.Intn(max)
}

// GenerateUsername creates a unique username from a name by appending random digits.
// It tries up to 10 times to find a unique one. Caller should handle the unique constraint.
func GenerateUsername(name string) string {
	base := generateUsernameBase(name)
	return fmt.Sprintf("%s%04d", base, randomInt(10000))
}
