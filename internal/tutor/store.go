package tutor

import (
	"database/sql"
	"fmt"
	"time"
)

const (
	SenderStudent = "student"
	SenderTutor   = "tutor"
)

// Session is one tutoring conversation. ExchangeCount counts completed
// student-question/tutor-reply pairs; Counted records whether the
// session has already been credited as a qualifying streak activity.
type Session struct {
	ID            int64      `json:"id"`
	UserID        int64      `json:"user_id"`
	Subject       string     `json:"subject"`
	ExchangeCount int        `json:"exchange_count"`
	Counted       bool       `json:"counted"`
	StartedAt     time.Time  `json:"started_at"`
	EndedAt       *time.Time `json:"ended_at,omitempty"`
}

// Message is one line of a session transcript.
type Message struct {
	ID        int64     `json:"id"`
	SessionID int64     `json:"session_id"`
	Sender    string    `json:"sender"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
}

type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

func (s *Store) CreateSession(userID int64, subject string) (*Session, error) {
	var sess Session
	err := s.db.QueryRow(
		`INSERT INTO tutor_sessions (user_id, subject) VALUES ($1, $2)
		 RETURNING id, user_id, subject, exchange_count, counted, started_at`,
		userID, subject,
	).Scan(&sess.ID, &sess.UserID, &sess.Subject, &sess.ExchangeCount, &sess.Counted, &sess.StartedAt)
	if err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	return &sess, nil
}

func (s *Store) GetSession(sessionID int64) (*Session, error) {
	var sess Session
	err := s.db.QueryRow(
		`SELECT id, user_id, subject, exchange_count, counted, started_at, ended_at
		 FROM tutor_sessions WHERE id = $1`,
		sessionID,
	).Scan(&sess.ID, &sess.UserID, &sess.Subject, &sess.ExchangeCount, &sess.Counted, &sess.StartedAt, &sess.EndedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session: %w", err)
	}
	return &sess, nil
}

func (s *Store) AppendMessage(sessionID int64, sender, content string) (*Message, error) {
	var m Message
	err := s.db.QueryRow(
		`INSERT INTO tutor_messages (session_id, sender, content) VALUES ($1, $2, $3)
		 RETURNING id, session_id, sender, content, created_at`,
		sessionID, sender, content,
	).Scan(&m.ID, &m.SessionID, &m.Sender, &m.Content, &m.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("append message: %w", err)
	}
	return &m, nil
}

func (s *Store) ListMessages(sessionID int64) ([]Message, error) {
	rows, err := s.db.Query(
		`SELECT id, session_id, sender, content, created_at
		 FROM tutor_messages WHERE session_id = $1 ORDER BY created_at, id`,
		sessionID,
	)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []Message
	for rows.Next() {
		var m Message
		if err := rows.Scan(&m.ID, &m.SessionID, &m.Sender, &m.Content, &m.CreatedAt); err != nil {
			return nil, err
		}
		messages = append(messages, m)
	}
	if messages == nil {
		messages = []Message{}
	}
	return messages, rows.Err()
}

// IncrementExchangeCount bumps the completed-exchange counter and
// returns the new count.
func (s *Store) IncrementExchangeCount(sessionID int64) (int, error) {
	var count int
	err := s.db.QueryRow(
		`UPDATE tutor_sessions SET exchange_count = exchange_count + 1
		 WHERE id = $1 RETURNING exchange_count`,
		sessionID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("increment exchanges: %w", err)
	}
	return count, nil
}

// MarkCounted flips the counted flag, guarded so only one caller wins
// and a session is credited toward the streak at most once.
func (s *Store) MarkCounted(sessionID int64) (bool, error) {
	result, err := s.db.Exec(
		`UPDATE tutor_sessions SET counted = TRUE WHERE id = $1 AND counted = FALSE`,
		sessionID,
	)
	if err != nil {
		return false, fmt.Errorf("mark counted: %w", err)
	}
	rows, _ := result.RowsAffected()
	return rows > 0, nil
}

func (s *Store) EndSession(sessionID, userID int64) error {
	result, err := s.db.Exec(
		`UPDATE tutor_sessions SET ended_at = NOW()
		 WHERE id = $1 AND user_id = $2 AND ended_at IS NULL`,
		sessionID, userID,
	)
	if err != nil {
		return err
	}
	rows, _ := result.RowsAffected()
	if rows == 0 {
		return fmt.Errorf("session not found or already ended")
	}
	return nil
}
