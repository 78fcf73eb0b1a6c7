package tutor

import (
	"context"
	"fmt"
	"log"

	"github.com/a1score/backend/internal/gamification"
	"github.com/a1score/backend/internal/models"
)

type Service struct {
	store *Store
	llm   LLMClient
	gam   *gamification.Service
}

func NewService(store *Store, llm LLMClient, gam *gamification.Service) *Service {
	return &Service{store: store, llm: llm, gam: gam}
}

// SendMessageResult is what one student question produces: the tutor's
// reply plus whatever the gamification engine awarded for asking.
type SendMessageResult struct {
	Student       *Message            `json:"student_message"`
	Tutor         *Message            `json:"tutor_message"`
	ExchangeCount int                 `json:"exchange_count"`
	Event         *models.EventResult `json:"event,omitempty"`
}

func (s *Service) StartSession(userID int64, subject string) (*Session, error) {
	if subject == "" {
		return nil, fmt.Errorf("subject is required")
	}
	return s.store.CreateSession(userID, subject)
}

// SendMessage appends the student's question, gets the tutor's reply,
// and feeds the gamification engine: every question earns points, and
// the session counts toward the streak once it reaches the exchange
// threshold.
func (s *Service) SendMessage(ctx context.Context, userID, sessionID int64, text string) (*SendMessageResult, error) {
	if text == "" {
		return nil, fmt.Errorf("message is required")
	}

	sess, err := s.store.GetSession(sessionID)
	if err != nil {
		return nil, err
	}
	if sess == nil || sess.UserID != userID {
		return nil, fmt.Errorf("session not found")
	}
	if sess.EndedAt != nil {
		return nil, fmt.Errorf("session has ended")
	}

	history, err := s.store.ListMessages(sessionID)
	if err != nil {
		return nil, err
	}
	turns := make([]Turn, 0, len(history))
	for _, m := range history {
		turns = append(turns, Turn{Sender: m.Sender, Content: m.Content})
	}

	studentMsg, err := s.store.AppendMessage(sessionID, SenderStudent, text)
	if err != nil {
		return nil, err
	}

	reply, err := s.llm.Reply(ctx, SystemPrompt(sess.Subject), turns, text)
	if err != nil {
		return nil, fmt.Errorf("tutor reply: %w", err)
	}

	tutorMsg, err := s.store.AppendMessage(sessionID, SenderTutor, reply.Content)
	if err != nil {
		return nil, err
	}

	count, err := s.store.IncrementExchangeCount(sessionID)
	if err != nil {
		return nil, err
	}

	result := &SendMessageResult{
		Student:       studentMsg,
		Tutor:         tutorMsg,
		ExchangeCount: count,
	}

	// Every question asked earns ledger points.
	event, err := s.gam.RecordEvent(userID, models.RecordEventRequest{
		ActivityType: models.ActivityQuestionAsked,
		Subject:      sess.Subject,
		Reason:       "Asked the tutor a question in " + sess.Subject,
	})
	if err != nil {
		log.Printf("[tutor] failed to record question event for user %d: %v", userID, err)
	} else {
		result.Event = event
	}

	// A session with enough back-and-forth counts as a streak day, once.
	if count >= gamification.TutorSessionStreakThreshold {
		credited, err := s.store.MarkCounted(sessionID)
		if err != nil {
			log.Printf("[tutor] failed to mark session %d counted: %v", sessionID, err)
		} else if credited {
			if err := s.gam.NoteTutorSession(userID); err != nil {
				log.Printf("[tutor] failed to credit session %d toward streak: %v", sessionID, err)
			}
		}
	}

	return result, nil
}

// Transcript returns the session plus its messages, owner-checked.
func (s *Service) Transcript(userID, sessionID int64) (*Session, []Message, error) {
	sess, err := s.store.GetSession(sessionID)
	if err != nil {
		return nil, nil, err
	}
	if sess == nil || sess.UserID != userID {
		return nil, nil, fmt.Errorf("session not found")
	}
	messages, err := s.store.ListMessages(sessionID)
	if err != nil {
		return nil, nil, err
	}
	return sess, messages, nil
}

func (s *Service) EndSession(userID, sessionID int64) error {
	return s.store.EndSession(sessionID, userID)
}
