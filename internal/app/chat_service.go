package app

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"go.uber.org/zap"

	"dudas-espanol/internal/ai"
	"dudas-espanol/internal/cache"
	"dudas-espanol/internal/model"
)

var (
	ErrInvalidInput = errors.New("invalid input")
	ErrMessageEmpty = errors.New("message content is empty")
	ErrMessageLong  = errors.New("message content is too long")
	ErrLLMConfig    = errors.New("llm config is invalid")
	ErrHistory      = errors.New("history store unavailable")
)

// MaxContentRunes caps a question for every entry point.
const MaxContentRunes = 4000

// Completer is the completion endpoint as the chat service sees it.
type Completer interface {
	Complete(ctx context.Context, messages []ai.ChatMessage) (string, error)
}

type ChatService struct {
	history      cache.HistoryStore
	llm          Completer
	systemPrompt string
	log          *zap.Logger
	now          func() time.Time
	locks        *sessionLocks
}

type AskInput struct {
	SessionID string
	Content   string
}

type AskResult struct {
	User      model.Turn `json:"user"`
	Assistant model.Turn `json:"assistant"`
}

// NewChatService wires the history store and the completion client. llm may be
// nil when no endpoint is configured; every Ask then fails with ErrLLMConfig.
func NewChatService(history cache.HistoryStore, llm Completer, systemPrompt string, log *zap.Logger) *ChatService {
	if strings.TrimSpace(systemPrompt) == "" {
		systemPrompt = DefaultSystemPrompt
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &ChatService{
		history:      history,
		llm:          llm,
		systemPrompt: systemPrompt,
		log:          log,
		now:          time.Now,
		locks:        newSessionLocks(),
	}
}

// Ask runs one exchange: the user turn is recorded first, then the endpoint is
// called and its answer recorded. A failed call leaves only the user turn.
func (s *ChatService) Ask(ctx context.Context, input AskInput) (*AskResult, error) {
	if strings.TrimSpace(input.SessionID) == "" {
		return nil, ErrInvalidInput
	}
	content := strings.TrimSpace(input.Content)
	if content == "" {
		return nil, ErrMessageEmpty
	}
	if utf8.RuneCountInString(content) > MaxContentRunes {
		return nil, ErrMessageLong
	}

	if s.llm == nil {
		return nil, ErrLLMConfig
	}

	unlock := s.locks.lock(input.SessionID)
	defer unlock()

	userTurn := model.Turn{
		Role:      model.RoleUser,
		Content:   content,
		CreatedAt: s.now(),
	}
	if err := s.history.Append(ctx, input.SessionID, userTurn); err != nil {
		return nil, fmt.Errorf("%w: append user turn: %v", ErrHistory, err)
	}

	started := s.now()
	answer, err := s.llm.Complete(ctx, buildPromptMessages(s.systemPrompt, content))
	if err != nil {
		s.log.Warn("completion failed",
			zap.String("session_id", input.SessionID),
			zap.Duration("elapsed", s.now().Sub(started)),
			zap.Error(err),
		)
		return nil, err
	}

	assistantTurn := model.Turn{
		Role:      model.RoleAssistant,
		Content:   strings.TrimSpace(answer),
		CreatedAt: s.now(),
	}
	if err := s.history.Append(ctx, input.SessionID, assistantTurn); err != nil {
		return nil, fmt.Errorf("%w: append assistant turn: %v", ErrHistory, err)
	}

	s.log.Info("exchange completed",
		zap.String("session_id", input.SessionID),
		zap.Int("question_len", len(content)),
		zap.Int("answer_len", len(assistantTurn.Content)),
		zap.Duration("elapsed", s.now().Sub(started)),
	)

	return &AskResult{User: userTurn, Assistant: assistantTurn}, nil
}

func (s *ChatService) History(ctx context.Context, sessionID string) ([]model.Turn, error) {
	if strings.TrimSpace(sessionID) == "" {
		return nil, ErrInvalidInput
	}
	turns, err := s.history.List(ctx, sessionID)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrHistory, err)
	}
	return turns, nil
}

// Reset ends the conversation for the session; the next Ask starts from empty.
func (s *ChatService) Reset(ctx context.Context, sessionID string) error {
	if strings.TrimSpace(sessionID) == "" {
		return ErrInvalidInput
	}
	unlock := s.locks.lock(sessionID)
	defer unlock()
	if err := s.history.Delete(ctx, sessionID); err != nil {
		return fmt.Errorf("%w: %v", ErrHistory, err)
	}
	return nil
}

func (s *ChatService) Configured() bool {
	return s.llm != nil
}

// sessionLocks serializes exchanges per session so turns stay paired.
type sessionLocks struct {
	mu    sync.Mutex
	locks map[string]*refMutex
}

type refMutex struct {
	sync.Mutex
	refs int
}

func newSessionLocks() *sessionLocks {
	return &sessionLocks{locks: make(map[string]*refMutex)}
}

func (l *sessionLocks) lock(key string) func() {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &refMutex{}
		l.locks[key] = m
	}
	m.refs++
	l.mu.Unlock()

	m.Lock()
	return func() {
		m.Unlock()
		l.mu.Lock()
		m.refs--
		if m.refs == 0 {
			delete(l.locks, key)
		}
		l.mu.Unlock()
	}
}
