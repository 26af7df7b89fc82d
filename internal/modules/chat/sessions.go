package chat

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

// maxTranscriptMessages bounds how much history a stored transcript keeps.
const maxTranscriptMessages = 100

var sessionIDPattern = regexp.MustCompile(`^[A-Za-z0-9_-]{1,64}$`)

// transcript is the on-disk shape of a stored session.
type transcript struct {
	SessionID string    `msgpack:"session_id"`
	UpdatedAt time.Time `msgpack:"updated_at"`
	Messages  []Message `msgpack:"messages"`
}

// SessionStore persists chat transcripts as msgpack files, one per
// session, under a directory.
type SessionStore struct {
	mu  sync.Mutex
	dir string
}

// NewSessionStore creates the session directory if needed.
func NewSessionStore(dir string) (*SessionStore, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create session directory: %w", err)
	}
	return &SessionStore{dir: dir}, nil
}

// Save writes the transcript for a session, keeping only the most
// recent messages.
func (s *SessionStore) Save(sessionID string, messages []Message) error {
	path, err := s.path(sessionID)
	if err != nil {
		return err
	}
	if len(messages) > maxTranscriptMessages {
		messages = messages[len(messages)-maxTranscriptMessages:]
	}

	data, err := msgpack.Marshal(transcript{
		SessionID: sessionID,
		UpdatedAt: time.Now().UTC(),
		Messages:  messages,
	})
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write transcript: %w", err)
	}
	return nil
}

// Load returns the stored messages for a session, or an empty slice
// when the session has no transcript yet.
func (s *SessionStore) Load(sessionID string) ([]Message, error) {
	path, err := s.path(sessionID)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return []Message{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read transcript: %w", err)
	}

	var t transcript
	if err := msgpack.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to decode transcript: %w", err)
	}
	return t.Messages, nil
}

func (s *SessionStore) path(sessionID string) (string, error) {
	if !sessionIDPattern.MatchString(sessionID) {
		return "", fmt.Errorf("invalid session id %q", sessionID)
	}
	return filepath.Join(s.dir, sessionID+".msgpack"), nil
}
