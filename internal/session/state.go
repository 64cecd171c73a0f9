package session

import (
	"slices"

	"github.com/google/uuid"
	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"github.com/phrazzld/pinyin-picturebook/internal/generation"
)

// Phase is the top-level session state.
type Phase string

// Session phases.
const (
	PhaseInput      Phase = "input"
	PhaseProcessing Phase = "processing"
	PhaseReading    Phase = "reading"
	PhaseGame       Phase = "game"
	PhaseError      Phase = "error"
)

// GameStatus distinguishes a running quiz from its results view.
type GameStatus string

// Game statuses.
const (
	GameInProgress GameStatus = "in_progress"
	GameFinished   GameStatus = "finished"
)

// GameState is the quiz sub-state. When Status is GameFinished, QuizIndex
// equals the number of quiz items.
type GameState struct {
	Status          GameStatus `json:"status,omitempty"`
	QuizIndex       int        `json:"quizIndex"`
	SelectedOption  *string    `json:"selectedOption,omitempty"`
	IsAnswerCorrect *bool      `json:"isAnswerCorrect,omitempty"`
	Score           int        `json:"score"`
	Answered        int        `json:"answered"`

	// Round increases with every game started so a pending advance from an
	// earlier round never applies to a new one.
	Round uint64 `json:"-"`
}

// Finished reports whether the results view is showing.
func (g GameState) Finished() bool {
	return g.Status == GameFinished
}

// State is one session's complete state. The zero value is not valid; use
// NewState.
type State struct {
	Phase        Phase             `json:"phase"`
	InputText    string            `json:"inputText"`
	Story        *domain.StoryData `json:"storyData"`
	BookID       *uuid.UUID        `json:"bookId,omitempty"`
	CurrentPage  int               `json:"currentPageIndex"`
	ErrorMessage string            `json:"errorMessage,omitempty"`
	ErrorKind    generation.Kind   `json:"errorKind,omitempty"`
	Game         GameState         `json:"game"`

	// rev increases with every applied change.
	rev uint64
	// lastToken is the most recently issued request token. Tokens are
	// never reused within a session, including across resets.
	lastToken  uint64
	storyToken uint64
	pageTokens []uint64
}

// NewState returns the initial input state.
func NewState() State {
	return State{Phase: PhaseInput}
}

// Revision returns the number of changes applied so far.
func (s State) Revision() uint64 {
	return s.rev
}

func (s *State) issueToken() uint64 {
	s.lastToken++
	return s.lastToken
}

// issuePageToken issues a token for page i and records it as the page's
// latest request.
func (s *State) issuePageToken(i int) uint64 {
	tok := s.issueToken()
	s.pageTokens = slices.Clone(s.pageTokens)
	s.pageTokens[i] = tok
	return tok
}

func (s State) pageTokenMatches(i int, tok uint64) bool {
	return i >= 0 && i < len(s.pageTokens) && s.pageTokens[i] == tok
}

// Snapshot is the read-only view of a session served to clients.
type Snapshot struct {
	SessionID uuid.UUID `json:"sessionId"`
	Version   uint64    `json:"version"`
	State
}
