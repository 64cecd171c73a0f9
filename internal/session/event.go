package session

import (
	"github.com/google/uuid"
	"github.com/phrazzld/pinyin-picturebook/internal/domain"
)

// Event is an input to Reduce: a reader action or an effect completion.
type Event interface {
	eventName() string
}

// Reader actions.
type (
	// CreateStory starts generating a book from Text.
	CreateStory struct{ Text string }
	// OpenBook loads an archived book for reading.
	OpenBook struct{ Book *domain.Book }
	// Navigate moves Delta pages, clamped to the book.
	Navigate struct{ Delta int }
	// StartGame opens the quiz from the last page.
	StartGame struct{}
	// Answer selects an option for the current quiz item.
	Answer struct{ Option string }
	// PlayAgain restarts a finished quiz.
	PlayAgain struct{}
	// ExitGame returns from the quiz to reading.
	ExitGame struct{}
	// RegenerateImage requests a new illustration for Page.
	RegenerateImage struct{ Page int }
	// Reset returns to the input phase, discarding everything.
	Reset struct{}
)

// Effect completions.
type (
	// StoryGenerated delivers a successful generation.
	StoryGenerated struct {
		Token  uint64
		Story  domain.GeneratedStory
		BookID *uuid.UUID
	}
	// StoryFailed delivers a failed generation.
	StoryFailed struct {
		Token uint64
		Err   error
	}
	// IllustrationDone delivers a page image.
	IllustrationDone struct {
		Page      int
		Token     uint64
		ImageData string
	}
	// IllustrationFailed reports a page whose illustration failed.
	IllustrationFailed struct {
		Page  int
		Token uint64
		Err   error
	}
	// QuizAdvance fires after the answer feedback delay.
	QuizAdvance struct {
		Round     uint64
		QuizIndex int
	}
)

func (CreateStory) eventName() string        { return "create_story" }
func (OpenBook) eventName() string           { return "open_book" }
func (Navigate) eventName() string           { return "navigate" }
func (StartGame) eventName() string          { return "start_game" }
func (Answer) eventName() string             { return "answer" }
func (PlayAgain) eventName() string          { return "play_again" }
func (ExitGame) eventName() string           { return "exit_game" }
func (RegenerateImage) eventName() string    { return "regenerate_image" }
func (Reset) eventName() string              { return "reset" }
func (StoryGenerated) eventName() string     { return "story_generated" }
func (StoryFailed) eventName() string        { return "story_failed" }
func (IllustrationDone) eventName() string   { return "illustration_done" }
func (IllustrationFailed) eventName() string { return "illustration_failed" }
func (QuizAdvance) eventName() string        { return "quiz_advance" }

// Effect is work Reduce asks the controller to perform.
type Effect interface {
	effectName() string
}

type (
	// GenerateStoryEffect runs the story generator for Text.
	GenerateStoryEffect struct {
		Token uint64
		Text  string
	}
	// IllustrateEffect runs the illustrator for one page.
	IllustrateEffect struct {
		Page   int
		Token  uint64
		Prompt string
	}
	// ScheduleAdvanceEffect fires QuizAdvance after the feedback delay.
	ScheduleAdvanceEffect struct {
		Round     uint64
		QuizIndex int
	}
	// PersistImageEffect saves a page image to the archived book. Token is
	// the illustration token; a lower token never overwrites a higher one.
	PersistImageEffect struct {
		BookID    uuid.UUID
		Page      int
		Token     uint64
		ImageData string
	}
)

func (GenerateStoryEffect) effectName() string   { return "generate_story" }
func (IllustrateEffect) effectName() string      { return "illustrate" }
func (ScheduleAdvanceEffect) effectName() string { return "schedule_advance" }
func (PersistImageEffect) effectName() string    { return "persist_image" }
