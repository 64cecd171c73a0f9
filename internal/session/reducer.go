package session

import (
	"fmt"
	"slices"
	"strings"

	"github.com/phrazzld/pinyin-picturebook/internal/domain"
	"github.com/phrazzld/pinyin-picturebook/internal/generation"
)

// Reduce applies ev to s and returns the next state and the effects to run.
// It never mutates s. Events that are not allowed in the current phase
// return ErrInvalidTransition with s unchanged. Stale completions and
// repeated answers are ignored: s is returned as is with no effects.
func Reduce(s State, ev Event) (State, []Effect, error) {
	switch ev := ev.(type) {
	case CreateStory:
		return createStory(s, ev)
	case OpenBook:
		return openBook(s, ev)
	case Navigate:
		return navigate(s, ev)
	case StartGame:
		return startGame(s)
	case Answer:
		return answer(s, ev)
	case PlayAgain:
		return playAgain(s)
	case ExitGame:
		return exitGame(s)
	case RegenerateImage:
		return regenerateImage(s, ev)
	case Reset:
		return reset(s), nil, nil
	case StoryGenerated:
		return storyGenerated(s, ev)
	case StoryFailed:
		return storyFailed(s, ev)
	case IllustrationDone:
		return illustrationDone(s, ev)
	case IllustrationFailed:
		return illustrationFailed(s, ev)
	case QuizAdvance:
		return quizAdvance(s, ev)
	default:
		return s, nil, fmt.Errorf("%w: unsupported event %T", ErrInvalidTransition, ev)
	}
}

func invalid(s State, ev Event) (State, []Effect, error) {
	return s, nil, fmt.Errorf("%w: %s in phase %s", ErrInvalidTransition, ev.eventName(), s.Phase)
}

func changed(s State) State {
	s.rev++
	return s
}

func createStory(s State, ev CreateStory) (State, []Effect, error) {
	if s.Phase != PhaseInput {
		return invalid(s, ev)
	}
	text := strings.TrimSpace(ev.Text)
	if text == "" {
		return s, nil, domain.ErrEmptyText
	}

	next := changed(s)
	next.Phase = PhaseProcessing
	next.InputText = ev.Text
	next.ErrorMessage = ""
	next.ErrorKind = ""
	next.storyToken = next.issueToken()
	return next, []Effect{GenerateStoryEffect{Token: next.storyToken, Text: text}}, nil
}

func storyGenerated(s State, ev StoryGenerated) (State, []Effect, error) {
	if s.Phase != PhaseProcessing || ev.Token != s.storyToken {
		return s, nil, nil
	}

	next := changed(s)
	next.Phase = PhaseReading
	next.Story = domain.NewStoryData(ev.Story)
	next.BookID = ev.BookID
	next.CurrentPage = 0
	next.pageTokens = make([]uint64, next.Story.PageCount())
	return prefetch(next)
}

func storyFailed(s State, ev StoryFailed) (State, []Effect, error) {
	if s.Phase != PhaseProcessing || ev.Token != s.storyToken {
		return s, nil, nil
	}

	next := changed(s)
	next.Phase = PhaseError
	next.ErrorMessage = UserMessage(ev.Err)
	next.ErrorKind = generation.KindOf(ev.Err)
	return next, nil, nil
}

func openBook(s State, ev OpenBook) (State, []Effect, error) {
	if s.Phase != PhaseInput || ev.Book == nil {
		return invalid(s, ev)
	}

	next := changed(s)
	next.Phase = PhaseReading
	next.InputText = ev.Book.SourceText
	next.Story = ev.Book.StoryData()
	id := ev.Book.ID
	next.BookID = &id
	next.CurrentPage = 0
	next.pageTokens = make([]uint64, next.Story.PageCount())
	return prefetch(next)
}

func navigate(s State, ev Navigate) (State, []Effect, error) {
	if s.Phase != PhaseReading {
		return invalid(s, ev)
	}

	// Bounding delta first keeps the sum from overflowing.
	n := s.Story.PageCount()
	delta := min(max(ev.Delta, -n), n)
	target := min(max(s.CurrentPage+delta, 0), n-1)
	if target == s.CurrentPage {
		return s, nil, nil
	}

	next := changed(s)
	next.CurrentPage = target
	return prefetch(next)
}

// prefetch starts illustrations for the current page and the one after it
// when they have no image, none in flight, and no recorded failure.
func prefetch(s State) (State, []Effect, error) {
	if s.Phase != PhaseReading {
		return s, nil, nil
	}

	var effects []Effect
	for _, i := range []int{s.CurrentPage, s.CurrentPage + 1} {
		if !s.Story.HasPage(i) {
			continue
		}
		p := s.Story.Pages[i]
		if p.HasImage() || p.IsGeneratingImage || p.ImageFailed {
			continue
		}
		var eff Effect
		s, eff = beginIllustration(s, i)
		effects = append(effects, eff)
	}
	return s, effects, nil
}

func beginIllustration(s State, i int) (State, Effect) {
	tok := s.issuePageToken(i)
	s.Story = s.Story.WithPage(i, func(p domain.StoryPage) domain.StoryPage {
		p.ImageData = ""
		p.IsGeneratingImage = true
		p.ImageFailed = false
		return p
	})
	return s, IllustrateEffect{Page: i, Token: tok, Prompt: s.Story.Pages[i].ImagePrompt}
}

func regenerateImage(s State, ev RegenerateImage) (State, []Effect, error) {
	if s.Story == nil || (s.Phase != PhaseReading && s.Phase != PhaseGame) {
		return invalid(s, ev)
	}
	if !s.Story.HasPage(ev.Page) {
		return s, nil, fmt.Errorf("%w: %d", domain.ErrPageOutOfRange, ev.Page)
	}

	next, eff := beginIllustration(changed(s), ev.Page)
	return next, []Effect{eff}, nil
}

func illustrationDone(s State, ev IllustrationDone) (State, []Effect, error) {
	if s.Story == nil || !s.pageTokenMatches(ev.Page, ev.Token) || !s.Story.Pages[ev.Page].IsGeneratingImage {
		return s, nil, nil
	}

	next := changed(s)
	next.Story = next.Story.WithPage(ev.Page, func(p domain.StoryPage) domain.StoryPage {
		p.ImageData = ev.ImageData
		p.IsGeneratingImage = false
		p.ImageFailed = false
		return p
	})

	var effects []Effect
	if next.BookID != nil {
		effects = append(effects, PersistImageEffect{BookID: *next.BookID, Page: ev.Page, Token: ev.Token, ImageData: ev.ImageData})
	}
	return next, effects, nil
}

func illustrationFailed(s State, ev IllustrationFailed) (State, []Effect, error) {
	if s.Story == nil || !s.pageTokenMatches(ev.Page, ev.Token) || !s.Story.Pages[ev.Page].IsGeneratingImage {
		return s, nil, nil
	}

	next := changed(s)
	next.Story = next.Story.WithPage(ev.Page, func(p domain.StoryPage) domain.StoryPage {
		p.IsGeneratingImage = false
		p.ImageFailed = true
		return p
	})
	return next, nil, nil
}

func newGame(round uint64) GameState {
	return GameState{Status: GameInProgress, Round: round + 1}
}

func startGame(s State) (State, []Effect, error) {
	if s.Phase != PhaseReading || s.CurrentPage != s.Story.PageCount()-1 || len(s.Story.Quiz) == 0 {
		return invalid(s, StartGame{})
	}

	next := changed(s)
	next.Phase = PhaseGame
	next.Game = newGame(s.Game.Round)
	return next, nil, nil
}

func answer(s State, ev Answer) (State, []Effect, error) {
	if s.Phase != PhaseGame || s.Game.Finished() {
		return invalid(s, ev)
	}
	if s.Game.SelectedOption != nil {
		return s, nil, nil
	}

	item := s.Story.Quiz[s.Game.QuizIndex]
	if !slices.Contains(item.Options, ev.Option) {
		return s, nil, fmt.Errorf("%w: %q", ErrUnknownOption, ev.Option)
	}

	next := changed(s)
	option := ev.Option
	correct := option == item.CorrectAnswer
	next.Game.SelectedOption = &option
	next.Game.IsAnswerCorrect = &correct
	next.Game.Answered++
	if correct {
		next.Game.Score++
	}
	return next, []Effect{ScheduleAdvanceEffect{Round: next.Game.Round, QuizIndex: next.Game.QuizIndex}}, nil
}

func quizAdvance(s State, ev QuizAdvance) (State, []Effect, error) {
	g := s.Game
	if s.Phase != PhaseGame || g.Finished() || g.Round != ev.Round || g.QuizIndex != ev.QuizIndex || g.SelectedOption == nil {
		return s, nil, nil
	}

	next := changed(s)
	next.Game.QuizIndex++
	next.Game.SelectedOption = nil
	next.Game.IsAnswerCorrect = nil
	if next.Game.QuizIndex >= len(s.Story.Quiz) {
		next.Game.QuizIndex = len(s.Story.Quiz)
		next.Game.Status = GameFinished
	}
	return next, nil, nil
}

func playAgain(s State) (State, []Effect, error) {
	if s.Phase != PhaseGame || !s.Game.Finished() {
		return invalid(s, PlayAgain{})
	}

	next := changed(s)
	next.Game = newGame(s.Game.Round)
	return next, nil, nil
}

func exitGame(s State) (State, []Effect, error) {
	if s.Phase != PhaseGame {
		return invalid(s, ExitGame{})
	}

	next := changed(s)
	next.Phase = PhaseReading
	next.Game = GameState{Round: s.Game.Round}
	return prefetch(next)
}

// reset returns to the input phase. Token counters survive so completions
// of requests issued before the reset can never match a later request.
func reset(s State) State {
	next := NewState()
	next.rev = s.rev + 1
	next.lastToken = s.lastToken
	next.Game.Round = s.Game.Round
	return next
}
