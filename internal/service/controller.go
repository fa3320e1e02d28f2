package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/aliskhannn/lingo-spark-bot/internal/domain/entities"
)

// DefaultFailureFlash is how long a wrong puzzle answer stays marked.
const DefaultFailureFlash = 500 * time.Millisecond

// Controller drives the lesson session of every user. Calls return as soon
// as the session has changed; slow work (generation, roleplay, hints,
// speech) runs in the background and reports back through the SessionView.
// A background result is applied only while the session epoch it started
// with is still current.
type Controller struct {
	sessions SessionStore
	lessons  LessonGenerator
	finder   LessonFinder
	gateway  LessonGateway
	speaker  Speaker
	metrics  Metrics
	view     SessionView
	logger   *zap.Logger

	rngMu sync.Mutex
	rng   *rand.Rand

	flash     time.Duration
	afterFunc func(d time.Duration, f func())
	wg        sync.WaitGroup
}

// NewController creates a controller. speaker may be nil when speech is disabled.
func NewController(
	sessions SessionStore,
	lessons LessonGenerator,
	finder LessonFinder,
	gateway LessonGateway,
	speaker Speaker,
	metrics Metrics,
	logger *zap.Logger,
) *Controller {
	if metrics == nil {
		metrics = nopMetrics{}
	}
	return &Controller{
		sessions:  sessions,
		lessons:   lessons,
		finder:    finder,
		gateway:   gateway,
		speaker:   speaker,
		metrics:   metrics,
		logger:    logger.Named("controller"),
		rng:       rand.New(rand.NewSource(time.Now().UnixNano())),
		flash:     DefaultFailureFlash,
		afterFunc: func(d time.Duration, f func()) { time.AfterFunc(d, f) },
	}
}

// SetView sets the view (called after handler is created).
func (c *Controller) SetView(view SessionView) {
	c.view = view
}

// Wait blocks until all background work has finished.
func (c *Controller) Wait() {
	c.wg.Wait()
}

// Session returns the user's session, creating it on the dashboard with the
// stored default level.
func (c *Controller) Session(ctx context.Context, userID, chatID int64) *entities.Session {
	if sess, ok := c.sessions.Get(userID); ok {
		return sess
	}

	level := entities.DefaultLevel
	if stats, err := c.finder.Stats(ctx, userID); err != nil {
		c.logger.Warn("load stats for new session", zap.Int64("user_id", userID), zap.Error(err))
	} else {
		level = stats.Level
	}

	return c.sessions.GetOrCreate(userID, func() *entities.Session {
		return entities.NewSession(userID, chatID, level)
	})
}

// SetMessageID remembers the message that shows the session.
func (c *Controller) SetMessageID(userID int64, messageID int) {
	_, _ = c.sessions.Update(userID, func(s *entities.Session) error {
		s.MessageID = messageID
		return nil
	})
}

func (c *Controller) editDraft(userID int64, fn func(req *entities.GenerationRequest)) (*entities.Session, error) {
	return c.sessions.Update(userID, func(s *entities.Session) error {
		if s.State != entities.StateDashboard {
			return entities.ErrInvalidTransition
		}
		fn(&s.Draft)
		s.Draft = entities.NewGenerationRequest(s.Draft.Level, s.Draft.Vibe, s.Draft.Topic)
		return nil
	})
}

func (c *Controller) SetLevel(userID int64, level entities.Level) (*entities.Session, error) {
	return c.editDraft(userID, func(req *entities.GenerationRequest) { req.Level = level })
}

func (c *Controller) SetVibe(userID int64, vibe entities.Vibe) (*entities.Session, error) {
	return c.editDraft(userID, func(req *entities.GenerationRequest) { req.Vibe = vibe })
}

func (c *Controller) SetTopic(userID int64, topic string) (*entities.Session, error) {
	return c.editDraft(userID, func(req *entities.GenerationRequest) { req.Topic = topic })
}

// StartLesson moves to loading and generates a lesson from the draft.
func (c *Controller) StartLesson(ctx context.Context, userID int64) (*entities.Session, error) {
	var (
		req   entities.GenerationRequest
		epoch uint64
	)
	sess, err := c.sessions.Update(userID, func(s *entities.Session) error {
		req = s.Draft
		e, err := s.BeginLoading(req)
		epoch = e
		return err
	})
	if err != nil {
		return sess, err
	}

	c.generate(ctx, userID, epoch, req)
	return sess, nil
}

// Retry re-issues the last request from the error screen.
func (c *Controller) Retry(ctx context.Context, userID int64) (*entities.Session, error) {
	var (
		req   entities.GenerationRequest
		epoch uint64
	)
	sess, err := c.sessions.Update(userID, func(s *entities.Session) error {
		r, e, err := s.RetryLoading()
		req, epoch = r, e
		return err
	})
	if err != nil {
		return sess, err
	}

	c.generate(ctx, userID, epoch, req)
	return sess, nil
}

func (c *Controller) generate(ctx context.Context, userID int64, epoch uint64, req entities.GenerationRequest) {
	c.spawn(ctx, func(ctx context.Context) {
		keep := func() bool {
			s, ok := c.sessions.Get(userID)
			return ok && s.State == entities.StateLoading && s.Epoch == epoch
		}
		lesson, genErr := c.lessons.Generate(ctx, userID, req, keep)

		sess, err := c.sessions.Update(userID, func(s *entities.Session) error {
			if genErr != nil {
				return s.FailLoading(epoch, failureMessage(genErr))
			}
			return s.FinishLoading(epoch, lesson)
		})
		c.publish(ctx, userID, sess, err, "generation")
	})
}

func failureMessage(err error) string {
	var genErr *GenerationError
	if errors.As(err, &genErr) {
		return genErr.UserMessage()
	}
	return "Something went wrong while preparing your lesson."
}

// OpenFromHistory replays a stored lesson from step 0 without touching stats.
func (c *Controller) OpenFromHistory(ctx context.Context, userID int64, lessonID string) (*entities.Session, error) {
	lesson, err := c.finder.Lesson(ctx, userID, lessonID)
	if err != nil {
		return nil, err
	}

	return c.sessions.Update(userID, func(s *entities.Session) error {
		if s.State == entities.StateCompleted || s.State == entities.StateError {
			s.Exit()
		}
		return s.OpenLesson(lesson)
	})
}

// Advance moves to the next lesson step.
func (c *Controller) Advance(userID int64) (*entities.Session, error) {
	return c.sessions.Update(userID, func(s *entities.Session) error {
		if err := s.Advance(); err != nil {
			return err
		}
		return c.enterStep(s)
	})
}

// Skip leaves a skippable step.
func (c *Controller) Skip(userID int64) (*entities.Session, error) {
	return c.sessions.Update(userID, func(s *entities.Session) error {
		if err := s.Skip(); err != nil {
			return err
		}
		return c.enterStep(s)
	})
}

func (c *Controller) enterStep(s *entities.Session) error {
	if s.Step != entities.StepPractice {
		return nil
	}
	c.rngMu.Lock()
	defer c.rngMu.Unlock()
	_, err := s.PreparePuzzle(c.rng)
	return err
}

func (c *Controller) AcceptMission(userID int64) (*entities.Session, error) {
	return c.sessions.Update(userID, func(s *entities.Session) error {
		return s.AcceptMission()
	})
}

func (c *Controller) ReturnToDashboard(userID int64) (*entities.Session, error) {
	return c.sessions.Update(userID, func(s *entities.Session) error {
		return s.ReturnToDashboard()
	})
}

// Exit abandons the current lesson or request and shows the dashboard.
func (c *Controller) Exit(userID int64) (*entities.Session, error) {
	return c.sessions.Update(userID, func(s *entities.Session) error {
		s.Exit()
		return nil
	})
}

// ShowWord pages through the vocabulary cards.
func (c *Controller) ShowWord(userID int64, index int) (*entities.Session, error) {
	return c.sessions.Update(userID, func(s *entities.Session) error {
		return s.ShowWord(index)
	})
}

func activePuzzle(s *entities.Session) (*entities.Puzzle, error) {
	if err := s.RequireStep(entities.StepPractice); err != nil {
		return nil, err
	}
	if s.Puzzle == nil {
		return nil, ErrPuzzleUnavailable
	}
	return s.Puzzle, nil
}

func (c *Controller) PickTile(userID int64, tileID int) (*entities.Session, error) {
	return c.sessions.Update(userID, func(s *entities.Session) error {
		p, err := activePuzzle(s)
		if err != nil {
			return err
		}
		return p.Pick(tileID)
	})
}

func (c *Controller) UnpickTile(userID int64, tileID int) (*entities.Session, error) {
	return c.sessions.Update(userID, func(s *entities.Session) error {
		p, err := activePuzzle(s)
		if err != nil {
			return err
		}
		return p.Unpick(tileID)
	})
}

func (c *Controller) ResetPuzzle(userID int64) (*entities.Session, error) {
	return c.sessions.Update(userID, func(s *entities.Session) error {
		p, err := activePuzzle(s)
		if err != nil {
			return err
		}
		p.Reset()
		return nil
	})
}

// CheckPuzzle compares the selection with the sentence. A wrong answer is
// flagged for a short moment; a right one is read aloud.
func (c *Controller) CheckPuzzle(ctx context.Context, userID int64) (*entities.Session, error) {
	var (
		solved, already bool
		epoch           uint64
		answer          string
	)
	sess, err := c.sessions.Update(userID, func(s *entities.Session) error {
		p, err := activePuzzle(s)
		if err != nil {
			return err
		}
		already = p.Solved
		solved = p.Check()
		epoch = s.Epoch
		answer = p.Answer()
		return nil
	})
	if err != nil || already {
		return sess, err
	}

	if !solved {
		c.clearFailureLater(ctx, userID, epoch)
		return sess, nil
	}

	err = c.speak(ctx, userID, "Sentence", answer, func(s *entities.Session) error {
		return s.RequireStep(entities.StepPractice)
	})
	if err != nil && !errors.Is(err, entities.ErrBusy) && !errors.Is(err, ErrSpeechUnavailable) {
		c.logger.Debug("speak solved sentence", zap.Int64("user_id", userID), zap.Error(err))
	}
	return sess, nil
}

func (c *Controller) clearFailureLater(ctx context.Context, userID int64, epoch uint64) {
	ctx = context.WithoutCancel(ctx)
	c.wg.Add(1)
	c.afterFunc(c.flash, func() {
		defer c.wg.Done()
		sess, err := c.sessions.Update(userID, func(s *entities.Session) error {
			if s.Epoch != epoch || s.Puzzle == nil || !s.Puzzle.Failed {
				return entities.ErrStaleEpoch
			}
			s.Puzzle.ClearFailure()
			return nil
		})
		c.publish(ctx, userID, sess, err, "puzzle flash")
	})
}

// NextPuzzle moves on once the current sentence is solved.
func (c *Controller) NextPuzzle(userID int64) (*entities.Session, error) {
	return c.sessions.Update(userID, func(s *entities.Session) error {
		c.rngMu.Lock()
		defer c.rngMu.Unlock()
		_, err := s.NextPuzzle(c.rng)
		return err
	})
}

// RequestHint asks the model for a hint on the current puzzle.
func (c *Controller) RequestHint(ctx context.Context, userID int64) (*entities.Session, error) {
	var (
		selection, target []string
		epoch             uint64
	)
	sess, err := c.sessions.Update(userID, func(s *entities.Session) error {
		p, err := activePuzzle(s)
		if err != nil {
			return err
		}
		if s.HintPending {
			return entities.ErrBusy
		}
		s.HintPending = true
		selection = p.SelectedWords()
		target = append([]string(nil), p.Target...)
		epoch = s.Epoch
		return nil
	})
	if err != nil {
		return sess, err
	}

	c.spawn(ctx, func(ctx context.Context) {
		hint, hintErr := c.gateway.PuzzleHint(ctx, selection, target)
		if hintErr != nil {
			c.logger.Warn("puzzle hint failed", zap.Int64("user_id", userID), zap.Error(hintErr))
		}

		sess, err := c.sessions.Update(userID, func(s *entities.Session) error {
			if s.Epoch != epoch {
				return entities.ErrStaleEpoch
			}
			s.HintPending = false
			if hintErr == nil {
				s.Hint = hint
			}
			return nil
		})
		c.publish(ctx, userID, sess, err, "hint")
	})
	return sess, nil
}

func activeSimulation(s *entities.Session) (*entities.Simulation, error) {
	if err := s.RequireStep(entities.StepSimulation); err != nil {
		return nil, err
	}
	if s.Simulation == nil {
		return nil, ErrSimulationUnavailable
	}
	return s.Simulation, nil
}

// SendRoleplay sends one user line and waits for the persona in the background.
// On failure the transcript stays as it was so the user can send again.
func (c *Controller) SendRoleplay(ctx context.Context, userID int64, text string) (*entities.Session, error) {
	var (
		transcript []entities.Turn
		scenario   entities.SimulationScenario
		epoch      uint64
	)
	sess, err := c.sessions.Update(userID, func(s *entities.Session) error {
		sim, err := activeSimulation(s)
		if err != nil {
			return err
		}
		t, err := sim.BeginTurn(text)
		if err != nil {
			return err
		}
		transcript, scenario, epoch = t, sim.Scenario, s.Epoch
		return nil
	})
	if err != nil {
		return sess, err
	}
	userText := transcript[len(transcript)-1].Text

	c.spawn(ctx, func(ctx context.Context) {
		reply, replyErr := c.gateway.RoleplayReply(ctx, scenario, transcript)
		if replyErr != nil {
			c.logger.Warn("roleplay reply failed", zap.Int64("user_id", userID), zap.Error(replyErr))
		}

		sess, err := c.sessions.Update(userID, func(s *entities.Session) error {
			if s.Epoch != epoch || s.Simulation == nil {
				return entities.ErrStaleEpoch
			}
			if replyErr != nil {
				s.Simulation.AbortTurn()
				return nil
			}
			s.Simulation.CommitTurn(userText, reply)
			return nil
		})
		c.publish(ctx, userID, sess, err, "roleplay")
	})
	return sess, nil
}

// EvaluateRoleplay ends the roleplay and scores it once.
func (c *Controller) EvaluateRoleplay(ctx context.Context, userID int64) (*entities.Session, error) {
	var (
		transcript []entities.Turn
		scenario   entities.SimulationScenario
		epoch      uint64
	)
	sess, err := c.sessions.Update(userID, func(s *entities.Session) error {
		sim, err := activeSimulation(s)
		if err != nil {
			return err
		}
		t, err := sim.BeginEvaluation()
		if err != nil {
			return err
		}
		transcript, scenario, epoch = t, sim.Scenario, s.Epoch
		return nil
	})
	if err != nil {
		return sess, err
	}

	c.spawn(ctx, func(ctx context.Context) {
		feedback, evalErr := c.gateway.EvaluateRoleplay(ctx, scenario, transcript)

		sess, err := c.sessions.Update(userID, func(s *entities.Session) error {
			if s.Epoch != epoch || s.Simulation == nil {
				return entities.ErrStaleEpoch
			}
			if evalErr == nil {
				evalErr = s.Simulation.SetFeedback(*feedback)
			}
			if evalErr != nil {
				s.Simulation.AbortEvaluation()
			}
			return nil
		})
		if evalErr != nil {
			c.logger.Warn("roleplay evaluation failed", zap.Int64("user_id", userID), zap.Error(evalErr))
		}
		c.publish(ctx, userID, sess, err, "evaluation")
	})
	return sess, nil
}

// SpeakWord reads a vocabulary word aloud.
func (c *Controller) SpeakWord(ctx context.Context, userID int64, index int) error {
	sess, ok := c.sessions.Get(userID)
	if !ok || sess.Lesson == nil || index < 0 || index >= len(sess.Lesson.Vocabulary) {
		return entities.ErrNotInLesson
	}
	word := sess.Lesson.Vocabulary[index].Word

	return c.speak(ctx, userID, word, word, func(s *entities.Session) error {
		return s.RequireStep(entities.StepVocabulary)
	})
}

// speak synthesizes text in the background and sends it as audio. At most one
// synthesis runs per session. Failures are counted and otherwise dropped.
func (c *Controller) speak(ctx context.Context, userID int64, title, text string, precondition func(s *entities.Session) error) error {
	if c.speaker == nil {
		return ErrSpeechUnavailable
	}

	var (
		epoch  uint64
		chatID int64
	)
	_, err := c.sessions.Update(userID, func(s *entities.Session) error {
		if err := precondition(s); err != nil {
			return err
		}
		if s.SpeechPending {
			return entities.ErrBusy
		}
		s.SpeechPending = true
		epoch, chatID = s.Epoch, s.ChatID
		return nil
	})
	if err != nil {
		return err
	}

	c.spawn(ctx, func(ctx context.Context) {
		audio, synthErr := c.speaker.Synthesize(ctx, text)
		if synthErr != nil {
			c.metrics.SpeechFailed()
			c.logger.Warn("speech synthesis failed", zap.Int64("user_id", userID), zap.Error(synthErr))
		}

		_, err := c.sessions.Update(userID, func(s *entities.Session) error {
			if s.Epoch != epoch {
				return entities.ErrStaleEpoch
			}
			s.SpeechPending = false
			return nil
		})
		if err != nil || synthErr != nil || c.view == nil {
			return
		}

		if err := c.view.SendAudio(ctx, chatID, title, audio); err != nil {
			c.logger.Warn("send audio", zap.Int64("user_id", userID), zap.Error(err))
		}
	})
	return nil
}

// spawn runs fn in the background with a context that outlives the update.
func (c *Controller) spawn(ctx context.Context, fn func(ctx context.Context)) {
	ctx = context.WithoutCancel(ctx)
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn(ctx)
	}()
}

// publish forwards the result of background work to the view.
func (c *Controller) publish(ctx context.Context, userID int64, sess *entities.Session, err error, op string) {
	if err != nil {
		if errors.Is(err, entities.ErrStaleEpoch) {
			c.logger.Debug("discarding stale result", zap.Int64("user_id", userID), zap.String("op", op))
			return
		}
		c.logger.Warn("apply background result", zap.Int64("user_id", userID), zap.String("op", op), zap.Error(err))
		return
	}
	if c.view != nil {
		c.view.SessionChanged(ctx, sess)
	}
}
