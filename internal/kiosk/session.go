package kiosk

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"seniorkiosk/internal/cart"
	"seniorkiosk/internal/catalog"
	"seniorkiosk/internal/intent"
	"seniorkiosk/internal/logging"
	"seniorkiosk/internal/models"
	"seniorkiosk/internal/order"
)

// Default interaction timings
const (
	DefaultLandingDelay  = 2500 * time.Millisecond
	DefaultAlertDuration = 3 * time.Second
)

// Voice activation results, also used as metric labels
const (
	ActivationAccepted    = "accepted"
	ActivationBusy        = "busy"
	ActivationInactive    = "inactive"
	ActivationUnavailable = "unavailable"
)

var (
	// ErrVoiceBusy is returned when a turn is already listening or processing
	ErrVoiceBusy = errors.New("voice turn already in progress")
	// ErrVoiceInactive is returned when voice input is not accepted on the current screen
	ErrVoiceInactive = errors.New("voice input is not active on this screen")
	// ErrVoiceUnavailable is returned once speech capture was reported unsupported
	ErrVoiceUnavailable = errors.New("voice input is unavailable")
	// ErrStaleTurn is returned for transcripts of a turn that is no longer listening
	ErrStaleTurn = errors.New("voice turn is not listening")
)

// Alert is the sold-out notice shown over the menu
type Alert struct {
	Item      models.MenuItem `json:"item"`
	Message   string          `json:"message"`
	ExpiresAt time.Time       `json:"expires_at"`
}

// Snapshot is a read-only copy of the session for presentation
type Snapshot struct {
	SessionID      string                 `json:"session_id"`
	Screen         models.Screen          `json:"screen"`
	Cart           []models.CartLine      `json:"cart"`
	Total          int                    `json:"total"`
	Selected       *models.MenuItem       `json:"selected,omitempty"`
	Temperature    models.Temperature     `json:"temperature,omitempty"`
	Order          *models.CompletedOrder `json:"order,omitempty"`
	Alert          *Alert                 `json:"alert,omitempty"`
	CameraActive   bool                   `json:"camera_active"`
	VoiceAvailable bool                   `json:"voice_available"`
	Listening      bool                   `json:"listening"`
	Processing     bool                   `json:"processing"`
	LastMessage    string                 `json:"last_message,omitempty"`
}

// Config holds session timings
type Config struct {
	LandingDelay  time.Duration
	AlertDuration time.Duration
}

// Deps are the collaborators of a session. Speaker, Display, Observer and
// Scheduler are optional.
type Deps struct {
	Catalog   *catalog.Catalog
	Resolver  *intent.Resolver
	Finalizer *order.Finalizer
	Speaker   Speaker
	Display   Display
	Observer  Observer
	Scheduler Scheduler
	Logger    *zap.Logger
}

// Session is one kiosk's interaction state. All mutations happen under one
// lock, so events from HTTP handlers, timers and voice turns apply one at a time.
type Session struct {
	mu sync.Mutex

	id        string
	cfg       Config
	catalog   *catalog.Catalog
	resolver  *intent.Resolver
	finalizer *order.Finalizer
	speaker   Speaker
	display   Display
	observer  Observer
	scheduler Scheduler
	logger    *zap.Logger

	screen      models.Screen
	cart        *cart.Cart
	selected    *models.MenuItem
	temperature models.Temperature
	order       *models.CompletedOrder
	lastMessage string

	alert      *Alert
	alertGen   int
	alertTimer Timer

	landingTimer Timer
	cameraActive bool

	voiceAvailable   bool
	voiceNoticeGiven bool
	listening        bool
	processing       bool
	turn             int64
	turnStarted      time.Time

	closed bool
}

// NewSession creates a session on the landing screen
func NewSession(cfg Config, deps Deps) *Session {
	if cfg.LandingDelay <= 0 {
		cfg.LandingDelay = DefaultLandingDelay
	}
	if cfg.AlertDuration <= 0 {
		cfg.AlertDuration = DefaultAlertDuration
	}
	if deps.Speaker == nil {
		deps.Speaker = nopSpeaker{}
	}
	if deps.Display == nil {
		deps.Display = nopDisplay{}
	}
	if deps.Observer == nil {
		deps.Observer = nopObserver{}
	}
	if deps.Scheduler == nil {
		deps.Scheduler = realScheduler{}
	}
	if deps.Logger == nil {
		deps.Logger = zap.NewNop()
	}

	id := uuid.NewString()
	return &Session{
		id:             id,
		cfg:            cfg,
		catalog:        deps.Catalog,
		resolver:       deps.Resolver,
		finalizer:      deps.Finalizer,
		speaker:        deps.Speaker,
		display:        deps.Display,
		observer:       deps.Observer,
		scheduler:      deps.Scheduler,
		logger:         deps.Logger.Named("session").With(zap.String("session_id", id)),
		screen:         models.ScreenLanding,
		cart:           cart.New(),
		cameraActive:   true,
		voiceAvailable: true,
	}
}

// ID returns the session id
func (s *Session) ID() string {
	return s.id
}

// Start schedules the move from the landing screen to the menu
func (s *Session) Start() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.landingTimer != nil || s.closed {
		return
	}
	s.landingTimer = s.scheduler.AfterFunc(s.cfg.LandingDelay, func() {
		s.Dispatch(context.Background(), DetectionElapsed{})
	})
	s.publishLocked()
}

// Close stops pending timers; later events are ignored
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.closed = true
	if s.landingTimer != nil {
		s.landingTimer.Stop()
	}
	if s.alertTimer != nil {
		s.alertTimer.Stop()
	}
}

// Snapshot returns the current session state
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Dispatch applies a UI event
func (s *Session) Dispatch(ctx context.Context, ev Event) Outcome {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.applyLocked(ctx, ev)
}

// ActivateVoice starts a voice turn. While a turn is listening or processing,
// on the landing screen, or after voice was reported unavailable, activation
// is a no-op that returns an error.
func (s *Session) ActivateVoice() (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var err error
	result := ActivationAccepted
	switch {
	case s.closed || s.screen == models.ScreenLanding:
		err, result = ErrVoiceInactive, ActivationInactive
	case !s.voiceAvailable:
		err, result = ErrVoiceUnavailable, ActivationUnavailable
	case s.listening || s.processing:
		err, result = ErrVoiceBusy, ActivationBusy
	}
	s.observer.VoiceActivation(result)
	if err != nil {
		s.logger.Debug("Voice activation ignored", zap.String("reason", result))
		return 0, err
	}

	s.turn++
	s.listening = true
	s.turnStarted = time.Now()
	s.publishLocked()
	return s.turn, nil
}

// SubmitTranscript resolves the final transcript of a turn and applies it.
// Classification runs outside the session lock; the busy flags keep other
// turns out until the result is applied.
func (s *Session) SubmitTranscript(ctx context.Context, turn int64, transcript string) (Outcome, error) {
	s.mu.Lock()
	if !s.listening || turn != s.turn {
		s.mu.Unlock()
		return Outcome{}, ErrStaleTurn
	}
	s.listening = false
	s.processing = true
	s.publishLocked()
	s.mu.Unlock()

	s.logger.Info("Transcript received", zap.Int64("turn", turn), logging.Transcript(transcript))

	finished := false
	defer func() {
		if !finished {
			s.mu.Lock()
			s.finishTurnLocked()
			s.mu.Unlock()
		}
	}()

	res := s.resolver.ResolveDetailed(ctx, transcript)
	s.observer.IntentResolved(res)

	s.mu.Lock()
	defer s.mu.Unlock()

	out := s.applyLocked(ctx, VoiceCommand{Intent: res.Intent})
	s.finishTurnLocked()
	finished = true
	return out, nil
}

func (s *Session) finishTurnLocked() {
	s.processing = false
	s.observer.VoiceTurnFinished(time.Since(s.turnStarted))
	s.publishLocked()
}

// EndTurn reports that capture ended without a transcript. It only clears
// the turn if that turn is still listening.
func (s *Session) EndTurn(turn int64) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.listening || turn != s.turn {
		return
	}
	s.listening = false
	s.processing = false
	s.publishLocked()
}

// ReportVoiceUnavailable disables voice input; the notice is spoken once
func (s *Session) ReportVoiceUnavailable() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.voiceAvailable = false
	s.listening = false
	if !s.voiceNoticeGiven {
		s.voiceNoticeGiven = true
		s.logger.Warn("Speech capture unavailable, continuing with touch only")
		s.speakLocked(Feedback{Kind: FeedbackVoiceUnavailable})
	}
	s.publishLocked()
}

// DismissAlert closes the sold-out alert, if any
func (s *Session) DismissAlert() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alert != nil {
		s.dismissAlertLocked()
		s.publishLocked()
	}
}

// applyLocked runs the transition and its effects. Once a transition is
// chosen it is committed even if the caller goes away, so effects run on a
// context without the caller's cancellation.
func (s *Session) applyLocked(ctx context.Context, ev Event) Outcome {
	ctx = context.WithoutCancel(ctx)
	name := EventName(ev)
	if s.closed {
		return Outcome{Next: s.screen, Ignored: true}
	}

	from := s.screen
	out := Transition(s.stateLocked(), ev, s.catalog)
	if out.Ignored {
		s.logger.Debug("Event ignored", zap.String("event", name), zap.String("screen", string(from)))
		return out
	}

	if s.alert != nil {
		s.dismissAlertLocked()
	}

	// Finalize before any other effect so a failed checkout leaves the session untouched
	var completed *models.CompletedOrder
	if hasEffect[FinalizeOrderEffect](out.Effects) {
		o, err := s.finalizer.Finalize(ctx, s.cart.Snapshot())
		if err != nil {
			s.logger.Error("Checkout failed", zap.Error(err))
			fb := Feedback{Kind: FeedbackCheckoutFailed}
			s.speakLocked(fb)
			s.publishLocked()
			return Outcome{Next: from, Feedback: &fb}
		}
		completed = &o
	}

	for _, eff := range out.Effects {
		switch e := eff.(type) {
		case AddLineEffect:
			s.cart.Add(e.Item, e.Temperature)
		case RemoveLineEffect:
			if _, err := s.cart.RemoveAt(e.Index); err != nil {
				s.logger.Warn("Cart removal ignored", zap.Error(err))
			}
		case ClearCartEffect:
			s.cart.Clear()
		case FinalizeOrderEffect:
			s.order = completed
			s.observer.OrderCompleted(*completed)
		case ClearOrderEffect:
			s.order = nil
		case ShowSoldOutEffect:
			s.showAlertLocked(e.Item)
		case SelectItemEffect:
			item := e.Item
			s.selected = &item
		case ClearSelectionEffect:
			s.selected = nil
			s.temperature = ""
		case SetTemperatureEffect:
			s.temperature = e.Temperature
		case ReleaseCameraEffect:
			s.cameraActive = false
		}
	}

	if out.Feedback != nil && out.Feedback.Kind == FeedbackInvalidRemoval {
		s.logger.Warn("Cart removal ignored", zap.String("event", name))
	}

	s.screen = out.Next
	if out.Feedback != nil {
		if completed != nil {
			out.Feedback.OrderNumber = completed.Number
			out.Feedback.PrepMinutes = completed.PrepMinutes
		}
		s.speakLocked(*out.Feedback)
	}

	if from != out.Next {
		s.logger.Info("Screen changed",
			zap.String("event", name),
			zap.String("from", string(from)),
			zap.String("to", string(out.Next)),
		)
	}
	s.observer.Transitioned(name, from, out.Next)
	s.publishLocked()
	return out
}

func (s *Session) stateLocked() State {
	st := State{
		Screen:      s.screen,
		Lines:       s.cart.Snapshot(),
		Temperature: s.temperature,
	}
	if s.selected != nil {
		item := *s.selected
		st.Selected = &item
	}
	return st
}

func (s *Session) showAlertLocked(item models.MenuItem) {
	if s.alertTimer != nil {
		s.alertTimer.Stop()
	}
	s.alertGen++
	gen := s.alertGen
	s.alert = &Alert{
		Item:      item,
		Message:   Feedback{Kind: FeedbackSoldOutSelected, Item: item}.Text(),
		ExpiresAt: time.Now().Add(s.cfg.AlertDuration),
	}
	s.alertTimer = s.scheduler.AfterFunc(s.cfg.AlertDuration, func() {
		s.expireAlert(gen)
	})
}

func (s *Session) expireAlert(gen int) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.alert == nil || s.alertGen != gen {
		return
	}
	s.alert = nil
	s.alertTimer = nil
	s.publishLocked()
}

func (s *Session) dismissAlertLocked() {
	if s.alertTimer != nil {
		s.alertTimer.Stop()
		s.alertTimer = nil
	}
	s.alert = nil
	s.alertGen++
}

func (s *Session) speakLocked(f Feedback) {
	text := f.Text()
	if text == "" {
		return
	}
	s.lastMessage = text
	s.speaker.Speak(text)
}

func (s *Session) publishLocked() {
	s.display.Show(s.snapshotLocked())
}

func (s *Session) snapshotLocked() Snapshot {
	snap := Snapshot{
		SessionID:      s.id,
		Screen:         s.screen,
		Cart:           s.cart.Snapshot(),
		Total:          s.cart.Total(),
		Temperature:    s.temperature,
		CameraActive:   s.cameraActive,
		VoiceAvailable: s.voiceAvailable,
		Listening:      s.listening,
		Processing:     s.processing,
		LastMessage:    s.lastMessage,
	}
	if s.selected != nil {
		item := *s.selected
		snap.Selected = &item
	}
	if s.order != nil {
		o := *s.order
		o.Lines = models.CopyLines(o.Lines)
		snap.Order = &o
	}
	if s.alert != nil {
		a := *s.alert
		snap.Alert = &a
	}
	return snap
}

func hasEffect[T Effect](effects []Effect) bool {
	for _, e := range effects {
		if _, ok := e.(T); ok {
			return true
		}
	}
	return false
}
