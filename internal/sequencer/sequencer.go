package sequencer

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/IsaacGridGainsDev/Model-Control-Protocol-for-Model-Interaction/internal/storage"
)

// State represents where the sequencer is in its lifecycle.
type State string

const (
	StateIdle           State = "idle"
	StateInConversation State = "in_conversation"
	StateStopped        State = "stopped"
)

// Sequencer drives a fixed round-robin rotation over the configured
// participants, persisting one message and one interaction per turn.
type Sequencer struct {
	store        *storage.Store
	provider     ResponseProvider
	participants []string
	messageType  string
	logger       *logrus.Logger

	mu        sync.Mutex
	turnDelay time.Duration
	state     State
	next      int // rotation index of the participant who speaks next
	turn      int // turns completed so far
}

// Option configures a Sequencer.
type Option func(*Sequencer)

func WithLogger(logger *logrus.Logger) Option {
	return func(s *Sequencer) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func WithMessageType(msgType string) Option {
	return func(s *Sequencer) {
		if msgType != "" {
			s.messageType = msgType
		}
	}
}

func WithTurnDelay(d time.Duration) Option {
	return func(s *Sequencer) {
		if d > 0 {
			s.turnDelay = d
		}
	}
}

// New builds a sequencer over the given store and provider. At least two
// participants are required for a sender/receiver pair.
func New(store *storage.Store, provider ResponseProvider, participants []string, opts ...Option) (*Sequencer, error) {
	if store == nil {
		return nil, fmt.Errorf("store is required")
	}
	if provider == nil {
		return nil, fmt.Errorf("response provider is required")
	}
	if len(participants) < 2 {
		return nil, fmt.Errorf("at least two participants are required, got %d", len(participants))
	}

	s := &Sequencer{
		store:        store,
		provider:     provider,
		participants: participants,
		messageType:  "text",
		logger:       logrus.New(),
		state:        StateIdle,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// State reports the current lifecycle state.
func (s *Sequencer) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state
}

// Participants returns the configured rotation.
func (s *Sequencer) Participants() []string {
	return s.participants
}

// SetTurnDelay adjusts the pause between turns, e.g. after a config reload.
func (s *Sequencer) SetTurnDelay(d time.Duration) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if d >= 0 {
		s.turnDelay = d
	}
}

// Start seeds turn 0 with the operator-supplied message, attributed to the
// first participant in the rotation and addressed to the second. A new
// conversation can begin from Idle or Stopped, never over a running one.
func (s *Sequencer) Start(ctx context.Context, initialMessage string) (*storage.Message, error) {
	if initialMessage == "" {
		return nil, fmt.Errorf("initial message is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.state == StateInConversation {
		return nil, fmt.Errorf("conversation already in progress")
	}

	speaker := s.participants[0]
	receiver := s.participants[1]

	msg, err := s.persistTurn(ctx, speaker, receiver, initialMessage)
	if err != nil {
		return nil, err
	}

	s.state = StateInConversation
	s.next = 1
	s.turn = 1

	s.logger.WithFields(logrus.Fields{
		"speaker":  speaker,
		"receiver": receiver,
		"message":  msg.ID,
	}).Debug("conversation started")

	return msg, nil
}

// NextTurn advances the rotation by one participant, asks the provider for a
// response and persists it together with its interaction record.
func (s *Sequencer) NextTurn(ctx context.Context) (*storage.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.nextTurnLocked(ctx)
}

func (s *Sequencer) nextTurnLocked(ctx context.Context) (*storage.Message, error) {
	if s.state != StateInConversation {
		return nil, fmt.Errorf("no conversation in progress (state %s)", s.state)
	}

	speaker := s.participants[s.next]
	receiver := s.participants[(s.next+1)%len(s.participants)]

	prompt := ""
	if prev, err := s.store.LatestFor(ctx, speaker); err != nil {
		return nil, err
	} else if prev != nil {
		prompt = prev.Content
	}

	content, err := s.provider.Respond(ctx, Request{
		Speaker:  speaker,
		Receiver: receiver,
		Turn:     s.turn,
		Prompt:   prompt,
	})
	if err != nil {
		return nil, fmt.Errorf("response for %s: %w", speaker, err)
	}

	msg, err := s.persistTurn(ctx, speaker, receiver, content)
	if err != nil {
		return nil, err
	}

	s.next = (s.next + 1) % len(s.participants)
	s.turn++

	s.logger.WithFields(logrus.Fields{
		"speaker":  speaker,
		"receiver": receiver,
		"turn":     s.turn,
		"message":  msg.ID,
	}).Debug("turn persisted")

	if s.turnDelay > 0 {
		time.Sleep(s.turnDelay)
	}

	return msg, nil
}

// RunRound executes one full rotation, one turn per participant, and returns
// the messages produced in order.
func (s *Sequencer) RunRound(ctx context.Context) ([]*storage.Message, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	msgs := make([]*storage.Message, 0, len(s.participants))
	for range s.participants {
		msg, err := s.nextTurnLocked(ctx)
		if err != nil {
			return msgs, err
		}
		msgs = append(msgs, msg)
	}
	return msgs, nil
}

// Stop terminates the conversation from any state.
func (s *Sequencer) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.state = StateStopped
	s.logger.Debug("sequencer stopped")
}

func (s *Sequencer) persistTurn(ctx context.Context, speaker, receiver, content string) (*storage.Message, error) {
	msgID, err := s.store.InsertMessage(ctx, speaker, s.messageType, content)
	if err != nil {
		return nil, err
	}
	if _, err := s.store.InsertInteraction(ctx, speaker, receiver, msgID); err != nil {
		return nil, err
	}

	msg, err := s.store.Message(ctx, msgID)
	if err != nil {
		return nil, err
	}
	if msg == nil {
		return nil, fmt.Errorf("message %d vanished after insert", msgID)
	}
	return msg, nil
}
