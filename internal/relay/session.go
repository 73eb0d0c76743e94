package relay

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"storepal-voice-be/internal/entity"
	"storepal-voice-be/internal/pkg/logger"

	"github.com/google/uuid"
)

// State is the session lifecycle phase.
type State int32

const (
	StateConnecting State = iota
	StateHandshaking
	StateActive
	StateDraining
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateConnecting:
		return "connecting"
	case StateHandshaking:
		return "handshaking"
	case StateActive:
		return "active"
	case StateDraining:
		return "draining"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}

// ProductSearcher is the search gateway surface the relay consumes.
type ProductSearcher interface {
	SearchAndRender(ctx context.Context, conversationId, query string) (string, []entity.ProductMatch)
	IsFallback(rendered string) bool
}

// Classifier decides whether a final utterance warrants a product search.
type Classifier interface {
	ShouldSearch(text string) bool
}

// Observer receives live session events for dashboard fanout. Optional.
type Observer interface {
	Publish(conversationId, eventType string, data map[string]interface{})
}

type Options struct {
	BaseURL string
	AgentId string
	APIKey  string
	Agent   AgentConfig

	HandshakeTimeout time.Duration
	InjectDelay      time.Duration
	SuppressionTTL   time.Duration
	ForwardBudget    int

	Dial DialFunc
}

func (o *Options) withDefaults() {
	if o.HandshakeTimeout <= 0 {
		o.HandshakeTimeout = 10 * time.Second
	}
	if o.InjectDelay <= 0 {
		o.InjectDelay = time.Second
	}
	if o.SuppressionTTL <= 0 {
		o.SuppressionTTL = 10 * time.Second
	}
	if o.ForwardBudget <= 0 {
		o.ForwardBudget = 3
	}
	if o.Dial == nil {
		o.Dial = DialElevenLabs
	}
}

// enrichmentContext correlates one triggered search with the agent reply it
// is meant to influence. One-shot, bounded by a deadline so a reply that
// never arrives cannot swallow the session's output forever.
type enrichmentContext struct {
	query    string
	rendered string
	deadline time.Time
}

// Session relays one conversation between a downstream client socket and the
// upstream provider socket. It owns the upstream socket; the downstream
// socket is owned by the caller but closed together with the upstream one.
type Session struct {
	id             string
	conversationId string
	state          atomic.Int32

	client   *safeConn
	upstream *safeConn

	searcher   ProductSearcher
	classifier Classifier
	observer   Observer
	logger     logger.ILogger
	opts       Options

	mu           sync.Mutex
	enrichment   *enrichmentContext
	forwardFails int

	frames    chan []byte
	done      chan struct{}
	closeOnce sync.Once
	injectWG  sync.WaitGroup
}

func NewSession(
	client Conn,
	searcher ProductSearcher,
	classifier Classifier,
	observer Observer,
	log logger.ILogger,
	opts Options,
) *Session {
	opts.withDefaults()
	return &Session{
		id:         uuid.New().String(),
		client:     newSafeConn(client),
		searcher:   searcher,
		classifier: classifier,
		observer:   observer,
		logger:     log,
		opts:       opts,
		frames:     make(chan []byte),
		done:       make(chan struct{}),
	}
}

// Id returns the session identifier: the provider-assigned conversation id
// once the handshake completes, a local id before that.
func (s *Session) Id() string {
	if s.conversationId != "" {
		return s.conversationId
	}
	return s.id
}

func (s *Session) State() State {
	return State(s.state.Load())
}

func (s *Session) setState(st State) {
	s.state.Store(int32(st))
}

// Run drives the session to completion: dial, handshake, pump until either
// peer disconnects, then tear down both sockets exactly once. It blocks
// until the session is Closed.
func (s *Session) Run(ctx context.Context) error {
	defer func() {
		s.drain()
		// Let a mid-flight enrichment finish its best-effort upstream
		// sends before the upstream socket goes away.
		s.injectWG.Wait()
		if s.upstream != nil {
			_ = s.upstream.Close()
		}
		s.setState(StateClosed)
	}()

	s.setState(StateConnecting)
	upstream, err := s.opts.Dial(ctx, s.opts.BaseURL, s.opts.AgentId, s.opts.APIKey)
	if err != nil {
		_ = s.client.WriteText(NewErrorMessage("Failed to connect to the voice service."))
		s.logger.Error("Relay", "Upstream connect failed", map[string]interface{}{
			"session": s.id,
			"error":   err.Error(),
		})
		return err
	}
	s.upstream = newSafeConn(upstream)

	go s.readUpstream()

	s.setState(StateHandshaking)
	if err := s.handshake(); err != nil {
		_ = s.client.WriteText(NewErrorMessage("Voice service handshake failed."))
		return err
	}

	s.setState(StateActive)
	s.logger.Info("Relay", "Session active", map[string]interface{}{
		"conversation_id": s.conversationId,
	})
	s.notifyObserver("session_started", map[string]interface{}{})

	go s.providerPump()

	// The client pump runs on the handler goroutine. Client frames are
	// deliberately not read before this point; pre-handshake input is
	// dropped by never being received.
	s.clientPump()

	return nil
}

// readUpstream feeds raw upstream frames to the pumps. The channel close is
// the peer-disconnect signal.
func (s *Session) readUpstream() {
	defer close(s.frames)
	for {
		_, data, err := s.upstream.ReadMessage()
		if err != nil {
			return
		}
		select {
		case s.frames <- data:
		case <-s.done:
			return
		}
	}
}

// handshake sends the initiation message and waits for the provider's
// metadata acknowledgment. Other events arriving first are dispatched
// normally so early audio is not lost.
func (s *Session) handshake() error {
	if err := s.upstream.WriteText(NewInitiationMessage(s.opts.Agent)); err != nil {
		return E(KindConnect, "send_initiation", err)
	}

	timeout := time.After(s.opts.HandshakeTimeout)
	for {
		select {
		case raw, ok := <-s.frames:
			if !ok {
				return E(KindConnect, "handshake", fmt.Errorf("upstream closed before metadata"))
			}
			ev, err := ParseProviderEvent(raw)
			if err != nil {
				s.logProtocolError("upstream", err)
				continue
			}
			if ev.Type == EventConversationInit {
				s.conversationId = ev.ConversationId
				s.forwardDownstream(raw)
				return nil
			}
			s.handleProviderEvent(ev)
		case <-timeout:
			return E(KindConnect, "handshake", fmt.Errorf("metadata not received within %s", s.opts.HandshakeTimeout))
		}
	}
}

// clientPump forwards every downstream frame upstream: binary frames become
// base64 user_audio_chunk objects, text frames pass through verbatim.
func (s *Session) clientPump() {
	for {
		messageType, data, err := s.client.ReadMessage()
		if err != nil {
			s.logger.Info("Relay", "Client disconnected", map[string]interface{}{
				"conversation_id": s.Id(),
			})
			s.drain()
			return
		}

		var payload []byte
		switch messageType {
		case BinaryMessage:
			payload = NewAudioChunk(base64.StdEncoding.EncodeToString(data))
		case TextMessage:
			if !json.Valid(data) {
				s.logProtocolError("client", E(KindProtocol, "client_frame", fmt.Errorf("invalid json")))
				continue
			}
			payload = data
		default:
			continue
		}

		if err := s.upstream.WriteText(payload); err != nil {
			s.logger.Warn("Relay", "Upstream forward failed", map[string]interface{}{
				"conversation_id": s.Id(),
				"error":           err.Error(),
			})
			s.drain()
			return
		}
	}
}

// providerPump dispatches every upstream frame through the event table and
// mirrors it downstream except where the table says otherwise.
func (s *Session) providerPump() {
	for raw := range s.frames {
		ev, err := ParseProviderEvent(raw)
		if err != nil {
			s.logProtocolError("upstream", err)
			continue
		}
		s.handleProviderEvent(ev)
	}
	// Upstream reader exited: peer disconnect or drain.
	s.drain()
}

func (s *Session) handleProviderEvent(ev *ProviderEvent) {
	switch ev.Type {
	case EventUserTranscript:
		s.forwardDownstream(ev.Raw)
		if !ev.IsFinal {
			return
		}
		s.logger.Info("Relay", "Final utterance", map[string]interface{}{
			"conversation_id": s.Id(),
			"transcript":      ev.Transcript,
		})
		s.notifyObserver("user_transcript", map[string]interface{}{"text": ev.Transcript})

		// A new turn invalidates any stale suppression.
		s.mu.Lock()
		s.enrichment = nil
		s.mu.Unlock()

		if s.classifier.ShouldSearch(ev.Transcript) {
			s.injectWG.Add(1)
			go s.runEnrichment(ev.Transcript)
		}

	case EventAgentResponse:
		if s.consumeSuppression() {
			s.logger.Info("Relay", "Suppressed generic agent reply", map[string]interface{}{
				"conversation_id": s.Id(),
			})
			return
		}
		s.notifyObserver("agent_response", map[string]interface{}{"text": ev.AgentResponse})
		s.forwardDownstream(ev.Raw)

	case EventPing:
		if err := s.upstream.WriteText(NewPongMessage(ev.PingEventId)); err != nil {
			s.logger.Warn("Relay", "Pong send failed", map[string]interface{}{
				"conversation_id": s.Id(),
				"error":           err.Error(),
			})
		}

	default:
		// interruption, vad_score, audio, metadata and anything newer
		// mirror downstream unchanged.
		s.forwardDownstream(ev.Raw)
	}
}

// consumeSuppression atomically checks-and-clears the one-shot suppression
// marker, honoring its deadline.
func (s *Session) consumeSuppression() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.enrichment == nil {
		return false
	}
	active := time.Now().Before(s.enrichment.deadline)
	s.enrichment = nil
	return active
}

// forwardDownstream mirrors one frame to the client. Failures are tolerated
// up to a small consecutive budget, then the session drains. Only the
// provider pump calls this, so the counter needs no extra synchronization
// beyond the state mutex.
func (s *Session) forwardDownstream(raw []byte) {
	if err := s.client.WriteText(raw); err != nil {
		s.mu.Lock()
		s.forwardFails++
		exhausted := s.forwardFails >= s.opts.ForwardBudget
		s.mu.Unlock()

		s.logger.Warn("Relay", "Downstream forward failed", map[string]interface{}{
			"conversation_id": s.Id(),
			"error":           err.Error(),
		})
		if exhausted {
			s.drain()
		}
		return
	}
	s.mu.Lock()
	s.forwardFails = 0
	s.mu.Unlock()
}

// drain starts teardown exactly once. The client socket closes immediately;
// the upstream socket is closed by Run after in-flight enrichment sends
// complete.
func (s *Session) drain() {
	s.closeOnce.Do(func() {
		s.setState(StateDraining)
		close(s.done)
		_ = s.client.Close()
		s.notifyObserver("session_ended", map[string]interface{}{})
	})
}

func (s *Session) notifyObserver(eventType string, data map[string]interface{}) {
	if s.observer == nil {
		return
	}
	s.observer.Publish(s.Id(), eventType, data)
}

func (s *Session) logProtocolError(peer string, err error) {
	s.logger.Warn("Relay", "Dropped malformed frame", map[string]interface{}{
		"conversation_id": s.Id(),
		"peer":            peer,
		"error":           err.Error(),
	})
}
