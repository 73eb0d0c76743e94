package relay

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"storepal-voice-be/internal/constant"
	"storepal-voice-be/internal/entity"
	"storepal-voice-be/internal/pkg/logger"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeFrame struct {
	messageType int
	data        []byte
}

// fakeConn is a scriptable duplex peer: tests push inbound frames and
// inspect recorded writes.
type fakeConn struct {
	in chan fakeFrame

	mu     sync.Mutex
	writes [][]byte

	closed    chan struct{}
	closeOnce sync.Once
}

func newFakeConn() *fakeConn {
	return &fakeConn{
		in:     make(chan fakeFrame, 16),
		closed: make(chan struct{}),
	}
}

func (c *fakeConn) push(messageType int, data []byte) {
	c.in <- fakeFrame{messageType: messageType, data: data}
}

func (c *fakeConn) ReadMessage() (int, []byte, error) {
	select {
	case f := <-c.in:
		return f.messageType, f.data, nil
	case <-c.closed:
		return 0, nil, errors.New("fake conn closed")
	}
}

func (c *fakeConn) WriteMessage(messageType int, data []byte) error {
	select {
	case <-c.closed:
		return errors.New("fake conn closed")
	default:
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.writes = append(c.writes, append([]byte(nil), data...))
	return nil
}

func (c *fakeConn) Close() error {
	c.closeOnce.Do(func() { close(c.closed) })
	return nil
}

func (c *fakeConn) snapshot() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, len(c.writes))
	for i, w := range c.writes {
		out[i] = string(w)
	}
	return out
}

// waitFor polls until cond is true or the deadline passes.
func waitFor(t *testing.T, cond func() bool, msg string) {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		if cond() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("timed out waiting for %s", msg)
}

func containsWrite(snapshot []string, substr string) bool {
	for _, w := range snapshot {
		if strings.Contains(w, substr) {
			return true
		}
	}
	return false
}

type fakeSearcher struct {
	rendered string
	results  []entity.ProductMatch

	mu      sync.Mutex
	queries []string
	block   chan struct{} // when set, SearchAndRender waits on it
}

func (f *fakeSearcher) SearchAndRender(ctx context.Context, conversationId, query string) (string, []entity.ProductMatch) {
	f.mu.Lock()
	f.queries = append(f.queries, query)
	f.mu.Unlock()
	if f.block != nil {
		<-f.block
	}
	return f.rendered, f.results
}

func (f *fakeSearcher) IsFallback(rendered string) bool {
	return rendered == constant.ProductNotFoundMessage ||
		rendered == constant.SearchUnavailableMessage ||
		rendered == constant.SearchErrorMessage
}

type alwaysClassifier struct{ verdict bool }

func (c alwaysClassifier) ShouldSearch(text string) bool { return c.verdict }

func newTestSession(t *testing.T, searcher ProductSearcher, classifier Classifier) (*Session, *fakeConn, *fakeConn, chan error) {
	t.Helper()
	client := newFakeConn()
	upstream := newFakeConn()

	session := NewSession(client, searcher, classifier, nil, logger.NewNopLogger(), Options{
		BaseURL: "wss://example.test/convai",
		AgentId: "agent-1",
		APIKey:  "key",
		Agent:   AgentConfig{Prompt: "assistant"},

		HandshakeTimeout: time.Second,
		InjectDelay:      5 * time.Millisecond,
		Dial: func(ctx context.Context, baseURL, agentId, apiKey string) (Conn, error) {
			return upstream, nil
		},
	})

	done := make(chan error, 1)
	go func() { done <- session.Run(context.Background()) }()

	// Complete the handshake.
	upstream.push(TextMessage, []byte(`{"type":"conversation_initiation_metadata","conversation_initiation_metadata_event":{"conversation_id":"abc123"}}`))
	waitFor(t, func() bool {
		return containsWrite(client.snapshot(), "conversation_initiation_metadata")
	}, "handshake metadata forwarded to client")

	return session, client, upstream, done
}

func finishSession(t *testing.T, session *Session, client *fakeConn, done chan error) {
	t.Helper()
	client.Close()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not close")
	}
	assert.Equal(t, StateClosed, session.State())
}

func TestSessionEnrichmentEndToEnd(t *testing.T) {
	searcher := &fakeSearcher{
		rendered: "I found Organic Bananas! It's in the Produce section, located in aisle A1. Fresh organic bananas.",
		results: []entity.ProductMatch{
			{ProductId: 1001, ItemName: "Organic Bananas", AisleLocation: "A1", Score: 0.9},
		},
	}

	session, client, upstream, done := newTestSession(t, searcher, alwaysClassifier{true})
	assert.Equal(t, "abc123", session.Id())

	upstream.push(TextMessage, []byte(`{"type":"user_transcript","user_transcription_event":{"user_transcript":"where can I find organic bananas","is_final":true}}`))

	waitFor(t, func() bool {
		return containsWrite(client.snapshot(), "product_search_result")
	}, "search result delivered to client")

	// Ordered protocol: initiation < contextual_update < user_message on the
	// upstream socket, and the downstream result only after both.
	up := upstream.snapshot()
	idxInit, idxCtx, idxTrigger := -1, -1, -1
	for i, w := range up {
		switch {
		case strings.Contains(w, "conversation_initiation_client_data"):
			idxInit = i
		case strings.Contains(w, "contextual_update"):
			idxCtx = i
		case strings.Contains(w, "user_message"):
			idxTrigger = i
		}
	}
	require.GreaterOrEqual(t, idxInit, 0, "initiation must be sent")
	require.GreaterOrEqual(t, idxCtx, 0, "contextual update must be sent")
	require.GreaterOrEqual(t, idxTrigger, 0, "trigger must be sent")
	assert.Less(t, idxInit, idxCtx)
	assert.Less(t, idxCtx, idxTrigger)

	var searchResult map[string]string
	for _, w := range client.snapshot() {
		if strings.Contains(w, "product_search_result") {
			require.NoError(t, json.Unmarshal([]byte(w), &searchResult))
		}
	}
	assert.Equal(t, "where can I find organic bananas", searchResult["query"])
	assert.Contains(t, searchResult["results"], "Organic Bananas")
	assert.Contains(t, searchResult["results"], "aisle A1")

	// The generic reply racing the enriched one is suppressed, exactly once.
	upstream.push(TextMessage, []byte(`{"type":"agent_response","agent_response_event":{"agent_response":"generic reply"}}`))
	upstream.push(TextMessage, []byte(`{"type":"agent_response","agent_response_event":{"agent_response":"enriched reply"}}`))
	waitFor(t, func() bool {
		return containsWrite(client.snapshot(), "enriched reply")
	}, "second agent reply forwarded")
	assert.False(t, containsWrite(client.snapshot(), "generic reply"), "first reply after enrichment must be suppressed")

	finishSession(t, session, client, done)
}

func TestSessionNotFoundSkipsUpstreamInjection(t *testing.T) {
	searcher := &fakeSearcher{rendered: constant.ProductNotFoundMessage}

	session, client, upstream, done := newTestSession(t, searcher, alwaysClassifier{true})

	upstream.push(TextMessage, []byte(`{"type":"user_transcript","user_transcription_event":{"user_transcript":"asdkj qweiqw","is_final":true}}`))

	waitFor(t, func() bool {
		return containsWrite(client.snapshot(), "product_search_result")
	}, "not-found result delivered to client")

	up := upstream.snapshot()
	assert.False(t, containsWrite(up, "contextual_update"), "no upstream injection for an empty result")
	assert.False(t, containsWrite(up, "user_message"), "no trigger for an empty result")

	// No suppression: the next agent reply flows through.
	upstream.push(TextMessage, []byte(`{"type":"agent_response","agent_response_event":{"agent_response":"plain reply"}}`))
	waitFor(t, func() bool {
		return containsWrite(client.snapshot(), "plain reply")
	}, "agent reply forwarded normally")

	finishSession(t, session, client, done)
}

func TestSessionPingPong(t *testing.T) {
	session, client, upstream, done := newTestSession(t, &fakeSearcher{}, alwaysClassifier{false})

	upstream.push(TextMessage, []byte(`{"type":"ping","ping_event":{"event_id":42}}`))
	waitFor(t, func() bool {
		return containsWrite(upstream.snapshot(), `"event_id":42`)
	}, "pong echoed upstream")

	pongs := 0
	for _, w := range upstream.snapshot() {
		if strings.Contains(w, `"pong"`) {
			pongs++
		}
	}
	assert.Equal(t, 1, pongs, "exactly one pong per ping")
	assert.False(t, containsWrite(client.snapshot(), `"ping"`), "pings are not mirrored downstream")

	finishSession(t, session, client, done)
}

func TestSessionInterimTranscriptDoesNotTriggerSearch(t *testing.T) {
	searcher := &fakeSearcher{rendered: "irrelevant"}
	session, client, upstream, done := newTestSession(t, searcher, alwaysClassifier{true})

	upstream.push(TextMessage, []byte(`{"type":"user_transcript","user_transcription_event":{"user_transcript":"where is","is_final":false}}`))
	waitFor(t, func() bool {
		return containsWrite(client.snapshot(), "where is")
	}, "interim transcript mirrored")

	searcher.mu.Lock()
	calls := len(searcher.queries)
	searcher.mu.Unlock()
	assert.Zero(t, calls, "interim transcripts never trigger a search")

	finishSession(t, session, client, done)
}

func TestSessionClientAudioForwardedAsChunk(t *testing.T) {
	session, client, upstream, done := newTestSession(t, &fakeSearcher{}, alwaysClassifier{false})

	client.push(BinaryMessage, []byte{0x01, 0x02, 0x03})
	waitFor(t, func() bool {
		return containsWrite(upstream.snapshot(), "user_audio_chunk")
	}, "binary audio forwarded as base64 chunk")

	assert.True(t, containsWrite(upstream.snapshot(), "AQID"), "payload must be base64 of the raw bytes")

	finishSession(t, session, client, done)
}

func TestSessionDisconnectMidInjection(t *testing.T) {
	searcher := &fakeSearcher{
		rendered: "I found Milk! It's in the Dairy section, located in aisle B3. Whole milk.",
		block:    make(chan struct{}),
	}

	session, client, upstream, done := newTestSession(t, searcher, alwaysClassifier{true})

	upstream.push(TextMessage, []byte(`{"type":"user_transcript","user_transcription_event":{"user_transcript":"where is milk","is_final":true}}`))
	waitFor(t, func() bool {
		searcher.mu.Lock()
		defer searcher.mu.Unlock()
		return len(searcher.queries) == 1
	}, "search started")

	// Client walks away while the search is in flight.
	client.Close()
	close(searcher.block)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("session did not close after mid-injection disconnect")
	}
	assert.Equal(t, StateClosed, session.State())

	// Best-effort upstream delivery still happened.
	waitFor(t, func() bool {
		return containsWrite(upstream.snapshot(), "contextual_update")
	}, "contextual update completed after client disconnect")
	assert.True(t, containsWrite(upstream.snapshot(), "user_message"))

	// The downstream forward was a silent no-op.
	assert.False(t, containsWrite(client.snapshot(), "product_search_result"))
}

func TestSessionConnectFailureReportsError(t *testing.T) {
	client := newFakeConn()
	session := NewSession(client, &fakeSearcher{}, alwaysClassifier{false}, nil, logger.NewNopLogger(), Options{
		Dial: func(ctx context.Context, baseURL, agentId, apiKey string) (Conn, error) {
			return nil, E(KindConnect, "dial_upstream", errors.New("auth rejected"))
		},
	})

	err := session.Run(context.Background())
	require.Error(t, err)
	assert.True(t, IsKind(err, KindConnect))
	assert.True(t, containsWrite(client.snapshot(), `"error"`), "client must see a connect error event")
	assert.Equal(t, StateClosed, session.State())
}

func TestSuppressionExpiresAfterDeadline(t *testing.T) {
	session, client, upstream, done := newTestSession(t, &fakeSearcher{}, alwaysClassifier{false})

	session.mu.Lock()
	session.enrichment = &enrichmentContext{deadline: time.Now().Add(-time.Second)}
	session.mu.Unlock()

	upstream.push(TextMessage, []byte(`{"type":"agent_response","agent_response_event":{"agent_response":"late reply"}}`))
	waitFor(t, func() bool {
		return containsWrite(client.snapshot(), "late reply")
	}, "reply after suppression deadline forwarded")

	session.mu.Lock()
	cleared := session.enrichment == nil
	session.mu.Unlock()
	assert.True(t, cleared, "expired suppression must be cleared")

	finishSession(t, session, client, done)
}
