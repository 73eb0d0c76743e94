package relay

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseProviderEvent(t *testing.T) {
	tests := []struct {
		name  string
		raw   string
		check func(t *testing.T, ev *ProviderEvent)
	}{
		{
			name: "conversation initiation metadata",
			raw:  `{"type":"conversation_initiation_metadata","conversation_initiation_metadata_event":{"conversation_id":"abc123"}}`,
			check: func(t *testing.T, ev *ProviderEvent) {
				assert.Equal(t, EventConversationInit, ev.Type)
				assert.Equal(t, "abc123", ev.ConversationId)
			},
		},
		{
			name: "final user transcript",
			raw:  `{"type":"user_transcript","user_transcription_event":{"user_transcript":"where is milk","is_final":true}}`,
			check: func(t *testing.T, ev *ProviderEvent) {
				assert.Equal(t, "where is milk", ev.Transcript)
				assert.True(t, ev.IsFinal)
			},
		},
		{
			name: "interim user transcript",
			raw:  `{"type":"user_transcript","user_transcription_event":{"user_transcript":"where is","is_final":false}}`,
			check: func(t *testing.T, ev *ProviderEvent) {
				assert.False(t, ev.IsFinal)
			},
		},
		{
			name: "transcript without finality marker defaults to final",
			raw:  `{"type":"user_transcript","user_transcription_event":{"user_transcript":"where is milk"}}`,
			check: func(t *testing.T, ev *ProviderEvent) {
				assert.True(t, ev.IsFinal)
			},
		},
		{
			name: "agent response",
			raw:  `{"type":"agent_response","agent_response_event":{"agent_response":"It is in aisle B3."}}`,
			check: func(t *testing.T, ev *ProviderEvent) {
				assert.Equal(t, "It is in aisle B3.", ev.AgentResponse)
			},
		},
		{
			name: "ping carries correlation id",
			raw:  `{"type":"ping","ping_event":{"event_id":42}}`,
			check: func(t *testing.T, ev *ProviderEvent) {
				assert.Equal(t, 42, ev.PingEventId)
			},
		},
		{
			name: "audio chunk",
			raw:  `{"type":"audio","audio_event":{"audio_base_64":"UklGRg=="}}`,
			check: func(t *testing.T, ev *ProviderEvent) {
				assert.Equal(t, "UklGRg==", ev.AudioBase64)
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev, err := ParseProviderEvent([]byte(tt.raw))
			require.NoError(t, err)
			assert.Equal(t, []byte(tt.raw), ev.Raw)
			tt.check(t, ev)
		})
	}
}

func TestParseProviderEventErrors(t *testing.T) {
	_, err := ParseProviderEvent([]byte("not json"))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindProtocol))

	_, err = ParseProviderEvent([]byte(`{"foo":"bar"}`))
	require.Error(t, err)
	assert.True(t, IsKind(err, KindProtocol))
}

func TestNewInitiationMessage(t *testing.T) {
	data := NewInitiationMessage(AgentConfig{
		Prompt:       "You are a store assistant.",
		FirstMessage: "Hi there!",
		Language:     "en",
	})
	s := string(data)
	assert.Contains(t, s, `"type":"conversation_initiation_client_data"`)
	assert.Contains(t, s, `"prompt":{"prompt":"You are a store assistant."}`)
	assert.Contains(t, s, `"first_message":"Hi there!"`)
	assert.Contains(t, s, `"language":"en"`)
}

func TestNewInitiationMessageWithoutOverride(t *testing.T) {
	data := NewInitiationMessage(AgentConfig{})
	assert.Equal(t, `{"type":"conversation_initiation_client_data"}`, string(data))
}

func TestNewPongMessageEchoesToken(t *testing.T) {
	assert.JSONEq(t, `{"type":"pong","event_id":42}`, string(NewPongMessage(42)))
}
