package relay

import (
	"encoding/json"
	"fmt"
)

// Provider event types consumed from the upstream socket.
const (
	EventConversationInit = "conversation_initiation_metadata"
	EventUserTranscript   = "user_transcript"
	EventAgentResponse    = "agent_response"
	EventInterruption     = "interruption"
	EventVadScore         = "vad_score"
	EventAudio            = "audio"
	EventPing             = "ping"
)

// ProviderEvent is one decoded upstream frame. Raw keeps the original bytes
// so forwarding downstream never re-encodes.
type ProviderEvent struct {
	Type string
	Raw  []byte

	ConversationId string
	Transcript     string
	IsFinal        bool
	AgentResponse  string
	PingEventId    int
	VadScore       float64
	AudioBase64    string
}

type providerEnvelope struct {
	Type string `json:"type"`

	ConversationInitiationMetadataEvent *struct {
		ConversationId string `json:"conversation_id"`
	} `json:"conversation_initiation_metadata_event"`

	UserTranscriptionEvent *struct {
		UserTranscript string `json:"user_transcript"`
		IsFinal        *bool  `json:"is_final"`
	} `json:"user_transcription_event"`

	AgentResponseEvent *struct {
		AgentResponse string `json:"agent_response"`
	} `json:"agent_response_event"`

	PingEvent *struct {
		EventId int `json:"event_id"`
	} `json:"ping_event"`

	VadScoreEvent *struct {
		VadScore float64 `json:"vad_score"`
	} `json:"vad_score_event"`

	AudioEvent *struct {
		AudioBase64 string `json:"audio_base_64"`
	} `json:"audio_event"`
}

// ParseProviderEvent decodes an upstream frame into a tagged event. Frames
// without a type discriminator are protocol errors.
func ParseProviderEvent(raw []byte) (*ProviderEvent, error) {
	var env providerEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, E(KindProtocol, "parse_event", err)
	}
	if env.Type == "" {
		return nil, E(KindProtocol, "parse_event", fmt.Errorf("frame missing type discriminator"))
	}

	ev := &ProviderEvent{Type: env.Type, Raw: raw}

	switch env.Type {
	case EventConversationInit:
		if env.ConversationInitiationMetadataEvent != nil {
			ev.ConversationId = env.ConversationInitiationMetadataEvent.ConversationId
		}
	case EventUserTranscript:
		if env.UserTranscriptionEvent != nil {
			ev.Transcript = env.UserTranscriptionEvent.UserTranscript
			// Providers that never mark interim transcripts send the
			// field absent; treat absent as final.
			if env.UserTranscriptionEvent.IsFinal == nil {
				ev.IsFinal = true
			} else {
				ev.IsFinal = *env.UserTranscriptionEvent.IsFinal
			}
		}
	case EventAgentResponse:
		if env.AgentResponseEvent != nil {
			ev.AgentResponse = env.AgentResponseEvent.AgentResponse
		}
	case EventPing:
		if env.PingEvent != nil {
			ev.PingEventId = env.PingEvent.EventId
		}
	case EventVadScore:
		if env.VadScoreEvent != nil {
			ev.VadScore = env.VadScoreEvent.VadScore
		}
	case EventAudio:
		if env.AudioEvent != nil {
			ev.AudioBase64 = env.AudioEvent.AudioBase64
		}
	}

	return ev, nil
}
