package relay

import "encoding/json"

// AgentConfig carries the persona override sent in the initiation message.
// Zero-valued fields are omitted so the provider keeps its dashboard defaults.
type AgentConfig struct {
	Prompt       string
	FirstMessage string
	Language     string
}

type promptOverride struct {
	Prompt string `json:"prompt"`
}

type agentOverride struct {
	Prompt       *promptOverride `json:"prompt,omitempty"`
	FirstMessage string          `json:"first_message,omitempty"`
	Language     string          `json:"language,omitempty"`
}

type conversationConfigOverride struct {
	Agent *agentOverride `json:"agent,omitempty"`
}

type initiationMessage struct {
	Type                       string                      `json:"type"`
	ConversationConfigOverride *conversationConfigOverride `json:"conversation_config_override,omitempty"`
}

// NewInitiationMessage builds the conversation_initiation_client_data frame,
// the required first message after the upstream socket opens.
func NewInitiationMessage(cfg AgentConfig) []byte {
	msg := initiationMessage{Type: "conversation_initiation_client_data"}

	agent := &agentOverride{
		FirstMessage: cfg.FirstMessage,
		Language:     cfg.Language,
	}
	if cfg.Prompt != "" {
		agent.Prompt = &promptOverride{Prompt: cfg.Prompt}
	}
	if agent.Prompt != nil || agent.FirstMessage != "" || agent.Language != "" {
		msg.ConversationConfigOverride = &conversationConfigOverride{Agent: agent}
	}

	data, _ := json.Marshal(msg)
	return data
}

func NewPongMessage(eventId int) []byte {
	data, _ := json.Marshal(map[string]interface{}{
		"type":     "pong",
		"event_id": eventId,
	})
	return data
}

func NewContextualUpdate(text string) []byte {
	data, _ := json.Marshal(map[string]string{
		"type": "contextual_update",
		"text": text,
	})
	return data
}

func NewUserMessage(text string) []byte {
	data, _ := json.Marshal(map[string]string{
		"type": "user_message",
		"text": text,
	})
	return data
}

func NewAudioChunk(base64Audio string) []byte {
	data, _ := json.Marshal(map[string]string{
		"user_audio_chunk": base64Audio,
	})
	return data
}

// NewSearchResultMessage is the synthesized downstream event carrying the
// outcome of a triggered product search.
func NewSearchResultMessage(query, rendered string) []byte {
	data, _ := json.Marshal(map[string]string{
		"type":    "product_search_result",
		"query":   query,
		"results": rendered,
	})
	return data
}

// NewErrorMessage is sent downstream on fatal session errors, while the
// client socket is still open.
func NewErrorMessage(message string) []byte {
	data, _ := json.Marshal(map[string]string{
		"error": message,
	})
	return data
}
