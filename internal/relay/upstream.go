package relay

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/gorilla/websocket"
)

// DialFunc opens the upstream provider socket. Swappable so tests can hand
// the session a fake peer.
type DialFunc func(ctx context.Context, baseURL, agentId, apiKey string) (Conn, error)

const dialTimeout = 10 * time.Second

// DialElevenLabs connects to the ConvAI websocket endpoint for the given
// agent, authenticating with the xi-api-key header.
func DialElevenLabs(ctx context.Context, baseURL, agentId, apiKey string) (Conn, error) {
	endpoint := fmt.Sprintf("%s?agent_id=%s", baseURL, url.QueryEscape(agentId))

	header := http.Header{}
	header.Set("xi-api-key", apiKey)

	dialer := websocket.Dialer{HandshakeTimeout: dialTimeout}
	conn, resp, err := dialer.DialContext(ctx, endpoint, header)
	if err != nil {
		if resp != nil {
			resp.Body.Close()
			err = fmt.Errorf("%w (status %s)", err, resp.Status)
		}
		return nil, E(KindConnect, "dial_upstream", err)
	}
	if resp != nil {
		resp.Body.Close()
	}

	return conn, nil
}
