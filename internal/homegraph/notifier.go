package homegraph

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

// defaultRequestTimeout bounds a single requestSync call when the caller
// supplies no deadline of its own.
const defaultRequestTimeout = 10 * time.Second

// requestSyncPath is the platform endpoint for triggering a re-SYNC.
const requestSyncPath = "/v1/devices:requestSync"

// Notifier posts requestSync calls to the device graph endpoint.
//
// Thread Safety: all methods are safe for concurrent use.
type Notifier struct {
	url         string
	apiKey      string
	agentUserID string
	httpClient  *http.Client
}

// New creates a notifier against the given base URL. apiKey is passed as
// the key query parameter, matching the platform's API-key auth scheme.
func New(baseURL, apiKey, agentUserID string) *Notifier {
	return &Notifier{
		url:         strings.TrimRight(baseURL, "/"),
		apiKey:      apiKey,
		agentUserID: agentUserID,
		httpClient: &http.Client{
			Timeout: defaultRequestTimeout,
		},
	}
}

// requestSyncBody is the JSON body of a requestSync call.
type requestSyncBody struct {
	AgentUserID string `json:"agentUserId"`
	Async       bool   `json:"async"`
}

// RequestSync asks the platform to re-fetch the device list. The call is
// async on the platform side; a 200 means the request was accepted, not
// that the re-SYNC completed.
func (n *Notifier) RequestSync(ctx context.Context) error {
	body, err := json.Marshal(requestSyncBody{AgentUserID: n.agentUserID, Async: true})
	if err != nil {
		return fmt.Errorf("%w: encode body: %w", ErrRequestFailed, err)
	}

	url := n.url + requestSyncPath
	if n.apiKey != "" {
		url += "?key=" + n.apiKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrRequestFailed, err)
	}
	defer resp.Body.Close()
	// Drain body to allow connection reuse
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: HTTP %d", ErrRequestFailed, resp.StatusCode)
	}
	return nil
}
