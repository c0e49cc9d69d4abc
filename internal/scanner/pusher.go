package scanner

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"sync"
	"time"
)

// Pusher is the mobile side of the relay: it fires one-shot HTTP pushes for
// each accepted decode. A payload identical to the previous one inside the
// cooldown window is dropped before any I/O happens, guarding against the
// camera re-detecting the same physical code across consecutive frames.
type Pusher struct {
	baseURL  string
	token    string
	cooldown time.Duration
	client   *http.Client

	// now is swappable for tests.
	now func() time.Time

	mu          sync.Mutex
	lastPayload string
	lastAt      time.Time
}

// NewPusher creates a pusher for the relay at baseURL and the given pairing
// token.
func NewPusher(baseURL, token string, cooldown time.Duration) *Pusher {
	return &Pusher{
		baseURL:  baseURL,
		token:    token,
		cooldown: cooldown,
		client:   &http.Client{Timeout: 10 * time.Second},
		now:      time.Now,
	}
}

type pushRequest struct {
	Data string `json:"data"`
}

// Link signals the desktop that this device has loaded its capture page.
// The sentinel bypasses the cooldown check.
func (p *Pusher) Link(ctx context.Context) error {
	return p.post(ctx, LinkedSentinel)
}

// Push sends a decoded payload to the relay. It reports accepted=false when
// the payload was suppressed by the cooldown window; a transport or HTTP
// failure is returned as err with accepted=true, since the decode itself
// was accepted and the user must rescan to retry.
func (p *Pusher) Push(ctx context.Context, payload string) (accepted bool, err error) {
	now := p.now()

	p.mu.Lock()
	if payload == p.lastPayload && now.Sub(p.lastAt) < p.cooldown {
		p.mu.Unlock()
		return false, nil
	}
	p.lastPayload = payload
	p.lastAt = now
	p.mu.Unlock()

	return true, p.post(ctx, payload)
}

func (p *Pusher) post(ctx context.Context, payload string) error {
	body, err := json.Marshal(pushRequest{Data: payload})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/api/v1/scanner/push/%s", p.baseURL, p.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("relay push failed: %s", resp.Status)
	}
	return nil
}
