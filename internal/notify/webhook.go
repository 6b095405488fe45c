// Package notify delivers accepted submissions to configured outbound
// webhooks. Delivery is fire-and-forget with bounded retry; anything
// richer (spreadsheet or Airtable sync) plugs in behind the Notifier
// interface.
package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/google/uuid"

	"formsmith-backend/internal/metadata"
)

// Payload is the JSON body sent to webhook endpoints.
type Payload struct {
	Event          string         `json:"event"`
	Form           string         `json:"form"`
	FormID         string         `json:"form_id"`
	SubmissionID   string         `json:"submission_id"`
	Answers        map[string]any `json:"answers"`
	Mapped         map[string]any `json:"mapped,omitempty"`
	Timestamp      string         `json:"timestamp"`
	IdempotencyKey string         `json:"idempotency_key"`
}

// BuildPayload constructs the payload for a webhook delivery.
func BuildPayload(form *metadata.Form, submissionID string, answers, mapped map[string]any) *Payload {
	return &Payload{
		Event:          "submission.accepted",
		Form:           form.Slug,
		FormID:         form.ID,
		SubmissionID:   submissionID,
		Answers:        answers,
		Mapped:         mapped,
		Timestamp:      time.Now().UTC().Format(time.RFC3339),
		IdempotencyKey: "wh_" + uuid.New().String(),
	}
}

// Notifier delivers a payload to each active, matching webhook.
type Notifier interface {
	Notify(ctx context.Context, hooks []metadata.Webhook, payload *Payload)
}

// WebhookNotifier posts payloads over HTTP, asynchronously, with bounded
// retry and backoff per webhook configuration.
type WebhookNotifier struct {
	client *http.Client

	mu    sync.Mutex
	cache map[string]*vm.Program
}

func NewWebhookNotifier() *WebhookNotifier {
	return &WebhookNotifier{
		client: &http.Client{Timeout: 30 * time.Second},
		cache:  make(map[string]*vm.Program),
	}
}

func (n *WebhookNotifier) Notify(_ context.Context, hooks []metadata.Webhook, payload *Payload) {
	for _, hook := range hooks {
		if !hook.Active {
			continue
		}
		ok, err := n.conditionMatches(hook, payload)
		if err != nil {
			log.Printf("WARN: webhook %s condition error: %v", hook.ID, err)
			continue
		}
		if !ok {
			continue
		}
		// Delivery is detached from the request lifecycle.
		go n.deliver(hook, payload)
	}
}

func (n *WebhookNotifier) deliver(hook metadata.Webhook, payload *Payload) {
	body, err := json.Marshal(payload)
	if err != nil {
		log.Printf("ERROR: webhook %s: marshal payload: %v", hook.ID, err)
		return
	}

	attempts := hook.Retry.MaxAttempts
	if attempts <= 0 {
		attempts = 1
	}

	for attempt := 1; attempt <= attempts; attempt++ {
		if err := n.post(hook, body); err == nil {
			return
		} else if attempt == attempts {
			log.Printf("ERROR: webhook %s exhausted %d attempts: %v", hook.ID, attempts, err)
			return
		}
		time.Sleep(backoff(hook.Retry.Backoff, attempt))
	}
}

func (n *WebhookNotifier) post(hook metadata.Webhook, body []byte) error {
	method := hook.Method
	if method == "" {
		method = http.MethodPost
	}

	req, err := http.NewRequest(method, hook.URL, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range ResolveHeaders(hook.Headers) {
		req.Header.Set(k, v)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, resp.Body)

	if resp.StatusCode >= 400 {
		return &DeliveryError{Status: resp.StatusCode}
	}
	return nil
}

// DeliveryError reports a non-2xx webhook response.
type DeliveryError struct {
	Status int
}

func (e *DeliveryError) Error() string {
	return http.StatusText(e.Status)
}

// conditionMatches evaluates a webhook's condition expression against the
// payload. An empty condition always matches.
func (n *WebhookNotifier) conditionMatches(hook metadata.Webhook, payload *Payload) (bool, error) {
	if hook.Condition == "" {
		return true, nil
	}

	n.mu.Lock()
	prog, ok := n.cache[hook.Condition]
	n.mu.Unlock()
	if !ok {
		var err error
		prog, err = expr.Compile(hook.Condition, expr.AsBool())
		if err != nil {
			return false, err
		}
		n.mu.Lock()
		n.cache[hook.Condition] = prog
		n.mu.Unlock()
	}

	result, err := expr.Run(prog, map[string]any{
		"answers": payload.Answers,
		"mapped":  payload.Mapped,
		"form":    payload.Form,
	})
	if err != nil {
		return false, err
	}
	matched, _ := result.(bool)
	return matched, nil
}

// maxBackoff caps the delay between delivery attempts; without it a
// large configured attempt count overflows the shifted duration.
const maxBackoff = 5 * time.Minute

func backoff(kind string, attempt int) time.Duration {
	base := time.Second
	if kind == "exponential" {
		shift := attempt - 1
		if shift > 8 {
			shift = 8
		}
		d := base << shift
		if d > maxBackoff {
			return maxBackoff
		}
		return d
	}
	d := base * time.Duration(attempt)
	if d > maxBackoff {
		return maxBackoff
	}
	return d
}

// ResolveHeaders replaces {{env.VAR_NAME}} in header values with os env values.
func ResolveHeaders(headers map[string]string) map[string]string {
	resolved := make(map[string]string, len(headers))
	for k, v := range headers {
		resolved[k] = resolveEnvVars(v)
	}
	return resolved
}

func resolveEnvVars(s string) string {
	for {
		start := strings.Index(s, "{{env.")
		if start == -1 {
			return s
		}
		end := strings.Index(s[start:], "}}")
		if end == -1 {
			return s
		}
		end += start
		varName := s[start+6 : end]
		s = s[:start] + os.Getenv(varName) + s[end+2:]
	}
}
