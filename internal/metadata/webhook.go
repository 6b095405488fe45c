package metadata

// WebhookRetry defines retry behaviour for async webhook delivery.
type WebhookRetry struct {
	MaxAttempts int    `json:"max_attempts"`
	Backoff     string `json:"backoff"` // "exponential" or "linear"
}

// Webhook defines an HTTP callout fired when a form receives a submission.
type Webhook struct {
	ID        string            `json:"id"`
	URL       string            `json:"url"`
	Method    string            `json:"method"` // POST, PUT, PATCH
	Headers   map[string]string `json:"headers,omitempty"`
	Condition string            `json:"condition,omitempty"` // expression; empty = always fire
	Retry     WebhookRetry      `json:"retry"`
	Active    bool              `json:"active"`
}
