package delivery

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/marcelsud/webhook-dispatch/webhook"
	"github.com/marcelsud/webhook-dispatch/webhook/payload"
	"github.com/marcelsud/webhook-dispatch/webhook/signature"
)

const (
	UserAgent = "webhook-dispatch/1.0"

	HeaderEvent     = "X-Event"
	HeaderSignature = "X-Signature"
	HeaderDelivery  = "X-Delivery"
	HeaderTimestamp = "X-Timestamp"
	HeaderAttempt   = "X-Attempt"

	DefaultTimeout = 30 * time.Second

	maxResponseBody = 4 << 10
	maxDrain        = 64 << 10
)

// Result is the raw HTTP outcome of one delivery attempt
type Result struct {
	StatusCode int
	Duration   time.Duration
	Body       string
}

// Sender signs envelopes and posts them to subscription endpoints
type Sender struct {
	client  *http.Client
	timeout time.Duration
}

// NewSender creates a sender; a nil client uses a dedicated default client
func NewSender(client *http.Client, timeout time.Duration) *Sender {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Sender{client: client, timeout: timeout}
}

/* Send posts the event to the subscription endpoint
 * The envelope is encoded once; the same bytes are signed and transmitted
 * Any transport error or non-2xx status is returned as a *webhook.DeliveryError
 */
func (s *Sender) Send(ctx context.Context, sub webhook.Subscription, job webhook.Job) (Result, error) {
	body, err := payload.New(job.Event, sub).Bytes()
	if err != nil {
		return Result{}, &webhook.DeliveryError{Err: fmt.Errorf("encoding envelope: %w", err)}
	}

	ctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, sub.URL, bytes.NewReader(body))
	if err != nil {
		return Result{}, &webhook.DeliveryError{Err: fmt.Errorf("building request: %w", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set(HeaderEvent, job.Event.Type)
	req.Header.Set(HeaderSignature, signature.Sign(body, signature.Key(sub.Secret)))
	req.Header.Set(HeaderDelivery, job.ID)
	req.Header.Set(HeaderTimestamp, payload.FormatTimestamp(job.Event.Timestamp))
	req.Header.Set(HeaderAttempt, strconv.Itoa(job.Attempt))

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return Result{Duration: time.Since(start)}, &webhook.DeliveryError{Err: err}
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	_, _ = io.CopyN(io.Discard, resp.Body, maxDrain)

	result := Result{
		StatusCode: resp.StatusCode,
		Duration:   time.Since(start),
		Body:       string(raw),
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return result, &webhook.DeliveryError{StatusCode: resp.StatusCode}
	}
	return result, nil
}
