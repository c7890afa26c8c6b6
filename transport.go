// transport.go: HTTP management transport with connection-failure fallback
//
// The default ManagementTransport speaks the JSON management protocol:
// each operation is POSTed to the controller's /management endpoint and
// the response carries outcome/result/failure-description. Connection
// failures are retried with exponential backoff; a server that answered,
// even with a failure, is never retried - replaying a rejected add is not
// a recovery.
//
// Copyright (c) 2025 AGILira
// Series: AGILira fragment
// SPDX-License-Identifier: MPL-2.0

package creaper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/agilira/go-errors"
)

const maxRetryDelay = 5 * time.Second

// httpTransport implements ManagementTransport over the HTTP management
// endpoint.
type httpTransport struct {
	endpoint  string
	username  string
	password  string
	client    *http.Client
	retries   int
	retryBase time.Duration
}

func newHTTPTransport(config *Config) (*httpTransport, error) {
	u, err := validateControllerURL(config.Controller)
	if err != nil {
		return nil, err
	}
	return &httpTransport{
		endpoint:  strings.TrimRight(u.String(), "/") + "/management",
		username:  config.Username,
		password:  config.Password,
		client:    &http.Client{Timeout: config.Timeout},
		retries:   config.ConnectRetries,
		retryBase: config.RetryInterval,
	}, nil
}

// Execute submits a single operation.
func (t *httpTransport) Execute(ctx context.Context, op Operation) (Result, error) {
	return t.roundTrip(ctx, encodeOperation(op))
}

// ExecuteBatch submits the steps as one composite operation.
func (t *httpTransport) ExecuteBatch(ctx context.Context, steps []Operation) (Result, error) {
	encoded := make([]map[string]any, len(steps))
	for i, op := range steps {
		encoded[i] = encodeOperation(op)
	}
	body := map[string]any{
		"operation": OpComposite,
		"address":   []any{},
		"steps":     encoded,
	}
	return t.roundTrip(ctx, body)
}

// Close releases pooled connections.
func (t *httpTransport) Close() error {
	t.client.CloseIdleConnections()
	return nil
}

// roundTrip encodes, posts with retries and decodes one protocol exchange.
func (t *httpTransport) roundTrip(ctx context.Context, body map[string]any) (Result, error) {
	payload, err := json.Marshal(body)
	if err != nil {
		return Result{}, errors.Wrap(err, ErrCodeTransportFailed, "failed to encode management request")
	}

	data, err := t.postWithRetries(ctx, payload)
	if err != nil {
		return Result{}, err
	}

	var resp wireResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return Result{}, errors.Wrap(err, ErrCodeTransportFailed, "failed to decode management response").
			WithContext("endpoint", t.endpoint)
	}
	if resp.Outcome == "" {
		return Result{}, errors.New(ErrCodeTransportFailed, "management response carries no outcome").
			WithContext("endpoint", t.endpoint)
	}
	return resp.toResult(), nil
}

// postWithRetries performs the POST, retrying connection-level failures
// with exponential backoff. Responses with a decodable protocol body are
// returned to the caller whatever the HTTP status, because failed
// operations arrive as non-2xx responses that still carry an outcome.
func (t *httpTransport) postWithRetries(ctx context.Context, payload []byte) ([]byte, error) {
	var lastErr error

	for attempt := 0; attempt <= t.retries; attempt++ {
		if attempt > 0 {
			// Exponential backoff: wait retryBase * 2^(attempt-1), capped
			delay := t.retryBase * time.Duration(1<<(attempt-1))
			if delay > maxRetryDelay || delay <= 0 {
				delay = maxRetryDelay
			}

			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), ErrCodeTransportFailed, "canceled during retry delay").
					WithContext("endpoint", t.endpoint)
			}
		}

		data, retryable, err := t.postOnce(ctx, payload)
		if err == nil {
			return data, nil
		}
		lastErr = err
		if !retryable {
			break
		}
	}

	return nil, errors.Wrap(lastErr, ErrCodeTransportFailed, "management endpoint unreachable").
		WithContext("endpoint", t.endpoint).
		WithContext("attempts", t.retries+1)
}

// postOnce performs a single POST. The second return reports whether the
// failure is worth retrying.
func (t *httpTransport) postOnce(ctx context.Context, payload []byte) ([]byte, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, t.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, false, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if t.username != "" {
		req.SetBasicAuth(t.username, t.password)
	}

	resp, err := t.client.Do(req)
	if err != nil {
		// Connection refused, DNS failure, timeout: worth retrying unless
		// the caller's context is gone.
		return nil, ctx.Err() == nil, err
	}
	defer func() {
		_ = resp.Body.Close()
	}()

	data, err := io.ReadAll(io.LimitReader(resp.Body, 8<<20))
	if err != nil {
		return nil, true, err
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, false, fmt.Errorf("management endpoint rejected credentials (status %d)", resp.StatusCode)
	case looksLikeProtocolBody(data):
		return data, false, nil
	case resp.StatusCode >= 500:
		return nil, true, fmt.Errorf("management endpoint returned status %d", resp.StatusCode)
	default:
		return nil, false, fmt.Errorf("management endpoint returned status %d without a protocol body", resp.StatusCode)
	}
}

// looksLikeProtocolBody reports whether the payload decodes to an object
// with an outcome field.
func looksLikeProtocolBody(data []byte) bool {
	var probe struct {
		Outcome string `json:"outcome"`
	}
	return json.Unmarshal(data, &probe) == nil && probe.Outcome != ""
}

// encodeOperation renders an operation as a protocol request body. The
// address is a list of single-entry {type: name} objects and attributes
// are flattened into the top level.
func encodeOperation(op Operation) map[string]any {
	address := make([]any, 0, op.Address.Size())
	for _, seg := range op.Address.Segments() {
		address = append(address, map[string]any{seg.Type: seg.Name})
	}
	body := map[string]any{
		"operation": op.Name,
		"address":   address,
	}
	for _, a := range op.Values.Pairs() {
		body[a.Name] = a.Value
	}
	return body
}

// wireResponse is the decoded protocol answer.
type wireResponse struct {
	Outcome            string `json:"outcome"`
	Result             any    `json:"result"`
	FailureDescription any    `json:"failure-description"`
	FailedStep         *int   `json:"failed-step"`
}

func (w wireResponse) toResult() Result {
	res := Result{
		Outcome:    w.Outcome,
		Value:      w.Result,
		FailedStep: -1,
	}
	if w.FailureDescription != nil {
		res.FailureDescription = fmt.Sprint(w.FailureDescription)
	}
	if w.FailedStep != nil {
		res.FailedStep = *w.FailedStep
	}
	return res
}
