// Package worklist delivers order events to the modality worklist. Two
// transports exist: an HTTP client for a worklist gateway and a directory
// drop read by the order filler. Both perform a single attempt per call.
package worklist

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"radiology/internal/core/domain/model/worklist"
	"radiology/internal/core/ports"
)

// DefaultTimeout bounds a single send when no timeout is configured.
const DefaultTimeout = 10 * time.Second

// maxReasonLength caps how much of a gateway error body ends up in a reason.
const maxReasonLength = 256

// message is the JSON body sent to the gateway.
type message struct {
	Operation string                `json:"operation"`
	Study     ports.StudyDescriptor `json:"study"`
}

// saveResponse is the optional body of a successful Save.
type saveResponse struct {
	StudyInstanceUID string `json:"studyInstanceUid"`
}

// HTTPTransport sends worklist messages to a gateway over HTTP:
//
//	Save                            POST   /worklists
//	Update, Unvoid, Undiscontinue   PUT    /worklists/{accession}
//	Void, Discontinue               DELETE /worklists/{accession}?reason=void|discontinue
type HTTPTransport struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
}

// NewHTTPTransport creates a transport for the gateway at baseURL. The client
// may be instrumented (e.g. with otelhttp); nil selects a plain client.
func NewHTTPTransport(baseURL string, timeout time.Duration, client *http.Client) *HTTPTransport {
	if client == nil {
		client = &http.Client{}
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPTransport{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: client,
		timeout:    timeout,
	}
}

// Send performs one request. An unreachable gateway is returned as an error;
// an exceeded deadline is OutcomeTimeout and a non-2xx answer is OutcomeFailed.
func (t *HTTPTransport) Send(
	ctx context.Context,
	op worklist.Operation,
	descriptor ports.StudyDescriptor,
) (ports.SendResult, error) {
	if err := op.Validate(); err != nil {
		return ports.SendResult{}, err
	}

	ctx, cancel := context.WithTimeout(ctx, t.timeout)
	defer cancel()

	req, err := t.newRequest(ctx, op, descriptor)
	if err != nil {
		return ports.SendResult{}, err
	}

	resp, err := t.httpClient.Do(req)
	if err != nil {
		if isTimeout(err) {
			return ports.SendResult{
				Outcome: worklist.OutcomeTimeout,
				Reason:  fmt.Sprintf("no answer within %s", t.timeout),
			}, nil
		}
		return ports.SendResult{}, fmt.Errorf("failed to send %s to %s: %w", op, req.URL.Redacted(), err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxReasonLength))
		reason := fmt.Sprintf("gateway answered %d", resp.StatusCode)
		if excerpt := strings.TrimSpace(string(body)); excerpt != "" {
			reason += ": " + excerpt
		}
		return ports.SendResult{Outcome: worklist.OutcomeFailed, Reason: reason}, nil
	}

	result := ports.SendResult{Outcome: worklist.OutcomeOK}
	if op == worklist.Save {
		var answer saveResponse
		// The gateway may answer with an empty body.
		if err := json.NewDecoder(resp.Body).Decode(&answer); err == nil {
			result.StudyInstanceUID = strings.TrimSpace(answer.StudyInstanceUID)
		}
	}
	return result, nil
}

func (t *HTTPTransport) newRequest(
	ctx context.Context,
	op worklist.Operation,
	descriptor ports.StudyDescriptor,
) (*http.Request, error) {
	if op != worklist.Save && descriptor.AccessionNumber == "" {
		return nil, fmt.Errorf("%s requires an accession number", op)
	}
	item := t.baseURL + "/worklists/" + url.PathEscape(descriptor.AccessionNumber)

	var method, target string
	switch op {
	case worklist.Save:
		method, target = http.MethodPost, t.baseURL+"/worklists"
	case worklist.Update, worklist.Unvoid, worklist.Undiscontinue:
		method, target = http.MethodPut, item
	case worklist.Void:
		method, target = http.MethodDelete, item+"?reason=void"
	case worklist.Discontinue:
		method, target = http.MethodDelete, item+"?reason=discontinue"
	default:
		return nil, fmt.Errorf("unsupported operation %s", op)
	}

	payload, err := json.Marshal(message{Operation: op.String(), Study: descriptor})
	if err != nil {
		return nil, fmt.Errorf("failed to encode %s message: %w", op, err)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request to %s: %w", target, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	return req, nil
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}
