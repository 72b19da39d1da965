package api

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
)

// statusPending marks a validation event that is not yet terminal. Any
// other non-empty status resolves the stream.
const statusPending = "pending"

// Validate posts body to path and resolves the validation endpoint's
// dual-path response: auto-approved transactions come back as a plain
// JSON envelope, while transactions pending human approval arrive as an
// SSE stream that is consumed until a terminal status event.
//
// The wait is bounded by the client's validation timeout; expiry cancels
// the in-flight read and fails the call. The response body is closed on
// every exit path.
func (c *Client) Validate(ctx context.Context, path string, body any) Result {
	ctx, cancel := context.WithTimeout(ctx, c.validationTimeout)
	defer cancel()

	req, err := c.newRequest(ctx, http.MethodPost, path, body, nil)
	if err != nil {
		return failure(CodeNetworkError, "failed to build request: %v", err)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return failure(CodeNetworkError, "request to %s failed: %v", path, err)
	}
	defer resp.Body.Close()

	contentType := resp.Header.Get("Content-Type")
	switch {
	case strings.Contains(contentType, "application/json"):
		return c.decode(resp)
	case strings.Contains(contentType, "text/event-stream"):
		return c.consumeStream(ctx, resp.Body)
	default:
		return failure(CodeStreamingError, "unexpected content type %q from validation endpoint", contentType)
	}
}

// consumeStream reads SSE frames until a terminal status event arrives.
// Malformed event payloads are skipped; pending events keep the loop
// reading. The scanner buffers partial lines, so an event split across
// chunks resolves once the rest of it arrives.
func (c *Client) consumeStream(ctx context.Context, body io.Reader) Result {
	scanner := bufio.NewScanner(body)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	for scanner.Scan() {
		line := scanner.Text()
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		payload := strings.TrimPrefix(line, "data: ")

		var event struct {
			Status string `json:"status"`
		}
		if err := json.Unmarshal([]byte(payload), &event); err != nil {
			c.log.Debug("skipping malformed validation event", "error", err)
			continue
		}

		if event.Status != "" && event.Status != statusPending {
			return success(json.RawMessage(payload))
		}
	}

	if ctx.Err() != nil {
		return failure(CodeStreamingError, "validation timed out after %s waiting for a final status", c.validationTimeout)
	}
	if err := scanner.Err(); err != nil {
		return failure(CodeStreamingError, "error reading validation stream: %v", err)
	}
	return failure(CodeStreamingError, "validation stream ended without a final status")
}
