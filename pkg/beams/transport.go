package beams

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// SDKVersion is reported to the service in the library header.
const SDKVersion = "1.0.0"

const (
	libraryHeader = "X-Pusher-Library"
	libraryName   = "pusher-beams-go"

	maxErrorBody = 1 << 16 // 64 KiB
)

// do executes rd against the configured endpoint. A 2xx status yields the
// decoded JSON body; anything else is an ErrHTTP. A body that cannot be
// encoded as JSON is an ErrInvalidType and is never sent. Nothing is retried.
func (c *Client) do(ctx context.Context, rd requestDescriptor) (Response, error) {
	var bodyReader io.Reader
	if rd.body != nil {
		b, err := json.Marshal(rd.body)
		if err != nil {
			return nil, &Error{Kind: ErrInvalidType, Msg: "publishRequest must be JSON-encodable", Err: err}
		}
		bodyReader = bytes.NewReader(b)
	}

	url := c.cfg.Endpoint + rd.path
	req, err := http.NewRequestWithContext(ctx, rd.method, url, bodyReader)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Msg: "build request", Err: err}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.SecretKey)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set(libraryHeader, libraryName+" "+SDKVersion)

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Warn("beams request failed",
			zap.String("method", rd.method),
			zap.String("path", rd.path),
			zap.Error(err),
		)
		return nil, &Error{Kind: ErrTransport, Msg: fmt.Sprintf("%s %s failed", rd.method, rd.path), Err: err}
	}
	defer resp.Body.Close()

	c.logger.Debug("beams request",
		zap.String("method", rd.method),
		zap.String("path", rd.path),
		zap.Int("status", resp.StatusCode),
		zap.Duration("latency", time.Since(start)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		c.logger.Warn("beams request rejected",
			zap.String("method", rd.method),
			zap.String("path", rd.path),
			zap.Int("status", resp.StatusCode),
		)
		return nil, &Error{
			Kind:       ErrHTTP,
			Msg:        fmt.Sprintf("Response was %d", resp.StatusCode),
			StatusCode: resp.StatusCode,
			Body:       string(body),
		}
	}

	respBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{Kind: ErrTransport, Msg: "read response", Err: err}
	}
	result := Response{}
	if len(bytes.TrimSpace(respBytes)) == 0 {
		return result, nil
	}
	if err := json.Unmarshal(respBytes, &result); err != nil {
		return nil, &Error{Kind: ErrTransport, Msg: "decode response", Err: err}
	}
	return result, nil
}
