package faceclient

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Candidate is a student the oracle may match against.
type Candidate struct {
	StudentID string `json:"student_id"`
	Encoding  []byte `json:"encoding,omitempty"`
}

// Match is a successful identification.
type Match struct {
	StudentID  string  `json:"student_id"`
	Confidence float64 `json:"confidence"` // 0-100
}

// Oracle is the biometric collaborator. Neither implementation guarantees
// determinism; the core treats both as black boxes.
type Oracle interface {
	// Identify returns the matched candidate and confidence, or nil when
	// no candidate matches.
	Identify(ctx context.Context, image []byte, candidates []Candidate) (*Match, error)
	// Encode produces an opaque face encoding, or nil when no face is found.
	Encode(ctx context.Context, image []byte) ([]byte, error)
}

// Select picks the oracle implementation once at startup; there is no
// per-call simulation branching.
func Select(baseURL string, simulate bool) Oracle {
	if simulate {
		return &Stub{}
	}
	return NewClient(baseURL)
}

// Client calls a face recognition microservice over HTTP.
type Client struct {
	BaseURL string
	HTTP    *http.Client
}

// NewClient creates a client with a generous timeout; face processing can
// take time.
func NewClient(baseURL string) *Client {
	return &Client{
		BaseURL: baseURL,
		HTTP:    &http.Client{Timeout: 30 * time.Second},
	}
}

type identifyRequest struct {
	Image      string      `json:"image"`
	Candidates []Candidate `json:"candidates"`
}

type identifyResponse struct {
	StudentID  string  `json:"student_id"`
	Confidence float64 `json:"confidence"`
	Recognized bool    `json:"recognized"`
}

// Identify posts the image and candidate set to the face service.
func (c *Client) Identify(ctx context.Context, image []byte, candidates []Candidate) (*Match, error) {
	var resp identifyResponse
	if err := c.post(ctx, "/identify", identifyRequest{
		Image:      base64.StdEncoding.EncodeToString(image),
		Candidates: candidates,
	}, &resp); err != nil {
		return nil, err
	}
	if !resp.Recognized || resp.StudentID == "" {
		return nil, nil
	}
	return &Match{StudentID: resp.StudentID, Confidence: resp.Confidence}, nil
}

type encodeResponse struct {
	Encoding string `json:"encoding"`
}

// Encode requests a face encoding for the image.
func (c *Client) Encode(ctx context.Context, image []byte) ([]byte, error) {
	var resp encodeResponse
	if err := c.post(ctx, "/encode", map[string]string{
		"image": base64.StdEncoding.EncodeToString(image),
	}, &resp); err != nil {
		return nil, err
	}
	if resp.Encoding == "" {
		return nil, nil
	}
	return base64.StdEncoding.DecodeString(resp.Encoding)
}

// Health checks the face service.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.BaseURL+"/health", nil)
	if err != nil {
		return err
	}
	resp, err := c.HTTP.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("face service unhealthy: %s", resp.Status)
	}
	return nil
}

func (c *Client) post(ctx context.Context, path string, body, out any) error {
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.BaseURL+path, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("face service request failed: %w", err)
	}
	defer resp.Body.Close()
	data, _ := io.ReadAll(resp.Body)
	if resp.StatusCode >= 300 {
		return fmt.Errorf("face service %s returned %d: %s", path, resp.StatusCode, string(data))
	}
	return json.Unmarshal(data, out)
}
