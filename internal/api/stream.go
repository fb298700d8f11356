package api

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/gemchat/internal/errors"
	"github.com/diogo/gemchat/internal/models"
)

// Stream is a lazy finite sequence of response chunks. Call Next until it
// returns false, reading each chunk with Current; then check Err to
// distinguish exhaustion from a fault. Close releases the connection.
type Stream interface {
	Next() bool
	Current() models.StreamChunk
	Err() error
	Close() error
}

// streamRequest carries everything needed for one streaming exchange
type streamRequest struct {
	model     models.Model
	system    string
	history   []models.Message
	prompt    string
	webSearch bool
}

// Request payload types for streamGenerateContent
type (
	payloadPart struct {
		Text string `json:"text"`
	}

	payloadContent struct {
		Role  string        `json:"role,omitempty"`
		Parts []payloadPart `json:"parts"`
	}

	payloadTool struct {
		GoogleSearch map[string]any `json:"google_search,omitempty"`
	}

	payload struct {
		SystemInstruction *payloadContent  `json:"system_instruction,omitempty"`
		Contents          []payloadContent `json:"contents"`
		Tools             []payloadTool    `json:"tools,omitempty"`
	}
)

// buildPayload creates the JSON body for the generate request. History roles
// map to the API's "user"/"model" pair.
func buildPayload(req streamRequest) ([]byte, error) {
	if req.prompt == "" {
		return nil, fmt.Errorf("prompt cannot be empty")
	}

	p := payload{}

	if req.system != "" {
		p.SystemInstruction = &payloadContent{
			Parts: []payloadPart{{Text: req.system}},
		}
	}

	for _, msg := range req.history {
		role := "user"
		if msg.Role == models.RoleAssistant {
			role = "model"
		}
		p.Contents = append(p.Contents, payloadContent{
			Role:  role,
			Parts: []payloadPart{{Text: msg.Content}},
		})
	}
	p.Contents = append(p.Contents, payloadContent{
		Role:  "user",
		Parts: []payloadPart{{Text: req.prompt}},
	})

	if req.webSearch {
		p.Tools = []payloadTool{{GoogleSearch: map[string]any{}}}
	}

	return json.Marshal(p)
}

// openStream performs the HTTP request and wraps the response body in an
// SSE stream. A non-200 status is mapped to a structured error before any
// chunk is yielded.
func (c *GeminiClient) openStream(req streamRequest) (*sseStream, error) {
	if c.IsClosed() {
		return nil, fmt.Errorf("client is closed")
	}

	model := req.model
	if model.Name == "" {
		model = c.GetModel()
	}
	endpoint := fmt.Sprintf(models.EndpointStream, model.Name)

	body, err := buildPayload(req)
	if err != nil {
		return nil, fmt.Errorf("failed to build payload: %w", err)
	}

	httpReq, err := http.NewRequest(http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	for key, value := range models.DefaultHeaders() {
		httpReq.Header.Set(key, value)
	}
	httpReq.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, apierrors.NewNetworkError("stream message", endpoint, err)
	}

	if resp.StatusCode != 200 {
		defer func() { _ = resp.Body.Close() }()
		errBody, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		if resp.StatusCode == 401 || resp.StatusCode == 403 {
			return nil, apierrors.NewAuthError(apiErrorMessage(errBody))
		}
		return nil, apierrors.NewAPIError(resp.StatusCode, endpoint, apiErrorMessage(errBody))
	}

	return &sseStream{
		body:    resp.Body,
		scanner: bufio.NewScanner(resp.Body),
	}, nil
}

// apiErrorMessage pulls the error message out of an API error body, falling
// back to the raw body when it is not the documented shape
func apiErrorMessage(body []byte) string {
	if msg := gjson.GetBytes(body, PathErrorMessage); msg.Exists() {
		return msg.String()
	}
	return strings.TrimSpace(string(body))
}

// sseStream consumes "data:" lines from a server-sent-event response body
type sseStream struct {
	body       io.ReadCloser
	scanner    *bufio.Scanner
	current    models.StreamChunk
	text       strings.Builder
	err        error
	done       bool
	onComplete func(text string)
}

var _ Stream = (*sseStream)(nil)

// Next advances to the next chunk. It returns false on exhaustion or fault;
// Err reports which.
func (s *sseStream) Next() bool {
	if s.done {
		return false
	}

	for s.scanner.Scan() {
		line := strings.TrimSpace(s.scanner.Text())
		if !strings.HasPrefix(line, "data:") {
			continue // comments, blank keep-alives
		}

		data := strings.TrimSpace(strings.TrimPrefix(line, "data:"))
		if data == "" {
			continue
		}

		chunk, err := parseChunk([]byte(data))
		if err != nil {
			s.fail(err)
			return false
		}

		s.current = chunk
		s.text.WriteString(chunk.Text)
		return true
	}

	if err := s.scanner.Err(); err != nil {
		s.fail(apierrors.NewStreamError("connection interrupted", err))
		return false
	}

	// Normal exhaustion: commit the accumulated reply to the session
	s.done = true
	if s.onComplete != nil {
		s.onComplete(s.text.String())
	}
	return false
}

// Current returns the chunk most recently produced by Next
func (s *sseStream) Current() models.StreamChunk {
	return s.current
}

// Err returns the fault that terminated the stream, or nil after a
// graceful exhaustion
func (s *sseStream) Err() error {
	return s.err
}

// Close releases the underlying connection. Safe to call more than once.
func (s *sseStream) Close() error {
	if s.body == nil {
		return nil
	}
	body := s.body
	s.body = nil
	s.done = true
	return body.Close()
}

func (s *sseStream) fail(err error) {
	s.err = err
	s.done = true
}

// parseChunk extracts the text delta and grounding citations from one SSE
// data payload. Grounding entries missing either field are dropped here;
// duplicate URIs are left for the consumer to merge.
func parseChunk(data []byte) (models.StreamChunk, error) {
	if !gjson.ValidBytes(data) {
		return models.StreamChunk{}, apierrors.NewParseError("chunk is not valid JSON", "")
	}

	parsed := gjson.ParseBytes(data)

	// Mid-stream error payloads carry an error object instead of candidates
	if errMsg := parsed.Get(PathErrorMessage); errMsg.Exists() {
		code := int(parsed.Get(PathErrorCode).Int())
		return models.StreamChunk{}, apierrors.NewAPIError(code, "stream", errMsg.String())
	}

	if block := parsed.Get(PathBlockReason); block.Exists() && block.String() != "" {
		return models.StreamChunk{}, apierrors.NewStreamError("prompt blocked: "+block.String(), nil)
	}

	var chunk models.StreamChunk

	parsed.Get(PathParts).ForEach(func(_, part gjson.Result) bool {
		chunk.Text += part.Get(PathPartText).String()
		return true
	})

	parsed.Get(PathGroundingChunks).ForEach(func(_, g gjson.Result) bool {
		src := models.Source{
			URI:   g.Get(PathGroundingURI).String(),
			Title: g.Get(PathGroundingTitle).String(),
		}
		if src.Valid() {
			chunk.Sources = append(chunk.Sources, src)
		}
		return true
	})

	return chunk, nil
}
