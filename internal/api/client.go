package api

import (
	"fmt"
	"sync"
	"time"

	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"

	apierrors "github.com/diogo/gemchat/internal/errors"
	"github.com/diogo/gemchat/internal/models"
)

// GeminiClientInterface defines the client operations consumed by the
// commands and TUI layers
type GeminiClientInterface interface {
	StartChat(opts ...SessionOption) ChatSessionInterface
	GetModel() models.Model
	SetModel(model models.Model)
	Close()
	IsClosed() bool
}

// ChatSessionInterface defines the chat session operations needed by
// consumers of a conversation
type ChatSessionInterface interface {
	StreamMessage(prompt string) (Stream, error)
	Persona() string
	History() []models.Message
}

// GeminiClient is the main client for the Gemini streaming API
type GeminiClient struct {
	httpClient tls_client.HttpClient
	apiKey     string
	model      models.Model
	timeout    time.Duration
	mu         sync.RWMutex
	closed     bool
}

// ClientOption is a function that configures the client
type ClientOption func(*GeminiClient)

// WithModel sets the default model for the client
func WithModel(model models.Model) ClientOption {
	return func(c *GeminiClient) {
		c.model = model
	}
}

// WithTimeout sets the HTTP timeout for streaming requests
func WithTimeout(timeout time.Duration) ClientOption {
	return func(c *GeminiClient) {
		c.timeout = timeout
	}
}

// WithHTTPClient replaces the underlying HTTP client (used in tests)
func WithHTTPClient(httpClient tls_client.HttpClient) ClientOption {
	return func(c *GeminiClient) {
		c.httpClient = httpClient
	}
}

// NewClient creates a new GeminiClient. The API key is the externally
// supplied credential for the model capability.
func NewClient(apiKey string, opts ...ClientOption) (*GeminiClient, error) {
	if apiKey == "" {
		return nil, apierrors.ErrNoAPIKey
	}

	client := &GeminiClient{
		apiKey:  apiKey,
		model:   models.DefaultModel,
		timeout: 300 * time.Second,
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(int(client.timeout.Seconds())),
			tls_client.WithClientProfile(profiles.Chrome_120),
			tls_client.WithNotFollowRedirects(),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Close shuts down the client
func (c *GeminiClient) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
}

// IsClosed returns whether the client is closed
func (c *GeminiClient) IsClosed() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.closed
}

// GetModel returns the default model
func (c *GeminiClient) GetModel() models.Model {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.model
}

// SetModel sets the default model
func (c *GeminiClient) SetModel(model models.Model) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.model = model
}

// StartChat creates a new chat session
func (c *GeminiClient) StartChat(opts ...SessionOption) ChatSessionInterface {
	s := &ChatSession{
		client:    c,
		model:     c.GetModel(),
		webSearch: true,
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}
