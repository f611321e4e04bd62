package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	http "github.com/bogdanfinn/fhttp"
	tls_client "github.com/bogdanfinn/tls-client"
	"github.com/bogdanfinn/tls-client/profiles"
	"github.com/sirupsen/logrus"

	apierrors "github.com/diogo/sanai/internal/errors"
	"github.com/diogo/sanai/internal/logging"
	"github.com/diogo/sanai/internal/models"
)

// maxErrorBody limits how much of a failed response is read for diagnostics
const maxErrorBody = 4096

// HTTPDoer is the subset of tls_client.HttpClient used by Client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client talks to the Gemini REST API and the image service
type Client struct {
	httpClient        HTTPDoer
	apiKey            string
	baseURL           string
	imageURL          string
	model             string
	ttsModel          string
	voice             string
	systemInstruction string
	temperature       float64
	log               logrus.FieldLogger
}

// ClientOption is a function that configures the client
type ClientOption func(*Client)

// WithAPIKey sets the Gemini API key
func WithAPIKey(key string) ClientOption {
	return func(c *Client) {
		c.apiKey = key
	}
}

// WithModel sets the chat model
func WithModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.model = model
		}
	}
}

// WithTTSModel sets the speech synthesis model
func WithTTSModel(model string) ClientOption {
	return func(c *Client) {
		if model != "" {
			c.ttsModel = model
		}
	}
}

// WithVoice sets the prebuilt voice used for speech
func WithVoice(voice string) ClientOption {
	return func(c *Client) {
		if voice != "" {
			c.voice = voice
		}
	}
}

// WithSystemInstruction sets the persona sent with chat requests
func WithSystemInstruction(instruction string) ClientOption {
	return func(c *Client) {
		c.systemInstruction = instruction
	}
}

// WithTemperature sets the sampling temperature for chat requests
func WithTemperature(t float64) ClientOption {
	return func(c *Client) {
		c.temperature = t
	}
}

// WithBaseURL overrides the Gemini endpoint (tests, proxies)
func WithBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.baseURL = strings.TrimRight(url, "/")
	}
}

// WithImageBaseURL overrides the image service endpoint
func WithImageBaseURL(url string) ClientOption {
	return func(c *Client) {
		c.imageURL = url
	}
}

// WithHTTPClient replaces the transport
func WithHTTPClient(doer HTTPDoer) ClientOption {
	return func(c *Client) {
		c.httpClient = doer
	}
}

// WithLogger sets the logger
func WithLogger(log logrus.FieldLogger) ClientOption {
	return func(c *Client) {
		c.log = log
	}
}

// NewClient creates a new Client.
// An API key is required; use WithAPIKey or the config file.
func NewClient(opts ...ClientOption) (*Client, error) {
	client := &Client{
		baseURL:           models.EndpointGemini,
		imageURL:          models.EndpointImage,
		model:             models.ChatModel,
		ttsModel:          models.TTSModel,
		voice:             models.TTSVoice,
		systemInstruction: models.SystemInstruction,
		temperature:       models.Temperature,
		log:               logging.Discard(),
	}

	for _, opt := range opts {
		opt(client)
	}

	if client.apiKey == "" {
		return nil, apierrors.ErrNoAPIKey
	}

	if client.httpClient == nil {
		options := []tls_client.HttpClientOption{
			tls_client.WithTimeoutSeconds(120),
			tls_client.WithClientProfile(profiles.Chrome_120),
		}

		httpClient, err := tls_client.NewHttpClient(tls_client.NewNoopLogger(), options...)
		if err != nil {
			return nil, fmt.Errorf("failed to create HTTP client: %w", err)
		}
		client.httpClient = httpClient
	}

	return client, nil
}

// Model returns the chat model name
func (c *Client) Model() string {
	return c.model
}

// Voice returns the speech voice name
func (c *Client) Voice() string {
	return c.voice
}

func (c *Client) modelEndpoint(model string) string {
	return fmt.Sprintf("%s/models/%s:generateContent", c.baseURL, model)
}

// post sends a JSON body to endpoint and returns the response body of a 200 reply
func (c *Client) post(ctx context.Context, operation, endpoint string, body []byte) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(string(body)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, transportError(ctx, operation, endpoint, err)
	}
	defer func() {
		if resp != nil && resp.Body != nil {
			_ = resp.Body.Close()
		}
	}()

	if resp.StatusCode != http.StatusOK {
		errorBody, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return nil, parseErrorBody(resp.StatusCode, endpoint, errorBody)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, transportError(ctx, operation, endpoint, err)
	}
	return data, nil
}

// transportError classifies a failure that happened before a status code was read
func transportError(ctx context.Context, operation, endpoint string, err error) error {
	switch {
	case errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded):
		return apierrors.NewTimeoutError(operation)
	case errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled):
		return fmt.Errorf("%s: %w", operation, context.Canceled)
	default:
		return apierrors.NewNetworkError(operation, endpoint, err)
	}
}
