package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"misfit-alliance/internal/config"
	"misfit-alliance/internal/constants"
	"misfit-alliance/internal/metrics"

	"github.com/failsafe-go/failsafe-go/circuitbreaker"
	"github.com/rs/zerolog"
	"github.com/valyala/fasthttp"
)

const breakerComponent = "ark"

var ErrNotConfigured = errors.New("AI API key not configured")

// StatusError is a non-2xx answer from the upstream.
type StatusError struct {
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("API error: %d", e.StatusCode)
}

// ArkClient talks to an OpenAI-compatible chat completions endpoint.
type ArkClient struct {
	apiKey  string
	baseURL string
	model   string
	client  *fasthttp.Client
	breaker circuitbreaker.CircuitBreaker[any]
	logger  zerolog.Logger
}

func NewArkClient(cfg *config.Config, logger zerolog.Logger) *ArkClient {
	apiKey := cfg.AIAPIKey
	if !cfg.AIEnabled() {
		apiKey = ""
	}

	log := logger.With().Str("component", breakerComponent).Logger()

	breaker := circuitbreaker.NewBuilder[any]().
		WithFailureThreshold(constants.BreakerFailureThreshold).
		WithDelay(constants.BreakerDelay).
		WithSuccessThreshold(constants.BreakerSuccessThreshold).
		OnStateChanged(func(e circuitbreaker.StateChangedEvent) {
			log.Warn().
				Str("from", e.OldState.String()).
				Str("to", e.NewState.String()).
				Msg("circuit breaker state changed")

			metrics.CircuitBreakerStateChanges.WithLabelValues(breakerComponent, e.NewState.String()).Inc()
			metrics.CircuitBreakerState.WithLabelValues(breakerComponent).Set(stateToFloat(e.NewState))
		}).
		Build()

	return &ArkClient{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(cfg.AIBaseURL, "/"),
		model:   cfg.AIModel,
		client: &fasthttp.Client{
			MaxConnsPerHost:     32,
			ReadTimeout:         constants.ExternalAPITimeout,
			WriteTimeout:        constants.ExternalAPITimeout,
			MaxIdleConnDuration: 1 * time.Minute,
			// vision answers for large screenshots can be big
			MaxResponseBodySize: 16 * 1024 * 1024,
		},
		breaker: breaker,
		logger:  log,
	}
}

func stateToFloat(state circuitbreaker.State) float64 {
	switch state {
	case circuitbreaker.ClosedState:
		return 0
	case circuitbreaker.HalfOpenState:
		return 1
	case circuitbreaker.OpenState:
		return 2
	default:
		return -1
	}
}

func (c *ArkClient) Enabled() bool {
	return c.apiKey != ""
}

func (c *ArkClient) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// Complete sends one chat completion and returns the first choice's text.
func (c *ArkClient) Complete(ctx context.Context, messages []Message) (string, error) {
	if !c.Enabled() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(ChatCompletionRequest{Model: c.model, Messages: messages})
	if err != nil {
		return "", fmt.Errorf("failed to encode chat request: %w", err)
	}

	resp, err := doRequest[ChatCompletionResponse](ctx, c, c.baseURL+"/chat/completions", body)
	if err != nil {
		return "", err
	}
	if len(resp.Choices) == 0 {
		return "", nil
	}
	return resp.Choices[0].Message.Content, nil
}

// ForwardResponse is a raw upstream answer for the passthrough proxy.
type ForwardResponse struct {
	StatusCode  int
	ContentType string
	Body        []byte
}

// Forward relays method and body to baseURL/subpath untouched. Upstream
// status codes are returned as-is; only transport failures are errors.
func (c *ArkClient) Forward(ctx context.Context, method, subpath string, body []byte) (*ForwardResponse, error) {
	if !c.Enabled() {
		return nil, ErrNotConfigured
	}
	if !c.breaker.TryAcquirePermit() {
		return nil, fmt.Errorf("ark circuit breaker open: %w", circuitbreaker.ErrOpen)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(c.baseURL + "/" + strings.TrimLeft(subpath, "/"))
	req.Header.SetMethod(method)
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	if len(body) > 0 {
		req.Header.SetContentType("application/json")
		req.SetBody(body)
	}

	if err := c.do(ctx, req, resp, constants.ProxyTimeout); err != nil {
		c.breaker.RecordError(err)
		return nil, err
	}
	if resp.StatusCode() >= fasthttp.StatusInternalServerError {
		c.breaker.RecordError(&StatusError{StatusCode: resp.StatusCode()})
	} else {
		c.breaker.RecordSuccess()
	}

	return &ForwardResponse{
		StatusCode:  resp.StatusCode(),
		ContentType: string(resp.Header.ContentType()),
		Body:        append([]byte(nil), resp.Body()...),
	}, nil
}

func (c *ArkClient) do(ctx context.Context, req *fasthttp.Request, resp *fasthttp.Response, fallback time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if deadline, ok := ctx.Deadline(); ok {
		return c.client.DoDeadline(req, resp, deadline)
	}
	return c.client.DoTimeout(req, resp, fallback)
}

func doRequest[T any](ctx context.Context, client *ArkClient, url string, body []byte) (*T, error) {
	if !client.breaker.TryAcquirePermit() {
		return nil, fmt.Errorf("ark circuit breaker open: %w", circuitbreaker.ErrOpen)
	}

	req := fasthttp.AcquireRequest()
	resp := fasthttp.AcquireResponse()
	defer fasthttp.ReleaseRequest(req)
	defer fasthttp.ReleaseResponse(resp)

	req.SetRequestURI(url)
	req.Header.SetMethod(fasthttp.MethodPost)
	req.Header.SetContentType("application/json")
	req.Header.Set("Authorization", "Bearer "+client.apiKey)
	req.SetBody(body)

	if err := client.do(ctx, req, resp, constants.ExternalAPITimeout); err != nil {
		client.breaker.RecordError(err)
		return nil, err
	}

	if resp.StatusCode() != fasthttp.StatusOK {
		err := &StatusError{StatusCode: resp.StatusCode(), Body: string(resp.Body())}
		client.breaker.RecordError(err)
		return nil, err
	}
	client.breaker.RecordSuccess()

	var result T
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	return &result, nil
}

type ChatCompletionRequest struct {
	Model    string    `json:"model"`
	Messages []Message `json:"messages"`
}

// Message content is either a plain string or a list of ContentPart.
type Message struct {
	Role    string `json:"role"`
	Content any    `json:"content"`
}

type ContentPart struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *ImageURL `json:"image_url,omitempty"`
}

type ImageURL struct {
	URL string `json:"url"`
}

func SystemMessage(text string) Message {
	return Message{Role: "system", Content: text}
}

func UserMessage(text string) Message {
	return Message{Role: "user", Content: text}
}

// VisionMessage carries an image (data URL or https URL) followed by the instruction.
func VisionMessage(imageURL, text string) Message {
	return Message{
		Role: "user",
		Content: []ContentPart{
			{Type: "image_url", ImageURL: &ImageURL{URL: imageURL}},
			{Type: "text", Text: text},
		},
	}
}

type ChatCompletionResponse struct {
	ID      string   `json:"id"`
	Model   string   `json:"model"`
	Choices []Choice `json:"choices"`
	Usage   struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
		TotalTokens      int `json:"total_tokens"`
	} `json:"usage"`
}

type Choice struct {
	Index   int `json:"index"`
	Message struct {
		Role    string `json:"role"`
		Content string `json:"content"`
	} `json:"message"`
	FinishReason string `json:"finish_reason"`
}
