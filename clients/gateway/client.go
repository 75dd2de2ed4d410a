package gateway

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"
)

const (
	agentHeader    = "x-openclaw-agent-id"
	requestTimeout = 60 * time.Second
)

// defaultSystemPrompt keeps replies short enough to be spoken aloud.
const defaultSystemPrompt = `You are a voice assistant. Your replies are spoken aloud.
- Default to 1-3 sentences, concise and conversational.
- If the answer would be long, offer a quick summary instead and ask whether the full details are wanted.
- Never make up information. If you don't know, say so.
- Be direct. No filler.`

type clientImpl struct {
	client       *openai.Client
	model        string
	user         string
	systemPrompt string
}

type Config struct {
	// URL is the base address of an OpenAI-compatible chat completions
	// gateway, without the /v1 suffix.
	URL   string
	Token string

	// Agent selects which assistant behind the gateway handles the
	// conversation; it is sent as both a header and a model prefix.
	Agent string

	// Session identifies this voice client across requests. A random one is
	// generated when empty.
	Session string

	// SystemPrompt overrides the built-in voice-response rules.
	SystemPrompt string
}

// headerTransport stamps the agent routing header on every request.
type headerTransport struct {
	agent string
	base  http.RoundTripper
}

func (t *headerTransport) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set(agentHeader, t.agent)

	return t.base.RoundTrip(req)
}

func New(cfg *Config) (Interface, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is nil")
	}

	if cfg.URL == "" {
		return nil, fmt.Errorf("url is empty")
	}

	if cfg.Token == "" {
		return nil, fmt.Errorf("token is empty")
	}

	if cfg.Agent == "" {
		return nil, fmt.Errorf("agent is empty")
	}

	session := cfg.Session
	if session == "" {
		session = "voice-" + uuid.NewString()
	}

	systemPrompt := cfg.SystemPrompt
	if systemPrompt == "" {
		systemPrompt = defaultSystemPrompt
	}

	clientConfig := openai.DefaultConfig(cfg.Token)
	clientConfig.BaseURL = strings.TrimRight(cfg.URL, "/") + "/v1"
	clientConfig.HTTPClient = &http.Client{
		Timeout: requestTimeout,
		Transport: &headerTransport{
			agent: cfg.Agent,
			base:  http.DefaultTransport,
		},
	}

	return &clientImpl{
		client:       openai.NewClientWithConfig(clientConfig),
		model:        "openclaw:" + cfg.Agent,
		user:         session,
		systemPrompt: systemPrompt,
	}, nil
}

func (c *clientImpl) Send(ctx context.Context, message string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		User:  c.user,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: message},
		},
	})
	if err != nil {
		return "", fmt.Errorf("error calling gateway: %w", err)
	}

	if len(resp.Choices) == 0 {
		return "", nil
	}

	return resp.Choices[0].Message.Content, nil
}
