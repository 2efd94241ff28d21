package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/codecanvas/projectdb/internal/analysis"
	"github.com/sashabaranov/go-openai"
)

const generateSystemPrompt = `You are a senior full-stack engineer generating project files for a browser IDE.
Respond with a single JSON object and nothing else:
{"files":[{"name":"...","path":"...","content":"...","type":"file"}],"explanation":"..."}
Every path is slash-delimited and relative to the project root. The type field is "file", "folder", or "test".`

const chatSystemPrompt = `You are a helpful pair-programming assistant inside a browser IDE. Answer concisely in plain text or markdown.`

var analysisPrompts = map[analysis.Type]string{
	analysis.TypeCodeReview:    `Review the code. Respond with JSON only: {"overallRating":0-10,"summary":"...","issues":[{"severity":"critical|warning|info","category":"...","message":"...","suggestion":"...","line":0}],"strengths":[],"improvements":[]}`,
	analysis.TypeCodeExplain:   `Explain the code. Respond with JSON only: {"summary":"...","purpose":"...","components":[{"type":"...","name":"...","description":"..."}],"keyFeatures":[],"usage":"..."}`,
	analysis.TypeRefactor:      `Suggest refactorings. Respond with JSON only: {"priority":"low|medium|high","suggestions":[{"title":"...","description":"...","before":"...","after":"...","benefit":"...","effort":"low|medium|high"}]}`,
	analysis.TypeBugDetect:     `Find bugs. Respond with JSON only: {"bugsFound":0,"bugs":[{"severity":"critical|major|minor","type":"...","description":"...","fix":"...","impact":"...","line":0}],"potentialIssues":[]}`,
	analysis.TypeDocumentation: `Add documentation comments to the code. Respond with JSON only: {"documentedCode":"..."}`,
	analysis.TypePerformance:   `Analyze performance. Respond with JSON only: {"score":0-100,"issues":[{"category":"...","severity":"low|medium|high","description":"...","recommendation":"...","estimatedImpact":"..."}],"optimizations":[]}`,
	analysis.TypeSecurity:      `Scan for vulnerabilities. Respond with JSON only: {"riskLevel":"safe|low|medium|high|critical","vulnerabilities":[{"type":"...","severity":"low|medium|high|critical","description":"...","location":"...","fix":"...","cve":"..."}],"recommendations":[]}`,
	analysis.TypeAccessibility: `Check accessibility. Respond with JSON only: {"score":0-100,"wcagLevel":"A|AA|AAA|None","issues":[{"rule":"...","impact":"minor|moderate|serious|critical","description":"...","element":"...","fix":"..."}],"passed":[]}`,
}

// Client talks to an OpenAI-compatible chat completion endpoint.
type Client struct {
	client *openai.Client
	model  string
	apiKey string
}

// NewClient builds a client for the configured gateway. An empty apiKey
// produces a client that reports unavailable; callers should check
// Available before use.
func NewClient(apiKey, baseURL, model string) *Client {
	clientConfig := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		clientConfig.BaseURL = baseURL
	}
	return &Client{
		client: openai.NewClientWithConfig(clientConfig),
		model:  model,
		apiKey: apiKey,
	}
}

var _ Assistant = (*Client)(nil)

func (c *Client) Available() bool {
	return c.apiKey != ""
}

func (c *Client) GenerateCode(ctx context.Context, prompt string, existing []GeneratedFile) (*CodeGeneration, error) {
	if !c.Available() {
		return nil, ErrUnavailable()
	}

	var b strings.Builder
	b.WriteString(prompt)
	if len(existing) > 0 {
		b.WriteString("\n\nExisting project files for context:\n")
		for _, f := range existing {
			fmt.Fprintf(&b, "--- %s ---\n%s\n", f.Path, f.Content)
		}
	}

	content, err := c.complete(ctx, generateSystemPrompt, b.String())
	if err != nil {
		return nil, err
	}

	var result CodeGeneration
	if err := json.Unmarshal(stripFences(content), &result); err != nil {
		return nil, &UpstreamError{Message: "malformed generation response", Err: err}
	}
	if len(result.Files) == 0 {
		return nil, &UpstreamError{Message: "generation response contained no files"}
	}
	return &result, nil
}

func (c *Client) Chat(ctx context.Context, message string, history []ChatMessage) (string, error) {
	if !c.Available() {
		return "", ErrUnavailable()
	}

	messages := make([]openai.ChatCompletionMessage, 0, len(history)+2)
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleSystem,
		Content: chatSystemPrompt,
	})
	for _, turn := range history {
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	messages = append(messages, openai.ChatCompletionMessage{
		Role:    openai.ChatMessageRoleUser,
		Content: message,
	})

	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:    c.model,
		Messages: messages,
	})
	if err != nil {
		return "", &UpstreamError{Message: "chat completion failed", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Message: "empty chat response"}
	}
	return resp.Choices[0].Message.Content, nil
}

func (c *Client) AnalyzeCode(ctx context.Context, t analysis.Type, fileName, content string) (json.RawMessage, error) {
	if !c.Available() {
		return nil, ErrUnavailable()
	}

	prompt, ok := analysisPrompts[t]
	if !ok {
		return nil, &UpstreamError{Message: fmt.Sprintf("unsupported analysis type: %s", t)}
	}

	user := fmt.Sprintf("File: %s\n\n%s", fileName, content)
	raw, err := c.complete(ctx, prompt, user)
	if err != nil {
		return nil, err
	}
	return json.RawMessage(stripFences(raw)), nil
}

func (c *Client) complete(ctx context.Context, system, user string) (string, error) {
	resp, err := c.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: c.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: system},
			{Role: openai.ChatMessageRoleUser, Content: user},
		},
	})
	if err != nil {
		return "", &UpstreamError{Message: "chat completion failed", Err: err}
	}
	if len(resp.Choices) == 0 {
		return "", &UpstreamError{Message: "empty completion response"}
	}
	return resp.Choices[0].Message.Content, nil
}

// stripFences removes a surrounding markdown code fence, which some models
// add despite JSON-only instructions.
func stripFences(s string) []byte {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```") {
		if idx := strings.Index(s, "\n"); idx >= 0 {
			s = s[idx+1:]
		}
		s = strings.TrimSuffix(strings.TrimSpace(s), "```")
	}
	return []byte(strings.TrimSpace(s))
}
