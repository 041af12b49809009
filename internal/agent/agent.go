// Package agent drives tool-augmented chat-completions generations that
// must return output conforming to a target schema.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/forkline/forkline/backend/internal/secrets"
)

// maxToolRounds bounds how many tool-call rounds the model may take
// before it has to produce a final draft.
const maxToolRounds = 8

// Message represents a message in the chat
type Message struct {
	Role       string     `json:"role"`
	Content    string     `json:"content"`
	ToolCalls  []ToolCall `json:"tool_calls,omitempty"`
	ToolCallID string     `json:"tool_call_id,omitempty"`
}

// ToolCall is a tool invocation requested by the model.
type ToolCall struct {
	ID       string       `json:"id"`
	Type     string       `json:"type"`
	Function FunctionCall `json:"function"`
}

// FunctionCall carries the tool name and its JSON-encoded arguments.
type FunctionCall struct {
	Name      string `json:"name"`
	Arguments string `json:"arguments"`
}

// ToolSpec is the wire format describing a tool to the model.
type ToolSpec struct {
	Type     string       `json:"type"`
	Function FunctionSpec `json:"function"`
}

// FunctionSpec describes one function tool.
type FunctionSpec struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	Parameters  json.RawMessage `json:"parameters"`
}

// Request represents a request to the chat completions API
type Request struct {
	Model          string            `json:"model"`
	Messages       []Message         `json:"messages"`
	Tools          []ToolSpec        `json:"tools,omitempty"`
	ResponseFormat map[string]string `json:"response_format,omitempty"`
	Temperature    float64           `json:"temperature,omitempty"`
	TopP           float64           `json:"top_p,omitempty"`
}

// Response is the subset of the chat completions reply we consume.
type Response struct {
	Choices []struct {
		Message      Message `json:"message"`
		FinishReason string  `json:"finish_reason"`
	} `json:"choices"`
}

// Result is a successful generation: the typed object plus the state it
// reached (validated as-is, or coerced from an untyped draft).
type Result struct {
	Object interface{}
	State  State
}

// Orchestrator invokes the chat completions API with a toolkit and
// enforces that the final draft conforms to a target schema. It never
// retries a failed generation; that is the caller's decision.
type Orchestrator struct {
	apiKey string
	apiURL string
	model  string
	client *http.Client
}

// NewOrchestrator creates an Orchestrator from the environment, reading
// the API key from DEEPSEEK_API_KEY or DEEPSEEK_API_KEY_FILE.
func NewOrchestrator() (*Orchestrator, error) {
	apiKey := os.Getenv("DEEPSEEK_API_KEY")
	if apiKey == "" {
		apiKeyFile := os.Getenv("DEEPSEEK_API_KEY_FILE")
		if apiKeyFile == "" {
			return nil, fmt.Errorf("DEEPSEEK_API_KEY or DEEPSEEK_API_KEY_FILE must be set")
		}

		apiKeyBytes, err := os.ReadFile(apiKeyFile)
		if err != nil {
			return nil, fmt.Errorf("failed to read API key file: %w", err)
		}

		apiKey = strings.TrimSpace(string(apiKeyBytes))
		if apiKey == "" {
			return nil, fmt.Errorf("API key file is empty")
		}
	}

	apiURL := os.Getenv("DEEPSEEK_API_URL")
	if apiURL == "" {
		apiURL = "https://api.deepseek.com/v1/chat/completions"
	}

	return &Orchestrator{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  "deepseek-chat",
		client: &http.Client{Timeout: 120 * time.Second},
	}, nil
}

// NewOrchestratorForEndpoint creates an Orchestrator against an explicit
// endpoint. Intended for tests.
func NewOrchestratorForEndpoint(apiURL, apiKey string) *Orchestrator {
	return &Orchestrator{
		apiKey: apiKey,
		apiURL: apiURL,
		model:  "deepseek-chat",
		client: &http.Client{Timeout: 120 * time.Second},
	}
}

// Generate runs one agent turn: the model may call any subset of the
// toolkit zero or more times, then must produce a draft that conforms to
// the target schema.
func (o *Orchestrator) Generate(ctx context.Context, system, prompt string, toolkit *Toolkit, target Schema) (*Result, error) {
	messages := []Message{
		{Role: "system", Content: system + "\n\nYour final answer must be a single JSON object with this structure:\n" + target.Description},
		{Role: "user", Content: prompt},
	}

	specs := toolkit.Specs()

	for round := 0; round <= maxToolRounds; round++ {
		reply, err := o.chat(ctx, messages, specs)
		if err != nil {
			return nil, err
		}

		if len(reply.ToolCalls) > 0 {
			messages = append(messages, *reply)
			toolMessages, err := o.dispatch(ctx, toolkit, reply.ToolCalls)
			if err != nil {
				return nil, err
			}
			messages = append(messages, toolMessages...)
			continue
		}

		object, finalState, err := target.conform([]byte(reply.Content))
		if err != nil {
			log.Printf("[Agent] Draft failed %s schema validation: %v", target.Name, err)
			return nil, err
		}
		return &Result{Object: object, State: finalState}, nil
	}

	return nil, fmt.Errorf("generation exceeded %d tool rounds without a final answer", maxToolRounds)
}

// dispatch runs the model's tool calls in order. Tool failures are fed
// back to the model as the tool result so it can recover; auth failures
// are fatal to the whole request.
func (o *Orchestrator) dispatch(ctx context.Context, toolkit *Toolkit, calls []ToolCall) ([]Message, error) {
	messages := make([]Message, 0, len(calls))
	for _, call := range calls {
		tool, ok := toolkit.Lookup(call.Function.Name)
		if !ok {
			messages = append(messages, Message{
				Role:       "tool",
				ToolCallID: call.ID,
				Content:    fmt.Sprintf("error: unknown tool %q", call.Function.Name),
			})
			continue
		}

		log.Printf("[Agent] Tool call %s(%s)", call.Function.Name, call.Function.Arguments)
		output, err := tool.Run(ctx, json.RawMessage(call.Function.Arguments))
		if err != nil {
			var credErr *secrets.CredentialError
			var tokenErr *secrets.TokenError
			if errors.As(err, &credErr) || errors.As(err, &tokenErr) {
				return nil, err
			}
			output = "error: " + err.Error()
		}

		messages = append(messages, Message{
			Role:       "tool",
			ToolCallID: call.ID,
			Content:    output,
		})
	}
	return messages, nil
}

// chat performs one chat completions call.
func (o *Orchestrator) chat(ctx context.Context, messages []Message, tools []ToolSpec) (*Message, error) {
	reqBody := Request{
		Model:       o.model,
		Messages:    messages,
		Tools:       tools,
		Temperature: 0.9,
		TopP:        0.9,
	}
	if len(tools) == 0 {
		reqBody.ResponseFormat = map[string]string{"type": "json_object"}
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, "POST", o.apiURL, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+o.apiKey)

	resp, err := o.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("API request failed with status %d: %s", resp.StatusCode, string(body))
	}

	var result Response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	if len(result.Choices) == 0 {
		return nil, fmt.Errorf("no response from API")
	}

	return &result.Choices[0].Message, nil
}
