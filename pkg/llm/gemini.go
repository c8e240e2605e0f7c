package llm

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

const GeminiAPIBase = "https://generativelanguage.googleapis.com/v1beta/models"

// GeminiClient talks to the Gemini generateContent API over plain HTTP with
// SSE streaming.
type GeminiClient struct {
	apiKey string
	model  string
	client *http.Client
}

func NewGeminiClient(apiKey string, model string) *GeminiClient {
	if model == "" {
		model = DefaultModel().APIModel
	}
	return &GeminiClient{
		apiKey: apiKey,
		model:  model,
		client: &http.Client{},
	}
}

// SetModel switches the model used for subsequent calls.
func (c *GeminiClient) SetModel(model string) {
	c.model = model
}

// Gemini API structures

type geminiRequest struct {
	Contents          []geminiContent         `json:"contents"`
	Tools             []geminiTool            `json:"tools,omitempty"`
	SystemInstruction *geminiContent          `json:"systemInstruction,omitempty"`
	GenerationConfig  *geminiGenerationConfig `json:"generationConfig,omitempty"`
}

type geminiContent struct {
	Role  string       `json:"role,omitempty"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text             string                  `json:"text,omitempty"`
	FunctionCall     *geminiFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *geminiFunctionResponse `json:"functionResponse,omitempty"`
}

type geminiFunctionCall struct {
	Name string                 `json:"name"`
	Args map[string]interface{} `json:"args"`
}

type geminiFunctionResponse struct {
	Name     string                 `json:"name"`
	Response map[string]interface{} `json:"response"`
}

type geminiTool struct {
	FunctionDeclarations []geminiFunctionDeclaration `json:"functionDeclarations"`
}

type geminiFunctionDeclaration struct {
	Name        string      `json:"name"`
	Description string      `json:"description"`
	Parameters  interface{} `json:"parameters,omitempty"`
}

type geminiGenerationConfig struct {
	Temperature     float64 `json:"temperature,omitempty"`
	TopP            float64 `json:"topP,omitempty"`
	TopK            int     `json:"topK,omitempty"`
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
}

type geminiCandidate struct {
	Content geminiContent `json:"content"`
}

type geminiUsageMetadata struct {
	PromptTokenCount     int `json:"promptTokenCount"`
	CandidatesTokenCount int `json:"candidatesTokenCount"`
}

type geminiStreamChunk struct {
	Candidates    []geminiCandidate    `json:"candidates"`
	UsageMetadata *geminiUsageMetadata `json:"usageMetadata"`
}

func (c *GeminiClient) Generate(ctx context.Context, messages []Message, tools []interface{}) (*Message, error) {
	return c.GenerateStream(ctx, messages, tools, nil)
}

func (c *GeminiClient) GenerateStream(ctx context.Context, messages []Message, tools []interface{}, outputChan chan<- string) (*Message, error) {
	reqBody, err := buildGeminiRequest(messages, tools)
	if err != nil {
		return nil, err
	}

	jsonData, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s:streamGenerateContent?key=%s&alt=sse",
		GeminiAPIBase, c.model, c.apiKey)

	req, err := http.NewRequestWithContext(ctx, "POST", endpoint, bytes.NewBuffer(jsonData))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(io.LimitReader(resp.Body, 8192))
		return nil, &APIError{StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(bodyBytes))}
	}

	return parseGeminiStream(resp.Body, outputChan)
}

// buildGeminiRequest maps provider-agnostic history onto Gemini contents.
// System messages become the systemInstruction, tool results become
// function-role responses matched by tool name.
func buildGeminiRequest(messages []Message, tools []interface{}) (*geminiRequest, error) {
	contents := make([]geminiContent, 0, len(messages))
	var systemInstruction *geminiContent

	for _, msg := range messages {
		switch msg.Role {
		case RoleSystem:
			systemInstruction = &geminiContent{
				Parts: []geminiPart{{Text: msg.Content}},
			}

		case RoleUser:
			contents = append(contents, geminiContent{
				Role:  "user",
				Parts: []geminiPart{{Text: msg.Content}},
			})

		case RoleAssistant:
			content := geminiContent{Role: "model"}
			if msg.Content != "" {
				content.Parts = append(content.Parts, geminiPart{Text: msg.Content})
			}
			for _, tc := range msg.ToolCalls {
				content.Parts = append(content.Parts, geminiPart{
					FunctionCall: &geminiFunctionCall{
						Name: tc.Name,
						Args: tc.Args,
					},
				})
			}
			contents = append(contents, content)

		case RoleTool:
			if msg.ToolResult == nil {
				continue
			}
			contents = append(contents, geminiContent{
				Role: "function",
				Parts: []geminiPart{
					{
						FunctionResponse: &geminiFunctionResponse{
							Name: msg.ToolResult.ToolName,
							Response: map[string]interface{}{
								"result": msg.ToolResult.Content,
							},
						},
					},
				},
			})
		}
	}

	var funcDecls []geminiFunctionDeclaration
	for _, t := range tools {
		decl, err := toFunctionDeclaration(t)
		if err != nil {
			return nil, err
		}
		if decl.Name != "" {
			funcDecls = append(funcDecls, decl)
		}
	}

	req := &geminiRequest{
		Contents:          contents,
		SystemInstruction: systemInstruction,
		GenerationConfig: &geminiGenerationConfig{
			Temperature:     0.8,
			TopP:            0.9,
			TopK:            40,
			MaxOutputTokens: 8192,
		},
	}
	if len(funcDecls) > 0 {
		req.Tools = []geminiTool{{FunctionDeclarations: funcDecls}}
	}
	return req, nil
}

// toFunctionDeclaration extracts {name, description, parameters} from an
// opaque tool declaration by round-tripping it through JSON.
func toFunctionDeclaration(t interface{}) (geminiFunctionDeclaration, error) {
	data, err := json.Marshal(t)
	if err != nil {
		return geminiFunctionDeclaration{}, fmt.Errorf("failed to marshal tool declaration: %w", err)
	}
	var toolMap map[string]interface{}
	if err := json.Unmarshal(data, &toolMap); err != nil {
		return geminiFunctionDeclaration{}, fmt.Errorf("failed to decode tool declaration: %w", err)
	}
	name, _ := toolMap["name"].(string)
	desc, _ := toolMap["description"].(string)
	return geminiFunctionDeclaration{
		Name:        name,
		Description: desc,
		Parameters:  sanitizeSchemaForGemini(toolMap["parameters"]),
	}, nil
}

func parseGeminiStream(body io.Reader, outputChan chan<- string) (*Message, error) {
	finalMsg := &Message{
		Role: RoleAssistant,
	}

	reader := bufio.NewReader(body)
	toolCallIndex := 0

	for {
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				break
			}
			return nil, fmt.Errorf("error reading stream: %w", err)
		}

		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "data: ") {
			continue
		}
		data := strings.TrimPrefix(line, "data: ")
		if data == "" {
			continue
		}

		var chunk geminiStreamChunk
		if err := json.Unmarshal([]byte(data), &chunk); err != nil {
			continue
		}

		for _, candidate := range chunk.Candidates {
			for _, part := range candidate.Content.Parts {
				if part.Text != "" {
					finalMsg.Content += part.Text
					if outputChan != nil {
						outputChan <- part.Text
					}
				}
				if part.FunctionCall != nil {
					finalMsg.ToolCalls = append(finalMsg.ToolCalls, ToolCall{
						ID:   fmt.Sprintf("call_%d", toolCallIndex),
						Name: part.FunctionCall.Name,
						Args: part.FunctionCall.Args,
					})
					toolCallIndex++
				}
			}
		}
		if chunk.UsageMetadata != nil {
			finalMsg.Usage = &Usage{
				InputTokens:  chunk.UsageMetadata.PromptTokenCount,
				OutputTokens: chunk.UsageMetadata.CandidatesTokenCount,
			}
		}
	}

	return finalMsg, nil
}

// sanitizeSchemaForGemini strips JSON Schema fields Gemini's OpenAPI subset
// rejects, such as $schema and additionalProperties, recursing into nested
// schemas.
func sanitizeSchemaForGemini(schema interface{}) interface{} {
	if schema == nil {
		return nil
	}

	schemaMap, ok := schema.(map[string]interface{})
	if !ok {
		return schema
	}

	unsupported := map[string]bool{
		"$schema":              true,
		"$id":                  true,
		"$ref":                 true,
		"$defs":                true,
		"definitions":          true,
		"additionalProperties": true,
		"default":              true,
		"examples":             true,
		"const":                true,
		"allOf":                true,
		"anyOf":                true,
		"oneOf":                true,
		"not":                  true,
		"patternProperties":    true,
	}

	result := make(map[string]interface{}, len(schemaMap))
	for key, value := range schemaMap {
		if unsupported[key] {
			continue
		}
		switch v := value.(type) {
		case map[string]interface{}:
			result[key] = sanitizeSchemaForGemini(v)
		case []interface{}:
			sanitized := make([]interface{}, len(v))
			for i, item := range v {
				if itemMap, ok := item.(map[string]interface{}); ok {
					sanitized[i] = sanitizeSchemaForGemini(itemMap)
				} else {
					sanitized[i] = item
				}
			}
			result[key] = sanitized
		default:
			result[key] = value
		}
	}

	return result
}
