package tools

import (
	"context"
	"encoding/json"
)

const defaultGmailResults = 10

// GmailTool is a placeholder for Gmail inbox reading. Real access needs an
// OAuth 2.0 flow against the Gmail API, which is external setup this client
// does not perform; the tool always answers with a warning-status payload so
// the model can tell the user what is missing.
type GmailTool struct{}

func (t *GmailTool) Definition() ToolDefinition {
	return ToolDefinition{
		Name:        "read_gmail_inbox",
		Description: "Reads emails from Gmail inbox. Requires external setup for OAuth 2.0 authentication and Gmail API credentials.",
		Category:    "communication",
		Schema: ObjectSchema(map[string]Property{
			"max_results": {
				Type:        TypeInteger,
				Description: "The maximum number of emails to retrieve. Defaults to 10.",
			},
			"query": {
				Type:        TypeString,
				Description: "A Gmail API query string to filter emails (e.g., 'is:unread from:example.com').",
			},
		}),
	}
}

type gmailStubResponse struct {
	Status  string           `json:"status"`
	Message string           `json:"message"`
	Details gmailStubDetails `json:"details"`
}

type gmailStubDetails struct {
	MaxResults int    `json:"max_results"`
	Query      string `json:"query"`
}

func (t *GmailTool) Execute(ctx context.Context, args map[string]interface{}) (string, error) {
	maxResults := defaultGmailResults
	if n, ok := args["max_results"].(int); ok {
		maxResults = n
	}
	query := "None"
	if q, ok := args["query"].(string); ok && q != "" {
		query = q
	}

	out, err := json.Marshal(gmailStubResponse{
		Status:  "warning",
		Message: "Gmail functionality is a placeholder. Set up OAuth 2.0 credentials for the Gmail API to enable reading emails.",
		Details: gmailStubDetails{
			MaxResults: maxResults,
			Query:      query,
		},
	})
	if err != nil {
		return "", err
	}
	return string(out), nil
}
