package llm

// ModelInfo describes one supported Gemini model.
type ModelInfo struct {
	ID          string // identifier used in config and the /model picker
	Name        string // display name
	APIModel    string // model name sent to the API
	Description string
}

// SupportedModels lists the models TwinCLI can talk to.
var SupportedModels = []ModelInfo{
	{
		ID:          "gemini-2.5-flash",
		Name:        "Gemini 2.5 Flash",
		APIModel:    "gemini-2.5-flash",
		Description: "Fast and efficient (default)",
	},
	{
		ID:          "gemini-2.5-pro",
		Name:        "Gemini 2.5 Pro",
		APIModel:    "gemini-2.5-pro",
		Description: "Most capable, best for complex tasks",
	},
	{
		ID:          "gemini-2.5-flash-lite",
		Name:        "Gemini 2.5 Flash Lite",
		APIModel:    "gemini-2.5-flash-lite",
		Description: "Lightweight and quick",
	},
}

const DefaultModelID = "gemini-2.5-flash"

// GetModelByID returns model info by ID, or nil if unknown.
func GetModelByID(id string) *ModelInfo {
	for _, m := range SupportedModels {
		if m.ID == id {
			return &m
		}
	}
	return nil
}

// DefaultModel returns the default model's info.
func DefaultModel() ModelInfo {
	return *GetModelByID(DefaultModelID)
}
