package entities

// Prompt is the provider-neutral input of a text completion
type Prompt struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
}

// Completion is the text a provider generated for a Prompt.
type Completion struct {
	Text     string
	Provider string
	Model    string
}
