package provider

// Kind names a completer backend.
type Kind string

const (
	KindAnthropic Kind = "anthropic"
	KindOpenAI    Kind = "openai"
	KindGoogle    Kind = "google"
	KindOllama    Kind = "ollama"
	KindBedrock   Kind = "bedrock"
	KindCohere    Kind = "cohere"
	KindReplicate Kind = "replicate"
)

// Model is one entry in the closed table of chat models. Configuration
// resolves model identifiers against this table; unknown identifiers are
// rejected up front instead of being passed through to a backend.
type Model struct {
	ID          string `json:"id"`
	Kind        Kind   `json:"kind"`
	Description string `json:"description"`
}

var models = []Model{
	{ID: "claude-sonnet-4-5", Kind: KindAnthropic, Description: "Anthropic Claude Sonnet 4.5"},
	{ID: "claude-haiku-4-5", Kind: KindAnthropic, Description: "Anthropic Claude Haiku 4.5"},
	{ID: "gpt-5", Kind: KindOpenAI, Description: "OpenAI GPT-5"},
	{ID: "gpt-5-mini", Kind: KindOpenAI, Description: "OpenAI GPT-5 mini"},
	{ID: "gemini-2.5-pro", Kind: KindGoogle, Description: "Google Gemini 2.5 Pro"},
	{ID: "gemini-2.5-flash", Kind: KindGoogle, Description: "Google Gemini 2.5 Flash"},
	{ID: "llama3.2", Kind: KindOllama, Description: "Meta Llama 3.2, served locally"},
	{ID: "qwen3", Kind: KindOllama, Description: "Qwen 3, served locally"},
	{ID: "anthropic.claude-sonnet-4-20250514-v1:0", Kind: KindBedrock, Description: "Claude Sonnet 4 on Amazon Bedrock"},
	{ID: "command-r-plus", Kind: KindCohere, Description: "Cohere Command R+"},
	{ID: "meta/meta-llama-3-8b-instruct", Kind: KindReplicate, Description: "Meta Llama 3 8B Instruct on Replicate"},
}

// Lookup resolves a model identifier.
func Lookup(id string) (Model, bool) {
	for _, model := range models {
		if model.ID == id {
			return model, true
		}
	}

	return Model{}, false
}

// Models returns the table in its fixed order.
func Models() []Model {
	result := make([]Model, len(models))
	copy(result, models)

	return result
}
