package provider

const (
	// ProviderOpenAI identifies OpenAI API
	ProviderOpenAI = "openai"
)
