// Package openai provides production implementations of AI service interfaces
// using OpenAI-compatible APIs.
//
// The package works with any OpenAI-compatible endpoint: OpenAI itself, or
// local servers such as Ollama, LocalAI, and vLLM. Authentication uses a
// placeholder token by default, which local servers accept.
//
// Embedding requests go through langchaingo's embeddings wrapper; narrative
// generation uses the chat completion API with a fixed guide-style system
// prompt defined in prompts.go.
package openai
