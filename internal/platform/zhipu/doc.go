// Package zhipu implements the generation interfaces against the ZhipuAI
// chat completion API. The API is OpenAI-compatible, so the client is built
// on the openai-go SDK pointed at the ZhipuAI endpoint.
package zhipu
