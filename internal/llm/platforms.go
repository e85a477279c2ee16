package llm

import (
	"fmt"
	"os"
)

// Platform identifies an OpenAI-compatible hosting platform.
type Platform string

const (
	PlatformOpenAI      Platform = "OpenAI"
	PlatformOpenRouter  Platform = "OpenRouter"
	PlatformDeepInfra   Platform = "DeepInfra"
	PlatformSiliconFlow Platform = "SiliconFlow"
	PlatformVLLM        Platform = "vllm"
)

// Platforms in resolution priority order, used when a model is given
// without an explicit platform.
var Platforms = []Platform{
	PlatformSiliconFlow, PlatformOpenAI, PlatformDeepInfra, PlatformVLLM, PlatformOpenRouter,
}

// PlatformModels lists the model aliases each platform serves.
var PlatformModels = map[Platform][]string{
	PlatformSiliconFlow: {
		"qwen2.5-72b", "qwen2.5-7b", "qwen2-1.5b", "qwen2-7b", "qwen2-72b",
		"glm4-9b", "deepseekv2",
	},
	PlatformOpenAI:     {},
	PlatformOpenRouter: {"gpt35turbo", "gpt4turbo", "gpt4o", "gpt4omini"},
	PlatformDeepInfra: {
		"llama3-8b", "llama3-70b", "llama3.1-8b", "llama3.1-70b", "llama3.1-405b",
		"gemma2-9b", "gemma2-27b", "mistral7bv2", "mistral7bv3",
	},
	PlatformVLLM: {"llama3-8B-local", "gemma2-2b-local", "chatglm3-6B-local"},
}

// ModelAliases maps short model aliases to the names the serving API expects.
var ModelAliases = map[string]string{
	"qwen2.5-7b":        "Qwen/Qwen2.5-7B-Instruct",
	"qwen2.5-72b":       "Qwen/Qwen2.5-72B-Instruct",
	"qwen2-1.5b":        "Qwen/Qwen2-1.5B-Instruct",
	"qwen2-7b":          "Qwen/Qwen2-7B-Instruct",
	"qwen2-72b":         "Qwen/Qwen2-72B-Instruct",
	"glm4-9b":           "THUDM/glm-4-9b-chat",
	"deepseekv2":        "deepseek-ai/DeepSeek-V2-Chat",
	"gpt35turbo":        "gpt-3.5-turbo-0125",
	"gpt4turbo":         "gpt-4-turbo-2024-04-09",
	"gpt4o":             "gpt-4o-2024-05-13",
	"gpt4omini":         "gpt-4o-mini-2024-07-18",
	"llama3-8b":         "meta-llama/Meta-Llama-3-8B-Instruct",
	"llama3-70b":        "meta-llama/Meta-Llama-3-70B-Instruct",
	"llama3.1-8b":       "meta-llama/Meta-Llama-3.1-8B-Instruct",
	"llama3.1-70b":      "meta-llama/Meta-Llama-3.1-70B-Instruct",
	"llama3.1-405b":     "meta-llama/Meta-Llama-3.1-405B-Instruct",
	"gemma2-9b":         "google/gemma-2-9b-it",
	"gemma2-27b":        "google/gemma-2-27b-it",
	"mistral7bv2":       "mistralai/Mistral-7B-Instruct-v0.2",
	"mistral7bv3":       "mistralai/Mistral-7B-Instruct-v0.3",
	"llama3-8B-local":   "llama3-8B-local",
	"gemma2-2b-local":   "gemma2-2b-local",
	"chatglm3-6B-local": "chatglm3-6B-local",
}

var platformKeyEnv = map[Platform]string{
	PlatformOpenAI:      "OPENAI_API_KEY",
	PlatformOpenRouter:  "OPENROUTER_API_KEY",
	PlatformDeepInfra:   "DEEPINFRA_API_KEY",
	PlatformSiliconFlow: "SILICONFLOW_API_KEY",
	PlatformVLLM:        "VLLM_API_KEY",
}

// BaseURL returns the chat-completions endpoint base for a platform.
// vLLM deployments are local and read their URL from the environment.
func BaseURL(p Platform) string {
	switch p {
	case PlatformOpenRouter:
		return "https://openrouter.ai/api/v1"
	case PlatformDeepInfra:
		return "https://api.deepinfra.com/v1/openai"
	case PlatformSiliconFlow:
		return "https://api.siliconflow.cn/v1"
	case PlatformVLLM:
		if url := os.Getenv("VLLM_URL"); url != "" {
			return url
		}
		return "http://localhost:8000/v1"
	default:
		return "" // OpenAI default
	}
}

// APIKey resolves a platform's API key from the environment. Local vLLM
// deployments commonly run without auth, so an empty key is allowed there.
func APIKey(p Platform) (string, error) {
	env, ok := platformKeyEnv[p]
	if !ok {
		return "", fmt.Errorf("unknown platform %q", p)
	}
	key := os.Getenv(env)
	if key == "" && p != PlatformVLLM {
		return "", fmt.Errorf("environment variable %s is not set", env)
	}
	return key, nil
}

// ResolvePlatform validates the model alias and picks a platform for it.
// An explicit platform wins when it serves the model; otherwise platforms
// are consulted in priority order.
func ResolvePlatform(model string, platform Platform) (Platform, error) {
	known := false
	for _, models := range PlatformModels {
		for _, m := range models {
			if m == model {
				known = true
				break
			}
		}
	}
	if !known {
		return "", fmt.Errorf("unknown model alias %q", model)
	}

	if platform != "" {
		for _, m := range PlatformModels[platform] {
			if m == model {
				return platform, nil
			}
		}
		return "", fmt.Errorf("model %q is not served on platform %q", model, platform)
	}

	for _, p := range Platforms {
		for _, m := range PlatformModels[p] {
			if m == model {
				return p, nil
			}
		}
	}
	return "", fmt.Errorf("no platform serves model %q", model)
}

// Catalog describes the supported platforms and model aliases, for the
// demo API's model listing.
func Catalog() map[string][]string {
	out := make(map[string][]string, len(PlatformModels))
	for p, models := range PlatformModels {
		out[string(p)] = models
	}
	return out
}
