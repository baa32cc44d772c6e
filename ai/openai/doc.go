// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package openai implements the decision oracle using OpenAI-compatible APIs.
//
// This package implements the ai.Decider interface using the langchaingo
// library to communicate with OpenAI or OpenAI-compatible services (such as
// Ollama, LocalAI, or vLLM). Completions run in JSON mode at temperature 0
// against a fixed response schema; responses go through markdown-fence
// stripping and JSON repair before parsing, with a bounded parse-attempt
// loop and exponential-backoff transport retries underneath.
//
// # Usage
//
//	config := ai.DefaultConfig()
//	// Or customize:
//	config := ai.NewConfig(
//	    ai.WithHost("http://localhost:11434"),  // /v1 added automatically
//	    ai.WithModel("qwen2.5:3b"),
//	)
//
//	decider, err := openai.NewDecider(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	decision, err := decider.Decide(ctx, request)
package openai
