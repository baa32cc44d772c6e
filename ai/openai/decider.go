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


package openai

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"

	"github.com/poiesic/resolvit/ai"
	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
)

// Decider implements ai.Decider using OpenAI-compatible chat APIs.
type Decider struct {
	client llms.Model
	config *ai.Config
	logger *slog.Logger
}

// newDecider is an internal constructor that returns the concrete type.
func newDecider(config *ai.Config) (*Decider, error) {
	if err := config.Validate(); err != nil {
		return nil, err
	}

	client, err := openai.New(
		openai.WithBaseURL(config.Host),
		openai.WithToken(config.Token),
		openai.WithModel(config.Model),
	)
	if err != nil {
		return nil, err
	}

	return &Decider{
		client: client,
		config: config,
		logger: slog.Default().With("component", "openai-decider"),
	}, nil
}

// NewDecider creates a decision oracle client using the provided
// configuration.
//
// Returns ai.Decider interface to enforce abstraction.
func NewDecider(config *ai.Config) (ai.Decider, error) {
	return newDecider(config)
}

// Decide drives one JSON-mode chat completion for the request and interprets
// the response. Timeout ownership lives here: the configured RequestTimeout
// bounds the whole call, transport retries included.
func (d *Decider) Decide(ctx context.Context, request *ai.DecisionRequest) (*ai.Decision, error) {
	ctx, cancel := context.WithTimeout(ctx, d.config.RequestTimeout)
	defer cancel()

	content := []llms.MessageContent{
		{
			Role: llms.ChatMessageTypeSystem,
			Parts: []llms.ContentPart{
				llms.TextPart(buildSystemPrompt()),
			},
		},
		{
			Role: llms.ChatMessageTypeHuman,
			Parts: []llms.ContentPart{
				llms.TextPart(renderRequest(request)),
			},
		},
	}

	// Try up to 3 times in case of malformed JSON
	var lastErr error
	for attempt := 0; attempt < 3; attempt++ {
		responseText, err := d.generate(ctx, content)
		if err != nil {
			d.logger.Error("failed to generate decision", "attempt", attempt+1, "err", err)
			return nil, err
		}

		responseText = sanitizeResponse(responseText)

		var decision ai.Decision
		if err := json.Unmarshal([]byte(responseText), &decision); err != nil {
			lastErr = err
			d.logger.Warn("error parsing oracle response",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		if err := decision.Validate(); err != nil {
			lastErr = err
			d.logger.Warn("oracle produced an invalid decision",
				"attempt", attempt+1,
				"response", responseText,
				"err", err)
			continue
		}

		return &decision, nil
	}

	d.logger.Error("failed to obtain a valid decision after retries", "err", lastErr)
	return nil, lastErr
}

// generate runs one chat completion with transport-level retries.
func (d *Decider) generate(ctx context.Context, content []llms.MessageContent) (string, error) {
	var responseText string
	err := retryWithBackoff(ctx, func() error {
		response, err := d.client.GenerateContent(ctx, content,
			llms.WithTemperature(0.0), llms.WithJSONMode())
		if err != nil {
			return err
		}
		responseText = ""
		if len(response.Choices) > 0 {
			responseText = response.Choices[0].Content
		}
		return nil
	}, d.config.MaxRetries, d.config.RetryBaseDelay)
	return responseText, err
}

// sanitizeResponse strips markdown code fences and repairs common JSON
// issues in a model response.
func sanitizeResponse(s string) string {
	s = strings.TrimSpace(s)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimPrefix(s, "```")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	return repairJSON(s)
}
