// Copyright (c) 2026 Madalin Gabriel Ignisca <hi@madalin.me>
// Copyright (c) 2026 Vlah Software House SRL <contact@vlah.sh>
// All rights reserved. See LICENSE for details.

// Package moderation screens visitor comments through an OpenAI-compatible
// moderation endpoint (POST {base}/moderations). Both OpenAI and Mistral
// expose this shape.
package moderation

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"
)

// Defaults for the OpenAI moderation endpoint, which is free for API key
// holders.
const (
	DefaultBaseURL = "https://api.openai.com/v1"
	DefaultModel   = "omni-moderation-latest"
)

// Verdict is the outcome of screening one text.
type Verdict struct {
	Safe       bool
	Categories []string // flagged categories, readable and sorted
}

// Client calls a moderation endpoint.
type Client struct {
	apiKey  string
	baseURL string
	model   string
	client  *http.Client
}

// New returns a Client, or nil when apiKey is empty. Empty baseURL and
// model select the OpenAI defaults.
func New(apiKey, baseURL, model string) *Client {
	if apiKey == "" {
		return nil
	}
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	if model == "" {
		model = DefaultModel
	}
	return &Client{
		apiKey:  apiKey,
		baseURL: strings.TrimRight(baseURL, "/"),
		model:   model,
		client:  &http.Client{Timeout: 15 * time.Second},
	}
}

type request struct {
	Model string `json:"model"`
	Input string `json:"input"`
}

type response struct {
	Results []struct {
		Flagged    *bool           `json:"flagged"` // absent in Mistral responses
		Categories map[string]bool `json:"categories"`
	} `json:"results"`
}

// Check screens text. A nil Client passes everything.
func (c *Client) Check(ctx context.Context, text string) (*Verdict, error) {
	if c == nil {
		return &Verdict{Safe: true}, nil
	}

	payload, err := json.Marshal(request{Model: c.model, Input: text})
	if err != nil {
		return nil, fmt.Errorf("moderation marshal: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/moderations", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("moderation request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("moderation http: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return nil, fmt.Errorf("moderation read body: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("moderation API error (status %d): %s", resp.StatusCode, body)
	}

	var result response
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("moderation unmarshal: %w", err)
	}
	if len(result.Results) == 0 {
		return &Verdict{Safe: true}, nil
	}

	r := result.Results[0]
	var flagged []string
	for cat, hit := range r.Categories {
		if hit {
			flagged = append(flagged, readable(cat))
		}
	}
	slices.Sort(flagged)

	safe := len(flagged) == 0
	if r.Flagged != nil {
		safe = !*r.Flagged
	}
	return &Verdict{Safe: safe, Categories: flagged}, nil
}

// readable turns "hate/threatening" into "hate (threatening)" and
// "self_harm" into "self harm".
func readable(cat string) string {
	if base, sub, ok := strings.Cut(cat, "/"); ok {
		cat = base + " (" + sub + ")"
	}
	return strings.ReplaceAll(cat, "_", " ")
}
