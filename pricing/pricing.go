// Package pricing estimates the USD cost of completions from a static
// price table. Estimation is advisory: an unknown model costs zero, it
// never blocks a review run.
package pricing

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/sidhusupreetSFDC/cursor-ai-poc/providers"
)

var _1M = decimal.NewFromInt(1e6)

// Entry is one row of the price table. Prices are USD per million
// tokens, held as decimal strings to avoid float drift.
type Entry struct {
	// Provider namespace the model lives in
	Provider providers.Name `json:"provider"`

	// Model identifier; also matches as a family prefix, so
	// "claude-sonnet-4" covers "claude-sonnet-4-20250514"
	Model string `json:"model"`

	// InputUSDPer1M is the prompt-token price
	InputUSDPer1M string `json:"input_usd_per_1m"`

	// OutputUSDPer1M is the completion-token price
	OutputUSDPer1M string `json:"output_usd_per_1m"`
}

// Table holds pricing entries and answers cost queries.
type Table struct {
	entries []Entry
}

// NewTable builds a table from explicit entries.
func NewTable(entries []Entry) *Table {
	return &Table{entries: entries}
}

// Default returns the built-in price table.
func Default() *Table {
	return NewTable([]Entry{
		{Provider: providers.Anthropic, Model: "claude-opus-4", InputUSDPer1M: "15.00", OutputUSDPer1M: "75.00"},
		{Provider: providers.Anthropic, Model: "claude-sonnet-4", InputUSDPer1M: "3.00", OutputUSDPer1M: "15.00"},
		{Provider: providers.Anthropic, Model: "claude-3-7-sonnet", InputUSDPer1M: "3.00", OutputUSDPer1M: "15.00"},
		{Provider: providers.Anthropic, Model: "claude-3-5-sonnet", InputUSDPer1M: "3.00", OutputUSDPer1M: "15.00"},
		{Provider: providers.Anthropic, Model: "claude-3-5-haiku", InputUSDPer1M: "0.80", OutputUSDPer1M: "4.00"},
		{Provider: providers.Anthropic, Model: "claude-3-haiku", InputUSDPer1M: "0.25", OutputUSDPer1M: "1.25"},

		{Provider: providers.OpenAI, Model: "gpt-4o", InputUSDPer1M: "2.50", OutputUSDPer1M: "10.00"},
		{Provider: providers.OpenAI, Model: "gpt-4o-mini", InputUSDPer1M: "0.15", OutputUSDPer1M: "0.60"},
		{Provider: providers.OpenAI, Model: "gpt-4.1", InputUSDPer1M: "2.00", OutputUSDPer1M: "8.00"},
		{Provider: providers.OpenAI, Model: "gpt-4.1-mini", InputUSDPer1M: "0.40", OutputUSDPer1M: "1.60"},
		{Provider: providers.OpenAI, Model: "gpt-4-turbo", InputUSDPer1M: "10.00", OutputUSDPer1M: "30.00"},
		{Provider: providers.OpenAI, Model: "gpt-3.5-turbo", InputUSDPer1M: "0.50", OutputUSDPer1M: "1.50"},

		// Cursor proxies frontier models under its own identifiers at
		// passthrough prices.
		{Provider: providers.Cursor, Model: "claude-4-sonnet", InputUSDPer1M: "3.00", OutputUSDPer1M: "15.00"},
		{Provider: providers.Cursor, Model: "claude-4-opus", InputUSDPer1M: "15.00", OutputUSDPer1M: "75.00"},
		{Provider: providers.Cursor, Model: "gpt-4o", InputUSDPer1M: "2.50", OutputUSDPer1M: "10.00"},
	})
}

// Lookup finds the entry for a model: exact match first, then the
// longest family prefix within the same provider namespace.
func (t *Table) Lookup(provider providers.Name, model string) (Entry, bool) {
	var best Entry
	found := false

	for _, entry := range t.entries {
		if entry.Provider != provider {
			continue
		}
		if entry.Model == model {
			return entry, true
		}
		if strings.HasPrefix(model, entry.Model) {
			if !found || len(entry.Model) > len(best.Model) {
				best = entry
				found = true
			}
		}
	}

	return best, found
}

// Estimate returns the USD cost of a completion:
// (inputTokens·inputPrice + outputTokens·outputPrice) / 1M.
// Unrecognized models cost zero.
func (t *Table) Estimate(provider providers.Name, model string, inputTokens, outputTokens int) decimal.Decimal {
	entry, ok := t.Lookup(provider, model)
	if !ok {
		return decimal.Zero
	}

	inputUSD := requireFromString(entry.InputUSDPer1M).Mul(decimal.NewFromInt(int64(inputTokens))).Div(_1M)
	outputUSD := requireFromString(entry.OutputUSDPer1M).Mul(decimal.NewFromInt(int64(outputTokens))).Div(_1M)

	return inputUSD.Add(outputUSD)
}

// EstimateUsage prices a reported usage block.
func (t *Table) EstimateUsage(provider providers.Name, model string, usage providers.Usage) decimal.Decimal {
	return t.Estimate(provider, model, usage.InputTokens, usage.OutputTokens)
}

// Entries returns the table rows ordered by provider, then model.
func (t *Table) Entries() []Entry {
	entries := make([]Entry, len(t.entries))
	copy(entries, t.entries)

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Provider != entries[j].Provider {
			return entries[i].Provider < entries[j].Provider
		}
		return entries[i].Model < entries[j].Model
	})

	return entries
}

func requireFromString(s string) decimal.Decimal {
	if s == "" {
		return decimal.Zero
	}
	return decimal.RequireFromString(s)
}
