package extract

import (
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSON_FencedBlock(t *testing.T) {
	got := JSON("prefix text ```json\n{\"a\":1}\n``` suffix")
	assert.Equal(t, `{"a":1}`, got)
}

func TestJSON_BraceScan(t *testing.T) {
	got := JSON("noise {\"a\": {\"b\": 1}} trailing")
	assert.Equal(t, `{"a": {"b": 1}}`, got)
}

func TestJSON(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{
			name:  "fenced block with surrounding prose",
			input: "Here is my review:\n```json\n{\"summary\": \"ok\"}\n```\nLet me know if you need more.",
			want:  `{"summary": "ok"}`,
		},
		{
			name:  "fence tag is case-insensitive",
			input: "```JSON\n{\"a\": 1}\n```",
			want:  `{"a": 1}`,
		},
		{
			name:  "multibyte prose before the fence",
			input: strings.Repeat("\u023A", 7) + "```json\nX\n```",
			want:  "X",
		},
		{
			name:  "case-folding rune before the fence",
			input: "\u212A```json\n{\"a\": 4}\n```",
			want:  `{"a": 4}`,
		},
		{
			name:  "fenced block wins over an earlier brace",
			input: "{ignore this ```json\n{\"a\": 2}\n```",
			want:  `{"a": 2}`,
		},
		{
			name:  "unterminated fence falls back to brace scan",
			input: "```json\n{\"a\": 3}",
			want:  `{"a": 3}`,
		},
		{
			name:  "brace inside a string literal is not counted",
			input: `result: {"msg": "an { inside", "n": 1} done`,
			want:  `{"msg": "an { inside", "n": 1}`,
		},
		{
			name:  "escaped quote inside a string literal",
			input: `{"msg": "say \" {hi}", "ok": true} trailing`,
			want:  `{"msg": "say \" {hi}", "ok": true}`,
		},
		{
			name:  "unbalanced object runs to the end",
			input: `noise {"a": 1`,
			want:  `{"a": 1`,
		},
		{
			name:  "no JSON returns input unchanged",
			input: "the model refused to answer",
			want:  "the model refused to answer",
		},
		{
			name:  "empty input",
			input: "",
			want:  "",
		},
		{
			name:  "bare object passes through",
			input: `{"a": 1}`,
			want:  `{"a": 1}`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, JSON(tt.input))
		})
	}
}

func TestJSON_ResultDecodes(t *testing.T) {
	input := "Sure! Here is the verdict you asked for:\n\n```json\n{\n  \"summary\": \"two issues\",\n  \"findings\": [{\"line\": 10, \"severity\": \"warning\"}]\n}\n```"

	var verdict struct {
		Summary  string `json:"summary"`
		Findings []struct {
			Line     int    `json:"line"`
			Severity string `json:"severity"`
		} `json:"findings"`
	}

	require.NoError(t, json.Unmarshal([]byte(JSON(input)), &verdict))
	assert.Equal(t, "two issues", verdict.Summary)
	require.Len(t, verdict.Findings, 1)
	assert.Equal(t, 10, verdict.Findings[0].Line)
}
