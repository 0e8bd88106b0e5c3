package utils

import (
	"testing"
)

func TestCleanCodeFence(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "plain text",
			input:    "add_to_cart",
			expected: "add_to_cart",
		},
		{
			name:     "triple backticks",
			input:    "```\nadd_to_cart\n```",
			expected: "add_to_cart",
		},
		{
			name:     "fence with language tag",
			input:    "```text\nadd_to_cart\n```",
			expected: "add_to_cart",
		},
		{
			name:     "single backticks",
			input:    "`show_cart`",
			expected: "show_cart",
		},
		{
			name:     "extra whitespace",
			input:    "  ```  \n  stock  \n  ```  ",
			expected: "stock",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := CleanCodeFence(tt.input)
			if result != tt.expected {
				t.Errorf("CleanCodeFence() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestSanitizeLLMOutput(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected string
	}{
		{
			name:     "trailing spaces trimmed",
			input:    "line one   \nline two\t",
			expected: "line one\nline two",
		},
		{
			name:     "blank runs collapse to one",
			input:    "para one\n\n\n\npara two",
			expected: "para one\n\npara two",
		},
		{
			name:     "windows newlines normalized",
			input:    "a\r\nb",
			expected: "a\nb",
		},
		{
			name:     "surrounding blank lines dropped",
			input:    "\n\nanswer\n\n",
			expected: "answer",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := SanitizeLLMOutput(tt.input)
			if result != tt.expected {
				t.Errorf("SanitizeLLMOutput() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestNormalizeLabel(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"ADD_TO_CART", "add_to_cart"},
		{"\"stock\"", "stock"},
		{"`image`", "image"},
		{"```\nShow_Cart\n```", "show_cart"},
		{"general.", "general"},
		{"  description  ", "description"},
	}

	for _, tt := range tests {
		if got := NormalizeLabel(tt.input); got != tt.expected {
			t.Errorf("NormalizeLabel(%q) = %q, want %q", tt.input, got, tt.expected)
		}
	}
}
