// Package llm - extractor.go provides generic LLM-based structured extraction.
package llm

import (
	"fmt"
	"strings"
)

// ExtractionSchema defines the structure for LLM-based content extraction.
// It provides a reusable way to define what information to extract from text.
type ExtractionSchema struct {
	Name        string        // Schema name (e.g., "AdmissionsDeadlines")
	Description string        // System prompt preamble describing the extraction task
	Fields      []SchemaField // Expected output fields
}

// SchemaField defines a single field in the extraction output.
type SchemaField struct {
	Name        string // JSON field name
	Type        string // Type hint: "string", "[]string", "map[string]string"
	Description string // Description for the LLM
	Required    bool   // Whether this field is required
}

// BuildExtractionPrompt constructs the LLM prompt from schema and input text.
func BuildExtractionPrompt(schema ExtractionSchema, inputText string) string {
	var sb strings.Builder

	sb.WriteString(schema.Description)
	sb.WriteString("\n\n")

	sb.WriteString("Return ONLY valid JSON matching this exact structure:\n{\n")
	for i, field := range schema.Fields {
		typeHint := field.Type
		if typeHint == "" {
			typeHint = "string"
		}
		requiredHint := ""
		if field.Required {
			requiredHint = " (required)"
		}
		sb.WriteString(fmt.Sprintf("  \"%s\": %s%s", field.Name, typeHint, requiredHint))
		if field.Description != "" {
			sb.WriteString(fmt.Sprintf(" // %s", field.Description))
		}
		if i < len(schema.Fields)-1 {
			sb.WriteString(",")
		}
		sb.WriteString("\n")
	}
	sb.WriteString("}\n\n")

	sb.WriteString("IMPORTANT:\n")
	sb.WriteString("- Extract information directly from the text, do not invent or summarize.\n")
	sb.WriteString("- Return ONLY the JSON object, no markdown, no explanation, no code blocks.\n\n")

	sb.WriteString("Input text:\n\"\"\"\n")
	sb.WriteString(inputText)
	sb.WriteString("\n\"\"\"\n")

	return sb.String()
}

// --- Predefined Schemas ---

// AdmissionsDeadlinesSchema returns the extraction schema for admissions pages.
// Used as a fallback when pattern-based deadline extraction finds nothing.
func AdmissionsDeadlinesSchema() ExtractionSchema {
	return ExtractionSchema{
		Name: "AdmissionsDeadlines",
		Description: `You are an expert college admissions page parser. COPY DATES VERBATIM - do not reformat or guess.
Your task is to extract application deadlines from a college admissions page.
Goal: Extract the regular decision, early action, and early decision deadlines where present.
EXCLUDE: Scholarship deadlines, financial aid priority dates, transfer deadlines.`,
		Fields: []SchemaField{
			{
				Name:        "regular_decision",
				Type:        "\"string\"",
				Description: "Regular decision application deadline as written on the page",
				Required:    true,
			},
			{
				Name:        "early_action",
				Type:        "\"string\"",
				Description: "Early action deadline, empty string when the school has none",
				Required:    false,
			},
			{
				Name:        "early_decision",
				Type:        "\"string\"",
				Description: "Early decision deadline, empty string when the school has none",
				Required:    false,
			},
		},
	}
}
