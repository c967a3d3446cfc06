package reporter

import (
	"fmt"
	"html/template"
	"strings"
	"unicode"
)

// titleCase converts string to title case (replaces deprecated strings.Title)
func titleCase(s string) string {
	if s == "" {
		return s
	}

	words := strings.Fields(s)
	for i, word := range words {
		runes := []rune(word)
		runes[0] = unicode.ToUpper(runes[0])
		for j := 1; j < len(runes); j++ {
			runes[j] = unicode.ToLower(runes[j])
		}
		words[i] = string(runes)
	}
	return strings.Join(words, " ")
}

func formatScore(score *float64) string {
	if score == nil {
		return "N/A"
	}
	return fmt.Sprintf("%.1f/10", *score)
}

func severityClass(severity string) string {
	switch strings.ToLower(severity) {
	case "critical", "high":
		return "sev-high"
	case "medium":
		return "sev-medium"
	case "low":
		return "sev-low"
	default:
		return "sev-unknown"
	}
}

// GetTemplateFunctions returns the functions available to the result templates.
func GetTemplateFunctions() template.FuncMap {
	return template.FuncMap{
		"title":         titleCase,
		"ToUpper":       strings.ToUpper,
		"formatScore":   formatScore,
		"severityClass": severityClass,
	}
}
