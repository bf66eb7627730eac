// Package ingestion normalizes job posting text and derives keywords from it.
package ingestion

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"regexp"
	"strings"
)

var (
	multiSpace = regexp.MustCompile(`\s+`)
	blankRuns  = regexp.MustCompile(`\n\n\n+`)
)

// CleanText cleans and normalizes text content while preserving structure
func CleanText(content string) string {
	if content == "" {
		return ""
	}

	content = strings.ReplaceAll(content, "\r\n", "\n")
	content = strings.ReplaceAll(content, "\r", "\n")

	lines := strings.Split(content, "\n")
	cleanedLines := make([]string, 0, len(lines))
	for _, line := range lines {
		cleanedLines = append(cleanedLines, cleanLine(line))
	}

	result := strings.Join(cleanedLines, "\n")
	result = blankRuns.ReplaceAllString(result, "\n\n")
	return strings.TrimSpace(result)
}

// cleanLine cleans a single line while preserving headings, bullets and indentation
func cleanLine(line string) string {
	line = strings.TrimRight(line, " \t")
	if strings.TrimSpace(line) == "" {
		return ""
	}

	trimmed := strings.TrimLeft(line, " \t")
	if strings.HasPrefix(trimmed, "#") {
		return trimmed
	}

	indent := len(line) - len(trimmed)
	if isBulletLine(trimmed) {
		// Unicode bullets become markdown dashes
		for _, b := range []string{"• ", "· ", "▪ "} {
			if strings.HasPrefix(trimmed, b) {
				trimmed = "- " + strings.TrimPrefix(trimmed, b)
				break
			}
		}
		return strings.Repeat(" ", indent) + trimmed
	}

	return strings.Repeat(" ", indent) + multiSpace.ReplaceAllString(strings.TrimSpace(line), " ")
}

func isBulletLine(trimmed string) bool {
	return strings.HasPrefix(trimmed, "- ") || strings.HasPrefix(trimmed, "* ") ||
		strings.HasPrefix(trimmed, "• ") || strings.HasPrefix(trimmed, "· ") ||
		strings.HasPrefix(trimmed, "▪ ")
}

// Posting is a normalized job posting text
type Posting struct {
	Text string
	Hash string // SHA256 hex digest of Text
}

// NormalizePosting turns raw posting content, plain text or HTML, into
// cleaned text.
func NormalizePosting(raw string) Posting {
	text := raw
	if LooksLikeHTML(raw) {
		if extracted, err := ExtractMainText(raw); err == nil && extracted != "" {
			text = extracted
		}
	}
	text = CleanText(text)
	return Posting{Text: text, Hash: computeHash(text)}
}

// ReadPostingFile reads and normalizes a posting from disk.
func ReadPostingFile(path string) (Posting, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Posting{}, fmt.Errorf("file not found: %w", err)
		}
		return Posting{}, fmt.Errorf("failed to read file: %w", err)
	}
	return NormalizePosting(string(content)), nil
}

func computeHash(content string) string {
	hash := sha256.Sum256([]byte(content))
	return hex.EncodeToString(hash[:])
}
