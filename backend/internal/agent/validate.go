package agent

import (
	"strings"

	"ad-rewriter/backend/internal/strategy"
)

// ValidationReport records constraint checks against a rewritten text
// and the repaired version that satisfies them.
type ValidationReport struct {
	OK     bool     `json:"ok"`
	Issues []string `json:"issues"`
}

const fallbackCTA = "Get yours today."

// ValidateAndRepair checks the rewritten text against the platform's
// constraints, repairing what it can: over-length text is truncated,
// disallowed emojis are stripped, a missing required call-to-action is
// appended. Profanity is flagged but left to the caller's sanitization.
func ValidateAndRepair(text string, constraints strategy.Constraints) (string, *ValidationReport) {
	report := &ValidationReport{Issues: []string{}}
	repaired := text

	if runes := []rune(repaired); constraints.MaxLengthChars > 0 && len(runes) > constraints.MaxLengthChars {
		report.Issues = append(report.Issues, IssueMaxLengthExceeded)
		repaired = strings.TrimRight(string(runes[:constraints.MaxLengthChars]), " \t\n")
	}

	if !constraints.AllowEmojis && emojiRegex.MatchString(repaired) {
		report.Issues = append(report.Issues, IssueEmojiNotAllowed)
		repaired = emojiRegex.ReplaceAllString(repaired, "")
	}

	if constraints.CTARequired && !ctaRegex.MatchString(repaired) {
		report.Issues = append(report.Issues, IssueCTAMissing)
		repaired = strings.TrimRight(repaired, wordPunctuation) + ". " + fallbackCTA
	}

	if containsProfanity(repaired) {
		report.Issues = append(report.Issues, IssueProfanityDetected)
	}

	report.OK = len(report.Issues) == 0
	return repaired, report
}
