package agent

import (
	"regexp"
	"strings"
)

// Issue codes attached to validation reports.
const (
	IssueProfanityMasked   = "PROFANITY_MASKED"
	IssueProfanityDetected = "PROFANITY_DETECTED"
	IssueMaxLengthExceeded = "MAX_LENGTH_EXCEEDED"
	IssueEmojiNotAllowed   = "EMOJI_NOT_ALLOWED"
	IssueCTAMissing        = "CTA_MISSING"
)

var profanityList = map[string]struct{}{
	"damn": {},
	"hell": {},
	"shit": {},
}

var (
	ctaRegex      = regexp.MustCompile(`(?i)\b(buy|shop|order|get|book|reserve|save|claim)\b`)
	discountRegex = regexp.MustCompile(`(?i)(\d{1,2}%|half off|bogo)`)
	productRegex  = regexp.MustCompile(`\bfor\s+([A-Za-z ]+)`)
	emojiRegex    = regexp.MustCompile(`[\x{263a}-\x{1F645}]`)
)

const wordPunctuation = `.,!?;:'"()[]{}<>-`

// SanitizeText trims the input and masks profanity word by word,
// returning the cleaned text plus any issue codes raised.
func SanitizeText(text string) (string, []string) {
	issues := []string{}
	words := strings.Fields(strings.TrimSpace(text))
	for i, word := range words {
		clean := strings.ToLower(strings.Trim(word, wordPunctuation))
		if _, bad := profanityList[clean]; bad {
			issues = append(issues, IssueProfanityMasked)
			masked := len(word) - 1
			if masked < 1 {
				masked = 1
			}
			words[i] = word[:1] + strings.Repeat("*", masked)
		}
	}
	return strings.Join(words, " "), issues
}

// Entities are marketing signals pulled from the input text and fed to
// the rewrite model so they survive the rewrite.
type Entities struct {
	CTA      string `json:"cta,omitempty"`
	Discount string `json:"discount,omitempty"`
	Product  string `json:"product,omitempty"`
}

// ExtractEntities pulls the call-to-action verb, discount mention, and
// product phrase out of the text. Absent entities stay empty.
func ExtractEntities(text string) Entities {
	e := Entities{}
	if m := ctaRegex.FindString(text); m != "" {
		e.CTA = m
	}
	if m := discountRegex.FindString(text); m != "" {
		e.Discount = m
	}
	if m := productRegex.FindStringSubmatch(text); len(m) > 1 {
		e.Product = strings.TrimSpace(m[1])
	}
	return e
}

// Map renders the entities for the rewrite payload.
func (e Entities) Map() map[string]string {
	m := map[string]string{}
	if e.CTA != "" {
		m["cta"] = e.CTA
	}
	if e.Discount != "" {
		m["discount"] = e.Discount
	}
	if e.Product != "" {
		m["product"] = e.Product
	}
	return m
}

// containsProfanity reports whether any word in the text is on the
// profanity list.
func containsProfanity(text string) bool {
	for _, word := range strings.Fields(text) {
		clean := strings.ToLower(strings.Trim(word, wordPunctuation))
		if _, bad := profanityList[clean]; bad {
			return true
		}
	}
	return false
}
