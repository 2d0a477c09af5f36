package constants

// Retry constants
const (
	// MaxQueryRetries is the number of attempts for transient graph failures
	MaxQueryRetries = 3

	// MaxRewriteRetries is the number of attempts for rewrite model calls
	MaxRewriteRetries = 3
)

// Strategy constants
const (
	// TopStyles limits how many ranked styles appear in strategy insights
	TopStyles = 5

	// TopCreativeTypes limits how many ranked creative types appear in insights
	TopCreativeTypes = 5

	// TopAudiences limits how many target audiences appear in insights
	TopAudiences = 5

	// TopSimilarPlatforms limits alternative-platform suggestions per input platform
	TopSimilarPlatforms = 3
)

// Default constraint values applied when a platform has no Constraint
// attachments in the graph
const (
	DefaultMaxLengthChars = 2000
	DefaultAllowEmojis    = true
	DefaultCTARequired    = false
)
