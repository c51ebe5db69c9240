package respond

import (
	"regexp"
)

var (
	// Fine-grained tokens first; the classic pattern would otherwise eat their prefix.
	githubPATPattern   = regexp.MustCompile(`github_pat_[A-Za-z0-9_]{20,}`)
	githubTokenPattern = regexp.MustCompile(`gh[pousr]_[A-Za-z0-9]{20,}`)

	bearerPattern = regexp.MustCompile(`(?i)bearer\s+[A-Za-z0-9._\-]+`)

	// Incoming webhook URLs embed their secret in the path.
	slackWebhookPattern   = regexp.MustCompile(`https://hooks\.slack\.com/services/[A-Za-z0-9/_\-]+`)
	discordWebhookPattern = regexp.MustCompile(`https://(?:discord|discordapp)\.com/api/webhooks/[A-Za-z0-9/_\-]+`)

	dbPasswordPattern = regexp.MustCompile(`://([^:/@]+):([^@]+)@`)
)

// SanitizeError returns the error message with credentials masked.
func SanitizeError(err error) string {
	if err == nil {
		return ""
	}
	return SanitizeString(err.Error())
}

// SanitizeString masks GitHub tokens, bearer credentials, webhook URLs and DSN passwords in s.
func SanitizeString(s string) string {
	s = githubPATPattern.ReplaceAllString(s, "github_pat_****")
	s = githubTokenPattern.ReplaceAllStringFunc(s, func(m string) string {
		return m[:4] + "****"
	})
	s = bearerPattern.ReplaceAllString(s, "Bearer ****")
	s = slackWebhookPattern.ReplaceAllString(s, "https://hooks.slack.com/services/****")
	s = discordWebhookPattern.ReplaceAllString(s, "https://discord.com/api/webhooks/****")
	s = dbPasswordPattern.ReplaceAllString(s, "://$1:****@")
	return s
}
