package entity

import (
	"fmt"
	"net/url"
)

// maxURLLength defines the maximum allowed length for configured URLs.
const maxURLLength = 2048

// ValidateURL validates the format of an endpoint URL such as the dataset base
// URL or the workflow API URL. It checks that the URL is well-formed, uses the
// http or https scheme, and has a host.
func ValidateURL(field, rawURL string) error {
	if rawURL == "" {
		return &ValidationError{Field: field, Message: "URL is required"}
	}

	if len(rawURL) > maxURLLength {
		return &ValidationError{
			Field:   field,
			Message: fmt.Sprintf("url must not exceed %d characters", maxURLLength),
		}
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("parse URL: %w", err)
	}

	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return &ValidationError{Field: field, Message: "URL must use http or https scheme"}
	}

	if parsedURL.Host == "" {
		return &ValidationError{Field: field, Message: "URL must have a valid host"}
	}

	return nil
}

// ValidateArticle reports structural problems in a loaded article. Loading does
// not reject such articles; callers use this to log data quality issues.
func ValidateArticle(a Article) error {
	if a.ID == "" {
		return &ValidationError{Field: "id", Message: "article id is required"}
	}
	if raw := a.PublishedAt.Unparsed(); raw != "" {
		return &ValidationError{Field: "publishedAt", Message: fmt.Sprintf("unrecognised timestamp %q", raw)}
	}
	if a.PublishedAt.IsZero() {
		return &ValidationError{Field: "publishedAt", Message: "publishedAt is required"}
	}
	if !a.Source.Type.Known() {
		return &ValidationError{Field: "source.type", Message: fmt.Sprintf("unknown source type %q", a.Source.Type)}
	}
	return nil
}
