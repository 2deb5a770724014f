// Package locator turns the platform's post URL variants into a canonical post identity.
package locator

import (
	"net/url"
	"strings"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/models"
)

// DefaultWebBaseURL is the host canonical explore URLs are built on.
const DefaultWebBaseURL = "https://www.xiaohongshu.com"

// Query parameters carried into the canonical URL, in output order.
// Everything else (sharing, tracking, app-platform) is dropped.
var keptParams = []string{"xsec_source", "type", "xsec_token"}

type Locator struct {
	baseURL string
}

func New(baseURL string) *Locator {
	if baseURL == "" {
		baseURL = DefaultWebBaseURL
	}
	return &Locator{baseURL: strings.TrimRight(baseURL, "/")}
}

// Normalize with the default web base URL.
func Normalize(raw string) (models.Locator, error) {
	return New("").Normalize(raw)
}

// Normalize accepts either /discovery/item/{id} or /explore/{id} and returns the post ID,
// share token, share source and the explore-shape URL.
func (l *Locator) Normalize(raw string) (models.Locator, error) {
	parsed, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return models.Locator{}, apperrors.Wrap(apperrors.KindInvalidURL, "normalize", err)
	}

	segments := strings.Split(strings.Trim(parsed.Path, "/"), "/")

	var noteID string
	switch {
	case len(segments) == 3 && segments[0] == "discovery" && segments[1] == "item":
		noteID = segments[2]
	case len(segments) == 2 && segments[0] == "explore":
		noteID = segments[1]
	}
	if noteID == "" {
		return models.Locator{}, apperrors.New(apperrors.KindInvalidURL, "normalize", "unrecognized post URL path: "+parsed.Path)
	}

	query := parsed.Query()

	return models.Locator{
		NoteID:       noteID,
		Token:        query.Get("xsec_token"),
		Source:       query.Get("xsec_source"),
		CanonicalURL: l.exploreURL(noteID, query),
	}, nil
}

// ExploreURL builds the explore URL for a post the platform handed out with a share token,
// such as a search result. The result round-trips through Normalize.
func (l *Locator) ExploreURL(noteID, token, source string) string {
	query := url.Values{}
	if source != "" {
		query.Set("xsec_source", source)
	}
	if token != "" {
		query.Set("xsec_token", token)
	}
	return l.exploreURL(noteID, query)
}

func (l *Locator) exploreURL(noteID string, query url.Values) string {
	var parts []string
	for _, key := range keptParams {
		if !query.Has(key) {
			continue
		}
		parts = append(parts, key+"="+url.QueryEscape(query.Get(key)))
	}

	explore := l.baseURL + "/explore/" + url.PathEscape(noteID)
	if len(parts) > 0 {
		explore += "?" + strings.Join(parts, "&")
	}
	return explore
}
