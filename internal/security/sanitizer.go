// Package security strips markup from user-supplied profile text before it
// is stored or echoed back.
package security

import (
	"html"
	"net/url"
	"strings"

	"github.com/microcosm-cc/bluemonday"

	"github.com/sponsormatch/matchbot/internal/core/domain"
)

// Sanitizer removes every HTML tag from free text. Safe for concurrent use.
type Sanitizer struct {
	policy *bluemonday.Policy
}

func NewSanitizer() *Sanitizer {
	return &Sanitizer{policy: bluemonday.StrictPolicy()}
}

// textEntities undoes the policy's escaping of characters that cannot open
// markup. "&lt;" is never decoded.
var textEntities = strings.NewReplacer("&amp;", "&", "&#34;", `"`, "&#39;", "'", "&gt;", ">")

// Text returns in with all markup removed and surrounding space trimmed.
// Entities are decoded before the policy runs, so encoded tags are stripped
// like literal ones.
func (s *Sanitizer) Text(in string) string {
	return strings.TrimSpace(textEntities.Replace(s.policy.Sanitize(html.UnescapeString(in))))
}

// URL returns in if it is an absolute http(s) URL, otherwise "".
func (s *Sanitizer) URL(in string) string {
	in = strings.TrimSpace(in)
	if in == "" {
		return ""
	}
	u, err := url.Parse(in)
	if err != nil || u.Host == "" || (u.Scheme != "http" && u.Scheme != "https") {
		return ""
	}
	return u.String()
}

// ProfileUpdate cleans every free-text field of p in place.
func (s *Sanitizer) ProfileUpdate(p *domain.ProfileUpdate) {
	for _, f := range []*string{p.Name, p.Bio, p.Company, p.Location} {
		if f != nil {
			*f = s.Text(*f)
		}
	}
	for _, f := range []*string{p.Avatar, p.Website} {
		if f != nil {
			*f = s.URL(*f)
		}
	}
	if p.SocialConnections != nil {
		for i := range *p.SocialConnections {
			c := &(*p.SocialConnections)[i]
			c.Username = s.Text(c.Username)
		}
	}
}
