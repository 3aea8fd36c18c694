package frontmatter

import (
	"fmt"
	"strings"
	"time"

	apperrors "git.home.luguber.info/inful/blogbuilder/internal/errors"
)

// PubDateLayout is the canonical publication timestamp format.
const PubDateLayout = "2006-01-02 15:04:05 -07:00"

// Secondary layouts accepted for pub_date values given as strings.
// Bare dates normalize to midnight UTC.
var pubDateLayouts = []string{
	PubDateLayout,
	"2006-01-02 15:04:05 Z07:00",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// Meta is the typed front matter envelope of a page. Unknown keys are
// preserved in Extra for template context. Presence flags keep missing
// and zero-valued fields apart so validation can be deferred.
type Meta struct {
	PubDate       time.Time
	HasPubDate    bool
	Public        bool
	HasPublic     bool
	Title         string
	HasTitle      bool
	Tags          []string
	HasTags       bool
	Comments      bool
	UseTemplating bool
	Extra         map[string]any

	pubDateRaw string
	pubDateErr error
	tagsErr    error
}

// ParseMeta maps a raw front matter mapping onto Meta. Type mismatches
// on required fields are recorded but not returned: validation is a
// separate step so callers can still introspect partially valid pages
// (listing drafts, for example).
func ParseMeta(fields map[string]any) Meta {
	meta := Meta{
		Comments: true,
		Extra:    make(map[string]any, len(fields)),
	}

	for key, value := range fields {
		switch key {
		case "pub_date":
			meta.parsePubDate(value)
		case "public":
			if b, ok := value.(bool); ok {
				meta.Public = b
				meta.HasPublic = true
			}
		case "title":
			if s, ok := value.(string); ok && s != "" {
				meta.Title = s
				meta.HasTitle = true
			}
		case "tags":
			meta.parseTags(value)
		case "comments":
			if b, ok := value.(bool); ok {
				meta.Comments = b
			}
		case "jinja", "use_templating":
			if b, ok := value.(bool); ok {
				meta.UseTemplating = b
			}
		default:
			meta.Extra[key] = value
		}
	}
	return meta
}

func (m *Meta) parsePubDate(value any) {
	switch v := value.(type) {
	case time.Time:
		// yaml.v3 resolves canonical timestamps natively.
		m.PubDate = v.UTC()
		m.HasPubDate = true
	case string:
		m.pubDateRaw = v
		for _, layout := range pubDateLayouts {
			t, err := time.Parse(layout, strings.TrimSpace(v))
			if err == nil {
				m.PubDate = t.UTC()
				m.HasPubDate = true
				return
			}
		}
		m.pubDateErr = fmt.Errorf("cannot parse pub_date %q (want %q)", v, PubDateLayout)
	default:
		m.pubDateErr = fmt.Errorf("pub_date has unexpected type %T", value)
	}
}

func (m *Meta) parseTags(value any) {
	switch v := value.(type) {
	case nil:
		m.Tags = []string{}
		m.HasTags = true
	case []any:
		tags := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				m.tagsErr = fmt.Errorf("tags must be strings, got %T", item)
				return
			}
			tags = append(tags, s)
		}
		m.Tags = tags
		m.HasTags = true
	default:
		m.tagsErr = fmt.Errorf("tags must be a list, got %T", value)
	}
}

// Validate enforces presence and well-formedness of the required fields:
// pub_date, public, title, tags. The first problem found is returned as
// a validation error naming the offending field.
func (m *Meta) Validate(page string) error {
	if m.pubDateErr != nil {
		return apperrors.ValidationFailed(page, "pub_date", m.pubDateErr.Error())
	}
	if !m.HasPubDate {
		return apperrors.ValidationFailed(page, "pub_date", "required field missing")
	}
	if !m.HasPublic {
		return apperrors.ValidationFailed(page, "public", "required field missing")
	}
	if !m.HasTitle {
		return apperrors.ValidationFailed(page, "title", "required field missing")
	}
	if m.tagsErr != nil {
		return apperrors.ValidationFailed(page, "tags", m.tagsErr.Error())
	}
	if !m.HasTags {
		return apperrors.ValidationFailed(page, "tags", "required field missing")
	}
	return nil
}
