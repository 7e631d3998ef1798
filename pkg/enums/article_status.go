package enums

import "fmt"

// ArticleStatus tracks whether an article is publicly visible.
type ArticleStatus string

const (
	ArticleStatusDraft     ArticleStatus = "draft"
	ArticleStatusPublished ArticleStatus = "published"
)

var validArticleStatuses = []ArticleStatus{
	ArticleStatusDraft,
	ArticleStatusPublished,
}

// String implements fmt.Stringer.
func (s ArticleStatus) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ArticleStatus.
func (s ArticleStatus) IsValid() bool {
	for _, candidate := range validArticleStatuses {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseArticleStatus converts raw input into an ArticleStatus.
func ParseArticleStatus(value string) (ArticleStatus, error) {
	for _, candidate := range validArticleStatuses {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid article status %q", value)
}
