package valueobjects

import (
	"fmt"
	"strings"
	"unicode/utf8"

	pkgerrors "inklings-backend/pkg/errors"
)

const (
	maxTitleLength   = 255
	maxContentLength = 65536
	maxSummaryLength = 1024
)

// NodeContent is a value object for the title+body payload shared by all
// content kinds
type NodeContent struct {
	title string
	body  string
}

// NewNodeContent creates content with validation
func NewNodeContent(title, body string) (NodeContent, error) {
	title = strings.TrimSpace(title)
	body = strings.TrimSpace(body)

	if title == "" {
		return NodeContent{}, pkgerrors.NewValidationError("title cannot be empty")
	}
	if utf8.RuneCountInString(title) > maxTitleLength {
		return NodeContent{}, fmt.Errorf("title exceeds maximum length of %d characters", maxTitleLength)
	}
	if utf8.RuneCountInString(body) > maxContentLength {
		return NodeContent{}, fmt.Errorf("content body exceeds maximum length of %d characters", maxContentLength)
	}

	return NodeContent{title: title, body: body}, nil
}

// Title returns the content title
func (c NodeContent) Title() string {
	return c.title
}

// Body returns the content body
func (c NodeContent) Body() string {
	return c.body
}

// IsEmpty checks if content is empty
func (c NodeContent) IsEmpty() bool {
	return c.title == "" && c.body == ""
}

// Equals checks if two contents are equal
func (c NodeContent) Equals(other NodeContent) bool {
	return c.title == other.title && c.body == other.body
}

// Summary is the short abstract carried by summarizable kinds
type Summary struct {
	value string
}

// NewSummary creates a summary with validation
func NewSummary(value string) (Summary, error) {
	value = strings.TrimSpace(value)
	if utf8.RuneCountInString(value) > maxSummaryLength {
		return Summary{}, fmt.Errorf("summary exceeds maximum length of %d characters", maxSummaryLength)
	}
	return Summary{value: value}, nil
}

// String returns the summary text
func (s Summary) String() string {
	return s.value
}

// IsEmpty checks if the summary is empty
func (s Summary) IsEmpty() bool {
	return s.value == ""
}
