package errors

import "fmt"

// Error codes for the knowledge-graph domain. Handlers branch on these
// codes when translating to user-facing messages.
const (
	CodeUnknownPrivacyLevel = "UNKNOWN_PRIVACY_LEVEL"
	CodeInvalidRequest      = "INVALID_FRIEND_REQUEST"
	CodeNoSuchRequest       = "NO_SUCH_FRIEND_REQUEST"
	CodeDuplicateLink       = "DUPLICATE_LINK"
	CodeDanglingReference   = "DANGLING_REFERENCE"
	CodeDuplicateTag        = "DUPLICATE_TAG"
)

// NewUnknownPrivacyLevelError is returned when a privacy level tag cannot be parsed
func NewUnknownPrivacyLevelError(level string) *AppError {
	return NewValidationError(fmt.Sprintf("unknown privacy level %q", level)).
		WithCode(CodeUnknownPrivacyLevel)
}

// NewInvalidRequestError is returned for friend requests that are not meaningful,
// such as a user sending a request to themselves
func NewInvalidRequestError(message string) *AppError {
	return NewValidationError(message).WithCode(CodeInvalidRequest)
}

// NewNoSuchRequestError is returned when accepting a friend request that does not exist
func NewNoSuchRequestError(from, to string) *AppError {
	return NewNotFoundError(fmt.Sprintf("friend request from %s to %s", from, to)).
		WithCode(CodeNoSuchRequest)
}

// NewDuplicateLinkError is returned when the (source, target, link type) uniqueness
// invariant would be violated
func NewDuplicateLinkError() *AppError {
	return NewConflictError("a link with the same source, target and type already exists").
		WithCode(CodeDuplicateLink)
}

// NewDanglingReferenceError is returned when a link endpoint does not resolve
func NewDanglingReferenceError(ref string) *AppError {
	return NewValidationError(fmt.Sprintf("link endpoint %s does not resolve to an existing node", ref)).
		WithCode(CodeDanglingReference)
}

// NewDuplicateTagError is returned when two tag names collapse to the same
// normalized form for one owner
func NewDuplicateTagError(name string) *AppError {
	return NewConflictError(fmt.Sprintf("tag %q already exists for this user", name)).
		WithCode(CodeDuplicateTag)
}

// hasCode reports whether err carries the given domain error code
func hasCode(err error, code string) bool {
	appErr := GetAppError(err)
	return appErr != nil && appErr.Code == code
}

// IsUnknownPrivacyLevel checks for the unknown-privacy-level error
func IsUnknownPrivacyLevel(err error) bool { return hasCode(err, CodeUnknownPrivacyLevel) }

// IsInvalidRequest checks for the invalid-friend-request error
func IsInvalidRequest(err error) bool { return hasCode(err, CodeInvalidRequest) }

// IsNoSuchRequest checks for the missing-friend-request error
func IsNoSuchRequest(err error) bool { return hasCode(err, CodeNoSuchRequest) }

// IsDuplicateLink checks for the duplicate-link error
func IsDuplicateLink(err error) bool { return hasCode(err, CodeDuplicateLink) }

// IsDanglingReference checks for the dangling-reference error
func IsDanglingReference(err error) bool { return hasCode(err, CodeDanglingReference) }

// IsDuplicateTag checks for the duplicate-tag error
func IsDuplicateTag(err error) bool { return hasCode(err, CodeDuplicateTag) }
