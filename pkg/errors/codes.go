package errors

// Stable error codes for the chat domain. Each failure kind keeps its
// own code and status so the boundary never collapses distinct kinds
// into a generic internal error.
const (
	CodeValidation            = "VALIDATION_ERROR"
	CodeConversationNotFound  = "CONVERSATION_NOT_FOUND"
	CodeConversationNotActive = "CONVERSATION_NOT_ACTIVE"
	CodeUpstreamUnavailable   = "UPSTREAM_UNAVAILABLE"
	CodeUpstreamEmptyResponse = "UPSTREAM_EMPTY_RESPONSE"
)

// NewValidationError creates a 400 rejection for malformed input
func NewValidationError(message string) *AppError {
	return NewBadRequestError(CodeValidation, message)
}

// NewConversationNotFound creates the 404 returned whenever a
// conversation is absent or not owned by the caller. The two cases are
// deliberately indistinguishable to the client.
func NewConversationNotFound() *AppError {
	return NewNotFoundError(CodeConversationNotFound, "Conversation not found")
}

// NewConversationNotActive creates the 400 returned when a chat turn
// targets an archived or deleted conversation
func NewConversationNotActive() *AppError {
	return NewBadRequestError(CodeConversationNotActive, "Cannot send message to inactive conversation")
}
