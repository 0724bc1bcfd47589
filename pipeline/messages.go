package pipeline

// messages is the closed lookup from backend error codes to
// user-presentable text. Unknown codes fall back to a per-kind generic:
// raw backend strings never reach the screen.
var messages = map[string]string{
	"session_expired":   "Your session has expired. Please sign in again.",
	"invalid_email":     "That email address doesn't look right.",
	"required":          "This field is required.",
	"too_long":          "This value is too long.",
	"duplicate":         "This value is already in use.",
	"tenant_suspended":  "This workspace is suspended. Contact support.",
	"permission_denied": "You don't have permission to do that.",
	"invalid_response":  "The server sent back something we couldn't read. Please try again.",
	"timeout":           "The request took too long. Please try again.",
	"network":           "We couldn't reach the server. Check your connection.",
	"server_error":      "Something went wrong on our side. Please try again.",
}

var kindFallbacks = map[Kind]string{
	KindValidation:     "Please check your input and try again.",
	KindAuthentication: "Your session has expired. Please sign in again.",
	KindNetwork:        "We couldn't reach the server. Check your connection.",
	KindTimeout:        "The request took too long. Please try again.",
	KindUnknown:        "Something unexpected went wrong. Please try again.",
}

func messageFor(kind Kind, code string) string {
	if msg, ok := messages[code]; ok {
		return msg
	}
	return kindFallbacks[kind]
}
