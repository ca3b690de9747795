package backend

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// ErrNetworkUnreachable means the request got no response at all.
var ErrNetworkUnreachable = errors.New("unable to reach server")

// UnreachableMessage is what the user sees for ErrNetworkUnreachable.
const UnreachableMessage = "Unable to reach server"

// APIError is a non-success response of the fuel order API.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return e.Message
}

func newAPIError(statusCode int, body []byte) *APIError {
	return &APIError{StatusCode: statusCode, Message: extractMessage(statusCode, body)}
}

// extractMessage picks a readable message from an error body. Structured JSON is
// searched for the conventional message fields; a body that is not JSON is used as
// plain text.
func extractMessage(statusCode int, body []byte) string {
	fallback := fmt.Sprintf("Request failed (%d)", statusCode)

	var data interface{}
	if err := json.Unmarshal(body, &data); err != nil {
		if text := strings.TrimSpace(string(body)); text != "" {
			return text
		}
		return fallback
	}

	fields, ok := data.(map[string]interface{})
	if !ok {
		return fallback
	}

	candidates := []interface{}{
		fields["message"],
		fields["error"],
		fields["detail"],
		fields["title"],
		firstNestedMessage(fields["errors"]),
	}

	for _, candidate := range candidates {
		if !truthy(candidate) {
			continue
		}

		if message, ok := candidate.(string); ok {
			return message
		}

		// only the first present field counts
		return fallback
	}

	return fallback
}

func firstNestedMessage(value interface{}) interface{} {
	list, ok := value.([]interface{})
	if !ok || len(list) == 0 {
		return nil
	}

	item, ok := list[0].(map[string]interface{})
	if !ok {
		return nil
	}

	return item["message"]
}

func truthy(value interface{}) bool {
	switch v := value.(type) {
	case nil:
		return false
	case string:
		return v != ""
	case bool:
		return v
	case float64:
		return v != 0
	default:
		return true
	}
}
