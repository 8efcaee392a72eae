package beams

import (
	"fmt"
	"net/http"
	"strings"
)

// PublishRequest is a caller-opaque publish payload, e.g.
//
//	beams.PublishRequest{
//	    "apns": map[string]any{"aps": map[string]any{"alert": "Hi!"}},
//	    "fcm":  map[string]any{"notification": map[string]any{"title": "Hi!"}},
//	}
//
// It is forwarded verbatim apart from the routing field ("interests" or
// "users"), which is always set by the client.
type PublishRequest map[string]any

// Response is the decoded JSON body of a successful call, forwarded untouched.
type Response map[string]any

// requestDescriptor is what the builders hand to the transport.
type requestDescriptor struct {
	path   string
	method string
	body   map[string]any
}

func publishToInterestsRequest(instanceID string, interests []string, req PublishRequest) requestDescriptor {
	return requestDescriptor{
		path:   fmt.Sprintf("/publish_api/v1/instances/%s/publishes/interests", instanceID),
		method: http.MethodPost,
		body:   withRouting(req, "interests", interests),
	}
}

func publishToUsersRequest(instanceID string, users []string, req PublishRequest) requestDescriptor {
	return requestDescriptor{
		path:   fmt.Sprintf("/publish_api/v1/instances/%s/publishes/users", instanceID),
		method: http.MethodPost,
		body:   withRouting(req, "users", users),
	}
}

func deleteUserRequest(instanceID, userID string) requestDescriptor {
	return requestDescriptor{
		path:   fmt.Sprintf("/user_api/v1/instances/%s/users/%s", instanceID, encodeURIComponent(userID)),
		method: http.MethodDelete,
	}
}

// withRouting shallow-copies req and sets key, overwriting any value the
// caller put there. req itself is not modified.
func withRouting(req PublishRequest, key string, targets []string) map[string]any {
	body := make(map[string]any, len(req)+1)
	for k, v := range req {
		body[k] = v
	}
	body[key] = targets
	return body
}

// encodeURIComponent escapes everything except A-Z a-z 0-9 - _ . ! ~ * ' ( ),
// which is the escaping the service expects for user IDs in paths.
// url.PathEscape leaves sub-delimiters such as '@' and '+' unescaped.
func encodeURIComponent(s string) string {
	const hex = "0123456789ABCDEF"
	var b strings.Builder
	b.Grow(len(s))
	for i := 0; i < len(s); i++ {
		c := s[i]
		if unreservedComponent(c) {
			b.WriteByte(c)
			continue
		}
		b.WriteByte('%')
		b.WriteByte(hex[c>>4])
		b.WriteByte(hex[c&0x0f])
	}
	return b.String()
}

func unreservedComponent(c byte) bool {
	switch {
	case 'A' <= c && c <= 'Z', 'a' <= c && c <= 'z', '0' <= c && c <= '9':
		return true
	}
	return strings.IndexByte("-_.!~*'()", c) >= 0
}
