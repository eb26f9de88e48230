// Package validation parses and checks Google Chat resource names. Chat
// identifies everything by hierarchical names: spaces/S, spaces/S/threads/T,
// spaces/S/messages/M and users/U. The sync engines route content purely off
// these names, so malformed ones are rejected before any remote call.
package validation

import (
	"fmt"
	"strings"
)

// ValidateSpaceName checks that name looks like spaces/SPACE_ID.
func ValidateSpaceName(name string) error {
	parts := strings.Split(name, "/")
	if len(parts) != 2 || parts[0] != "spaces" || parts[1] == "" {
		return fmt.Errorf("invalid space name: %q", name)
	}
	return nil
}

// ValidateThreadName checks that name looks like spaces/SPACE_ID/threads/THREAD_ID.
func ValidateThreadName(name string) error {
	parts := strings.Split(name, "/")
	if len(parts) != 4 || parts[0] != "spaces" || parts[2] != "threads" || parts[1] == "" || parts[3] == "" {
		return fmt.Errorf("invalid thread name: %q", name)
	}
	return nil
}

// ValidateMessageName checks that name looks like spaces/SPACE_ID/messages/MESSAGE_ID.
func ValidateMessageName(name string) error {
	parts := strings.Split(name, "/")
	if len(parts) != 4 || parts[0] != "spaces" || parts[2] != "messages" || parts[1] == "" || parts[3] == "" {
		return fmt.Errorf("invalid message name: %q", name)
	}
	return nil
}

// SpaceOfThread returns the parent space name (spaces/SPACE_ID) of a thread
// or message resource name.
func SpaceOfThread(threadName string) (string, error) {
	parts := strings.Split(threadName, "/")
	if len(parts) < 2 || parts[0] != "spaces" || parts[1] == "" {
		return "", fmt.Errorf("cannot derive space from %q", threadName)
	}
	return strings.Join(parts[:2], "/"), nil
}

// UserIDSuffix returns the trailing path segment of a users/U resource name.
// Used to synthesize placeholder emails for senders without one.
func UserIDSuffix(userName string) string {
	idx := strings.LastIndex(userName, "/")
	if idx < 0 {
		return userName
	}
	return userName[idx+1:]
}
