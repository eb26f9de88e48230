package types

// SpaceTypeDirectMessage marks 1:1 conversations, which the bridge skips.
const SpaceTypeDirectMessage = "DIRECT_MESSAGE"

// Space is a Google Chat space resource.
type Space struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	SpaceType   string `json:"spaceType,omitempty"`
}

// IsDirectMessage reports whether the space is a 1:1 conversation.
func (s *Space) IsDirectMessage() bool {
	return s.SpaceType == SpaceTypeDirectMessage
}

// Thread identifies a thread within a space.
type Thread struct {
	Name string `json:"name,omitempty"`
}

// User is a Google Chat user resource, embedded as the sender of a message
// or the member of a space.
type User struct {
	Name        string `json:"name"`
	DisplayName string `json:"displayName,omitempty"`
	Email       string `json:"email,omitempty"`
	Type        string `json:"type,omitempty"`
}

// Message is a Google Chat message resource.
type Message struct {
	Name           string  `json:"name"`
	Sender         *User   `json:"sender,omitempty"`
	Text           string  `json:"text,omitempty"`
	Thread         *Thread `json:"thread,omitempty"`
	CreateTime     string  `json:"createTime,omitempty"`
	LastUpdateTime string  `json:"lastUpdateTime,omitempty"`
}

// ListMessagesResponse is the paged response from the messages.list endpoint.
type ListMessagesResponse struct {
	Messages      []Message `json:"messages,omitempty"`
	NextPageToken string    `json:"nextPageToken,omitempty"`
}

// ListSpacesResponse is the paged response from the spaces.list endpoint.
type ListSpacesResponse struct {
	Spaces        []Space `json:"spaces,omitempty"`
	NextPageToken string  `json:"nextPageToken,omitempty"`
}

// Membership associates a user with a space.
type Membership struct {
	Name   string `json:"name"`
	State  string `json:"state,omitempty"`
	Member *User  `json:"member,omitempty"`
}

// ListMembershipsResponse is the paged response from the members.list endpoint.
type ListMembershipsResponse struct {
	Memberships   []Membership `json:"memberships,omitempty"`
	NextPageToken string       `json:"nextPageToken,omitempty"`
}
