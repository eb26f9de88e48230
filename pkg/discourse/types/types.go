package types

// Category is a Discourse category.
type Category struct {
	ID               int    `json:"id"`
	Name             string `json:"name"`
	Color            string `json:"color,omitempty"`
	TextColor        string `json:"text_color,omitempty"`
	ParentCategoryID int    `json:"parent_category_id,omitempty"`
	Slug             string `json:"slug,omitempty"`
	TopicCount       int    `json:"topic_count,omitempty"`
	Description      string `json:"description,omitempty"`
	ReadRestricted   bool   `json:"read_restricted,omitempty"`
}

// Topic is a Discourse topic.
type Topic struct {
	ID         int    `json:"id"`
	Title      string `json:"title"`
	PostsCount int    `json:"posts_count,omitempty"`
	CreatedAt  string `json:"created_at,omitempty"`
	Archetype  string `json:"archetype,omitempty"`
	Closed     bool   `json:"closed,omitempty"`
	Slug       string `json:"slug,omitempty"`
	CategoryID int    `json:"category_id,omitempty"`
}

// Post is a Discourse post. Raw is the post body as Markdown.
type Post struct {
	ID                int    `json:"id"`
	TopicID           int    `json:"topic_id"`
	PostNumber        int    `json:"post_number,omitempty"`
	Username          string `json:"username,omitempty"`
	Name              string `json:"name,omitempty"`
	Cooked            string `json:"cooked,omitempty"`
	Raw               string `json:"raw,omitempty"`
	CreatedAt         string `json:"created_at,omitempty"`
	UpdatedAt         string `json:"updated_at,omitempty"`
	ReplyToPostNumber int    `json:"reply_to_post_number,omitempty"`
}

// User is a Discourse user.
type User struct {
	ID         int    `json:"id"`
	Username   string `json:"username"`
	Name       string `json:"name,omitempty"`
	Admin      bool   `json:"admin,omitempty"`
	Moderator  bool   `json:"moderator,omitempty"`
	TrustLevel int    `json:"trust_level,omitempty"`
}

// CategoryListResponse wraps GET /categories.json.
type CategoryListResponse struct {
	CategoryList struct {
		Categories []Category `json:"categories,omitempty"`
	} `json:"category_list"`
}

// CategoryShowResponse wraps GET /c/{id}/show.json.
type CategoryShowResponse struct {
	Category *Category `json:"category,omitempty"`
}

// CreateCategoryResponse wraps POST /categories.json.
type CreateCategoryResponse struct {
	Category *Category `json:"category,omitempty"`
}

// TopicDetailsResponse wraps GET /t/{id}.json. Discourse returns topic
// fields at the top level and the posts under post_stream.
type TopicDetailsResponse struct {
	Topic
	PostStream *PostStream `json:"post_stream,omitempty"`
}

// PostStream holds the posts of a topic.
type PostStream struct {
	Posts []Post `json:"posts,omitempty"`
}

// UserResponse wraps GET /u/{username}.json.
type UserResponse struct {
	User *User `json:"user,omitempty"`
}

// CreateUserResponse wraps POST /users.json.
type CreateUserResponse struct {
	Success bool   `json:"success"`
	Active  bool   `json:"active,omitempty"`
	Message string `json:"message,omitempty"`
	UserID  int    `json:"user_id,omitempty"`
}

// WebhookPost is the payload of a Discourse post webhook event.
type WebhookPost struct {
	Post Post `json:"post"`
}

// WebhookTopic is the payload of a Discourse topic webhook event.
type WebhookTopic struct {
	Topic Topic `json:"topic"`
}
