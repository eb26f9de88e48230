package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"regexp"
	"strings"

	"github.com/sirupsen/logrus"

	"chatcourse/internal/constants"
	"chatcourse/internal/errors"
	"chatcourse/internal/models"
	"chatcourse/internal/validation"
	"chatcourse/pkg/discourse"
	gchattypes "chatcourse/pkg/googlechat/types"
)

var (
	nonWordRe    = regexp.MustCompile(`[^a-z0-9_\s-]`)
	whitespaceRe = regexp.MustCompile(`\s+`)
	separatorRe  = regexp.MustCompile(`[_-]+`)
	leadingRe    = regexp.MustCompile(`^[^a-z0-9]+`)
)

// SanitizeUsername converts a chat display name into a valid Discourse
// username: lowercase, alphanumerics plus underscore and dash, 3-20
// characters, starting with an alphanumeric.
func SanitizeUsername(name string) string {
	username := strings.ToLower(name)
	username = nonWordRe.ReplaceAllString(username, "")
	username = whitespaceRe.ReplaceAllString(username, "_")
	username = separatorRe.ReplaceAllString(username, "_")
	username = leadingRe.ReplaceAllString(username, "")

	if runes := []rune(username); len(runes) > constants.MaxUsernameLen {
		username = string(runes[:constants.MaxUsernameLen])
	}
	if len(username) < constants.MinUsernameLen {
		username += "_user"
	}
	return strings.TrimRight(username, "_-")
}

// GenerateEmail synthesizes a placeholder address for a chat user without a
// visible email, keyed on the trailing segment of the users/U resource name.
func GenerateEmail(chatUserID, domain string) string {
	return fmt.Sprintf("gchat_%s@%s", validation.UserIDSuffix(chatUserID), domain)
}

// UserResolver maps Google Chat senders to Discourse accounts, creating an
// account on first sight and remembering the association.
type UserResolver struct {
	forum       discourse.Client
	store       MappingStore
	emailDomain string
	logger      *logrus.Logger
}

func NewUserResolver(forum discourse.Client, store MappingStore, emailDomain string, logger *logrus.Logger) *UserResolver {
	if emailDomain == "" {
		emailDomain = constants.DefaultEmailDomain
	}
	return &UserResolver{
		forum:       forum,
		store:       store,
		emailDomain: emailDomain,
		logger:      logger,
	}
}

// GetOrCreateForumUser resolves a chat sender to a Discourse username. A
// username conflict on creation means the account already exists; it is
// fetched and reused. Non-conflict creation failures propagate to the caller,
// which may post unattributed instead.
func (r *UserResolver) GetOrCreateForumUser(ctx context.Context, sender *gchattypes.User) (string, error) {
	if sender.Name == "" {
		return "", errors.New(errors.ErrCodeInternalError, "sender has no user ID")
	}

	existing, err := r.store.GetForumUsername(ctx, sender.Name)
	if err != nil {
		return "", err
	}
	if existing != nil {
		r.logger.WithFields(logrus.Fields{
			"chat_user": sender.Name,
			"username":  *existing,
		}).Debug("Found existing user mapping")
		return *existing, nil
	}

	displayName := sender.DisplayName
	if displayName == "" {
		displayName = "Unknown User"
	}

	username := SanitizeUsername(displayName)
	email := sender.Email
	if email == "" {
		email = GenerateEmail(sender.Name, r.emailDomain)
	}

	password, err := randomPassword()
	if err != nil {
		return "", err
	}

	err = r.forum.CreateUser(ctx, displayName, email, password, username)
	if err != nil {
		if !errors.IsConflict(err) {
			return "", err
		}
		// Username already taken: reuse the existing account.
		r.logger.WithField("username", username).Info("Username already exists, reusing account")
		user, err := r.forum.GetUser(ctx, username)
		if err != nil {
			return "", err
		}
		username = user.Username
	}

	mapping := &models.UserMapping{
		ChatUserID:      sender.Name,
		ForumUsername:   username,
		ChatDisplayName: displayName,
		ChatEmail:       sender.Email,
	}
	if err := r.store.SaveUserMapping(ctx, mapping); err != nil {
		return "", err
	}

	r.logger.WithFields(logrus.Fields{
		"chat_user": sender.Name,
		"username":  username,
	}).Info("Resolved forum user for chat sender")
	return username, nil
}

// randomPassword returns a throwaway password for bridge-created accounts.
// Nobody logs in with it; Discourse just requires one.
func randomPassword() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate password: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
