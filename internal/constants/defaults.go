package constants

// Default sync configuration values
const (
	DefaultSyncIntervalMinutes = 5
	DefaultMessagePageSize     = 100
	DefaultRetryBackoffMs      = 1000
	DefaultMaxBackoffMs        = 60000
	DefaultMaxAttempts         = 5
	DefaultServerPort          = 8080
)

// Default timeout values
const (
	DefaultHTTPTimeoutSec        = 30
	DefaultDatabaseRetryAttempts = 3
	DefaultGracefulShutdownSec   = 30
	DefaultServerReadTimeoutSec  = 15
	DefaultServerWriteTimeoutSec = 15
	DefaultServerIdleTimeoutSec  = 60
)

// Discourse constraints
const (
	// MaxTopicTitleLen is the longest title Discourse accepts.
	MaxTopicTitleLen = 255
	// MinUsernameLen and MaxUsernameLen bound Discourse usernames.
	MinUsernameLen = 3
	MaxUsernameLen = 20
)

// DefaultEmailDomain is used when a chat sender has no email on record.
const DefaultEmailDomain = "gchat.local"

// Encryption settings
const (
	PBKDF2Iterations = 100000
	EncryptionKeyLen = 32
	NonceSize        = 12
)

const ServerErrorChannelSize = 1
