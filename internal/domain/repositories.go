package domain

import "context"

// PageRequest selects one page of a paginated listing
type PageRequest struct {
	Number int // Zero-based page number
	Size   int // Items per page
}

// Credentials are the values exchanged for a session token
type Credentials struct {
	Login    string
	Password string
}

// AuthResult is the response of a successful login
type AuthResult struct {
	Token string // Bearer token for subsequent requests
	User  User   // The authenticated account, as returned by the backend
}

// Authenticator exchanges credentials for a session and resolves the
// current identity from a persisted token
type Authenticator interface {
	// Login exchanges credentials for a token and the authenticated user.
	// A rejected login returns ErrInvalidCredentials.
	Login(ctx context.Context, creds Credentials) (*AuthResult, error)

	// CurrentUser resolves the identity behind the attached token.
	// An invalid or expired token returns ErrAuthRequired.
	CurrentUser(ctx context.Context) (*User, error)
}

// UserRepository provides account management (admin surface)
type UserRepository interface {
	GetUsers(ctx context.Context, page PageRequest, role Role) (*Page[User], error)
	GetUser(ctx context.Context, id int64) (*User, error)

	// CreateUser registers a new account
	CreateUser(ctx context.Context, login, password string, role Role) (*User, error)

	// UpdateUser patches login and/or role of an existing account.
	// Empty values are left unchanged.
	UpdateUser(ctx context.Context, id int64, login string, role Role) (*User, error)

	DeleteUser(ctx context.Context, id int64) error
}

// ArtistRepository provides artist profiles and their releases
type ArtistRepository interface {
	GetArtist(ctx context.Context, id int64) (*Artist, error)
	GetArtists(ctx context.Context, page PageRequest) (*Page[Artist], error)

	// GetArtistByUser returns the artist profile backing a user account,
	// or ErrNotFound when the account has no profile yet.
	GetArtistByUser(ctx context.Context, userID int64) (*Artist, error)

	GetArtistsByLabel(ctx context.Context, labelID int64) ([]Artist, error)
	GetArtistReleases(ctx context.Context, artistID int64, page PageRequest) (*Page[Release], error)

	CreateArtist(ctx context.Context, a Artist) (*Artist, error)
	UpdateArtist(ctx context.Context, a Artist) (*Artist, error)
}

// LabelRepository provides label profiles
type LabelRepository interface {
	GetLabel(ctx context.Context, id int64) (*Label, error)
	GetLabels(ctx context.Context, page PageRequest) (*Page[Label], error)

	// GetLabelByUser returns the label profile backing a user account,
	// or ErrNotFound when the account has no profile yet.
	GetLabelByUser(ctx context.Context, userID int64) (*Label, error)

	CreateLabel(ctx context.Context, l Label) (*Label, error)
	UpdateLabel(ctx context.Context, l Label) (*Label, error)
}

// ReleaseDraft holds the fields required to open a new release draft
type ReleaseDraft struct {
	Name     string
	ArtistID int64
	Genre    string
	Type     ReleaseType
	Date     string // ISO date; the backend parses and validates it
}

// SongInput holds the fields for adding a track to a release
type SongInput struct {
	ArtistIDs        []int64
	MusicAuthor      string
	ParentalAdvisory bool
	Metadata         map[string]string
	SongLengthSec    int
}

// ReleaseRepository provides releases, their songs, covers and royalties
type ReleaseRepository interface {
	GetRelease(ctx context.Context, id int64) (*Release, error)
	CreateReleaseDraft(ctx context.Context, draft ReleaseDraft) (*Release, error)

	// UpdateRelease patches mutable fields of a draft release
	UpdateRelease(ctx context.Context, id int64, name, genre string, rt ReleaseType) (*Release, error)

	GetReleaseSongs(ctx context.Context, releaseID int64) ([]Song, error)
	GetSong(ctx context.Context, id int64) (*Song, error)
	AddSong(ctx context.Context, releaseID int64, song SongInput) (*Song, error)

	// UploadSongFile uploads the audio file for a song and returns the stored path
	UploadSongFile(ctx context.Context, songID int64, filename string, data []byte) (string, error)

	// UploadCover uploads the release cover image and returns the stored path
	UploadCover(ctx context.Context, releaseID int64, filename string, data []byte) (string, error)

	// GetCover downloads the release cover image bytes
	GetCover(ctx context.Context, releaseID int64) ([]byte, error)

	// RequestModeration submits a draft for review (DRAFT -> ON_REVIEW)
	RequestModeration(ctx context.Context, releaseID int64) (*Release, error)

	GetReleaseRoyalties(ctx context.Context, releaseID int64, page PageRequest) (*Page[Royalty], error)
}

// ModerationDecision is a moderator's verdict on a pending release
type ModerationDecision struct {
	ModeratorID int64
	ReleaseID   int64
	Comment     string
	State       ModerationState // APPROVED, REJECTED or WAITING_FOR_CHANGES
}

// ModerationRepository provides the moderator queue and decision history
type ModerationRepository interface {
	GetPendingReleases(ctx context.Context, page PageRequest) (*Page[Release], error)
	ModerateRelease(ctx context.Context, decision ModerationDecision) (*ModerationRecord, error)
	GetModerationHistory(ctx context.Context, releaseID int64) ([]ModerationRecord, error)

	// GetModeratorID resolves the moderator profile id behind a user account
	GetModeratorID(ctx context.Context, userID int64) (int64, error)
}
