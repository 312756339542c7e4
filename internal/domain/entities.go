package domain

import (
	"fmt"
	"time"
)

// Role is the account type assigned to a user at registration
type Role string

const (
	RoleArtist    Role = "ARTIST"
	RoleLabel     Role = "LABEL"
	RoleModerator Role = "MODERATOR"
	RoleAdmin     Role = "ADMIN"
	RolePlatform  Role = "PLATFORM"
)

// Roles lists every known role, in display order
func Roles() []Role {
	return []Role{RoleArtist, RoleLabel, RoleModerator, RoleAdmin, RolePlatform}
}

// Valid reports whether the role is one of the known variants
func (r Role) Valid() bool {
	switch r {
	case RoleArtist, RoleLabel, RoleModerator, RoleAdmin, RolePlatform:
		return true
	}
	return false
}

// ModerationState tracks a release through the moderation workflow
type ModerationState string

const (
	ModerationDraft             ModerationState = "DRAFT"
	ModerationOnReview          ModerationState = "ON_REVIEW"
	ModerationApproved          ModerationState = "APPROVED"
	ModerationRejected          ModerationState = "REJECTED"
	ModerationWaitingForChanges ModerationState = "WAITING_FOR_CHANGES"
)

// ReleaseType classifies a release by track count/format
type ReleaseType string

const (
	ReleaseSingle     ReleaseType = "SINGLE"
	ReleaseMaxiSingle ReleaseType = "MAXI_SINGLE"
	ReleaseEP         ReleaseType = "EP"
	ReleaseAlbum      ReleaseType = "ALBUM"
	ReleaseMixtape    ReleaseType = "MIXTAPE"
)

// User is an account on the platform
type User struct {
	ID               int64     // Backend-assigned identifier
	Login            string    // Unique login name
	Role             Role      // Account type
	RegistrationDate time.Time // When the account was created
}

// Artist is the performer profile attached to an ARTIST user
type Artist struct {
	ID        int64  // Artist profile identifier
	Name      string // Stage name
	RealName  string // Legal name (may be empty)
	Country   string
	LabelID   int64  // Owning label (0 if unsigned)
	UserID    int64  // Backing user account
	UserLogin string // Login of the backing account (display)
}

// Label is the label profile attached to a LABEL user
type Label struct {
	ID          int64 // Label profile identifier
	Country     string
	ContactName string
	Phone       string
	UserID      int64  // Backing user account
	UserLogin   string // Login of the backing account (display)
}

// Release is a distributable unit of music (single, EP, album, ...)
type Release struct {
	ID              int64
	Name            string
	ArtistID        int64
	ArtistName      string // Denormalized for display
	Genre           string
	UPC             int64 // Universal Product Code assigned at draft creation
	Date            time.Time
	ModerationState ModerationState
	Type            ReleaseType
	LabelID         int64
	LabelName       string // Denormalized for display
}

// Editable reports whether the release can still be modified by its artist
func (r Release) Editable() bool {
	return r.ModerationState == ModerationDraft || r.ModerationState == ModerationWaitingForChanges
}

// Song is a single track on a release
type Song struct {
	ID                int64
	ReleaseID         int64
	ReleaseName       string // Denormalized for display
	ArtistIDs         []int64
	ArtistNames       []string
	MusicAuthor       string
	ParentalAdvisory  bool
	Streams           int64 // Lifetime stream count across platforms
	UPC               int64
	Metadata          map[string]string
	PathToFile        string // Object-storage path of the uploaded audio (empty until upload)
	SongLengthSeconds int
}

// FormattedLength returns the track length as m:ss
func (s Song) FormattedLength() string {
	return fmt.Sprintf("%d:%02d", s.SongLengthSeconds/60, s.SongLengthSeconds%60)
}

// Royalty is a per-song, per-platform payout line
type Royalty struct {
	RoyaltyID    int64
	Amount       string // Decimal amount as reported by the backend, not parsed client-side
	SongID       int64
	SongTitle    string
	PlatformID   int64
	PlatformName string
}

// ModerationRecord is one moderator decision on a release
type ModerationRecord struct {
	ID              int64
	ReleaseID       int64
	ReleaseName     string
	ModeratorID     int64
	Comment         string
	ModerationState ModerationState
	Date            time.Time
}

// Page is one page of a paginated listing
type Page[T any] struct {
	Content       []T
	CurrentPage   int
	TotalPages    int
	TotalElements int64
	PageSize      int
}

// HasNext reports whether another page follows this one
func (p Page[T]) HasNext() bool {
	return p.CurrentPage+1 < p.TotalPages
}
