package tui

import (
	"github.com/romboooo/distr-is/internal/domain"
	"github.com/romboooo/distr-is/internal/session"
)

// Message types for the TUI

// ErrMsg represents an error
type ErrMsg struct {
	Err     error
	Context string
}

// Error implements the error interface
func (e ErrMsg) Error() string {
	if e.Context != "" {
		return e.Context + ": " + e.Err.Error()
	}
	return e.Err.Error()
}

// SessionResolvedMsg signals that the startup identity fetch finished
type SessionResolvedMsg struct {
	State    session.State
	Identity *domain.User
}

// LoggedInMsg signals a successful login
type LoggedInMsg struct {
	User *domain.User
}

// LoginFailedMsg signals a rejected login attempt
type LoginFailedMsg struct {
	Err error
}

// LoggedOutMsg signals that the session was ended locally
type LoggedOutMsg struct{}

// NavigateMsg requests navigation to a route
type NavigateMsg struct {
	Route string
}

// ProfileLoadedMsg carries the profile behind the logged-in account
type ProfileLoadedMsg struct {
	Profile domain.Profile
}

// ReleasesLoadedMsg signals that a page of releases arrived
type ReleasesLoadedMsg struct {
	Page     *domain.Page[domain.Release]
	ArtistID int64
}

// ReleaseLoadedMsg signals that a single release arrived
type ReleaseLoadedMsg struct {
	Release *domain.Release
}

// SongsLoadedMsg signals that a release tracklist arrived
type SongsLoadedMsg struct {
	ReleaseID int64
	Songs     []domain.Song
}

// RoyaltiesLoadedMsg signals that a page of royalties arrived
type RoyaltiesLoadedMsg struct {
	ReleaseID int64
	Page      *domain.Page[domain.Royalty]
}

// RosterLoadedMsg signals that a label's artist roster arrived
type RosterLoadedMsg struct {
	LabelID int64
	Artists []domain.Artist
}

// UsersLoadedMsg signals that a page of accounts arrived
type UsersLoadedMsg struct {
	Page *domain.Page[domain.User]
}

// PendingLoadedMsg signals that the moderation queue arrived
type PendingLoadedMsg struct {
	Page *domain.Page[domain.Release]
}

// HistoryLoadedMsg signals that a release's moderation history arrived
type HistoryLoadedMsg struct {
	ReleaseID int64
	Records   []domain.ModerationRecord
}

// ModeratorResolvedMsg carries the moderator profile id for the session user
type ModeratorResolvedMsg struct {
	ModeratorID int64
}

// ReleaseCreatedMsg signals that a new draft was opened
type ReleaseCreatedMsg struct {
	Release *domain.Release
}

// ReleaseSubmittedMsg signals that a draft went to review
type ReleaseSubmittedMsg struct {
	Release *domain.Release
}

// ModeratedMsg signals that a verdict was recorded
type ModeratedMsg struct {
	Record *domain.ModerationRecord
}

// UserDeletedMsg signals that an account was removed
type UserDeletedMsg struct {
	UserID int64
}

// StatusMsg shows a transient line in the status bar
type StatusMsg struct {
	Text string
}

// SpinnerTickMsg advances the loading spinner
type SpinnerTickMsg struct{}
