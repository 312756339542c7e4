package tui

import (
	"context"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/romboooo/distr-is/internal/domain"
	"github.com/romboooo/distr-is/internal/service"
	"github.com/romboooo/distr-is/internal/session"
)

// Command factories for async operations

const requestTimeout = 30 * time.Second

// ResolveSessionCmd resolves the startup session state (the persisted
// token is verified exactly once; concurrent views share the fetch)
func ResolveSessionCmd(sess *session.Manager) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		state, identity, err := sess.Current(ctx)
		if err != nil {
			return ErrMsg{Err: err, Context: "resolving session"}
		}
		return SessionResolvedMsg{State: state, Identity: identity}
	}
}

// LoginCmd exchanges credentials for a session
func LoginCmd(sess *session.Manager, login, password string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		user, err := sess.Login(ctx, domain.Credentials{Login: login, Password: password})
		if err != nil {
			return LoginFailedMsg{Err: err}
		}
		return LoggedInMsg{User: user}
	}
}

// LogoutCmd ends the session and wipes local state
func LogoutCmd(sess *session.Manager, search *service.SearchService) tea.Cmd {
	return func() tea.Msg {
		if search != nil {
			search.Clear()
		}
		if err := sess.Logout(); err != nil {
			return ErrMsg{Err: err, Context: "logging out"}
		}
		return LoggedOutMsg{}
	}
}

// LoadProfileCmd resolves the artist or label profile behind the account
func LoadProfileCmd(artists *service.ArtistService, labels *service.LabelService, user *domain.User) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		profile, err := service.ResolveProfile(ctx, user, artists, labels)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading profile"}
		}
		return ProfileLoadedMsg{Profile: profile}
	}
}

// LoadArtistReleasesCmd loads one page of an artist's releases
func LoadArtistReleasesCmd(svc *service.ArtistService, search *service.SearchService, artistID int64, page domain.PageRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		releases, err := svc.GetArtistReleases(ctx, artistID, page)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading releases"}
		}
		if search != nil {
			search.IndexReleases(releases.Content)
		}
		return ReleasesLoadedMsg{Page: releases, ArtistID: artistID}
	}
}

// LoadReleaseCmd loads a single release
func LoadReleaseCmd(svc *service.ReleaseService, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		release, err := svc.GetRelease(ctx, id)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading release"}
		}
		return ReleaseLoadedMsg{Release: release}
	}
}

// LoadSongsCmd loads the tracklist of a release
func LoadSongsCmd(svc *service.ReleaseService, releaseID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		songs, err := svc.GetReleaseSongs(ctx, releaseID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading songs"}
		}
		return SongsLoadedMsg{ReleaseID: releaseID, Songs: songs}
	}
}

// LoadRoyaltiesCmd loads one page of royalty lines for a release
func LoadRoyaltiesCmd(svc *service.ReleaseService, releaseID int64, page domain.PageRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		royalties, err := svc.GetReleaseRoyalties(ctx, releaseID, page)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading royalties"}
		}
		return RoyaltiesLoadedMsg{ReleaseID: releaseID, Page: royalties}
	}
}

// LoadRosterCmd loads a label's artist roster
func LoadRosterCmd(svc *service.ArtistService, search *service.SearchService, labelID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		artists, err := svc.GetArtistsByLabel(ctx, labelID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading roster"}
		}
		if search != nil {
			search.IndexArtists(artists)
		}
		return RosterLoadedMsg{LabelID: labelID, Artists: artists}
	}
}

// LoadUsersCmd loads one page of accounts for the admin view
func LoadUsersCmd(svc *service.UserService, page domain.PageRequest, role domain.Role) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		users, err := svc.GetUsers(ctx, page, role)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading users"}
		}
		return UsersLoadedMsg{Page: users}
	}
}

// DeleteUserCmd removes an account
func DeleteUserCmd(svc *service.UserService, id int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		if err := svc.DeleteUser(ctx, id); err != nil {
			return ErrMsg{Err: err, Context: "deleting user"}
		}
		return UserDeletedMsg{UserID: id}
	}
}

// LoadPendingCmd loads the moderation queue
func LoadPendingCmd(svc *service.ModerationService, page domain.PageRequest) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		pending, err := svc.GetPendingReleases(ctx, page)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading moderation queue"}
		}
		return PendingLoadedMsg{Page: pending}
	}
}

// LoadHistoryCmd loads a release's moderation history
func LoadHistoryCmd(svc *service.ModerationService, releaseID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		records, err := svc.GetModerationHistory(ctx, releaseID)
		if err != nil {
			return ErrMsg{Err: err, Context: "loading moderation history"}
		}
		return HistoryLoadedMsg{ReleaseID: releaseID, Records: records}
	}
}

// ResolveModeratorCmd resolves the moderator profile id behind the account
func ResolveModeratorCmd(svc *service.ModerationService, userID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		id, err := svc.GetModeratorID(ctx, userID)
		if err != nil {
			return ErrMsg{Err: err, Context: "resolving moderator id"}
		}
		return ModeratorResolvedMsg{ModeratorID: id}
	}
}

// ModerateCmd records a verdict on a pending release
func ModerateCmd(svc *service.ModerationService, decision domain.ModerationDecision) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		record, err := svc.ModerateRelease(ctx, decision)
		if err != nil {
			return ErrMsg{Err: err, Context: "recording verdict"}
		}
		return ModeratedMsg{Record: record}
	}
}

// CreateDraftCmd opens a new release draft
func CreateDraftCmd(svc *service.ReleaseService, draft domain.ReleaseDraft) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		release, err := svc.CreateReleaseDraft(ctx, draft)
		if err != nil {
			return ErrMsg{Err: err, Context: "creating draft"}
		}
		return ReleaseCreatedMsg{Release: release}
	}
}

// SubmitForReviewCmd sends a draft to the moderation queue
func SubmitForReviewCmd(svc *service.ReleaseService, releaseID, artistID int64) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), requestTimeout)
		defer cancel()

		release, err := svc.RequestModeration(ctx, releaseID, artistID)
		if err != nil {
			return ErrMsg{Err: err, Context: "requesting moderation"}
		}
		return ReleaseSubmittedMsg{Release: release}
	}
}

// SpinnerTickCmd keeps the loading spinner moving
func SpinnerTickCmd() tea.Cmd {
	return tea.Tick(80*time.Millisecond, func(time.Time) tea.Msg {
		return SpinnerTickMsg{}
	})
}
