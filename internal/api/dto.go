package api

import (
	"encoding/json"
	"time"

	"github.com/romboooo/distr-is/internal/domain"
)

// Wire DTOs matching the backend's JSON shapes. Field names follow the
// backend responses, not Go conventions.

type userDTO struct {
	ID               int64  `json:"id"`
	Login            string `json:"login"`
	Type             string `json:"type"`
	RegistrationDate string `json:"registrationDate"`
}

type authResponseDTO struct {
	Token string  `json:"token"`
	Type  string  `json:"type"` // Always "Bearer"
	User  userDTO `json:"user"`
}

type artistDTO struct {
	ID        int64  `json:"id"`
	Name      string `json:"name"`
	LabelID   int64  `json:"labelId"`
	Country   string `json:"country"`
	RealName  string `json:"realName"`
	UserID    int64  `json:"userId"`
	UserLogin string `json:"userLogin"`
}

type labelDTO struct {
	ID          int64  `json:"id"`
	Country     string `json:"country"`
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
	UserID      int64  `json:"userId"`
	UserLogin   string `json:"userLogin"`
}

type releaseDTO struct {
	ID              int64  `json:"id"`
	Name            string `json:"name"`
	ArtistID        int64  `json:"artistId"`
	ArtistName      string `json:"artistName"`
	Genre           string `json:"genre"`
	ReleaseUPC      int64  `json:"releaseUpc"`
	Date            string `json:"date"`
	ModerationState string `json:"moderationState"`
	ReleaseType     string `json:"releaseType"`
	LabelID         int64  `json:"labelId"`
	LabelName       string `json:"labelName"`
}

type songDTO struct {
	ID                int64    `json:"id"`
	ReleaseID         int64    `json:"releaseId"`
	ReleaseName       string   `json:"releaseName"`
	ArtistIDs         []int64  `json:"artistIds"`
	ArtistNames       []string `json:"artistNames"`
	MusicAuthor       string   `json:"musicAuthor"`
	ParentalAdvisory  bool     `json:"parentalAdvisory"`
	Streams           int64    `json:"streams"`
	SongUPC           int64    `json:"songUpc"`
	Metadata          string   `json:"metadata"` // Free-form JSON, serialized as a string
	PathToFile        string   `json:"pathToFile"`
	SongLengthSeconds int      `json:"songLengthSeconds"`
}

type royaltyDTO struct {
	RoyaltyID    int64  `json:"royaltyId"`
	Amount       string `json:"amount"`
	SongID       int64  `json:"songId"`
	SongTitle    string `json:"songTitle"`
	PlatformID   int64  `json:"platformId"`
	PlatformName string `json:"platformName"`
}

type moderationRecordDTO struct {
	ID              int64  `json:"id"`
	ReleaseID       int64  `json:"releaseId"`
	ReleaseName     string `json:"releaseName"`
	ModeratorID     int64  `json:"moderatorId"`
	Comment         string `json:"comment"`
	ModerationState string `json:"moderationState"`
	Date            string `json:"date"`
}

type pageDTO[T any] struct {
	Content       []T   `json:"content"`
	CurrentPage   int   `json:"currentPage"`
	TotalPages    int   `json:"totalPages"`
	TotalElements int64 `json:"totalElements"`
	PageSize      int   `json:"pageSize"`
}

type errorResponseDTO struct {
	Message string `json:"message"`
}

type uploadResultDTO struct {
	Path string `json:"path"`
}

// Request bodies

type loginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

type registerRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
	Type     string `json:"type"`
}

type updateUserRequest struct {
	Login string `json:"login,omitempty"`
	Type  string `json:"type,omitempty"`
}

type artistRequest struct {
	Name     string `json:"name"`
	Country  string `json:"country"`
	RealName string `json:"realName,omitempty"`
	LabelID  int64  `json:"labelId,omitempty"`
	UserID   int64  `json:"userId"`
}

type labelRequest struct {
	Country     string `json:"country"`
	ContactName string `json:"contactName"`
	Phone       string `json:"phone"`
	UserID      int64  `json:"userId"`
}

type releaseDraftRequest struct {
	Name        string `json:"name"`
	ArtistID    int64  `json:"artistId"`
	Genre       string `json:"genre"`
	ReleaseType string `json:"releaseType"`
	Date        string `json:"date"`
}

type updateReleaseRequest struct {
	Name        string `json:"name,omitempty"`
	Genre       string `json:"genre,omitempty"`
	ReleaseType string `json:"releaseType,omitempty"`
}

type addSongRequest struct {
	ArtistIDs         []int64 `json:"artistIds"`
	MusicAuthor       string  `json:"musicAuthor"`
	ParentalAdvisory  bool    `json:"parentalAdvisory"`
	Metadata          string  `json:"metadata,omitempty"` // Free-form JSON string
	SongLengthSeconds int     `json:"songLengthSeconds"`
}

type moderationRequest struct {
	ModeratorID     int64  `json:"moderatorId"`
	ReleaseID       int64  `json:"releaseId"`
	Comment         string `json:"comment"`
	ModerationState string `json:"moderationState"`
}

// parseBackendTime handles the backend's timestamp formats: local-datetime
// for registration dates, plain dates for releases, RFC3339 when a zone is
// present. Zero time on failure; the UI treats it as "unknown".
func parseBackendTime(s string) time.Time {
	for _, layout := range []string{time.RFC3339, "2006-01-02T15:04:05", "2006-01-02"} {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}

func mapUser(d userDTO) domain.User {
	return domain.User{
		ID:               d.ID,
		Login:            d.Login,
		Role:             domain.Role(d.Type),
		RegistrationDate: parseBackendTime(d.RegistrationDate),
	}
}

func mapArtist(d artistDTO) domain.Artist {
	return domain.Artist{
		ID:        d.ID,
		Name:      d.Name,
		RealName:  d.RealName,
		Country:   d.Country,
		LabelID:   d.LabelID,
		UserID:    d.UserID,
		UserLogin: d.UserLogin,
	}
}

func mapLabel(d labelDTO) domain.Label {
	return domain.Label{
		ID:          d.ID,
		Country:     d.Country,
		ContactName: d.ContactName,
		Phone:       d.Phone,
		UserID:      d.UserID,
		UserLogin:   d.UserLogin,
	}
}

func mapRelease(d releaseDTO) domain.Release {
	return domain.Release{
		ID:              d.ID,
		Name:            d.Name,
		ArtistID:        d.ArtistID,
		ArtistName:      d.ArtistName,
		Genre:           d.Genre,
		UPC:             d.ReleaseUPC,
		Date:            parseBackendTime(d.Date),
		ModerationState: domain.ModerationState(d.ModerationState),
		Type:            domain.ReleaseType(d.ReleaseType),
		LabelID:         d.LabelID,
		LabelName:       d.LabelName,
	}
}

func mapSong(d songDTO) domain.Song {
	return domain.Song{
		ID:                d.ID,
		ReleaseID:         d.ReleaseID,
		ReleaseName:       d.ReleaseName,
		ArtistIDs:         d.ArtistIDs,
		ArtistNames:       d.ArtistNames,
		MusicAuthor:       d.MusicAuthor,
		ParentalAdvisory:  d.ParentalAdvisory,
		Streams:           d.Streams,
		UPC:               d.SongUPC,
		Metadata:          parseMetadata(d.Metadata),
		PathToFile:        d.PathToFile,
		SongLengthSeconds: d.SongLengthSeconds,
	}
}

// parseMetadata decodes the backend's serialized JSON metadata into a flat
// string map. Non-object or malformed payloads come back nil.
func parseMetadata(raw string) map[string]string {
	if raw == "" || raw == "{}" {
		return nil
	}
	var out map[string]string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil
	}
	return out
}

func mapRoyalty(d royaltyDTO) domain.Royalty {
	return domain.Royalty{
		RoyaltyID:    d.RoyaltyID,
		Amount:       d.Amount,
		SongID:       d.SongID,
		SongTitle:    d.SongTitle,
		PlatformID:   d.PlatformID,
		PlatformName: d.PlatformName,
	}
}

func mapModerationRecord(d moderationRecordDTO) domain.ModerationRecord {
	return domain.ModerationRecord{
		ID:              d.ID,
		ReleaseID:       d.ReleaseID,
		ReleaseName:     d.ReleaseName,
		ModeratorID:     d.ModeratorID,
		Comment:         d.Comment,
		ModerationState: domain.ModerationState(d.ModerationState),
		Date:            parseBackendTime(d.Date),
	}
}

func mapPage[D, T any](p pageDTO[D], f func(D) T) *domain.Page[T] {
	out := &domain.Page[T]{
		Content:       make([]T, 0, len(p.Content)),
		CurrentPage:   p.CurrentPage,
		TotalPages:    p.TotalPages,
		TotalElements: p.TotalElements,
		PageSize:      p.PageSize,
	}
	for _, d := range p.Content {
		out.Content = append(out.Content, f(d))
	}
	return out
}
