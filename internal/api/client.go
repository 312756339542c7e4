package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/romboooo/distr-is/internal/domain"
)

const (
	defaultTimeout = 30 * time.Second
	userAgent      = "distr-is/1.0"
)

// TokenSource supplies the current bearer token, or "" when anonymous
type TokenSource interface {
	Token() string
}

// StaticToken is a fixed-value TokenSource
type StaticToken string

func (t StaticToken) Token() string { return string(t) }

// Client is the REST client for the distr backend. It implements
// domain.Authenticator and all entity repositories. A bearer token from the
// TokenSource is attached to every request; any 401 response triggers the
// OnUnauthorized hook so the session layer can drop to anonymous.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	logger         *slog.Logger
	tokens         TokenSource
	onUnauthorized func()
}

// NewClient creates a new backend API client
func NewClient(baseURL string, tokens TokenSource, logger *slog.Logger) *Client {
	if logger == nil {
		logger = slog.Default()
	}
	if tokens == nil {
		tokens = StaticToken("")
	}
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: defaultTimeout,
		},
		logger: logger,
		tokens: tokens,
	}
}

// SetUnauthorizedHandler registers the hook invoked when any request is
// rejected with 401. Must be set before concurrent use.
func (c *Client) SetUnauthorizedHandler(fn func()) {
	c.onUnauthorized = fn
}

// doRequest performs an authenticated HTTP request and returns the body
func (c *Client) doRequest(ctx context.Context, method, path string, query url.Values, body io.Reader, contentType string) ([]byte, error) {
	reqURL := c.baseURL + path
	if len(query) > 0 {
		reqURL += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, method, reqURL, body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if token := c.tokens.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	c.logger.Debug("api request", "method", method, "url", reqURL)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("api request failed", "method", method, "path", path, "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	switch {
	case resp.StatusCode >= 200 && resp.StatusCode < 300:
		return respBody, nil
	case resp.StatusCode == http.StatusUnauthorized:
		if c.onUnauthorized != nil {
			c.onUnauthorized()
		}
		return nil, domain.ErrAuthRequired
	case resp.StatusCode == http.StatusForbidden:
		return nil, domain.ErrForbidden
	case resp.StatusCode == http.StatusNotFound:
		return nil, domain.ErrNotFound
	default:
		c.logger.Error("api request error", "method", method, "path", path, "status", resp.StatusCode)
		return nil, statusError(resp.StatusCode, respBody)
	}
}

// statusError surfaces the backend's {message} body when present
func statusError(status int, body []byte) error {
	var er errorResponseDTO
	if err := json.Unmarshal(body, &er); err == nil && er.Message != "" {
		return fmt.Errorf("server error (status %d): %s", status, er.Message)
	}
	return fmt.Errorf("unexpected status code: %d", status)
}

func (c *Client) getJSON(ctx context.Context, path string, query url.Values, dest any) error {
	body, err := c.doRequest(ctx, http.MethodGet, path, query, nil, "")
	if err != nil {
		return err
	}
	return decodeJSON(body, dest)
}

func (c *Client) sendJSON(ctx context.Context, method, path string, payload, dest any) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request: %w", err)
	}
	body, err := c.doRequest(ctx, method, path, nil, bytes.NewReader(data), "application/json")
	if err != nil {
		return err
	}
	if dest == nil {
		return nil
	}
	return decodeJSON(body, dest)
}

func decodeJSON(body []byte, dest any) error {
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	return nil
}

func pageQuery(page domain.PageRequest) url.Values {
	q := url.Values{}
	q.Set("pageNumber", strconv.Itoa(page.Number))
	if page.Size > 0 {
		q.Set("pageSize", strconv.Itoa(page.Size))
	}
	return q
}

// === Authentication ===

// Login exchanges credentials for a session token
func (c *Client) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	data, err := json.Marshal(loginRequest{Login: creds.Login, Password: creds.Password})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	// A rejected login is 401 here, but it must not look like an expired
	// session: bypass the onUnauthorized hook by inspecting the raw status.
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/login", bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgent)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.logger.Error("login request failed", "error", err)
		return nil, domain.ErrServerOffline
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden || resp.StatusCode == http.StatusBadRequest {
		return nil, domain.ErrInvalidCredentials
	}
	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp.StatusCode, respBody)
	}

	var dto authResponseDTO
	if err := decodeJSON(respBody, &dto); err != nil {
		return nil, err
	}
	return &domain.AuthResult{Token: dto.Token, User: mapUser(dto.User)}, nil
}

// CurrentUser resolves the identity behind the attached token
func (c *Client) CurrentUser(ctx context.Context) (*domain.User, error) {
	var dto userDTO
	if err := c.getJSON(ctx, "/me", nil, &dto); err != nil {
		return nil, err
	}
	u := mapUser(dto)
	return &u, nil
}

// Register creates a new account (self-serve registration)
func (c *Client) Register(ctx context.Context, login, password string, role domain.Role) (*domain.User, error) {
	var dto userDTO
	if err := c.sendJSON(ctx, http.MethodPost, "/register", registerRequest{Login: login, Password: password, Type: string(role)}, &dto); err != nil {
		return nil, err
	}
	u := mapUser(dto)
	return &u, nil
}

// === Users ===

func (c *Client) GetUsers(ctx context.Context, page domain.PageRequest, role domain.Role) (*domain.Page[domain.User], error) {
	q := pageQuery(page)
	if role != "" {
		q.Set("type", string(role))
	}
	var dto pageDTO[userDTO]
	if err := c.getJSON(ctx, "/users", q, &dto); err != nil {
		return nil, err
	}
	return mapPage(dto, mapUser), nil
}

func (c *Client) GetUser(ctx context.Context, id int64) (*domain.User, error) {
	var dto userDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/users/%d", id), nil, &dto); err != nil {
		return nil, err
	}
	u := mapUser(dto)
	return &u, nil
}

func (c *Client) CreateUser(ctx context.Context, login, password string, role domain.Role) (*domain.User, error) {
	var dto userDTO
	if err := c.sendJSON(ctx, http.MethodPost, "/users", registerRequest{Login: login, Password: password, Type: string(role)}, &dto); err != nil {
		return nil, err
	}
	u := mapUser(dto)
	return &u, nil
}

func (c *Client) UpdateUser(ctx context.Context, id int64, login string, role domain.Role) (*domain.User, error) {
	var dto userDTO
	if err := c.sendJSON(ctx, http.MethodPatch, fmt.Sprintf("/users/%d", id), updateUserRequest{Login: login, Type: string(role)}, &dto); err != nil {
		return nil, err
	}
	u := mapUser(dto)
	return &u, nil
}

func (c *Client) DeleteUser(ctx context.Context, id int64) error {
	_, err := c.doRequest(ctx, http.MethodDelete, fmt.Sprintf("/users/%d", id), nil, nil, "")
	return err
}

// === Artists ===

func (c *Client) GetArtist(ctx context.Context, id int64) (*domain.Artist, error) {
	var dto artistDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/artists/%d", id), nil, &dto); err != nil {
		return nil, err
	}
	a := mapArtist(dto)
	return &a, nil
}

func (c *Client) GetArtists(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Artist], error) {
	var dto pageDTO[artistDTO]
	if err := c.getJSON(ctx, "/artists", pageQuery(page), &dto); err != nil {
		return nil, err
	}
	return mapPage(dto, mapArtist), nil
}

func (c *Client) GetArtistByUser(ctx context.Context, userID int64) (*domain.Artist, error) {
	var dto artistDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/artists/by-user/%d", userID), nil, &dto); err != nil {
		return nil, err
	}
	a := mapArtist(dto)
	return &a, nil
}

func (c *Client) GetArtistsByLabel(ctx context.Context, labelID int64) ([]domain.Artist, error) {
	var dtos []artistDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/artists/by-label/%d", labelID), nil, &dtos); err != nil {
		return nil, err
	}
	artists := make([]domain.Artist, 0, len(dtos))
	for _, d := range dtos {
		artists = append(artists, mapArtist(d))
	}
	return artists, nil
}

func (c *Client) GetArtistReleases(ctx context.Context, artistID int64, page domain.PageRequest) (*domain.Page[domain.Release], error) {
	var dto pageDTO[releaseDTO]
	if err := c.getJSON(ctx, fmt.Sprintf("/artists/%d/releases", artistID), pageQuery(page), &dto); err != nil {
		return nil, err
	}
	return mapPage(dto, mapRelease), nil
}

func (c *Client) CreateArtist(ctx context.Context, a domain.Artist) (*domain.Artist, error) {
	req := artistRequest{Name: a.Name, Country: a.Country, RealName: a.RealName, LabelID: a.LabelID, UserID: a.UserID}
	var dto artistDTO
	if err := c.sendJSON(ctx, http.MethodPost, "/artists", req, &dto); err != nil {
		return nil, err
	}
	out := mapArtist(dto)
	return &out, nil
}

func (c *Client) UpdateArtist(ctx context.Context, a domain.Artist) (*domain.Artist, error) {
	req := artistRequest{Name: a.Name, Country: a.Country, RealName: a.RealName, LabelID: a.LabelID, UserID: a.UserID}
	var dto artistDTO
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/artists/%d", a.ID), req, &dto); err != nil {
		return nil, err
	}
	out := mapArtist(dto)
	return &out, nil
}

// === Labels ===

func (c *Client) GetLabel(ctx context.Context, id int64) (*domain.Label, error) {
	var dto labelDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/labels/%d", id), nil, &dto); err != nil {
		return nil, err
	}
	l := mapLabel(dto)
	return &l, nil
}

func (c *Client) GetLabels(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Label], error) {
	var dto pageDTO[labelDTO]
	if err := c.getJSON(ctx, "/labels", pageQuery(page), &dto); err != nil {
		return nil, err
	}
	return mapPage(dto, mapLabel), nil
}

func (c *Client) GetLabelByUser(ctx context.Context, userID int64) (*domain.Label, error) {
	var dto labelDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/labels/by-user/%d", userID), nil, &dto); err != nil {
		return nil, err
	}
	l := mapLabel(dto)
	return &l, nil
}

func (c *Client) CreateLabel(ctx context.Context, l domain.Label) (*domain.Label, error) {
	req := labelRequest{Country: l.Country, ContactName: l.ContactName, Phone: l.Phone, UserID: l.UserID}
	var dto labelDTO
	if err := c.sendJSON(ctx, http.MethodPost, "/labels", req, &dto); err != nil {
		return nil, err
	}
	out := mapLabel(dto)
	return &out, nil
}

func (c *Client) UpdateLabel(ctx context.Context, l domain.Label) (*domain.Label, error) {
	req := labelRequest{Country: l.Country, ContactName: l.ContactName, Phone: l.Phone, UserID: l.UserID}
	var dto labelDTO
	if err := c.sendJSON(ctx, http.MethodPut, fmt.Sprintf("/labels/%d", l.ID), req, &dto); err != nil {
		return nil, err
	}
	out := mapLabel(dto)
	return &out, nil
}

// === Releases ===

func (c *Client) GetRelease(ctx context.Context, id int64) (*domain.Release, error) {
	var dto releaseDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/releases/%d", id), nil, &dto); err != nil {
		return nil, err
	}
	r := mapRelease(dto)
	return &r, nil
}

func (c *Client) CreateReleaseDraft(ctx context.Context, draft domain.ReleaseDraft) (*domain.Release, error) {
	req := releaseDraftRequest{
		Name:        draft.Name,
		ArtistID:    draft.ArtistID,
		Genre:       draft.Genre,
		ReleaseType: string(draft.Type),
		Date:        draft.Date,
	}
	var dto releaseDTO
	if err := c.sendJSON(ctx, http.MethodPost, "/releases/draft", req, &dto); err != nil {
		return nil, err
	}
	r := mapRelease(dto)
	return &r, nil
}

func (c *Client) UpdateRelease(ctx context.Context, id int64, name, genre string, rt domain.ReleaseType) (*domain.Release, error) {
	req := updateReleaseRequest{Name: name, Genre: genre, ReleaseType: string(rt)}
	var dto releaseDTO
	if err := c.sendJSON(ctx, http.MethodPatch, fmt.Sprintf("/releases/%d", id), req, &dto); err != nil {
		return nil, err
	}
	r := mapRelease(dto)
	return &r, nil
}

func (c *Client) GetReleaseSongs(ctx context.Context, releaseID int64) ([]domain.Song, error) {
	var dtos []songDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/releases/%d/songs", releaseID), nil, &dtos); err != nil {
		return nil, err
	}
	songs := make([]domain.Song, 0, len(dtos))
	for _, d := range dtos {
		songs = append(songs, mapSong(d))
	}
	return songs, nil
}

func (c *Client) GetSong(ctx context.Context, id int64) (*domain.Song, error) {
	var dto songDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/songs/%d", id), nil, &dto); err != nil {
		return nil, err
	}
	s := mapSong(dto)
	return &s, nil
}

func (c *Client) AddSong(ctx context.Context, releaseID int64, song domain.SongInput) (*domain.Song, error) {
	req := addSongRequest{
		ArtistIDs:         song.ArtistIDs,
		MusicAuthor:       song.MusicAuthor,
		ParentalAdvisory:  song.ParentalAdvisory,
		SongLengthSeconds: song.SongLengthSec,
	}
	if len(song.Metadata) > 0 {
		data, err := json.Marshal(song.Metadata)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal song metadata: %w", err)
		}
		req.Metadata = string(data)
	}
	var dto songDTO
	if err := c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/releases/%d/songs", releaseID), req, &dto); err != nil {
		return nil, err
	}
	s := mapSong(dto)
	return &s, nil
}

func (c *Client) UploadSongFile(ctx context.Context, songID int64, filename string, data []byte) (string, error) {
	return c.uploadFile(ctx, fmt.Sprintf("/songs/%d/file", songID), filename, data)
}

func (c *Client) UploadCover(ctx context.Context, releaseID int64, filename string, data []byte) (string, error) {
	return c.uploadFile(ctx, fmt.Sprintf("/releases/%d/cover", releaseID), filename, data)
}

func (c *Client) uploadFile(ctx context.Context, path, filename string, data []byte) (string, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("file", filename)
	if err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}
	if _, err := part.Write(data); err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}
	if err := mw.Close(); err != nil {
		return "", fmt.Errorf("failed to build upload body: %w", err)
	}

	body, err := c.doRequest(ctx, http.MethodPost, path, nil, &buf, mw.FormDataContentType())
	if err != nil {
		return "", err
	}
	var dto uploadResultDTO
	if err := decodeJSON(body, &dto); err != nil {
		return "", err
	}
	return dto.Path, nil
}

func (c *Client) GetCover(ctx context.Context, releaseID int64) ([]byte, error) {
	return c.doRequest(ctx, http.MethodGet, fmt.Sprintf("/releases/%d/cover", releaseID), nil, nil, "")
}

func (c *Client) RequestModeration(ctx context.Context, releaseID int64) (*domain.Release, error) {
	var dto releaseDTO
	if err := c.sendJSON(ctx, http.MethodPost, fmt.Sprintf("/releases/%d/request-moderation", releaseID), struct{}{}, &dto); err != nil {
		return nil, err
	}
	r := mapRelease(dto)
	return &r, nil
}

func (c *Client) GetReleaseRoyalties(ctx context.Context, releaseID int64, page domain.PageRequest) (*domain.Page[domain.Royalty], error) {
	var dto pageDTO[royaltyDTO]
	if err := c.getJSON(ctx, fmt.Sprintf("/releases/%d/royalties", releaseID), pageQuery(page), &dto); err != nil {
		return nil, err
	}
	return mapPage(dto, mapRoyalty), nil
}

// === Moderation ===

func (c *Client) GetPendingReleases(ctx context.Context, page domain.PageRequest) (*domain.Page[domain.Release], error) {
	var dto pageDTO[releaseDTO]
	if err := c.getJSON(ctx, "/moderation/pending", pageQuery(page), &dto); err != nil {
		return nil, err
	}
	return mapPage(dto, mapRelease), nil
}

func (c *Client) ModerateRelease(ctx context.Context, decision domain.ModerationDecision) (*domain.ModerationRecord, error) {
	req := moderationRequest{
		ModeratorID:     decision.ModeratorID,
		ReleaseID:       decision.ReleaseID,
		Comment:         decision.Comment,
		ModerationState: string(decision.State),
	}
	var dto moderationRecordDTO
	if err := c.sendJSON(ctx, http.MethodPost, "/moderation", req, &dto); err != nil {
		return nil, err
	}
	rec := mapModerationRecord(dto)
	return &rec, nil
}

func (c *Client) GetModerationHistory(ctx context.Context, releaseID int64) ([]domain.ModerationRecord, error) {
	var dtos []moderationRecordDTO
	if err := c.getJSON(ctx, fmt.Sprintf("/moderation/history/%d", releaseID), nil, &dtos); err != nil {
		return nil, err
	}
	records := make([]domain.ModerationRecord, 0, len(dtos))
	for _, d := range dtos {
		records = append(records, mapModerationRecord(d))
	}
	return records, nil
}

func (c *Client) GetModeratorID(ctx context.Context, userID int64) (int64, error) {
	var id int64
	if err := c.getJSON(ctx, fmt.Sprintf("/moderation/moderator-id-by-user-id/%d", userID), nil, &id); err != nil {
		return 0, err
	}
	return id, nil
}
