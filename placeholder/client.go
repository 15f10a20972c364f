// Package placeholder is a typed client for the public placeholder REST
// API that backs the photo/album viewer.
package placeholder

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
)

type User struct {
	ID       int    `json:"id"`
	Name     string `json:"name"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Phone    string `json:"phone,omitempty"`
	Website  string `json:"website,omitempty"`
}

type Album struct {
	ID     int    `json:"id"`
	UserID int    `json:"userId"`
	Title  string `json:"title"`
}

type Photo struct {
	ID           int    `json:"id"`
	AlbumID      int    `json:"albumId"`
	Title        string `json:"title"`
	URL          string `json:"url"`
	ThumbnailURL string `json:"thumbnailUrl"`
}

// Client fetches viewer data from the placeholder API.
type Client struct {
	baseURL    string
	httpClient *http.Client
}

// ClientOption modifies a Client instance.
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client (primarily for testing).
func WithHTTPClient(client *http.Client) ClientOption {
	return func(c *Client) { c.httpClient = client }
}

func NewClient(baseURL string, options ...ClientOption) *Client {
	c := &Client{
		baseURL:    baseURL,
		httpClient: http.DefaultClient,
	}
	for _, opt := range options {
		opt(c)
	}
	return c
}

func (c *Client) Users(ctx context.Context) ([]User, error) {
	var users []User
	if err := c.get(ctx, "/users", &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) User(ctx context.Context, id int) (User, error) {
	var user User
	if err := c.get(ctx, fmt.Sprintf("/users/%d", id), &user); err != nil {
		return User{}, err
	}
	return user, nil
}

func (c *Client) Albums(ctx context.Context) ([]Album, error) {
	var albums []Album
	if err := c.get(ctx, "/albums", &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

func (c *Client) Album(ctx context.Context, id int) (Album, error) {
	var album Album
	if err := c.get(ctx, fmt.Sprintf("/albums/%d", id), &album); err != nil {
		return Album{}, err
	}
	return album, nil
}

func (c *Client) AlbumsByUser(ctx context.Context, userID int) ([]Album, error) {
	var albums []Album
	if err := c.get(ctx, fmt.Sprintf("/users/%d/albums", userID), &albums); err != nil {
		return nil, err
	}
	return albums, nil
}

func (c *Client) Photos(ctx context.Context) ([]Photo, error) {
	var photos []Photo
	if err := c.get(ctx, "/photos", &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

func (c *Client) Photo(ctx context.Context, id int) (Photo, error) {
	var photo Photo
	if err := c.get(ctx, fmt.Sprintf("/photos/%d", id), &photo); err != nil {
		return Photo{}, err
	}
	return photo, nil
}

func (c *Client) PhotosByAlbum(ctx context.Context, albumID int) ([]Photo, error) {
	var photos []Photo
	if err := c.get(ctx, fmt.Sprintf("/albums/%d/photos", albumID), &photos); err != nil {
		return nil, err
	}
	return photos, nil
}

// UpdatePhotoTitle patches a photo's title. The placeholder API fakes the
// update and echoes the patched resource back.
func (c *Client) UpdatePhotoTitle(ctx context.Context, id int, title string) (Photo, error) {
	body, err := json.Marshal(map[string]string{"title": title})
	if err != nil {
		return Photo{}, fmt.Errorf("[Client.UpdatePhotoTitle] marshal body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPatch, c.baseURL+fmt.Sprintf("/photos/%d", id), bytes.NewReader(body))
	if err != nil {
		return Photo{}, fmt.Errorf("[Client.UpdatePhotoTitle] build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	var photo Photo
	if err := c.do(req, &photo); err != nil {
		return Photo{}, err
	}
	return photo, nil
}

func (c *Client) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return fmt.Errorf("[Client.get] build request %s: %w", path, err)
	}
	return c.do(req, out)
}

func (c *Client) do(req *http.Request, out any) error {
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("placeholder api %s: %w", req.URL.Path, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("placeholder api %s: status %d", req.URL.Path, resp.StatusCode)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("placeholder api %s: decode: %w", req.URL.Path, err)
	}
	return nil
}
