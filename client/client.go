// Package client talks to a running blog API.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
)

type Client struct {
	http.Client
	Addr string
	// Token is sent as "Authorization: Token <key>" when set.
	Token string
}

// Error is a non-2xx answer of the API.
type Error struct {
	StatusCode int
	Status     string            `json:"status"`
	Message    string            `json:"error"`
	Fields     map[string]string `json:"fields"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return fmt.Sprintf("blog api: %d %s", e.StatusCode, e.Message)
	}

	return fmt.Sprintf("blog api: %d %s %v", e.StatusCode, e.Status, e.Fields)
}

type Topic struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

type Article struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Slug        string `json:"slug"`
	Content     string `json:"content"`
	Author      string `json:"author"`
	Topic       Topic  `json:"topic"`
	IsPublished bool   `json:"is_published"`
}

type ArticlePage struct {
	Count    int64     `json:"count"`
	Next     *string   `json:"next"`
	Previous *string   `json:"previous"`
	Results  []Article `json:"results"`
}

type tokenResponse struct {
	Message string `json:"message"`
	Token   string `json:"token"`
}

func (c *Client) do(ctx context.Context, method, path string, in, out interface{}) error {
	var body io.Reader
	if in != nil {
		raw, err := json.Marshal(in)
		if err != nil {
			return err
		}
		body = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.Addr+path, body)
	if err != nil {
		return err
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.Token != "" {
		req.Header.Set("Authorization", "Token "+c.Token)
	}

	resp, err := c.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{StatusCode: resp.StatusCode}
		_ = json.Unmarshal(raw, apiErr)

		return apiErr
	}
	if out == nil || len(raw) == 0 {
		return nil
	}

	return json.Unmarshal(raw, out)
}

func (c *Client) Ping() (string, error) {
	req, err := http.NewRequest(http.MethodGet, c.Addr+"/ping", nil)
	if err != nil {
		return "", err
	}

	resp, err := c.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", err
	}

	return string(body), err
}

// Register creates an account and keeps its token on the client.
func (c *Client) Register(ctx context.Context, username, email, password string) error {
	var out tokenResponse
	err := c.do(ctx, http.MethodPost, "/register/", map[string]string{
		"username":              username,
		"email":                 email,
		"password":              password,
		"password_confirmation": password,
	}, &out)
	if err != nil {
		return err
	}
	c.Token = out.Token

	return nil
}

// Login keeps the token of the user on the client.
func (c *Client) Login(ctx context.Context, username, password string) error {
	var out tokenResponse
	if err := c.do(ctx, http.MethodPost, "/login/", map[string]string{"username": username, "password": password}, &out); err != nil {
		return err
	}
	c.Token = out.Token

	return nil
}

// Logout revokes the token and forgets it.
func (c *Client) Logout(ctx context.Context) error {
	if err := c.do(ctx, http.MethodPost, "/logout/", map[string]bool{"confirm_logout": true}, nil); err != nil {
		return err
	}
	c.Token = ""

	return nil
}

// ListArticles fetches one page of published articles. search may be empty.
func (c *Client) ListArticles(ctx context.Context, page int, search string) (*ArticlePage, error) {
	q := url.Values{}
	if page > 1 {
		q.Set("page", strconv.Itoa(page))
	}
	if search != "" {
		q.Set("search", search)
	}
	path := "/articles/"
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out ArticlePage
	if err := c.do(ctx, http.MethodGet, path, nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// CreateArticle posts a new article as the logged in user.
func (c *Client) CreateArticle(ctx context.Context, title, content string, topicID uint, published bool) (*Article, error) {
	var out Article
	err := c.do(ctx, http.MethodPost, "/articles/", map[string]interface{}{
		"title":        title,
		"content":      content,
		"topic_id":     topicID,
		"is_published": published,
	}, &out)
	if err != nil {
		return nil, err
	}

	return &out, nil
}

func (c *Client) GetArticle(ctx context.Context, slug string) (*Article, error) {
	var out Article
	if err := c.do(ctx, http.MethodGet, "/articles/"+url.PathEscape(slug)+"/", nil, &out); err != nil {
		return nil, err
	}

	return &out, nil
}

// DeleteArticle removes an article of the logged in user.
func (c *Client) DeleteArticle(ctx context.Context, slug string) error {
	return c.do(ctx, http.MethodDelete, "/articles/"+url.PathEscape(slug)+"/", map[string]bool{"confirm_deletion": true}, nil)
}

func (c *Client) ListTopics(ctx context.Context) ([]Topic, error) {
	var out []Topic
	if err := c.do(ctx, http.MethodGet, "/topics/", nil, &out); err != nil {
		return nil, err
	}

	return out, nil
}
