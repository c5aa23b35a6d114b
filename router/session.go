/*
session.go - Shared router session and request plumbing

PURPOSE:
  Establishes and caches the single authenticated session every API call
  rides on. The handshake is: fetch a session cookie + verification token
  from api/webserver/SesTokInfo, then log in with a hashed password. The
  device answers "already logged in" (108003) when a previous session is
  still live; that is tolerated and the current session is reused.

SESSION LIFECYCLE:
  - Created lazily on the first API call, behind a mutex so concurrent
    first callers share one login
  - Never explicitly closed; it lives for the process lifetime
  - Dropped and re-established when the device reports the session or
    token invalid (125002/125003)

SEE ALSO:
  - client.go: Client interface and error types
  - huawei.go: API operations built on doGet/doPost
*/
package router

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"strings"
	"sync"
	"time"
)

// HuaweiClient implements Client against the router's web API.
type HuaweiClient struct {
	baseURL  string
	username string
	password string
	http     *http.Client

	mu        sync.Mutex
	sessionID string
	token     string
	loggedIn  bool
}

// NewHuaweiClient creates a client for the router at baseURL. No network
// traffic happens until the first API call.
func NewHuaweiClient(baseURL, username, password string) *HuaweiClient {
	return &HuaweiClient{
		baseURL:  strings.TrimRight(baseURL, "/"),
		username: username,
		password: password,
		http:     &http.Client{Timeout: 15 * time.Second},
	}
}

// =============================================================================
// SESSION ESTABLISHMENT
// =============================================================================

type sesTokInfo struct {
	XMLName xml.Name `xml:"response"`
	SesInfo string   `xml:"SesInfo"`
	TokInfo string   `xml:"TokInfo"`
}

type loginRequest struct {
	XMLName      xml.Name `xml:"request"`
	Username     string   `xml:"Username"`
	Password     string   `xml:"Password"`
	PasswordType int      `xml:"password_type"`
}

// ensureSession makes sure a live session exists. Callers must hold c.mu.
func (c *HuaweiClient) ensureSession(ctx context.Context) error {
	if c.loggedIn {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/api/webserver/SesTokInfo", nil)
	if err != nil {
		return err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("session handshake: %w", err)
	}
	body, err := io.ReadAll(resp.Body)
	resp.Body.Close()
	if err != nil {
		return fmt.Errorf("session handshake: %w", err)
	}

	var tok sesTokInfo
	if err := xml.Unmarshal(body, &tok); err != nil {
		return fmt.Errorf("session handshake: %w", err)
	}
	c.sessionID = tok.SesInfo
	c.token = tok.TokInfo

	if err := c.login(ctx); err != nil {
		var apiErr *APIError
		if errors.As(err, &apiErr) && apiErr.Code == codeAlreadyLoggedIn {
			log.Printf("[Router] Already logged in, continuing with current session")
		} else {
			c.sessionID = ""
			c.token = ""
			return err
		}
	}

	c.loggedIn = true
	return nil
}

// login authenticates with the hashed-password scheme: the password is
// SHA256-hashed, base64-encoded, concatenated with username and token,
// and hashed again.
func (c *HuaweiClient) login(ctx context.Context) error {
	hashed := hashPassword(c.username, c.password, c.token)
	payload := loginRequest{Username: c.username, Password: hashed, PasswordType: 4}
	_, err := c.post(ctx, "/api/user/login", payload)
	return err
}

func hashPassword(username, password, token string) string {
	first := sha256.Sum256([]byte(password))
	firstB64 := base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString(first[:])))
	second := sha256.Sum256([]byte(username + firstB64 + token))
	return base64.StdEncoding.EncodeToString([]byte(hex.EncodeToString(second[:])))
}

// invalidate drops the cached session so the next call re-authenticates.
// Callers must hold c.mu.
func (c *HuaweiClient) invalidate() {
	c.loggedIn = false
	c.sessionID = ""
	c.token = ""
}

// =============================================================================
// REQUEST PLUMBING
// =============================================================================

type deviceError struct {
	XMLName xml.Name `xml:"error"`
	Code    int      `xml:"code"`
	Message string   `xml:"message"`
}

// doGet performs an authenticated GET, establishing the session if needed
// and retrying once after a session/token invalidation.
func (c *HuaweiClient) doGet(ctx context.Context, path string) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.withSessionRetry(ctx, func() ([]byte, error) {
		return c.get(ctx, path)
	})
}

// doPost performs an authenticated XML POST with the same session handling.
func (c *HuaweiClient) doPost(ctx context.Context, path string, payload any) ([]byte, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.withSessionRetry(ctx, func() ([]byte, error) {
		return c.post(ctx, path, payload)
	})
}

func (c *HuaweiClient) withSessionRetry(ctx context.Context, call func() ([]byte, error)) ([]byte, error) {
	if err := c.ensureSession(ctx); err != nil {
		return nil, err
	}

	body, err := call()
	var apiErr *APIError
	if errors.As(err, &apiErr) && (apiErr.Code == codeSessionInvalid || apiErr.Code == codeTokenInvalid) {
		log.Printf("[Router] Session invalid (code %d), re-authenticating", apiErr.Code)
		c.invalidate()
		if err := c.ensureSession(ctx); err != nil {
			return nil, err
		}
		return call()
	}
	return body, err
}

func (c *HuaweiClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, err
	}
	return c.roundTrip(req)
}

func (c *HuaweiClient) post(ctx context.Context, path string, payload any) ([]byte, error) {
	data, err := xml.Marshal(payload)
	if err != nil {
		return nil, err
	}
	body := append([]byte(xml.Header), data...)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/xml")
	return c.roundTrip(req)
}

// roundTrip attaches session headers, executes, and converts device error
// envelopes into APIError values. A refreshed verification token in the
// response headers replaces the cached one.
func (c *HuaweiClient) roundTrip(req *http.Request) ([]byte, error) {
	if c.sessionID != "" {
		req.Header.Set("Cookie", c.sessionID)
	}
	if c.token != "" {
		req.Header.Set("__RequestVerificationToken", c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("router request: %w", err)
	}
	defer resp.Body.Close()

	if tok := resp.Header.Get("__RequestVerificationToken"); tok != "" {
		c.token = tok
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("router request: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("router request: unexpected status %d", resp.StatusCode)
	}

	var devErr deviceError
	if xml.Unmarshal(body, &devErr) == nil && devErr.XMLName.Local == "error" {
		return nil, &APIError{Code: devErr.Code, Message: devErr.Message}
	}
	return body, nil
}
