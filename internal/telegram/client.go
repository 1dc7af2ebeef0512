// Package telegram implements the two external collaborators this service
// depends on: the membership oracle (getChatMember) and the delivery
// transport (sendDocument), both thin calls against the Telegram Bot API.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/url"
	"os"
	"time"
)

// Client talks to the Telegram Bot API. Every call is bounded by the
// client's timeout in addition to the caller's context.
type Client struct {
	baseURL string
	token   string
	channel string
	http    *http.Client
}

// New constructs a Client for the given bot token and gating channel.
func New(baseURL, token, channel string, timeout time.Duration) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		channel: channel,
		http:    &http.Client{Timeout: timeout},
	}
}

// apiResponse is the envelope every Bot API method returns.
type apiResponse struct {
	OK          bool            `json:"ok"`
	Result      json.RawMessage `json:"result"`
	Description string          `json:"description"`
}

// IsChannelMember reports whether userID currently belongs to the gating
// channel. Member, administrator and creator count as members; left,
// kicked and restricted do not.
func (c *Client) IsChannelMember(ctx context.Context, userID string) (bool, error) {
	vals := url.Values{}
	vals.Set("chat_id", c.channel)
	vals.Set("user_id", userID)
	endpoint := fmt.Sprintf("%s/bot%s/getChatMember?%s", c.baseURL, c.token, vals.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return false, err
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false, fmt.Errorf("getChatMember: %w", err)
	}
	defer resp.Body.Close()

	var env apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return false, fmt.Errorf("getChatMember: decode: %w", err)
	}
	if !env.OK {
		return false, fmt.Errorf("getChatMember: api error: %s", env.Description)
	}
	var member struct {
		Status string `json:"status"`
	}
	if err := json.Unmarshal(env.Result, &member); err != nil {
		return false, fmt.Errorf("getChatMember: decode result: %w", err)
	}
	switch member.Status {
	case "member", "administrator", "creator":
		return true, nil
	default:
		return false, nil
	}
}

// SendDocument uploads the file at path to userID as a document named
// filename. The call either reports success or an error; there is no
// partial delivery.
func (c *Client) SendDocument(ctx context.Context, userID, path, filename string) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("sendDocument: open staged file: %w", err)
	}
	defer f.Close()

	pr, pw := io.Pipe()
	mw := multipart.NewWriter(pw)
	go func() {
		err := writeDocumentForm(mw, userID, filename, f)
		_ = mw.Close()
		pw.CloseWithError(err)
	}()

	endpoint := fmt.Sprintf("%s/bot%s/sendDocument", c.baseURL, c.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, pr)
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("sendDocument: %w", err)
	}
	defer resp.Body.Close()

	var env apiResponse
	if err := json.NewDecoder(resp.Body).Decode(&env); err != nil {
		return fmt.Errorf("sendDocument: decode: %w", err)
	}
	if !env.OK {
		return fmt.Errorf("sendDocument: api error: %s", env.Description)
	}
	return nil
}

func writeDocumentForm(mw *multipart.Writer, userID, filename string, f io.Reader) error {
	if err := mw.WriteField("chat_id", userID); err != nil {
		return err
	}
	part, err := mw.CreateFormFile("document", filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, f)
	return err
}
