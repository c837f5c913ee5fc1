// Package client talks to a chat-hub server over its REST API and its
// websocket gateway.
package client

import (
	"bytes"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

// Error is a non 2xx answer of the server.
type Error struct {
	Status  int    `json:"-"`
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

func (e *Error) Error() string {
	return fmt.Sprintf("%d %s: %s", e.Status, e.Kind, e.Message)
}

type Client struct {
	baseURL string
	http    *http.Client
	token   string
}

// New targets a server root such as "http://localhost:8080".
func New(baseURL string, httpClient *http.Client) *Client {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &Client{baseURL: strings.TrimRight(baseURL, "/"), http: httpClient}
}

// WithToken returns a copy authenticated with token.
func (c *Client) WithToken(token string) *Client {
	clone := *c
	clone.token = token
	return &clone
}

func (c *Client) Token() string { return c.token }

func (c *Client) Signup(ctx context.Context, email, username, password string) (domain.AuthSession, error) {
	var session domain.AuthSession
	err := c.do(ctx, http.MethodPost, "/auth/signup",
		map[string]string{"email": email, "username": username, "password": password}, &session)
	return session, err
}

func (c *Client) Login(ctx context.Context, username, password string) (domain.AuthSession, error) {
	var session domain.AuthSession
	err := c.do(ctx, http.MethodPost, "/auth/login",
		map[string]string{"username": username, "password": password}, &session)
	return session, err
}

func (c *Client) ListUsers(ctx context.Context) ([]domain.PublicUser, error) {
	var users []domain.PublicUser
	err := c.do(ctx, http.MethodGet, "/users", nil, &users)
	return users, err
}

func (c *Client) ListConversations(ctx context.Context) ([]domain.ConversationSummary, error) {
	var summaries []domain.ConversationSummary
	err := c.do(ctx, http.MethodGet, "/chat/conversations", nil, &summaries)
	return summaries, err
}

func (c *Client) SearchConversations(ctx context.Context, term string) ([]domain.ConversationSummary, error) {
	var summaries []domain.ConversationSummary
	err := c.do(ctx, http.MethodGet, "/chat/conversations/search?q="+url.QueryEscape(term), nil, &summaries)
	return summaries, err
}

// CreateDirect returns the id of the direct conversation with other.
func (c *Client) CreateDirect(ctx context.Context, other domain.UserID) (domain.ConversationID, error) {
	var conv struct {
		ID domain.ConversationID `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/chat/conversations/direct", map[string]any{"otherUserId": other}, &conv)
	return conv.ID, err
}

func (c *Client) CreateGroup(ctx context.Context, name *string, participants []domain.UserID) (domain.ConversationID, error) {
	var conv struct {
		ID domain.ConversationID `json:"id"`
	}
	err := c.do(ctx, http.MethodPost, "/chat/conversations/group",
		map[string]any{"name": name, "participantIds": participants}, &conv)
	return conv.ID, err
}

func (c *Client) ListMessages(ctx context.Context, id domain.ConversationID) ([]domain.MessagePayload, error) {
	var messages []domain.MessagePayload
	err := c.do(ctx, http.MethodGet, "/chat/conversations/"+url.PathEscape(id.String())+"/messages", nil, &messages)
	return messages, err
}

func (c *Client) SendMessage(ctx context.Context, id domain.ConversationID, content string) (domain.MessagePayload, error) {
	var message domain.MessagePayload
	err := c.do(ctx, http.MethodPost, "/chat/messages",
		map[string]any{"conversationId": id, "content": content}, &message)
	return message, err
}

func (c *Client) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(data)
	}
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+"/api/v1"+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= http.StatusBadRequest {
		apiErr := &Error{Status: resp.StatusCode}
		if err := json.NewDecoder(resp.Body).Decode(apiErr); err != nil {
			apiErr.Message = http.StatusText(resp.StatusCode)
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// Frame is an event received from the gateway. Data stays raw until the
// caller knows the event kind.
type Frame struct {
	Event event.Kind      `json:"event"`
	Data  json.RawMessage `json:"data"`
}

// Decode turns the frame back into the domain event it was built from.
func (f Frame) Decode() (event.DomainEvent, error) {
	switch f.Event {
	case event.KindNewMessage:
		var e event.MessageCreated
		err := json.Unmarshal(f.Data, &e.Payload)
		return e, err
	case event.KindEditedMessage:
		var e event.MessageEdited
		err := json.Unmarshal(f.Data, &e.Payload)
		return e, err
	case event.KindDeletedMessage:
		var e event.MessageDeleted
		err := json.Unmarshal(f.Data, &e.Marker)
		return e, err
	default:
		return nil, fmt.Errorf("unknown event %q", f.Event)
	}
}

// Stream is one live gateway session.
type Stream struct {
	conn *websocket.Conn
}

// Connect opens a gateway session authenticated with the client token.
func (c *Client) Connect(ctx context.Context) (*Stream, error) {
	wsURL := "ws" + strings.TrimPrefix(c.baseURL, "http") + "/ws?token=" + url.QueryEscape(c.token)
	conn, resp, err := websocket.Dial(ctx, wsURL, &websocket.DialOptions{HTTPClient: c.http})
	if err != nil {
		if resp != nil && resp.StatusCode == http.StatusUnauthorized {
			return nil, &Error{Status: resp.StatusCode, Kind: "unauthenticated", Message: "handshake rejected"}
		}
		return nil, err
	}
	return &Stream{conn: conn}, nil
}

func (s *Stream) Join(ctx context.Context, id domain.ConversationID) error {
	return wsjson.Write(ctx, s.conn, map[string]any{
		"event": "joinConversation",
		"data":  map[string]any{"conversationId": id},
	})
}

func (s *Stream) Send(ctx context.Context, id domain.ConversationID, content string) error {
	return wsjson.Write(ctx, s.conn, map[string]any{
		"event": "sendMessage",
		"data":  map[string]any{"conversationId": id, "content": content},
	})
}

// Next blocks until the next event.
func (s *Stream) Next(ctx context.Context) (Frame, error) {
	var frame Frame
	err := wsjson.Read(ctx, s.conn, &frame)
	return frame, err
}

func (s *Stream) Close() error {
	return s.conn.Close(websocket.StatusNormalClosure, "bye")
}
