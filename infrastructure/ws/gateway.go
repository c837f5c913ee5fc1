// Package ws is the real-time surface: one websocket per session,
// authenticated at handshake, fed by the delivery hub.
package ws

import (
	"chat-hub/auth"
	"chat-hub/contract"
	"chat-hub/domain"
	"chat-hub/domain/event"
	"chat-hub/errors"
	"chat-hub/services"
	"chat-hub/sink"
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"nhooyr.io/websocket"
	"nhooyr.io/websocket/wsjson"
)

const (
	EventJoinConversation = "joinConversation"
	EventSendMessage      = "sendMessage"
)

const (
	defaultSessionBufferSize = 64
	defaultPingInterval      = 25 * time.Second
	defaultWriteTimeout      = 10 * time.Second
	readLimit                = 64 << 10
)

// Hub is the session side of the delivery hub.
type Hub interface {
	Authenticate(token string) (domain.UserID, error)
	Connect(sessionID domain.SessionID, userID domain.UserID, sink contract.EventSink)
	Join(sessionID domain.SessionID, conversationID domain.ConversationID) bool
	Disconnect(sessionID domain.SessionID)
}

type Options struct {
	SessionBufferSize int
	PingInterval      time.Duration
	WriteTimeout      time.Duration
	// JoinRequiresMembership gates joinConversation with EnsureParticipant.
	JoinRequiresMembership bool
	OriginPatterns         []string
	InsecureSkipVerify     bool
}

type Gateway struct {
	log        *slog.Logger
	hub        Hub
	chat       services.IChatService
	membership services.IMembershipService
	options    Options
}

func NewGateway(log *slog.Logger, hub Hub, chat services.IChatService,
	membership services.IMembershipService, options Options) *Gateway {
	if options.SessionBufferSize <= 0 {
		options.SessionBufferSize = defaultSessionBufferSize
	}
	if options.PingInterval <= 0 {
		options.PingInterval = defaultPingInterval
	}
	if options.WriteTimeout <= 0 {
		options.WriteTimeout = defaultWriteTimeout
	}
	return &Gateway{log: log, hub: hub, chat: chat, membership: membership, options: options}
}

// inboundFrame mirrors event.Frame with the payload left undecoded.
type inboundFrame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data"`
}

type joinData struct {
	ConversationID domain.ConversationID `json:"conversationId"`
}

type sendData struct {
	ConversationID domain.ConversationID `json:"conversationId"`
	Content        string                `json:"content"`
}

// Handle upgrades an authenticated request. A missing or invalid token is
// refused with 401 before any websocket frame exists.
func (g *Gateway) Handle(c *gin.Context) {
	token := c.Query("token")
	if token == "" {
		token, _ = auth.BearerToken(c.GetHeader("Authorization"))
	}
	userID, err := g.hub.Authenticate(token)
	if err != nil {
		g.log.Debug("Websocket handshake refused", "ip", c.ClientIP(), "error", err)
		c.AbortWithStatusJSON(errors.HTTPStatus(err), gin.H{"message": errors.PublicMessage(err), "kind": errors.KindOf(err).String()})
		return
	}

	conn, err := websocket.Accept(c.Writer, c.Request, &websocket.AcceptOptions{
		OriginPatterns:     g.options.OriginPatterns,
		InsecureSkipVerify: g.options.InsecureSkipVerify,
	})
	if err != nil {
		// Accept already wrote the response
		g.log.Debug("Websocket upgrade failed", "error", err)
		return
	}
	conn.SetReadLimit(readLimit)

	g.serve(c.Request.Context(), conn, userID)
}

func (g *Gateway) serve(parent context.Context, conn *websocket.Conn, userID domain.UserID) {
	sessionID := domain.SessionID(uuid.Must(uuid.NewV7()).String())
	log := g.log.With("session", sessionID, "user", userID)
	ctx, cancel := context.WithCancel(parent)

	sessionSink := sink.NewSessionSink(g.log, sessionID, g.options.SessionBufferSize)
	g.hub.Connect(sessionID, userID, sessionSink)

	var wg sync.WaitGroup
	wg.Add(2)
	go func() {
		defer wg.Done()
		defer cancel()
		g.writeLoop(ctx, conn, sessionSink)
	}()
	go func() {
		defer wg.Done()
		g.keepAlive(ctx, conn)
	}()

	defer func() {
		g.hub.Disconnect(sessionID)
		cancel()
		wg.Wait()
		_ = conn.Close(websocket.StatusNormalClosure, "bye")
		log.Debug("Websocket closed")
	}()

	log.Debug("Websocket opened")
	for {
		var frame inboundFrame
		if err := wsjson.Read(ctx, conn, &frame); err != nil {
			if status := websocket.CloseStatus(err); status == -1 && ctx.Err() == nil {
				log.Debug("Websocket read failed", "error", err)
			}
			return
		}
		cmd, ok := toCommand(sessionID, userID, frame)
		if !ok {
			log.Debug("Inbound frame ignored", "event", frame.Event)
			continue
		}
		g.handle(ctx, log, cmd)
	}
}

func toCommand(sessionID domain.SessionID, userID domain.UserID, frame inboundFrame) (domain.Command, bool) {
	switch frame.Event {
	case EventJoinConversation:
		var data joinData
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.ConversationID == "" {
			return nil, false
		}
		return domain.JoinConversationCommand{SessionID: sessionID, UserID: userID, ConversationID: data.ConversationID}, true
	case EventSendMessage:
		var data sendData
		if err := json.Unmarshal(frame.Data, &data); err != nil || data.ConversationID == "" {
			return nil, false
		}
		return domain.SendMessageCommand{SessionID: sessionID, UserID: userID, ConversationID: data.ConversationID, Content: data.Content}, true
	default:
		return nil, false
	}
}

// handle runs one inbound command. Failures are logged and dropped:
// the socket has no error frame.
func (g *Gateway) handle(ctx context.Context, log *slog.Logger, cmd domain.Command) {
	switch c := cmd.(type) {
	case domain.JoinConversationCommand:
		if g.options.JoinRequiresMembership {
			if _, err := g.membership.EnsureParticipant(ctx, c.UserID, c.ConversationID); err != nil {
				log.Debug("Join refused", "conversation", c.ConversationID, "error", err)
				return
			}
		}
		g.hub.Join(c.SessionID, c.ConversationID)
	case domain.SendMessageCommand:
		if strings.TrimSpace(c.Content) == "" {
			log.Debug("Empty message dropped", "conversation", c.ConversationID)
			return
		}
		if _, err := g.chat.Send(ctx, c.UserID, c.ConversationID, c.Content); err != nil {
			log.Debug("Send refused", "conversation", c.ConversationID, "error", err)
		}
	}
}

func (g *Gateway) writeLoop(ctx context.Context, conn *websocket.Conn, s *sink.SessionSink) {
	for {
		select {
		case <-ctx.Done():
			return
		case e := <-s.Events():
			writeCtx, cancel := context.WithTimeout(ctx, g.options.WriteTimeout)
			err := wsjson.Write(writeCtx, conn, event.ToFrame(e))
			cancel()
			if err != nil {
				g.log.Debug("Websocket write failed", "error", err)
				return
			}
		}
	}
}

func (g *Gateway) keepAlive(ctx context.Context, conn *websocket.Conn) {
	ticker := time.NewTicker(g.options.PingInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, g.options.WriteTimeout)
			err := conn.Ping(pingCtx)
			cancel()
			if err != nil && ctx.Err() == nil {
				g.log.Debug("Websocket ping failed", "error", err)
			}
		}
	}
}
