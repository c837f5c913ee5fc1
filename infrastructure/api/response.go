package api

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/samber/lo"
)

type errorResponse struct {
	Message string `json:"message"`
	Kind    string `json:"kind"`
}

func newErrorResponse(err error) errorResponse {
	return errorResponse{Message: errors.PublicMessage(err), Kind: errors.KindOf(err).String()}
}

// respondError writes the classified error. Internal failures are logged
// and answered with a generic message.
func (s *Server) respondError(c *gin.Context, err error) {
	if errors.KindOf(err) == errors.KindInternal {
		s.log.Error("Request failed", "path", c.FullPath(), "error", err)
	}
	c.JSON(errors.HTTPStatus(err), newErrorResponse(err))
}

func abortWithError(c *gin.Context, err error) {
	c.AbortWithStatusJSON(errors.HTTPStatus(err), newErrorResponse(err))
}

type successResponse struct {
	Success bool `json:"success"`
}

type participantResponse struct {
	UserID   domain.UserID `json:"userId"`
	JoinedAt time.Time     `json:"joinedAt"`
}

type conversationResponse struct {
	ID           domain.ConversationID `json:"id"`
	IsGroup      bool                  `json:"isGroup"`
	Name         *string               `json:"name"`
	CreatedAt    time.Time             `json:"createdAt"`
	UpdatedAt    time.Time             `json:"updatedAt"`
	Participants []participantResponse `json:"participants"`
}

func toConversationResponse(conv domain.Conversation) conversationResponse {
	return conversationResponse{
		ID:        conv.ID,
		IsGroup:   conv.IsGroup,
		Name:      conv.Name,
		CreatedAt: conv.CreatedAt,
		UpdatedAt: conv.UpdatedAt,
		Participants: lo.Map(conv.Participants, func(p domain.Participant, _ int) participantResponse {
			return participantResponse{UserID: p.UserID, JoinedAt: p.JoinedAt}
		}),
	}
}
