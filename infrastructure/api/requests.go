package api

import (
	"chat-hub/domain"
	"chat-hub/errors"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/leebenson/conform"
	"github.com/samber/lo"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New()
	_ = v.RegisterValidation("notblank", func(fl validator.FieldLevel) bool {
		return strings.TrimSpace(fl.Field().String()) != ""
	})
	return v
}

type signupRequest struct {
	Email    string `json:"email"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type loginRequest struct {
	Username string `json:"username" conform:"trim" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type createDirectRequest struct {
	OtherUserID string `json:"otherUserId" conform:"trim" validate:"required"`
}

type createGroupRequest struct {
	Name           *string  `json:"name"`
	ParticipantIDs []string `json:"participantIds" validate:"required,min=1,dive,required"`
}

type addParticipantsRequest struct {
	ParticipantIDs []string `json:"participantIds" validate:"required,min=1,dive,required"`
}

type renameRequest struct {
	Name string `json:"name" conform:"trim" validate:"required,max=100"`
}

// Content is not conformed: it is persisted exactly as sent.
type sendMessageRequest struct {
	ConversationID string `json:"conversationId" conform:"trim" validate:"required"`
	Content        string `json:"content" validate:"notblank"`
}

type editMessageRequest struct {
	Content string `json:"content" validate:"notblank"`
}

// bind decodes the JSON body, trims the tagged fields and validates.
func bind(c *gin.Context, dst any) error {
	if err := c.ShouldBindJSON(dst); err != nil {
		return errors.Wrap(errors.KindBadRequest, "invalid request body", err)
	}
	if err := conform.Strings(dst); err != nil {
		return errors.Wrap(errors.KindBadRequest, "invalid request body", err)
	}
	if err := validate.Struct(dst); err != nil {
		return errors.Wrap(errors.KindBadRequest, "invalid request body", err)
	}
	return nil
}

func toUserIDs(ids []string) []domain.UserID {
	return lo.Map(ids, func(id string, _ int) domain.UserID {
		return domain.UserID(strings.TrimSpace(id))
	})
}
