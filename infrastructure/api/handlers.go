package api

import (
	"chat-hub/domain"
	"net/http"

	"github.com/gin-gonic/gin"
)

func (s *Server) handleSignup(c *gin.Context) {
	var body signupRequest
	if err := bind(c, &body); err != nil {
		s.respondError(c, err)
		return
	}
	session, err := s.auth.Signup(c.Request.Context(), body.Email, body.Username, body.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, session)
}

func (s *Server) handleLogin(c *gin.Context) {
	var body loginRequest
	if err := bind(c, &body); err != nil {
		s.respondError(c, err)
		return
	}
	session, err := s.auth.Login(c.Request.Context(), body.Username, body.Password)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, session)
}

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.users.ListUsers(c.Request.Context(), mustUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, users)
}

func (s *Server) handleGetUser(c *gin.Context) {
	user, err := s.users.GetUser(c.Request.Context(), domain.UserID(c.Param("id")))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, user)
}

func (s *Server) handleListConversations(c *gin.Context) {
	summaries, err := s.chat.ListConversations(c.Request.Context(), mustUserID(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (s *Server) handleSearchConversations(c *gin.Context) {
	summaries, err := s.chat.SearchConversations(c.Request.Context(), mustUserID(c), c.Query("q"))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summaries)
}

func (s *Server) handleGetConversation(c *gin.Context) {
	summary, err := s.chat.GetConversation(c.Request.Context(), mustUserID(c), conversationParam(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, summary)
}

func (s *Server) handleCreateDirect(c *gin.Context) {
	var body createDirectRequest
	if err := bind(c, &body); err != nil {
		s.respondError(c, err)
		return
	}
	conv, err := s.membership.CreateDirect(c.Request.Context(), mustUserID(c), domain.UserID(body.OtherUserID))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toConversationResponse(conv))
}

func (s *Server) handleCreateGroup(c *gin.Context) {
	var body createGroupRequest
	if err := bind(c, &body); err != nil {
		s.respondError(c, err)
		return
	}
	conv, err := s.membership.CreateGroup(c.Request.Context(), mustUserID(c), body.Name, toUserIDs(body.ParticipantIDs))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, toConversationResponse(conv))
}

func (s *Server) handleRenameConversation(c *gin.Context) {
	var body renameRequest
	if err := bind(c, &body); err != nil {
		s.respondError(c, err)
		return
	}
	conv, err := s.membership.Rename(c.Request.Context(), mustUserID(c), conversationParam(c), body.Name)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toConversationResponse(conv))
}

func (s *Server) handleAddParticipants(c *gin.Context) {
	var body addParticipantsRequest
	if err := bind(c, &body); err != nil {
		s.respondError(c, err)
		return
	}
	conv, err := s.membership.AddParticipants(c.Request.Context(), mustUserID(c), conversationParam(c), toUserIDs(body.ParticipantIDs))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toConversationResponse(conv))
}

func (s *Server) handleLeave(c *gin.Context) {
	if err := s.membership.Leave(c.Request.Context(), mustUserID(c), conversationParam(c)); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true})
}

func (s *Server) handleListMessages(c *gin.Context) {
	messages, err := s.chat.ListMessages(c.Request.Context(), mustUserID(c), conversationParam(c))
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, messages)
}

func (s *Server) handleSendMessage(c *gin.Context) {
	var body sendMessageRequest
	if err := bind(c, &body); err != nil {
		s.respondError(c, err)
		return
	}
	payload, err := s.chat.Send(c.Request.Context(), mustUserID(c), domain.ConversationID(body.ConversationID), body.Content)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, payload)
}

func (s *Server) handleEditMessage(c *gin.Context) {
	var body editMessageRequest
	if err := bind(c, &body); err != nil {
		s.respondError(c, err)
		return
	}
	payload, err := s.chat.Edit(c.Request.Context(), mustUserID(c), domain.MessageID(c.Param("id")), body.Content)
	if err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, payload)
}

func (s *Server) handleDeleteMessage(c *gin.Context) {
	if err := s.chat.Delete(c.Request.Context(), mustUserID(c), domain.MessageID(c.Param("id"))); err != nil {
		s.respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, successResponse{Success: true})
}

func conversationParam(c *gin.Context) domain.ConversationID {
	return domain.ConversationID(c.Param("id"))
}
