package handlers

import (
	"log/slog"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"quizzit/broadcast"
	"quizzit/middleware"
	"quizzit/models"
	"quizzit/services"
)

// Subscriber attaches a websocket to a game channel.
type Subscriber interface {
	Serve(conn broadcast.Conn, channel, userID string) *broadcast.Client
}

type GameHandler struct {
	gameService *services.GameService
	subscriber  Subscriber
	upgrader    websocket.Upgrader
	logger      *slog.Logger
}

func NewGameHandler(gameService *services.GameService, subscriber Subscriber, logger *slog.Logger) *GameHandler {
	return &GameHandler{
		gameService: gameService,
		subscriber:  subscriber,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				return true
			},
		},
		logger: logger,
	}
}

func (h *GameHandler) CreateSession(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}

	var req services.CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	session, err := h.gameService.CreateSession(c.Request.Context(), req.FormID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusCreated, session)
}

func (h *GameHandler) JoinSession(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}

	var req services.JoinSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	player, err := h.gameService.JoinSession(c.Request.Context(), req.Pin, userID, req.Nickname)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, player)
}

func (h *GameHandler) GetSessionByPin(c *gin.Context) {
	lobby, err := h.gameService.LobbyByPin(c.Request.Context(), c.Param("pin"))
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, lobby)
}

func (h *GameHandler) StartGame(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	session, err := h.gameService.StartGame(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, session)
}

func (h *GameHandler) StartQuestion(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question index"})
		return
	}

	question, err := h.gameService.StartQuestion(c.Request.Context(), sessionID, userID, index)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"index": index, "question": question})
}

func (h *GameHandler) QuestionResults(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}
	index, err := strconv.Atoi(c.Param("index"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid question index"})
		return
	}

	results, err := h.gameService.QuestionResults(c.Request.Context(), sessionID, userID, index)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, results)
}

func (h *GameHandler) NextQuestion(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	question, board, err := h.gameService.NextQuestion(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}
	if question == nil {
		c.JSON(http.StatusOK, gin.H{"finished": true, "leaderboard": board})
		return
	}

	c.JSON(http.StatusOK, gin.H{"finished": false, "question": question})
}

func (h *GameHandler) FinishGame(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	board, err := h.gameService.FinishGame(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": board})
}

func (h *GameHandler) SubmitAnswer(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	var req services.SubmitAnswerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondBindError(c, err)
		return
	}

	result, err := h.gameService.SubmitAnswer(c.Request.Context(), sessionID, userID, &req)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, result)
}

func (h *GameHandler) Leaderboard(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	board, err := h.gameService.Leaderboard(c.Request.Context(), sessionID, userID)
	if err != nil {
		respondError(c, h.logger, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"leaderboard": board})
}

// Subscribe upgrades to a websocket that receives every event of the game.
// Only the host and joined players may listen.
func (h *GameHandler) Subscribe(c *gin.Context) {
	userID := middleware.UserID(c)
	if !requireUser(c, userID) {
		return
	}
	sessionID, ok := parseID(c, "id")
	if !ok {
		return
	}

	if _, err := h.gameService.Session(c.Request.Context(), sessionID, userID); err != nil {
		respondError(c, h.logger, err)
		return
	}

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Warn("websocket upgrade failed",
			slog.Uint64("session_id", uint64(sessionID)),
			slog.String("error", err.Error()))
		return
	}

	client := h.subscriber.Serve(conn, models.ChannelFor(sessionID), userID)
	h.logger.Info("websocket connected",
		slog.Uint64("session_id", uint64(sessionID)),
		slog.String("user_id", userID),
		slog.String("client", client.ID()))
}
