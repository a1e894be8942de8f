package services

import (
	"context"
	"log/slog"
	"time"

	"quizzit/broadcast"
	"quizzit/models"
	"quizzit/store"
)

type GameService struct {
	store  store.Store
	pins   *PinGenerator
	events broadcast.Publisher
	live   LiveStateCache
	logger *slog.Logger
	now    func() time.Time
}

func NewGameService(st store.Store, pins *PinGenerator, events broadcast.Publisher, live LiveStateCache, logger *slog.Logger) *GameService {
	return &GameService{
		store:  st,
		pins:   pins,
		events: events,
		live:   live,
		logger: logger,
		now:    time.Now,
	}
}

type CreateSessionRequest struct {
	FormID uint `json:"form_id" binding:"required"`
}

type JoinSessionRequest struct {
	Pin      string `json:"pin" binding:"required,pin"`
	Nickname string `json:"nickname" binding:"required,max=128"`
}

type SubmitAnswerRequest struct {
	QuestionID     uint  `json:"question_id" binding:"required"`
	OptionID       uint  `json:"option_id" binding:"required"`
	ResponseTimeMs int64 `json:"response_time_ms" binding:"min=0"`
}

type AnswerResult struct {
	IsCorrect     bool `json:"is_correct"`
	ScoreAwarded  int  `json:"score_awarded"`
	NewTotalScore int  `json:"new_total_score"`
}

type PublicQuestion struct {
	ID      uint                  `json:"id"`
	Label   string                `json:"label"`
	Options []models.PublicOption `json:"options"`
}

type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	PlayerID uint   `json:"player_id"`
	UserID   string `json:"user_id"`
	Nickname string `json:"nickname"`
	Score    int    `json:"score"`
}

type OptionTally struct {
	OptionID  uint   `json:"option_id"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
	Count     int    `json:"count"`
}

type QuestionResults struct {
	QuestionID uint          `json:"question_id"`
	Answered   int           `json:"answered"`
	Correct    int           `json:"correct"`
	Options    []OptionTally `json:"options"`
}

type Lobby struct {
	Session *models.GameSession `json:"session"`
	Players []LeaderboardEntry  `json:"players"`
}

// Event payloads. None of them reveal correctness or other players' scores
// while a question is open.

type PlayerJoinedEvent struct {
	ID       uint   `json:"id"`
	Nickname string `json:"nickname"`
	UserID   string `json:"user_id"`
	Score    int    `json:"score"`
}

type PlayerAnsweredEvent struct {
	Nickname string `json:"nickname"`
	UserID   string `json:"user_id"`
}

type GameStartedEvent struct {
	SessionID      uint `json:"session_id"`
	TotalQuestions int  `json:"total_questions"`
}

type QuestionStartedEvent struct {
	Index          int            `json:"index"`
	TotalQuestions int            `json:"total_questions"`
	Question       PublicQuestion `json:"question"`
}

type GameFinishedEvent struct {
	Leaderboard []LeaderboardEntry `json:"leaderboard"`
}

func publicQuestion(q models.Question) PublicQuestion {
	pq := PublicQuestion{ID: q.ID, Label: q.Label, Options: make([]models.PublicOption, len(q.Options))}
	for i, opt := range q.Options {
		pq.Options[i] = opt.Public()
	}
	return pq
}

// publish is fire-and-forget: the state change has already been committed.
func (s *GameService) publish(ctx context.Context, sessionID uint, event string, payload any) {
	channel := models.ChannelFor(sessionID)
	if err := s.events.Publish(ctx, channel, event, payload); err != nil {
		s.logger.Warn("broadcast failed",
			slog.String("channel", channel),
			slog.String("event", event),
			slog.String("error", err.Error()))
	}
}

func (s *GameService) storeLiveState(ctx context.Context, state *LiveState) {
	if err := s.live.Set(ctx, state); err != nil {
		s.logger.Warn("failed to cache live state",
			slog.Uint64("session_id", uint64(state.SessionID)),
			slog.String("error", err.Error()))
	}
}

// CreateSession opens a lobby for a quiz form owned by hostID.
func (s *GameService) CreateSession(ctx context.Context, formID uint, hostID string) (*models.GameSession, error) {
	if formID == 0 {
		return nil, ValidationError("form_id is required")
	}
	if hostID == "" {
		return nil, Unauthenticated("host not authenticated")
	}

	form, err := s.store.GetForm(ctx, formID)
	if err != nil {
		if store.IsNotFound(err) {
			return nil, ValidationError("form %d not found", formID)
		}
		return nil, InternalError(err, "failed to load form")
	}
	if form.OwnerID != hostID {
		return nil, Unauthorized("not allowed to host form %d", formID)
	}
	if !form.IsQuiz {
		return nil, ValidationError("form %d is not a quiz", formID)
	}
	if len(form.Questions) == 0 {
		return nil, ValidationError("quiz %d has no questions", formID)
	}

	pin, err := s.pins.Generate(ctx)
	if err != nil {
		return nil, err
	}

	session := &models.GameSession{
		Pin:                  pin,
		FormID:               form.ID,
		HostID:               hostID,
		Status:               models.StatusLobby,
		CurrentQuestionIndex: -1,
	}
	if err := s.store.CreateSession(ctx, session); err != nil {
		return nil, InternalError(err, "failed to create game session")
	}

	s.storeLiveState(ctx, &LiveState{
		SessionID:      session.ID,
		Status:         session.Status,
		QuestionIndex:  -1,
		TotalQuestions: len(form.Questions),
	})
	s.logger.Info("game session created",
		slog.Uint64("session_id", uint64(session.ID)),
		slog.String("pin", session.Pin),
		slog.Uint64("form_id", uint64(form.ID)))
	return session, nil
}

// JoinSession adds userID to the lobby behind pin. Joining again returns the
// existing player untouched.
func (s *GameService) JoinSession(ctx context.Context, pin, userID, nickname string) (*models.Player, error) {
	if userID == "" {
		return nil, Unauthenticated("player not authenticated")
	}
	nickname, err := sanitizeNickname(nickname)
	if err != nil {
		return nil, err
	}

	session, err := s.store.GetSessionByPin(ctx, pin)
	if err != nil {
		return nil, fromStore(err, "no game with pin "+pin)
	}
	if session.Status != models.StatusLobby {
		return nil, NotFound("game %s is not accepting players", pin)
	}

	player, created, err := s.store.UpsertPlayer(ctx, &models.Player{
		UserID:        userID,
		GameSessionID: session.ID,
		Nickname:      nickname,
		Score:         0,
		JoinedAt:      s.now(),
	})
	if err != nil {
		return nil, InternalError(err, "failed to join game")
	}
	if !created {
		return player, nil
	}

	s.logger.Info("player joined",
		slog.Uint64("session_id", uint64(session.ID)),
		slog.Uint64("player_id", uint64(player.ID)))
	s.publish(ctx, session.ID, broadcast.EventPlayerJoined, PlayerJoinedEvent{
		ID:       player.ID,
		Nickname: player.Nickname,
		UserID:   player.UserID,
		Score:    0,
	})
	return player, nil
}

// SubmitAnswer scores one answer and adds it to the player's total.
func (s *GameService) SubmitAnswer(ctx context.Context, sessionID uint, userID string, req *SubmitAnswerRequest) (*AnswerResult, error) {
	if req.ResponseTimeMs < 0 {
		return nil, ValidationError("response_time_ms must not be negative")
	}

	player, err := s.store.GetPlayer(ctx, sessionID, userID)
	if err != nil {
		return nil, fromStore(err, "player not found in game")
	}
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fromStore(err, "game not found")
	}
	if session.Status != models.StatusActive {
		return nil, ValidationError("game is not active")
	}
	question, err := s.store.GetQuestion(ctx, session.FormID, req.QuestionID)
	if err != nil {
		return nil, fromStore(err, "question not found")
	}

	state, err := s.live.Get(ctx, sessionID)
	if err != nil {
		s.logger.Warn("live state unavailable, falling back to stored session",
			slog.Uint64("session_id", uint64(sessionID)),
			slog.String("error", err.Error()))
	}
	openID, err := s.openQuestionID(ctx, session, state)
	if err != nil {
		return nil, err
	}
	if question.ID != openID {
		return nil, ValidationError("question is not open")
	}

	option := question.OptionByID(req.OptionID)
	isCorrect := option != nil && option.IsCorrect

	responseTime := EffectiveResponseTime(req.ResponseTimeMs, state.Elapsed(question.ID, s.now()))
	points := Score(isCorrect, responseTime)

	total, err := s.store.RecordResponse(ctx, &models.PlayerResponse{
		PlayerID:       player.ID,
		QuestionID:     question.ID,
		OptionID:       req.OptionID,
		IsCorrect:      isCorrect,
		ScoreAwarded:   points,
		ResponseTimeMs: responseTime,
	})
	if err != nil {
		if store.IsDuplicate(err) {
			return nil, ValidationError("answer already submitted")
		}
		return nil, fromStore(err, "player not found in game")
	}

	s.publish(ctx, sessionID, broadcast.EventPlayerAnswered, PlayerAnsweredEvent{
		Nickname: player.Nickname,
		UserID:   player.UserID,
	})
	return &AnswerResult{IsCorrect: isCorrect, ScoreAwarded: points, NewTotalScore: total}, nil
}

// openQuestionID returns the question currently accepting answers, or 0 when
// none is open. The live state is preferred; the stored index is the fallback.
func (s *GameService) openQuestionID(ctx context.Context, session *models.GameSession, state *LiveState) (uint, error) {
	if state != nil && state.QuestionID != 0 {
		return state.QuestionID, nil
	}
	if session.CurrentQuestionIndex < 0 {
		return 0, nil
	}
	form, err := s.store.GetForm(ctx, session.FormID)
	if err != nil {
		return 0, InternalError(err, "failed to load form")
	}
	if session.CurrentQuestionIndex >= len(form.Questions) {
		return 0, nil
	}
	return form.Questions[session.CurrentQuestionIndex].ID, nil
}

func (s *GameService) hostedSession(ctx context.Context, sessionID uint, hostID string) (*models.GameSession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fromStore(err, "game not found")
	}
	if session.HostID != hostID {
		return nil, Unauthorized("only the host can control this game")
	}
	return session, nil
}

func transition(session *models.GameSession, to models.SessionStatus) error {
	next, ok := session.Status.Next()
	if !ok || next != to {
		return ValidationError("cannot move game from %s to %s", session.Status, to)
	}
	session.Status = to
	return nil
}

// StartGame closes the lobby and opens the first question.
func (s *GameService) StartGame(ctx context.Context, sessionID uint, hostID string) (*models.GameSession, error) {
	session, err := s.hostedSession(ctx, sessionID, hostID)
	if err != nil {
		return nil, err
	}
	if err := transition(session, models.StatusActive); err != nil {
		return nil, err
	}
	form, err := s.store.GetForm(ctx, session.FormID)
	if err != nil {
		return nil, InternalError(err, "failed to load form")
	}

	now := s.now()
	session.StartedAt = &now
	session.CurrentQuestionIndex = 0
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, InternalError(err, "failed to start game")
	}

	s.publish(ctx, session.ID, broadcast.EventGameStarted, GameStartedEvent{
		SessionID:      session.ID,
		TotalQuestions: len(form.Questions),
	})
	s.announceQuestion(ctx, session, form, 0)
	return session, nil
}

// StartQuestion opens question index and starts its server-side clock.
func (s *GameService) StartQuestion(ctx context.Context, sessionID uint, hostID string, index int) (*PublicQuestion, error) {
	session, err := s.hostedSession(ctx, sessionID, hostID)
	if err != nil {
		return nil, err
	}
	if session.Status != models.StatusActive {
		return nil, ValidationError("game is not active")
	}
	form, err := s.store.GetForm(ctx, session.FormID)
	if err != nil {
		return nil, InternalError(err, "failed to load form")
	}
	if index < 0 || index >= len(form.Questions) {
		return nil, ValidationError("question index %d out of range", index)
	}

	session.CurrentQuestionIndex = index
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, InternalError(err, "failed to start question")
	}

	pq := s.announceQuestion(ctx, session, form, index)
	return &pq, nil
}

// announceQuestion starts the server clock for question index and tells
// everyone in the game about it.
func (s *GameService) announceQuestion(ctx context.Context, session *models.GameSession, form *models.Form, index int) PublicQuestion {
	question := form.Questions[index]
	s.storeLiveState(ctx, &LiveState{
		SessionID:         session.ID,
		Status:            session.Status,
		QuestionIndex:     index,
		QuestionID:        question.ID,
		QuestionStartedAt: s.now(),
		TotalQuestions:    len(form.Questions),
	})

	pq := publicQuestion(question)
	s.publish(ctx, session.ID, broadcast.EventQuestionStarted, QuestionStartedEvent{
		Index:          index,
		TotalQuestions: len(form.Questions),
		Question:       pq,
	})
	return pq
}

// NextQuestion opens the question after the current one. When none is left
// the game is finished and a nil question is returned with the leaderboard.
func (s *GameService) NextQuestion(ctx context.Context, sessionID uint, hostID string) (*PublicQuestion, []LeaderboardEntry, error) {
	session, err := s.hostedSession(ctx, sessionID, hostID)
	if err != nil {
		return nil, nil, err
	}
	form, err := s.store.GetForm(ctx, session.FormID)
	if err != nil {
		return nil, nil, InternalError(err, "failed to load form")
	}

	next := session.CurrentQuestionIndex + 1
	if next >= len(form.Questions) {
		board, err := s.FinishGame(ctx, sessionID, hostID)
		return nil, board, err
	}
	q, err := s.StartQuestion(ctx, sessionID, hostID, next)
	return q, nil, err
}

// FinishGame ends the game and publishes the final leaderboard.
func (s *GameService) FinishGame(ctx context.Context, sessionID uint, hostID string) ([]LeaderboardEntry, error) {
	session, err := s.hostedSession(ctx, sessionID, hostID)
	if err != nil {
		return nil, err
	}
	if err := transition(session, models.StatusFinished); err != nil {
		return nil, err
	}

	now := s.now()
	session.EndedAt = &now
	if err := s.store.UpdateSession(ctx, session); err != nil {
		return nil, InternalError(err, "failed to finish game")
	}
	s.storeLiveState(ctx, &LiveState{
		SessionID:     session.ID,
		Status:        session.Status,
		QuestionIndex: session.CurrentQuestionIndex,
	})

	board, err := s.leaderboard(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	s.logger.Info("game finished",
		slog.Uint64("session_id", uint64(session.ID)),
		slog.Int("players", len(board)))
	s.publish(ctx, session.ID, broadcast.EventGameFinished, GameFinishedEvent{Leaderboard: board})
	return board, nil
}

// Leaderboard ranks players by score; equal scores keep join order. Only the
// host and the game's players may read it.
func (s *GameService) Leaderboard(ctx context.Context, sessionID uint, userID string) ([]LeaderboardEntry, error) {
	if _, err := s.Session(ctx, sessionID, userID); err != nil {
		return nil, err
	}
	return s.leaderboard(ctx, sessionID)
}

func (s *GameService) leaderboard(ctx context.Context, sessionID uint) ([]LeaderboardEntry, error) {
	players, err := s.store.ListPlayers(ctx, sessionID)
	if err != nil {
		return nil, InternalError(err, "failed to load players")
	}
	return rank(players), nil
}

func rank(players []models.Player) []LeaderboardEntry {
	board := make([]LeaderboardEntry, len(players))
	for i, p := range players {
		board[i] = LeaderboardEntry{
			Rank:     i + 1,
			PlayerID: p.ID,
			UserID:   p.UserID,
			Nickname: p.Nickname,
			Score:    p.Score,
		}
	}
	return board
}

// QuestionResults tallies the answers given so far to question index. It
// reveals the correct option, so only the host may call it.
func (s *GameService) QuestionResults(ctx context.Context, sessionID uint, hostID string, index int) (*QuestionResults, error) {
	session, err := s.hostedSession(ctx, sessionID, hostID)
	if err != nil {
		return nil, err
	}
	form, err := s.store.GetForm(ctx, session.FormID)
	if err != nil {
		return nil, InternalError(err, "failed to load form")
	}
	if index < 0 || index >= len(form.Questions) {
		return nil, ValidationError("question index %d out of range", index)
	}
	question := form.Questions[index]

	responses, err := s.store.ListResponses(ctx, sessionID, question.ID)
	if err != nil {
		return nil, InternalError(err, "failed to load responses")
	}

	results := &QuestionResults{QuestionID: question.ID, Answered: len(responses)}
	counts := make(map[uint]int, len(question.Options))
	for _, r := range responses {
		counts[r.OptionID]++
		if r.IsCorrect {
			results.Correct++
		}
	}
	for _, opt := range question.Options {
		results.Options = append(results.Options, OptionTally{
			OptionID:  opt.ID,
			Text:      opt.Text,
			IsCorrect: opt.IsCorrect,
			Count:     counts[opt.ID],
		})
	}
	return results, nil
}

// LobbyByPin returns a live session and its players for the waiting screen.
func (s *GameService) LobbyByPin(ctx context.Context, pin string) (*Lobby, error) {
	session, err := s.store.GetSessionByPin(ctx, pin)
	if err != nil {
		return nil, fromStore(err, "no game with pin "+pin)
	}
	players, err := s.store.ListPlayers(ctx, session.ID)
	if err != nil {
		return nil, InternalError(err, "failed to load players")
	}
	return &Lobby{Session: session, Players: rank(players)}, nil
}

// Session returns a session visible to its host or one of its players.
func (s *GameService) Session(ctx context.Context, sessionID uint, userID string) (*models.GameSession, error) {
	session, err := s.store.GetSession(ctx, sessionID)
	if err != nil {
		return nil, fromStore(err, "game not found")
	}
	if session.HostID == userID {
		return session, nil
	}
	if _, err := s.store.GetPlayer(ctx, sessionID, userID); err != nil {
		if store.IsNotFound(err) {
			return nil, Unauthorized("not a member of this game")
		}
		return nil, InternalError(err, "failed to load player")
	}
	return session, nil
}
