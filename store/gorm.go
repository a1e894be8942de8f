package store

import (
	"context"

	"github.com/pkg/errors"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"quizzit/models"
)

type GormStore struct {
	db *gorm.DB
}

var _ Store = (*GormStore)(nil)

func NewGormStore(db *gorm.DB) *GormStore {
	return &GormStore{db: db}
}

// Migrate creates or updates the schema for every model.
func (s *GormStore) Migrate(ctx context.Context) error {
	if err := s.db.WithContext(ctx).AutoMigrate(models.All()...); err != nil {
		return errors.Wrap(err, "failed to migrate database")
	}
	return nil
}

func orderedQuestions(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{Column: clause.Column{Table: "questions", Name: "order"}}).
		Order("questions.id")
}

func orderedOptions(db *gorm.DB) *gorm.DB {
	return db.Order(clause.OrderByColumn{Column: clause.Column{Table: "options", Name: "order"}}).
		Order("options.id")
}

func notFound(err error, what string) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return errors.Wrap(ErrNotFound, what)
	}
	return errors.Wrapf(err, "failed to load %s", what)
}

func (s *GormStore) CreateForm(ctx context.Context, form *models.Form) error {
	// Create persists the nested questions and options in the same transaction.
	if err := s.db.WithContext(ctx).Create(form).Error; err != nil {
		return errors.Wrap(err, "failed to create form")
	}
	return nil
}

func (s *GormStore) GetForm(ctx context.Context, formID uint) (*models.Form, error) {
	var form models.Form
	err := s.db.WithContext(ctx).
		Preload("Questions", orderedQuestions).
		Preload("Questions.Options", orderedOptions).
		First(&form, formID).Error
	if err != nil {
		return nil, notFound(err, "form")
	}
	return &form, nil
}

func (s *GormStore) ListForms(ctx context.Context, ownerID string) ([]models.Form, error) {
	var forms []models.Form
	err := s.db.WithContext(ctx).
		Where("owner_id = ?", ownerID).
		Preload("Questions", orderedQuestions).
		Preload("Questions.Options", orderedOptions).
		Order("created_at DESC").
		Find(&forms).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list forms")
	}
	return forms, nil
}

func (s *GormStore) DeleteForm(ctx context.Context, formID uint) error {
	res := s.db.WithContext(ctx).Delete(&models.Form{}, formID)
	if res.Error != nil {
		return errors.Wrap(res.Error, "failed to delete form")
	}
	if res.RowsAffected == 0 {
		return errors.Wrap(ErrNotFound, "form")
	}
	return nil
}

func (s *GormStore) GetQuestion(ctx context.Context, formID, questionID uint) (*models.Question, error) {
	var question models.Question
	err := s.db.WithContext(ctx).
		Where("id = ? AND form_id = ?", questionID, formID).
		Preload("Options", orderedOptions).
		First(&question).Error
	if err != nil {
		return nil, notFound(err, "question")
	}
	return &question, nil
}

func (s *GormStore) CreateSession(ctx context.Context, session *models.GameSession) error {
	if err := s.db.WithContext(ctx).Create(session).Error; err != nil {
		return errors.Wrap(err, "failed to create game session")
	}
	return nil
}

func (s *GormStore) GetSession(ctx context.Context, sessionID uint) (*models.GameSession, error) {
	var session models.GameSession
	if err := s.db.WithContext(ctx).First(&session, sessionID).Error; err != nil {
		return nil, notFound(err, "game session")
	}
	return &session, nil
}

func (s *GormStore) GetSessionByPin(ctx context.Context, pin string) (*models.GameSession, error) {
	var session models.GameSession
	err := s.db.WithContext(ctx).
		Where("pin = ? AND status IN ?", pin, []models.SessionStatus{models.StatusLobby, models.StatusActive}).
		Order("id DESC").
		First(&session).Error
	if err != nil {
		return nil, notFound(err, "game session")
	}
	return &session, nil
}

func (s *GormStore) PinInUse(ctx context.Context, pin string) (bool, error) {
	var count int64
	err := s.db.WithContext(ctx).Model(&models.GameSession{}).
		Where("pin = ? AND status IN ?", pin, []models.SessionStatus{models.StatusLobby, models.StatusActive}).
		Count(&count).Error
	if err != nil {
		return false, errors.Wrap(err, "failed to check pin")
	}
	return count > 0, nil
}

func (s *GormStore) UpdateSession(ctx context.Context, session *models.GameSession) error {
	if err := s.db.WithContext(ctx).Save(session).Error; err != nil {
		return errors.Wrap(err, "failed to update game session")
	}
	return nil
}

func (s *GormStore) UpsertPlayer(ctx context.Context, player *models.Player) (*models.Player, bool, error) {
	db := s.db.WithContext(ctx)
	res := db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "game_session_id"}},
		DoNothing: true,
	}).Create(player)
	if res.Error != nil {
		return nil, false, errors.Wrap(res.Error, "failed to create player")
	}
	if res.RowsAffected == 1 {
		return player, true, nil
	}

	existing, err := s.GetPlayer(ctx, player.GameSessionID, player.UserID)
	if err != nil {
		return nil, false, err
	}
	return existing, false, nil
}

func (s *GormStore) GetPlayer(ctx context.Context, sessionID uint, userID string) (*models.Player, error) {
	var player models.Player
	err := s.db.WithContext(ctx).
		Where("game_session_id = ? AND user_id = ?", sessionID, userID).
		First(&player).Error
	if err != nil {
		return nil, notFound(err, "player")
	}
	return &player, nil
}

func (s *GormStore) ListPlayers(ctx context.Context, sessionID uint) ([]models.Player, error) {
	var players []models.Player
	err := s.db.WithContext(ctx).
		Where("game_session_id = ?", sessionID).
		Order("score DESC").
		Order("joined_at ASC").
		Order("id ASC").
		Find(&players).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list players")
	}
	return players, nil
}

func (s *GormStore) RecordResponse(ctx context.Context, response *models.PlayerResponse) (int, error) {
	var total int
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var existing int64
		if err := tx.Model(&models.PlayerResponse{}).
			Where("player_id = ? AND question_id = ?", response.PlayerID, response.QuestionID).
			Count(&existing).Error; err != nil {
			return err
		}
		if existing > 0 {
			return ErrDuplicate
		}

		if err := tx.Create(response).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return ErrDuplicate
			}
			return err
		}

		res := tx.Model(&models.Player{}).
			Where("id = ?", response.PlayerID).
			Update("score", gorm.Expr("score + ?", response.ScoreAwarded))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrNotFound
		}

		return tx.Model(&models.Player{}).
			Select("score").
			Where("id = ?", response.PlayerID).
			Scan(&total).Error
	})
	if err != nil {
		return 0, errors.Wrap(err, "failed to record response")
	}
	return total, nil
}

func (s *GormStore) ListResponses(ctx context.Context, sessionID, questionID uint) ([]models.PlayerResponse, error) {
	var responses []models.PlayerResponse
	err := s.db.WithContext(ctx).
		Joins("JOIN players ON players.id = player_responses.player_id").
		Where("players.game_session_id = ? AND player_responses.question_id = ?", sessionID, questionID).
		Order("player_responses.id ASC").
		Find(&responses).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to list responses")
	}
	return responses, nil
}
