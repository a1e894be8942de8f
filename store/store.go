package store

import (
	"context"

	"github.com/pkg/errors"

	"quizzit/models"
)

var (
	ErrNotFound  = errors.New("record not found")
	ErrDuplicate = errors.New("duplicate record")
)

// Store is the persistence boundary for forms and live game sessions.
type Store interface {
	CreateForm(ctx context.Context, form *models.Form) error
	GetForm(ctx context.Context, formID uint) (*models.Form, error)
	ListForms(ctx context.Context, ownerID string) ([]models.Form, error)
	DeleteForm(ctx context.Context, formID uint) error
	GetQuestion(ctx context.Context, formID, questionID uint) (*models.Question, error)

	CreateSession(ctx context.Context, session *models.GameSession) error
	GetSession(ctx context.Context, sessionID uint) (*models.GameSession, error)
	// GetSessionByPin only matches sessions that are still live.
	GetSessionByPin(ctx context.Context, pin string) (*models.GameSession, error)
	PinInUse(ctx context.Context, pin string) (bool, error)
	UpdateSession(ctx context.Context, session *models.GameSession) error

	// UpsertPlayer inserts the player unless one already exists for
	// (UserID, GameSessionID). It returns the stored player and whether it
	// was created by this call.
	UpsertPlayer(ctx context.Context, player *models.Player) (*models.Player, bool, error)
	GetPlayer(ctx context.Context, sessionID uint, userID string) (*models.Player, error)
	// ListPlayers returns players by score desc, then join order.
	ListPlayers(ctx context.Context, sessionID uint) ([]models.Player, error)

	// RecordResponse appends the response and adds its ScoreAwarded to the
	// player's score in one transaction, returning the new total.
	RecordResponse(ctx context.Context, response *models.PlayerResponse) (int, error)
	ListResponses(ctx context.Context, sessionID, questionID uint) ([]models.PlayerResponse, error)
}

func IsNotFound(err error) bool {
	return errors.Cause(err) == ErrNotFound
}

func IsDuplicate(err error) bool {
	return errors.Cause(err) == ErrDuplicate
}
