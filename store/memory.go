package store

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/pkg/errors"

	"quizzit/models"
)

// MemoryStore keeps everything in process. It backs tests and local demos.
type MemoryStore struct {
	mu        sync.Mutex
	nextID    uint
	forms     map[uint]*models.Form
	sessions  map[uint]*models.GameSession
	players   map[uint]*models.Player
	responses []models.PlayerResponse
}

var _ Store = (*MemoryStore)(nil)

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		forms:    make(map[uint]*models.Form),
		sessions: make(map[uint]*models.GameSession),
		players:  make(map[uint]*models.Player),
	}
}

func (m *MemoryStore) id() uint {
	m.nextID++
	return m.nextID
}

func copyForm(f *models.Form) *models.Form {
	out := *f
	out.Questions = make([]models.Question, len(f.Questions))
	for i, q := range f.Questions {
		out.Questions[i] = copyQuestion(q)
	}
	return &out
}

func copyQuestion(q models.Question) models.Question {
	q.Options = append([]models.Option(nil), q.Options...)
	return q
}

func (m *MemoryStore) CreateForm(_ context.Context, form *models.Form) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	form.ID = m.id()
	form.CreatedAt, form.UpdatedAt = now, now
	for i := range form.Questions {
		q := &form.Questions[i]
		q.ID = m.id()
		q.FormID = form.ID
		for j := range q.Options {
			q.Options[j].ID = m.id()
			q.Options[j].QuestionID = q.ID
		}
		sort.SliceStable(q.Options, func(a, b int) bool { return q.Options[a].Order < q.Options[b].Order })
	}
	sort.SliceStable(form.Questions, func(a, b int) bool { return form.Questions[a].Order < form.Questions[b].Order })
	m.forms[form.ID] = copyForm(form)
	return nil
}

func (m *MemoryStore) GetForm(_ context.Context, formID uint) (*models.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	f, ok := m.forms[formID]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "form")
	}
	return copyForm(f), nil
}

func (m *MemoryStore) ListForms(_ context.Context, ownerID string) ([]models.Form, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var forms []models.Form
	for _, f := range m.forms {
		if f.OwnerID == ownerID {
			forms = append(forms, *copyForm(f))
		}
	}
	sort.Slice(forms, func(i, j int) bool { return forms[i].ID > forms[j].ID })
	return forms, nil
}

func (m *MemoryStore) DeleteForm(_ context.Context, formID uint) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.forms[formID]; !ok {
		return errors.Wrap(ErrNotFound, "form")
	}
	delete(m.forms, formID)
	return nil
}

func (m *MemoryStore) GetQuestion(_ context.Context, formID, questionID uint) (*models.Question, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if f, ok := m.forms[formID]; ok {
		for _, q := range f.Questions {
			if q.ID == questionID {
				cp := copyQuestion(q)
				return &cp, nil
			}
		}
	}
	return nil, errors.Wrap(ErrNotFound, "question")
}

func (m *MemoryStore) CreateSession(_ context.Context, session *models.GameSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := time.Now()
	session.ID = m.id()
	session.CreatedAt, session.UpdatedAt = now, now
	if session.Status == "" {
		session.Status = models.StatusLobby
	}
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *MemoryStore) GetSession(_ context.Context, sessionID uint) (*models.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.sessions[sessionID]
	if !ok {
		return nil, errors.Wrap(ErrNotFound, "game session")
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) liveByPin(pin string) *models.GameSession {
	var found *models.GameSession
	for _, s := range m.sessions {
		if s.Pin == pin && s.Status.Live() && (found == nil || s.ID > found.ID) {
			found = s
		}
	}
	return found
}

func (m *MemoryStore) GetSessionByPin(_ context.Context, pin string) (*models.GameSession, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s := m.liveByPin(pin)
	if s == nil {
		return nil, errors.Wrap(ErrNotFound, "game session")
	}
	cp := *s
	return &cp, nil
}

func (m *MemoryStore) PinInUse(_ context.Context, pin string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.liveByPin(pin) != nil, nil
}

func (m *MemoryStore) UpdateSession(_ context.Context, session *models.GameSession) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.sessions[session.ID]; !ok {
		return errors.Wrap(ErrNotFound, "game session")
	}
	session.UpdatedAt = time.Now()
	cp := *session
	m.sessions[session.ID] = &cp
	return nil
}

func (m *MemoryStore) findPlayer(sessionID uint, userID string) *models.Player {
	for _, p := range m.players {
		if p.GameSessionID == sessionID && p.UserID == userID {
			return p
		}
	}
	return nil
}

func (m *MemoryStore) UpsertPlayer(_ context.Context, player *models.Player) (*models.Player, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if existing := m.findPlayer(player.GameSessionID, player.UserID); existing != nil {
		cp := *existing
		return &cp, false, nil
	}
	now := time.Now()
	player.ID = m.id()
	player.CreatedAt, player.UpdatedAt = now, now
	cp := *player
	m.players[player.ID] = &cp
	return player, true, nil
}

func (m *MemoryStore) GetPlayer(_ context.Context, sessionID uint, userID string) (*models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p := m.findPlayer(sessionID, userID)
	if p == nil {
		return nil, errors.Wrap(ErrNotFound, "player")
	}
	cp := *p
	return &cp, nil
}

func (m *MemoryStore) ListPlayers(_ context.Context, sessionID uint) ([]models.Player, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	players := []models.Player{}
	for _, p := range m.players {
		if p.GameSessionID == sessionID {
			players = append(players, *p)
		}
	}
	SortLeaderboard(players)
	return players, nil
}

func (m *MemoryStore) RecordResponse(_ context.Context, response *models.PlayerResponse) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	p, ok := m.players[response.PlayerID]
	if !ok {
		return 0, errors.Wrap(ErrNotFound, "failed to record response")
	}
	for _, r := range m.responses {
		if r.PlayerID == response.PlayerID && r.QuestionID == response.QuestionID {
			return 0, errors.Wrap(ErrDuplicate, "failed to record response")
		}
	}
	response.ID = m.id()
	response.CreatedAt = time.Now()
	m.responses = append(m.responses, *response)
	p.Score += response.ScoreAwarded
	return p.Score, nil
}

func (m *MemoryStore) ListResponses(_ context.Context, sessionID, questionID uint) ([]models.PlayerResponse, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	var out []models.PlayerResponse
	for _, r := range m.responses {
		p, ok := m.players[r.PlayerID]
		if ok && p.GameSessionID == sessionID && r.QuestionID == questionID {
			out = append(out, r)
		}
	}
	return out, nil
}

// SortLeaderboard orders players by score desc, breaking ties by join order.
func SortLeaderboard(players []models.Player) {
	sort.SliceStable(players, func(i, j int) bool {
		a, b := players[i], players[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if !a.JoinedAt.Equal(b.JoinedAt) {
			return a.JoinedAt.Before(b.JoinedAt)
		}
		return a.ID < b.ID
	})
}
