package gateway

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/atinyakov/LearnLingo/internal/models"
)

type memSessionStore struct {
	token    string
	identity *models.Identity
	err      error
}

func (m *memSessionStore) Save(token string, identity models.Identity) error {
	m.token, m.identity = token, &identity
	return m.err
}

func (m *memSessionStore) Clear() error {
	m.token, m.identity = "", nil
	return m.err
}

func TestSession_SubscribeFiresImmediatelyAndOnChange(t *testing.T) {
	s := NewSession(nil, nil)

	var seen []*models.Identity
	dispose := s.Subscribe(func(id *models.Identity) { seen = append(seen, id) })

	s.Set("tok", models.Identity{ID: "u1"})
	s.Clear()
	s.Clear()
	dispose()
	dispose()
	s.Set("tok2", models.Identity{ID: "u2"})

	if assert.Len(t, seen, 3) {
		assert.Nil(t, seen[0])
		assert.Equal(t, "u1", seen[1].ID)
		assert.Nil(t, seen[2])
	}
}

func TestSession_Persists(t *testing.T) {
	store := &memSessionStore{}
	s := NewSession(store, nil)

	s.Set("tok", models.Identity{ID: "u1"})
	assert.Equal(t, "tok", store.token)

	s.Clear()
	assert.Nil(t, store.identity)

	s.Restore("old", models.Identity{ID: "u9"})
	assert.Equal(t, "", store.token, "restore must not write back")
	assert.Equal(t, "old", s.Token())
}

func TestSession_PersistFailureIsNotFatal(t *testing.T) {
	s := NewSession(&memSessionStore{err: errors.New("disk full")}, nil)
	s.Set("tok", models.Identity{ID: "u1"})
	assert.Equal(t, "u1", s.Identity().ID)
}

func TestSession_IdentityIsACopy(t *testing.T) {
	s := NewSession(nil, nil)
	s.Set("tok", models.Identity{ID: "u1"})
	s.Identity().ID = "mutated"
	assert.Equal(t, "u1", s.Identity().ID)
}
