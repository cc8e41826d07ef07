package http

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/cybermatch/cybermatch-hub/internal/application/command"
	"github.com/cybermatch/cybermatch-hub/internal/domain/block"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

type memBlockRepo struct {
	relations map[string]*block.Relation
}

func newMemBlockRepo() *memBlockRepo {
	return &memBlockRepo{relations: make(map[string]*block.Relation)}
}

func pairKey(a, b shared.PartyID) string {
	if b.String() < a.String() {
		a, b = b, a
	}
	return a.String() + "|" + b.String()
}

func (m *memBlockRepo) Insert(_ context.Context, relation *block.Relation) error {
	m.relations[pairKey(relation.BlockerID, relation.BlockedID)] = relation
	return nil
}

func (m *memBlockRepo) Delete(_ context.Context, blockerID, blockedID shared.PartyID) error {
	delete(m.relations, pairKey(blockerID, blockedID))
	return nil
}

func (m *memBlockRepo) ExistsBetween(_ context.Context, a, b shared.PartyID) (bool, error) {
	_, ok := m.relations[pairKey(a, b)]
	return ok, nil
}

func (m *memBlockRepo) ListInvolving(_ context.Context, partyID shared.PartyID) ([]*block.Relation, error) {
	out := make([]*block.Relation, 0)
	for _, r := range m.relations {
		if r.BlockerID == partyID || r.BlockedID == partyID {
			out = append(out, r)
		}
	}
	return out, nil
}

func newBlockTestServer() *Server {
	gate := block.NewGate(newMemBlockRepo())
	return NewServer(DefaultConfig(), Dependencies{
		SetBlockedHandler: command.NewSetBlockedHandler(gate, nil),
		BlockGate:         gate,
	})
}

func doRequest(s *Server, method, target string, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	rec := httptest.NewRecorder()
	s.httpServer.Handler.ServeHTTP(rec, req)
	return rec
}

func TestGetBlocked_SymmetricLifecycle(t *testing.T) {
	server := newBlockTestServer()

	// No block yet.
	rec := doRequest(server, http.MethodGet, "/api/v1/blocks/alice/bob", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"blocked":false`)

	rec = doRequest(server, http.MethodPost, "/api/v1/blocks",
		`{"blocker_id":"alice","blocked_id":"bob"}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	// The check is symmetric: both orders report the block.
	rec = doRequest(server, http.MethodGet, "/api/v1/blocks/alice/bob", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"blocked":true`)

	rec = doRequest(server, http.MethodGet, "/api/v1/blocks/bob/alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"blocked":true`)

	rec = doRequest(server, http.MethodDelete, "/api/v1/blocks/alice/bob", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = doRequest(server, http.MethodGet, "/api/v1/blocks/bob/alice", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"blocked":false`)
}

func TestGetBlocked_GateNotConfigured(t *testing.T) {
	server := NewServer(DefaultConfig(), Dependencies{})

	rec := doRequest(server, http.MethodGet, "/api/v1/blocks/alice/bob", "")
	assert.Equal(t, http.StatusNotImplemented, rec.Code)
}
