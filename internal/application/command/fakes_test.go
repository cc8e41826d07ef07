package command

import (
	"context"
	"strings"
	"sync"

	"github.com/cybermatch/cybermatch-hub/internal/domain/block"
	"github.com/cybermatch/cybermatch-hub/internal/domain/mentorship"
	"github.com/cybermatch/cybermatch-hub/internal/domain/profile"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// In-memory collaborators shared by the command handler tests.

type memProfiles struct {
	seekers    map[shared.PartyID]*profile.Seeker
	candidates map[shared.PartyID]*profile.Candidate
}

func newMemProfiles() *memProfiles {
	return &memProfiles{
		seekers:    make(map[shared.PartyID]*profile.Seeker),
		candidates: make(map[shared.PartyID]*profile.Candidate),
	}
}

func (m *memProfiles) addSeeker(s *profile.Seeker)    { m.seekers[s.ID] = s }
func (m *memProfiles) addCandidate(c *profile.Candidate) { m.candidates[c.ID] = c }

func (m *memProfiles) GetSeeker(_ context.Context, id shared.PartyID) (*profile.Seeker, error) {
	s, ok := m.seekers[id]
	if !ok {
		return nil, shared.ErrSeekerNotFound
	}
	return s, nil
}

func (m *memProfiles) GetCandidate(_ context.Context, id shared.PartyID) (*profile.Candidate, error) {
	c, ok := m.candidates[id]
	if !ok {
		return nil, shared.ErrCandidateNotFound
	}
	return c, nil
}

func (m *memProfiles) ListEligibleCandidates(_ context.Context, filter profile.CandidateFilter) ([]*profile.Candidate, error) {
	out := make([]*profile.Candidate, 0, len(m.candidates))
	for _, c := range m.candidates {
		if !c.Eligible() {
			continue
		}
		if filter.Location != "" && c.Location != filter.Location {
			continue
		}
		if filter.NameQuery != "" && !strings.Contains(strings.ToLower(c.DisplayName), strings.ToLower(filter.NameQuery)) {
			continue
		}
		out = append(out, c)
	}
	return out, nil
}

type memRequests struct {
	mu       sync.Mutex
	byID     map[string]*mentorship.Request
	createCt int
}

func newMemRequests() *memRequests {
	return &memRequests{byID: make(map[string]*mentorship.Request)}
}

func (m *memRequests) Create(_ context.Context, r *mentorship.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, existing := range m.byID {
		if existing.SeekerID == r.SeekerID && existing.CandidateID == r.CandidateID && existing.IsPending() {
			return shared.ErrDuplicateRequest
		}
	}
	m.byID[r.ID] = r.Clone()
	m.createCt++
	return nil
}

func (m *memRequests) GetByID(_ context.Context, id string) (*mentorship.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	r, ok := m.byID[id]
	if !ok {
		return nil, shared.ErrRequestNotFound
	}
	return r.Clone(), nil
}

func (m *memRequests) Update(_ context.Context, r *mentorship.Request) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[r.ID]; !ok {
		return shared.ErrRequestNotFound
	}
	m.byID[r.ID] = r.Clone()
	return nil
}

func (m *memRequests) FindPendingByPair(_ context.Context, seekerID, candidateID shared.PartyID) (*mentorship.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, r := range m.byID {
		if r.SeekerID == seekerID && r.CandidateID == candidateID && r.IsPending() {
			return r.Clone(), nil
		}
	}
	return nil, shared.ErrRequestNotFound
}

func (m *memRequests) ListForParty(_ context.Context, partyID shared.PartyID, role mentorship.Role, opts mentorship.ListOptions) ([]*mentorship.Request, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]*mentorship.Request, 0)
	for _, r := range m.byID {
		if role == mentorship.RoleSeeker && r.SeekerID != partyID {
			continue
		}
		if role == mentorship.RoleCandidate && r.CandidateID != partyID {
			continue
		}
		if opts.Status != "" && r.Status != opts.Status {
			continue
		}
		out = append(out, r.Clone())
	}
	return out, nil
}

func (m *memRequests) CountPendingForCandidate(_ context.Context, candidateID shared.PartyID) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	count := 0
	for _, r := range m.byID {
		if r.CandidateID == candidateID && r.IsPending() {
			count++
		}
	}
	return count, nil
}

type memBlocks struct {
	relations map[string]*block.Relation
}

func newMemBlocks() *memBlocks {
	return &memBlocks{relations: make(map[string]*block.Relation)}
}

func (m *memBlocks) key(blockerID, blockedID shared.PartyID) string {
	return blockerID.String() + "→" + blockedID.String()
}

func (m *memBlocks) Insert(_ context.Context, r *block.Relation) error {
	m.relations[m.key(r.BlockerID, r.BlockedID)] = r
	return nil
}

func (m *memBlocks) Delete(_ context.Context, blockerID, blockedID shared.PartyID) error {
	delete(m.relations, m.key(blockerID, blockedID))
	return nil
}

func (m *memBlocks) ExistsBetween(_ context.Context, a, b shared.PartyID) (bool, error) {
	_, fwd := m.relations[m.key(a, b)]
	_, rev := m.relations[m.key(b, a)]
	return fwd || rev, nil
}

func (m *memBlocks) ListInvolving(_ context.Context, partyID shared.PartyID) ([]*block.Relation, error) {
	out := make([]*block.Relation, 0)
	for _, r := range m.relations {
		if r.Involves(partyID) {
			out = append(out, r)
		}
	}
	return out, nil
}

type capturingPublisher struct {
	events []shared.Event
}

func (p *capturingPublisher) Publish(event shared.Event) error {
	p.events = append(p.events, event)
	return nil
}

func mustSeeker(id string) *profile.Seeker {
	s, err := profile.NewSeeker(profile.NewSeekerParams{
		ID:            id,
		DisplayName:   "Seeker " + id,
		DesiredSkills: []string{"Linux", "Networking"},
		TargetRoles:   []string{"SOC Analyst"},
		Experience:    profile.ExperienceBeginner,
	})
	if err != nil {
		panic(err)
	}
	return s
}

func mustCandidate(id string, verified, active bool) *profile.Candidate {
	c, err := profile.NewCandidate(profile.NewCandidateParams{
		ID:          id,
		DisplayName: "Candidate " + id,
		Skills:      []string{"Linux", "Networking", "Cloud Security"},
		Roles:       []string{"SOC Analyst", "Pentester"},
		Experience:  profile.ExperienceAdvanced,
		Verified:    verified,
		Active:      active,
	})
	if err != nil {
		panic(err)
	}
	return c
}
