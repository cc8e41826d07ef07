// Package query contains read operations (CQRS - Queries).
package query

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/cybermatch/cybermatch-hub/internal/domain/matching"
	"github.com/cybermatch/cybermatch-hub/internal/domain/profile"
	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// GET MATCHES QUERY
// КЛЮЧЕВОЙ запрос проекта: ранжированная выдача кандидатов для ищущего.
// Скоринг консолидирован за одним интерфейсом Backend: локальный Ranker
// и удалённый RPC-бэкенд взаимозаменяемы, формула одна.
// ══════════════════════════════════════════════════════════════════════════════

// Backend computes the ranked match list for a seeker.
// Implementations: LocalBackend (in-process scoring) and the match RPC
// client in infrastructure/external/matchrpc.
type Backend interface {
	Matches(ctx context.Context, seeker *profile.Seeker, filter profile.CandidateFilter, opts matching.RankOptions) (matching.MatchResultList, error)
}

// MatchCache caches ranked results per seeker for the duration of one
// matching session. A nil cache disables caching.
type MatchCache interface {
	Get(ctx context.Context, seekerID shared.PartyID) (matching.MatchResultList, bool, error)
	Set(ctx context.Context, seekerID shared.PartyID, results matching.MatchResultList, ttl time.Duration) error
	Invalidate(ctx context.Context, seekerID shared.PartyID) error
}

// GetMatchesQuery содержит параметры запроса выдачи.
type GetMatchesQuery struct {
	// SeekerID - для кого ищем наставника.
	SeekerID string

	// Location - фильтр кандидатов по локации (пустая = все).
	Location string

	// NameQuery - поиск кандидатов по имени (пустой = все).
	NameQuery string

	// Threshold - переопределение порога (nil = значение из конфигурации).
	Threshold *float64

	// Limit - переопределение лимита выдачи (nil = значение из конфигурации).
	Limit *int

	// Weights - переопределение весов (nil = значения из конфигурации).
	Weights *matching.Weights

	// SkipCache заставляет пересчитать выдачу, минуя кеш.
	SkipCache bool
}

// Validate проверяет корректность параметров.
func (q *GetMatchesQuery) Validate() error {
	if q.SeekerID == "" {
		return errors.New("get_matches: seeker_id is required")
	}
	if q.Threshold != nil && (*q.Threshold < 0 || *q.Threshold > 100) {
		return shared.ErrInvalidThreshold
	}
	if q.Limit != nil && *q.Limit < 0 {
		return errors.New("get_matches: limit cannot be negative")
	}
	return nil
}

// MatchDTO - результат подбора для внешнего потребителя.
type MatchDTO struct {
	// CandidateID - ID кандидата.
	CandidateID string `json:"candidate_id"`

	// DisplayName - имя кандидата.
	DisplayName string `json:"display_name"`

	// Score - итоговая оценка (0-100).
	Score float64 `json:"score"`

	// SkillOverlap - количество совпавших навыков.
	SkillOverlap int `json:"skill_overlap"`

	// RoleOverlap - количество совпавших ролей.
	RoleOverlap int `json:"role_overlap"`

	// ExperienceGapAppropriate - уровень кандидата не ниже уровня ищущего.
	ExperienceGapAppropriate bool `json:"experience_gap_appropriate"`
}

// GetMatchesResult содержит выдачу запроса.
type GetMatchesResult struct {
	// SeekerID - для кого выдача.
	SeekerID string `json:"seeker_id"`

	// Matches - упорядоченная выдача.
	Matches []MatchDTO `json:"matches"`

	// FromCache - выдача взята из кеша.
	FromCache bool `json:"from_cache"`

	// ComputedAt - когда выдача посчитана.
	ComputedAt time.Time `json:"computed_at"`
}

// ══════════════════════════════════════════════════════════════════════════════
// HANDLER
// ══════════════════════════════════════════════════════════════════════════════

// GetMatchesHandler handles the GetMatchesQuery.
type GetMatchesHandler struct {
	profiles profile.Store
	backend  Backend
	cache    MatchCache
	defaults matching.RankOptions
	cacheTTL time.Duration
}

// GetMatchesHandlerConfig contains construction parameters.
type GetMatchesHandlerConfig struct {
	Profiles profile.Store
	Backend  Backend
	Cache    MatchCache // optional
	Defaults matching.RankOptions
	CacheTTL time.Duration
}

// NewGetMatchesHandler creates a new GetMatchesHandler.
func NewGetMatchesHandler(cfg GetMatchesHandlerConfig) *GetMatchesHandler {
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = 5 * time.Minute
	}
	return &GetMatchesHandler{
		profiles: cfg.Profiles,
		backend:  cfg.Backend,
		cache:    cfg.Cache,
		defaults: cfg.Defaults,
		cacheTTL: cfg.CacheTTL,
	}
}

// Handle executes the get matches query.
func (h *GetMatchesHandler) Handle(ctx context.Context, q GetMatchesQuery) (*GetMatchesResult, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	seekerID := shared.PartyID(q.SeekerID)

	// Cached results are only reused for the plain query shape;
	// per-query overrides always recompute.
	cacheable := q.Threshold == nil && q.Limit == nil && q.Weights == nil &&
		q.Location == "" && q.NameQuery == ""

	if h.cache != nil && cacheable && !q.SkipCache {
		if cached, ok, err := h.cache.Get(ctx, seekerID); err == nil && ok {
			return &GetMatchesResult{
				SeekerID:   q.SeekerID,
				Matches:    toMatchDTOs(cached),
				FromCache:  true,
				ComputedAt: time.Now().UTC(),
			}, nil
		}
	}

	seeker, err := h.profiles.GetSeeker(ctx, seekerID)
	if err != nil {
		return nil, fmt.Errorf("get_matches: seeker lookup: %w", err)
	}

	opts := h.defaults
	if q.Threshold != nil {
		opts.Threshold = *q.Threshold
	}
	if q.Limit != nil {
		opts.Limit = *q.Limit
	}
	if q.Weights != nil {
		opts.Weights = *q.Weights
	}

	filter := profile.CandidateFilter{
		Location:  q.Location,
		NameQuery: q.NameQuery,
	}

	results, err := h.backend.Matches(ctx, seeker, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("get_matches: %w", err)
	}

	if h.cache != nil && cacheable {
		_ = h.cache.Set(ctx, seekerID, results, h.cacheTTL)
	}

	return &GetMatchesResult{
		SeekerID:   q.SeekerID,
		Matches:    toMatchDTOs(results),
		ComputedAt: time.Now().UTC(),
	}, nil
}

// Ranked returns the raw ranked result list; the match queue consumes it.
func (h *GetMatchesHandler) Ranked(ctx context.Context, q GetMatchesQuery) (matching.MatchResultList, error) {
	if err := q.Validate(); err != nil {
		return nil, err
	}

	seeker, err := h.profiles.GetSeeker(ctx, shared.PartyID(q.SeekerID))
	if err != nil {
		return nil, fmt.Errorf("get_matches: seeker lookup: %w", err)
	}

	opts := h.defaults
	if q.Threshold != nil {
		opts.Threshold = *q.Threshold
	}
	if q.Limit != nil {
		opts.Limit = *q.Limit
	}
	if q.Weights != nil {
		opts.Weights = *q.Weights
	}

	return h.backend.Matches(ctx, seeker, profile.CandidateFilter{
		Location:  q.Location,
		NameQuery: q.NameQuery,
	}, opts)
}

func toMatchDTOs(results matching.MatchResultList) []MatchDTO {
	out := make([]MatchDTO, 0, len(results))
	for _, r := range results {
		out = append(out, MatchDTO{
			CandidateID:              r.CandidateID.String(),
			DisplayName:              r.DisplayName,
			Score:                    r.Score.Float64(),
			SkillOverlap:             r.SkillOverlap,
			RoleOverlap:              r.RoleOverlap,
			ExperienceGapAppropriate: r.ExperienceGapAppropriate,
		})
	}
	return out
}

// ══════════════════════════════════════════════════════════════════════════════
// LOCAL BACKEND
// ══════════════════════════════════════════════════════════════════════════════

// LocalBackend computes matches in-process: it fetches eligible candidate
// snapshots from the profile store and runs the domain Ranker over them.
type LocalBackend struct {
	profiles profile.Store
	ranker   *matching.Ranker
}

// NewLocalBackend creates a LocalBackend.
func NewLocalBackend(profiles profile.Store, ranker *matching.Ranker) *LocalBackend {
	return &LocalBackend{
		profiles: profiles,
		ranker:   ranker,
	}
}

// Matches implements Backend.
func (b *LocalBackend) Matches(ctx context.Context, seeker *profile.Seeker, filter profile.CandidateFilter, opts matching.RankOptions) (matching.MatchResultList, error) {
	candidates, err := b.profiles.ListEligibleCandidates(ctx, filter)
	if err != nil {
		return nil, fmt.Errorf("local backend: list candidates: %w", err)
	}

	return b.ranker.Rank(ctx, seeker, candidates, opts)
}
