// Package profile содержит доменную модель профилей участников подбора.
// Профили живут во внешнем хранилище (Supabase/PostgreSQL); движок подбора
// работает с их неизменяемыми снимками, провалидированными на границе.
package profile

import (
	"strings"
	"time"

	"github.com/cybermatch/cybermatch-hub/internal/domain/shared"
)

// ══════════════════════════════════════════════════════════════════════════════
// VALUE OBJECTS
// ══════════════════════════════════════════════════════════════════════════════

// ExperienceLevel представляет порядковый уровень опыта.
type ExperienceLevel int

const (
	// ExperienceBeginner - начинающий.
	ExperienceBeginner ExperienceLevel = iota + 1

	// ExperienceIntermediate - средний уровень.
	ExperienceIntermediate

	// ExperienceAdvanced - продвинутый.
	ExperienceAdvanced
)

// IsValid проверяет корректность уровня.
func (e ExperienceLevel) IsValid() bool {
	return e >= ExperienceBeginner && e <= ExperienceAdvanced
}

// AtLeast возвращает true, если уровень не ниже заданного.
func (e ExperienceLevel) AtLeast(other ExperienceLevel) bool {
	return e >= other
}

// String возвращает строковое представление.
func (e ExperienceLevel) String() string {
	switch e {
	case ExperienceBeginner:
		return "beginner"
	case ExperienceIntermediate:
		return "intermediate"
	case ExperienceAdvanced:
		return "advanced"
	default:
		return "unknown"
	}
}

// ParseExperienceLevel разбирает уровень из строки хранилища.
// Неизвестные значения трактуются как beginner - это граница ингестии,
// а не место для ошибок.
func ParseExperienceLevel(s string) ExperienceLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "advanced", "expert", "senior":
		return ExperienceAdvanced
	case "intermediate", "middle":
		return ExperienceIntermediate
	default:
		return ExperienceBeginner
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY: SEEKER
// Ищущий наставника (mentee/student).
// ══════════════════════════════════════════════════════════════════════════════

// Seeker представляет профиль ищущего наставника.
type Seeker struct {
	// ID - уникальный идентификатор (UUID).
	ID shared.PartyID

	// DisplayName - имя для отображения.
	DisplayName string

	// DesiredSkills - навыки, которые хочет освоить.
	DesiredSkills []string

	// TargetRoles - целевые роли (например, "Security Analyst").
	TargetRoles []string

	// Experience - уровень опыта.
	Experience ExperienceLevel

	// Location - локация (опционально).
	Location string

	// LearningGoal - цель обучения в свободной форме (опционально).
	LearningGoal string

	// CreatedAt - когда профиль создан.
	CreatedAt time.Time

	// UpdatedAt - когда профиль обновлён.
	UpdatedAt time.Time
}

// NewSeekerParams параметры для создания профиля ищущего.
type NewSeekerParams struct {
	ID            string
	DisplayName   string
	DesiredSkills []string
	TargetRoles   []string
	Experience    ExperienceLevel
	Location      string
	LearningGoal  string
}

// NewSeeker создаёт профиль ищущего с валидацией на границе.
// Отсутствующие наборы атрибутов трактуются как пустые, не как ошибка.
func NewSeeker(params NewSeekerParams) (*Seeker, error) {
	id, err := shared.NewPartyID(params.ID)
	if err != nil {
		return nil, err
	}

	exp := params.Experience
	if !exp.IsValid() {
		exp = ExperienceBeginner
	}

	now := time.Now().UTC()

	return &Seeker{
		ID:            id,
		DisplayName:   strings.TrimSpace(params.DisplayName),
		DesiredSkills: normalizeTagList(params.DesiredSkills),
		TargetRoles:   normalizeTagList(params.TargetRoles),
		Experience:    exp,
		Location:      strings.TrimSpace(params.Location),
		LearningGoal:  strings.TrimSpace(params.LearningGoal),
		CreatedAt:     now,
		UpdatedAt:     now,
	}, nil
}

// HasPreferences возвращает true, если ищущий указал хотя бы один
// желаемый навык или целевую роль.
func (s *Seeker) HasPreferences() bool {
	return len(s.DesiredSkills) > 0 || len(s.TargetRoles) > 0
}

// ══════════════════════════════════════════════════════════════════════════════
// ENTITY: CANDIDATE
// Кандидат в наставники (mentor/tutor).
// ══════════════════════════════════════════════════════════════════════════════

// Candidate представляет профиль кандидата в наставники.
// Движок подбора рассматривает его как неизменяемый снимок на момент вызова.
type Candidate struct {
	// ID - уникальный идентификатор (UUID).
	ID shared.PartyID

	// DisplayName - имя для отображения.
	DisplayName string

	// Skills - навыки кандидата.
	Skills []string

	// Roles - роли кандидата.
	Roles []string

	// Experience - уровень опыта.
	Experience ExperienceLevel

	// Location - локация (опционально).
	Location string

	// HourlyRate - почасовая ставка (0 = не указана).
	HourlyRate float64

	// WeeklyHours - доступность в часах в неделю (0 = не указана).
	WeeklyHours int

	// Verified - прошёл ли верификацию.
	Verified bool

	// Active - активен ли профиль.
	Active bool

	// CreatedAt - когда профиль создан.
	CreatedAt time.Time

	// UpdatedAt - когда профиль обновлён.
	UpdatedAt time.Time
}

// NewCandidateParams параметры для создания профиля кандидата.
type NewCandidateParams struct {
	ID          string
	DisplayName string
	Skills      []string
	Roles       []string
	Experience  ExperienceLevel
	Location    string
	HourlyRate  float64
	WeeklyHours int
	Verified    bool
	Active      bool
}

// NewCandidate создаёт профиль кандидата с валидацией на границе.
func NewCandidate(params NewCandidateParams) (*Candidate, error) {
	id, err := shared.NewPartyID(params.ID)
	if err != nil {
		return nil, err
	}

	exp := params.Experience
	if !exp.IsValid() {
		exp = ExperienceBeginner
	}

	now := time.Now().UTC()

	return &Candidate{
		ID:          id,
		DisplayName: strings.TrimSpace(params.DisplayName),
		Skills:      normalizeTagList(params.Skills),
		Roles:       normalizeTagList(params.Roles),
		Experience:  exp,
		Location:    strings.TrimSpace(params.Location),
		HourlyRate:  params.HourlyRate,
		WeeklyHours: params.WeeklyHours,
		Verified:    params.Verified,
		Active:      params.Active,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}

// Eligible возвращает true, если кандидат допустим как вход ранжирования:
// только верифицированные и активные профили участвуют в подборе.
func (c *Candidate) Eligible() bool {
	return c.Verified && c.Active
}

// normalizeTagList убирает пустые строки и обрезает пробелы.
// Регистровая нормализация для сравнения живёт в пакете matching;
// здесь сохраняем исходное написание для отображения.
func normalizeTagList(tags []string) []string {
	out := make([]string, 0, len(tags))
	for _, t := range tags {
		t = strings.TrimSpace(t)
		if t == "" {
			continue
		}
		out = append(out, t)
	}
	return out
}
