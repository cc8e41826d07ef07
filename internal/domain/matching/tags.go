package matching

import (
	"regexp"
	"strings"
)

// ══════════════════════════════════════════════════════════════════════════════
// TAG NORMALIZATION
// Теги навыков и ролей приходят в свободной форме ("Cloud Security",
// "cloud-security", " CLOUD  SECURITY "). Перед сравнением приводим их
// к каноническому виду, чтобы пересечение не зависело от написания.
// ══════════════════════════════════════════════════════════════════════════════

var (
	reNonWord = regexp.MustCompile(`[^\p{L}\p{N}]+`)
	reSpaces  = regexp.MustCompile(`\s+`)
)

// NormalizeTag приводит тег к каноническому виду для сравнения:
// - нижний регистр
// - все не-буквенно-цифровые символы заменяются пробелами
// - пробелы схлопываются
func NormalizeTag(s string) string {
	s = strings.ToLower(s)
	s = reNonWord.ReplaceAllString(s, " ")
	s = reSpaces.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// TagSet - множество нормализованных тегов.
type TagSet map[string]struct{}

// NewTagSet строит множество из списка тегов в свободной форме.
// Пустые теги отбрасываются; nil-список даёт пустое множество.
func NewTagSet(tags []string) TagSet {
	set := make(TagSet, len(tags))
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" {
			continue
		}
		set[n] = struct{}{}
	}
	return set
}

// Contains проверяет наличие тега (нормализует аргумент).
func (s TagSet) Contains(tag string) bool {
	_, ok := s[NormalizeTag(tag)]
	return ok
}

// Len возвращает размер множества.
func (s TagSet) Len() int {
	return len(s)
}

// IsEmpty возвращает true для пустого множества.
func (s TagSet) IsEmpty() bool {
	return len(s) == 0
}

// OverlapCount возвращает количество тегов из списка, присутствующих
// в множестве. Дубликаты в списке считаются один раз.
func (s TagSet) OverlapCount(tags []string) int {
	if len(s) == 0 || len(tags) == 0 {
		return 0
	}
	seen := make(map[string]struct{}, len(tags))
	count := 0
	for _, t := range tags {
		n := NormalizeTag(t)
		if n == "" {
			continue
		}
		if _, dup := seen[n]; dup {
			continue
		}
		seen[n] = struct{}{}
		if _, ok := s[n]; ok {
			count++
		}
	}
	return count
}
