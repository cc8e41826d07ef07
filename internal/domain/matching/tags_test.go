package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTag(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"Cloud Security", "cloud security"},
		{"cloud-security", "cloud security"},
		{"  CLOUD   SECURITY  ", "cloud security"},
		{"C++", "c"},
		{"", ""},
		{"---", ""},
	}

	for _, tc := range cases {
		assert.Equal(t, tc.want, NormalizeTag(tc.in), "input: %q", tc.in)
	}
}

func TestNewTagSet_DropsEmptyAndDeduplicates(t *testing.T) {
	set := NewTagSet([]string{"Linux", "linux", "", "  ", "LINUX"})
	assert.Equal(t, 1, set.Len())
	assert.True(t, set.Contains("Linux"))
}

func TestTagSet_OverlapCount(t *testing.T) {
	set := NewTagSet([]string{"Linux", "Cloud Security", "Forensics"})

	assert.Equal(t, 2, set.OverlapCount([]string{"linux", "cloud-security", "Firewall"}))
	assert.Equal(t, 0, set.OverlapCount(nil))
	assert.Equal(t, 0, TagSet{}.OverlapCount([]string{"linux"}))

	// Duplicates in the probe list count once.
	assert.Equal(t, 1, set.OverlapCount([]string{"linux", "Linux", "LINUX"}))
}
