package domain

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestUsecase_IsConflictResolved(t *testing.T) {
	uc := New(zap.NewNop().Sugar(), context.Background(), &repoMock{}, time.Second)

	cases := []struct {
		name     string
		body     string
		conflict bool
	}{
		{"clean text", "# Title\n\nplain prose, no markers", false},
		{"start marker", "intro\n<<<<<<< ours\ntheir text", true},
		{"separator line", "a\n=======\nb", true},
		{"end marker", "a\n>>>>>>> theirs\nb", true},
		{"marker mid line ignored", "the arrows <<<<<<< live here\nand ======= too", false},
		{"indented marker ignored", "  <<<<<<< not at line start", false},
		{"short run ignored", "<<<<<\n=====\n>>>>>", false},
		{"separator with suffix ignored", "=======x", false},
		{"empty body", "", false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			check, err := uc.IsConflictResolved(context.Background(), "guide.md", tc.body)
			require.NoError(t, err)
			require.Equal(t, "guide.md", check.Filename)
			require.Equal(t, tc.conflict, check.IsConflict)
		})
	}
}

func TestLineNormalizer(t *testing.T) {
	n := lineNormalizer{}

	require.Equal(t, "a\nb", n.Normalize("a\r\nb"))
	require.Equal(t, "a\nb", n.Normalize("a  \nb\t"))
	require.Equal(t, "", n.Normalize(""))
	require.Equal(t, "unchanged", n.Normalize("unchanged"))
}
