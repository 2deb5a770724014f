package locator_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xhs-monitor/internal/apperrors"
	"xhs-monitor/internal/locator"
)

const discoveryURL = "https://www.xiaohongshu.com/discovery/item/6851829e000000002102cb05?app_platform=android&xsec_source=app_share&type=normal&xsec_token=CBdXOVVtUIw-vYe_hwvxF7T9SFM2KAdwiE2MWDtPM_1kM%3D&author_share=1"

func TestNormalizeDiscoveryURL(t *testing.T) {
	loc, err := locator.Normalize(discoveryURL)
	require.NoError(t, err)

	assert.Equal(t, "6851829e000000002102cb05", loc.NoteID)
	assert.Equal(t, "CBdXOVVtUIw-vYe_hwvxF7T9SFM2KAdwiE2MWDtPM_1kM=", loc.Token)
	assert.Equal(t, "app_share", loc.Source)
	assert.Equal(t,
		"https://www.xiaohongshu.com/explore/6851829e000000002102cb05?xsec_source=app_share&type=normal&xsec_token=CBdXOVVtUIw-vYe_hwvxF7T9SFM2KAdwiE2MWDtPM_1kM%3D",
		loc.CanonicalURL,
	)
}

func TestNormalizeExploreURL(t *testing.T) {
	loc, err := locator.Normalize("https://www.xiaohongshu.com/explore/67b83c8b000000000602b5dc?xsec_token=ABMliQ%3D&xsec_source=pc_feed&share_id=abc")
	require.NoError(t, err)

	assert.Equal(t, "67b83c8b000000000602b5dc", loc.NoteID)
	assert.Equal(t, "ABMliQ=", loc.Token)
	assert.Equal(t, "pc_feed", loc.Source)
	assert.NotContains(t, loc.CanonicalURL, "share_id")
}

func TestNormalizeIsIdempotent(t *testing.T) {
	inputs := []string{
		discoveryURL,
		"https://www.xiaohongshu.com/explore/67b83c8b000000000602b5dc?xsec_token=tok&xsec_source=pc_feed",
		"https://www.xiaohongshu.com/explore/67b83c8b000000000602b5dc/",
		"https://www.xiaohongshu.com/discovery/item/abc",
	}

	for _, in := range inputs {
		first, err := locator.Normalize(in)
		require.NoError(t, err, in)

		second, err := locator.Normalize(first.CanonicalURL)
		require.NoError(t, err, in)

		assert.Equal(t, first, second, in)
	}
}

func TestNormalizeRejectsUnknownShapes(t *testing.T) {
	inputs := []string{
		"https://www.xiaohongshu.com/user/profile/5f1234",
		"https://www.xiaohongshu.com/explore",
		"https://www.xiaohongshu.com/discovery/item/",
		"https://www.xiaohongshu.com/discovery/abc",
		"",
		"://bad",
	}

	for _, in := range inputs {
		_, err := locator.Normalize(in)
		require.Error(t, err, in)
		assert.ErrorIs(t, err, apperrors.ErrInvalidURL, in)
	}
}

func TestCustomBaseURL(t *testing.T) {
	loc, err := locator.New("http://localhost:9000/").Normalize("https://www.xiaohongshu.com/explore/abc?type=video")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:9000/explore/abc?type=video", loc.CanonicalURL)
}

func TestExploreURLRoundTrips(t *testing.T) {
	l := locator.New("")

	u := l.ExploreURL("n1", "ABC=", "pc_feed")
	assert.Equal(t, "https://www.xiaohongshu.com/explore/n1?xsec_source=pc_feed&xsec_token=ABC%3D", u)

	loc, err := l.Normalize(u)
	require.NoError(t, err)
	assert.Equal(t, "n1", loc.NoteID)
	assert.Equal(t, "ABC=", loc.Token)
	assert.Equal(t, "pc_feed", loc.Source)
	assert.Equal(t, u, loc.CanonicalURL)

	assert.Equal(t, "https://www.xiaohongshu.com/explore/n2", l.ExploreURL("n2", "", ""))
}
