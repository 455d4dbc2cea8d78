package content

import (
	"bytes"
	"strings"
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/require"
)

func TestLoadEmbeddedPages(t *testing.T) {
	lib, err := Load("FlowCoach")
	require.NoError(t, err)
	require.Equal(t, []string{"community", "help", "pricing-faq", "terms"}, lib.Slugs())
}

func TestTermsSections(t *testing.T) {
	lib, err := Load("FlowCoach")
	require.NoError(t, err)

	terms, err := lib.Page("terms")
	require.NoError(t, err)
	require.Len(t, terms.Sections, 12)
	require.Equal(t, "1. Acceptance of Terms", terms.Sections[0].Title)
	require.Equal(t, "12. Contact Us", terms.Sections[11].Title)

	// Plain strings decode as paragraphs, mappings keep their subtitle and list.
	first := terms.Sections[0].Content[0]
	require.Empty(t, first.Subtitle)
	require.Contains(t, first.Text, "Terms of Service")

	refunds := terms.Sections[2].Content[1]
	require.Equal(t, "3.2 Cancellation", refunds.Subtitle)
	require.Len(t, refunds.List, 5)
}

func TestHelpCommunityAndFAQ(t *testing.T) {
	lib, err := Load("FlowCoach")
	require.NoError(t, err)

	help, err := lib.Page("HELP")
	require.NoError(t, err)
	require.Len(t, help.Categories, 4)
	require.Equal(t, "Getting Started", help.Categories[0].Title)
	require.Len(t, help.QuickLinks, 3)

	community, err := lib.Page("community")
	require.NoError(t, err)
	require.Len(t, community.Features, 6)
	require.Len(t, community.Channels, 3)

	faq, err := lib.Page("pricing-faq")
	require.NoError(t, err)
	require.Len(t, faq.FAQs, 6)
	require.Equal(t, "How does the 7-day trial work?", faq.FAQs[0].Question)
}

func TestPageNotFound(t *testing.T) {
	lib, err := Load("FlowCoach")
	require.NoError(t, err)

	_, err = lib.Page("privacy")
	require.ErrorIs(t, err, ErrPageNotFound)

	err = lib.Render(&bytes.Buffer{}, "privacy", nil, nil)
	require.ErrorIs(t, err, ErrPageNotFound)
}

func TestRenderEscapesAndBrands(t *testing.T) {
	lib, err := Load("FlowCoach")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, lib.Render(&buf, "terms", nil, nil))
	html := buf.String()
	require.Contains(t, html, "<title>Terms of Service | FlowCoach</title>")
	require.Contains(t, html, "Binding Agreement")
	require.Contains(t, html, "12. Contact Us")
	require.Contains(t, html, "&#34;AS IS&#34;")
}

func TestLoadFSRequiresTemplatePerPage(t *testing.T) {
	pages := fstest.MapFS{
		"orphan.yaml": {Data: []byte("title: Orphan\n")},
	}
	_, err := LoadFS("FlowCoach", pages, templatesFS)
	require.Error(t, err)
	require.True(t, strings.Contains(err.Error(), "orphan"))
}

func TestLoadFSRejectsBadYAML(t *testing.T) {
	pages := fstest.MapFS{
		"terms.yaml": {Data: []byte("sections: [\n")},
	}
	_, err := LoadFS("FlowCoach", pages, templatesFS)
	require.Error(t, err)
}
