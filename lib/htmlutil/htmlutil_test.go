package htmlutil

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	require.Equal(t, "General Waste", CleanText("\n\t  General \n   Waste\u200b  "))
	require.Equal(t, "", CleanText(" \n "))
}

func TestFirstText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`
		<div class="block">
			<h3>  Recycling
			</h3>
			<h3>ignored</h3>
		</div>`))
	if err != nil {
		t.Fatal(err)
	}

	text, ok := FirstText(doc.Selection, "h3")
	require.True(t, ok)
	require.Equal(t, "Recycling", text)

	_, ok = FirstText(doc.Selection, "h4")
	require.False(t, ok)
}
