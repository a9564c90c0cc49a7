package utils

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanText(t *testing.T) {
	assert.Equal(t, "a b c", CleanText("  a\n\tb   c "))
}

func TestVisibleText(t *testing.T) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(`<html><head><style>p{}</style></head>
<body><p>Call <b>us</b></p><script>var x = "hidden";</script><noscript>off</noscript><div>today</div></body></html>`))
	require.NoError(t, err)

	assert.Equal(t, "Call us today", VisibleText(doc.Selection))
}
