package payload

import (
	"errors"
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// RehydrationScriptID is the id attribute of the script element carrying
// the page's embedded JSON payload. The value is versioned by TikTok; a
// layout change surfaces here first.
const RehydrationScriptID = "__UNIVERSAL_DATA_FOR_REHYDRATION__"

// ErrNotFound means the page carries no rehydration payload. Deleted
// videos, captcha interstitials, and layout changes all land here.
var ErrNotFound = errors.New("rehydration script not found")

// Locate scans html for the rehydration script element and returns its
// inner text. Attribute order and extra attributes on the tag are
// irrelevant; only the id has to match.
func Locate(html string) (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return "", fmt.Errorf("parse html: %w", err)
	}
	sel := doc.Find("script#" + RehydrationScriptID)
	if sel.Length() == 0 {
		return "", ErrNotFound
	}
	return sel.First().Text(), nil
}
