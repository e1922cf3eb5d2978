package webdb

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// CountMedia counts image and video elements in a campaign description.
// Kickstarter pages embed videos either as <video> players or as
// video-player wrapper divs, and images as plain <img> tags.
func CountMedia(html string) (images, videos int, err error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return 0, 0, err
	}

	images = doc.Find("img").Length()

	videos = doc.Find("video").Length()
	doc.Find("div.video-player, div[data-video-url]").Each(func(_ int, s *goquery.Selection) {
		// Avoid double counting wrappers that contain a <video> child.
		if s.Find("video").Length() == 0 {
			videos++
		}
	})
	return images, videos, nil
}
