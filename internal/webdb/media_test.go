package webdb

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCountMedia(t *testing.T) {
	tests := []struct {
		name       string
		html       string
		wantImages int
		wantVideos int
	}{
		{
			name:       "plain images",
			html:       `<div><img src="a.png"><p>text</p><img src="b.png"></div>`,
			wantImages: 2,
		},
		{
			name:       "video element",
			html:       `<video src="v.mp4"></video>`,
			wantVideos: 1,
		},
		{
			name:       "video player wrapper",
			html:       `<div class="video-player" data-video-url="v.mp4"><div class="poster"></div></div>`,
			wantVideos: 1,
		},
		{
			name:       "wrapper with video child counted once",
			html:       `<div class="video-player"><video src="v.mp4"></video></div>`,
			wantVideos: 1,
		},
		{
			name: "mixed content",
			html: `<img src="a.png"><div data-video-url="v1"></div><video src="v2"></video>`,
			wantImages: 1,
			wantVideos: 2,
		},
		{
			name: "no media",
			html: `<p>just text</p>`,
		},
		{
			name: "empty",
			html: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			images, videos, err := CountMedia(tt.html)
			require.NoError(t, err)
			assert.Equal(t, tt.wantImages, images, "images")
			assert.Equal(t, tt.wantVideos, videos, "videos")
		})
	}
}
