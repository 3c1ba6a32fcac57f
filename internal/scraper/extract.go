package scraper

import (
	"encoding/json"
	"time"

	"github.com/haianibrahim/tiktok-scraper/internal/payload"
)

// JSON path segments from the payload root down to the video item struct.
const (
	scopeKey       = "__DEFAULT_SCOPE__"
	videoDetailKey = "webapp.video-detail"
	itemInfoKey    = "itemInfo"
	itemStructKey  = "itemStruct"
)

// Extract walks the decoded payload tree along the fixed video-detail path
// and builds a VideoRecord for sourceURL. The author, stats, video, and
// music sub-objects are each independently optional: absent fields default
// to empty strings and zero counters. A missing path segment or an empty
// video id yields a structure error: decoding succeeded but the page is
// not a usable video page.
//
// The capture timestamp is now, not any time embedded in the source data.
func Extract(tree payload.Value, sourceURL string, raw []byte, now time.Time) (VideoRecord, error) {
	item, ok := tree.Path(scopeKey, videoDetailKey, itemInfoKey, itemStructKey)
	if !ok {
		return VideoRecord{}, NewStructureError(sourceURL, "video information not found in the data structure")
	}

	author := item.Get("author")
	stats := item.Get("stats")
	video := item.Get("video")
	music := item.Get("music")

	record := VideoRecord{
		CanonicalURL: sourceURL,
		VideoID:      item.Get("id").StringOr(""),
		Description:  item.Get("desc").StringOr(""),
		Username:     author.Get("uniqueId").StringOr(""),
		DisplayName:  author.Get("nickname").StringOr(""),
		UserID:       author.Get("id").StringOr(""),
		AvatarURL:    author.Get("avatarThumb").StringOr(""),
		Thumbnail:    video.Get("cover").StringOr(""),
		Views:        stats.Get("playCount").IntOr(0),
		Likes:        stats.Get("diggCount").IntOr(0),
		Comments:     stats.Get("commentCount").IntOr(0),
		Shares:       stats.Get("shareCount").IntOr(0),
		Favorites:    stats.Get("collectCount").IntOr(0),
		MusicTitle:   music.Get("title").StringOr(""),
		MusicAuthor:  music.Get("authorName").StringOr(""),
		PlayURL:      video.Get("playAddr").StringOr(""),
		DurationSec:  video.Get("duration").IntOr(0),
		CreateTime:   item.Get("createTime").IntOr(0),
		Raw:          json.RawMessage(raw),
		ScrapedAt:    now,
	}

	// An empty id is the authoritative signal that this is well-formed JSON
	// for the wrong kind of page.
	if record.VideoID == "" {
		return VideoRecord{}, NewStructureError(sourceURL, "not a valid video page")
	}
	return record, nil
}
