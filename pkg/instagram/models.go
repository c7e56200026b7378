package instagram

import (
	"time"

	"reelscraper/pkg/models"
)

// GraphQLResponse represents the top-level response from Instagram's
// GraphQL query endpoints.
type GraphQLResponse struct {
	Data   Data   `json:"data"`
	Status string `json:"status"`
}

// Data wraps the user information in the response
type Data struct {
	User User `json:"user"`
}

// User represents an Instagram user profile
type User struct {
	ID                       string                   `json:"id"`
	EdgeOwnerToTimelineMedia EdgeOwnerToTimelineMedia `json:"edge_owner_to_timeline_media"`
}

// EdgeOwnerToTimelineMedia contains the user's media information
type EdgeOwnerToTimelineMedia struct {
	Count    int      `json:"count"`
	PageInfo PageInfo `json:"page_info"`
	Edges    []Edge   `json:"edges"`
}

// PageInfo contains pagination information
type PageInfo struct {
	HasNextPage bool   `json:"has_next_page"`
	EndCursor   string `json:"end_cursor"`
}

// Edge wraps a single media node
type Edge struct {
	Node Node `json:"node"`
}

// Node represents a single media item in a timeline or post payload
type Node struct {
	ID                 string       `json:"id"`
	Shortcode          string       `json:"shortcode"`
	IsVideo            bool         `json:"is_video"`
	DisplayURL         string       `json:"display_url"`
	ThumbnailSrc       string       `json:"thumbnail_src"`
	VideoURL           string       `json:"video_url"`
	TakenAtTimestamp   int64        `json:"taken_at_timestamp"`
	VideoViewCount     *int         `json:"video_view_count"`
	VideoPlayCount     *int         `json:"video_play_count"`
	EdgeLikedBy        CountEdge    `json:"edge_liked_by"`
	EdgeMediaToComment CountEdge    `json:"edge_media_to_comment"`
	EdgeMediaToCaption CaptionEdges `json:"edge_media_to_caption"`
}

// CountEdge carries a plain count (likes, comments)
type CountEdge struct {
	Count *int `json:"count"`
}

// CaptionEdges holds caption text edges
type CaptionEdges struct {
	Edges []CaptionEdge `json:"edges"`
}

// CaptionEdge wraps a single caption node
type CaptionEdge struct {
	Node CaptionNode `json:"node"`
}

// CaptionNode holds the caption text
type CaptionNode struct {
	Text string `json:"text"`
}

// SharedData mirrors the window._sharedData bootstrap blob embedded in
// profile pages.
type SharedData struct {
	EntryData EntryData `json:"entry_data"`
}

// EntryData holds the per-page payloads of the bootstrap blob
type EntryData struct {
	ProfilePage []ProfilePage `json:"ProfilePage"`
}

// ProfilePage wraps the GraphQL user payload of a profile page
type ProfilePage struct {
	GraphQL ProfileGraphQL `json:"graphql"`
}

// ProfileGraphQL holds the user object of a profile page payload
type ProfileGraphQL struct {
	User User `json:"user"`
}

// PostResponse represents the `?__a=1&__d=dis` payload for a single post
type PostResponse struct {
	GraphQL PostGraphQL `json:"graphql"`
}

// PostGraphQL wraps the media node of a single-post payload
type PostGraphQL struct {
	ShortcodeMedia Node `json:"shortcode_media"`
}

// NodeToReel maps a raw media node onto the public Reel shape. It
// returns false when the node has no shortcode and must be dropped.
func NodeToReel(node Node) (models.Reel, bool) {
	if node.Shortcode == "" {
		return models.Reel{}, false
	}

	reel := models.Reel{
		ID:        node.Shortcode,
		SourceURL: ReelURL(node.Shortcode),
	}

	if node.TakenAtTimestamp > 0 {
		reel.PostedAt = time.Unix(node.TakenAtTimestamp, 0).UTC()
	} else {
		reel.PostedAt = time.Now().UTC()
	}

	if node.IsVideo && node.VideoURL != "" {
		videoURL := node.VideoURL
		reel.VideoURL = &videoURL
	}

	if node.ThumbnailSrc != "" {
		reel.ThumbnailURL = node.ThumbnailSrc
	} else {
		reel.ThumbnailURL = node.DisplayURL
	}

	if edges := node.EdgeMediaToCaption.Edges; len(edges) > 0 && edges[0].Node.Text != "" {
		caption := edges[0].Node.Text
		reel.Caption = &caption
	}

	if node.VideoViewCount != nil {
		reel.Views = node.VideoViewCount
	} else if node.VideoPlayCount != nil {
		reel.Views = node.VideoPlayCount
	}

	reel.Likes = node.EdgeLikedBy.Count
	reel.Comments = node.EdgeMediaToComment.Count

	return reel, true
}
