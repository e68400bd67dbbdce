// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// PageStatus tracks a page through the crawl pipeline. Each stage claims
// pages in its pending status, flips them to the in-progress status while
// working, and leaves them in a terminal or next-pending status.
type PageStatus string

const (
	PagePendingDownload PageStatus = "pending-download"
	PageDownloading     PageStatus = "downloading"
	PageDownloadFailed  PageStatus = "download-failed"

	PagePendingExtraction PageStatus = "pending-extraction"
	PageExtracting        PageStatus = "extracting"
	PageExtractionFailed  PageStatus = "extraction-failed"

	PagePendingParsing   PageStatus = "pending-parsing"
	PageParsing          PageStatus = "parsing"
	PageParsedIncomplete PageStatus = "parsed-incomplete"

	PagePendingFollowing PageStatus = "pending-following"
	PageFollowing        PageStatus = "following"
	PageFollowed         PageStatus = "followed"
	PageFollowFailed     PageStatus = "follow-failed"
)

// Page is one URL moving through the pipeline. Content and Schema are
// bulky intermediate artifacts; stages clear them once downstream work
// no longer needs them.
type Page struct {
	// ID is the store-assigned row identifier.
	ID int64 `json:"id" yaml:"id"`

	// URL is the full page URL.
	URL string `json:"url" yaml:"url"`

	// Domain is the URL host, used to spread crawl load across sites.
	Domain string `json:"domain" yaml:"domain"`

	// Content is the downloaded HTML document, present only between the
	// download and follow stages.
	Content string `json:"content,omitempty" yaml:"content,omitempty"`

	// Schema is the raw JSON-LD payload pulled from Content, present only
	// between the extraction and parsing stages.
	Schema string `json:"schema,omitempty" yaml:"schema,omitempty"`

	// Priority orders claiming; submitted seeds rank above followed links.
	Priority int `json:"priority" yaml:"priority"`

	// Status is the page's position in the pipeline.
	Status PageStatus `json:"status" yaml:"status"`
}
