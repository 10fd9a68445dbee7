package registry

import "strings"

// Publisher status classifications.
const (
	StatusUnsigned      = "unsigned"
	StatusSelfPublished = "self-published"
	StatusIndie         = "indie"
	StatusMajor         = "major"
)

// majorPublishers are matched case-insensitively as substrings; the big
// catalogs register under many imprint variants.
var majorPublishers = []string{
	"sony",
	"universal",
	"warner",
	"bmg",
	"kobalt",
	"concord",
	"hipgnosis",
	"downtown music",
	"peermusic",
	"emi",
}

// selfPublishedMarkers indicate the writer administers their own publishing.
var selfPublishedMarkers = []string{
	"self",
	"independent",
	"admin",
	"private",
	"copyright control",
}

// ClassifyPublisherStatus reduces a work's publisher list to one coarse
// status. Any major-catalog name wins; self-administration markers beat a
// generic publisher name; any other non-empty list is indie; an empty list
// means no publisher is registered at all.
func ClassifyPublisherStatus(publishers []string) string {
	named := false
	for _, publisher := range publishers {
		lowered := strings.ToLower(strings.TrimSpace(publisher))
		if lowered == "" {
			continue
		}
		named = true
		for _, major := range majorPublishers {
			if strings.Contains(lowered, major) {
				return StatusMajor
			}
		}
	}
	if !named {
		return StatusUnsigned
	}
	for _, publisher := range publishers {
		lowered := strings.ToLower(publisher)
		for _, marker := range selfPublishedMarkers {
			if strings.Contains(lowered, marker) {
				return StatusSelfPublished
			}
		}
	}
	return StatusIndie
}
