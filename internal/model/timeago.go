// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package model

import (
	"fmt"
	"time"
)

// timeAgoIntervals mirrors the relative-time buckets used across views.
var timeAgoIntervals = []struct {
	label   string
	seconds int64
}{
	{"year", 31536000},
	{"month", 2592000},
	{"week", 604800},
	{"day", 86400},
	{"hour", 3600},
	{"minute", 60},
}

// TimeAgo renders t relative to now: "3 hours ago", "just now".
// Zero or future timestamps render as "just now".
func TimeAgo(t, now time.Time) string {
	if t.IsZero() {
		return ""
	}
	seconds := int64(now.Sub(t) / time.Second)
	for _, iv := range timeAgoIntervals {
		count := seconds / iv.seconds
		if count >= 1 {
			if count > 1 {
				return fmt.Sprintf("%d %ss ago", count, iv.label)
			}
			return fmt.Sprintf("1 %s ago", iv.label)
		}
	}
	return "just now"
}
