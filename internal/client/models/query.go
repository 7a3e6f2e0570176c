package models

import (
	"fmt"
	"strings"
)

// GroupingMode selects how records are bucketed in group summaries.
type GroupingMode string

const (
	GroupByDay   GroupingMode = "day"
	GroupByWeek  GroupingMode = "week"
	GroupByMonth GroupingMode = "month"
)

// ParseGroupingMode accepts day, week or month in any case.
func ParseGroupingMode(s string) (GroupingMode, error) {
	switch m := GroupingMode(strings.ToLower(strings.TrimSpace(s))); m {
	case GroupByDay, GroupByWeek, GroupByMonth:
		return m, nil
	default:
		return "", fmt.Errorf("unknown grouping mode %q", s)
	}
}

// TagFilterMode decides whether a record must carry all or any filter tags.
type TagFilterMode string

const (
	TagFilterAnd TagFilterMode = "and"
	TagFilterOr  TagFilterMode = "or"
)

// RecordQuery filters record summaries. Zero value lists every live record.
type RecordQuery struct {
	// Search is a free-text phrase matched against the full-text index.
	Search string

	// Tags restricts results to records carrying these tags.
	Tags     []string
	TagMode  TagFilterMode
	Grouping GroupingMode

	// GroupKey, when set, must equal the record's key under Grouping.
	GroupKey string
}
