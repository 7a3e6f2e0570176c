package cli

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/kentxun/anymind/internal/client/models"
	"github.com/kentxun/anymind/internal/client/tags"
)

var (
	dayKey   = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)
	weekKey  = regexp.MustCompile(`^\d{4}-W\d{2}$`)
	monthKey = regexp.MustCompile(`^\d{4}-\d{2}$`)
)

// groupingForKey infers the grouping mode from the shape of a group key:
// 2024-01-31 is a day, 2024-W05 a week and 2024-01 a month.
func groupingForKey(key string) (models.GroupingMode, error) {
	switch {
	case dayKey.MatchString(key):
		return models.GroupByDay, nil
	case weekKey.MatchString(key):
		return models.GroupByWeek, nil
	case monthKey.MatchString(key):
		return models.GroupByMonth, nil
	default:
		return "", fmt.Errorf("unrecognised group key %q (want YYYY-MM-DD, YYYY-Www or YYYY-MM)", key)
	}
}

// parseListArgs turns list arguments into a query. Values of --tags and
// --search run up to the next option.
func parseListArgs(args []string) (models.RecordQuery, error) {
	q := models.RecordQuery{TagMode: models.TagFilterAnd}

	valueOf := func(i int) ([]string, int) {
		j := i + 1
		for j < len(args) && !strings.HasPrefix(args[j], "--") {
			j++
		}
		return args[i+1 : j], j - 1
	}

	for i := 0; i < len(args); i++ {
		switch args[i] {
		case "--or":
			q.TagMode = models.TagFilterOr
		case "--and":
			q.TagMode = models.TagFilterAnd
		case "--tags", "-t":
			v, next := valueOf(i)
			if len(v) == 0 {
				return q, fmt.Errorf("--tags needs a value")
			}
			q.Tags = tags.Union(q.Tags, tags.ParseFilterInput(strings.Join(v, " ")))
			i = next
		case "--search", "-s":
			v, next := valueOf(i)
			if len(v) == 0 {
				return q, fmt.Errorf("--search needs a value")
			}
			q.Search = strings.Join(v, " ")
			i = next
		case "--group", "-g":
			if i+1 >= len(args) {
				return q, fmt.Errorf("--group needs a key")
			}
			mode, err := groupingForKey(args[i+1])
			if err != nil {
				return q, err
			}
			q.Grouping, q.GroupKey = mode, args[i+1]
			i++
		default:
			return q, fmt.Errorf("unknown option %q", args[i])
		}
	}
	return q, nil
}
