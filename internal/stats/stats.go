package stats

import (
	"fmt"
	"sort"
	"strings"

	"movebot/internal/catalog"
	"movebot/internal/session"
)

// Counts is how often a user finished each difficulty.
type Counts struct {
	Easy   int `json:"easy"`
	Medium int `json:"medium"`
	Hard   int `json:"hard"`
	Total  int `json:"total"`
}

func (c *Counts) add(d catalog.Difficulty) {
	switch d {
	case catalog.Easy:
		c.Easy++
	case catalog.Medium:
		c.Medium++
	case catalog.Hard:
		c.Hard++
	default:
		return
	}
	c.Total++
}

// UserSummary is the flat count for a single user.
type UserSummary struct {
	UserName string `json:"user"`
	Count    int    `json:"count"`
}

// AggregateAll counts records per user name and difficulty.
func AggregateAll(records []session.Record) map[string]Counts {
	out := make(map[string]Counts)
	for _, r := range records {
		c := out[r.UserName]
		c.add(r.Difficulty)
		out[r.UserName] = c
	}
	return out
}

// AggregateUser counts the records whose user name equals userName.
func AggregateUser(records []session.Record, userName string) UserSummary {
	s := UserSummary{UserName: userName}
	for _, r := range records {
		if r.UserName == userName {
			s.Count++
		}
	}
	return s
}

// Names returns the user names in the aggregate, sorted.
func Names(all map[string]Counts) []string {
	names := make([]string, 0, len(all))
	for name := range all {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FormatAll renders one line per user, sorted by name. An empty aggregate renders as empty.
func FormatAll(all map[string]Counts) string {
	var sb strings.Builder
	for _, name := range Names(all) {
		c := all[name]
		fmt.Fprintf(&sb, "%s: easy %d, medium %d, hard %d, total %d\n", name, c.Easy, c.Medium, c.Hard, c.Total)
	}
	return strings.TrimRight(sb.String(), "\n")
}

// FormatUser renders "name: count".
func FormatUser(s UserSummary) string {
	return fmt.Sprintf("%s: %d", s.UserName, s.Count)
}
