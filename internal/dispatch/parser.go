package dispatch

import (
	"regexp"

	"movebot/internal/catalog"
)

// Kind is the recognized command.
type Kind int

const (
	KindUnknown Kind = iota
	KindHelp
	KindList
	KindDone
	KindStats
	KindStatsUser
)

func (k Kind) String() string {
	switch k {
	case KindHelp:
		return "help"
	case KindList:
		return "list"
	case KindDone:
		return "done"
	case KindStats:
		return "stats"
	case KindStatsUser:
		return "stats_user"
	}
	return "unknown"
}

// Command is a parsed message.
type Command struct {
	Kind       Kind
	Difficulty catalog.Difficulty // KindDone
	UserName   string             // KindStatsUser
}

// Parser matches the command grammar. Every pattern is anchored at both ends, so trailing
// text makes a message unknown.
type Parser struct {
	help      *regexp.Regexp
	list      *regexp.Regexp
	done      *regexp.Regexp
	stats     *regexp.Regexp
	statsUser *regexp.Regexp
}

// NewParser builds the patterns for a bot. An empty botName accepts any leading @mention.
func NewParser(botName string) *Parser {
	mention := `@\w+`
	if botName != "" {
		mention = `@` + regexp.QuoteMeta(botName)
	}

	// "@bot help", "help", "/help", "/help@bot"
	prefix := `(?i)^\s*(?:` + mention + `)?\s*/?`
	suffix := `(?:` + mention + `)?`

	return &Parser{
		help:      regexp.MustCompile(prefix + `help` + suffix + `\s*$`),
		list:      regexp.MustCompile(prefix + `list` + suffix + `\s*$`),
		done:      regexp.MustCompile(prefix + `done` + suffix + `\s+(easy|medium|hard)\s*$`),
		stats:     regexp.MustCompile(prefix + `stats` + suffix + `\s*$`),
		statsUser: regexp.MustCompile(prefix + `stats` + suffix + `\s+([a-zA-Z0-9]+)\s*$`),
	}
}

// Parse classifies text. The first matching command wins, in the order help, list, done,
// stats, stats <user>.
func (p *Parser) Parse(text string) Command {
	if p.help.MatchString(text) {
		return Command{Kind: KindHelp}
	}
	if p.list.MatchString(text) {
		return Command{Kind: KindList}
	}
	if m := p.done.FindStringSubmatch(text); m != nil {
		d, err := catalog.ParseDifficulty(m[1])
		if err != nil {
			return Command{Kind: KindUnknown}
		}
		return Command{Kind: KindDone, Difficulty: d}
	}
	if p.stats.MatchString(text) {
		return Command{Kind: KindStats}
	}
	if m := p.statsUser.FindStringSubmatch(text); m != nil {
		return Command{Kind: KindStatsUser, UserName: m[1]}
	}
	return Command{Kind: KindUnknown}
}
