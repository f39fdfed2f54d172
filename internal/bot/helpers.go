package bot

import (
	"strconv"
	"strings"
	"unicode/utf16"

	"movebot/internal/dispatch"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// maxMessageLen is Telegram's limit for one text message, in UTF-16 code units.
const maxMessageLen = 4096

// reply sends a dispatcher reply as an answer to the original message.
func (b *Bot) reply(r dispatch.Reply) {
	chatID, err := strconv.ParseInt(r.Context.Channel, 10, 64)
	if err != nil {
		b.logger.Error("bad reply channel", zap.String("channel", r.Context.Channel), zap.Error(err))
		return
	}
	replyTo, _ := strconv.Atoi(r.Context.ReplyTo)

	for i, part := range splitMessage(r.Text, maxMessageLen) {
		msg := tgbotapi.NewMessage(chatID, part)
		if i == 0 {
			msg.ReplyToMessageID = replyTo
		}
		if err := b.sendMessage(msg); err != nil {
			return
		}
	}
}

// sendMessage sends message with error logging
func (b *Bot) sendMessage(msg tgbotapi.MessageConfig) error {
	_, err := b.api.Send(msg)
	if err != nil {
		b.logger.Error("failed to send message", zap.Int64("chat", msg.ChatID), zap.Error(err))
	}
	return err
}

// addressed reports whether the bot should answer msg: private chats, commands and
// mentions of the bot.
func (b *Bot) addressed(msg *tgbotapi.Message) bool {
	if msg.Chat.IsPrivate() {
		return true
	}
	for _, e := range msg.Entities {
		switch e.Type {
		case "mention":
			name := strings.TrimPrefix(entityText(msg.Text, e), "@")
			if b.opts.BotName == "" || strings.EqualFold(name, b.opts.BotName) {
				return true
			}
		case "bot_command":
			if e.Offset != 0 {
				continue
			}
			cmd := entityText(msg.Text, e)
			at := strings.IndexByte(cmd, '@')
			if at < 0 || b.opts.BotName == "" || strings.EqualFold(cmd[at+1:], b.opts.BotName) {
				return true
			}
		case "text_mention":
			if e.User != nil && e.User.IsBot && strings.EqualFold(e.User.UserName, b.opts.BotName) {
				return true
			}
		}
	}
	return false
}

// entityText cuts an entity out of text. Offsets are in UTF-16 code units.
func entityText(text string, e tgbotapi.MessageEntity) string {
	units := utf16.Encode([]rune(text))
	if e.Offset < 0 || e.Length < 0 || e.Offset+e.Length > len(units) {
		return ""
	}
	return string(utf16.Decode(units[e.Offset : e.Offset+e.Length]))
}

// senderName prefers the @username, falling back to the first name.
func senderName(u *tgbotapi.User) string {
	if u.UserName != "" {
		return u.UserName
	}
	if u.FirstName != "" {
		return u.FirstName
	}
	return strconv.FormatInt(u.ID, 10)
}

// splitMessage breaks text into chunks of at most limit UTF-16 units, preferring
// line boundaries.
func splitMessage(text string, limit int) []string {
	if utf16Len(text) <= limit {
		return []string{text}
	}

	var parts []string
	var cur strings.Builder
	curLen := 0
	flush := func() {
		if cur.Len() > 0 {
			parts = append(parts, cur.String())
			cur.Reset()
			curLen = 0
		}
	}

	for _, line := range strings.SplitAfter(text, "\n") {
		n := utf16Len(line)
		if curLen+n > limit {
			flush()
		}
		if n <= limit {
			cur.WriteString(line)
			curLen += n
			continue
		}
		for _, r := range line {
			rn := utf16.RuneLen(r)
			if curLen+rn > limit {
				flush()
			}
			cur.WriteRune(r)
			curLen += rn
		}
	}
	flush()
	return parts
}

func utf16Len(s string) int {
	n := 0
	for _, r := range s {
		n += utf16.RuneLen(r)
	}
	return n
}
