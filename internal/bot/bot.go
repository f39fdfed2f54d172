package bot

import (
	"context"
	"hash/fnv"
	"strconv"
	"sync"

	"movebot/internal/dispatch"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"go.uber.org/zap"
)

// API is the part of tgbotapi.BotAPI the bot uses.
type API interface {
	GetUpdatesChan(config tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel
	StopReceivingUpdates()
	Send(c tgbotapi.Chattable) (tgbotapi.Message, error)
}

// Dispatcher turns an incoming message into a reply.
type Dispatcher interface {
	Dispatch(ctx context.Context, ev dispatch.Event) dispatch.Reply
}

// Options configures the transport.
type Options struct {
	// ChannelID is the chat workouts are broadcast to.
	ChannelID int64
	// BotName is the bot username without "@". Empty accepts any mention.
	BotName string
	// Workers is the number of handler goroutines. Messages from one sender always
	// land on the same worker and are handled in order.
	Workers int
}

// Bot connects Telegram updates to the dispatcher.
type Bot struct {
	api        API
	dispatcher Dispatcher
	opts       Options
	logger     *zap.Logger
}

// New creates a Bot.
func New(api API, d Dispatcher, opts Options, logger *zap.Logger) *Bot {
	if opts.Workers < 1 {
		opts.Workers = 1
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bot{api: api, dispatcher: d, opts: opts, logger: logger}
}

// Start receives updates until ctx is done, then waits for queued messages to be answered.
func (b *Bot) Start(ctx context.Context) error {
	updates := b.initUpdatesChannel()
	b.handleUpdates(ctx, updates)
	return nil
}

func (b *Bot) initUpdatesChannel() tgbotapi.UpdatesChannel {
	u := tgbotapi.NewUpdate(0)
	u.Timeout = 30
	u.AllowedUpdates = []string{"message"}

	return b.api.GetUpdatesChan(u)
}

func (b *Bot) handleUpdates(ctx context.Context, updates tgbotapi.UpdatesChannel) {
	shards := make([]chan dispatch.Event, b.opts.Workers)
	var wg sync.WaitGroup
	for i := range shards {
		shards[i] = make(chan dispatch.Event, 16)
		wg.Add(1)
		go func(events <-chan dispatch.Event) {
			defer wg.Done()
			b.worker(context.WithoutCancel(ctx), events)
		}(shards[i])
	}

	b.logger.Info("listening for messages",
		zap.String("bot", b.opts.BotName),
		zap.Int("workers", b.opts.Workers))

loop:
	for {
		select {
		case <-ctx.Done():
			break loop
		case update, ok := <-updates:
			if !ok {
				break loop
			}
			ev, ok := b.toEvent(update.Message)
			if !ok {
				continue
			}
			select {
			case shards[shardFor(ev.SenderID, len(shards))] <- ev:
			case <-ctx.Done():
				break loop
			}
		}
	}

	b.api.StopReceivingUpdates()
	for _, ch := range shards {
		close(ch)
	}
	wg.Wait()
	b.logger.Info("stopped listening for messages")
}

func (b *Bot) worker(ctx context.Context, events <-chan dispatch.Event) {
	for ev := range events {
		reply := b.dispatcher.Dispatch(ctx, ev)
		b.reply(reply)
	}
}

func shardFor(senderID string, n int) int {
	h := fnv.New32a()
	h.Write([]byte(senderID))
	return int(h.Sum32() % uint32(n))
}

// toEvent converts a message addressed to the bot into a dispatcher event.
func (b *Bot) toEvent(msg *tgbotapi.Message) (dispatch.Event, bool) {
	if msg == nil || msg.From == nil || msg.Chat == nil || msg.From.IsBot {
		return dispatch.Event{}, false
	}
	if msg.Text == "" || !b.addressed(msg) {
		return dispatch.Event{}, false
	}

	return dispatch.Event{
		SenderID:   strconv.FormatInt(msg.From.ID, 10),
		SenderName: senderName(msg.From),
		Text:       msg.Text,
		Context: dispatch.ReplyContext{
			Channel: strconv.FormatInt(msg.Chat.ID, 10),
			ReplyTo: strconv.Itoa(msg.MessageID),
		},
	}, true
}

// Broadcast posts text to the configured channel.
func (b *Bot) Broadcast(_ context.Context, text string) error {
	msg := tgbotapi.NewMessage(b.opts.ChannelID, text)
	msg.ParseMode = tgbotapi.ModeMarkdown
	_, err := b.api.Send(msg)
	if err != nil {
		b.logger.Error("failed to broadcast", zap.Int64("chat", b.opts.ChannelID), zap.Error(err))
	}
	return err
}
