package dispatch

import (
	"context"
	"errors"
	"math/rand/v2"
	"strings"
	"sync"
	"time"

	"movebot/internal/catalog"
	"movebot/internal/i18n"
	"movebot/internal/session"
	"movebot/internal/stats"

	"go.uber.org/zap"
)

// ReplyContext identifies where a reply goes. The dispatcher only echoes it back.
type ReplyContext struct {
	Channel string
	ReplyTo string
}

// Event is an inbound message addressed to the bot.
type Event struct {
	SenderID   string
	SenderName string
	Text       string
	Context    ReplyContext
}

// Reply is the text to deliver for an Event.
type Reply struct {
	Text    string
	Context ReplyContext
}

// RecordReader is the read side of the completion store.
type RecordReader interface {
	ReadAll(ctx context.Context, userName string) ([]session.Record, error)
}

// Options configures a Dispatcher.
type Options struct {
	BotName        string
	Language       i18n.Language
	IncludePending bool // count completions that have not been flushed yet in stats
}

// Dispatcher turns messages into replies. It never talks to the transport.
type Dispatcher struct {
	catalog *catalog.Catalog
	state   *session.State
	records RecordReader
	parser  *Parser
	opts    Options
	logger  *zap.Logger
	now     func() time.Time

	mu  sync.Mutex
	rng *rand.Rand
}

// New creates a Dispatcher.
func New(cat *catalog.Catalog, state *session.State, records RecordReader, opts Options, logger *zap.Logger) *Dispatcher {
	if logger == nil {
		logger = zap.NewNop()
	}
	seed := uint64(time.Now().UnixNano())
	return &Dispatcher{
		catalog: cat,
		state:   state,
		records: records,
		parser:  NewParser(opts.BotName),
		opts:    opts,
		logger:  logger,
		now:     time.Now,
		rng:     rand.New(rand.NewPCG(seed, seed>>1)),
	}
}

// Dispatch handles one event.
func (d *Dispatcher) Dispatch(ctx context.Context, ev Event) Reply {
	cmd := d.parser.Parse(ev.Text)
	d.logger.Debug("command parsed",
		zap.String("sender", ev.SenderName),
		zap.Stringer("command", cmd.Kind))

	var text string
	switch cmd.Kind {
	case KindHelp:
		text = d.t(i18n.KeyHelp)
	case KindList:
		text = d.catalog.RenderList()
	case KindDone:
		text = d.handleDone(ev, cmd.Difficulty)
	case KindStats:
		text = d.handleStats(ctx)
	case KindStatsUser:
		text = d.handleUserStats(ctx, cmd.UserName)
	default:
		text = d.t(i18n.KeyUnknownCommand)
	}

	return Reply{Text: text, Context: ev.Context}
}

func (d *Dispatcher) handleDone(ev Event, diff catalog.Difficulty) string {
	rec, err := d.state.RecordCompletion(ev.SenderID, ev.SenderName, diff, d.now())
	if errors.Is(err, session.ErrNoActiveWorkout) {
		return d.t(i18n.KeyNoActiveWorkout)
	}
	if err != nil {
		d.logger.Error("record completion", zap.String("user", ev.SenderName), zap.Error(err))
		return d.t(i18n.KeyNoActiveWorkout)
	}

	d.logger.Info("completion recorded",
		zap.String("user_id", rec.UserID),
		zap.String("user", rec.UserName),
		zap.Stringer("difficulty", rec.Difficulty),
		zap.Int("exercises", len(rec.Workout)))

	return d.congratulate(ev.SenderName)
}

// congratulate picks a random template. Templates without the NAME placeholder are
// addressed to the sender so the reply always names them.
func (d *Dispatcher) congratulate(name string) string {
	templates := i18n.Congrats(d.opts.Language)
	if len(templates) == 0 {
		return name
	}

	d.mu.Lock()
	tpl := templates[d.rng.IntN(len(templates))]
	d.mu.Unlock()

	if !strings.Contains(tpl, "NAME") {
		return name + ": " + tpl
	}
	return strings.ReplaceAll(tpl, "NAME", name)
}

func (d *Dispatcher) handleStats(ctx context.Context) string {
	records, err := d.read(ctx, "")
	if err != nil {
		return d.t(i18n.KeyStatsUnavailable)
	}

	all := stats.AggregateAll(records)
	if len(all) == 0 {
		return d.t(i18n.KeyStatsEmpty)
	}
	return stats.FormatAll(all)
}

func (d *Dispatcher) handleUserStats(ctx context.Context, userName string) string {
	records, err := d.read(ctx, userName)
	if err != nil {
		return d.t(i18n.KeyStatsUnavailable)
	}
	return stats.FormatUser(stats.AggregateUser(records, userName))
}

// read returns persisted records and, when configured, the pending ones.
func (d *Dispatcher) read(ctx context.Context, userName string) ([]session.Record, error) {
	records, err := d.records.ReadAll(ctx, userName)
	if err != nil {
		d.logger.Error("read completions", zap.String("filter", userName), zap.Error(err))
		return nil, err
	}
	if d.opts.IncludePending {
		records = append(records, d.state.Pending()...)
	}
	return records, nil
}

func (d *Dispatcher) t(key string) string {
	return i18n.T(key, d.opts.Language)
}
