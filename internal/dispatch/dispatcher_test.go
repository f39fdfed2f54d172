package dispatch

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"movebot/internal/catalog"
	"movebot/internal/i18n"
	"movebot/internal/session"
	"movebot/internal/workout"

	"go.uber.org/zap/zaptest"
)

const testCatalogJSON = `{
  "easy":   {"strength": [{"name": "pushups", "min": 5, "max": 10, "unit": "reps"}], "mobility": [{"name": "neck circles", "min": 30, "max": 60, "unit": "sec"}]},
  "medium": {"strength": [{"name": "squats", "min": 10, "max": 20, "unit": "reps"}], "mobility": [{"name": "hip openers", "min": 30, "max": 60, "unit": "sec"}]},
  "hard":   {"strength": [{"name": "burpees", "min": 10, "max": 15, "unit": "reps"}], "mobility": [{"name": "deep squat hold", "min": 60, "max": 90, "unit": "sec"}]}
}`

type fakeReader struct {
	records []session.Record
	err     error
	filters []string
}

func (f *fakeReader) ReadAll(_ context.Context, userName string) ([]session.Record, error) {
	f.filters = append(f.filters, userName)
	if f.err != nil {
		return nil, f.err
	}
	var out []session.Record
	for _, r := range f.records {
		if userName == "" || r.UserName == userName {
			out = append(out, r)
		}
	}
	return out, nil
}

func newTestDispatcher(t *testing.T, reader *fakeReader, active bool, opts Options) (*Dispatcher, *session.State) {
	t.Helper()

	cat, err := catalog.Parse([]byte(testCatalogJSON), catalog.FormatJSON)
	if err != nil {
		t.Fatal(err)
	}

	state := session.New()
	if active {
		set, err := workout.Generate(cat, workout.Counts{Strength: 1, Mobility: 1}, workout.NewSource(1))
		if err != nil {
			t.Fatal(err)
		}
		state.ReplaceWorkout(set)
	}

	if opts.BotName == "" {
		opts.BotName = "movebot"
	}
	d := New(cat, state, reader, opts, zaptest.NewLogger(t))
	d.now = func() time.Time { return time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC) }
	return d, state
}

func ev(name, text string) Event {
	return Event{
		SenderID:   "id-" + name,
		SenderName: name,
		Text:       text,
		Context:    ReplyContext{Channel: "42", ReplyTo: "7"},
	}
}

func TestDispatch_Routing(t *testing.T) {
	reader := &fakeReader{records: []session.Record{
		{UserName: "bob", Difficulty: catalog.Easy},
		{UserName: "bob", Difficulty: catalog.Hard},
		{UserName: "carol", Difficulty: catalog.Medium},
	}}
	d, _ := newTestDispatcher(t, reader, true, Options{})

	tests := []struct {
		name string
		text string
		want string
	}{
		{"help with mention", "@movebot help", i18n.T(i18n.KeyHelp, i18n.LangEnglish)},
		{"bare help", "help", i18n.T(i18n.KeyHelp, i18n.LangEnglish)},
		{"slash help", "/help@movebot", i18n.T(i18n.KeyHelp, i18n.LangEnglish)},
		{"list", "  list  ", d.catalog.RenderList()},
		{"stats for user", "stats bob", "bob: 2"},
		{"stats for unknown user", "@movebot stats dave", "dave: 0"},
		{"stats all", "stats", "bob: easy 1, medium 0, hard 1, total 2\ncarol: easy 0, medium 1, hard 0, total 1"},
		{"unknown", "frobnicate", i18n.T(i18n.KeyUnknownCommand, i18n.LangEnglish)},
		{"trailing garbage", "help me", i18n.T(i18n.KeyUnknownCommand, i18n.LangEnglish)},
		{"bad difficulty", "done extreme", i18n.T(i18n.KeyUnknownCommand, i18n.LangEnglish)},
		{"non-alnum user", "stats bob!", i18n.T(i18n.KeyUnknownCommand, i18n.LangEnglish)},
		{"empty", "", i18n.T(i18n.KeyUnknownCommand, i18n.LangEnglish)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			reply := d.Dispatch(context.Background(), ev("alice", tt.text))
			if reply.Text != tt.want {
				t.Errorf("Dispatch(%q) = %q, want %q", tt.text, reply.Text, tt.want)
			}
			if reply.Context != (ReplyContext{Channel: "42", ReplyTo: "7"}) {
				t.Errorf("reply context = %+v", reply.Context)
			}
		})
	}
}

func TestDispatch_DoneRecordsCompletion(t *testing.T) {
	d, state := newTestDispatcher(t, &fakeReader{}, true, Options{})

	for i := 0; i < 30; i++ {
		reply := d.Dispatch(context.Background(), ev("alice", "done medium"))
		if !strings.Contains(reply.Text, "alice") {
			t.Fatalf("congratulation %q does not name the sender", reply.Text)
		}
		if strings.Contains(reply.Text, "NAME") {
			t.Fatalf("placeholder left in %q", reply.Text)
		}
	}

	pending := state.Pending()
	if len(pending) != 1 {
		t.Fatalf("pending = %d records, want 1", len(pending))
	}
	rec := pending[0]
	if rec.UserID != "id-alice" || rec.UserName != "alice" || rec.Difficulty != catalog.Medium {
		t.Errorf("record = %+v", rec)
	}
	if len(rec.Workout) != 2 || rec.Workout[0].Name != "squats" {
		t.Errorf("snapshot = %+v", rec.Workout)
	}
}

func TestDispatch_DoneWithoutWorkout(t *testing.T) {
	d, state := newTestDispatcher(t, &fakeReader{}, false, Options{})

	reply := d.Dispatch(context.Background(), ev("alice", "done medium"))
	if want := i18n.T(i18n.KeyNoActiveWorkout, i18n.LangEnglish); reply.Text != want {
		t.Errorf("Dispatch() = %q, want %q", reply.Text, want)
	}
	if len(state.Pending()) != 0 {
		t.Error("completion recorded without an active workout")
	}
}

func TestDispatch_StatsUnavailable(t *testing.T) {
	reader := &fakeReader{err: errors.New("disk on fire")}
	d, _ := newTestDispatcher(t, reader, true, Options{})

	want := i18n.T(i18n.KeyStatsUnavailable, i18n.LangEnglish)
	for _, text := range []string{"stats", "stats bob"} {
		if got := d.Dispatch(context.Background(), ev("alice", text)).Text; got != want {
			t.Errorf("Dispatch(%q) = %q, want %q", text, got, want)
		}
	}
}

func TestDispatch_StatsEmpty(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeReader{}, true, Options{})
	if got, want := d.Dispatch(context.Background(), ev("alice", "stats")).Text, i18n.T(i18n.KeyStatsEmpty, i18n.LangEnglish); got != want {
		t.Errorf("Dispatch(stats) = %q, want %q", got, want)
	}
}

func TestDispatch_StatsUserFilterPassedToStore(t *testing.T) {
	reader := &fakeReader{}
	d, _ := newTestDispatcher(t, reader, true, Options{})

	d.Dispatch(context.Background(), ev("alice", "stats Bob"))
	if len(reader.filters) != 1 || reader.filters[0] != "Bob" {
		t.Errorf("store filters = %v, want [Bob]", reader.filters)
	}
}

func TestDispatch_IncludePending(t *testing.T) {
	reader := &fakeReader{records: []session.Record{{UserName: "alice", Difficulty: catalog.Easy}}}

	without, _ := newTestDispatcher(t, reader, true, Options{})
	without.Dispatch(context.Background(), ev("alice", "done hard"))
	if got := without.Dispatch(context.Background(), ev("alice", "stats alice")).Text; got != "alice: 1" {
		t.Errorf("persisted only: %q, want %q", got, "alice: 1")
	}

	with, _ := newTestDispatcher(t, reader, true, Options{IncludePending: true})
	with.Dispatch(context.Background(), ev("alice", "done hard"))
	if got := with.Dispatch(context.Background(), ev("alice", "stats alice")).Text; got != "alice: 2" {
		t.Errorf("with pending: %q, want %q", got, "alice: 2")
	}
}

func TestDispatch_Language(t *testing.T) {
	d, _ := newTestDispatcher(t, &fakeReader{}, true, Options{Language: i18n.LangGerman})
	if got, want := d.Dispatch(context.Background(), ev("alice", "xyz")).Text, i18n.T(i18n.KeyUnknownCommand, i18n.LangGerman); got != want {
		t.Errorf("Dispatch() = %q, want %q", got, want)
	}
}
