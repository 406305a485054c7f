package gormdb

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"github.com/aanand-mishra/channels-api/internal/config"
	"github.com/aanand-mishra/channels-api/internal/storage"
	"github.com/aanand-mishra/channels-api/internal/types"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	name := strings.NewReplacer("/", "_", " ", "_").Replace(t.Name())
	s, err := New(config.Storage{
		Driver: config.DriverSQLite,
		DSN:    "file:" + name + "?mode=memory&cache=shared",
	}, zerolog.Nop())
	if err != nil {
		t.Fatalf("open storage: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func mustStudent(t *testing.T, s *Storage, email, matricule string) types.Student {
	t.Helper()
	st, err := s.CreateStudent(context.Background(), types.StudentCreate{
		FirstName: "Ada",
		LastName:  "Lovelace",
		Email:     email,
		Matricule: matricule,
	}, "hash")
	if err != nil {
		t.Fatalf("create student: %v", err)
	}
	return st
}

func mustChannel(t *testing.T, s *Storage, name string) types.Channel {
	t.Helper()
	ch, err := s.CreateChannel(context.Background(), types.ChannelCreate{Name: name})
	if err != nil {
		t.Fatalf("create channel: %v", err)
	}
	return ch
}

func TestWithForeignKeys(t *testing.T) {
	cases := map[string]string{
		"app.db":                    "app.db?_fk=1",
		"file:x?mode=memory":        "file:x?mode=memory&_fk=1",
		"app.db?_foreign_keys=off":  "app.db?_foreign_keys=off",
		"file:y?cache=shared&_fk=0": "file:y?cache=shared&_fk=0",
	}
	for in, want := range cases {
		if got := withForeignKeys(in); got != want {
			t.Fatalf("withForeignKeys(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestStudentLifecycle(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	st := mustStudent(t, s, "ada@example.com", "M001")
	if st.ID == 0 {
		t.Fatal("expected generated id")
	}

	got, err := s.GetStudentByID(ctx, st.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != "ada@example.com" || got.Matricule != "M001" {
		t.Fatalf("unexpected student: %+v", got)
	}

	_, hash, err := s.GetStudentCredentials(ctx, "ada@example.com")
	if err != nil || hash != "hash" {
		t.Fatalf("expected stored hash, got %q err=%v", hash, err)
	}

	name := "Augusta"
	updated, err := s.UpdateStudent(ctx, st.ID, types.StudentUpdate{FirstName: &name}, "")
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.FirstName != "Augusta" || updated.LastName != "Lovelace" {
		t.Fatalf("partial update not applied: %+v", updated)
	}

	if err := s.DeleteStudent(ctx, st.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if _, err := s.GetStudentByID(ctx, st.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
	if err := s.DeleteStudent(ctx, st.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound on second delete, got %v", err)
	}
}

func TestUniqueStudentFields(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	a := mustStudent(t, s, "a@example.com", "A1")
	b := mustStudent(t, s, "b@example.com", "B1")

	taken, err := s.EmailTaken(ctx, "a@example.com", 0)
	if err != nil || !taken {
		t.Fatalf("expected email taken, got %v err=%v", taken, err)
	}
	taken, err = s.EmailTaken(ctx, "a@example.com", a.ID)
	if err != nil || taken {
		t.Fatalf("expected own email not to count, got %v err=%v", taken, err)
	}
	taken, err = s.MatriculeTaken(ctx, "A1", b.ID)
	if err != nil || !taken {
		t.Fatalf("expected matricule taken by other student, got %v err=%v", taken, err)
	}

	_, err = s.CreateStudent(ctx, types.StudentCreate{
		FirstName: "X", LastName: "Y", Email: "a@example.com", Matricule: "Z9",
	}, "hash")
	if !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists from unique index, got %v", err)
	}
}

func TestSubscriptions(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	st1 := mustStudent(t, s, "one@example.com", "S1")
	st2 := mustStudent(t, s, "two@example.com", "S2")
	news := mustChannel(t, s, "news")
	sport := mustChannel(t, s, "sport")

	for _, pair := range [][2]int64{{news.ID, st1.ID}, {sport.ID, st1.ID}, {news.ID, st2.ID}} {
		if _, err := s.Subscribe(ctx, pair[0], pair[1]); err != nil {
			t.Fatalf("subscribe %v: %v", pair, err)
		}
	}

	if _, err := s.Subscribe(ctx, news.ID, st1.ID); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected duplicate pair to fail with ErrAlreadyExists, got %v", err)
	}

	all, err := s.ListSubscriptions(ctx, types.SubscriptionFilter{Limit: 100})
	if err != nil || len(all) != 3 {
		t.Fatalf("expected 3 subscriptions, got %d err=%v", len(all), err)
	}
	if all[0].Channel.Name == "" || all[0].Student.Email == "" {
		t.Fatalf("expected preloaded channel and student, got %+v", all[0])
	}

	byChannel, _ := s.ListSubscriptions(ctx, types.SubscriptionFilter{ChannelID: &news.ID})
	if len(byChannel) != 2 {
		t.Fatalf("expected 2 for channel, got %d", len(byChannel))
	}
	byStudent, _ := s.ListSubscriptions(ctx, types.SubscriptionFilter{StudentID: &st1.ID})
	if len(byStudent) != 2 {
		t.Fatalf("expected 2 for student, got %d", len(byStudent))
	}
	pair, _ := s.ListSubscriptions(ctx, types.SubscriptionFilter{ChannelID: &sport.ID, StudentID: &st2.ID})
	if len(pair) != 0 {
		t.Fatalf("expected no pair, got %d", len(pair))
	}

	paged, _ := s.ListSubscriptions(ctx, types.SubscriptionFilter{Skip: 1, Limit: 1})
	if len(paged) != 1 {
		t.Fatalf("expected one paged result, got %d", len(paged))
	}

	extra, err := s.GetStudentExtra(ctx, st1.ID)
	if err != nil || len(extra.Channels) != 2 {
		t.Fatalf("expected 2 channels on student, got %+v err=%v", extra.Channels, err)
	}

	if err := s.Unsubscribe(ctx, sport.ID, st1.ID); err != nil {
		t.Fatalf("unsubscribe: %v", err)
	}
	if err := s.Unsubscribe(ctx, sport.ID, st1.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if _, err := s.GetSubscription(ctx, sport.ID, st1.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected subscription gone, got %v", err)
	}

	if err := s.DeleteStudent(ctx, st2.ID); err != nil {
		t.Fatalf("delete student: %v", err)
	}
	left, _ := s.ListSubscriptions(ctx, types.SubscriptionFilter{ChannelID: &news.ID})
	if len(left) != 1 || left[0].StudentID != st1.ID {
		t.Fatalf("expected subscriptions of deleted student to go, got %+v", left)
	}
}

func TestChannels(t *testing.T) {
	s := newTestStorage(t)
	ctx := context.Background()

	mustChannel(t, s, "general")
	if _, err := s.CreateChannel(ctx, types.ChannelCreate{Name: "general"}); !errors.Is(err, storage.ErrAlreadyExists) {
		t.Fatalf("expected duplicate channel name to fail, got %v", err)
	}

	taken, err := s.ChannelNameTaken(ctx, "general")
	if err != nil || !taken {
		t.Fatalf("expected name taken, got %v err=%v", taken, err)
	}

	chans, err := s.GetChannels(ctx, 0, 10)
	if err != nil || len(chans) != 1 {
		t.Fatalf("expected 1 channel, got %d err=%v", len(chans), err)
	}

	if _, err := s.GetChannelByID(ctx, 999); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}
