package fanlog_test

import (
	"context"
	"log/slog"
	"reflect"
	"testing"

	"fanlog/pkg/fanlog"
	"fanlog/pkg/fanlog/fanlogtest"
)

type requestKey struct{}

func TestSlogHandlerForwardsRecords(t *testing.T) {
	rec := fanlogtest.NewRecorder("spy")
	logger, _ := newTestLogger("svc", rec)
	sl := slog.New(fanlog.NewHandler(logger, nil))

	sl.Warn("disk low", "free_mb", 12, slog.String("mount", "/data"))

	got, ok := rec.Last()
	if !ok {
		t.Fatal("expected a record")
	}
	if got.Level != fanlog.Warn || got.Message != "disk low" || got.App != "svc" {
		t.Fatalf("unexpected record %#v", got)
	}
	want := fanlog.Fields{"free_mb": int64(12), "mount": "/data"}
	if !reflect.DeepEqual(got.Data, want) {
		t.Fatalf("data got %#v want %#v", got.Data, want)
	}
}

func TestSlogHandlerGroupsAndAttrs(t *testing.T) {
	rec := fanlogtest.NewRecorder("spy")
	logger, _ := newTestLogger("", rec)
	sl := slog.New(fanlog.NewHandler(logger, nil)).
		With("component", "api").
		WithGroup("http").
		With("method", "GET")

	sl.Info("request", "status", 200, slog.Group("client", "ip", "10.0.0.1"))
	sl.Info("bare")

	records := rec.Records()
	want := fanlog.Fields{
		"component": "api",
		"http": fanlog.Fields{
			"method": "GET",
			"status": int64(200),
			"client": fanlog.Fields{"ip": "10.0.0.1"},
		},
	}
	if !reflect.DeepEqual(records[0].Data, want) {
		t.Fatalf("data got %#v want %#v", records[0].Data, want)
	}
	wantBare := fanlog.Fields{"component": "api", "http": fanlog.Fields{"method": "GET"}}
	if !reflect.DeepEqual(records[1].Data, wantBare) {
		t.Fatalf("bare data got %#v want %#v", records[1].Data, wantBare)
	}
}

func TestSlogHandlerLevelAndContext(t *testing.T) {
	rec := fanlogtest.NewRecorder("spy")
	logger, _ := newTestLogger("", rec)
	handler := fanlog.NewHandler(logger, &fanlog.HandlerOptions{
		Level: slog.LevelInfo,
		ContextFields: func(ctx context.Context) fanlog.Fields {
			if id, ok := ctx.Value(requestKey{}).(string); ok {
				return fanlog.Fields{"request_id": id}
			}
			return nil
		},
	})
	sl := slog.New(handler)

	ctx := context.WithValue(context.Background(), requestKey{}, "req-9")
	sl.DebugContext(ctx, "filtered")
	sl.ErrorContext(ctx, "kept")
	sl.Log(ctx, fanlog.LevelFatal, "fatal via slog")

	records := rec.Records()
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}
	if records[0].Level != fanlog.Error || records[0].Context["request_id"] != "req-9" {
		t.Fatalf("unexpected record %#v", records[0])
	}
	if records[1].Level != fanlog.Fatal {
		t.Fatalf("expected fatal severity, got %v", records[1].Level)
	}
}

func TestSlogHandlerCyclicAttr(t *testing.T) {
	rec := fanlogtest.NewRecorder("spy")
	logger, diag := newTestLogger("", rec)

	cyclic := fanlog.Fields{"name": "loop"}
	cyclic["self"] = cyclic
	sl := slog.New(fanlog.NewHandler(logger, nil)).With(slog.Any("loop", cyclic)).With("n", 1)
	sl.Info("cyclic")

	got, ok := rec.Last()
	if !ok {
		t.Fatal("expected a record")
	}
	want := fanlog.Fields{
		"loop": fanlog.Fields{"name": "loop", "self": fanlog.CyclePlaceholder},
		"n":    int64(1),
	}
	if !reflect.DeepEqual(got.Data, want) {
		t.Fatalf("data got %#v want %#v", got.Data, want)
	}
	if diag.Len() != 0 {
		t.Fatalf("unexpected diagnostics %q", diag.String())
	}
}
