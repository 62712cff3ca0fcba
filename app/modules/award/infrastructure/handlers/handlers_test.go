package awardhandlers

import (
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/Black-And-White-Club/step-bot/app/events"
	awardservice "github.com/Black-And-White-Club/step-bot/app/modules/award/application"
	awarddomain "github.com/Black-And-White-Club/step-bot/app/modules/award/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/trace/noop"
)

var mar1 = time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC)

func newHandlers(svc *FakeAwardService, chatID int64) *AwardHandlers {
	msk, _ := time.LoadLocation("Europe/Moscow")
	h := NewAwardHandlers(svc, Options{Location: msk, ReportChatID: chatID}, slog.Default(), noop.NewTracerProvider().Tracer("test")).(*AwardHandlers)
	h.now = func() time.Time { return time.Date(2026, time.March, 2, 17, 0, 0, 0, time.UTC) }
	return h
}

func TestHandleAwardsRequested(t *testing.T) {
	run := awardservice.AwardRun{
		Date: mar1,
		Awards: []awarddomain.Award{
			{Date: mar1, Identity: "Vasya", Key: "vasya", Rank: 1, Medal: awarddomain.MedalGold, Steps: 12000},
		},
		Summary: "Медали за 01.03.2026:\n🥇 #Vasya — 12 000 шагов",
	}

	t.Run("empty date targets yesterday and posts the summary", func(t *testing.T) {
		svc := NewFakeAwardService()
		svc.AssignAwardsFunc = func(ctx context.Context, date time.Time) (awardservice.AwardRun, error) { return run, nil }
		h := newHandlers(svc, -100)

		out, err := h.HandleAwardsRequested(context.Background(), &events.AwardsRequestedPayloadV1{})
		require.NoError(t, err)
		assert.Equal(t, []time.Time{mar1}, svc.Dates)

		require.Len(t, out, 2)
		assert.Equal(t, events.AwardsPublishedV1, out[0].Topic)
		published := out[0].Payload.(*events.AwardsPublishedPayloadV1)
		assert.Equal(t, "01.03.2026", published.Date)
		assert.Equal(t, []events.AwardV1{{Identity: "Vasya", Rank: 1, Medal: "gold", Symbol: "🥇", Steps: 12000}}, published.Awards)

		assert.Equal(t, events.ReplyRequestedV1, out[1].Topic)
		assert.Equal(t, &events.ReplyRequestedPayloadV1{ChatID: -100, Text: run.Summary}, out[1].Payload)
	})

	t.Run("explicit date without chat", func(t *testing.T) {
		svc := NewFakeAwardService()
		h := newHandlers(svc, 0)

		out, err := h.HandleAwardsRequested(context.Background(), &events.AwardsRequestedPayloadV1{Date: "2026-02-14"})
		require.NoError(t, err)
		assert.Equal(t, []time.Time{time.Date(2026, time.February, 14, 0, 0, 0, 0, time.UTC)}, svc.Dates)
		require.Len(t, out, 1)
		assert.Empty(t, out[0].Payload.(*events.AwardsPublishedPayloadV1).Awards)
	})

	t.Run("invalid date is dropped", func(t *testing.T) {
		svc := NewFakeAwardService()
		out, err := newHandlers(svc, -100).HandleAwardsRequested(context.Background(), &events.AwardsRequestedPayloadV1{Date: "tomorrow-ish"})
		require.NoError(t, err)
		assert.Empty(t, out)
		assert.Empty(t, svc.Trace())
	})

	t.Run("service error is returned", func(t *testing.T) {
		svc := NewFakeAwardService()
		svc.AssignAwardsFunc = func(ctx context.Context, date time.Time) (awardservice.AwardRun, error) {
			return awardservice.AwardRun{}, errors.New("db down")
		}
		_, err := newHandlers(svc, -100).HandleAwardsRequested(context.Background(), &events.AwardsRequestedPayloadV1{})
		assert.Error(t, err)
	})
}
