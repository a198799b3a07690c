package notify

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/donaldgifford/tgtg-watcher/internal/metrics"
	domain "github.com/donaldgifford/tgtg-watcher/pkg/types"
)

func testAlert(available int) domain.RestockAlert {
	start := time.Date(2026, 3, 14, 17, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	return domain.RestockAlert{
		Snapshot: domain.StockSnapshot{
			ItemID:         "98765",
			SearchName:     "home",
			StoreName:      "Corner Bakery",
			DisplayName:    "Corner Bakery - Centre",
			ItemsAvailable: available,
			Price:          3.99,
			Currency:       "EUR",
			PickupStart:    &start,
			PickupEnd:      &end,
		},
		Previous: 0,
		SeenAt:   start.Add(-2 * time.Hour),
	}
}

func TestDiscordNotifier_SendAlert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		alert      domain.RestockAlert
		statusCode int
		wantErr    bool
		errMsg     string
		wantColor  int
	}{
		{
			name:       "valid alert sends embed",
			alert:      testAlert(3),
			statusCode: http.StatusNoContent,
			wantColor:  colorYellow,
		},
		{
			name:       "plenty of bags uses green color",
			alert:      testAlert(8),
			statusCode: http.StatusNoContent,
			wantColor:  colorGreen,
		},
		{
			name:       "last bag uses orange color",
			alert:      testAlert(1),
			statusCode: http.StatusNoContent,
			wantColor:  colorOrange,
		},
		{
			name:       "discord returns 429 rate limited",
			alert:      testAlert(3),
			statusCode: http.StatusTooManyRequests,
			wantErr:    true,
			errMsg:     "rate limited",
		},
		{
			name:       "discord returns 400 error",
			alert:      testAlert(3),
			statusCode: http.StatusBadRequest,
			wantErr:    true,
			errMsg:     "discord returned 400",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var received discordWebhookPayload

			srv := httptest.NewServer(
				http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
					assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
					assert.Equal(t, http.MethodPost, r.Method)

					err := json.NewDecoder(r.Body).Decode(&received)
					assert.NoError(t, err)

					w.WriteHeader(tt.statusCode)
				}),
			)
			defer srv.Close()

			d := NewDiscordNotifier(srv.URL)
			err := d.SendAlert(context.Background(), &tt.alert)

			if tt.wantErr {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.errMsg)
				return
			}

			require.NoError(t, err)
			require.Len(t, received.Embeds, 1)

			embed := received.Embeds[0]
			assert.Equal(t, tt.wantColor, embed.Color)
			assert.Contains(t, embed.Title, tt.alert.Snapshot.DisplayName)
			assert.Equal(t, "https://share.toogoodtogo.com/item/98765", embed.URL)
			assert.Equal(t, "2026-03-14T15:00:00Z", embed.Timestamp)
			assert.Empty(t, embed.Description)

			fieldMap := make(map[string]string)
			for _, f := range embed.Fields {
				fieldMap[f.Name] = f.Value
			}
			assert.Equal(t, "3.99 EUR", fieldMap["Price"])
			assert.Equal(t, "Sat 17:00 - 17:30 UTC", fieldMap["Pickup"])
			assert.Equal(t, "Corner Bakery", fieldMap["Store"])
			assert.Equal(t, "home", fieldMap["Search"])
		})
	}
}

func TestDiscordNotifier_SendAlert_NewBagNoPickup(t *testing.T) {
	t.Parallel()

	var received discordWebhookPayload

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		err := json.NewDecoder(r.Body).Decode(&received)
		assert.NoError(t, err)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	alert := testAlert(2)
	alert.Previous = -1
	alert.Snapshot.PickupStart = nil
	alert.Snapshot.PickupEnd = nil

	d := NewDiscordNotifier(srv.URL)
	require.NoError(t, d.SendAlert(context.Background(), &alert))

	require.Len(t, received.Embeds, 1)
	assert.Equal(t, "New bag", received.Embeds[0].Description)
	for _, f := range received.Embeds[0].Fields {
		if f.Name == "Pickup" {
			assert.Equal(t, "-", f.Value)
		}
	}
}

func TestDiscordNotifier_SendBatchAlert(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name       string
		count      int
		wantEmbeds int
		wantCalls  int
	}{
		{name: "small batch", count: 3, wantEmbeds: 3, wantCalls: 1},
		{name: "capped with overflow embed", count: 14, wantEmbeds: 11, wantCalls: 1},
		{name: "empty batch sends nothing", count: 0, wantEmbeds: 0, wantCalls: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var (
				received discordWebhookPayload
				calls    int
			)
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				calls++
				err := json.NewDecoder(r.Body).Decode(&received)
				assert.NoError(t, err)
				w.WriteHeader(http.StatusNoContent)
			}))
			defer srv.Close()

			alerts := make([]domain.RestockAlert, tt.count)
			for i := range alerts {
				alerts[i] = testAlert(i + 1)
			}

			d := NewDiscordNotifier(srv.URL)
			require.NoError(t, d.SendBatchAlert(context.Background(), alerts, "home"))

			assert.Equal(t, tt.wantCalls, calls)
			assert.Len(t, received.Embeds, tt.wantEmbeds)
			if tt.count > maxEmbeds {
				assert.Contains(t, received.Embeds[maxEmbeds].Title, "and 4 more restocks for home")
			}
		})
	}
}

func TestDiscordNotifier_NetworkError(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("http://127.0.0.1:1") // nothing listening
	alert := testAlert(3)
	err := d.SendAlert(context.Background(), &alert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "sending discord webhook")
}

func TestDiscordNotifier_InvalidWebhookURL(t *testing.T) {
	t.Parallel()

	d := NewDiscordNotifier("://not-a-valid-url")
	alert := testAlert(3)
	err := d.SendAlert(context.Background(), &alert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "creating discord request")
}

func TestDiscordNotifier_RetryAfter(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Retry-After", "7")
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	alert := testAlert(3)
	err := NewDiscordNotifier(srv.URL).SendAlert(context.Background(), &alert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "retry after 7s")
}

func TestWithHTTPClient(t *testing.T) {
	t.Parallel()

	custom := &http.Client{}
	d := NewDiscordNotifier("https://example.com", WithHTTPClient(custom))
	assert.Same(t, custom, d.client)
}

func TestShareURL(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "https://share.toogoodtogo.com/item/123", ShareURL("123"))
}

func getNotificationHistogramSampleCount() uint64 {
	ch := make(chan prometheus.Metric, 1)
	metrics.NotificationDuration.Collect(ch)
	m := <-ch
	pb := &dto.Metric{}
	_ = m.Write(pb)
	return pb.GetHistogram().GetSampleCount()
}

func getNotificationFailures() float64 {
	ch := make(chan prometheus.Metric, 1)
	metrics.NotificationFailuresTotal.Collect(ch)
	m := <-ch
	pb := &dto.Metric{}
	_ = m.Write(pb)
	return pb.GetCounter().GetValue()
}

func TestSendAlert_ObservesNotificationDuration(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	before := getNotificationHistogramSampleCount()

	alert := testAlert(1)
	require.NoError(t, NewDiscordNotifier(srv.URL).SendAlert(context.Background(), &alert))

	after := getNotificationHistogramSampleCount()
	assert.Greater(t, after, before, "NotificationDuration histogram sample count should increase")
}

func TestSendAlert_CountsFailures(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	before := getNotificationFailures()

	alert := testAlert(1)
	require.Error(t, NewDiscordNotifier(srv.URL).SendAlert(context.Background(), &alert))

	assert.Greater(t, getNotificationFailures(), before)
}
