package client

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/raphaelgruber/flirtassist/internal/metrics"
	"github.com/raphaelgruber/flirtassist/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestSuggestions(t *testing.T) {
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		body, _ := io.ReadAll(r.Body)
		require.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"suggestions":["a","b","c"],"ocrText":"hi there","title":"T1"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	resp, err := c.RequestSuggestions(context.Background(), Request{Text: "hi there", Mood: models.MoodFunny})
	require.NoError(t, err)

	assert.Equal(t, []string{"a", "b", "c"}, resp.Suggestions)
	assert.Equal(t, "hi there", resp.OCRText)
	assert.Equal(t, "T1", resp.Title)

	assert.Equal(t, "Funny", got["mood"])
	assert.Equal(t, "hi there", got["text"])
	assert.NotContains(t, got, "imageBase64")
	assert.NotContains(t, got, "thread")
}

func TestRequestSuggestionsSendsThread(t *testing.T) {
	var got Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"suggestions":[]}`))
	}))
	defer srv.Close()

	now := models.NewTimestamp(time.Now())
	thread := &models.Thread{
		ID:    "t1",
		Title: "Sam",
		Mood:  models.MoodMysterious,
		Context: []models.Message{
			{ID: "m1", Role: models.RoleOther, Text: "what are you up to", TS: now},
		},
		CreatedAt: now,
		UpdatedAt: now,
	}

	_, err := New(srv.URL).RequestSuggestions(context.Background(), Request{
		ImageBase64: "aGVsbG8=",
		Mood:        models.MoodMysterious,
		Thread:      thread,
	})
	require.NoError(t, err)

	require.NotNil(t, got.Thread)
	assert.Equal(t, "t1", got.Thread.ID)
	assert.Equal(t, thread.Context, got.Thread.Context)
	assert.Equal(t, "aGVsbG8=", got.ImageBase64)
}

func TestRequestSuggestionsErrors(t *testing.T) {
	tests := []struct {
		name       string
		status     int
		body       string
		wantStatus int
		wantMsg    string
	}{
		{
			name:       "server error with body",
			status:     http.StatusInternalServerError,
			body:       "server error",
			wantStatus: 500,
			wantMsg:    "suggestion request failed: 500 server error",
		},
		{
			name:       "empty body falls back to status text",
			status:     http.StatusBadGateway,
			body:       "",
			wantStatus: 502,
			wantMsg:    "suggestion request failed: 502 Bad Gateway",
		},
		{
			name:       "undecodable success body",
			status:     http.StatusOK,
			body:       "<html>",
			wantStatus: 0,
			wantMsg:    "suggestion request failed: decode response",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			resp, err := New(srv.URL).RequestSuggestions(context.Background(), Request{Mood: models.MoodFunny})
			require.Error(t, err)
			assert.Nil(t, resp)

			var reqErr *RequestError
			require.ErrorAs(t, err, &reqErr)
			assert.Equal(t, tt.wantStatus, reqErr.StatusCode)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestRequestSuggestionsNetworkError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := New(url).RequestSuggestions(context.Background(), Request{Mood: models.MoodSexy})
	require.Error(t, err)

	var reqErr *RequestError
	require.ErrorAs(t, err, &reqErr)
	assert.Zero(t, reqErr.StatusCode)
	assert.NotNil(t, errors.Unwrap(err))
}

func TestRequestSuggestionsCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := New(srv.URL).RequestSuggestions(ctx, Request{Mood: models.MoodFunny})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNoEndpoint(t *testing.T) {
	_, err := New("  ").RequestSuggestions(context.Background(), Request{Mood: models.MoodFunny})
	assert.ErrorIs(t, err, ErrNoEndpoint)
}

func TestMetricsRecorded(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("fail") != "" {
			http.Error(w, "nope", http.StatusInternalServerError)
			return
		}
		_, _ = w.Write([]byte(`{"suggestions":["x"]}`))
	}))
	defer srv.Close()

	m := metrics.NewCollector()
	_, err := New(srv.URL, WithMetrics(m)).RequestSuggestions(context.Background(), Request{Mood: models.MoodFunny})
	require.NoError(t, err)
	_, err = New(srv.URL+"?fail=1", WithMetrics(m)).RequestSuggestions(context.Background(), Request{Mood: models.MoodFunny})
	require.Error(t, err)

	snap := m.Snapshot()
	require.NotNil(t, snap.WebhookRequest)
	assert.Equal(t, int64(1), snap.WebhookRequest.Count)
	assert.Equal(t, int64(1), snap.Failures[metrics.OpWebhookRequest])
}
