package source

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"salmonsurvey/internal/core"
)

func TestDecodePage(t *testing.T) {
	tests := []struct {
		name     string
		body     string
		wantErr  error
		wantLen  int
		wantNext string
	}{
		{name: "null next", body: `{"results": [], "next": null}`},
		{name: "results with null next", body: `{"results": [{"_id": 1}], "next": null}`, wantLen: 1},
		{name: "with next", body: `{"results": [], "next": "http://x/?page=2"}`, wantNext: "http://x/?page=2"},
		{name: "missing results", body: `{"next": null}`, wantErr: ErrMalformedPage},
		{name: "missing next", body: `{"results": []}`, wantErr: ErrMalformedPage},
		{name: "empty next", body: `{"results": [], "next": ""}`, wantErr: ErrMalformedPage},
		{name: "blank next", body: `{"results": [], "next": "  "}`, wantErr: ErrMalformedPage},
		{name: "not json", body: `<html>`, wantErr: ErrMalformedPage},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p, err := DecodePage([]byte(tt.body))
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Len(t, p.Results, tt.wantLen)
			assert.Equal(t, tt.wantNext, p.Next)
			assert.Equal(t, tt.wantNext != "", p.HasNext())
		})
	}
}

func TestRawRecordToRecord(t *testing.T) {
	body := `{"next": null, "results": [
		{"_id": 101, "Survey_Date": "2023-10-30", "Type": "Dead", "Species": "Chum"},
		{"_id": "102", "Survey_Date": "2023-10-30", "Quantity": 3, "Type": "Live", "Species": "Chum"},
		{"_id": "103", "Survey_Date": "2023-10-31", "Quantity": "2", "Type": " Redd "},
		{"_id": "104", "Survey_Date": "2023-10-31", "Quantity": null, "Type": "Live", "Species": "Coho"}
	]}`
	p, err := DecodePage([]byte(body))
	require.NoError(t, err)

	var got []core.Record
	for _, raw := range p.Results {
		r, err := raw.ToRecord()
		require.NoError(t, err)
		got = append(got, r)
	}

	assert.Equal(t, "101", got[0].ID)
	assert.Equal(t, int64(1), got[0].Quantity, "missing quantity defaults to 1")
	assert.Equal(t, int64(3), got[1].Quantity)
	assert.Equal(t, int64(2), got[2].Quantity)
	assert.Equal(t, "Redd", got[2].Status)
	assert.Equal(t, int64(1), got[3].Quantity, "null quantity defaults to 1")
	assert.Equal(t, "2023-10-31", got[3].Date.String())
}

func TestRawRecordToRecord_Invalid(t *testing.T) {
	_, err := RawRecord{ID: "1", SurveyDate: "yesterday"}.ToRecord()
	assert.ErrorIs(t, err, core.ErrInvalidDate)

	_, err = RawRecord{SurveyDate: "2023-10-30"}.ToRecord()
	assert.ErrorIs(t, err, core.ErrEmptyID)

	_, err = DecodePage([]byte(`{"results": [{"_id": "1", "Quantity": "lots"}], "next": null}`))
	assert.ErrorIs(t, err, ErrMalformedPage)
}

func TestRawRecordToRecord_MissingDate(t *testing.T) {
	for _, date := range []string{"", "   "} {
		_, err := RawRecord{ID: "x", SurveyDate: date}.ToRecord()
		assert.ErrorIs(t, err, ErrMissingDate)
		assert.NotErrorIs(t, err, core.ErrInvalidDate)
	}
}

func TestHTTPClient_FetchPage(t *testing.T) {
	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"results": [{"_id": "1", "Survey_Date": "2023-10-30"}], "next": null}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(5*time.Second, WithToken("secret"))
	p, err := c.FetchPage(context.Background(), srv.URL)
	require.NoError(t, err)
	assert.Len(t, p.Results, 1)
	assert.False(t, p.HasNext())
	assert.Equal(t, "Token secret", gotAuth)
}

func TestHTTPClient_FetchPage_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "nope", http.StatusForbidden)
	}))
	defer srv.Close()

	_, err := NewHTTPClient(5*time.Second).FetchPage(context.Background(), srv.URL)
	var se *StatusError
	require.True(t, errors.As(err, &se))
	assert.Equal(t, http.StatusForbidden, se.StatusCode)
	assert.Contains(t, se.Body, "nope")
}

func TestHTTPClient_FetchPage_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"results": [], "next": null}`))
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewHTTPClient(5*time.Second).FetchPage(ctx, srv.URL)
	assert.ErrorIs(t, err, context.Canceled)
}
