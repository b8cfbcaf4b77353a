package judge

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestOnlineJudge(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/judge", r.URL.Path)

		var req judgeRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "English", req.Language)

		v := Verdict{AllValid: true}
		for _, word := range req.Words {
			v.Results = append(v.Results, WordVerdict{Word: word, Valid: true})
		}
		require.NoError(t, json.NewEncoder(w).Encode(v))
	}))
	defer srv.Close()

	j := NewOnline(srv.URL, time.Second)
	verdict, err := j.Judge(context.Background(), []string{"CAT", "DOG"}, "English")
	require.NoError(t, err)
	require.True(t, verdict.AllValid)
	require.Len(t, verdict.Results, 2)
}

func TestOnlineJudgeServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	j := NewOnline(srv.URL, time.Second)
	_, err := j.Judge(context.Background(), []string{"CAT"}, "English")
	require.ErrorContains(t, err, "500")
}

func TestOnlineJudgeRespectsContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Drain the body so the server starts its background read and can
		// observe the client disconnect; otherwise Done never fires and
		// srv.Close deadlocks.
		io.Copy(io.Discard, r.Body)
		<-r.Context().Done()
	}))
	defer srv.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()

	j := NewOnline(srv.URL, time.Minute)
	_, err := j.Judge(ctx, []string{"CAT"}, "English")
	require.Error(t, err)
}
