package httpapi

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeChecker struct {
	calls int
	err   error
}

func (f *fakeChecker) CheckOnce(_ context.Context) error {
	f.calls++
	return f.err
}

func newTestServer(checker *fakeChecker, secret string) *Server {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return NewServer(checker, secret, logrus.NewEntry(logger))
}

func TestTick_RunsCheck(t *testing.T) {
	checker := &fakeChecker{}
	srv := httptest.NewServer(newTestServer(checker, "").Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, checker.calls)
}

func TestTick_RequiresSecretWhenConfigured(t *testing.T) {
	checker := &fakeChecker{}
	srv := httptest.NewServer(newTestServer(checker, "s3cret").Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
	assert.Equal(t, 0, checker.calls, "unauthorized request must not trigger a check")

	req, err := http.NewRequest(http.MethodGet, srv.URL+"/", nil)
	require.NoError(t, err)
	req.Header.Set("Authorization", "Bearer wrong")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)

	req.Header.Set("Authorization", "Bearer s3cret")
	resp, err = http.DefaultClient.Do(req)
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 1, checker.calls)
}

func TestTick_CheckFailureReturns500(t *testing.T) {
	checker := &fakeChecker{err: fmt.Errorf("store is down")}
	srv := httptest.NewServer(newTestServer(checker, "").Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusInternalServerError, resp.StatusCode)
}

func TestHealth_OpenWithoutSecret(t *testing.T) {
	checker := &fakeChecker{}
	srv := httptest.NewServer(newTestServer(checker, "s3cret").Router())
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, 0, checker.calls)
}
