package server_test

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"testing"
	"time"

	"github.com/jrsteele09/go-session-refresh/apiclient"
	"github.com/jrsteele09/go-session-refresh/users"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

func newAPIClient(t *testing.T, baseURL string) *apiclient.Client {
	t.Helper()
	c, err := apiclient.New(baseURL, apiclient.WithLogger(zerolog.Nop()))
	require.NoError(t, err)

	_, err = c.Register(context.Background(), apiclient.Registration{Email: testEmail, Name: testName, Password: testPassword})
	require.NoError(t, err)
	return c
}

func TestAPIClient_RecoversExpiredSession(t *testing.T) {
	ts := newTestServer(t, nil)
	c := newAPIClient(t, ts.URL)
	ctx := context.Background()

	advanceTokenClock(t, time.Hour)

	resp, err := c.Get(ctx, "/profile")
	require.NoError(t, err)
	var u users.User
	require.NoError(t, resp.JSON(&u))
	require.Equal(t, testName, u.Name)

	resp, err = c.Put(ctx, "/profile", map[string]string{"name": "Grace"})
	require.NoError(t, err)
	require.NoError(t, resp.JSON(&u))
	require.Equal(t, "Grace", u.Name)
}

func TestAPIClient_ConcurrentExpiry(t *testing.T) {
	ts := newTestServer(t, nil)
	c := newAPIClient(t, ts.URL)

	advanceTokenClock(t, time.Hour)

	const n = 8
	var wg sync.WaitGroup
	errs := make([]error, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if i%2 == 0 {
				_, errs[i] = c.Get(context.Background(), "/profile")
				return
			}
			_, errs[i] = c.Put(context.Background(), "/profile", map[string]string{"name": fmt.Sprintf("n%d", i)})
		}(i)
	}
	wg.Wait()

	for _, err := range errs {
		require.NoError(t, err)
	}
	require.False(t, c.Refreshing())
}

func TestAPIClient_RefreshRejectedAfterLogout(t *testing.T) {
	ts := newTestServer(t, nil)
	c := newAPIClient(t, ts.URL)
	ctx := context.Background()

	require.NoError(t, c.Logout(ctx))

	_, err := c.Get(ctx, "/profile")
	require.ErrorIs(t, err, apiclient.ErrRefreshFailed)
	var respErr *apiclient.ResponseError
	require.ErrorAs(t, err, &respErr)
	require.Equal(t, http.StatusUnauthorized, respErr.StatusCode)
	require.Equal(t, "Invalid refresh token", respErr.Message)
}

func TestAPIClient_WrongPasswordIsNotRefreshed(t *testing.T) {
	ts := newTestServer(t, nil)
	newAPIClient(t, ts.URL)

	c, err := apiclient.New(ts.URL, apiclient.WithLogger(zerolog.Nop()))
	require.NoError(t, err)
	_, err = c.Login(context.Background(), testEmail, "Wrong123!")

	var respErr *apiclient.ResponseError
	require.ErrorAs(t, err, &respErr)
	require.Equal(t, "Invalid credentials", respErr.Message)
	require.NotErrorIs(t, err, apiclient.ErrRefreshFailed)
}
