package api_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/certitrack/client-go/api"
	"github.com/certitrack/client-go/users"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/require"
)

const (
	testEmail    = "jane@example.com"
	testPassword = "hunter2!"
)

func testUserJSON() string {
	return `{"id":"user-1","email":"jane@example.com","firstName":"Jane","lastName":"Doe","role":"user","isActive":true}`
}

func TestLoginDecodesEnvelope(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/api/v1/auth/login", r.URL.Path)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, testEmail, req.Email)
		require.Equal(t, testPassword, req.Password)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Login successful","data":{"user":` + testUserJSON() + `,"accessToken":"access-1","refreshToken":"refresh-1"}}`))
	}))
	defer remote.Close()

	client := api.New(remote.URL + "/api/v1")
	resp, err := client.Login(context.Background(), api.LoginRequest{Email: testEmail, Password: testPassword})
	require.NoError(t, err)
	require.Equal(t, "access-1", resp.AccessToken)
	require.Equal(t, "refresh-1", resp.RefreshToken)
	require.NotNil(t, resp.User)
	require.Equal(t, "Jane", resp.User.FirstName)
	require.Equal(t, users.RoleUser, resp.User.Role)
}

func TestLoginSurfacesRemoteErrorMessage(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Invalid email or password"}`))
	}))
	defer remote.Close()

	_, err := api.New(remote.URL).Login(context.Background(), api.LoginRequest{Email: testEmail, Password: "wrong"})
	require.Error(t, err)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, http.StatusUnauthorized, apiErr.StatusCode)
	require.Equal(t, "Invalid email or password", apiErr.Message)
	require.True(t, api.IsUnauthorized(err))
}

func TestLoginFallsBackWhenBodyHasNoError(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer remote.Close()

	_, err := api.New(remote.URL).Login(context.Background(), api.LoginRequest{Email: testEmail, Password: testPassword})
	require.Error(t, err)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Login failed", apiErr.Message)
	require.False(t, api.IsUnauthorized(err))
}

func TestRefreshCredentialsSendsRefreshToken(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/refresh", r.URL.Path)

		var req api.RefreshRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "refresh-1", req.RefreshToken)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Token refreshed","data":{"accessToken":"access-2","refreshToken":"refresh-2"}}`))
	}))
	defer remote.Close()

	pair, err := api.New(remote.URL).RefreshCredentials(context.Background(), "refresh-1")
	require.NoError(t, err)
	require.Equal(t, "access-2", pair.AccessToken)
	require.Equal(t, "refresh-2", pair.RefreshToken)
}

func TestRefreshFallsBackToGenericMessage(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer remote.Close()

	_, err := api.New(remote.URL).Refresh(context.Background(), "spent-token")
	require.Error(t, err)

	var apiErr *api.Error
	require.True(t, errors.As(err, &apiErr))
	require.Equal(t, "Token refresh failed", apiErr.Message)
}

func TestProfileDecodesUser(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/profile", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"OK","data":` + testUserJSON() + `}`))
	}))
	defer remote.Close()

	user, err := api.New(remote.URL).Profile(context.Background())
	require.NoError(t, err)
	require.Equal(t, "user-1", user.ID)
	require.Equal(t, "Jane Doe", user.FullName())
	require.False(t, user.IsAdmin())
}

func TestLogoutToleratesEmptyBody(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/logout", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer remote.Close()

	require.NoError(t, api.New(remote.URL).Logout(context.Background()))
}

func TestBaseURLTrailingSlashIsTrimmed(t *testing.T) {
	remote := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/v1/auth/logout", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer remote.Close()

	require.NoError(t, api.New(remote.URL+"/api/v1/").Logout(context.Background()))
}
