package server_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/certitrack/client-go/api"
	"github.com/certitrack/client-go/credentials/cookiestore"
	"github.com/certitrack/client-go/server"
	"github.com/stretchr/testify/require"
)

const (
	userAccessToken  = "user-access-token"
	adminAccessToken = "admin-access-token"
	liveRefreshToken = "live-refresh-token"
	testPassword     = "hunter2!"
)

type testConfig struct {
	apiBaseURL string
	loginPath  string
}

func (c testConfig) GetPort() string                       { return ":0" }
func (c testConfig) GetAppName() string                    { return "CertiTrack" }
func (c testConfig) GetEnv() string                        { return "TEST" }
func (c testConfig) GetCredentialsFile() string            { return "" }
func (c testConfig) GetAPIBaseURL() string                 { return c.apiBaseURL }
func (c testConfig) GetLoginPath() string {
	if c.loginPath != "" {
		return c.loginPath
	}
	return server.RouteLogin
}
func (c testConfig) GetAccessTokenHorizon() time.Duration  { return 24 * time.Hour }
func (c testConfig) GetRefreshTokenHorizon() time.Duration { return 7 * 24 * time.Hour }

func userJSON(role string) string {
	return `{"id":"user-1","email":"jane@example.com","firstName":"Jane","lastName":"Doe","role":"` + role + `","isActive":true}`
}

// fakeRemoteAPI plays the CertiTrack API: profile resolves by bearer
// token, login by password, refresh always rejects (spent tokens).
func fakeRemoteAPI(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", func(w http.ResponseWriter, r *http.Request) {
		var req api.LoginRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		w.Header().Set("Content-Type", "application/json")
		if req.Password != testPassword {
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Invalid email or password"}`))
			return
		}
		role, access := "user", userAccessToken
		if strings.HasPrefix(req.Email, "admin@") {
			role, access = "admin", adminAccessToken
		}
		w.Write([]byte(`{"message":"Login successful","data":{"user":` + userJSON(role) +
			`,"accessToken":"` + access + `","refreshToken":"` + liveRefreshToken + `"}}`))
	})
	mux.HandleFunc("GET /profile", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		switch r.Header.Get("Authorization") {
		case "Bearer " + userAccessToken:
			w.Write([]byte(`{"message":"OK","data":` + userJSON("user") + `}`))
		case "Bearer " + adminAccessToken:
			w.Write([]byte(`{"message":"OK","data":` + userJSON("admin") + `}`))
		default:
			w.WriteHeader(http.StatusUnauthorized)
			w.Write([]byte(`{"error":"Unauthorized"}`))
		}
	})
	mux.HandleFunc("POST /auth/refresh", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		w.Write([]byte(`{"error":"Token refresh failed"}`))
	})
	mux.HandleFunc("POST /auth/logout", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	remote := httptest.NewServer(mux)
	t.Cleanup(remote.Close)
	return remote
}

func newTestServer(t *testing.T) *server.Server {
	t.Helper()
	remote := fakeRemoteAPI(t)
	srv, err := server.New(testConfig{apiBaseURL: remote.URL})
	require.NoError(t, err)
	return srv
}

func get(srv *server.Server, path string, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodGet, path, nil)
	for _, cookie := range cookies {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

func postForm(srv *server.Server, path string, form url.Values, cookies ...*http.Cookie) *httptest.ResponseRecorder {
	r := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	r.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	for _, cookie := range cookies {
		r.AddCookie(cookie)
	}
	w := httptest.NewRecorder()
	srv.ServeHTTP(w, r)
	return w
}

func sessionCookies(access string) []*http.Cookie {
	cookies := []*http.Cookie{{Name: cookiestore.RefreshTokenCookie, Value: liveRefreshToken}}
	if access != "" {
		cookies = append(cookies, &http.Cookie{Name: cookiestore.AccessTokenCookie, Value: access})
	}
	return cookies
}

func responseCookie(t *testing.T, w *httptest.ResponseRecorder, name string) *http.Cookie {
	t.Helper()
	for _, cookie := range w.Result().Cookies() {
		if cookie.Name == name {
			return cookie
		}
	}
	t.Fatalf("response carries no %q cookie", name)
	return nil
}

func TestIndexIsPublic(t *testing.T) {
	srv := newTestServer(t)

	w := get(srv, "/")
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Track certifications")
}

func TestDashboardRedirectsAnonymousToLogin(t *testing.T) {
	srv := newTestServer(t)

	w := get(srv, server.RouteDashboard)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, server.RouteLogin, w.Result().Header.Get("Location"))
}

func TestLoginRedirectTargetComesFromConfig(t *testing.T) {
	remote := fakeRemoteAPI(t)
	srv, err := server.New(testConfig{apiBaseURL: remote.URL, loginPath: "/signin"})
	require.NoError(t, err)

	w := get(srv, server.RouteDashboard)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, "/signin", w.Result().Header.Get("Location"))
}

func TestDashboardRendersForAuthenticatedUser(t *testing.T) {
	srv := newTestServer(t)

	w := get(srv, server.RouteDashboard, sessionCookies(userAccessToken)...)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Welcome back, Jane")
}

func TestAdminViewRendersForAdmin(t *testing.T) {
	srv := newTestServer(t)

	w := get(srv, server.RouteAdmin, sessionCookies(adminAccessToken)...)
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Administration")
}

func TestAdminViewDeniedForNonAdmin(t *testing.T) {
	srv := newTestServer(t)

	// An authenticated non-admin gets the access-denied page, not a
	// redirect.
	w := get(srv, server.RouteAdmin, sessionCookies(userAccessToken)...)
	require.Equal(t, http.StatusForbidden, w.Code)
	require.Contains(t, w.Body.String(), "Access Denied")
	require.Empty(t, w.Result().Header.Get("Location"))
}

func TestLoginSubmitSetsCookiesAndRedirects(t *testing.T) {
	srv := newTestServer(t)

	w := postForm(srv, server.RouteLogin, url.Values{
		"email":    {"jane@example.com"},
		"password": {testPassword},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, server.RouteDashboard, w.Result().Header.Get("Location"))

	access := responseCookie(t, w, cookiestore.AccessTokenCookie)
	require.Equal(t, userAccessToken, access.Value)
	refresh := responseCookie(t, w, cookiestore.RefreshTokenCookie)
	require.Equal(t, liveRefreshToken, refresh.Value)
}

func TestLoginRejectionRendersRemoteMessage(t *testing.T) {
	srv := newTestServer(t)

	w := postForm(srv, server.RouteLogin, url.Values{
		"email":    {"jane@example.com"},
		"password": {"wrong"},
	})
	require.Equal(t, http.StatusOK, w.Code)
	require.Contains(t, w.Body.String(), "Invalid email or password")
	// The typed email survives the round trip.
	require.Contains(t, w.Body.String(), `value="jane@example.com"`)
}

func TestRegisterSubmitLogsTheUserIn(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/register", func(w http.ResponseWriter, r *http.Request) {
		var req api.RegisterRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, "Jane", req.FirstName)
		require.Equal(t, "Doe", req.LastName)

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"Registration successful","data":{"user":` + userJSON("user") +
			`,"accessToken":"` + userAccessToken + `","refreshToken":"` + liveRefreshToken + `"}}`))
	})
	remote := httptest.NewServer(mux)
	t.Cleanup(remote.Close)

	srv, err := server.New(testConfig{apiBaseURL: remote.URL})
	require.NoError(t, err)

	w := postForm(srv, server.RouteRegister, url.Values{
		"firstName": {"Jane"},
		"lastName":  {"Doe"},
		"email":     {"jane@example.com"},
		"password":  {testPassword},
	})
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, server.RouteDashboard, w.Result().Header.Get("Location"))
	require.Equal(t, userAccessToken, responseCookie(t, w, cookiestore.AccessTokenCookie).Value)
}

func TestLogoutExpiresCookies(t *testing.T) {
	srv := newTestServer(t)

	w := postForm(srv, server.RouteLogout, url.Values{}, sessionCookies(userAccessToken)...)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, server.RouteIndex, w.Result().Header.Get("Location"))

	require.Negative(t, responseCookie(t, w, cookiestore.AccessTokenCookie).MaxAge)
	require.Negative(t, responseCookie(t, w, cookiestore.RefreshTokenCookie).MaxAge)
}

func TestStaleTokensFallBackToAnonymous(t *testing.T) {
	srv := newTestServer(t)

	// The access token is rejected and the refresh exchange fails, so
	// the gated view sends the browser to log in with its cookies
	// expired.
	w := get(srv, server.RouteDashboard, sessionCookies("stale-access-token")...)
	require.Equal(t, http.StatusSeeOther, w.Code)
	require.Equal(t, server.RouteLogin, w.Result().Header.Get("Location"))

	require.Negative(t, responseCookie(t, w, cookiestore.AccessTokenCookie).MaxAge)
	require.Negative(t, responseCookie(t, w, cookiestore.RefreshTokenCookie).MaxAge)
}
