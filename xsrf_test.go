package session

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gofrs/uuid"
	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/securecookie"
	"github.com/rxstock/session/sessioninfo"
)

// mockRequest returns a request carrying session info but no XSRF cookie.
func mockRequest(method string, sessionID uuid.UUID) *http.Request {
	r := httptest.NewRequest(method, "/inventory", http.NoBody)

	return r.WithContext(context.WithValue(r.Context(), sessioninfo.CtxSessionInfo, &sessioninfo.SessionInfo{SID: sessionID}))
}

// mockRequestWithXSRFToken returns a request carrying an encoded XSRF cookie
// for cookieSessionID while the request session is requestSessionID.
func mockRequestWithXSRFToken(t *testing.T, method string, sc *securecookie.SecureCookie, setHeader bool, cookieSessionID, requestSessionID uuid.UUID, cookieExpiration time.Time) *http.Request {
	t.Helper()

	encoded, err := sc.Encode(defaultXSRFCookieName, map[stKey]string{
		stSessionID:       cookieSessionID.String(),
		stTokenExpiration: cookieExpiration.Format(time.UnixDate),
	})
	if err != nil {
		t.Fatalf("securecookie.Encode() error = %v", err)
	}

	r := mockRequest(method, requestSessionID)
	r.AddCookie(&http.Cookie{Name: defaultXSRFCookieName, Value: encoded})
	if setHeader {
		r.Header.Set(defaultXSRFHeaderName, encoded)
	}

	return r
}

func TestPlatformAuthSetXSRFToken(t *testing.T) {
	t.Parallel()

	sc := securecookie.New(securecookie.GenerateRandomKey(32), nil)
	sessionID := uuid.Must(uuid.FromString("de6e1a12-2d4d-4c4d-aaf1-d82cb9a9eff5"))

	tests := []struct {
		name           string
		r              *http.Request
		wantStatus     int
		wantSetsCookie bool
	}{
		{
			name:           "missing token on safe method sets cookie and serves",
			r:              mockRequest(http.MethodGet, sessionID),
			wantStatus:     http.StatusAccepted,
			wantSetsCookie: true,
		},
		{
			name:           "missing token on unsafe method redirects",
			r:              mockRequest(http.MethodPost, sessionID),
			wantStatus:     http.StatusTemporaryRedirect,
			wantSetsCookie: true,
		},
		{
			name:           "valid token on safe method serves",
			r:              mockRequestWithXSRFToken(t, http.MethodGet, sc, false, sessionID, sessionID, time.Now().Add(time.Hour)),
			wantStatus:     http.StatusAccepted,
			wantSetsCookie: false,
		},
		{
			name:           "valid token on unsafe method serves",
			r:              mockRequestWithXSRFToken(t, http.MethodPost, sc, false, sessionID, sessionID, time.Now().Add(time.Hour)),
			wantStatus:     http.StatusAccepted,
			wantSetsCookie: false,
		},
		{
			name:           "token near expiry is rewritten",
			r:              mockRequestWithXSRFToken(t, http.MethodGet, sc, false, sessionID, sessionID, time.Now().Add(10*time.Minute)),
			wantStatus:     http.StatusAccepted,
			wantSetsCookie: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &PlatformAuth{
				cookieManager: newCookieClient(sc),
				handle: func(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
					return func(w http.ResponseWriter, r *http.Request) {
						if err := handler(w, r); err != nil {
							t.Errorf("SetXSRFToken() handler error = %v", err)
						}
					}
				},
			}

			w := httptest.NewRecorder()
			p.SetXSRFToken(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusAccepted)
			})).ServeHTTP(w, tt.r)

			if w.Code != tt.wantStatus {
				t.Errorf("SetXSRFToken() status = %v, want %v", w.Code, tt.wantStatus)
			}
			if tt.wantStatus == http.StatusTemporaryRedirect {
				if got := w.Header().Get("Location"); got != "/inventory" {
					t.Errorf("SetXSRFToken() redirect location = %q, want %q", got, "/inventory")
				}
			}
			gotCookie := strings.Contains(strings.Join(w.Header().Values("Set-Cookie"), ";"), defaultXSRFCookieName+"=")
			if gotCookie != tt.wantSetsCookie {
				t.Errorf("SetXSRFToken() set cookie = %v, want %v", gotCookie, tt.wantSetsCookie)
			}
		})
	}
}

func TestPlatformAuthValidateXSRFToken(t *testing.T) {
	t.Parallel()

	sc := securecookie.New(securecookie.GenerateRandomKey(32), nil)
	sessionID := uuid.Must(uuid.FromString("de6e1a12-2d4d-4c4d-aaf1-d82cb9a9eff5"))
	otherSessionID := uuid.Must(uuid.FromString("ba4fdd80-b566-4128-b593-68614e15a753"))

	tests := []struct {
		name       string
		r          *http.Request
		wantStatus int
	}{
		{
			name:       "safe method skips validation",
			r:          mockRequest(http.MethodGet, sessionID),
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "valid token on unsafe method serves",
			r:          mockRequestWithXSRFToken(t, http.MethodPost, sc, true, sessionID, sessionID, time.Now().Add(time.Hour)),
			wantStatus: http.StatusAccepted,
		},
		{
			name:       "missing token on unsafe method is forbidden",
			r:          mockRequest(http.MethodPost, sessionID),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "missing header on unsafe method is forbidden",
			r:          mockRequestWithXSRFToken(t, http.MethodPost, sc, false, sessionID, sessionID, time.Now().Add(time.Hour)),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "token for another session is forbidden",
			r:          mockRequestWithXSRFToken(t, http.MethodPost, sc, true, otherSessionID, sessionID, time.Now().Add(time.Hour)),
			wantStatus: http.StatusForbidden,
		},
		{
			name:       "expired token is forbidden",
			r:          mockRequestWithXSRFToken(t, http.MethodPost, sc, true, sessionID, sessionID, time.Now().Add(-time.Hour)),
			wantStatus: http.StatusForbidden,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			p := &PlatformAuth{
				cookieManager: newCookieClient(sc),
				handle: func(handler func(w http.ResponseWriter, r *http.Request) error) http.HandlerFunc {
					return func(w http.ResponseWriter, r *http.Request) {
						_ = handler(w, r)
					}
				},
			}

			w := httptest.NewRecorder()
			p.ValidateXSRFToken(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
				w.WriteHeader(http.StatusAccepted)
			})).ServeHTTP(w, tt.r)

			if w.Code != tt.wantStatus {
				t.Errorf("ValidateXSRFToken() status = %v, want %v", w.Code, tt.wantStatus)
			}
		})
	}
}

func Test_setXSRFTokenCookie(t *testing.T) {
	t.Parallel()

	sc := securecookie.New(securecookie.GenerateRandomKey(32), nil)
	sessionID := uuid.Must(uuid.FromString("de6e1a12-2d4d-4c4d-aaf1-d82cb9a9eff5"))
	otherSessionID := uuid.Must(uuid.FromString("ba4fdd80-b566-4128-b593-68614e15a753"))

	tests := []struct {
		name string
		sc   *securecookie.SecureCookie
		r    *http.Request
		want bool
	}{
		{
			name: "sets cookie when missing",
			sc:   sc,
			r:    mockRequest(http.MethodGet, sessionID),
			want: true,
		},
		{
			name: "keeps a valid cookie",
			sc:   sc,
			r:    mockRequestWithXSRFToken(t, http.MethodGet, sc, false, sessionID, sessionID, time.Now().Add(time.Hour)),
			want: false,
		},
		{
			name: "rewrites a cookie near expiration",
			sc:   sc,
			r:    mockRequestWithXSRFToken(t, http.MethodGet, sc, false, sessionID, sessionID, time.Now().Add(10*time.Minute)),
			want: true,
		},
		{
			name: "rewrites a cookie bound to another session",
			sc:   sc,
			r:    mockRequestWithXSRFToken(t, http.MethodGet, sc, false, otherSessionID, otherSessionID, time.Now().Add(time.Hour)),
			want: true,
		},
		{
			name: "reports failure when encoding fails",
			sc:   &securecookie.SecureCookie{},
			r:    mockRequest(http.MethodGet, sessionID),
			want: false,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newCookieClient(tt.sc)
			w := httptest.NewRecorder()
			if got := c.setXSRFTokenCookie(w, tt.r, sessionID, xsrfCookieLife); got != tt.want {
				t.Errorf("setXSRFTokenCookie() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_hasValidXSRFToken(t *testing.T) {
	t.Parallel()

	sc := securecookie.New(securecookie.GenerateRandomKey(32), nil)
	sessionID := uuid.Must(uuid.FromString("de6e1a12-2d4d-4c4d-aaf1-d82cb9a9eff5"))
	otherSessionID := uuid.Must(uuid.FromString("ba4fdd80-b566-4128-b593-68614e15a753"))

	tests := []struct {
		name string
		r    *http.Request
		want bool
	}{
		{
			name: "valid token",
			r:    mockRequestWithXSRFToken(t, http.MethodPost, sc, true, sessionID, sessionID, time.Now().Add(time.Hour)),
			want: true,
		},
		{
			name: "missing cookie",
			r:    mockRequest(http.MethodPost, sessionID),
			want: false,
		},
		{
			name: "missing header",
			r:    mockRequestWithXSRFToken(t, http.MethodPost, sc, false, sessionID, sessionID, time.Now().Add(time.Hour)),
			want: false,
		},
		{
			name: "token bound to another session",
			r:    mockRequestWithXSRFToken(t, http.MethodPost, sc, true, otherSessionID, sessionID, time.Now().Add(time.Hour)),
			want: false,
		},
		{
			name: "expired token",
			r:    mockRequestWithXSRFToken(t, http.MethodPost, sc, true, sessionID, sessionID, time.Now().Add(-time.Hour)),
			want: false,
		},
		{
			name: "unparsable expiration",
			r: func() *http.Request {
				encoded, err := sc.Encode(defaultXSRFCookieName, map[stKey]string{
					stSessionID:       sessionID.String(),
					stTokenExpiration: "not a timestamp",
				})
				if err != nil {
					t.Fatalf("securecookie.Encode() error = %v", err)
				}
				r := mockRequest(http.MethodPost, sessionID)
				r.AddCookie(&http.Cookie{Name: defaultXSRFCookieName, Value: encoded})
				r.Header.Set(defaultXSRFHeaderName, encoded)

				return r
			}(),
			want: false,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newCookieClient(sc)
			if got := c.hasValidXSRFToken(tt.r); got != tt.want {
				t.Errorf("hasValidXSRFToken() = %v, want %v", got, tt.want)
			}
		})
	}
}

func Test_writeXSRFCookie(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		sc      *securecookie.SecureCookie
		wantErr bool
	}{
		{
			name:    "writes secure cookie",
			sc:      securecookie.New(securecookie.GenerateRandomKey(32), nil),
			wantErr: false,
		},
		{
			name:    "fails to encode",
			sc:      &securecookie.SecureCookie{},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newCookieClient(tt.sc)
			w := httptest.NewRecorder()
			err := c.writeXSRFCookie(w, xsrfCookieLife, map[stKey]string{stSessionID: "de6e1a12-2d4d-4c4d-aaf1-d82cb9a9eff5"})
			if (err != nil) != tt.wantErr {
				t.Fatalf("writeXSRFCookie() error = %v, wantErr %v", err, tt.wantErr)
			}
			if err != nil {
				return
			}

			cookie := w.Header().Get("Set-Cookie")
			if !strings.HasPrefix(cookie, defaultXSRFCookieName+"=") {
				t.Errorf("writeXSRFCookie() cookie = %q, want %q prefix", cookie, defaultXSRFCookieName+"=")
			}
			if !strings.Contains(cookie, "; Secure") {
				t.Errorf("writeXSRFCookie() cookie = %q, want Secure", cookie)
			}
			if strings.Contains(cookie, "HttpOnly") {
				t.Errorf("writeXSRFCookie() cookie = %q, must stay readable for the double submit header", cookie)
			}
		})
	}
}

func Test_readXSRFCookie(t *testing.T) {
	t.Parallel()

	sc := securecookie.New(securecookie.GenerateRandomKey(32), nil)
	cval := map[stKey]string{
		stSessionID:       "de6e1a12-2d4d-4c4d-aaf1-d82cb9a9eff5",
		stTokenExpiration: time.Now().Add(xsrfCookieLife).Format(time.UnixDate),
	}

	tests := []struct {
		name      string
		r         *http.Request
		want      map[stKey]string
		wantFound bool
	}{
		{
			name: "reads cookie",
			r: func() *http.Request {
				w := httptest.NewRecorder()
				if err := newCookieClient(sc).writeXSRFCookie(w, xsrfCookieLife, cval); err != nil {
					t.Fatalf("writeXSRFCookie() error = %v", err)
				}

				return &http.Request{Header: http.Header{"Cookie": w.Header().Values("Set-Cookie")}}
			}(),
			want:      cval,
			wantFound: true,
		},
		{
			name:      "missing cookie",
			r:         httptest.NewRequest(http.MethodGet, "/inventory", http.NoBody),
			wantFound: false,
		},
		{
			name: "undecodable cookie",
			r: func() *http.Request {
				r := httptest.NewRequest(http.MethodGet, "/inventory", http.NoBody)
				r.AddCookie(&http.Cookie{Name: defaultXSRFCookieName, Value: "garbage"})

				return r
			}(),
			wantFound: false,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newCookieClient(sc)
			got, found := c.readXSRFCookie(tt.r)
			if found != tt.wantFound {
				t.Fatalf("readXSRFCookie() found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("readXSRFCookie() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_readXSRFHeader(t *testing.T) {
	t.Parallel()

	sc := securecookie.New(securecookie.GenerateRandomKey(32), nil)
	cval := map[stKey]string{
		stSessionID:       "de6e1a12-2d4d-4c4d-aaf1-d82cb9a9eff5",
		stTokenExpiration: time.Now().Add(xsrfCookieLife).Format(time.UnixDate),
	}

	tests := []struct {
		name      string
		r         *http.Request
		want      map[stKey]string
		wantFound bool
	}{
		{
			name: "reads header",
			r: func() *http.Request {
				encoded, err := sc.Encode(defaultXSRFCookieName, cval)
				if err != nil {
					t.Fatalf("securecookie.Encode() error = %v", err)
				}
				r := httptest.NewRequest(http.MethodPost, "/inventory", http.NoBody)
				r.Header.Set(defaultXSRFHeaderName, encoded)

				return r
			}(),
			want:      cval,
			wantFound: true,
		},
		{
			name:      "missing header",
			r:         httptest.NewRequest(http.MethodPost, "/inventory", http.NoBody),
			wantFound: false,
		},
	}
	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			c := newCookieClient(sc)
			got, found := c.readXSRFHeader(tt.r)
			if found != tt.wantFound {
				t.Fatalf("readXSRFHeader() found = %v, want %v", found, tt.wantFound)
			}
			if !found {
				return
			}
			if diff := cmp.Diff(tt.want, got); diff != "" {
				t.Errorf("readXSRFHeader() mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func Test_write_read_TokenCookie(t *testing.T) {
	t.Parallel()

	c := newCookieClient(securecookie.New(securecookie.GenerateRandomKey(32), nil))
	cval := map[stKey]string{
		stSessionID:       "de6e1a12-2d4d-4c4d-aaf1-d82cb9a9eff5",
		stTokenExpiration: time.Now().Add(xsrfCookieLife).Format(time.UnixDate),
	}

	w := httptest.NewRecorder()
	if err := c.writeXSRFCookie(w, xsrfCookieLife, cval); err != nil {
		t.Fatalf("writeXSRFCookie() error = %v", err)
	}

	r := &http.Request{Header: http.Header{"Cookie": w.Header().Values("Set-Cookie")}}
	got, found := c.readXSRFCookie(r)
	if !found {
		t.Fatal("readXSRFCookie() cookie not found")
	}
	if diff := cmp.Diff(cval, got); diff != "" {
		t.Errorf("readXSRFCookie() mismatch (-want +got):\n%s", diff)
	}
}
