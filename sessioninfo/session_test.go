package sessioninfo

import (
	"context"
	"net/http"
	"net/http/httptest"
	"reflect"
	"testing"

	"github.com/gofrs/uuid"
	"github.com/rxstock/session/access"
	"github.com/rxstock/session/sessiontypes"
)

func Test_sessionInfoFromRequest(t *testing.T) {
	t.Parallel()

	sid := uuid.Must(uuid.FromString("de6e1a12-2d4d-4c4d-aaf1-d82cb9a9eff5"))
	tests := []struct {
		name      string
		r         *http.Request
		want      *SessionInfo
		wantPanic bool
	}{
		{
			name:      "does not find session info in request",
			r:         httptest.NewRequest(http.MethodGet, "/testPath", http.NoBody),
			wantPanic: true,
		},
		{
			name: "gets session info from request",
			r: func() *http.Request {
				req := httptest.NewRequest(http.MethodGet, "/testPath", http.NoBody)
				req = req.WithContext(context.WithValue(context.Background(), CtxSessionInfo, &SessionInfo{SID: sid}))

				return req
			}(),
			want: &SessionInfo{SID: sid},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			defer func() {
				if r := recover(); (r != nil) != tt.wantPanic {
					t.Errorf("FromRequest() panic = %v, wantPanic %v", r, tt.wantPanic)
				}
			}()

			if got := FromRequest(tt.r); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FromRequest() = %v, want %v", got, tt.want)
			}
			if got := FromCtx(tt.r.Context()); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FromCtx() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestSessionInfo_Authenticated(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		si   *SessionInfo
		want bool
	}{
		{
			name: "nil session info",
			si:   nil,
			want: false,
		},
		{
			name: "anonymous session",
			si:   &SessionInfo{},
			want: false,
		},
		{
			name: "signed-in session",
			si:   &SessionInfo{Identity: &sessiontypes.Identity{ID: "u-1", Role: access.RoleCashier}},
			want: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := tt.si.Authenticated(); got != tt.want {
				t.Errorf("SessionInfo.Authenticated() = %v, want %v", got, tt.want)
			}
			if tt.want && tt.si.Role() != access.RoleCashier {
				t.Errorf("SessionInfo.Role() = %q, want %q", tt.si.Role(), access.RoleCashier)
			}
			if !tt.want && tt.si.Role() != "" {
				t.Errorf("SessionInfo.Role() = %q, want empty", tt.si.Role())
			}
		})
	}
}
