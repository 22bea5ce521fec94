package auth

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	logs "github.com/danmuck/d7alp/internal/logging"
	"github.com/danmuck/d7alp/internal/testutil/testlog"
	"github.com/gin-gonic/gin"
)

func TestStaticTokenValidate(t *testing.T) {
	testlog.Start(t)
	tests := []struct {
		name    string
		stored  string
		input   string
		wantErr error
	}{
		{name: "empty token denied", stored: "", input: "", wantErr: ErrUnauthorized},
		{name: "mismatched token denied", stored: "abc", input: "xyz", wantErr: ErrUnauthorized},
		{name: "matching token accepted", stored: "abc", input: "abc", wantErr: nil},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := (StaticToken{Token: tc.stored}).Validate(tc.input)
			if !errors.Is(err, tc.wantErr) {
				t.Fatalf("expected err %v, got %v", tc.wantErr, err)
			}
			logs.Logf("auth/static-token: stored=%q input=%q err=%v", tc.stored, tc.input, err)
		})
	}
}

func TestBearerToken(t *testing.T) {
	testlog.Start(t)
	if got, err := BearerToken("Bearer  abc "); err != nil || got != "abc" {
		t.Fatalf("expected abc, got %q %v", got, err)
	}
	for _, h := range []string{"", "Bearer", "Bearer ", "Basic abc"} {
		if _, err := BearerToken(h); !errors.Is(err, ErrMissingToken) {
			t.Fatalf("header %q: expected ErrMissingToken, got %v", h, err)
		}
	}
}

func TestRequire(t *testing.T) {
	testlog.Start(t)
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/guarded", Require(StaticToken{Token: "abc"}), func(c *gin.Context) {
		c.String(http.StatusOK, "ok")
	})

	cases := []struct {
		header string
		want   int
	}{
		{"", http.StatusUnauthorized},
		{"Bearer nope", http.StatusUnauthorized},
		{"Bearer abc", http.StatusOK},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/guarded", nil)
		if tc.header != "" {
			req.Header.Set("Authorization", tc.header)
		}
		rr := httptest.NewRecorder()
		r.ServeHTTP(rr, req)
		if rr.Code != tc.want {
			t.Fatalf("header %q: expected %d, got %d", tc.header, tc.want, rr.Code)
		}
	}
}
