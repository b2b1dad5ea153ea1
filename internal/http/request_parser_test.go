package http

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"finbot/internal/core"
)

func decode(t *testing.T, body string, dst any) error {
	t.Helper()
	r := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	return DecodeJSON(httptest.NewRecorder(), r, dst)
}

func TestDecodeJSON(t *testing.T) {
	var in core.UserCreate
	require.NoError(t, decode(t, `{"telegram_id": 5, "phone_number": "+1", "extra": true}`, &in))
	assert.Equal(t, int64(5), in.TelegramID)
	assert.Equal(t, "+1", in.PhoneNumber)
}

func TestDecodeJSONErrors(t *testing.T) {
	cases := []struct {
		name  string
		body  string
		field string
	}{
		{"empty", ``, ""},
		{"malformed", `{"telegram_id":`, ""},
		{"syntax", `{"telegram_id" 1}`, ""},
		{"not an object", `[1, 2]`, ""},
		{"wrong type", `{"telegram_id": "abc"}`, "telegram_id"},
		{"trailing data", `{"telegram_id": 1} {}`, ""},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var in core.UserCreate
			err := decode(t, tc.body, &in)
			require.ErrorIs(t, err, core.ErrValidation)
			var coreErr *core.Error
			require.ErrorAs(t, err, &coreErr)
			assert.Equal(t, tc.field, coreErr.Field)
		})
	}
}

func TestDecodeJSONPassesDomainErrors(t *testing.T) {
	var in core.ExpenseCreate
	err := decode(t, `{"title": "x", "amount": 10.005}`, &in)
	require.ErrorIs(t, err, core.ErrValidation)
	var coreErr *core.Error
	require.ErrorAs(t, err, &coreErr)
	assert.Equal(t, "amount", coreErr.Field)
}

func TestDecodeJSONBodyLimit(t *testing.T) {
	body := `{"title": "` + strings.Repeat("a", MaxBodyBytes) + `"}`
	var in core.ExpenseCreate
	err := decode(t, body, &in)
	assert.ErrorIs(t, err, core.ErrValidation)
}

func TestParsePageParams(t *testing.T) {
	cases := []struct {
		name    string
		query   url.Values
		want    core.Page
		wantErr bool
	}{
		{"defaults", url.Values{}, core.Page{Offset: 0, Limit: core.DefaultPageLimit}, false},
		{"explicit", url.Values{"offset": {"10"}, "limit": {"5"}}, core.Page{Offset: 10, Limit: 5}, false},
		{"clamped", url.Values{"limit": {"1000"}}, core.Page{Offset: 0, Limit: core.MaxPageLimit}, false},
		{"zero limit", url.Values{"limit": {"0"}}, core.Page{Offset: 0, Limit: 0}, false},
		{"negative offset", url.Values{"offset": {"-1"}}, core.Page{}, true},
		{"not a number", url.Values{"limit": {"ten"}}, core.Page{}, true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ParsePageParams(tc.query)
			if tc.wantErr {
				assert.ErrorIs(t, err, core.ErrValidation)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tc.want, got)
		})
	}
}

func TestPathID(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/users/7", nil)
	r.SetPathValue("id", "7")
	id, err := pathID(r, "id")
	require.NoError(t, err)
	assert.Equal(t, int64(7), id)

	for _, raw := range []string{"abc", "0", "-3", ""} {
		r.SetPathValue("id", raw)
		_, err := pathID(r, "id")
		assert.ErrorIs(t, err, core.ErrValidation, "raw %q", raw)
	}
}

func TestClientIP(t *testing.T) {
	r := httptest.NewRequest(http.MethodGet, "/", nil)
	r.RemoteAddr = "10.0.0.1:1234"
	assert.Equal(t, "10.0.0.1", ClientIP(r))

	r.Header.Set("X-Real-IP", "10.0.0.2")
	assert.Equal(t, "10.0.0.2", ClientIP(r))

	r.Header.Set("X-Forwarded-For", "203.0.113.9, 10.0.0.3")
	assert.Equal(t, "203.0.113.9", ClientIP(r))
}
