package httpx

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

type addressPayload struct {
	Country string `json:"country" validate:"required,country"`
	State   string `json:"state" validate:"omitempty,max=64"`
}

type samplePayload struct {
	Code    string         `json:"code" validate:"required,max=8"`
	Kind    string         `json:"kind" validate:"omitempty,oneof=a b"`
	Address addressPayload `json:"address"`
}

func decodeString(t *testing.T, body string) error {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))
	var p samplePayload
	return Decode(req, &p)
}

func TestDecodeValid(t *testing.T) {
	require.NoError(t, decodeString(t, `{"code":"SAVE10","kind":"a","address":{"country":"ES"}}`))
}

func TestDecodeReportsFieldErrors(t *testing.T) {
	err := decodeString(t, `{"code":"","kind":"z","address":{"country":"ESP"}}`)
	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	require.Equal(t, "is required", derr.Fields["code"])
	require.Contains(t, derr.Fields["kind"], "one of")
	require.Equal(t, "must be a two-letter country code", derr.Fields["address.country"])
}

func TestDecodeRejectsMalformedJSON(t *testing.T) {
	err := decodeString(t, `{"code":`)
	var derr *DecodeError
	require.True(t, errors.As(err, &derr))
	require.Equal(t, "invalid payload", derr.Message)

	err = decodeString(t, ``)
	require.True(t, errors.As(err, &derr))
	require.Equal(t, "request body is required", derr.Message)
}
