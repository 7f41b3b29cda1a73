package validators

import (
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/storefront-backend/pkg/errors"
	"github.com/angelmondragon/storefront-backend/pkg/pagination"
)

type sampleBody struct {
	OrderID string `json:"orderId" validate:"required,max=8"`
	Email   string `json:"email" validate:"omitempty,email"`
}

func TestDecodeJSONBody(t *testing.T) {
	r := httptest.NewRequest("PUT", "/", strings.NewReader(`{"orderId":"A","email":"a@x.com"}`))
	var body sampleBody
	require.NoError(t, DecodeJSONBody(r, &body))
	assert.Equal(t, "A", body.OrderID)
}

func TestDecodeJSONBodyRejects(t *testing.T) {
	for _, raw := range []string{
		`{"orderId":""}`,
		`{"orderId":"toolongvalue"}`,
		`{"orderId":"A","email":"nope"}`,
		`{"orderId":"A","extra":1}`,
		`not json`,
	} {
		r := httptest.NewRequest("PUT", "/", strings.NewReader(raw))
		var body sampleBody
		err := DecodeJSONBody(r, &body)
		require.Error(t, err, raw)
		assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation), raw)
	}
}

func TestDecodeJSONBodyRejectsTrailingAndEmpty(t *testing.T) {
	r := httptest.NewRequest("PUT", "/", strings.NewReader(`{"orderId":"A"}{"orderId":"B"}`))
	var body sampleBody
	err := DecodeJSONBody(r, &body)
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))

	r = httptest.NewRequest("PUT", "/", strings.NewReader(""))
	err = DecodeJSONBody(r, &sampleBody{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestDecodeOptionalJSONBody(t *testing.T) {
	type profile struct {
		Name string `json:"name" validate:"max=5"`
	}

	var empty profile
	require.NoError(t, DecodeOptionalJSONBody(httptest.NewRequest("PUT", "/", nil), &empty))
	assert.Equal(t, "", empty.Name)

	var filled profile
	require.NoError(t, DecodeOptionalJSONBody(httptest.NewRequest("PUT", "/", strings.NewReader(`{"name":"Ada"}`)), &filled))
	assert.Equal(t, "Ada", filled.Name)

	err := DecodeOptionalJSONBody(httptest.NewRequest("PUT", "/", strings.NewReader(`{"name":"Adelaide"}`)), &profile{})
	require.Error(t, err)
	assert.True(t, pkgerrors.HasCode(err, pkgerrors.CodeValidation))
}

func TestParsePage(t *testing.T) {
	r := httptest.NewRequest("GET", "/?page=2&size=25", nil)
	params, err := ParsePage(r)
	require.NoError(t, err)
	assert.Equal(t, pagination.Params{Page: 2, Size: 25}, params)

	r = httptest.NewRequest("GET", "/", nil)
	params, err = ParsePage(r)
	require.NoError(t, err)
	assert.Equal(t, pagination.DefaultSize, params.Size)

	r = httptest.NewRequest("GET", "/?size=500", nil)
	_, err = ParsePage(r)
	assert.Error(t, err)
}

func TestBearerToken(t *testing.T) {
	token, err := BearerToken("Bearer abc.def")
	require.NoError(t, err)
	assert.Equal(t, "abc.def", token)

	_, err = BearerToken("")
	assert.ErrorIs(t, err, ErrMissingToken)
	_, err = BearerToken("Basic xyz")
	assert.ErrorIs(t, err, ErrInvalidToken)
	_, err = BearerToken("Bearer   ")
	assert.ErrorIs(t, err, ErrInvalidToken)
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "abcdef", SanitizeString("abcdef", 0))
}
