package validators

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/angelmondragon/listingz-backend/pkg/errors"
)

type sampleBody struct {
	Name  string `json:"name" validate:"required,max=5"`
	Email string `json:"email" validate:"required,email"`
}

func TestDecodeJSONBodyReportsFieldsByJSONName(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"toolong","email":"nope"}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)

	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, pkgerrors.CodeValidation, typed.Code())
	details, ok := typed.Details().(map[string]string)
	require.True(t, ok)
	assert.Equal(t, "must be at most 5", details["name"])
	assert.Equal(t, "must be a valid email", details["email"])
}

func TestDecodeJSONBodyRejectsUnknownFields(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","email":"a@b.co","role":"Admin"}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestDecodeJSONBodyRejectsTrailingData(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"a","email":"a@b.co"} {"name":"b"}`))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	assert.Contains(t, err.Error(), "single JSON object")

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader("{\"name\":\"a\",\"email\":\"a@b.co\"}\n"))
	require.NoError(t, DecodeJSONBody(req, &body), "trailing whitespace is fine")
}

func TestDecodeJSONBodyCapsSize(t *testing.T) {
	oversized := `{"name":"a","email":"a@b.co","pad":"` + strings.Repeat("x", maxBodyBytes) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(oversized))
	var body sampleBody
	err := DecodeJSONBody(req, &body)
	require.Error(t, err)
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	assert.Equal(t, "request body too large", typed.Message())
}

func TestParseQueryHelpers(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=3&min_price=10.50&available=true&search=%20lamp%20", nil)

	page, err := ParseQueryInt(req, "page", 1, 1, 1000)
	require.NoError(t, err)
	assert.Equal(t, 3, page)

	size, err := ParseQueryInt(req, "page_size", 10, 1, 100)
	require.NoError(t, err)
	assert.Equal(t, 10, size)

	minPrice, err := ParseQueryDecimal(req, "min_price")
	require.NoError(t, err)
	require.NotNil(t, minPrice)
	assert.Equal(t, "10.5", minPrice.String())

	maxPrice, err := ParseQueryDecimal(req, "max_price")
	require.NoError(t, err)
	assert.Nil(t, maxPrice)

	available, err := ParseQueryBool(req, "available")
	require.NoError(t, err)
	require.NotNil(t, available)
	assert.True(t, *available)

	assert.Equal(t, "lamp", ParseQueryString(req, "search", 100))
}

func TestParseQueryHelpersRejectGarbage(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?page=x&min_price=abc&max_price=-1&available=maybe", nil)

	_, err := ParseQueryInt(req, "page", 1, 1, 100)
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryDecimal(req, "min_price")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryDecimal(req, "max_price")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
	_, err = ParseQueryBool(req, "available")
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeValidation))
}

func TestSanitizeString(t *testing.T) {
	assert.Equal(t, "abc", SanitizeString("  abcdef ", 3))
	assert.Equal(t, "abcdef", SanitizeString("abcdef", 0))
	assert.Equal(t, "oak desk", SanitizeString("oak\x00 desk\n", 100))
	assert.Equal(t, "ab", SanitizeString("ab cd", 3), "no trailing space after the cut")
}

func TestSanitizeStringCutsOnRuneBoundaries(t *testing.T) {
	input := strings.Repeat("€", 40) // 120 bytes
	out := SanitizeString(input, 100)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, input, out, "40 runes fit under a 100 rune cap")

	out = SanitizeString(input, 25)
	assert.True(t, utf8.ValidString(out))
	assert.Equal(t, 25, utf8.RuneCountInString(out))
	assert.Equal(t, strings.Repeat("€", 25), out)
}
