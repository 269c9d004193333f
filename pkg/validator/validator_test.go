package validator

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type contactForm struct {
	FirstName string `json:"first_name" validate:"notblank"`
	Email     string `json:"email" validate:"required,email"`
	Subject   string `json:"subject" validate:"required,max=10"`
	Method    string `json:"method" validate:"omitempty,oneof=credit paypal"`
	Internal  string `json:"-" validate:"omitempty,numeric"`
}

func validForm() contactForm {
	return contactForm{FirstName: "Ada", Email: "ada@example.com", Subject: "hello"}
}

func TestValidate_Success(t *testing.T) {
	assert.NoError(t, Validate(validForm()))
}

func TestValidate_UsesJSONFieldNames(t *testing.T) {
	f := validForm()
	f.Email = "not-an-email"

	var valErr *ValidationError
	require.ErrorAs(t, Validate(f), &valErr)
	assert.Equal(t, "must be a valid email address", valErr.Fields()["email"])
}

func TestValidate_NotBlankRejectsWhitespace(t *testing.T) {
	f := validForm()
	f.FirstName = "   "

	var valErr *ValidationError
	require.ErrorAs(t, Validate(f), &valErr)
	assert.Equal(t, "is required", valErr.Fields()["first_name"])
}

func TestValidate_DashTagFallsBackToGoName(t *testing.T) {
	f := validForm()
	f.Internal = "12a"

	var valErr *ValidationError
	require.ErrorAs(t, Validate(f), &valErr)
	assert.Equal(t, "must contain only digits", valErr.Fields()["Internal"])
}

func TestValidate_MultipleErrors(t *testing.T) {
	f := contactForm{Subject: "a subject that is too long", Method: "cash"}

	var valErr *ValidationError
	require.ErrorAs(t, Validate(f), &valErr)
	fields := valErr.Fields()
	assert.Contains(t, fields, "first_name")
	assert.Contains(t, fields, "email")
	assert.Equal(t, "must be at most 10 characters", fields["subject"])
	assert.Equal(t, "must be one of: credit paypal", fields["method"])
	assert.Contains(t, valErr.Error(), "field 'email'")
}

func TestFieldErrors_ErrorIsSorted(t *testing.T) {
	err := FieldErrors{"cvv": "is invalid", "card_number": "is invalid"}
	assert.Equal(t, "field 'card_number' is invalid; field 'cvv' is invalid", err.Error())

	var f Fielder = err
	assert.Len(t, f.Fields(), 2)
}

func TestDecodeAndValidate(t *testing.T) {
	body := `{"first_name":"Ada","email":"ada@example.com","subject":"hi"}`
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader(body))

	var f contactForm
	require.NoError(t, DecodeAndValidate(req, &f))
	assert.Equal(t, "Ada", f.FirstName)
}

func TestDecodeAndValidate_BadJSON(t *testing.T) {
	req := httptest.NewRequest(http.MethodPost, "/contact", strings.NewReader("{"))

	var f contactForm
	err := DecodeAndValidate(req, &f)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "decode request body")
}
