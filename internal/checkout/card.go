package checkout

import (
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ahmad5farah/AmaKart/pkg/validator"
)

var (
	cardNumberPattern = regexp.MustCompile(`^\d{13,19}$`)
	expiryPattern     = regexp.MustCompile(`^(0[1-9]|1[0-2])/(\d{2})$`)
	cvvPattern        = regexp.MustCompile(`^\d{3,4}$`)
)

// CardForm is the credit card section of the payment step.
type CardForm struct {
	Number         string `json:"card_number"`
	Expiry         string `json:"expiry"`
	CVV            string `json:"cvv"`
	CardholderName string `json:"cardholder_name"`
}

// ValidCardNumber reports whether number, with spaces removed, is 13 to 19
// digits and passes the Luhn checksum.
func ValidCardNumber(number string) bool {
	cleaned := strings.ReplaceAll(number, " ", "")
	if !cardNumberPattern.MatchString(cleaned) {
		return false
	}

	sum := 0
	double := false
	for i := len(cleaned) - 1; i >= 0; i-- {
		d := int(cleaned[i] - '0')
		if double {
			d *= 2
			if d > 9 {
				d -= 9
			}
		}
		sum += d
		double = !double
	}
	return sum%10 == 0
}

// ValidExpiry reports whether expiry is MM/YY and not before the month of now.
func ValidExpiry(expiry string, now time.Time) bool {
	m := expiryPattern.FindStringSubmatch(expiry)
	if m == nil {
		return false
	}
	month, _ := strconv.Atoi(m[1])
	year, _ := strconv.Atoi(m[2])

	curYear := now.Year() % 100
	curMonth := int(now.Month())
	return year > curYear || (year == curYear && month >= curMonth)
}

// ValidCVV reports whether cvv is 3 or 4 digits.
func ValidCVV(cvv string) bool {
	return cvvPattern.MatchString(cvv)
}

// ValidateCard checks every card field and returns the failures keyed by
// field name, or nil when the card is acceptable.
func ValidateCard(form CardForm, now time.Time) validator.FieldErrors {
	errs := validator.FieldErrors{}
	if !ValidCardNumber(form.Number) {
		errs["card_number"] = "Please enter a valid card number"
	}
	if !ValidCVV(form.CVV) {
		errs["cvv"] = "Please enter a valid CVV"
	}
	if !ValidExpiry(form.Expiry, now) {
		errs["expiry"] = "Please enter a valid expiry date (MM/YY)"
	}
	if strings.TrimSpace(form.CardholderName) == "" {
		errs["cardholder_name"] = "Please enter the cardholder name"
	}
	if len(errs) == 0 {
		return nil
	}
	return errs
}
