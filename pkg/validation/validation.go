// Package validation checks request inputs before they leave the
// process. Struct-level rules use go-playground/validator tags; the
// field helpers cover the formats the validator does not model, such as
// GSM numbers and installment lists.
package validation

import (
	"errors"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/mercetto/mercetto-go/pkg/types"
)

// MaxInstallments is the largest installment count the gateway accepts.
const MaxInstallments = 12

var validate = validator.New(validator.WithRequiredStructEnabled())

var gsmDigits = regexp.MustCompile(`^[0-9]+$`)

// Struct validates a request payload against its validator tags and
// converts any failures into a single Validation-kind error carrying a
// field-level detail map.
func Struct(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}

	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return types.NewValidationError("invalid request data", nil).WithErr(err)
	}

	fields := make(map[string][]string, len(verrs))
	for _, fe := range verrs {
		field := strings.ToLower(fe.Field())
		fields[field] = append(fields[field], describeTag(fe))
	}
	return types.NewValidationError("invalid request data", fields)
}

func describeTag(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "gt":
		return fmt.Sprintf("must be greater than %s", fe.Param())
	case "min":
		return fmt.Sprintf("must be at least %s", fe.Param())
	case "max":
		return fmt.Sprintf("must be at most %s", fe.Param())
	case "len":
		return fmt.Sprintf("must be exactly %s characters", fe.Param())
	case "oneof":
		return fmt.Sprintf("must be one of: %s", fe.Param())
	case "url":
		return "must be a valid URL"
	default:
		return fmt.Sprintf("failed %s validation", fe.Tag())
	}
}

// Email reports whether the address is acceptable to the gateway.
func Email(address string) bool {
	return validate.Var(address, "required,email") == nil
}

// NormalizeGSM parses a mobile number in any of the accepted notations
// (leading +90, 90, or 0, with optional spaces, dashes, and parens) and
// returns the bare ten-digit national form starting with 5.
func NormalizeGSM(number string) (string, error) {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case ' ', '-', '(', ')':
			return -1
		}
		return r
	}, number)

	cleaned = strings.TrimPrefix(cleaned, "+")
	switch {
	case strings.HasPrefix(cleaned, "90") && len(cleaned) == 12:
		cleaned = cleaned[2:]
	case strings.HasPrefix(cleaned, "0") && len(cleaned) == 11:
		cleaned = cleaned[1:]
	}

	if len(cleaned) != 10 || !gsmDigits.MatchString(cleaned) || cleaned[0] != '5' {
		return "", types.NewValidationError("gsm number is malformed", map[string][]string{
			"gsm_number": {"must be a valid mobile number"},
		})
	}
	return cleaned, nil
}

// NormalizeInstallments deduplicates, sorts, and bounds an installment
// list to 1..MaxInstallments. An empty or fully invalid list normalizes
// to single payment.
func NormalizeInstallments(installments []int) []int {
	seen := make(map[int]bool, len(installments))
	normalized := make([]int, 0, len(installments))
	for _, term := range installments {
		if term < 1 || term > MaxInstallments || seen[term] {
			continue
		}
		seen[term] = true
		normalized = append(normalized, term)
	}

	if len(normalized) == 0 {
		return []int{1}
	}
	sort.Ints(normalized)
	return normalized
}

// Amount checks that a monetary amount in minor units is positive.
func Amount(minorUnits int64) error {
	if minorUnits <= 0 {
		return types.NewValidationError("amount must be positive", map[string][]string{
			"amount": {"must be greater than zero"},
		})
	}
	return nil
}
