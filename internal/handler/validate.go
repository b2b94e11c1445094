package handler

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/big"
	"net/http"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/quentinikeno/Springboard-SEC-Cummulative-Project-2-Jobly/internal/apperror"
)

const maxBodyBytes = 1 << 20

var (
	validate  = newValidator()
	maxEquity = big.NewRat(1, 1)
	decimalRe = regexp.MustCompile(`^(\d+(\.\d*)?|\.\d+)$`)
)

var errorMessages = map[string]string{
	"required": "instance requires property %q",
	"email":    "instance.%s is not a valid email address",
	"min":      "instance.%s does not meet minimum length of %s",
	"max":      "instance.%s does not meet maximum length of %s",
	"gte":      "instance.%s must be greater than or equal to %s",
	"equity":   "instance.%s must be a decimal between 0 and 1",
}

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	if err := v.RegisterValidation("equity", isEquity); err != nil {
		panic(err)
	}
	return v
}

// isEquity accepts decimal strings between 0 and 1 inclusive. The bound is
// checked exactly, as the NUMERIC column would.
func isEquity(fl validator.FieldLevel) bool {
	s := fl.Field().String()
	if !decimalRe.MatchString(s) {
		return false
	}
	r, ok := new(big.Rat).SetString(s)
	return ok && r.Sign() >= 0 && r.Cmp(maxEquity) <= 0
}

func parseMessage(e validator.FieldError) string {
	msg, ok := errorMessages[e.Tag()]
	if !ok {
		return fmt.Sprintf("instance.%s is invalid: %s", e.Field(), e.Tag())
	}
	if strings.Count(msg, "%") == 2 {
		return fmt.Sprintf(msg, e.Field(), e.Param())
	}
	return fmt.Sprintf(msg, e.Field())
}

// validateStruct returns a BadRequest listing every failed rule, or nil.
func validateStruct(s interface{}) error {
	err := validate.Struct(s)
	if err == nil {
		return nil
	}
	var validationErrs validator.ValidationErrors
	if !errors.As(err, &validationErrs) {
		return err
	}
	messages := make([]string, 0, len(validationErrs))
	for _, e := range validationErrs {
		messages = append(messages, parseMessage(e))
	}
	return apperror.Invalid(messages)
}

// decodeJSON decodes the request body into dst and validates it. Unknown
// fields are rejected.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	decoder := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		if err == io.EOF {
			return apperror.BadRequest("request body must not be empty")
		}
		return apperror.Invalid([]string{err.Error()})
	}
	if decoder.More() {
		return apperror.BadRequest("request body must contain a single JSON object")
	}
	return validateStruct(dst)
}
