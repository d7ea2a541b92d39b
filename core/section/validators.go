package section

import (
	"regexp"
	"strconv"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"

	"github.com/trezcool/ratiba/core"
)

var (
	acadYearTag   = "acadyear"
	acadYearText  = "must be an academic year, eg. 2024-2025"
	acadYearRegex = regexp.MustCompile(`^(\d{4})-(\d{4})$`)
)

func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = validate.RegisterValidation(acadYearTag, acadYearValidation)
	core.RegisterCustomTranslation(validate, translator, acadYearTag, acadYearText)
}

// acadYearValidation accepts "YYYY-YYYY" where the second year follows the first.
func acadYearValidation(fl validator.FieldLevel) bool {
	m := acadYearRegex.FindStringSubmatch(fl.Field().String())
	if m == nil {
		return false
	}
	from, _ := strconv.Atoi(m[1])
	to, _ := strconv.Atoi(m[2])
	return to == from+1
}
