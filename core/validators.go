package core

import (
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/locales/es"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	es_translations "github.com/go-playground/validator/v10/translations/es"
)

var (
	// custom validation tags & texts
	alphaNumUnderTag   = "alphanum_"
	alphaNumUnderText  = "solo se permiten letras, números y guiones bajos"
	alphaNumUnderRegex = regexp.MustCompile(`^\w+$`)

	notBlankTag  = "notblank"
	notBlankText = "este campo no puede estar vacío"

	dniTag   = "dni"
	dniText  = "el DNI debe tener 8 dígitos"
	dniRegex = regexp.MustCompile(`^\d{8}$`)

	rucTag   = "ruc"
	rucText  = "el RUC debe tener 11 dígitos"
	rucRegex = regexp.MustCompile(`^\d{11}$`)

	periodoTag   = "periodo"
	periodoText  = "el periodo debe tener el formato AAAA-I o AAAA-II"
	periodoRegex = regexp.MustCompile(`^\d{4}-(I|II)$`)

	requiredTag     = "required"
	requiredWithTag = "required_with"
	requiredText    = "este campo es obligatorio"
	oneOfTag        = "oneof"
	oneOfText       = "valor no permitido"
)

// NewTranslator returns the Spanish translator used for validation messages.
func NewTranslator() ut.Translator {
	_es := es.New()
	uni := ut.New(_es, _es)
	translator, _ := uni.GetTranslator("es")
	return translator
}

// InitValidators registers translations and custom validations shared by all apps.
func InitValidators(validate *validator.Validate, translator ut.Translator) {
	_ = es_translations.RegisterDefaultTranslations(validate, translator)

	// Use JSON tag names for errors instead of Go struct names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})

	// register custom validators
	_ = validate.RegisterValidation(alphaNumUnderTag, regexValidation(alphaNumUnderRegex))
	RegisterCustomTranslation(validate, translator, alphaNumUnderTag, alphaNumUnderText)

	_ = validate.RegisterValidation(notBlankTag, notBlankValidation)
	RegisterCustomTranslation(validate, translator, notBlankTag, notBlankText)

	_ = validate.RegisterValidation(dniTag, regexValidation(dniRegex))
	RegisterCustomTranslation(validate, translator, dniTag, dniText)

	_ = validate.RegisterValidation(rucTag, regexValidation(rucRegex))
	RegisterCustomTranslation(validate, translator, rucTag, rucText)

	_ = validate.RegisterValidation(periodoTag, regexValidation(periodoRegex))
	RegisterCustomTranslation(validate, translator, periodoTag, periodoText)

	RegisterCustomTranslation(validate, translator, requiredTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, requiredWithTag, requiredText, true)
	RegisterCustomTranslation(validate, translator, oneOfTag, oneOfText, true)
}

// RegisterCustomTranslation registers a custom translation for the specified validation tag.
func RegisterCustomTranslation(validate *validator.Validate, translator ut.Translator, tag, text string, override ...bool) {
	var ovrd bool
	if len(override) > 0 {
		ovrd = override[0]
	}
	_ = validate.RegisterTranslation(
		tag, translator,
		func(t ut.Translator) error { return t.Add(tag, text, ovrd) },
		func(t ut.Translator, fe validator.FieldError) string {
			s, _ := t.T(tag, fe.Field())
			return s
		},
	)
}

// ValidPeriodo reports whether s looks like an academic period, eg. "2024-I".
func ValidPeriodo(s string) bool {
	return periodoRegex.MatchString(s)
}

// Custom Global Validators

func notBlankValidation(fl validator.FieldLevel) bool {
	if str, ok := fl.Field().Interface().(string); ok {
		return strings.TrimSpace(str) != ""
	}
	return false
}

// regexValidation validates string fields against re. Empty strings are left to `required`.
func regexValidation(re *regexp.Regexp) validator.Func {
	return func(fl validator.FieldLevel) bool {
		s := fl.Field().String()
		return s == "" || re.MatchString(s)
	}
}
