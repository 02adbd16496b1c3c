package checkouterrors

import (
	"strings"
	"unicode"
)

// Server field names that differ from the names used by the payment form
var fieldNameTranslations = map[string]string{
	"address_line1": "address",
	"address_line2": "unit",
}

// TranslateFieldErrors turns server field errors into form-field-name to message pairs.
func TranslateFieldErrors(fieldErrors []FieldError) map[string]string {
	result := make(map[string]string, len(fieldErrors))
	for _, fe := range fieldErrors {
		result[FormFieldName(fe.FieldName)] = fe.UserMessage
	}
	return result
}

func FormFieldName(serverName string) string {
	name, found := fieldNameTranslations[serverName]
	if !found {
		name = serverName
	}
	return camelCase(name)
}

func camelCase(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})

	sb := strings.Builder{}
	for i, w := range words {
		if isUpper(w) {
			w = strings.ToLower(w)
		}
		runes := []rune(w)
		if i == 0 {
			runes[0] = unicode.ToLower(runes[0])
		} else {
			runes[0] = unicode.ToUpper(runes[0])
		}
		sb.WriteString(string(runes))
	}
	return sb.String()
}

func isUpper(s string) bool {
	for _, r := range s {
		if unicode.IsLetter(r) && !unicode.IsUpper(r) {
			return false
		}
	}
	return true
}
