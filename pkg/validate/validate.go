// Package validate runs struct-tag validation for request payloads.
//
// Rules are comma-separated in the `validate` tag:
//
//	required            value must not be zero or blank
//	nullable            a zero value skips the remaining rules
//	email               plausible email address
//	url                 absolute http(s) URL
//	slug                lowercase letters, digits and single hyphens
//	phone               7-15 digits, optional leading +
//	digits=N            exactly N decimal digits
//	min=N / max=N       string: rune length; number: value
//	gt=N / gte=N / lte=N
//	between=A:B         number or string length within [A, B]
//	in=a|b|c            one of the listed values
//	confirmed           equals the sibling field <name>_confirmation
//	dive                validate the nested struct (or each element of a
//	                    slice of structs); errors are keyed "parent.child"
//
//	type AddressInput struct {
//	    Pincode string `json:"pincode" validate:"required,digits=6"`
//	}
package validate

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"unicode/utf8"
)

// Errors maps a JSON field path to its first failing message.
type Errors map[string]string

// Struct validates the exported fields of v that carry a `validate` tag.
func Struct(v any) Errors {
	errs := Errors{}
	rv := reflect.ValueOf(v)
	for rv.Kind() == reflect.Pointer {
		if rv.IsNil() {
			return errs
		}
		rv = rv.Elem()
	}
	if rv.Kind() != reflect.Struct {
		return errs
	}
	walk(rv, "", errs)
	return errs
}

// HasErrors reports whether errs holds any failure.
func HasErrors(errs Errors) bool { return len(errs) > 0 }

type ruleFunc func(f field, param string) string

type field struct {
	name   string
	value  reflect.Value
	parent reflect.Value
}

var rules map[string]ruleFunc

func init() {
	rules = map[string]ruleFunc{
		"required":  ruleRequired,
		"email":     ruleEmail,
		"url":       ruleURL,
		"slug":      ruleSlug,
		"phone":     rulePhone,
		"digits":    ruleDigits,
		"min":       ruleMin,
		"max":       ruleMax,
		"gt":        ruleGt,
		"gte":       ruleGte,
		"lte":       ruleLte,
		"between":   ruleBetween,
		"in":        ruleIn,
		"confirmed": ruleConfirmed,
	}
}

func walk(rv reflect.Value, prefix string, errs Errors) {
	rt := rv.Type()
	for i := 0; i < rt.NumField(); i++ {
		sf := rt.Field(i)
		if !sf.IsExported() {
			continue
		}
		tag := sf.Tag.Get("validate")
		if tag == "" {
			continue
		}

		f := field{name: prefix + jsonName(sf), value: rv.Field(i), parent: rv}
		list := strings.Split(tag, ",")

		if contains(list, "nullable") && isZero(f.value) {
			continue
		}

		failed := false
		for _, rule := range list {
			key, param, _ := strings.Cut(strings.TrimSpace(rule), "=")
			if key == "nullable" || key == "dive" {
				continue
			}
			fn, ok := rules[key]
			if !ok {
				continue
			}
			if msg := fn(f, param); msg != "" {
				errs[f.name] = msg
				failed = true
				break
			}
		}

		if !failed && contains(list, "dive") {
			dive(f, errs)
		}
	}
}

func dive(f field, errs Errors) {
	v := indirect(f.value)
	switch v.Kind() {
	case reflect.Struct:
		walk(v, f.name+".", errs)
	case reflect.Slice, reflect.Array:
		for i := 0; i < v.Len(); i++ {
			if el := indirect(v.Index(i)); el.Kind() == reflect.Struct {
				walk(el, fmt.Sprintf("%s.%d.", f.name, i), errs)
			}
		}
	}
}

// ─── Rules ────────────────────────────────────────────────────────────────────

var (
	emailRE = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	slugRE  = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	phoneRE = regexp.MustCompile(`^\+?[0-9]{7,15}$`)
	digitRE = regexp.MustCompile(`^[0-9]+$`)
)

func ruleRequired(f field, _ string) string {
	if isZero(f.value) {
		return fmt.Sprintf("The %s field is required.", f.name)
	}
	return ""
}

func ruleEmail(f field, _ string) string {
	if !emailRE.MatchString(text(f.value)) {
		return fmt.Sprintf("The %s must be a valid email address.", f.name)
	}
	return ""
}

func ruleURL(f field, _ string) string {
	u, err := url.ParseRequestURI(text(f.value))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Sprintf("The %s must be a valid URL.", f.name)
	}
	return ""
}

func ruleSlug(f field, _ string) string {
	if !slugRE.MatchString(text(f.value)) {
		return fmt.Sprintf("The %s may only contain lowercase letters, numbers and hyphens.", f.name)
	}
	return ""
}

func rulePhone(f field, _ string) string {
	s := strings.NewReplacer(" ", "", "-", "").Replace(text(f.value))
	if !phoneRE.MatchString(s) {
		return fmt.Sprintf("The %s must be a valid phone number.", f.name)
	}
	return ""
}

func ruleDigits(f field, param string) string {
	s := text(f.value)
	if !digitRE.MatchString(s) || strconv.Itoa(len(s)) != param {
		return fmt.Sprintf("The %s must be %s digits.", f.name, param)
	}
	return ""
}

func ruleMin(f field, param string) string {
	n := parseFloat(param)
	if isNumeric(f.value) {
		if number(f.value) < n {
			return fmt.Sprintf("The %s must be at least %s.", f.name, param)
		}
	} else if float64(length(f.value)) < n {
		return fmt.Sprintf("The %s must be at least %s characters.", f.name, param)
	}
	return ""
}

func ruleMax(f field, param string) string {
	n := parseFloat(param)
	if isNumeric(f.value) {
		if number(f.value) > n {
			return fmt.Sprintf("The %s must not be greater than %s.", f.name, param)
		}
	} else if float64(length(f.value)) > n {
		return fmt.Sprintf("The %s must not exceed %s characters.", f.name, param)
	}
	return ""
}

func ruleGt(f field, param string) string {
	if number(f.value) <= parseFloat(param) {
		return fmt.Sprintf("The %s must be greater than %s.", f.name, param)
	}
	return ""
}

func ruleGte(f field, param string) string {
	if number(f.value) < parseFloat(param) {
		return fmt.Sprintf("The %s must be greater than or equal to %s.", f.name, param)
	}
	return ""
}

func ruleLte(f field, param string) string {
	if number(f.value) > parseFloat(param) {
		return fmt.Sprintf("The %s must be less than or equal to %s.", f.name, param)
	}
	return ""
}

func ruleBetween(f field, param string) string {
	lo, hi, ok := strings.Cut(param, ":")
	if !ok {
		return ""
	}
	a, b := parseFloat(lo), parseFloat(hi)
	if isNumeric(f.value) {
		if n := number(f.value); n < a || n > b {
			return fmt.Sprintf("The %s must be between %s and %s.", f.name, lo, hi)
		}
	} else if l := float64(length(f.value)); l < a || l > b {
		return fmt.Sprintf("The %s must be between %s and %s characters.", f.name, lo, hi)
	}
	return ""
}

func ruleIn(f field, param string) string {
	s := text(f.value)
	for _, opt := range strings.Split(param, "|") {
		if s == opt {
			return ""
		}
	}
	return fmt.Sprintf("The selected %s is invalid.", f.name)
}

func ruleConfirmed(f field, _ string) string {
	want := f.name[strings.LastIndex(f.name, ".")+1:] + "_confirmation"
	rt := f.parent.Type()
	for i := 0; i < rt.NumField(); i++ {
		if jsonName(rt.Field(i)) == want {
			if text(f.parent.Field(i)) == text(f.value) {
				return ""
			}
			break
		}
	}
	return fmt.Sprintf("The %s confirmation does not match.", f.name)
}

// ─── Helpers ──────────────────────────────────────────────────────────────────

func indirect(v reflect.Value) reflect.Value {
	for v.Kind() == reflect.Pointer || v.Kind() == reflect.Interface {
		if v.IsNil() {
			return v
		}
		v = v.Elem()
	}
	return v
}

func isZero(v reflect.Value) bool {
	switch v.Kind() {
	case reflect.Pointer, reflect.Interface:
		return v.IsNil()
	case reflect.String:
		return strings.TrimSpace(v.String()) == ""
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len() == 0
	case reflect.Bool:
		return false
	}
	return v.IsZero()
}

func isNumeric(v reflect.Value) bool {
	switch indirect(v).Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return true
	}
	return false
}

func number(v reflect.Value) float64 {
	v = indirect(v)
	switch v.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return float64(v.Int())
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return float64(v.Uint())
	case reflect.Float32, reflect.Float64:
		return v.Float()
	case reflect.String:
		return parseFloat(v.String())
	}
	return 0
}

func text(v reflect.Value) string {
	v = indirect(v)
	if !v.IsValid() || (v.Kind() == reflect.Pointer && v.IsNil()) {
		return ""
	}
	if v.Kind() == reflect.String {
		return v.String()
	}
	return fmt.Sprint(v.Interface())
}

func length(v reflect.Value) int {
	v = indirect(v)
	switch v.Kind() {
	case reflect.Slice, reflect.Map, reflect.Array:
		return v.Len()
	}
	return utf8.RuneCountInString(text(v))
}

func parseFloat(s string) float64 {
	f, _ := strconv.ParseFloat(strings.TrimSpace(s), 64)
	return f
}

func jsonName(f reflect.StructField) string {
	name, _, _ := strings.Cut(f.Tag.Get("json"), ",")
	if name == "" || name == "-" {
		return strings.ToLower(f.Name)
	}
	return name
}

func contains(list []string, target string) bool {
	for _, r := range list {
		if strings.TrimSpace(r) == target {
			return true
		}
	}
	return false
}
