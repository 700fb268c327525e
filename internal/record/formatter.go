package record

import (
	"fmt"
	"reflect"
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// DefaultDateLayout renders dates as day.month.year
const DefaultDateLayout = "02.01.2006"

// Kind distinguishes plain text from navigable values
type Kind string

const (
	KindText Kind = "text"
	KindLink Kind = "link"
)

// Value is a formatted field value. The zero Value is empty.
type Value struct {
	Kind   Kind
	Text   string // display text
	Target string // link target, set only for KindLink
}

// IsEmpty reports whether the value has nothing to display
func (v Value) IsEmpty() bool {
	return v.Text == "" && v.Target == ""
}

// IsLink reports whether the value is a link
func (v Value) IsLink() bool {
	return v.Kind == KindLink
}

// String returns the display text
func (v Value) String() string {
	return v.Text
}

func text(s string) Value {
	return Value{Kind: KindText, Text: s}
}

func link(target, display string) Value {
	return Value{Kind: KindLink, Text: display, Target: target}
}

const dateOnly = "2006-01-02"

// inputDateLayouts are tried in order when parsing timestamp fields
var inputDateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.000-0700",
	"2006-01-02T15:04:05-0700",
}

var (
	nonDigit     = regexp.MustCompile(`\D`)
	upperLetter  = regexp.MustCompile(`([A-Z])`)
	underscores  = regexp.MustCompile(`_+`)
	multiSpace   = regexp.MustCompile(`\s{2,}`)
	customSuffix = regexp.MustCompile(`_c$`)
)

// Formatter turns raw field values into display values
type Formatter struct {
	DateLayout string
	// Location timestamps are shown in. Nil means time.Local.
	// Date-only values keep their calendar day.
	Location *time.Location
}

// NewFormatter creates a formatter. An empty layout uses DefaultDateLayout.
func NewFormatter(dateLayout string) Formatter {
	if dateLayout == "" {
		dateLayout = DefaultDateLayout
	}
	return Formatter{DateLayout: dateLayout}
}

// FormatValue formats raw with the default date layout
func FormatValue(fieldName string, raw any) Value {
	return NewFormatter("").Value(fieldName, raw)
}

// Value formats raw according to the category implied by fieldName.
// Categories are matched by case-insensitive substring in the order date,
// email, phone, website.
func (f Formatter) Value(fieldName string, raw any) Value {
	if isEmpty(raw) {
		return Value{}
	}
	name := strings.ToLower(fieldName)

	switch {
	case strings.Contains(name, "date"):
		return f.date(raw)
	case strings.Contains(name, "email"):
		s := stringify(raw)
		return link("mailto:"+s, s)
	case strings.Contains(name, "phone"):
		return phone(stringify(raw))
	case strings.Contains(name, "website"):
		s := stringify(raw)
		target := s
		if !strings.HasPrefix(strings.ToLower(s), "http") {
			target = "https://" + s
		}
		return link(target, s)
	}
	return text(stringify(raw))
}

func (f Formatter) date(raw any) Value {
	layout := f.DateLayout
	if layout == "" {
		layout = DefaultDateLayout
	}
	loc := f.Location
	if loc == nil {
		loc = time.Local
	}
	if t, ok := raw.(time.Time); ok {
		return text(t.In(loc).Format(layout))
	}

	s := stringify(raw)
	if t, err := time.Parse(dateOnly, s); err == nil {
		return text(t.Format(layout))
	}
	for _, in := range inputDateLayouts {
		if t, err := time.Parse(in, s); err == nil {
			return text(t.In(loc).Format(layout))
		}
	}
	return text(s)
}

// phone groups the digits of s in threes. A final short group never leaves a
// dangling dash.
func phone(s string) Value {
	digits := nonDigit.ReplaceAllString(s, "")
	if digits == "" {
		return Value{}
	}

	var b strings.Builder
	for i, r := range digits {
		if i > 0 && i%3 == 0 {
			b.WriteByte('-')
		}
		b.WriteRune(r)
	}
	return link("tel:"+digits, b.String())
}

// FormatLabel derives a human label from a field API name, e.g.
// "Lead.Company_Growth_Status__c" becomes "Company Growth Status".
func FormatLabel(apiName string) string {
	if i := strings.LastIndex(apiName, "."); i >= 0 {
		apiName = apiName[i+1:]
	}
	label := customSuffix.ReplaceAllString(apiName, "")
	label = upperLetter.ReplaceAllString(label, " $1")
	label = underscores.ReplaceAllString(label, " ")
	label = strings.TrimSpace(multiSpace.ReplaceAllString(label, " "))
	if label == "" {
		return ""
	}
	r, size := utf8.DecodeRuneInString(label)
	return string(unicode.ToUpper(r)) + label[size:]
}

// isEmpty treats nil, empty strings, false and numeric zero as empty
func isEmpty(raw any) bool {
	if raw == nil {
		return true
	}
	switch v := raw.(type) {
	case string:
		return v == ""
	case bool:
		return !v
	case time.Time:
		return v.IsZero()
	}

	rv := reflect.ValueOf(raw)
	switch rv.Kind() {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Float32, reflect.Float64:
		return rv.IsZero()
	case reflect.Pointer, reflect.Interface:
		return rv.IsNil()
	}
	return false
}

func stringify(raw any) string {
	switch v := raw.(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(v), 'f', -1, 32)
	case bool:
		return strconv.FormatBool(v)
	}
	return fmt.Sprint(raw)
}
