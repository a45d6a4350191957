package schema

import (
	"fmt"
	"regexp"
	"time"

	"github.com/shopspring/decimal"
)

// ScalarType is the set of leaf value types a property field may declare.
// The three custom scalars (Date, DateTime, Decimal) serialize bit-exactly.
type ScalarType int

const (
	IntType ScalarType = iota
	FloatType
	StringType
	BooleanType
	IDType
	DateType
	DateTimeType
	DecimalType
)

func (s ScalarType) String() string {
	switch s {
	case IntType:
		return "Int"
	case FloatType:
		return "Float"
	case StringType:
		return "String"
	case BooleanType:
		return "Boolean"
	case IDType:
		return "ID"
	case DateType:
		return "Date"
	case DateTimeType:
		return "DateTime"
	case DecimalType:
		return "Decimal"
	}
	return "Unknown"
}

const (
	dateLayout     = "2006-01-02"
	dateTimeLayout = "2006-01-02T15:04:05"
)

var decimalPattern = regexp.MustCompile(`^-?[0-9]+(\.[0-9]+)?$`)

// SerializeDate formats t as "YYYY-MM-DD".
func SerializeDate(t time.Time) string {
	return t.Format(dateLayout)
}

// ParseDate parses a day-precision ISO-8601 date.
func ParseDate(s string) (time.Time, error) {
	return time.Parse(dateLayout, s)
}

// SerializeDateTime formats t as "YYYY-MM-DDThh:mm:ss", timezone-naive.
// This is the v2.0 breaking change: the prior timezone-aware
// serialization is no longer emitted.
func SerializeDateTime(t time.Time) string {
	return t.Format(dateTimeLayout)
}

// ParseDateTime parses a second-precision, timezone-naive ISO-8601
// datetime.
func ParseDateTime(s string) (time.Time, error) {
	return time.Parse(dateTimeLayout, s)
}

// SerializeDecimal formats d as ASCII digits, optional
// leading '-', optional '.', no thousands separators.
func SerializeDecimal(d decimal.Decimal) string {
	return d.String()
}

// ParseDecimal validates and parses a Decimal literal, rejecting
// representations the wire format doesn't allow (exponents, thousands
// separators, leading '+').
func ParseDecimal(s string) (decimal.Decimal, error) {
	if !decimalPattern.MatchString(s) {
		return decimal.Decimal{}, fmt.Errorf("schema: %q is not a valid Decimal literal", s)
	}
	return decimal.NewFromString(s)
}

// ParseScalar parses a raw string argument value (as it appears inside a
// @filter's value list, or as a runtime parameter) into the Go value
// appropriate for typ. It never fabricates a zero value on failure — for
// a literal @filter value the caller (compiler's buildFilter) turns the
// error into a FilterArgumentError.
func ParseScalar(typ ScalarType, raw string) (interface{}, error) {
	switch typ {
	case IntType:
		var n int64
		if _, err := fmt.Sscanf(raw, "%d", &n); err != nil {
			return nil, fmt.Errorf("schema: %q is not a valid Int", raw)
		}
		return n, nil
	case FloatType:
		var f float64
		if _, err := fmt.Sscanf(raw, "%g", &f); err != nil {
			return nil, fmt.Errorf("schema: %q is not a valid Float", raw)
		}
		return f, nil
	case StringType, IDType:
		return raw, nil
	case BooleanType:
		switch raw {
		case "true":
			return true, nil
		case "false":
			return false, nil
		}
		return nil, fmt.Errorf("schema: %q is not a valid Boolean", raw)
	case DateType:
		return ParseDate(raw)
	case DateTimeType:
		return ParseDateTime(raw)
	case DecimalType:
		return ParseDecimal(raw)
	}
	return nil, fmt.Errorf("schema: unknown scalar type %v", typ)
}
