package schema_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/traverseql/gqlc/schema"
)

func TestSerializeDate(t *testing.T) {
	d := time.Date(2017, 3, 22, 0, 0, 0, 0, time.UTC)
	assert.Equal(t, "2017-03-22", schema.SerializeDate(d))
}

func TestSerializeDateTimeIsTimezoneNaive(t *testing.T) {
	loc := time.FixedZone("UTC+5", 5*3600)
	d := time.Date(2017, 3, 22, 9, 30, 7, 0, loc)
	assert.Equal(t, "2017-03-22T09:30:07", schema.SerializeDateTime(d))
}

func TestParseDateRoundTrips(t *testing.T) {
	d, err := schema.ParseDate("1999-12-31")
	assert.NoError(t, err)
	assert.Equal(t, "1999-12-31", schema.SerializeDate(d))
}

func TestParseDateTimeRejectsOffset(t *testing.T) {
	_, err := schema.ParseDateTime("2017-03-22T09:30:07+05:00")
	assert.Error(t, err)
}

func TestParseDecimal(t *testing.T) {
	for _, valid := range []string{"0", "-1", "12.5", "-0.001", "123456789012345678901234567890.1"} {
		d, err := schema.ParseDecimal(valid)
		assert.NoError(t, err, valid)
		assert.Equal(t, valid, schema.SerializeDecimal(d), valid)
	}
	for _, invalid := range []string{"+1", "1e5", "1,000", ".5", "1.", "abc", ""} {
		_, err := schema.ParseDecimal(invalid)
		assert.Error(t, err, invalid)
	}
}

func TestParseScalar(t *testing.T) {
	v, err := schema.ParseScalar(schema.IntType, "42")
	assert.NoError(t, err)
	assert.Equal(t, int64(42), v)

	v, err = schema.ParseScalar(schema.BooleanType, "true")
	assert.NoError(t, err)
	assert.Equal(t, true, v)

	_, err = schema.ParseScalar(schema.BooleanType, "yes")
	assert.Error(t, err)

	_, err = schema.ParseScalar(schema.IntType, "twelve")
	assert.Error(t, err)

	v, err = schema.ParseScalar(schema.StringType, "Hedwig")
	assert.NoError(t, err)
	assert.Equal(t, "Hedwig", v)
}
