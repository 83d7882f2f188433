package records

import (
	"strconv"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/kbukum/seqkit/errors"
	"github.com/kbukum/seqkit/stream"
)

// Separator is the field delimiter of a delimited record.
const Separator = ","

// Split splits a line on every literal comma. There is no quoting or
// escaping: "a,,b" has three fields and an empty line has one.
func Split(line string) []string {
	return strings.Split(line, Separator)
}

// Rows maps a stream of lines to their fields.
func Rows(lines *stream.Stream[string]) *stream.Stream[[]string] {
	return stream.MapTo(lines, Split)
}

// HasFields returns a predicate that keeps records with exactly n fields.
func HasFields(n int) func([]string) bool {
	return func(fields []string) bool { return len(fields) == n }
}

// Field returns fields[i], or a PARSE error when the record is too short.
func Field(fields []string, i int) (string, error) {
	if i < 0 || i >= len(fields) {
		return "", errors.Parse(strings.Join(fields, Separator), "record with field "+strconv.Itoa(i), nil)
	}
	return fields[i], nil
}

// Int parses fields[i] as a base-10 integer. Surrounding whitespace is not
// accepted.
func Int(fields []string, i int) (int, error) {
	raw, err := Field(fields, i)
	if err != nil {
		return 0, err
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return 0, errors.Parse(raw, "int", err)
	}
	return n, nil
}

// Float parses fields[i] as a 64-bit float.
func Float(fields []string, i int) (float64, error) {
	raw, err := Field(fields, i)
	if err != nil {
		return 0, err
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return 0, errors.Parse(raw, "float", err)
	}
	return f, nil
}

func jsonField(line, path string) (gjson.Result, error) {
	if !gjson.Valid(line) {
		return gjson.Result{}, errors.Parse(line, "json", nil)
	}
	res := gjson.Get(line, path)
	if !res.Exists() {
		return res, errors.Parse(line, "json with "+path, nil).WithDetail("path", path)
	}
	return res, nil
}

// JSONString returns the string at path in a JSON-lines record.
func JSONString(line, path string) (string, error) {
	res, err := jsonField(line, path)
	if err != nil {
		return "", err
	}
	if res.Type != gjson.String {
		return "", errors.Parse(res.Raw, "string", nil).WithDetail("path", path)
	}
	return res.Str, nil
}

// JSONInt returns the integer at path in a JSON-lines record. Fractional
// numbers are rejected.
func JSONInt(line, path string) (int64, error) {
	res, err := jsonField(line, path)
	if err != nil {
		return 0, err
	}
	if res.Type != gjson.Number {
		return 0, errors.Parse(res.Raw, "int", nil).WithDetail("path", path)
	}
	n, err := strconv.ParseInt(res.Raw, 10, 64)
	if err != nil {
		return 0, errors.Parse(res.Raw, "int", err).WithDetail("path", path)
	}
	return n, nil
}

// JSONFloat returns the number at path in a JSON-lines record.
func JSONFloat(line, path string) (float64, error) {
	res, err := jsonField(line, path)
	if err != nil {
		return 0, err
	}
	if res.Type != gjson.Number {
		return 0, errors.Parse(res.Raw, "float", nil).WithDetail("path", path)
	}
	return res.Num, nil
}
