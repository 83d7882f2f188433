// Package records extracts fields from delimited and JSON-lines text records.
// Conversion failures are PARSE errors, so they abort the pipeline that
// produced the record.
package records
