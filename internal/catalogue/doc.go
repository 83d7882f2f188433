// Package catalogue replays the seqkit usage examples: integer ranges,
// string filters, file and CSV pipelines, reductions, summary statistics
// and collector-based grouping over a small people data set.
//
// Every sample runs against an Env, which selects the data files and the
// engine mode, so the same catalogue exercises sequential and parallel
// evaluation.
package catalogue
