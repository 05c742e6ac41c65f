// Package extractor turns an R package source tree into API records.
//
// The extractor reads DESCRIPTION and NAMESPACE, parses every man/*.Rd unit
// and scans every R/*.R file, then joins the two by function name:
//
//	ext := extractor.New(logger)
//	result, err := ext.Extract(ctx, pkg, extractor.Options{Workers: 4})
//
//	for _, rec := range result.Records {
//	    fmt.Println(rec.Kind, rec.Name())
//	}
//
// # Pipeline
//
//  1. Manifests: a missing DESCRIPTION fails the run, a missing NAMESPACE
//     exports everything
//  2. Discovery: man/*.Rd and R/*.R (or *.r), sorted by name
//  3. Parse: documentation units in parallel, bounded by Options.Workers
//  4. Scan: source files in parallel, reassembled in file order
//  5. Join: one package record, then one function record per signature
//
// A documentation unit is found by its file stem first and then by its
// \name{} and \alias{} entries, so one unit may document several functions.
//
// # Error Handling
//
// Unreadable files are counted in Statistics.FilesFailed and described in
// Statistics.ErrorMessages; they never abort the run. Malformed markup and
// rejected definitions surface as Result.Warnings. Context cancellation
// aborts between files.
package extractor
