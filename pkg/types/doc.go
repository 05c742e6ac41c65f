// Package types provides shared type definitions for pkgctx.
//
// This package defines the domain types passed between the Rd markup parser,
// the R source scanner, the extraction pipeline, storage and the MCP server.
//
// # Parsed Documentation
//
// RdDoc is the structured result of parsing one Rd documentation unit:
//
//	doc := &types.RdDoc{
//	    Name:        "sum2",
//	    Title:       "Sum two numbers",
//	    Description: "Adds x and y.",
//	    Arguments:   []types.Argument{{Name: "x", Description: "A numeric vector."}},
//	    Examples:    []types.ExampleBlock{{Code: "sum2(1, 2)"}},
//	}
//
// Sections are finalized at most once per unit. Arguments keep the order in
// which they were first seen; a duplicated name keeps its first position and
// its last description.
//
// # Signatures
//
// SignatureRecord is one assignment-style function definition found in R
// source by the signature scanner. Exported is decided against an ExportSet;
// an empty set marks every definition as exported:
//
//	exports := types.NewExportSet("sum2")
//	exports.Exported("sum2")  // true
//	exports.Exported("other") // false
//
// # Records
//
// Record is the unit of output. Each record is self-describing through its
// Kind, and carries exactly one of Package, Function, Class or Workflow:
//
//	rec := types.Record{Kind: types.KindFunction, Function: &types.FunctionRecord{
//	    Name:      "sum2",
//	    Exported:  true,
//	    Signature: "sum2(x, y)",
//	}}
//
// # Warnings
//
// Parsers never fail on malformed input. Fragments they had to drop are
// reported as ParseWarning values so callers can log them:
//
//	for _, w := range doc.Warnings {
//	    logger.Debug().Str("kind", string(w.Kind)).Msg(w.Message)
//	}
package types
