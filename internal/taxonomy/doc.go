// Package taxonomy defines the fixed table of analysis category codes.
//
// Each category carries the query family that applies to it: aggregate
// categories are fetched once per polarity value, basic categories are
// fetched with a lookback window, and the report category is a single
// binary endpoint. The table mirrors the upstream ANS code set; treat it as
// configuration to verify against live data rather than a guaranteed
// contract, since the upstream taxonomy is undocumented.
package taxonomy
