// Package docstore mirrors collection results into a Notion-style document
// database: one master page per run summarizing the customer, plus one page
// per normalized record in a detail database. Record pages are upserted on
// a (analysisId, diseaseCode, sourceIndex) key so re-running a collection
// does not duplicate them.
package docstore
