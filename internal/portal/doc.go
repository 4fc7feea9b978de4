// Package portal provides the authenticated HTTP client for the analysis
// portal. It performs credential login, carries the session cookie on every
// subsequent request, and resolves customers to analysis identifiers through
// the order listing endpoint.
package portal
