// Package classify inspects raw endpoint response bodies and assigns each
// one a shape. Downstream stages match on the shape instead of probing the
// JSON structure again.
package classify
