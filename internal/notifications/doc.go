// Package notifications sends push notifications about collection runs via
// ntfy. When no topic is configured a noop service is used, so callers
// never need to check whether notifications are enabled.
package notifications
