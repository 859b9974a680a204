// Package notifications sends push notifications for render lifecycle events
// via ntfy. An empty topic disables delivery.
package notifications
