// Package notifications delivers run outcomes via ntfy.
//
// The topic configured under [notifications] receives one message per run
// that changed the library and one per failed run. Without a topic the
// service is a no-op.
package notifications
