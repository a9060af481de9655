// Package app wires configuration, telemetry, the dashboard service and the
// HTTP server together and manages their lifecycle.
//
// Run loads the workbook, binds the listener and then serves until SIGINT
// or SIGTERM. The server and the viewer run in one errgroup and share its
// context, along with the websocket hub and, when enabled, the workbook
// watcher. A viewer that fails to open is logged and the server keeps
// running. Load and listen failures are returned to the caller, which
// treats them as fatal.
//
// Viewers:
//
//	browser  the platform opener (xdg-open, open, cmd /c start)
//	chrome   a Chrome app window driven by chromedp
//	none     print the URL only
package app
