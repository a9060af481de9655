// Package layout arranges chart results into the tabbed dashboard.
//
// Compose is pure: it reads normalized statements and returns a Dashboard
// that is never modified afterwards, so it can be shared across HTTP
// handlers without locking. Missing metrics appear as cells carrying a
// message instead of a chart.
package layout
