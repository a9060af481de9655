// Package websocket pushes dashboard events to open pages.
//
// Pages connect to /ws and receive JSON messages of the form
//
//	{"type":"dashboard:reloaded","data":{...},"timestamp":"..."}
//
// A page reloads itself when it sees dashboard:reloaded.
package websocket
