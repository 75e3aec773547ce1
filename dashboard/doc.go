// Package dashboard serves the Authority Guard web UI and its JSON API.
//
// Every page except login, health and metrics sits behind the shared access
// gate. Pages follow post/redirect/get: actions store their outcome on the
// visitor's session and the next render shows it once as a notice.
package dashboard
