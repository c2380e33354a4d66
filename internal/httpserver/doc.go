// Package httpserver runs the service's HTTP listener with graceful
// shutdown and provides the probe handlers and request-id middleware shared
// by every route.
package httpserver
