// Package powerswitch is a client for Digital Loggers Power Switch Pro
// style PDUs. It speaks the device's REST API (the /restapi/ tree) with
// HTTP digest authentication and exposes outlets, power meters and the
// AutoPing watchdog as typed services hanging off a Client.
package powerswitch
