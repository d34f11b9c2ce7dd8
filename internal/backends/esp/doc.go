// Package esp drives DIY ESP8266 LED strips over a raw TCP socket.
//
// The strips only understand "set these RGB values"; power, brightness
// and white temperature are synthesised locally: the adapter remembers
// the last colour and brightness and writes the scaled product of the
// two on every change.
package esp
