// Package homegraph notifies the voice platform's device graph that the
// set of registered lights has changed, prompting it to issue a fresh
// SYNC. The notifier implements light.Notifier and is invoked fire and
// forget after each successful registration.
package homegraph
