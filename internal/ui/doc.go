// Package ui is the terminal dashboard: a Bubble Tea program that shows one
// card per parking station and refreshes itself from state.Store.
//
// The model never talks to the network. It re-reads the store on a short
// tick, and "r" asks the scheduler for an out-of-band cycle through the
// Refresher interface. Cards flow into as many columns as the terminal
// width allows; badge colors match the HTML widget so both surfaces agree.
//
// The "l" key swaps the cards for a tail of the log file. The dashboard owns
// the screen, so logs are written to a file while it runs.
//
// Theme and timestamp choices are saved to the prefs file as they change.
package ui
