// package screens holds the UI-independent state of the movie and series screens.
//
// A [Screen] owns the list, the genre reference data, the filter and sort,
// and whichever modal is open. Presentation layers (TUI, CLI) call its
// operations and render its state; they never talk to the catalog directly.
package screens
