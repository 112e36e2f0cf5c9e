// Package ui contains the Bubble Tea program that renders the tree picker.
// Model.Update routes each tea.Msg through a typed handler registry so key
// presses, fetch results, watcher events and resizes are handled by focused
// functions.
//
// State ownership:
//   - Nodes, expansion and selection live in internal/state.TreeStore. The
//     model reads snapshots and never mutates containers in place.
//   - Keyboard focus and the viewport live in internal/ui/state.Navigator;
//     the search text lives in internal/ui/state.Query.
//   - Child fetches run as tea.Cmd values built by internal/ui/command.Bus.
//     Each carries the ticket handed out by TreeStore.BeginLoad, and results
//     from an older generation are dropped by CompleteLoad.
//
// Backend interactions:
//   - An optional backend.Watcher reports source file changes. The
//     dispatcher invalidates the tree and the model reloads the root plus
//     every expanded branch as it becomes visible again.
package ui
