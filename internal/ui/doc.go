// Package ui implements an interactive terminal catalog using bubbletea's Elm architecture.
//
// Three views share one [store.Store]:
//  1. [HomeView] : trending movies and the action, comedy and drama rows; tab cycles rows
//  2. [DetailView] : the selected movie, or "Película no encontrada" when it cannot be loaded
//  3. [SearchView] : a text input and the matching titles
//
// Leaving the detail view clears the store's current movie and leaving search clears the results,
// so reopening either starts empty. The store's last error is shown as a banner until dismissed with x.
//
// The (view) [Model] implements bubbletea/Elm's standard Init/Update/View pattern; store actions run
// inside commands and report back through the Msg union type.
package ui
