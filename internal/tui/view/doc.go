// Package view renders the dashboard's sections.
//
// Each view is a stateless struct with a Render method that takes a state
// value and a width and returns a string. Views never call the store,
// poller or API client; the model copies what they need into the state
// structs before rendering.
//
//   - [HeaderView]: title and tagline
//   - [PromptView]: the idea input and its submit hint or error
//   - [TrackerView]: the five pipeline stages of the selected project
//   - [GalleryView]: the responsive project grid
//   - [FooterView]: transient messages, the store error and key help
package view
