// Package msg defines the messages the dashboard's Bubbletea loop receives
// and the commands that produce them.
//
// Commands wrap blocking calls on the store and API client so Update never
// blocks. Messages forwarded from the event bus carry only identifiers; the
// model reads the current snapshot from the store or poller when it handles
// them.
package msg
