// Package event provides a synchronous pub-sub bus that lets the project
// store and the pipeline poller notify the dashboard without depending on
// it.
//
// Events follow a "category.action" naming convention:
//
//   - projects.loaded / projects.load_failed: the store finished a list call
//   - project.created / project.deleted: the store changed one project
//   - pipeline.started: the backend accepted a start request
//   - pipeline.updated / pipeline.fetch_failed: one poll of the selected project
//
// Subscribe to one type, or to all of them:
//
//	bus := event.NewBus(logger)
//	bus.Subscribe(event.TypePipelineUpdated, func(e event.Event) {
//	    u := e.(event.PipelineUpdatedEvent)
//	    program.Send(msg.PipelineUpdatedMsg{ProjectID: u.ProjectID, Status: u.Status})
//	})
//
// Handlers run synchronously on the publishing goroutine.
package event
