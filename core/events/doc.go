// Package events defines what the planner and the HTTP boundary publish on the
// in-process event bus.
//
//   - PlanComputed: a production plan was produced
//   - PlanRejected: a request never reached the pipeline
//   - CacheLookup: the response cache was consulted
//   - SetpointPublished: a set-point was (or failed to be) delivered
package events
