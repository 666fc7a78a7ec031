// Package models defines the records exchanged with the streaming catalog backend.
//
// The types mirror the backend's JSON serializers and are treated as data transfer objects:
//   - [User] : Account record; the session layer treats it as opaque beyond display
//   - [Plan] : Subscription plan, referenced from users through [PlanRef]
//   - [Content] / [Episode] / [Genre] : Catalog entries
//   - [HistoryEntry] : Watch history rows with expanded content details
//   - [ProgressUpdate] : Body of the update-progress call, built from a [Target]
//
// List endpoints answer either a page envelope or a bare array; [DecodeList] normalizes both into a [Page].
package models
