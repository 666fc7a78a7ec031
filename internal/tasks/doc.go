// Package tasks runs the multi-request jobs behind the browse views.
//
// [HomeLoader] fetches the home page rows with a small worker pool behind a
// rate limiter and streams [ProgressUpdate] values to the caller. Rows that
// fail are left empty so one broken endpoint never blanks the page.
package tasks
