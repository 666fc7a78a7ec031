// Package session owns the authentication state of the client.
//
// A [Manager] holds the token and current user behind a mutex and exposes a
// small set of mutators ([Manager.Login], [Manager.Register], [Manager.Logout])
// plus a read side ([Manager.Snapshot], [Manager.Subscribe]).
//
// # Validation
//
// Whenever a new token appears (seeded from the [TokenStore] by
// [Manager.Start], or issued by login and registration) the manager fetches
// the profile in the background, once per token. A failed fetch signs the
// session out. Every token change bumps a generation counter and a
// completion carrying an older generation is dropped, so a fetch that
// resolves after [Manager.Logout] cannot bring the user back.
//
// # Results
//
// Login and registration never return Go errors. They resolve to a [Result]
// whose [AuthError] carries the backend payload and a display message.
package session
