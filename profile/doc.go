// Package profile drives the Profile screen's logout interaction.
//
// A [Screen] moves through Idle, Confirming, LoggingOut and then Success or
// Failed. Failed offers Retry (back to LoggingOut) or ForceLogout (terminal
// ForcedOut). Navigation to the sign-in route happens only after the session
// holder has reset its state.
//
// # Architecture boundaries
//
// The screen owns presentation state only. Storage and session state belong to
// the [sessionkit.Holder] it is bound to.
//
// # What this package must NOT do
//
//   - Touch storage directly.
//   - Navigate before the holder's logout has returned.
package profile
