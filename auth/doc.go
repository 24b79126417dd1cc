// Package auth attaches credentials to outgoing requests and refreshes them
// on demand.
//
// Four Authenticator implementations are provided:
//   - None passes requests through untouched.
//   - Static attaches a fixed bearer token, basic credential or API key.
//   - StoreAuthenticator reads a TokenPair from a TokenStore and exchanges
//     the refresh token through a caller-supplied RefreshFunc.
//   - Custom delegates every operation to functions.
//
// Token persistence is pluggable behind TokenStore: MemoryStore keeps the
// pair in process memory and KeyringStore keeps it in the OS credential
// store.
package auth
