// Package services implements clients for the three external collaborators of the tracker.
//
// # Catalog
//
// The [Catalog] interface covers the four read-only lookups the tracker needs: free-text search,
// single best-match search by title, and the season and episode listings of a show.
//
// [TVMazeService] implements it over the public TVMaze API. Requests wait on a [rate.Limiter]
// (TVMaze allows 20 calls every 10 seconds) and never retry. Search hits have upstream gaps
// filled in by [CatalogShow.Hit]: no image or site becomes "", a missing rating becomes "N/A",
// missing genres become an empty list.
//
// [PlainSummary] turns the HTML summary fragments the catalog returns into terminal text.
//
// # Identity Provider
//
// [GoogleIdentity] implements [IdentityProvider] with [oauth2]. The CLI runs the authorization
// code flow through the callback handler in the server package; the identity is read from the
// id_token claims with golang-jwt.
//
// # Remote Store
//
// [FirestoreStore] implements [RemoteStore] over the Firestore REST API. Each user owns the
// document users/{uid}; the collection lives in its shows field. Writes PATCH with an update
// mask on shows only, which is a merge: other fields of the document are left alone and the
// shows field is replaced wholesale (last writer wins).
//
// # Error Handling
//
// Every client wraps failures in the sentinel errors of the shared package:
//   - [shared.ErrTransport] : network failure, non-2xx response or undecodable body
//   - [shared.ErrNotFound] : catalog has no match (HTTP 404)
//   - [shared.ErrMissingCredentials] : OAuth client credentials not configured
//   - [shared.ErrAuthFailed] : token response lacks a usable id_token
package services
