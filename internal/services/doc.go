// Package services talks to the media tracking REST API and the external image host.
//
// # Client
//
// [Client] is the one HTTP entry point of the application. It replaces ambient request/response interceptors with an
// explicit object that wraps the transport and enforces two policies on every call:
//
//   - Bearer policy: requests to the authentication endpoints (any path containing /auth/) never carry an
//     Authorization header; every other request carries "Authorization: Bearer <token>" when the session holds a
//     token. The header is attached by [oauth2.Transport] fed from the session manager.
//   - Rejection policy: a 401 or 403 response clears the session token and, unless an unauthenticated screen is
//     already shown, redirects the navigator to the login screen. The call then fails with
//     [shared.ErrUnauthorized].
//
// No retries are attempted and no timeout is set beyond the caller's context.
//
// # Services
//
//   - [AuthService] : login, registration and logout
//   - [CatalogService] : genres plus list/get/create/update/delete for movies and series, implementing [Catalog]
//   - [ImageUploader] : multipart upload to the image host, returning the hosted URL
//
// # Error Handling
//
// Services use typed errors from shared package:
//   - [shared.ErrUnauthorized] : the server rejected the session
//   - [shared.ErrAuthFailed] : wrong credentials on login
//   - [shared.ErrAPIRequest] : any other non-2xx response, wrapped in [APIError]
//   - [shared.ErrUploadFailed] : the image host failed or the file is not an image
package services
