// Package github reads GitHub issues and pull requests as records.
//
// Locations take the form github://owner/repo for issues (pull requests
// excluded) and github://owner/repo/pulls for pull requests. Each row is
// keyed by "id", the issue or pull request number.
//
// # Authentication
//
// A personal access token configured under github.token is sent as a
// bearer token. Without one, requests are unauthenticated and limited to
// 60 per hour by GitHub.
//
// # Rate Limiting
//
// Requests are spaced with a token bucket, and paused until the quota window
// resets once the remaining quota GitHub reports runs low; see [Throttle].
package github
