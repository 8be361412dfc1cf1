// Package tasks implements the account operations ytdash exposes: listings, mutations, selections and uploads.
//
// # Pagination
//
// Every listing is built on [Paginate], which requests pages of [PageSize] items and follows the
// API's next-page cursor until a page arrives without one. It is exhaustive and uncached.
// When a page fails, the items gathered so far are returned together with the error, so callers
// can tell an empty collection from a listing that stopped midway.
//
// # Operations
//
//  1. Listings : [ListVideos], [ListComments], [ListLikes], [ListSaved]
//     - videos and likes resolve the channel's uploads/likes playlist first
//     - comments join activities (candidate video ids) with per-video comment threads
//     and keep only top-level comments written by the owner channel
//
//  2. Mutations : [DeleteComment], [RemoveLike], [UploadVideo]
//
//  3. Selections : [DeleteSelectedComments], [RemoveSelectedLikes], [ExcludeSelectedSaved]
//     - each id is attempted in order; failures are collected in a [BulkResult], never short-circuited
//     - saved playlists are only filtered out of the returned view; nothing is deleted remotely
//
// # Progress Reporting
//
// Selections and uploads accept an optional progress channel. Updates are sent with select/default
// so a slow reader never blocks an operation.
//
// # Implementation
//
// [AccountEngine] implements [AccountOperations] for one [services.Client] and logs the failures that
// the web and CLI layers treat as best-effort.
package tasks
