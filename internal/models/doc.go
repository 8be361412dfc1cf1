// Package models defines the domain entities and persistence interfaces for ytdash.
//
// The package contains two categories of types:
//
// 1. Data Transfer Objects (DTOs): flat records reshaped from YouTube Data API responses
//   - [VideoSummary] : an uploaded or liked video
//   - [CommentSummary] : a top-level comment written by the owner channel
//   - [PlaylistSummary] : a playlist owned by the account
//   - [TokenBundle] : the OAuth credential set held by a browser session
//
// 2. Persistent Entities: database-backed models with full lifecycle management
//   - [Session] : server-side browser session whose encoded values carry the [TokenBundle]
//
// Persistent entities implement the [Model] interface and are stored through a [Repository].
package models
