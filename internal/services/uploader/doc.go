// Package uploader wraps the storage service that publishes rendered videos
// and hands back their public URLs.
package uploader
