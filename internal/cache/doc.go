// Package cache provides an LRU cache for immutable byte blocks.
//
// The LRUBlockCache backs blobstore.CachingStore: remote document frames are
// split into fixed-size blocks and cached by (blob path, block index). Memory
// held by the cache can be charged against a resource.Controller so several
// caches share one budget.
package cache
