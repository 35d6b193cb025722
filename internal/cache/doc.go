// Package cache provides a small generic LRU cache.
//
//	c := cache.New[string, *image.ImageBuf](32)
//	c.Set("icons.png", buf)
//	buf, ok := c.Get("icons.png")
//
// Cache is safe for concurrent use and must not be copied after creation.
package cache
