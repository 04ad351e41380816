// Package redis stores blobs as Redis string values.
//
// Each blob is one key, so a write is a single SET and therefore atomic.
// Redis caps string values at 512MB, which bounds the model size this
// backend can hold.
//
//	client := goredis.NewClient(&goredis.Options{Addr: "localhost:6379"})
//	store := redis.NewStore(client, "factormerge:")
package redis
