package config

// This file defines a Redis client constructor for the application.  Redis
// backs the per-viewer response cache and the token-bucket rate limiter.
// Both are optional: when no server is reachable at startup the constructor
// returns nil and the middleware layers run in pass-through mode.

import (
    "context"
    "crypto/tls"
    "os"
    "strconv"
    "strings"
    "time"

    "github.com/redis/go-redis/v9"
)

// redisAddr resolves the server address.  REDIS_HOST/REDIS_PORT win over
// REDIS_ADDR when both are set so container setups that inject host and
// port separately keep working.
func redisAddr() string {
    host := os.Getenv("REDIS_HOST")
    port := os.Getenv("REDIS_PORT")
    if host != "" && port != "" {
        return host + ":" + port
    }
    if addr := os.Getenv("REDIS_ADDR"); addr != "" {
        return addr
    }
    return "localhost:6379"
}

// NewRedisClient instantiates a Redis client from the environment:
//   REDIS_HOST, REDIS_PORT – hostname and port of the Redis server
//   REDIS_ADDR – host:port shorthand
//   REDIS_PASSWORD – optional password
//   REDIS_DB – database number (default 0)
//   REDIS_TLS – enable TLS when "true" or "1"
// It pings the server with a short timeout and returns nil on failure so
// callers can disable caching and rate limiting instead of crashing.
func NewRedisClient() *redis.Client {
    opts := &redis.Options{
        Addr:     redisAddr(),
        Password: os.Getenv("REDIS_PASSWORD"),
    }
    if dbStr := os.Getenv("REDIS_DB"); dbStr != "" {
        if n, err := strconv.Atoi(dbStr); err == nil {
            opts.DB = n
        }
    }
    if tlsEnv := os.Getenv("REDIS_TLS"); strings.EqualFold(tlsEnv, "true") || tlsEnv == "1" {
        opts.TLSConfig = &tls.Config{InsecureSkipVerify: true}
    }

    client := redis.NewClient(opts)
    ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
    defer cancel()
    if err := client.Ping(ctx).Err(); err != nil {
        return nil
    }
    return client
}
