// Package redis implements the SearchStore port on a Redis server with the
// RediSearch module loaded.
//
// Documents are plain hashes. Index management and queries use the FT.*
// command family, sent through go-redis with RESP2 so replies keep the flat
// list layout parsed in reply.go. Every command runs under the configured
// command timeout, and failures are mapped onto the domain store sentinels.
package redis
