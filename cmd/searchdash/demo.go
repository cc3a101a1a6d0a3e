package main

import (
	"context"

	"github.com/creativedestruction/searchdash/internal/core/domain"
	"github.com/creativedestruction/searchdash/internal/core/ports/driven"
)

// demoDocuments are loaded into the in-memory store by --memory.
var demoDocuments = []domain.Document{
	{Key: "Tweet:1001", Fields: map[string]string{
		"username": "Ada Lovelace",
		"handle":   "ada",
		"content":  "Shipping the new analytical engine build today",
		"source":   "https://twitter.com/ada/status/1001",
	}},
	{Key: "Tweet:1002", Fields: map[string]string{
		"username": "Grace Hopper",
		"handle":   "grace",
		"content":  "Found a moth in the relay. First actual bug!",
		"source":   "https://twitter.com/grace/status/1002",
	}},
	{Key: "Spaces:2001", Fields: map[string]string{
		"title":    "Compilers office hours",
		"username": "Grace Hopper",
		"handle":   "grace",
		"source":   "https://twitter.com/i/spaces/2001",
	}},
	{Key: "discord_message:3001", Fields: map[string]string{
		"author":       "linus",
		"content":      "Patch for the engine scheduler is up for review",
		"channel":      "kernel",
		"guild":        "systems",
		"message_link": "https://discord.com/channels/1/2/3001",
	}},
	{Key: "discord_message:3002", Fields: map[string]string{
		"author":  "ada",
		"content": "Anyone joining the compilers space later?",
		"channel": "general",
		"guild":   "systems",
	}},
}

func seedDemo(ctx context.Context, store driven.SearchStore) error {
	for _, doc := range demoDocuments {
		if err := store.WriteDocument(ctx, doc); err != nil {
			return err
		}
	}
	return nil
}
