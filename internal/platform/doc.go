package platform

// Package platform holds OS and YouTube plumbing helpers: directory setup and
// playlist expansion via the ytdlp library.
