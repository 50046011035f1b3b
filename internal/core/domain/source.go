package domain

import (
	"net/url"
	"strings"
)

// SourceKind distinguishes remote URLs from local files.
type SourceKind int

const (
	// SourceRemote is a document reached over HTTP.
	SourceRemote SourceKind = iota

	// SourceLocal is a document on the local filesystem.
	SourceLocal
)

// SourceOrigin records how a source entered the crawl.
type SourceOrigin int

const (
	// OriginSeed is a source submitted by the caller.
	OriginSeed SourceOrigin = iota

	// OriginDiscovered is a source found while crawling another page.
	OriginDiscovered
)

// Source is a URL or local path submitted for ingestion.
// A source is terminal once fetched; it is never revisited within a run.
type Source struct {
	// ID is the normalised identifier used for deduplication.
	ID string

	// Kind distinguishes remote from local sources.
	Kind SourceKind

	// Depth is the link distance from the seed that discovered it.
	// Seeds have depth 0.
	Depth int

	// Origin records whether the source was a seed or a discovered link.
	Origin SourceOrigin
}

// NewSource builds a Source from a raw identifier, classifying it as
// remote or local and normalising the identifier.
func NewSource(raw string, depth int, origin SourceOrigin) Source {
	kind := SourceLocal
	if strings.HasPrefix(raw, "http://") || strings.HasPrefix(raw, "https://") {
		kind = SourceRemote
	}
	return Source{
		ID:     NormalizeSourceID(raw),
		Kind:   kind,
		Depth:  depth,
		Origin: origin,
	}
}

// NormalizeSourceID canonicalises a source identifier so the same page
// reached via case or trailing-slash variants dedups to one entry.
// Fragments are never part of the identity of a document.
func NormalizeSourceID(raw string) string {
	u, err := url.Parse(raw)
	if err != nil || u.Host == "" {
		// Local path or unparseable: trim whitespace only.
		return strings.TrimSpace(raw)
	}
	u.Fragment = ""
	u.Scheme = strings.ToLower(u.Scheme)
	u.Host = strings.ToLower(u.Host)
	u.Path = strings.TrimSuffix(u.Path, "/")
	return u.String()
}

// RegistrableHost returns the host used for same-site comparison.
// A leading "www." is not significant.
func RegistrableHost(raw string) string {
	u, err := url.Parse(raw)
	if err != nil {
		return ""
	}
	host := strings.ToLower(u.Hostname())
	return strings.TrimPrefix(host, "www.")
}
