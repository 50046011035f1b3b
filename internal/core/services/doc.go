// Package services implements the driving ports: the ingest coordinator
// that drives the crawl-to-store pipeline, and the retrieval ranker that
// turns a question into a ranked context set.
package services
