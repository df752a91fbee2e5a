// Package siteaudit audits websites for performance, accessibility, and SEO
// issues. It crawls a site breadth-first within a single host, audits every
// discovered page with bounded retries, and aggregates the per-page results
// into one report.
//
// This package contains domain types, interfaces, and pure functions
// following Ben Johnson's Standard Package Layout. Implementations live in
// subdirectories named after their primary dependency (e.g., sqlite/, rod/,
// goquery/).
package siteaudit
