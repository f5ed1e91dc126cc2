// Package registry manages the persisted list of tracked links.
//
// The backing store is a line-delimited UTF-8 text file, one URL per line,
// append-only from the application's perspective. An external actor may
// append to the file concurrently with the scheduler's reads; the scheduler
// reloads the registry at every cycle boundary, so new links take effect at
// the next cycle and never mid-cycle.
package registry

import (
	"bufio"
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
)

// ErrExists is returned by [Registry.Add] when the URL is already tracked.
var ErrExists = errors.New("link already exists")

// Registry owns the list of tracked URLs.
//
// Registry never blocks the scheduler: if the backing file is missing or
// unreadable, [Registry.Load] falls back to the built-in default link.
type Registry struct {
	path        string
	defaultLink string
}

// New creates a [Registry] backed by the file at path. defaultLink is
// returned by Load when the file does not exist or cannot be read.
func New(path, defaultLink string) *Registry {
	return &Registry{path: path, defaultLink: defaultLink}
}

// Path returns the location of the backing link list file.
func (r *Registry) Path() string {
	return r.path
}

// Load returns the tracked URLs in file (insertion) order, skipping blank
// lines. Duplicates are not expected but are returned as-is.
//
// A missing or unreadable file degrades to the built-in default link;
// registry errors must never stop the polling loop. A file that exists but
// lists nothing is an empty set, not an error: truncating the file is how
// an operator stops all tracking.
func (r *Registry) Load() []string {
	f, err := os.Open(r.path)
	if err != nil {
		return r.defaults()
	}
	defer func() { _ = f.Close() }()

	var links []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		links = append(links, line)
	}
	if scanner.Err() != nil {
		return r.defaults()
	}
	return links
}

// Add appends url to the backing file iff it is not already present
// (case-sensitive exact-string match). Returns [ErrExists] when the URL is
// already tracked; the file grows by exactly one line otherwise.
func (r *Registry) Add(url string) error {
	url = strings.TrimSpace(url)
	if url == "" {
		return errors.New("link cannot be empty")
	}

	for _, existing := range r.links() {
		if existing == url {
			return ErrExists
		}
	}

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("open link list: %w", err)
	}
	defer func() { _ = f.Close() }()

	if _, err := f.WriteString(url + "\n"); err != nil {
		return fmt.Errorf("append link: %w", err)
	}
	return nil
}

// links returns the raw file contents without the default fallback, so Add
// can distinguish "file has no entries" from "file lists the default link".
func (r *Registry) links() []string {
	f, err := os.Open(r.path)
	if err != nil {
		return nil
	}
	defer func() { _ = f.Close() }()

	var links []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line != "" {
			links = append(links, line)
		}
	}
	return links
}

func (r *Registry) defaults() []string {
	if r.defaultLink == "" {
		return nil
	}
	return []string{r.defaultLink}
}

// ValidateURL checks that a link is a well-formed absolute http(s) URL.
// Every surface that accepts a link from the operator (API, CLI, SDK
// options) shares this check so the accept rules cannot drift.
func ValidateURL(link string) error {
	if link == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(link)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url must include a host")
	}
	return nil
}
