package gtfs

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"io"
	"os"
)

// SerializeFeed encodes a parsed Feed with gob so a restart can skip the
// zip parse.
//
// Example:
//
//	feed, _ := gtfs.LoadFeed("gtfs.zip")
//	data, err := gtfs.SerializeFeed(feed)
//	if err != nil {
//	    // handle error
//	}
//	os.WriteFile("/path/to/cache/feed.gob", data, 0644)
func SerializeFeed(feed *Feed) ([]byte, error) {
	var buf bytes.Buffer
	if err := SerializeFeedToWriter(feed, &buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// DeserializeFeed decodes a Feed previously written by SerializeFeed.
func DeserializeFeed(data []byte) (*Feed, error) {
	return DeserializeFeedFromReader(bytes.NewReader(data))
}

// SerializeFeedToFile writes the gob encoding of feed to filepath.
func SerializeFeedToFile(feed *Feed, filepath string) error {
	data, err := SerializeFeed(feed)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath, data, 0644)
}

// DeserializeFeedFromFile reads a cached Feed.
//
// Example:
//
//	feed, err := gtfs.DeserializeFeedFromFile("/cache/feed.gob")
//	if err != nil {
//	    // Cache miss or corrupted, parse the zip again
//	    feed, _ = gtfs.LoadFeed("gtfs.zip")
//	}
func DeserializeFeedFromFile(filepath string) (*Feed, error) {
	data, err := os.ReadFile(filepath)
	if err != nil {
		return nil, fmt.Errorf("failed to read cache file: %w", err)
	}
	return DeserializeFeed(data)
}

// SerializeFeedToWriter writes a Feed to any io.Writer.
func SerializeFeedToWriter(feed *Feed, w io.Writer) error {
	if err := gob.NewEncoder(w).Encode(feed); err != nil {
		return fmt.Errorf("failed to encode Feed: %w", err)
	}
	return nil
}

// DeserializeFeedFromReader reads a Feed from any io.Reader.
func DeserializeFeedFromReader(r io.Reader) (*Feed, error) {
	var feed Feed
	if err := gob.NewDecoder(r).Decode(&feed); err != nil {
		return nil, fmt.Errorf("failed to decode Feed: %w", err)
	}
	if feed.StopTimes == nil {
		feed.StopTimes = map[string][]StopTimeRecord{}
	}
	return &feed, nil
}
