// Package catalog records every segment the writer opens in Pebble, so
// segment sequence numbers survive restarts and closed segments can be
// listed without scanning the data directory.
//
// Key layout (byte-wise sortable):
//
//	seg/m              next sequence number (8 bytes big-endian)
//	seg/e/{seq_be8}    JSON Meta for one segment
package catalog
