// Package pebblestore wraps Pebble for the segment catalog: one sync policy
// for every commit, prefix scans and a reverse lookup of the last key.
//
//	db, err := pebblestore.Open(pebblestore.Options{Dir: "./catalog"})
//	if err != nil { /* handle */ }
//	defer db.Close()
//
//	b := db.NewBatch()
//	_ = b.Set([]byte("seg/m"), seq, nil)
//	_ = db.Commit(b)
//	b.Close()
//
//	_ = db.Scan([]byte("seg/e/"), func(k, v []byte) error { return nil })
package pebblestore
