// Package storage persists downloaded data files through a blob
// bucket. Local download folders are the common case and use the
// fileblob driver; URL destinations are passed to the gocloud bucket
// registry unchanged.
//
// # Usage
//
//	sink, err := storage.Open(ctx, "/data/study-downloads")
//	if err != nil {
//		return err
//	}
//	defer sink.Close()
//
//	err = sink.WriteFile(ctx, "P1 Chronicle Android Raw Data 01-05-2024.csv", data)
package storage
