// Package organizer implements the post-download archive and organize
// passes over a study's download folder.
//
// Archive moves stale dated exports into per-date archive subfolders
// next to where they were found. Organize then classifies the
// remaining loose exports into fixed per-category folders, creating a
// category folder only when its data type was part of the run.
//
// # Usage
//
//	org := organizer.New(organizer.Options{
//		Folder:   "/data/study-downloads",
//		Selected: []chronicle.DataType{chronicle.Raw, chronicle.Survey},
//	})
//	if err := org.Archive(time.Now()); err != nil {
//		return err
//	}
//	if err := org.Organize(); err != nil {
//		return err
//	}
package organizer
