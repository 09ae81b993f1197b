// Package storage manages the save folder of a backup.
//
// Layout:
//
//	<save_folder>/<slug>.html
//	<save_folder>/<account>.csv
//	<save_folder>/backup.json
//	<save_folder>/images/<name>
//	<save_folder>/videos/<name>
//
// Files are written to a temporary name and renamed into place, so an
// interrupted run never leaves a half written file under its final
// name. Exists always asks the file system; a file that is present is
// never downloaded again.
package storage
