// Package materialize turns parsed posts into files in the save folder.
//
// HTML mode writes <slug>.html per post, built from a header shared by
// the whole run plus a block for the post's kind, and downloads the
// photo or video next to it. CSV mode appends one row per post to
// <account>.csv and never downloads media.
package materialize
