// Package backup runs a complete blog backup.
//
// A run reads the blog's details from a single-post request, prepares the
// output target, then walks the read API page by page and hands every post
// to the materializer:
//
//	runner, err := backup.New(cfg, backup.Options{Console: ui.NewConsole(os.Stdout, ui.Options{})})
//	if err != nil {
//		return err
//	}
//	summary, err := runner.Run(ctx)
//
// Page failures are logged and skipped. A post that cannot be saved is
// logged and skipped too, unless fail_fast is set.
package backup
