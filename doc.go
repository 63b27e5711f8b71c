// Package nbsite generates a static site from Jupyter notebooks and
// Markdown documents listed in a registry.
//
// # Quick Start
//
// Run a build from the site root, reading registry.yaml and authors.yaml
// and writing one page per entry into site/:
//
//	b, err := nbsite.NewBuilder(nbsite.WithStdout(os.Stdout))
//	if err != nil {
//	    log.Fatal(err)
//	}
//	report, err := b.Run(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	fmt.Println(report.Count(nbsite.StatusGenerated), "pages")
//
// # Site Layout
//
// Each registry entry names a source by path. Only the base name matters:
//
//   - foo.ipynb is read from examples/foo.ipynb
//   - bar.md is read from examples/bar.md, or else wiki/bar.md
//   - anything else is reported as unsupported and skipped
//
// The page is written to site/<name>.html. Missing sources are reported
// and skipped; they never stop the build.
//
// # Pages
//
// Every page uses the same skeleton: the entry title, date, authors (with
// avatar and website from the author directory) and tags, followed by the
// converted document. Authors missing from the directory are shown by id.
//
// # Configuration
//
// Use functional options to customize the builder:
//
//	b, err := nbsite.NewBuilder(
//	    nbsite.WithOutputDir("public"),
//	    nbsite.WithStyle("notebook"),
//	    nbsite.WithDateFormat("long"),
//	    nbsite.WithWorkers(0), // one per CPU
//	)
//
// # Errors
//
// Unreadable configuration files wrap ErrConfigRead. Documents that fail to
// convert wrap ErrConversion, and write failures wrap ErrWriteOutput. Pages
// written before an error stay on disk.
package nbsite
