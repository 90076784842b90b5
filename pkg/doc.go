// Package pkg provides the libraries behind the pangolin icon compiler.
//
// # Overview
//
// Pangolin turns a directory of exported SVG icons into one JavaScript module
// with a small runtime for rendering, searching and replacing icons. The pkg
// directory is organized into three areas:
//
//  1. Domain: [normalize], [naming], [icon], [compiler], [serialize]
//  2. Outputs: [minify], [archive], [io]
//  3. Infrastructure: [pipeline], [cache], [config], [httputil],
//     [observability], [errors], [buildinfo]
//
// # Architecture
//
// The data flow of a compile run:
//
//	icons/*.svg
//	     ↓
//	[compiler.Discover] (sorted sources)
//	     ↓
//	[normalize] + [naming] per source, in parallel
//	     ↓
//	[icon.Builder] (sequential insert, duplicate ids abort)
//	     ↓
//	[serialize] (template head + entries + tail)
//	     ↓
//	pangolin.latest.mjs, icons.json, bundle, [minify] output
//
// # Quick Start
//
//	runner := pipeline.NewRunner(nil, nil, logger)
//	result, err := runner.Execute(ctx, pipeline.Options{
//	    InputDir:  "icons",
//	    OutputDir: "dist",
//	    Version:   "0.2",
//	})
//	if err != nil {
//	    return err
//	}
//
//	rec, _ := result.Registry.Get("user")
//	fmt.Println(icon.RenderToText(rec, icon.Options(map[string]string{"width": "32"})))
//
// [normalize]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/normalize
// [naming]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/naming
// [icon]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/icon
// [compiler]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/compiler
// [serialize]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/serialize
// [minify]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/minify
// [archive]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/archive
// [io]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/io
// [pipeline]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/pipeline
// [cache]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/cache
// [config]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/config
// [httputil]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/httputil
// [observability]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/observability
// [errors]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/errors
// [buildinfo]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/buildinfo
//
// [icon.Builder]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/icon#Builder
// [compiler.Discover]: https://pkg.go.dev/github.com/matzehuels/pangolin/pkg/compiler#Discover
package pkg
