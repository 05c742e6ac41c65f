// Package fetch makes R package sources available on local disk.
//
// A specifier is parsed into a Source and resolved by a Fetcher:
//
//	src, err := fetch.ParseSource("github:tidyverse/glue@v1.7.0")
//	f, err := fetch.New(fetch.DefaultConfig())
//	pkg, err := f.Fetch(ctx, src)
//	defer pkg.Cleanup()
//	// pkg.Root holds DESCRIPTION, man/ and R/
//
// # Sources
//
// Local directories are used in place. GitHub archives are downloaded from
// {base}/{owner}/{repo}/archive/{ref}.tar.gz. CRAN packages are looked up
// in the mirror's src/contrib/PACKAGES index and downloaded as
// {name}_{version}.tar.gz. Parsed indexes are kept in an LRU cache keyed by
// mirror URL.
//
// # Retries
//
// Downloads retry with exponential backoff. A 4xx response or a malformed
// archive fails immediately; a 404 wraps ErrPackageNotFound.
package fetch
