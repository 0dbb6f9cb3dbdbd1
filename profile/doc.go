// Package profile provides optional runtime profiling for ddpaper.
//
// Profiling is compiled in only when building with the "pprof" tag:
//
//	go build -tags pprof .
//
// Otherwise [Profiler.Start] is a no-op and [Modes] is empty. With the tag,
// the CLI accepts --pprof-mode and --pprof-dir:
//
//	ddpaper --pprof-mode cpu gen main.tex definitions.tex
//
// Profiles are written by [github.com/pkg/profile] to the cache directory
// unless another directory is given, and can be inspected with
//
//	go tool pprof ddpaper cpu.pprof
package profile

// Tag is the build tag required to enable pprof profiling.
const Tag = `pprof`
