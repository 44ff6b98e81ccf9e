package internal

import (
	"errors"
	"fmt"
	"io"
	"runtime/debug"

	"github.com/baalimago/searchchat/internal/utils"
)

// Set with buildflag if built in pipeline and not using go install
var (
	BuildVersion  = ""
	BuildChecksum = ""
)

func printVersion(w io.Writer) error {
	bi, ok := debug.ReadBuildInfo()
	if !ok {
		return errors.New("failed to read build info")
	}
	version := BuildVersion
	if version == "" {
		version = bi.Main.Version
	}
	checksum := BuildChecksum
	if checksum == "" {
		checksum = bi.Main.Sum
	}
	fmt.Fprintf(w, "version: %v, go version: %v, checksum: %v\n", version, bi.GoVersion, checksum)
	for _, dep := range bi.Deps {
		fmt.Fprintf(w, "%s %s\n", dep.Path, dep.Version)
	}
	return utils.ErrUserInitiatedExit
}
