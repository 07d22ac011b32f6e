package internal

import "fmt"

var (
	// These variables are here only to show current version. They are set in makefile during build process
	GatewayVersion         = "devel"
	GitRevision            = "devel"
	GatewayVersionRevision = fmt.Sprintf("%s-%s", GatewayVersion, GitRevision)
)
