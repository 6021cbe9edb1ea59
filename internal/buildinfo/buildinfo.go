package buildinfo

// Set at link time via -ldflags "-X ...".
var (
	Version = "dev"
	Commit  = "none"
	BuiltAt = "unknown"
)
