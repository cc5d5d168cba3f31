package version

// Version of the replay engine, overridden at build time with
// -ldflags "-X github.com/rxtech-lab/argo-replay/internal/version.Version=v1.2.3".
// "main" marks a development build.
var Version = "v0.4.0"

func GetVersion() string {
	return Version
}
