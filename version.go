package policychat

// Version is set at build time with -ldflags "-X github.com/a-h/policychat.Version=...".
var Version = "dev"
