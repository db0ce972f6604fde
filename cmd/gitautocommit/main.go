package main

import (
	"context"
	"os"

	"github.com/bashhack/gitautocommit/internal/config"
)

// Version information - injected at build time
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

func main() {
	app := NewDefaultApp(config.VersionInfo{
		Version: version,
		Commit:  commit,
		Date:    date,
	})

	app.exit(app.Execute(context.Background(), os.Args[1:]))
}
